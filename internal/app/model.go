package app

import (
	"context"
	"errors"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"

	"github.com/Vinw199/Voice-note/internal/auth"
	"github.com/Vinw199/Voice-note/internal/note"
	"github.com/Vinw199/Voice-note/internal/session"
)

// Screen is the page the TUI is showing.
type Screen int

const (
	ScreenLoading Screen = iota
	ScreenLogin
	ScreenSignup
	ScreenList
	ScreenViewer
	ScreenEditor
)

const (
	searchDebounce = 400 * time.Millisecond
	previewLength  = 100
	flashTimeout   = 4 * time.Second
)

// EngineFactory returns a transcription engine for a new editing session.
// Each session gets its own engine.
type EngineFactory func() session.Engine

// Deps are the services the TUI runs against.
type Deps struct {
	Auth      *auth.Provider
	Notes     note.Store
	NewEngine EngineFactory // nil disables recording
	Logger    *log.Logger
}

type formField int

const (
	fieldEmail formField = iota
	fieldPassword
)

type editorField int

const (
	fieldTitle editorField = iota
	fieldContent
)

// Model is the root bubbletea model for the voicenote TUI.
type Model struct {
	auth      *auth.Provider
	notes     note.Store
	newEngine EngineFactory
	log       *log.Logger
	authSub   *auth.Subscription

	screen   Screen
	identity *auth.Identity
	width    int
	height   int

	// Login and signup
	email      string
	password   string
	formField  formField
	formErr    string
	formInfo   string
	submitting bool

	// List
	notesList     []note.Summary
	selected      int
	query         string
	searching     bool
	querySeq      int
	fetchSeq      int
	listLoading   bool
	listErr       string
	confirmDelete string

	// Viewer and editor
	viewing     *note.Note
	loadingID   string
	viewErr     string
	sess        *session.Session
	editorField editorField
	editorErr   string

	// Transient status line
	flash    string
	flashErr bool
	flashSeq int
}

// New creates a Model. It starts on a loading screen until the persisted
// session has been checked.
func New(deps Deps) Model {
	logger := deps.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}
	m := Model{
		auth:      deps.Auth,
		notes:     deps.Notes,
		newEngine: deps.NewEngine,
		log:       logger,
		screen:    ScreenLoading,
	}
	if m.auth != nil {
		m.authSub = m.auth.Subscribe()
	}
	return m
}

// Init restores the persisted session and starts listening for auth changes.
func (m Model) Init() tea.Cmd {
	return tea.Batch(restoreCmd(m.auth), waitAuthCmd(m.authSub))
}

func restoreCmd(p *auth.Provider) tea.Cmd {
	if p == nil {
		return func() tea.Msg { return RestoredMsg{} }
	}
	return func() tea.Msg {
		_, ok, err := p.Restore(context.Background())
		return RestoredMsg{SignedIn: ok, Err: err}
	}
}

// waitAuthCmd delivers the next auth change.
func waitAuthCmd(sub *auth.Subscription) tea.Cmd {
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-sub.C
		if !ok {
			return nil
		}
		return AuthEventMsg{Event: ev}
	}
}

func signInCmd(p *auth.Provider, email, password string) tea.Cmd {
	return func() tea.Msg {
		_, err := p.SignIn(context.Background(), email, password)
		return SignInResultMsg{Err: err}
	}
}

func signUpCmd(p *auth.Provider, email, password string) tea.Cmd {
	return func() tea.Msg {
		res, err := p.SignUp(context.Background(), email, password)
		return SignUpResultMsg{Result: res, Err: err}
	}
}

func signOutCmd(p *auth.Provider) tea.Cmd {
	return func() tea.Msg {
		return SignOutResultMsg{Err: p.SignOut(context.Background())}
	}
}

func loadNotesCmd(store note.Store, owner, query string, seq int) tea.Cmd {
	return func() tea.Msg {
		notes, err := store.List(context.Background(), owner, note.ListOptions{TitleMatches: query})
		return NotesLoadedMsg{Seq: seq, Notes: notes, Err: err}
	}
}

func searchTickCmd(seq int) tea.Cmd {
	return tea.Tick(searchDebounce, func(time.Time) tea.Msg {
		return SearchTickMsg{Seq: seq}
	})
}

func loadNoteCmd(store note.Store, id, owner string) tea.Cmd {
	return func() tea.Msg {
		n, err := store.Get(context.Background(), id, owner)
		return NoteLoadedMsg{ID: id, Note: n, Err: err}
	}
}

func deleteNoteCmd(store note.Store, id, owner string) tea.Cmd {
	return func() tea.Msg {
		return NoteDeletedMsg{ID: id, Err: store.Delete(context.Background(), id, owner)}
	}
}

// waitEngineCmd reads the next transcription event for s. Exactly one is
// outstanding per session so events arrive in order.
func waitEngineCmd(s *session.Session) tea.Cmd {
	ch := s.EngineEvents()
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case ev := <-ch:
			return EngineEventMsg{Session: s, Event: ev}
		case <-s.Done():
			return nil
		}
	}
}

func waitSessionAuthCmd(s *session.Session) tea.Cmd {
	ch := s.AuthEvents()
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case ev := <-ch:
			return SessionAuthMsg{Session: s, Event: ev}
		case <-s.Done():
			return nil
		}
	}
}

func commitCmd(s *session.Session, fn session.CommitFunc) tea.Cmd {
	return func() tea.Msg {
		return CommitDoneMsg{Session: s, Result: fn(s.Context())}
	}
}

func clearFlashCmd(seq int) tea.Cmd {
	return tea.Tick(flashTimeout, func(time.Time) tea.Msg {
		return ClearFlashMsg{Seq: seq}
	})
}

// Update processes messages and returns the updated model and any commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case RestoredMsg:
		if msg.Err != nil {
			m.log.WithError(msg.Err).Warn("restore session")
			m.formErr = msg.Err.Error()
		}
		if !msg.SignedIn && m.screen == ScreenLoading {
			m.screen = ScreenLogin
		}
		return m, nil

	case AuthEventMsg:
		cmd := m.handleAuthEvent(msg.Event)
		return m, tea.Batch(cmd, waitAuthCmd(m.authSub))

	case SignInResultMsg:
		m.submitting = false
		if msg.Err != nil {
			m.formErr = msg.Err.Error()
			return m, nil
		}
		m.password = ""
		return m, nil

	case SignUpResultMsg:
		m.submitting = false
		if msg.Err != nil {
			m.formErr = msg.Err.Error()
			return m, nil
		}
		m.password = ""
		if !msg.Result.SessionCreated {
			m.screen = ScreenLogin
			m.formField = fieldPassword
			m.formInfo = "Check your email to confirm your account, then sign in."
		}
		return m, nil

	case SignOutResultMsg:
		if msg.Err != nil {
			cmd := m.setFlash(msg.Err.Error(), true)
			return m, cmd
		}
		return m, nil

	case SearchTickMsg:
		if msg.Seq != m.querySeq || m.screen != ScreenList {
			return m, nil
		}
		cmd := m.fetchNotes()
		return m, cmd

	case NotesLoadedMsg:
		if msg.Seq != m.fetchSeq {
			return m, nil
		}
		m.listLoading = false
		if msg.Err != nil {
			if errors.Is(msg.Err, note.ErrAuthRequired) {
				m.requireLogin("Sign in to see your notes.")
				return m, nil
			}
			m.listErr = msg.Err.Error()
			return m, nil
		}
		m.listErr = ""
		m.notesList = msg.Notes
		if m.selected >= len(m.notesList) {
			m.selected = max(0, len(m.notesList)-1)
		}
		return m, nil

	case NoteLoadedMsg:
		if msg.ID != m.loadingID || m.screen != ScreenViewer {
			return m, nil
		}
		m.loadingID = ""
		if msg.Err != nil {
			if errors.Is(msg.Err, note.ErrNotFound) {
				flash := m.setFlash("Note not found.", true)
				cmd := tea.Batch(flash, m.showList())
				return m, cmd
			}
			m.viewErr = msg.Err.Error()
			return m, nil
		}
		m.viewErr = ""
		n := msg.Note
		m.viewing = &n
		if m.sess != nil && m.sess.State() == session.Viewing {
			if err := m.sess.Retarget(&n); err == nil {
				return m, nil
			}
		}
		m.openSession(&n)
		return m, m.sessionCmds()

	case NoteDeletedMsg:
		if msg.Err != nil {
			m.log.WithError(msg.Err).WithField("note_id", msg.ID).Warn("delete note")
			cmd := tea.Batch(m.setFlash(msg.Err.Error(), true), m.fetchNotes())
			return m, cmd
		}
		cmd := tea.Batch(m.setFlash("Note deleted.", false), m.fetchNotes())
		return m, cmd

	case EngineEventMsg:
		if msg.Session != m.sess {
			return m, nil
		}
		if err := m.sess.HandleEngineEvent(msg.Event); err != nil {
			m.editorErr = err.Error()
		}
		return m, waitEngineCmd(m.sess)

	case SessionAuthMsg:
		if msg.Session != m.sess {
			return m, nil
		}
		m.sess.HandleAuthEvent(msg.Event)
		return m, waitSessionAuthCmd(m.sess)

	case CommitDoneMsg:
		if msg.Session != m.sess {
			return m, nil
		}
		out, err := m.sess.FinishCommit(msg.Result)
		if errors.Is(err, session.ErrDiscarded) {
			return m, nil
		}
		if err != nil {
			m.editorErr = err.Error()
			return m, nil
		}
		cmd := m.afterSave(out)
		return m, cmd

	case ClearFlashMsg:
		if msg.Seq == m.flashSeq {
			m.flash = ""
			m.flashErr = false
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) handleAuthEvent(ev auth.Event) tea.Cmd {
	switch ev.Type {
	case auth.SignedIn:
		if ev.Identity == nil {
			return nil
		}
		id := *ev.Identity
		m.identity = &id
		m.formErr = ""
		m.formInfo = ""
		m.password = ""
		switch m.screen {
		case ScreenLoading, ScreenLogin, ScreenSignup:
			return m.showList()
		}
	case auth.SignedOut:
		m.identity = nil
		m.closeSession()
		m.notesList = nil
		m.query = ""
		m.searching = false
		m.confirmDelete = ""
		m.viewing = nil
		m.screen = ScreenLogin
	}
	return nil
}

// requireLogin drops whatever is open and shows the login screen.
func (m *Model) requireLogin(reason string) {
	m.closeSession()
	m.viewing = nil
	m.screen = ScreenLogin
	m.formErr = reason
}

func (m *Model) owner() string {
	if m.identity == nil {
		return ""
	}
	return m.identity.ID
}

// fetchNotes loads the list for the current query. Responses for older
// fetches are dropped.
func (m *Model) fetchNotes() tea.Cmd {
	m.fetchSeq++
	m.listLoading = true
	return loadNotesCmd(m.notes, m.owner(), strings.TrimSpace(m.query), m.fetchSeq)
}

func (m *Model) showList() tea.Cmd {
	m.closeSession()
	m.viewing = nil
	m.loadingID = ""
	m.screen = ScreenList
	return m.fetchNotes()
}

func (m *Model) showViewer(id string) tea.Cmd {
	m.closeSession()
	m.viewing = nil
	m.viewErr = ""
	m.loadingID = id
	m.screen = ScreenViewer
	return loadNoteCmd(m.notes, id, m.owner())
}

// openSession replaces the active session with one for n (nil for a new
// note).
func (m *Model) openSession(n *note.Note) {
	m.closeSession()
	var engine session.Engine
	if m.newEngine != nil {
		engine = m.newEngine()
	}
	var ident *auth.Identity
	if m.identity != nil {
		id := *m.identity
		ident = &id
	}
	var sub *auth.Subscription
	if m.auth != nil {
		sub = m.auth.Subscribe()
	}
	m.sess = session.New(session.Config{
		Identity: ident,
		Auth:     sub,
		Note:     n,
		Store:    m.notes,
		Engine:   engine,
		Logger:   m.log,
	})
	m.editorField = fieldTitle
	m.editorErr = ""
}

func (m *Model) sessionCmds() tea.Cmd {
	if m.sess == nil {
		return nil
	}
	return tea.Batch(waitEngineCmd(m.sess), waitSessionAuthCmd(m.sess))
}

func (m *Model) closeSession() {
	if m.sess != nil {
		m.sess.Close()
		m.sess = nil
	}
}

// afterSave navigates away from a saved draft: to the saved note when its
// ID is known, otherwise to the list.
func (m *Model) afterSave(out session.Outcome) tea.Cmd {
	flash := m.setFlash("Note saved.", false)
	if out.Fallback || out.NoteID == "" {
		return tea.Batch(flash, m.showList())
	}
	return tea.Batch(flash, m.showViewer(out.NoteID))
}

func (m *Model) setFlash(text string, isErr bool) tea.Cmd {
	m.flashSeq++
	m.flash = text
	m.flashErr = isErr
	return clearFlashCmd(m.flashSeq)
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.closeSession()
	m.authSub.Close()
	return m, tea.Quit
}

// typed returns the text a key press inserts, if any.
func typed(msg tea.KeyMsg) (string, bool) {
	switch msg.Type {
	case tea.KeyRunes:
		return string(msg.Runes), true
	case tea.KeySpace:
		return " ", true
	}
	return "", false
}

func dropLastRune(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	return string(r[:len(r)-1])
}

// handleKey routes key presses to the current screen.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == KeyCtrlC {
		return m.quit()
	}
	switch m.screen {
	case ScreenLogin, ScreenSignup:
		return m.handleFormKey(msg)
	case ScreenList:
		return m.handleListKey(msg)
	case ScreenViewer:
		return m.handleViewerKey(msg)
	case ScreenEditor:
		return m.handleEditorKey(msg)
	}
	if msg.String() == KeyQuit {
		return m.quit()
	}
	return m, nil
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyTab, KeyShiftTab, KeyUp, KeyDown:
		if m.formField == fieldEmail {
			m.formField = fieldPassword
		} else {
			m.formField = fieldEmail
		}
		return m, nil

	case KeySwitchForm:
		if m.screen == ScreenLogin {
			m.screen = ScreenSignup
		} else {
			m.screen = ScreenLogin
		}
		m.formErr = ""
		m.formInfo = ""
		return m, nil

	case KeyEsc:
		if m.screen == ScreenSignup {
			m.screen = ScreenLogin
			m.formErr = ""
		}
		return m, nil

	case KeyEnter:
		if m.formField == fieldEmail {
			m.formField = fieldPassword
			return m, nil
		}
		if m.submitting || m.auth == nil {
			return m, nil
		}
		m.submitting = true
		m.formErr = ""
		m.formInfo = ""
		if m.screen == ScreenSignup {
			return m, signUpCmd(m.auth, m.email, m.password)
		}
		return m, signInCmd(m.auth, m.email, m.password)

	case KeyBackspace:
		if m.formField == fieldEmail {
			m.email = dropLastRune(m.email)
		} else {
			m.password = dropLastRune(m.password)
		}
		return m, nil
	}

	if text, ok := typed(msg); ok {
		if m.formField == fieldEmail {
			m.email += text
		} else {
			m.password += text
		}
	}
	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if m.confirmDelete != "" {
		switch key {
		case KeyYes:
			id := m.confirmDelete
			m.confirmDelete = ""
			return m, deleteNoteCmd(m.notes, id, m.owner())
		case KeyNo, KeyEsc:
			m.confirmDelete = ""
		}
		return m, nil
	}

	if m.searching {
		switch key {
		case KeyEsc, KeyEnter:
			m.searching = false
			return m, nil
		case KeyBackspace:
			m.query = dropLastRune(m.query)
			m.querySeq++
			return m, searchTickCmd(m.querySeq)
		}
		if text, ok := typed(msg); ok {
			m.query += text
			m.querySeq++
			return m, searchTickCmd(m.querySeq)
		}
		return m, nil
	}

	switch key {
	case KeyQuit:
		return m.quit()

	case KeyJ, KeyDown:
		if m.selected < len(m.notesList)-1 {
			m.selected++
		}
		return m, nil

	case KeyK, KeyUp:
		if m.selected > 0 {
			m.selected--
		}
		return m, nil

	case KeyEnter:
		if m.selected < len(m.notesList) {
			cmd := m.showViewer(m.notesList[m.selected].ID)
			return m, cmd
		}
		return m, nil

	case KeyNew:
		m.openSession(nil)
		m.screen = ScreenEditor
		return m, m.sessionCmds()

	case KeyDelete:
		if m.selected < len(m.notesList) {
			m.confirmDelete = m.notesList[m.selected].ID
		}
		return m, nil

	case KeySearch:
		m.searching = true
		return m, nil

	case KeyRefresh:
		cmd := m.fetchNotes()
		return m, cmd

	case KeyEsc:
		if m.query != "" {
			m.query = ""
			cmd := m.fetchNotes()
			return m, cmd
		}
		return m, nil

	case KeySignOut:
		if m.auth == nil {
			return m, nil
		}
		return m, signOutCmd(m.auth)
	}
	return m, nil
}

func (m Model) handleViewerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyQuit, KeyEsc:
		cmd := m.showList()
		return m, cmd

	case KeyEdit:
		if m.sess == nil || m.viewing == nil {
			return m, nil
		}
		if err := m.sess.Edit(); err != nil {
			m.viewErr = err.Error()
			return m, nil
		}
		m.screen = ScreenEditor
		m.editorField = fieldContent
		m.editorErr = ""
		return m, nil

	case KeyRefresh:
		if m.viewing == nil {
			return m, nil
		}
		m.loadingID = m.viewing.ID
		return m, loadNoteCmd(m.notes, m.viewing.ID, m.owner())
	}
	return m, nil
}

func (m Model) handleEditorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.sess
	if s == nil {
		cmd := m.showList()
		return m, cmd
	}

	switch msg.String() {
	case KeyEsc:
		base := s.Draft().Base
		s.Cancel()
		if base != nil {
			cmd := m.showViewer(base.ID)
			return m, cmd
		}
		cmd := m.showList()
		return m, cmd

	case KeySave:
		fn, err := s.BeginCommit()
		if errors.Is(err, note.ErrAuthRequired) {
			m.requireLogin("Sign in to save your note.")
			return m, nil
		}
		if err != nil {
			m.editorErr = err.Error()
			return m, nil
		}
		m.editorErr = ""
		return m, commitCmd(s, fn)

	case KeyRecord:
		if s.Stream() == session.Listening {
			s.StopRecording()
			return m, nil
		}
		if err := s.StartRecording(s.Context()); err != nil {
			m.editorErr = err.Error()
			return m, nil
		}
		m.editorErr = ""
		return m, nil

	case KeyTab, KeyShiftTab:
		if m.editorField == fieldTitle {
			m.editorField = fieldContent
		} else {
			m.editorField = fieldTitle
		}
		return m, nil

	case KeyEnter:
		if m.editorField == fieldTitle {
			m.editorField = fieldContent
			return m, nil
		}
		s.SetContent(s.Draft().Content + "\n")
		return m, nil

	case KeyBackspace:
		d := s.Draft()
		if m.editorField == fieldTitle {
			s.SetTitle(dropLastRune(d.Title))
		} else {
			s.SetContent(dropLastRune(d.Content))
		}
		return m, nil
	}

	if text, ok := typed(msg); ok {
		d := s.Draft()
		if m.editorField == fieldTitle {
			s.SetTitle(d.Title + text)
		} else {
			s.SetContent(d.Content + text)
		}
	}
	return m, nil
}
