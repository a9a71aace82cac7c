// Package session implements the note editing session: a local draft, an
// optional live transcription stream and the save/cancel protocol that
// reconciles the draft with the note store.
//
// A Session is not safe for concurrent use. It is driven from a single
// event loop; store calls run elsewhere through CommitFunc and come back
// through FinishCommit.
package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Vinw199/Voice-note/internal/auth"
	"github.com/Vinw199/Voice-note/internal/note"
)

// State is the session's position in its lifecycle.
type State int

const (
	Viewing State = iota
	Editing
	Saved
	Cancelled
)

func (s State) String() string {
	switch s {
	case Viewing:
		return "viewing"
	case Editing:
		return "editing"
	case Saved:
		return "saved"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// StreamState is the state of the transcription stream.
type StreamState int

const (
	Idle StreamState = iota
	Listening
	Stopping
)

func (s StreamState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Listening:
		return "listening"
	case Stopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// Draft is the unsaved edit buffer. Base is nil for a new note.
type Draft struct {
	Title   string
	Content string
	Base    *note.Note
}

// Outcome is the result of a successful commit. Fallback is set when the
// store reported success without an identifier; callers then navigate to
// the note list instead of the note.
type Outcome struct {
	NoteID   string
	Fallback bool
}

// Config holds the collaborators of a Session.
type Config struct {
	// Identity is the signed-in user, nil when signed out.
	Identity *auth.Identity
	// Auth delivers sign-in/sign-out events. Optional; the session closes
	// it on Close.
	Auth *auth.Subscription
	// Note is the note being viewed/edited, nil to create a new note.
	Note   *note.Note
	Store  note.Store
	Engine Engine // nil when transcription is unavailable
	Logger *log.Logger
	Now    func() time.Time
}

// Session is one note editing session.
type Session struct {
	identity *auth.Identity
	authSub  *auth.Subscription
	store    note.Store
	engine   Engine
	log      *log.Logger
	now      func() time.Time

	state   State
	stream  StreamState
	draft   Draft
	interim string
	outcome Outcome

	inFlight bool
	gen      uint64

	// lifecycle is cancelled exactly once, by Close.
	lifecycle context.Context
	cancel    context.CancelFunc
}

// New creates a session. With a base note it starts in Viewing, otherwise
// in Editing with an empty draft.
func New(cfg Config) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	ctx, cancel := context.WithCancel(context.Background())

	s := &Session{
		identity:  cfg.Identity,
		authSub:   cfg.Auth,
		store:     cfg.Store,
		engine:    cfg.Engine,
		log:       logger,
		now:       now,
		lifecycle: ctx,
		cancel:    cancel,
	}
	s.draft.Base = cloneNote(cfg.Note)
	if s.draft.Base != nil {
		s.state = Viewing
	} else {
		s.state = Editing
	}
	s.resetDraft()
	return s
}

// State returns the lifecycle state.
func (s *Session) State() State { return s.state }

// Stream returns the transcription stream state.
func (s *Session) Stream() StreamState { return s.stream }

// Draft returns a copy of the current draft.
func (s *Session) Draft() Draft {
	d := s.draft
	d.Base = cloneNote(s.draft.Base)
	return d
}

// Interim returns the latest unconfirmed transcript text. It is never part
// of the draft.
func (s *Session) Interim() string { return s.interim }

// Saving reports whether a commit is outstanding.
func (s *Session) Saving() bool { return s.inFlight }

// Outcome returns the result of the commit that moved the session to Saved.
func (s *Session) Outcome() Outcome { return s.outcome }

// Identity returns the identity the session saves as, nil when signed out.
func (s *Session) Identity() *auth.Identity { return s.identity }

// Context is cancelled when the session closes. Async work started on
// behalf of the session should use it.
func (s *Session) Context() context.Context { return s.lifecycle }

// Done is closed when the session closes.
func (s *Session) Done() <-chan struct{} { return s.lifecycle.Done() }

// EngineEvents returns the engine's event channel, nil without an engine.
func (s *Session) EngineEvents() <-chan EngineEvent {
	if s.engine == nil {
		return nil
	}
	return s.engine.Events()
}

// AuthEvents returns the auth subscription channel, nil without one.
func (s *Session) AuthEvents() <-chan auth.Event {
	if s.authSub == nil {
		return nil
	}
	return s.authSub.C
}

// CanRecord reports whether StartRecording could succeed on this host.
func (s *Session) CanRecord() bool {
	return s.engine != nil && s.engine.Available()
}

func (s *Session) closed() bool { return s.lifecycle.Err() != nil }

// Edit moves a Viewing session to Editing, initializing the draft from the
// base note.
func (s *Session) Edit() error {
	if s.closed() {
		return ErrClosed
	}
	switch s.state {
	case Editing:
		return nil
	case Viewing:
		s.state = Editing
		s.resetDraft()
		return nil
	default:
		return ErrNotEditing
	}
}

// SetTitle replaces the draft title. Ignored outside Editing.
func (s *Session) SetTitle(title string) {
	if s.editable() {
		s.draft.Title = title
	}
}

// SetContent replaces the draft content. Ignored outside Editing.
func (s *Session) SetContent(content string) {
	if s.editable() {
		s.draft.Content = content
	}
}

func (s *Session) editable() bool {
	return !s.closed() && s.state == Editing
}

// StartRecording starts a transcription span. It is a no-op while already
// listening.
func (s *Session) StartRecording(ctx context.Context) error {
	if s.closed() {
		return ErrClosed
	}
	if s.state != Editing {
		return ErrNotEditing
	}
	if !s.CanRecord() {
		return ErrUnsupported
	}
	if s.stream == Listening {
		return nil
	}

	opts := StartOptions{Continuous: true, Interim: true, Locale: Locale}
	if err := s.engine.Start(ctx, opts); err != nil {
		s.stream = Idle
		s.log.WithError(err).Warn("start recording")
		return fmt.Errorf("could not start recording: %w", err)
	}
	s.stream = Listening
	s.log.Debug("recording started")
	return nil
}

// StopRecording ends the current span. The session is Idle when it
// returns; the engine's own end notification is not awaited. It is a no-op
// unless listening.
func (s *Session) StopRecording() {
	if s.stream != Listening {
		return
	}
	s.stream = Stopping
	if err := s.engine.Stop(); err != nil {
		s.log.WithError(err).Warn("stop recording")
	}
	s.stream = Idle
	s.interim = ""
	s.log.Debug("recording stopped")
}

// HandleEngineEvent applies one engine event. Final segments are appended
// to the draft content in arrival order. An error event stops recording
// and is returned as a *RecognitionError for the caller to show. Errors for
// a span the user already stopped are dropped.
func (s *Session) HandleEngineEvent(ev EngineEvent) error {
	if s.closed() || s.state != Editing {
		return nil
	}
	switch ev.Kind {
	case EventResult:
		var interim []string
		for _, seg := range ev.Segments {
			if seg.Final {
				s.draft.Content = appendFragment(s.draft.Content, seg.Text)
			} else if seg.Text != "" {
				interim = append(interim, seg.Text)
			}
		}
		s.interim = strings.Join(interim, " ")
	case EventError:
		if s.stream != Listening {
			s.log.WithField("code", ev.Code).Debug("recognition error after stop")
			return nil
		}
		s.interim = ""
		s.stream = Idle
		s.log.WithField("code", ev.Code).Warn("speech recognition error")
		return &RecognitionError{Code: ev.Code}
	case EventEnd:
		// Informational only.
	}
	return nil
}

// HandleAuthEvent updates the identity the session saves as.
func (s *Session) HandleAuthEvent(ev auth.Event) {
	if s.closed() {
		return
	}
	switch ev.Type {
	case auth.SignedIn:
		if ev.Identity != nil {
			id := *ev.Identity
			s.identity = &id
		}
	case auth.SignedOut:
		s.identity = nil
	}
}

// Retarget points the session at another note (nil for a new one). Any
// recording is stopped first, a pending commit is forgotten and the draft
// is reinitialized.
func (s *Session) Retarget(n *note.Note) error {
	if s.closed() {
		return ErrClosed
	}
	s.StopRecording()
	s.inFlight = false
	s.gen++
	s.outcome = Outcome{}
	s.draft.Base = cloneNote(n)
	if s.draft.Base == nil || s.state != Viewing {
		s.state = Editing
	}
	s.resetDraft()
	return nil
}

// CommitResult is what a CommitFunc hands back to FinishCommit.
type CommitResult struct {
	NoteID string
	Err    error

	gen uint64
}

// CommitFunc performs the single store mutation of a commit. It touches no
// session state and may run on any goroutine.
type CommitFunc func(ctx context.Context) CommitResult

// BeginCommit validates the draft and marks a save as in flight. The
// returned func performs the store call; pass its result to FinishCommit.
// Recording is stopped before the draft is captured.
func (s *Session) BeginCommit() (CommitFunc, error) {
	if s.closed() {
		return nil, ErrClosed
	}
	if s.state != Editing {
		return nil, ErrNotEditing
	}
	if s.inFlight {
		return nil, ErrSaveInFlight
	}
	if s.identity == nil || s.identity.ID == "" {
		return nil, note.ErrAuthRequired
	}
	title := strings.TrimSpace(s.draft.Title)
	if title == "" {
		return nil, &note.ValidationError{Field: "title", Message: "please enter a title"}
	}

	s.StopRecording()
	content := strings.TrimSpace(s.draft.Content)
	owner := s.identity.ID
	store := s.store
	gen := s.gen
	s.inFlight = true

	if base := s.draft.Base; base != nil {
		id := base.ID
		updatedAt := s.now()
		if !updatedAt.After(base.UpdatedAt) {
			updatedAt = base.UpdatedAt.Add(time.Millisecond)
		}
		fields := note.Fields{Title: title, Content: content, UpdatedAt: updatedAt}
		return func(ctx context.Context) CommitResult {
			err := store.Update(ctx, id, owner, fields)
			if err != nil {
				return CommitResult{Err: note.Failure("update", err), gen: gen}
			}
			return CommitResult{NoteID: id, gen: gen}
		}, nil
	}

	n := note.NewNote{Title: title, Content: content, Owner: owner}
	return func(ctx context.Context) CommitResult {
		id, err := store.Create(ctx, n)
		if err != nil {
			return CommitResult{Err: note.Failure("create", err), gen: gen}
		}
		return CommitResult{NoteID: id, gen: gen}
	}, nil
}

// FinishCommit applies a commit result. On failure the session stays in
// Editing with the draft untouched and the store error is returned. On
// success the session moves to Saved. Results for a closed, cancelled or
// retargeted session return ErrDiscarded.
func (s *Session) FinishCommit(res CommitResult) (Outcome, error) {
	if s.closed() || res.gen != s.gen || s.state != Editing {
		return Outcome{}, ErrDiscarded
	}
	s.inFlight = false
	if res.Err != nil {
		s.log.WithError(res.Err).Warn("save note")
		return Outcome{}, res.Err
	}

	out := Outcome{NoteID: res.NoteID}
	if out.NoteID == "" {
		out.Fallback = true
		s.log.Warn("store reported a successful save without a note id")
	}
	s.outcome = out
	s.state = Saved
	return out, nil
}

// Commit validates and saves the draft synchronously.
func (s *Session) Commit(ctx context.Context) (Outcome, error) {
	fn, err := s.BeginCommit()
	if err != nil {
		return Outcome{}, err
	}
	return s.FinishCommit(fn(ctx))
}

// Cancel stops recording, discards the draft and moves to Cancelled. It
// never touches the store and may be called repeatedly.
func (s *Session) Cancel() {
	if s.closed() || (s.state != Editing && s.state != Viewing) {
		return
	}
	s.StopRecording()
	s.inFlight = false
	s.interim = ""
	base := s.draft.Base
	s.draft = Draft{Base: base}
	s.state = Cancelled
}

// Close tears the session down. The engine is aborted whether or not it is
// recording and later results are ignored. Close is idempotent.
func (s *Session) Close() {
	if s.closed() {
		return
	}
	s.cancel()
	s.stream = Idle
	s.interim = ""
	if s.engine != nil {
		if err := s.engine.Abort(); err != nil {
			s.log.WithError(err).Debug("abort engine")
		}
	}
	s.authSub.Close()
}

func (s *Session) resetDraft() {
	s.interim = ""
	s.draft.Title, s.draft.Content = "", ""
	if b := s.draft.Base; b != nil {
		s.draft.Title, s.draft.Content = b.Title, b.Content
	}
}

// appendFragment joins a final fragment onto content with a single space
// when both sides are non-empty.
func appendFragment(content, fragment string) string {
	if content != "" && fragment != "" {
		return content + " " + fragment
	}
	return content + fragment
}

func cloneNote(n *note.Note) *note.Note {
	if n == nil {
		return nil
	}
	c := *n
	return &c
}
