package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"pgregory.net/rapid"

	"github.com/Vinw199/Voice-note/internal/auth"
	"github.com/Vinw199/Voice-note/internal/note"
)

var testNow = time.Date(2026, time.March, 3, 12, 0, 0, 0, time.UTC)

func newTestSession(t *testing.T, base *note.Note, store *fakeStore, engine Engine) *Session {
	t.Helper()
	logger, _ := test.NewNullLogger()
	s := New(Config{
		Identity: &auth.Identity{ID: "u1", Email: "ada@example.com"},
		Note:     base,
		Store:    store,
		Engine:   engine,
		Logger:   logger,
		Now:      func() time.Time { return testNow },
	})
	t.Cleanup(s.Close)
	return s
}

func existingNote() *note.Note {
	return &note.Note{
		ID:        "n1",
		Owner:     "u1",
		Title:     "Groceries",
		Content:   "milk",
		CreatedAt: testNow.Add(-time.Hour),
		UpdatedAt: testNow.Add(-time.Minute),
	}
}

func finalResult(texts ...string) EngineEvent {
	ev := EngineEvent{Kind: EventResult}
	for _, text := range texts {
		ev.Segments = append(ev.Segments, Segment{Text: text, Final: true})
	}
	return ev
}

func TestNewStates(t *testing.T) {
	s := newTestSession(t, nil, &fakeStore{}, nil)
	if s.State() != Editing {
		t.Errorf("create mode state = %v, want editing", s.State())
	}
	if d := s.Draft(); d.Title != "" || d.Content != "" || d.Base != nil {
		t.Errorf("create mode draft = %+v", d)
	}

	s = newTestSession(t, existingNote(), &fakeStore{}, nil)
	if s.State() != Viewing {
		t.Errorf("edit mode state = %v, want viewing", s.State())
	}
	s.SetTitle("ignored while viewing")
	if err := s.Edit(); err != nil {
		t.Fatalf("edit: %v", err)
	}
	d := s.Draft()
	if s.State() != Editing || d.Title != "Groceries" || d.Content != "milk" {
		t.Errorf("after edit: state %v draft %+v", s.State(), d)
	}
}

func TestEmptyTitleNeverReachesStore(t *testing.T) {
	for _, title := range []string{"", " ", "\t\n  "} {
		store := &fakeStore{}
		s := newTestSession(t, nil, store, nil)
		s.SetTitle(title)
		s.SetContent("some content")

		_, err := s.Commit(context.Background())
		var verr *note.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("title %q: err = %v, want ValidationError", title, err)
		}
		if store.calls() != 0 {
			t.Errorf("title %q: store called %d times", title, store.calls())
		}
		if s.State() != Editing || s.Saving() {
			t.Errorf("title %q: state %v saving %v", title, s.State(), s.Saving())
		}
	}
}

func TestCommitRequiresIdentity(t *testing.T) {
	store := &fakeStore{}
	s := newTestSession(t, nil, store, nil)
	s.HandleAuthEvent(auth.Event{Type: auth.SignedOut})
	s.SetTitle("Groceries")

	if _, err := s.Commit(context.Background()); !errors.Is(err, note.ErrAuthRequired) {
		t.Errorf("err = %v, want ErrAuthRequired", err)
	}
	if store.calls() != 0 {
		t.Errorf("store called %d times", store.calls())
	}

	s.HandleAuthEvent(auth.Event{Type: auth.SignedIn, Identity: &auth.Identity{ID: "u2"}})
	store.createID = "n9"
	if _, err := s.Commit(context.Background()); err != nil {
		t.Fatalf("commit after sign in: %v", err)
	}
	if store.creates[0].Owner != "u2" {
		t.Errorf("owner = %q, want u2", store.creates[0].Owner)
	}
}

func TestCommitCreate(t *testing.T) {
	store := &fakeStore{createID: "n42"}
	s := newTestSession(t, nil, store, nil)
	s.SetTitle("Groceries")
	s.SetContent("milk, eggs")

	out, err := s.Commit(context.Background())
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if out.NoteID != "n42" || out.Fallback {
		t.Errorf("outcome = %+v, want n42", out)
	}
	if s.State() != Saved || s.Outcome() != out {
		t.Errorf("state = %v outcome = %+v", s.State(), s.Outcome())
	}
	want := note.NewNote{Title: "Groceries", Content: "milk, eggs", Owner: "u1"}
	if len(store.creates) != 1 || store.creates[0] != want {
		t.Errorf("creates = %+v, want [%+v]", store.creates, want)
	}
}

func TestCommitTrimsFields(t *testing.T) {
	store := &fakeStore{createID: "n1"}
	s := newTestSession(t, nil, store, nil)
	s.SetTitle("  Groceries \n")
	s.SetContent("\tmilk, eggs  ")

	if _, err := s.Commit(context.Background()); err != nil {
		t.Fatalf("commit: %v", err)
	}
	got := store.creates[0]
	if got.Title != "Groceries" || got.Content != "milk, eggs" {
		t.Errorf("create = %+v", got)
	}
}

func TestCommitUpdate(t *testing.T) {
	store := &fakeStore{}
	base := existingNote()
	s := newTestSession(t, base, store, nil)
	if err := s.Edit(); err != nil {
		t.Fatalf("edit: %v", err)
	}
	s.SetTitle(" Groceries for Friday ")
	s.SetContent("milk, eggs ")

	out, err := s.Commit(context.Background())
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if out.NoteID != "n1" || s.State() != Saved {
		t.Errorf("outcome = %+v state = %v", out, s.State())
	}
	if len(store.updates) != 1 || len(store.creates) != 0 {
		t.Fatalf("updates = %d creates = %d", len(store.updates), len(store.creates))
	}
	u := store.updates[0]
	if u.id != "n1" || u.owner != "u1" {
		t.Errorf("update key = (%q, %q)", u.id, u.owner)
	}
	if u.fields.Title != "Groceries for Friday" || u.fields.Content != "milk, eggs" {
		t.Errorf("fields = %+v", u.fields)
	}
	if !u.fields.UpdatedAt.After(base.UpdatedAt) {
		t.Errorf("updatedAt %v not after %v", u.fields.UpdatedAt, base.UpdatedAt)
	}
}

func TestCommitUpdateAdvancesPastSkewedClock(t *testing.T) {
	store := &fakeStore{}
	base := existingNote()
	base.UpdatedAt = testNow.Add(time.Hour) // stored by a clock ahead of ours
	s := newTestSession(t, base, store, nil)
	s.Edit()

	if _, err := s.Commit(context.Background()); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if got := store.updates[0].fields.UpdatedAt; !got.After(base.UpdatedAt) {
		t.Errorf("updatedAt %v not after %v", got, base.UpdatedAt)
	}
}

func TestUpdatedAtAlwaysAdvances(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		offset := time.Duration(rapid.Int64Range(-int64(48*time.Hour), int64(48*time.Hour)).Draw(t, "offset"))
		base := existingNote()
		base.UpdatedAt = testNow.Add(offset)

		store := &fakeStore{}
		s := New(Config{
			Identity: &auth.Identity{ID: "u1"},
			Note:     base,
			Store:    store,
			Logger:   nullLogger(),
			Now:      func() time.Time { return testNow },
		})
		defer s.Close()
		s.Edit()
		if _, err := s.Commit(context.Background()); err != nil {
			t.Fatalf("commit: %v", err)
		}
		if got := store.updates[0].fields.UpdatedAt; !got.After(base.UpdatedAt) {
			t.Fatalf("updatedAt %v not after %v", got, base.UpdatedAt)
		}
	})
}

func TestCommitStoreFailureKeepsDraft(t *testing.T) {
	store := &fakeStore{err: errors.New("permission denied for table notes")}
	s := newTestSession(t, nil, store, nil)
	s.SetTitle("Groceries")
	s.SetContent("milk")

	_, err := s.Commit(context.Background())
	if err == nil || err.Error() != "permission denied for table notes" {
		t.Fatalf("err = %v, want store message verbatim", err)
	}
	var serr *note.StoreError
	if !errors.As(err, &serr) || serr.Op != "create" {
		t.Errorf("err = %#v, want StoreError for create", err)
	}
	if s.State() != Editing || s.Saving() {
		t.Errorf("state = %v saving = %v", s.State(), s.Saving())
	}
	if d := s.Draft(); d.Title != "Groceries" || d.Content != "milk" {
		t.Errorf("draft = %+v", d)
	}

	// Retry succeeds once the store recovers.
	store.err = nil
	store.createID = "n7"
	out, err := s.Commit(context.Background())
	if err != nil || out.NoteID != "n7" {
		t.Fatalf("retry = %+v, %v", out, err)
	}
}

func TestCommitWithoutIDFallsBack(t *testing.T) {
	logger, hook := test.NewNullLogger()
	store := &fakeStore{}
	s := New(Config{Identity: &auth.Identity{ID: "u1"}, Store: store, Logger: logger})
	defer s.Close()
	s.SetTitle("Groceries")

	out, err := s.Commit(context.Background())
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if !out.Fallback || out.NoteID != "" {
		t.Errorf("outcome = %+v, want fallback", out)
	}
	if s.State() != Saved {
		t.Errorf("state = %v, want saved", s.State())
	}
	entry := hook.LastEntry()
	if entry == nil || entry.Level != log.WarnLevel {
		t.Errorf("expected a warning, got %#v", entry)
	}
}

func TestCommitInFlightRejectsSecond(t *testing.T) {
	store := &fakeStore{createID: "n1", block: make(chan struct{})}
	s := newTestSession(t, nil, store, nil)
	s.SetTitle("Groceries")

	fn, err := s.BeginCommit()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	results := make(chan CommitResult, 1)
	go func() { results <- fn(context.Background()) }()

	if !s.Saving() {
		t.Error("Saving() = false while a commit is outstanding")
	}
	if _, err := s.BeginCommit(); !errors.Is(err, ErrSaveInFlight) {
		t.Errorf("second begin err = %v, want ErrSaveInFlight", err)
	}
	if _, err := s.Commit(context.Background()); !errors.Is(err, ErrSaveInFlight) {
		t.Errorf("second commit err = %v, want ErrSaveInFlight", err)
	}

	close(store.block)
	out, err := s.FinishCommit(<-results)
	if err != nil || out.NoteID != "n1" {
		t.Fatalf("finish = %+v, %v", out, err)
	}
	if store.mutations() != 1 {
		t.Errorf("mutations = %d, want 1", store.mutations())
	}
}

func TestCancelNeverTouchesStore(t *testing.T) {
	store := &fakeStore{}
	engine := newFakeEngine()
	s := newTestSession(t, nil, store, engine)
	s.SetTitle("Groceries")
	s.SetContent("milk")
	if err := s.StartRecording(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	s.Cancel()
	s.Cancel()

	if s.State() != Cancelled {
		t.Errorf("state = %v, want cancelled", s.State())
	}
	if s.Stream() != Idle || engine.stops != 1 {
		t.Errorf("stream = %v stops = %d", s.Stream(), engine.stops)
	}
	if d := s.Draft(); d.Title != "" || d.Content != "" {
		t.Errorf("draft not discarded: %+v", d)
	}
	if store.calls() != 0 {
		t.Errorf("store called %d times", store.calls())
	}
	if _, err := s.Commit(context.Background()); !errors.Is(err, ErrNotEditing) {
		t.Errorf("commit after cancel err = %v", err)
	}
}

func TestCancelDuringCommitDiscardsResult(t *testing.T) {
	store := &fakeStore{createID: "n1"}
	s := newTestSession(t, nil, store, nil)
	s.SetTitle("Groceries")

	fn, err := s.BeginCommit()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	res := fn(context.Background())
	s.Cancel()
	if _, err := s.FinishCommit(res); !errors.Is(err, ErrDiscarded) {
		t.Errorf("finish err = %v, want ErrDiscarded", err)
	}
	if s.State() != Cancelled {
		t.Errorf("state = %v, want cancelled", s.State())
	}
}

func TestRecordingLifecycle(t *testing.T) {
	engine := newFakeEngine()
	s := newTestSession(t, nil, &fakeStore{}, engine)

	if err := s.StartRecording(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if s.Stream() != Listening {
		t.Errorf("stream = %v, want listening", s.Stream())
	}
	want := StartOptions{Continuous: true, Interim: true, Locale: "en-US"}
	if len(engine.starts) != 1 || engine.starts[0] != want {
		t.Errorf("starts = %+v, want [%+v]", engine.starts, want)
	}

	// Starting again is a no-op.
	if err := s.StartRecording(context.Background()); err != nil {
		t.Fatalf("second start: %v", err)
	}
	if len(engine.starts) != 1 {
		t.Errorf("starts = %d, want 1", len(engine.starts))
	}

	s.StopRecording()
	s.StopRecording()
	if s.Stream() != Idle {
		t.Errorf("stream = %v, want idle", s.Stream())
	}
	if engine.stops != 1 {
		t.Errorf("stops = %d, want 1", engine.stops)
	}

	// The end notification does not change state.
	if err := s.HandleEngineEvent(EngineEvent{Kind: EventEnd}); err != nil {
		t.Errorf("end event err = %v", err)
	}
	if s.Stream() != Idle || s.State() != Editing {
		t.Errorf("after end: stream %v state %v", s.Stream(), s.State())
	}
}

func TestStopWhenIdleIsNoop(t *testing.T) {
	engine := newFakeEngine()
	s := newTestSession(t, nil, &fakeStore{}, engine)
	s.StopRecording()
	if engine.stops != 0 {
		t.Errorf("stops = %d, want 0", engine.stops)
	}
}

func TestStartRecordingUnsupported(t *testing.T) {
	s := newTestSession(t, nil, &fakeStore{}, nil)
	if err := s.StartRecording(context.Background()); !errors.Is(err, ErrUnsupported) {
		t.Errorf("nil engine err = %v", err)
	}

	engine := newFakeEngine()
	engine.available = false
	s = newTestSession(t, nil, &fakeStore{}, engine)
	if s.CanRecord() {
		t.Error("CanRecord() = true for unavailable engine")
	}
	if err := s.StartRecording(context.Background()); !errors.Is(err, ErrUnsupported) {
		t.Errorf("unavailable engine err = %v", err)
	}
	if s.Stream() != Idle {
		t.Errorf("stream = %v, want idle", s.Stream())
	}
}

func TestStartRecordingFailure(t *testing.T) {
	engine := newFakeEngine()
	engine.startErr = errors.New("device busy")
	s := newTestSession(t, nil, &fakeStore{}, engine)

	err := s.StartRecording(context.Background())
	if err == nil || !strings.HasPrefix(err.Error(), "could not start recording") {
		t.Fatalf("err = %v", err)
	}
	if s.Stream() != Idle {
		t.Errorf("stream = %v, want idle", s.Stream())
	}
}

func TestStartRecordingNeedsEditing(t *testing.T) {
	s := newTestSession(t, existingNote(), &fakeStore{}, newFakeEngine())
	if err := s.StartRecording(context.Background()); !errors.Is(err, ErrNotEditing) {
		t.Errorf("err = %v, want ErrNotEditing", err)
	}
}

func TestFinalFragmentsAppend(t *testing.T) {
	engine := newFakeEngine()
	s := newTestSession(t, nil, &fakeStore{}, engine)
	s.StartRecording(context.Background())

	s.HandleEngineEvent(EngineEvent{Kind: EventResult, Segments: []Segment{
		{Text: "buy", Final: true},
		{Text: "mil", Final: false},
	}})
	if got := s.Draft().Content; got != "buy" {
		t.Errorf("content = %q, want %q", got, "buy")
	}
	if s.Interim() != "mil" {
		t.Errorf("interim = %q, want %q", s.Interim(), "mil")
	}

	s.HandleEngineEvent(finalResult("milk"))
	s.HandleEngineEvent(finalResult(""))
	s.HandleEngineEvent(finalResult("and eggs"))
	if got := s.Draft().Content; got != "buy milk and eggs" {
		t.Errorf("content = %q", got)
	}
	if s.Interim() != "" {
		t.Errorf("interim = %q, want empty after final result", s.Interim())
	}
}

func TestFragmentsAfterStopStillApply(t *testing.T) {
	engine := newFakeEngine()
	s := newTestSession(t, nil, &fakeStore{}, engine)
	s.StartRecording(context.Background())
	s.StopRecording()

	s.HandleEngineEvent(finalResult("late words"))
	if got := s.Draft().Content; got != "late words" {
		t.Errorf("content = %q", got)
	}
}

func TestFragmentConcatenation(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		prior := rapid.StringMatching(`[a-z]{0,6}`).Draw(t, "prior")
		frags := rapid.SliceOf(rapid.StringMatching(`[a-z]{0,6}`)).Draw(t, "frags")

		s := New(Config{Store: &fakeStore{}, Engine: newFakeEngine(), Logger: nullLogger()})
		defer s.Close()
		s.SetContent(prior)
		s.StartRecording(context.Background())

		want := prior
		for _, f := range frags {
			s.HandleEngineEvent(finalResult(f))
			if want != "" && f != "" {
				want += " "
			}
			want += f
		}
		if got := s.Draft().Content; got != want {
			t.Fatalf("content = %q, want %q", got, want)
		}
	})
}

func TestInterimNeverInDraft(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		texts := rapid.SliceOfN(rapid.StringMatching(`[a-z]{1,6}`), 1, 10).Draw(t, "texts")

		s := New(Config{Store: &fakeStore{}, Engine: newFakeEngine(), Logger: nullLogger()})
		defer s.Close()
		s.StartRecording(context.Background())
		for _, text := range texts {
			s.HandleEngineEvent(EngineEvent{Kind: EventResult, Segments: []Segment{{Text: text}}})
		}
		if got := s.Draft().Content; got != "" {
			t.Fatalf("content = %q, want interim text kept out of the draft", got)
		}
	})
}

func TestRecognitionErrors(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{code: "no-speech", want: "no speech detected"},
		{code: "audio-capture", want: "microphone error"},
		{code: "not-allowed", want: "microphone access denied"},
		{code: "network", want: "network error during recognition"},
		{code: "aborted", want: "speech recognition error"},
		{code: "", want: "speech recognition error"},
	}
	for _, tt := range tests {
		engine := newFakeEngine()
		s := newTestSession(t, nil, &fakeStore{}, engine)
		s.SetContent("kept")
		s.StartRecording(context.Background())

		err := s.HandleEngineEvent(EngineEvent{Kind: EventError, Code: tt.code})
		var rerr *RecognitionError
		if !errors.As(err, &rerr) || err.Error() != tt.want {
			t.Errorf("code %q: err = %v, want %q", tt.code, err, tt.want)
		}
		if s.Stream() != Idle {
			t.Errorf("code %q: stream = %v, want idle", tt.code, s.Stream())
		}
		if s.Draft().Content != "kept" {
			t.Errorf("code %q: content = %q", tt.code, s.Draft().Content)
		}
		// The engine already ended the span on its own.
		s.StopRecording()
		if engine.stops != 0 {
			t.Errorf("code %q: stops = %d, want 0", tt.code, engine.stops)
		}
	}
}

func TestRecognitionErrorAfterStopIgnored(t *testing.T) {
	engine := newFakeEngine()
	s := newTestSession(t, nil, &fakeStore{}, engine)
	s.SetContent("kept")
	if err := s.StartRecording(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	s.StopRecording()

	if err := s.HandleEngineEvent(EngineEvent{Kind: EventError, Code: "network"}); err != nil {
		t.Errorf("err = %v, want nil after stop", err)
	}
	if s.Stream() != Idle {
		t.Errorf("stream = %v, want idle", s.Stream())
	}
	if s.Draft().Content != "kept" {
		t.Errorf("content = %q", s.Draft().Content)
	}
}

func TestRetargetStopsRecordingOnce(t *testing.T) {
	engine := newFakeEngine()
	s := newTestSession(t, nil, &fakeStore{}, engine)
	s.SetTitle("Unsaved")
	s.StartRecording(context.Background())

	other := existingNote()
	other.ID, other.Title, other.Content = "n2", "Other", "other body"
	if err := s.Retarget(other); err != nil {
		t.Fatalf("retarget: %v", err)
	}

	if engine.stops != 1 {
		t.Errorf("stops = %d, want 1", engine.stops)
	}
	if s.Stream() != Idle {
		t.Errorf("stream = %v, want idle", s.Stream())
	}
	d := s.Draft()
	if d.Base == nil || d.Base.ID != "n2" || d.Title != "Other" || d.Content != "other body" {
		t.Errorf("draft = %+v", d)
	}
}

func TestRetargetDropsPendingCommit(t *testing.T) {
	store := &fakeStore{}
	s := newTestSession(t, existingNote(), store, nil)
	s.Edit()

	fn, err := s.BeginCommit()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	other := existingNote()
	other.ID = "n2"
	s.Retarget(other)
	if s.Saving() {
		t.Error("retarget should reset the in-flight flag")
	}

	if _, err := s.FinishCommit(fn(context.Background())); !errors.Is(err, ErrDiscarded) {
		t.Errorf("stale finish err = %v, want ErrDiscarded", err)
	}
	if s.State() != Editing {
		t.Errorf("state = %v, want editing", s.State())
	}

	// The new target can be saved.
	if _, err := s.Commit(context.Background()); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if last := store.updates[len(store.updates)-1]; last.id != "n2" {
		t.Errorf("updated %q, want n2", last.id)
	}
}

func TestCommitStopsRecording(t *testing.T) {
	engine := newFakeEngine()
	store := &fakeStore{createID: "n1"}
	s := newTestSession(t, nil, store, engine)
	s.SetTitle("Dictated")
	s.StartRecording(context.Background())
	s.HandleEngineEvent(finalResult("hello"))

	if _, err := s.Commit(context.Background()); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if engine.stops != 1 || s.Stream() != Idle {
		t.Errorf("stops = %d stream = %v", engine.stops, s.Stream())
	}
	if store.creates[0].Content != "hello" {
		t.Errorf("content = %q", store.creates[0].Content)
	}
}

func TestCloseAbortsAndDropsLateResults(t *testing.T) {
	engine := newFakeEngine()
	store := &fakeStore{createID: "n1"}
	s := New(Config{Identity: &auth.Identity{ID: "u1"}, Store: store, Engine: engine, Logger: nullLogger()})
	s.SetTitle("Groceries")

	fn, err := s.BeginCommit()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	s.Close()
	s.Close()

	if engine.aborts != 1 {
		t.Errorf("aborts = %d, want 1", engine.aborts)
	}
	select {
	case <-s.Done():
	default:
		t.Error("Done() not closed after Close")
	}
	if _, err := s.FinishCommit(fn(context.Background())); !errors.Is(err, ErrDiscarded) {
		t.Errorf("late finish err = %v, want ErrDiscarded", err)
	}
	if err := s.HandleEngineEvent(finalResult("late")); err != nil {
		t.Errorf("late event err = %v", err)
	}
	if s.Draft().Content != "" {
		t.Errorf("late fragment applied: %q", s.Draft().Content)
	}
	if err := s.StartRecording(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("start after close err = %v", err)
	}
}

func TestCloseAbortsWhileIdle(t *testing.T) {
	engine := newFakeEngine()
	s := New(Config{Store: &fakeStore{}, Engine: engine, Logger: nullLogger()})
	s.Close()
	if engine.aborts != 1 {
		t.Errorf("aborts = %d, want 1", engine.aborts)
	}
}

func TestCloseEndsAuthSubscription(t *testing.T) {
	p := auth.NewProvider(nil, nil, nullLogger())
	s := New(Config{Auth: p.Subscribe(), Store: &fakeStore{}, Logger: nullLogger()})
	if s.AuthEvents() == nil {
		t.Fatal("AuthEvents() = nil with a subscription")
	}
	s.Close()
	s.Close()
}

func nullLogger() *log.Logger {
	logger, _ := test.NewNullLogger()
	return logger
}
