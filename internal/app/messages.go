package app

import (
	"github.com/Vinw199/Voice-note/internal/auth"
	"github.com/Vinw199/Voice-note/internal/note"
	"github.com/Vinw199/Voice-note/internal/session"
)

// RestoredMsg reports the outcome of restoring a persisted session.
type RestoredMsg struct {
	SignedIn bool
	Err      error
}

// AuthEventMsg carries a sign-in or sign-out from the auth provider.
type AuthEventMsg struct {
	Event auth.Event
}

// SignInResultMsg is sent when a sign-in attempt completes.
type SignInResultMsg struct {
	Err error
}

// SignUpResultMsg is sent when a sign-up attempt completes.
type SignUpResultMsg struct {
	Result auth.SignUpResult
	Err    error
}

// SignOutResultMsg is sent when sign-out completes.
type SignOutResultMsg struct {
	Err error
}

// NotesLoadedMsg carries the note list for fetch Seq.
type NotesLoadedMsg struct {
	Seq   int
	Notes []note.Summary
	Err   error
}

// SearchTickMsg fires when the search debounce for Seq elapses.
type SearchTickMsg struct {
	Seq int
}

// NoteLoadedMsg carries a note fetched for the viewer.
type NoteLoadedMsg struct {
	ID   string
	Note note.Note
	Err  error
}

// NoteDeletedMsg is sent when a delete completes.
type NoteDeletedMsg struct {
	ID  string
	Err error
}

// EngineEventMsg wraps a transcription event for the session that
// started the recording.
type EngineEventMsg struct {
	Session *session.Session
	Event   session.EngineEvent
}

// SessionAuthMsg delivers an auth change to an editing session.
type SessionAuthMsg struct {
	Session *session.Session
	Event   auth.Event
}

// CommitDoneMsg carries a finished save back to its session.
type CommitDoneMsg struct {
	Session *session.Session
	Result  session.CommitResult
}

// ClearFlashMsg clears a transient message after a timeout.
type ClearFlashMsg struct {
	Seq int
}
