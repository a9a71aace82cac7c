// Package note defines note records and the owner-scoped store contract
// shared by the terminal client, the notes backend and the editing session.
package note

import (
	"context"
	"time"
)

// Note is a persisted note. Owner never changes after creation.
type Note struct {
	ID        string    `json:"id"`
	Owner     string    `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Summary is the list projection of a note.
type Summary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewNote carries the fields of a note being created.
type NewNote struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Owner   string `json:"-"`
}

// Fields carries the mutable fields of an update.
type Fields struct {
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListOptions filters a listing. TitleMatches is a case-insensitive
// substring of the title; empty matches everything.
type ListOptions struct {
	TitleMatches string
}

// Store is remote or local CRUD storage for notes. Every operation is scoped
// by owner; a note owned by someone else behaves exactly like a missing one.
type Store interface {
	Create(ctx context.Context, n NewNote) (string, error)
	Update(ctx context.Context, id, owner string, f Fields) error
	Delete(ctx context.Context, id, owner string) error
	Get(ctx context.Context, id, owner string) (Note, error)
	// List returns summaries ordered by UpdatedAt, newest first.
	List(ctx context.Context, owner string, opts ListOptions) ([]Summary, error)
}

// Summarize projects a note into its list form.
func (n Note) Summarize() Summary {
	return Summary{ID: n.ID, Title: n.Title, Content: n.Content, UpdatedAt: n.UpdatedAt}
}

// Preview truncates text to maxLen runes, appending "..." when cut.
func Preview(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen]) + "..."
}

// ShortDate formats t like "Jan 2, 2006". The zero time formats as "".
func ShortDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("Jan 2, 2006")
}
