package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"modernc.org/sqlite"

	"github.com/Vinw199/Voice-note/internal/auth"
	"github.com/Vinw199/Voice-note/internal/note"
)

// casefold lowers text with Unicode case rules. SQLite's own LIKE and
// lower() only fold ASCII.
func init() {
	sqlite.MustRegisterDeterministicScalarFunction("casefold", 1, func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
		switch v := args[0].(type) {
		case string:
			return strings.ToLower(v), nil
		case []byte:
			return strings.ToLower(string(v)), nil
		default:
			return v, nil
		}
	})
}

// Store implements note.Store and auth.UserStore on SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// DefaultDBPath returns the default database path.
func DefaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "voicenote", "notes.sqlite")
}

// Open opens (creating if needed) the database at path with WAL and applies
// the schema. Use ":memory:" for a throwaway database.
func Open(path string) (*Store, error) {
	dsn := ":memory:"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite serializes writers, and a single connection keeps an in-memory
	// database from being split across the pool.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Create inserts a note and returns its new identifier.
func (s *Store) Create(ctx context.Context, n note.NewNote) (string, error) {
	if n.Owner == "" {
		return "", note.ErrAuthRequired
	}
	id := uuid.NewString()
	now := unixFromTime(s.now())
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notes (id, owner, title, content, createdAt, updatedAt)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, n.Owner, n.Title, n.Content, now, now)
	if err != nil {
		return "", fmt.Errorf("insert note: %w", err)
	}
	return id, nil
}

// Update changes title, content and updatedAt of a note owned by owner.
func (s *Store) Update(ctx context.Context, id, owner string, f note.Fields) error {
	updatedAt := f.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = s.now()
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE notes SET title = ?, content = ?, updatedAt = ?
		WHERE id = ? AND owner = ?
	`, f.Title, f.Content, unixFromTime(updatedAt), id, owner)
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	return requireRow(res)
}

// Delete removes a note owned by owner.
func (s *Store) Delete(ctx context.Context, id, owner string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ? AND owner = ?`, id, owner)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	return requireRow(res)
}

// Get returns a note owned by owner.
func (s *Store) Get(ctx context.Context, id, owner string) (note.Note, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, owner, title, content, createdAt, updatedAt
		FROM notes
		WHERE id = ? AND owner = ?
	`, id, owner)

	var n note.Note
	var createdAt, updatedAt float64
	if err := row.Scan(&n.ID, &n.Owner, &n.Title, &n.Content, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return note.Note{}, note.ErrNotFound
		}
		return note.Note{}, fmt.Errorf("scan note: %w", err)
	}
	n.CreatedAt = timeFromUnix(createdAt)
	n.UpdatedAt = timeFromUnix(updatedAt)
	return n, nil
}

// List returns the owner's notes, newest first, optionally filtered by a
// case-insensitive title substring.
func (s *Store) List(ctx context.Context, owner string, opts note.ListOptions) ([]note.Summary, error) {
	query := `
		SELECT id, title, content, updatedAt
		FROM notes
		WHERE owner = ?`
	args := []any{owner}
	if opts.TitleMatches != "" {
		query += ` AND casefold(title) LIKE ? ESCAPE '\'`
		args = append(args, "%"+escapeLike(strings.ToLower(opts.TitleMatches))+"%")
	}
	query += `
		ORDER BY updatedAt DESC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query notes: %w", err)
	}
	defer rows.Close()

	notes := []note.Summary{}
	for rows.Next() {
		var n note.Summary
		var updatedAt float64
		if err := rows.Scan(&n.ID, &n.Title, &n.Content, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		n.UpdatedAt = timeFromUnix(updatedAt)
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// CreateUser inserts an account. A duplicate email yields auth.ErrEmailTaken.
func (s *Store) CreateUser(ctx context.Context, u auth.User) error {
	confirmed := 0
	if u.Confirmed {
		confirmed = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, passwordHash, confirmed, createdAt)
		VALUES (?, ?, ?, ?, ?)
	`, u.ID, u.Email, u.PasswordHash, confirmed, unixFromTime(u.CreatedAt))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return auth.ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// UserByEmail looks up an account by its normalized email.
func (s *Store) UserByEmail(ctx context.Context, email string) (auth.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, passwordHash, confirmed, createdAt
		FROM users
		WHERE email = ?
	`, email)

	var u auth.User
	var confirmed int
	var createdAt float64
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &confirmed, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return auth.User{}, auth.ErrUserNotFound
		}
		return auth.User{}, fmt.Errorf("scan user: %w", err)
	}
	u.Confirmed = confirmed != 0
	u.CreatedAt = timeFromUnix(createdAt)
	return u, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return note.ErrNotFound
	}
	return nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func unixFromTime(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

func timeFromUnix(ts float64) time.Time {
	sec := int64(ts)
	nsec := int64((ts - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}
