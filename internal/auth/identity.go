// Package auth provides the session provider used by the client and the
// password and token handling used by the notes backend.
package auth

import (
	"context"
	"errors"
	"time"
)

// Identity is the authenticated user reference that scopes note storage.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// EventType names an auth state change.
type EventType string

const (
	SignedIn  EventType = "SIGNED_IN"
	SignedOut EventType = "SIGNED_OUT"
)

// Event is delivered to subscribers on every auth state change. Identity is
// nil for SignedOut.
type Event struct {
	Type     EventType
	Identity *Identity
}

// Session is a signed-in identity and the bearer token proving it.
type Session struct {
	Identity Identity `json:"user"`
	Token    string   `json:"token"`
}

// SignUpResult reports a new account. SessionCreated is false when the
// account must be confirmed before it can sign in.
type SignUpResult struct {
	Identity       Identity `json:"user"`
	SessionCreated bool     `json:"session"`
	Token          string   `json:"token,omitempty"`
}

// User is a stored account.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Confirmed    bool
	CreatedAt    time.Time
}

var (
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrEmailTaken         = errors.New("user already registered")
	ErrEmailNotConfirmed  = errors.New("email not confirmed")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidToken       = errors.New("invalid session token")
)

// Backend performs the account operations behind a Provider. The local
// backend talks to SQLite; the remote client talks to the notes backend.
type Backend interface {
	SignUp(ctx context.Context, email, password string) (SignUpResult, error)
	SignIn(ctx context.Context, email, password string) (Session, error)
	Verify(ctx context.Context, token string) (Identity, error)
}

// UserStore persists accounts for the local backend.
type UserStore interface {
	CreateUser(ctx context.Context, u User) error
	UserByEmail(ctx context.Context, email string) (User, error)
}
