package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Vinw199/Voice-note/internal/note"
)

const minPasswordLength = 6

// LocalBackend keeps accounts in a UserStore and signs its own tokens.
type LocalBackend struct {
	users               UserStore
	signer              *Signer
	requireConfirmation bool
}

// NewLocalBackend creates a backend. When requireConfirmation is set new
// accounts are created unconfirmed and sign-up does not start a session.
func NewLocalBackend(users UserStore, signer *Signer, requireConfirmation bool) *LocalBackend {
	return &LocalBackend{users: users, signer: signer, requireConfirmation: requireConfirmation}
}

// SignUp creates an account.
func (b *LocalBackend) SignUp(ctx context.Context, email, password string) (SignUpResult, error) {
	email, err := validateCredentials(email, password)
	if err != nil {
		return SignUpResult{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return SignUpResult{}, fmt.Errorf("hash password: %w", err)
	}

	u := User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Confirmed:    !b.requireConfirmation,
		CreatedAt:    time.Now(),
	}
	if err := b.users.CreateUser(ctx, u); err != nil {
		return SignUpResult{}, err
	}

	res := SignUpResult{Identity: Identity{ID: u.ID, Email: u.Email}}
	if !u.Confirmed {
		return res, nil
	}
	token, err := b.signer.Issue(res.Identity)
	if err != nil {
		return SignUpResult{}, fmt.Errorf("issue token: %w", err)
	}
	res.SessionCreated = true
	res.Token = token
	return res, nil
}

// SignIn checks the password and issues a token.
func (b *LocalBackend) SignIn(ctx context.Context, email, password string) (Session, error) {
	email = normalizeEmail(email)
	u, err := b.users.UserByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}
	if !u.Confirmed {
		return Session{}, ErrEmailNotConfirmed
	}

	id := Identity{ID: u.ID, Email: u.Email}
	token, err := b.signer.Issue(id)
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}
	return Session{Identity: id, Token: token}, nil
}

// Verify validates a token issued by this backend.
func (b *LocalBackend) Verify(_ context.Context, token string) (Identity, error) {
	return b.signer.Verify(token)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateCredentials(email, password string) (string, error) {
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return "", &note.ValidationError{Field: "email", Message: "a valid email address is required"}
	}
	if len(password) < minPasswordLength {
		msg := fmt.Sprintf("password should be at least %d characters", minPasswordLength)
		return "", &note.ValidationError{Field: "password", Message: msg}
	}
	return email, nil
}
