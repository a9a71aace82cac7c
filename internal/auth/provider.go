package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
)

const subscriberBuffer = 8

// TokenStore persists the signed-in token between runs.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// Subscription receives auth state changes until Close is called.
type Subscription struct {
	C <-chan Event

	close func()
	once  sync.Once
}

// Close stops delivery. It is safe to call more than once.
func (s *Subscription) Close() {
	if s == nil {
		return
	}
	s.once.Do(s.close)
}

// Provider holds the current session and notifies subscribers of sign-in
// and sign-out.
type Provider struct {
	backend Backend
	tokens  TokenStore
	log     *log.Logger

	mu      sync.Mutex
	current *Session
	subs    map[chan Event]struct{}
}

// NewProvider creates a Provider. tokens may be nil to keep sessions in
// memory only.
func NewProvider(backend Backend, tokens TokenStore, logger *log.Logger) *Provider {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Provider{
		backend: backend,
		tokens:  tokens,
		log:     logger,
		subs:    make(map[chan Event]struct{}),
	}
}

// CurrentSession returns the signed-in identity, if any.
func (p *Provider) CurrentSession() (Identity, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return Identity{}, false
	}
	return p.current.Identity, true
}

// Token returns the bearer token of the current session, or "".
func (p *Provider) Token() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return ""
	}
	return p.current.Token
}

// Subscribe registers for auth state changes.
func (p *Provider) Subscribe() *Subscription {
	ch := make(chan Event, subscriberBuffer)
	p.mu.Lock()
	p.subs[ch] = struct{}{}
	p.mu.Unlock()
	return &Subscription{
		C: ch,
		close: func() {
			p.mu.Lock()
			delete(p.subs, ch)
			p.mu.Unlock()
		},
	}
}

// Restore loads a persisted token and signs in with it when it is still
// valid. A token the backend rejects is cleared. Any other failure, such as
// an unreachable backend, is returned and the token is kept.
func (p *Provider) Restore(ctx context.Context) (Identity, bool, error) {
	if p.tokens == nil {
		return Identity{}, false, nil
	}
	token, err := p.tokens.Load()
	if err != nil {
		return Identity{}, false, fmt.Errorf("load session: %w", err)
	}
	if token == "" {
		return Identity{}, false, nil
	}
	id, err := p.backend.Verify(ctx, token)
	if errors.Is(err, ErrInvalidToken) {
		p.log.WithError(err).Info("persisted session rejected")
		if cerr := p.tokens.Clear(); cerr != nil {
			p.log.WithError(cerr).Warn("clear persisted session")
		}
		return Identity{}, false, nil
	}
	if err != nil {
		// The token stays on disk so a later start can try again.
		return Identity{}, false, fmt.Errorf("verify session: %w", err)
	}
	p.setSession(&Session{Identity: id, Token: token})
	return id, true, nil
}

// SignIn authenticates with email and password.
func (p *Provider) SignIn(ctx context.Context, email, password string) (Identity, error) {
	sess, err := p.backend.SignIn(ctx, email, password)
	if err != nil {
		return Identity{}, err
	}
	p.setSession(&sess)
	return sess.Identity, nil
}

// SignUp creates an account and signs in when the backend created a session.
func (p *Provider) SignUp(ctx context.Context, email, password string) (SignUpResult, error) {
	res, err := p.backend.SignUp(ctx, email, password)
	if err != nil {
		return SignUpResult{}, err
	}
	if res.SessionCreated && res.Token != "" {
		p.setSession(&Session{Identity: res.Identity, Token: res.Token})
	}
	return res, nil
}

// SignOut forgets the current session.
func (p *Provider) SignOut(_ context.Context) error {
	if p.tokens != nil {
		if err := p.tokens.Clear(); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
	}
	p.setSession(nil)
	return nil
}

func (p *Provider) setSession(sess *Session) {
	if p.tokens != nil && sess != nil {
		if err := p.tokens.Save(sess.Token); err != nil {
			p.log.WithError(err).Warn("persist session")
		}
	}

	p.mu.Lock()
	wasSignedIn := p.current != nil
	p.current = sess
	ev := Event{Type: SignedOut}
	if sess != nil {
		id := sess.Identity
		ev = Event{Type: SignedIn, Identity: &id}
	} else if !wasSignedIn {
		p.mu.Unlock()
		return
	}
	for ch := range p.subs {
		select {
		case ch <- ev:
		default:
			p.log.WithField("event", ev.Type).Warn("auth subscriber full, event dropped")
		}
	}
	p.mu.Unlock()
}
