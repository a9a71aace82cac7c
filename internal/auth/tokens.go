package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const defaultTokenTTL = 24 * time.Hour

var (
	errMissingAuthorization = errors.New("missing authorization header")
	errBadAuthorization     = errors.New("bad auth header")
)

// Signer issues and validates HS256 session tokens.
type Signer struct {
	secret []byte
	ttl    time.Duration
	issuer string
	parser *jwt.Parser
	now    func() time.Time
}

// NewSigner creates a Signer. A non-positive ttl uses 24 hours.
func NewSigner(secret []byte, ttl time.Duration, issuer string) *Signer {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &Signer{
		secret: secret,
		ttl:    ttl,
		issuer: issuer,
		parser: jwt.NewParser(jwt.WithValidMethods([]string{"HS256"})),
		now:    time.Now,
	}
}

// Issue returns a signed token for id.
func (s *Signer) Issue(id Identity) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":   id.ID,
		"email": id.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(s.ttl).Unix(),
	}
	if s.issuer != "" {
		claims["iss"] = s.issuer
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify parses token and returns the identity it carries. Every
// rejection wraps ErrInvalidToken.
func (s *Signer) Verify(token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrInvalidToken
	}
	parsed, err := s.parser.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, fmt.Errorf("%w: invalid claims", ErrInvalidToken)
	}
	now := s.now().Unix()
	if !claims.VerifyExpiresAt(now, true) {
		return Identity{}, fmt.Errorf("%w: token expired", ErrInvalidToken)
	}
	if s.issuer != "" && !claims.VerifyIssuer(s.issuer, true) {
		return Identity{}, fmt.Errorf("%w: invalid issuer", ErrInvalidToken)
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return Identity{}, fmt.Errorf("%w: missing sub", ErrInvalidToken)
	}
	email, _ := claims["email"].(string)
	return Identity{ID: sub, Email: email}, nil
}

// IdentityFromAuthHeader validates a "Bearer <token>" Authorization header.
func (s *Signer) IdentityFromAuthHeader(h string) (Identity, error) {
	token, err := bearerToken(h)
	if err != nil {
		return Identity{}, err
	}
	return s.Verify(token)
}

func bearerToken(h string) (string, error) {
	h = strings.TrimSpace(h)
	if h == "" {
		return "", errMissingAuthorization
	}
	token, ok := strings.CutPrefix(h, "Bearer ")
	if !ok || strings.Count(token, ".") != 2 {
		return "", errBadAuthorization
	}
	return token, nil
}
