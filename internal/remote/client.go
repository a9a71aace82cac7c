// Package remote talks to a notesd backend over HTTP. Client implements
// both note.Store and auth.Backend so the terminal client can run against
// a shared server instead of a local database.
package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/Vinw199/Voice-note/internal/auth"
	"github.com/Vinw199/Voice-note/internal/note"
)

const defaultTimeout = 10 * time.Second

// TokenSource supplies the bearer token for note requests.
type TokenSource interface {
	Token() string
}

// Error is a failed request whose message the server reported. Error()
// returns that message unchanged.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

// Client is a notesd HTTP client.
type Client struct {
	base   string
	http   *http.Client
	tokens TokenSource
}

var (
	_ note.Store   = (*Client)(nil)
	_ auth.Backend = (*Client)(nil)
)

// knownErrors are matched by message so callers can use errors.Is across
// the wire.
var knownErrors = []error{
	note.ErrNotFound,
	note.ErrAuthRequired,
	auth.ErrInvalidCredentials,
	auth.ErrEmailTaken,
	auth.ErrEmailNotConfirmed,
	auth.ErrInvalidToken,
}

// New creates a client for the server at baseURL. hc may be nil.
func New(baseURL string, hc *http.Client) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("backend url %q: scheme must be http or https", baseURL)
	}
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{base: u.String(), http: hc}, nil
}

// UseTokens sets where note requests get their bearer token from.
func (c *Client) UseTokens(ts TokenSource) {
	c.tokens = ts
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	User auth.Identity `json:"user"`
}

type createdResponse struct {
	ID string `json:"id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (c *Client) SignUp(ctx context.Context, email, password string) (auth.SignUpResult, error) {
	var res auth.SignUpResult
	err := c.do(ctx, http.MethodPost, "/auth/signup", "", credentials{email, password}, &res)
	return res, err
}

func (c *Client) SignIn(ctx context.Context, email, password string) (auth.Session, error) {
	var sess auth.Session
	err := c.do(ctx, http.MethodPost, "/auth/signin", "", credentials{email, password}, &sess)
	return sess, err
}

// Verify asks the server who token belongs to.
func (c *Client) Verify(ctx context.Context, token string) (auth.Identity, error) {
	if token == "" {
		return auth.Identity{}, auth.ErrInvalidToken
	}
	var res sessionResponse
	if err := c.do(ctx, http.MethodGet, "/auth/session", token, nil, &res); err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			return auth.Identity{}, fmt.Errorf("%w: %s", auth.ErrInvalidToken, apiErr.Message)
		}
		return auth.Identity{}, err
	}
	return res.User, nil
}

func (c *Client) Create(ctx context.Context, n note.NewNote) (string, error) {
	token, err := c.token(n.Owner)
	if err != nil {
		return "", err
	}
	body := note.NewNote{Title: n.Title, Content: n.Content}
	var res createdResponse
	if err := c.do(ctx, http.MethodPost, "/api/notes", token, body, &res); err != nil {
		return "", err
	}
	return res.ID, nil
}

func (c *Client) Update(ctx context.Context, id, owner string, f note.Fields) error {
	token, err := c.token(owner)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPut, notePath(id), token, f, nil)
}

func (c *Client) Delete(ctx context.Context, id, owner string) error {
	token, err := c.token(owner)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, notePath(id), token, nil, nil)
}

func (c *Client) Get(ctx context.Context, id, owner string) (note.Note, error) {
	token, err := c.token(owner)
	if err != nil {
		return note.Note{}, err
	}
	var n note.Note
	if err := c.do(ctx, http.MethodGet, notePath(id), token, nil, &n); err != nil {
		return note.Note{}, err
	}
	return n, nil
}

func (c *Client) List(ctx context.Context, owner string, opts note.ListOptions) ([]note.Summary, error) {
	token, err := c.token(owner)
	if err != nil {
		return nil, err
	}
	path := "/api/notes"
	if q := strings.TrimSpace(opts.TitleMatches); q != "" {
		path += "?" + url.Values{"q": {q}}.Encode()
	}
	notes := []note.Summary{}
	if err := c.do(ctx, http.MethodGet, path, token, nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// token returns the current bearer token. The server derives the owner from
// it, so owner only has to be present.
func (c *Client) token(owner string) (string, error) {
	if owner == "" || c.tokens == nil {
		return "", note.ErrAuthRequired
	}
	token := c.tokens.Token()
	if token == "" {
		return "", note.ErrAuthRequired
	}
	return token, nil
}

func notePath(id string) string {
	return "/api/notes/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := sonic.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return responseError(resp.StatusCode, data)
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := sonic.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func responseError(status int, data []byte) error {
	var er errorResponse
	if err := sonic.Unmarshal(data, &er); err != nil || er.Error == "" {
		er.Error = http.StatusText(status)
	}
	for _, known := range knownErrors {
		if known.Error() == er.Error {
			return known
		}
	}
	if status == http.StatusNotFound {
		return note.ErrNotFound
	}
	return &Error{Status: status, Message: er.Error}
}

