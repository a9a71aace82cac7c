// Package api serves the notes backend: account endpoints and owner-scoped
// note CRUD over HTTP. The owner of every note operation comes from the
// bearer token, never from the request body.
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/Vinw199/Voice-note/internal/auth"
	"github.com/Vinw199/Voice-note/internal/note"
)

// Authenticator resolves the identity behind an Authorization header.
type Authenticator interface {
	IdentityFromAuthHeader(h string) (auth.Identity, error)
}

// Register wires up all routes on the provided Echo instance.
func Register(e *echo.Echo, notes note.Store, accounts auth.Backend, authn Authenticator, logger *log.Logger) {
	if logger == nil {
		logger = log.StandardLogger()
	}
	e.JSONSerializer = sonicSerializer{}
	e.HTTPErrorHandler = errorHandler(e)
	e.Use(requestMetrics(logger))

	h := &handlers{notes: notes, accounts: accounts, authn: authn, log: logger}

	e.POST("/auth/signup", h.signUp)
	e.POST("/auth/signin", h.signIn)
	e.GET("/auth/session", h.session)

	g := e.Group("/api/notes", h.requireIdentity)
	g.GET("", h.listNotes)
	g.POST("", h.createNote)
	g.GET("/:id", h.getNote)
	g.PUT("/:id", h.updateNote)
	g.DELETE("/:id", h.deleteNote)

	e.GET("/healthz", healthz)
}

// New creates an Echo instance with all routes registered.
func New(notes note.Store, accounts auth.Backend, authn Authenticator, logger *log.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	Register(e, notes, accounts, authn, logger)
	return e
}

func healthz(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error string `json:"error"`
}

// errorHandler renders errors returned by handlers and echo itself (404 for
// unknown routes, 405) in the API's error shape.
func errorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		msg := http.StatusText(code)
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if m, ok := he.Message.(string); ok {
				msg = m
			} else {
				msg = http.StatusText(code)
			}
		}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, errorResponse{Error: msg})
		}
		if err != nil {
			e.Logger.Error(err)
		}
	}
}
