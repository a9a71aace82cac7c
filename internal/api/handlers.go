package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/Vinw199/Voice-note/internal/auth"
	"github.com/Vinw199/Voice-note/internal/note"
)

const identityKey = "identity"

type handlers struct {
	notes    note.Store
	accounts auth.Backend
	authn    Authenticator
	log      *log.Logger
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

func (h *handlers) signUp(c echo.Context) error {
	var req credentials
	if err := decodeBody(c, &req); err != nil {
		setErrorStage(c, "decode")
		return err
	}
	res, err := h.accounts.SignUp(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return h.fail(c, "signup", err)
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *handlers) signIn(c echo.Context) error {
	var req credentials
	if err := decodeBody(c, &req); err != nil {
		setErrorStage(c, "decode")
		return err
	}
	sess, err := h.accounts.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return h.fail(c, "signin", err)
	}
	return c.JSON(http.StatusOK, sess)
}

func (h *handlers) session(c echo.Context) error {
	id, err := h.authn.IdentityFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
	if err != nil {
		setErrorStage(c, "auth")
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	return c.JSON(http.StatusOK, sessionResponse{User: id})
}

// requireIdentity authenticates the request and stores the identity for
// the note handlers.
func (h *handlers) requireIdentity(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := h.authn.IdentityFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			setErrorStage(c, "auth")
			return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
		}
		c.Set(identityKey, id)
		return next(c)
	}
}

func owner(c echo.Context) string {
	id, _ := c.Get(identityKey).(auth.Identity)
	return id.ID
}

func (h *handlers) listNotes(c echo.Context) error {
	opts := note.ListOptions{TitleMatches: strings.TrimSpace(c.QueryParam("q"))}
	notes, err := h.notes.List(c.Request().Context(), owner(c), opts)
	if err != nil {
		return h.fail(c, "list", err)
	}
	return c.JSON(http.StatusOK, notes)
}

func (h *handlers) createNote(c echo.Context) error {
	var req note.NewNote
	if err := decodeBody(c, &req); err != nil {
		setErrorStage(c, "decode")
		return err
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Content = strings.TrimSpace(req.Content)
	req.Owner = owner(c)
	if req.Title == "" {
		setErrorStage(c, "validate")
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}

	id, err := h.notes.Create(c.Request().Context(), req)
	if err != nil {
		return h.fail(c, "create", err)
	}
	return c.JSON(http.StatusCreated, createdResponse{ID: id})
}

func (h *handlers) getNote(c echo.Context) error {
	n, err := h.notes.Get(c.Request().Context(), c.Param("id"), owner(c))
	if err != nil {
		return h.fail(c, "get", err)
	}
	return c.JSON(http.StatusOK, n)
}

func (h *handlers) updateNote(c echo.Context) error {
	var req note.Fields
	if err := decodeBody(c, &req); err != nil {
		setErrorStage(c, "decode")
		return err
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Content = strings.TrimSpace(req.Content)
	if req.Title == "" {
		setErrorStage(c, "validate")
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}

	if err := h.notes.Update(c.Request().Context(), c.Param("id"), owner(c), req); err != nil {
		return h.fail(c, "update", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handlers) deleteNote(c echo.Context) error {
	if err := h.notes.Delete(c.Request().Context(), c.Param("id"), owner(c)); err != nil {
		return h.fail(c, "delete", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// fail maps a domain error to an HTTP error and records the failing stage.
func (h *handlers) fail(c echo.Context, stage string, err error) error {
	setErrorStage(c, stage)
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		h.log.WithError(err).WithField("stage", stage).Error("request failed")
	}
	return echo.NewHTTPError(code, err.Error())
}

func statusFor(err error) int {
	var verr *note.ValidationError
	switch {
	case errors.Is(err, note.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, note.ErrAuthRequired),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrEmailNotConfirmed):
		return http.StatusForbidden
	case errors.Is(err, auth.ErrEmailTaken):
		return http.StatusConflict
	case errors.As(err, &verr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
