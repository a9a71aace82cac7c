// Package mcpserver exposes the signed-in user's notes to MCP clients over
// stdio. Tools are read-only.
package mcpserver

import (
	"context"
	"errors"

	"github.com/bytedance/sonic"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	log "github.com/sirupsen/logrus"

	"github.com/Vinw199/Voice-note/internal/auth"
	"github.com/Vinw199/Voice-note/internal/note"
)

const (
	serverName    = "voicenote"
	serverVersion = "0.1.0"
)

// IdentitySource reports who the tools act for.
type IdentitySource interface {
	CurrentSession() (auth.Identity, bool)
}

type tools struct {
	notes    note.Store
	identity IdentitySource
	log      *log.Logger
}

// New builds an MCP server with the list_notes and get_note tools.
func New(notes note.Store, identity IdentitySource, logger *log.Logger) *server.MCPServer {
	if logger == nil {
		logger = log.StandardLogger()
	}
	t := &tools{notes: notes, identity: identity, log: logger}

	s := server.NewMCPServer(serverName, serverVersion, server.WithToolCapabilities(false))
	s.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List your notes, newest first. Optionally filter by a case-insensitive title match."),
		mcp.WithString("query", mcp.Description("Text the note title must contain")),
	), t.listNotes)
	s.AddTool(mcp.NewTool("get_note",
		mcp.WithDescription("Get the full title and content of one note."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note ID from list_notes")),
	), t.getNote)
	return s
}

func (t *tools) owner() (string, bool) {
	id, ok := t.identity.CurrentSession()
	if !ok || id.ID == "" {
		return "", false
	}
	return id.ID, true
}

func (t *tools) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	owner, ok := t.owner()
	if !ok {
		return mcp.NewToolResultError(note.ErrAuthRequired.Error()), nil
	}
	notes, err := t.notes.List(ctx, owner, note.ListOptions{TitleMatches: req.GetString("query", "")})
	if err != nil {
		t.log.WithError(err).Warn("list_notes failed")
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(notes)
}

func (t *tools) getNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	owner, ok := t.owner()
	if !ok {
		return mcp.NewToolResultError(note.ErrAuthRequired.Error()), nil
	}
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n, err := t.notes.Get(ctx, id, owner)
	if err != nil {
		if !errors.Is(err, note.ErrNotFound) {
			t.log.WithError(err).WithField("note_id", id).Warn("get_note failed")
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(n)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := sonic.Marshal(v)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}
