// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Ecko tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/eckolabs/ecko/internal/chat"
	"github.com/eckolabs/ecko/internal/store"
)

// Server wraps the MCP server with Ecko tools.
type Server struct {
	mcp   *server.MCPServer
	chat  *chat.Service
	store store.Store
}

// New creates a new MCP server with all Ecko tools registered.
func New(chatSvc *chat.Service, st store.Store) *Server {
	s := &Server{chat: chatSvc, store: st}

	s.mcp = server.NewMCPServer(
		"Ecko",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("send_message",
		mcp.WithDescription("Send a message to the Ecko assistant and get its reply. "+
			"Supports the same Spanish commands as the chat API (hora, fecha, recordar, recuérdame, buscar...)."),
		mcp.WithString("message", mcp.Required(), mcp.Description("Message text in Spanish")),
		mcp.WithString("session_id", mcp.Description("Existing session id; omit to start a new session")),
	), s.sendMessage)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List the notes saved in a session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("list_reminders",
		mcp.WithDescription("List the reminders of a session, including delivery state."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
	), s.listReminders)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) sendMessage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message, err := req.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sessionID := ""
	if sid, err := req.RequireString("session_id"); err == nil {
		sessionID = sid
	}

	reply, err := s.chat.HandleMessage(ctx, sessionID, message)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(reply, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sid, err := req.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	notes, err := s.store.ListNotes(sid)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if notes == nil {
		notes = []store.Note{}
	}
	out, _ := json.MarshalIndent(notes, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listReminders(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sid, err := req.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	reminders, err := s.store.ListReminders(sid)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if reminders == nil {
		reminders = []store.Reminder{}
	}
	out, _ := json.MarshalIndent(reminders, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}
