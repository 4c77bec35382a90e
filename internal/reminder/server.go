package reminder

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	serverName    = "reminder"
	serverVersion = "1.0.0"
)

// Server is the MCP server exposing the reminder store as tools.
type Server struct {
	mcpServer *server.MCPServer
	store     *Store
}

// NewServer creates a new Reminder MCP server backed by the given store.
func NewServer(store *Store) *Server {
	s := &Server{
		store: store,
	}

	s.mcpServer = server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(false),
	)

	s.registerTools()
	return s
}

// MCPServer returns the underlying MCP server for serving.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	// list_reminders
	s.mcpServer.AddTool(
		mcp.NewTool("list_reminders",
			mcp.WithDescription("List reminders that are currently visible (due manual reminders plus budget and savings notices)"),
			mcp.WithBoolean("all", mcp.Description("Include manual reminders that are not due yet")),
		),
		s.handleListReminders,
	)

	// unread_count
	s.mcpServer.AddTool(
		mcp.NewTool("unread_count",
			mcp.WithDescription("Count visible reminders that have not been read"),
		),
		s.handleUnreadCount,
	)

	// add_reminder
	s.mcpServer.AddTool(
		mcp.NewTool("add_reminder",
			mcp.WithDescription("Create a manual reminder for a date and time"),
			mcp.WithString("title", mcp.Required(), mcp.Description("Reminder title")),
			mcp.WithString("date", mcp.Required(), mcp.Description("Date in YYYY-MM-DD format")),
			mcp.WithString("time", mcp.Required(), mcp.Description("Time of day in HH:MM:SS format")),
		),
		s.handleAddReminder,
	)

	// mark_read
	s.mcpServer.AddTool(
		mcp.NewTool("mark_read",
			mcp.WithDescription("Mark a reminder as read"),
			mcp.WithNumber("id", mcp.Required(), mcp.Description("Reminder ID")),
		),
		s.handleMarkRead,
	)

	// mark_all_read
	s.mcpServer.AddTool(
		mcp.NewTool("mark_all_read",
			mcp.WithDescription("Mark every reminder as read"),
		),
		s.handleMarkAllRead,
	)

	// delete_reminder
	s.mcpServer.AddTool(
		mcp.NewTool("delete_reminder",
			mcp.WithDescription("Delete a reminder permanently"),
			mcp.WithNumber("id", mcp.Required(), mcp.Description("Reminder ID")),
		),
		s.handleDeleteReminder,
	)

	// clear_reminders
	s.mcpServer.AddTool(
		mcp.NewTool("clear_reminders",
			mcp.WithDescription("Delete every reminder that is already active; scheduled manual reminders are kept"),
		),
		s.handleClearReminders,
	)

	// refresh_reminders
	s.mcpServer.AddTool(
		mcp.NewTool("refresh_reminders",
			mcp.WithDescription("Reload reminders from the server"),
		),
		s.handleRefreshReminders,
	)
}

func (s *Server) handleListReminders(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var reminders []Reminder
	if req.GetBool("all", false) {
		reminders = s.store.List()
	} else {
		reminders = s.store.ActiveList()
	}

	if len(reminders) == 0 {
		return mcp.NewToolResultText("No reminders found."), nil
	}

	output, _ := json.MarshalIndent(reminders, "", "  ")
	return mcp.NewToolResultText(string(output)), nil
}

func (s *Server) handleUnreadCount(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(fmt.Sprintf("%d unread reminder(s).", s.store.UnreadCount())), nil
}

func (s *Server) handleAddReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res := s.store.AddManual(ctx, CreateRequest{
		Title:     req.GetString("title", ""),
		DateStart: req.GetString("date", ""),
		Time:      req.GetString("time", ""),
	})
	if !res.Success {
		return mcp.NewToolResultError(fmt.Sprintf("failed to add reminder: %v", res.Err)), nil
	}

	output, _ := json.MarshalIndent(res.Reminder, "", "  ")
	return mcp.NewToolResultText(string(output)), nil
}

func (s *Server) handleMarkRead(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := requireID(req)
	if errResult != nil {
		return errResult, nil
	}

	s.store.MarkRead(ctx, id)
	return mcp.NewToolResultText(fmt.Sprintf("Reminder %d marked as read.", id)), nil
}

func (s *Server) handleMarkAllRead(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.store.MarkAllRead(ctx)
	return mcp.NewToolResultText("All reminders marked as read."), nil
}

func (s *Server) handleDeleteReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := requireID(req)
	if errResult != nil {
		return errResult, nil
	}

	if !s.store.DeleteOne(ctx, id) {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete reminder %d", id)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Reminder %d deleted.", id)), nil
}

func (s *Server) handleClearReminders(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.store.DeleteAllManual(ctx) {
		return mcp.NewToolResultError("failed to clear reminders"), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Reminders cleared. %d scheduled reminder(s) kept.", len(s.store.List()))), nil
}

func (s *Server) handleRefreshReminders(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.store.FetchAll(ctx, true)
	return mcp.NewToolResultText(fmt.Sprintf("%d reminder(s) loaded, %d unread.", len(s.store.List()), s.store.UnreadCount())), nil
}

func requireID(req mcp.CallToolRequest) (int64, *mcp.CallToolResult) {
	idFloat := req.GetFloat("id", -1)
	if idFloat < 1 || idFloat != math.Trunc(idFloat) {
		return 0, mcp.NewToolResultError("id is required and must be a positive integer")
	}
	return int64(idFloat), nil
}
