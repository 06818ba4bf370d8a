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
	serverName    = "remind"
	serverVersion = "1.0.0"

	// maxToolRepeat bounds the repeat argument before it is converted to int.
	maxToolRepeat = math.MaxInt32
)

// Server exposes the engine as MCP tools so an assistant can schedule and
// inspect reminders.
type Server struct {
	mcpServer *server.MCPServer
	engine    *Engine
}

// NewServer creates a new MCP server backed by engine.
func NewServer(engine *Engine) *Server {
	s := &Server{
		engine: engine,
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
	s.mcpServer.AddTool(
		mcp.NewTool("schedule_reminder",
			mcp.WithDescription("Schedule a desktop notification after a delay (10s, 5m, 1h) or at a time later today (HH:MM)"),
			mcp.WithString("message", mcp.Required(), mcp.Description("Notification text")),
			mcp.WithString("time", mcp.Required(), mcp.Description("Delay like 10m or wall-clock time like 15:30")),
			mcp.WithNumber("repeat", mcp.Description("How many times to fire, same interval each time (default: 1)")),
			mcp.WithBoolean("mute", mcp.Description("Do not play the alert sound")),
			mcp.WithBoolean("permanent", mcp.Description("Keep the notification until dismissed")),
		),
		s.handleSchedule,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_reminders",
			mcp.WithDescription("List reminders, optionally filtered by status (pending, done or missed)"),
			mcp.WithString("status", mcp.Description("Filter by status: pending, done, missed, or empty for all")),
		),
		s.handleList,
	)
}

func (s *Server) handleSchedule(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	repeat := req.GetFloat("repeat", 1)
	if repeat != math.Trunc(repeat) || repeat < 1 || repeat > maxToolRepeat {
		return mcp.NewToolResultError(fmt.Sprintf("failed to schedule reminder: repeat must be a whole number between 1 and %d, got %v", maxToolRepeat, repeat)), nil
	}

	r := Request{
		Message:   req.GetString("message", ""),
		TimeExpr:  req.GetString("time", ""),
		Repeat:    int(repeat),
		Mute:      req.GetBool("mute", false),
		Permanent: req.GetBool("permanent", false),
	}

	scheduled, err := s.engine.Schedule(ctx, r)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to schedule reminder: %v", err)), nil
	}

	output, _ := json.MarshalIndent(scheduled.Record, "", "  ")
	return mcp.NewToolResultText(string(output)), nil
}

func (s *Server) handleList(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status := DisplayStatus(req.GetString("status", ""))

	entries, err := s.engine.List()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list reminders: %v", err)), nil
	}

	type listed struct {
		Record
		Display DisplayStatus `json:"display_status"`
	}
	out := []listed{}
	for _, e := range entries {
		if status != "" && e.Display != status {
			continue
		}
		out = append(out, listed{Record: e.Record, Display: e.Display})
	}

	if len(out) == 0 {
		return mcp.NewToolResultText("No reminders found."), nil
	}

	output, _ := json.MarshalIndent(out, "", "  ")
	return mcp.NewToolResultText(string(output)), nil
}
