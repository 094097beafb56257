// Package mcpserver exposes the agent controls as Model Context Protocol
// tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/flemzord/blogclaw/internal/activity"
	"github.com/flemzord/blogclaw/internal/agent"
)

// defaultActivityLimit is the activity_log default when no limit is given.
const defaultActivityLimit = 20

// Agent is the part of *agent.Agent the tools drive.
type Agent interface {
	Start(ctx context.Context, opts agent.StartOptions) error
	Stop()
	RunOnce(ctx context.Context, opts agent.RunOptions) (agent.Outcome, error)
	Status() agent.Status
	Activity() *activity.Log
}

// Server wraps an MCP server bound to one agent.
type Server struct {
	agent   Agent
	baseCtx context.Context
	logger  *slog.Logger
	server  *server.MCPServer
}

// New creates the server and registers its tools. Schedules started
// through agent_start live as long as ctx.
func New(ctx context.Context, a Agent, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		agent:   a,
		baseCtx: ctx,
		logger:  logger.With("component", "mcp"),
		server: server.NewMCPServer(
			"blogclaw",
			version,
			server.WithToolCapabilities(true),
		),
	}
	s.registerTools()
	return s
}

// ServeStdio serves requests on in/out until ctx is done or in closes.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.server)
	return stdio.Listen(ctx, in, out)
}

func (s *Server) registerTools() {
	s.server.AddTool(mcp.NewTool("agent_status",
		mcp.WithDescription("Report whether the blog agent is running, when it runs next and how the last run went"),
	), s.handleStatus)

	s.server.AddTool(mcp.NewTool("agent_start",
		mcp.WithDescription("Start posting on a fixed schedule"),
		mcp.WithNumber("interval_hours",
			mcp.Description("Hours between posts (default from config)"),
		),
		mcp.WithString("topic",
			mcp.Description("Blog niche or topic"),
		),
	), s.handleStart)

	s.server.AddTool(mcp.NewTool("agent_stop",
		mcp.WithDescription("Stop the posting schedule"),
	), s.handleStop)

	s.server.AddTool(mcp.NewTool("agent_run_once",
		mcp.WithDescription("Generate and publish one draft post now"),
		mcp.WithString("topic",
			mcp.Description("Blog niche or topic"),
		),
		mcp.WithNumber("word_count",
			mcp.Description("Approximate word count, 300 to 2000"),
		),
	), s.handleRunOnce)

	s.server.AddTool(mcp.NewTool("activity_log",
		mcp.WithDescription("Show recent agent activity, newest first"),
		mcp.WithNumber("limit",
			mcp.Description("Number of lines to return (default 20)"),
		),
	), s.handleActivity)
}

func (s *Server) handleStatus(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.agent.Status())
}

func (s *Server) handleStart(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	interval := request.GetInt("interval_hours", 0)
	if interval < 0 {
		return mcp.NewToolResultError("interval_hours must be positive"), nil
	}
	err := s.agent.Start(s.baseCtx, agent.StartOptions{
		IntervalHours: interval,
		Topic:         request.GetString("topic", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to start agent: %v", err)), nil
	}
	st := s.agent.Status()
	return mcp.NewToolResultText(fmt.Sprintf("Agent running every %d hours. Next run: %s", st.IntervalHours, st.NextRun)), nil
}

func (s *Server) handleStop(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.agent.Stop()
	return mcp.NewToolResultText("Agent stopped."), nil
}

// handleRunOnce runs synchronously so the caller sees the outcome.
func (s *Server) handleRunOnce(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, err := s.agent.RunOnce(ctx, agent.RunOptions{
		Topic:     request.GetString("topic", ""),
		WordCount: request.GetInt("word_count", 0),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Run not started: %v", err)), nil
	}
	if out.Err != nil {
		return mcp.NewToolResultError(out.Status), nil
	}
	text := out.Status
	if out.Link != "" {
		text += "\n" + out.Link
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleActivity(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", defaultActivityLimit)
	lines := s.agent.Activity().Lines(limit)
	if len(lines) == 0 {
		return mcp.NewToolResultText("No activity yet"), nil
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("mcp: marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
