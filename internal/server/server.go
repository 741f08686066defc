// Package server exposes a session as Model Context Protocol tools.
package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/mj1618/desktop-runner/internal/session"
	"github.com/mj1618/desktop-runner/internal/version"
)

// Config holds MCP server configuration.
type Config struct {
	Transport string
	Port      int
	CacheTTL  time.Duration
}

// Server wraps the MCP server around one session. Every tool call holds
// sessionMu, so steps never run concurrently.
type Server struct {
	session   *session.Session
	cache     *TreeCache
	sessionMu sync.Mutex
	mcp       *mcpserver.MCPServer
	logger    *zap.Logger
}

// New creates a server with every tool registered.
func New(sess *session.Session, cfg Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		session: sess,
		cache:   NewTreeCache(cfg.CacheTTL),
		logger:  logger.Named("server"),
	}
	s.mcp = mcpserver.NewMCPServer("desktop-runner", version.Version)
	s.registerTools()
	return s
}

// MCP returns the underlying MCP server.
func (s *Server) MCP() *mcpserver.MCPServer { return s.mcp }

// Serve blocks serving the configured transport.
func (s *Server) Serve(cfg Config) error {
	s.logger.Info("serving MCP", zap.String("transport", cfg.Transport), zap.Int("port", cfg.Port))
	switch cfg.Transport {
	case "stdio":
		return mcpserver.ServeStdio(s.mcp)
	case "streamable-http":
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
		return httpServer.Start(fmt.Sprintf(":%d", cfg.Port))
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", cfg.Transport)
	}
}

func (s *Server) registerTools() {
	s.mcp.AddTool(
		mcp.NewTool("run_steps",
			mcp.WithDescription("Run a YAML list of steps sequentially. Each step is [action, args...]. A failed step is retried once under a shortened timeout; the run stops at the first step that still fails. Search scope set by earlier calls carries over."),
			mcp.WithString("steps", mcp.Description("YAML list of steps, e.g. \"- [click, name, BUTTON, OK]\""), mcp.Required()),
		),
		s.handleRunSteps,
	)

	s.mcp.AddTool(
		mcp.NewTool("validate_steps",
			mcp.WithDescription("Check that every step names a known action with the right number of arguments and that referenced images exist"),
			mcp.WithString("steps", mcp.Description("YAML list of steps"), mcp.Required()),
		),
		s.handleValidateSteps,
	)

	s.mcp.AddTool(
		mcp.NewTool("find",
			mcp.WithDescription("Locate elements by locator kind (NAME, ID, TEXT, VALUE, PARTIALNAME, PARTIALID, PARTIALTEXT, PARTIALVALUE, IMAGE, OCR, LOCATION)"),
			mcp.WithString("kind", mcp.Description("Locator kind"), mcp.Required()),
			mcp.WithString("param1", mcp.Description("Control type, search-region image or SCREEN, or x"), mcp.Required()),
			mcp.WithString("param2", mcp.Description("Property value, target image, text, or y"), mcp.Required()),
			mcp.WithBoolean("all", mcp.Description("Return every match instead of the first")),
		),
		s.handleFind,
	)

	s.mcp.AddTool(
		mcp.NewTool("read",
			mcp.WithDescription("Read the accessibility tree of the desktop or of windows whose title starts with a prefix"),
			mcp.WithString("window", mcp.Description("Window title prefix")),
			mcp.WithNumber("depth", mcp.Description("Max depth to traverse (0 = unlimited)")),
			mcp.WithBoolean("flat", mcp.Description("Flatten the tree with path breadcrumbs")),
		),
		s.handleRead,
	)

	s.mcp.AddTool(
		mcp.NewTool("list_actions",
			mcp.WithDescription("List every step action with its arguments"),
		),
		s.handleListActions,
	)

	s.mcp.AddTool(
		mcp.NewTool("reset_session",
			mcp.WithDescription("Return search scope to the whole desktop and forget cached windows and panes"),
		),
		s.handleResetSession,
	)
}
