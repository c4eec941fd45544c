// Package mcptools exposes the view engine as MCP tools so agents can
// inspect and author views over the Model Context Protocol.
package mcptools

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/viewdeck/viewdeck/pkg/view"
)

// Server wraps an MCP server bound to one view manager.
type Server struct {
	mcp     *mcp.Server
	manager *view.Manager
	logger  *slog.Logger
}

// NewServer creates the MCP server with every ui_* tool registered.
func NewServer(manager *view.Manager, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		mcp: mcp.NewServer(&mcp.Implementation{
			Name:    "viewdeck",
			Version: version,
		}, nil),
		manager: manager,
		logger:  logger.With("component", "mcp_server"),
	}
	s.registerQueryTools()
	s.registerAuthoringTools()
	s.registerClientTools()
	return s
}

// MCP returns the underlying server, for custom transports and tests.
func (s *Server) MCP() *mcp.Server {
	return s.mcp
}

// ServeStdio runs the server over stdin/stdout until the context is
// canceled or the peer disconnects.
func (s *Server) ServeStdio(ctx context.Context) error {
	s.logger.Info("serving MCP over stdio")
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}
