// Package mcpserver exposes dead code analysis to MCP clients over stdio.
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server is an MCP server with the dead code tools and prompts registered.
type Server struct {
	server *mcp.Server
}

// NewServer builds the server. An empty version reports as "dev".
func NewServer(version string) *Server {
	if version == "" {
		version = "dev"
	}
	s := &Server{
		server: mcp.NewServer(&mcp.Implementation{Name: "searchdeadcode", Title: "SearchDeadCode", Version: version}, nil),
	}

	mcp.AddTool(s.server, &mcp.Tool{Name: "find_dead_code", Description: describeDeadCode()}, handleFindDeadCode)
	mcp.AddTool(s.server, &mcp.Tool{Name: "find_dead_cycles", Description: describeDeadCycles()}, handleFindDeadCycles)
	s.registerPrompts()
	return s
}

// Run serves on stdin/stdout until ctx is done or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}
