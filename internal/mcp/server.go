// Package mcp exposes the assistant over the Model Context Protocol so
// agent hosts can ask questions and search the documentation index.
package mcp

import (
	"context"
	"sync"

	"github.com/mark3labs/mcp-go/server"

	"github.com/grimaldi89/martechito/internal/chat"
	"github.com/grimaldi89/martechito/internal/index"
	"github.com/grimaldi89/martechito/internal/retrieval"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Retriever finds indexed chunks for a query. Satisfied by
// retrieval.Retriever.
type Retriever interface {
	Retrieve(ctx context.Context, query string, strategy *retrieval.Strategy) ([]index.Result, error)
}

// Responder runs one conversational turn. Satisfied by chat.Engine.
type Responder interface {
	Respond(ctx context.Context, sess *chat.Session, utterance string) (chat.Reply, error)
}

// Server wraps an MCP server exposing the assistant's tools.
type Server struct {
	responder Responder
	retriever Retriever
	mcp       *server.MCPServer

	mu       sync.Mutex
	sessions map[string]*chat.Session
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(responder Responder, retriever Retriever) *Server {
	s := &Server{
		responder: responder,
		retriever: retriever,
		sessions:  make(map[string]*chat.Session),
	}

	s.mcp = server.NewMCPServer(
		"martechito",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(askAssistantTool, s.handleAskAssistant)
	s.mcp.AddTool(searchDocsTool, s.handleSearchDocs)
}

// session returns the conversation for the given ID, creating it on first
// use. An empty ID gets a throwaway session.
func (s *Server) session(id string) *chat.Session {
	if id == "" {
		return chat.NewSession()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		sess = chat.NewSession()
		s.sessions[id] = sess
	}
	return sess
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
