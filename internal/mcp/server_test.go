package mcp

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/grimaldi89/martechito/internal/chat"
	"github.com/grimaldi89/martechito/internal/index"
	"github.com/grimaldi89/martechito/internal/retrieval"
)

type mockResponder struct {
	sessions []*chat.Session
	err      error
}

func (m *mockResponder) Respond(_ context.Context, sess *chat.Session, utterance string) (chat.Reply, error) {
	m.sessions = append(m.sessions, sess)
	if m.err != nil {
		return chat.Reply{}, m.err
	}
	return chat.Reply{SessionID: sess.ID, Question: utterance, Answer: "answer: " + utterance}, nil
}

type mockRetriever struct {
	results  []index.Result
	strategy *retrieval.Strategy
	err      error
}

func (m *mockRetriever) Retrieve(_ context.Context, _ string, strategy *retrieval.Strategy) ([]index.Result, error) {
	m.strategy = strategy
	return m.results, m.err
}

func textContent(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("expected content in tool result")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", result.Content[0])
	}
	return tc.Text
}

func TestToolDefinitions(t *testing.T) {
	tests := []struct {
		name     string
		tool     mcp.Tool
		wantName string
	}{
		{"ask_assistant", askAssistantTool, "ask_assistant"},
		{"search_docs", searchDocsTool, "search_docs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.tool.Name != tt.wantName {
				t.Errorf("tool name = %q, want %q", tt.tool.Name, tt.wantName)
			}
			if tt.tool.Description == "" {
				t.Error("tool description should not be empty")
			}
		})
	}
}

func TestHandleAskAssistant(t *testing.T) {
	ctx := context.Background()

	t.Run("basic question", func(t *testing.T) {
		srv := NewServer(&mockResponder{}, &mockRetriever{})
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{
			"question": "What is an event?",
		}

		result, err := srv.handleAskAssistant(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
		if got := textContent(t, result); !strings.Contains(got, "What is an event?") {
			t.Errorf("unexpected answer %q", got)
		}
	})

	t.Run("missing question", func(t *testing.T) {
		srv := NewServer(&mockResponder{}, &mockRetriever{})
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{}

		result, err := srv.handleAskAssistant(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error for missing question")
		}
	})

	t.Run("session continuity", func(t *testing.T) {
		responder := &mockResponder{}
		srv := NewServer(responder, &mockRetriever{})

		for i := 0; i < 2; i++ {
			req := mcp.CallToolRequest{}
			req.Params.Arguments = map[string]any{
				"question":   "follow up",
				"session_id": "agent-1",
			}
			if _, err := srv.handleAskAssistant(ctx, req); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}

		if len(responder.sessions) != 2 || responder.sessions[0] != responder.sessions[1] {
			t.Error("expected the same session for repeated session_id")
		}
	})

	t.Run("turn failure", func(t *testing.T) {
		srv := NewServer(&mockResponder{err: errors.New("provider down")}, &mockRetriever{})
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{
			"question": "q",
		}

		result, err := srv.handleAskAssistant(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected tool error when the turn fails")
		}
	})
}

func TestHandleSearchDocs(t *testing.T) {
	ctx := context.Background()

	t.Run("basic search", func(t *testing.T) {
		retr := &mockRetriever{results: []index.Result{
			{
				Text:       "An event measures one interaction.",
				Similarity: 0.83,
				Meta:       index.Meta{Title: "Events guide", Source: "https://example.com/events", Subject: "events"},
			},
		}}
		srv := NewServer(&mockResponder{}, retr)

		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{
			"query": "events",
		}

		result, err := srv.handleSearchDocs(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
		got := textContent(t, result)
		if !strings.Contains(got, "Events guide") || !strings.Contains(got, "https://example.com/events") {
			t.Errorf("expected source details in output, got %q", got)
		}
		if retr.strategy != nil {
			t.Errorf("expected default strategy, got %+v", retr.strategy)
		}
	})

	t.Run("mmr strategy with limit", func(t *testing.T) {
		retr := &mockRetriever{}
		srv := NewServer(&mockResponder{}, retr)

		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{
			"query":    "events",
			"strategy": "mmr",
			"limit":    3,
		}

		result, err := srv.handleSearchDocs(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
		if retr.strategy == nil || retr.strategy.Kind != retrieval.KindMMR || retr.strategy.K != 3 {
			t.Errorf("expected mmr strategy with k=3, got %+v", retr.strategy)
		}
	})

	t.Run("missing query", func(t *testing.T) {
		srv := NewServer(&mockResponder{}, &mockRetriever{})
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{}

		result, err := srv.handleSearchDocs(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error for missing query")
		}
	})

	t.Run("empty results", func(t *testing.T) {
		srv := NewServer(&mockResponder{}, &mockRetriever{})
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{
			"query": "anything",
		}

		result, err := srv.handleSearchDocs(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Error("empty results should not be an error")
		}
	})
}
