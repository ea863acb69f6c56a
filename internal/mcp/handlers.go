package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/grimaldi89/martechito/internal/index"
	"github.com/grimaldi89/martechito/internal/retrieval"
)

// handleAskAssistant runs a full conversational turn and returns the answer
// with its citations.
func (s *Server) handleAskAssistant(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: question"), nil
	}

	sess := s.session(request.GetString("session_id", ""))
	reply, err := s.responder.Respond(ctx, sess, question)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("question failed: %v", err)), nil
	}

	return mcp.NewToolResultText(reply.Answer), nil
}

// handleSearchDocs performs retrieval only, without answer synthesis.
func (s *Server) handleSearchDocs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	var strategy *retrieval.Strategy
	if kind := request.GetString("strategy", ""); kind != "" {
		st := retrieval.DefaultStrategy()
		st.Kind = retrieval.Kind(kind)
		if limit := request.GetInt("limit", 0); limit > 0 {
			st.K = limit
		}
		if err := st.Validate(); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		strategy = &st
	}

	results, err := s.retriever.Retrieve(ctx, query, strategy)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	if len(results) == 0 {
		return mcp.NewToolResultText("No matching documentation found. The index may be empty; run `martechito ingest` to populate it."), nil
	}

	return mcp.NewToolResultText(formatResults(results)), nil
}

// formatResults converts retrieval results into a text format for agent
// consumption.
func formatResults(results []index.Result) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d excerpt(s):\n", len(results)))

	for i, r := range results {
		sb.WriteString(fmt.Sprintf("\n--- Excerpt %d ---\n", i+1))
		if r.Meta.Title != "" {
			sb.WriteString(fmt.Sprintf("Title: %s\n", r.Meta.Title))
		}
		if r.Meta.Source != "" {
			sb.WriteString(fmt.Sprintf("Source: %s\n", r.Meta.Source))
		}
		if r.Meta.Subject != "" {
			sb.WriteString(fmt.Sprintf("Subject: %s\n", r.Meta.Subject))
		}
		sb.WriteString(fmt.Sprintf("Similarity: %.1f%%\n", r.Similarity*100))
		sb.WriteString("\n")
		sb.WriteString(r.Text)
		sb.WriteString("\n")
	}

	return sb.String()
}
