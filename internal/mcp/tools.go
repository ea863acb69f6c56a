package mcp

import "github.com/mark3labs/mcp-go/mcp"

// askAssistantTool defines the ask_assistant MCP tool.
var askAssistantTool = mcp.NewTool("ask_assistant",
	mcp.WithDescription("Ask the Google Analytics 4 documentation assistant a question. Answers are grounded in the indexed documentation and come with source citations."),
	mcp.WithString("question",
		mcp.Required(),
		mcp.Description("Natural language question about GA4"),
	),
	mcp.WithString("session_id",
		mcp.Description("Conversation to continue; omit for a one-off question"),
	),
)

// searchDocsTool defines the search_docs MCP tool.
var searchDocsTool = mcp.NewTool("search_docs",
	mcp.WithDescription("Search the indexed GA4 documentation and return the raw matching excerpts with their sources."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Natural language search query"),
	),
	mcp.WithString("strategy",
		mcp.Description("Retrieval strategy (default threshold)"),
		mcp.Enum("threshold", "mmr"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Number of excerpts for the mmr strategy (default 6)"),
	),
)
