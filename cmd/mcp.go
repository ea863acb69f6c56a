package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/grimaldi89/martechito/internal/mcp"
	"github.com/grimaldi89/martechito/internal/telemetry"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing the assistant's question answering and documentation search tools to AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		embedder, err := buildEmbedder(cfg)
		if err != nil {
			return err
		}
		provider, err := buildProvider(cfg)
		if err != nil {
			return err
		}
		_, store, err := openIndex(cfg, embedder)
		if err != nil {
			return err
		}

		retriever := buildRetriever(cfg, embedder, store)
		engine := buildEngine(cfg, provider, retriever, telemetry.NewSink(cfg.Telemetry.URL))

		mcpserver.Version = Version

		// Stdout carries the MCP protocol; status goes to stderr.
		fmt.Fprintf(os.Stderr, "martechito MCP server started on stdio (collection=%s, chunks=%d)\n",
			cfg.Index.Collection, store.Count())

		srv := mcpserver.NewServer(engine, retriever)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
