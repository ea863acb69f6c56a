package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "martechito",
	Short: "Grounded Google Analytics 4 documentation assistant",
	Long: `Martechito ingests GA4 documentation into a local vector index and
answers questions grounded in it, citing the source documents. It serves
HTTP and WebSocket chat, a terminal REPL, and an MCP server for AI agents.`,
}

func Execute() error {
	// Local .env files carry OPENAI_API_KEY in development; absence is fine.
	_ = godotenv.Load()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "martechito.yml", "config file path")
}
