package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/grimaldi89/martechito/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(cfgFile); err == nil && !initForce {
			return fmt.Errorf("%s already exists, use --force to overwrite", cfgFile)
		}

		cfg := config.DefaultConfig()
		cfg.Index.Path = "data/index"
		cfg.Index.Collection = "ga4_documents"
		cfg.Catalog.Path = "data/catalog.db"
		cfg.Catalog.Dataset = "martech"
		cfg.Catalog.Table = "documents"
		cfg.ObjectStore.Root = "data/objects"
		cfg.ObjectStore.Project = "martechito"

		if err := cfg.Save(cfgFile); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Wrote %s. Set OPENAI_API_KEY and run `martechito seed` to register documents.\n", cfgFile)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}
