package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/grimaldi89/martechito/internal/catalog"
)

var seedCmd = &cobra.Command{
	Use:   "seed <descriptors.json>",
	Short: "Register document descriptors in the catalog",
	Long: `Loads a JSON array of document descriptors into the catalog.
Each entry has "url", "subject" and "tool" fields. Descriptors are keyed
by URL: seeding the same URL again replaces its annotations.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading descriptors: %w", err)
		}
		var descriptors []catalog.Descriptor
		if err := json.Unmarshal(data, &descriptors); err != nil {
			return fmt.Errorf("parsing descriptors: %w", err)
		}

		cat, err := openCatalog(cfg)
		if err != nil {
			return err
		}
		defer cat.Close()

		for _, d := range descriptors {
			if d.URL == "" {
				return fmt.Errorf("descriptor without url in %s", args[0])
			}
			if err := cat.Put(cmd.Context(), d); err != nil {
				return err
			}
		}

		fmt.Printf("Registered %d descriptors in %s\n", len(descriptors), cfg.Catalog.Path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
