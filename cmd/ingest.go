package cmd

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/grimaldi89/martechito/internal/catalog"
)

var (
	ingestBucket  string
	ingestObject  string
	ingestInclude []string
	ingestExclude []string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Fetch, chunk, embed and index the catalog documents",
	Long: `Runs the ingestion pipeline over every descriptor in the catalog,
or over a single object from the object store with --bucket and --object.
The batch is all-or-nothing: a failure anywhere leaves the index untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		embedder, err := buildEmbedder(cfg)
		if err != nil {
			return err
		}
		manager, store, err := openIndex(cfg, embedder)
		if err != nil {
			return err
		}
		pipeline := buildPipeline(cfg, embedder, manager, store)

		if ingestBucket != "" || ingestObject != "" {
			if ingestBucket == "" || ingestObject == "" {
				return fmt.Errorf("--bucket and --object must be used together")
			}
			chunks, err := pipeline.IngestObject(cmd.Context(), ingestBucket, ingestObject)
			if err != nil {
				return err
			}
			fmt.Printf("Indexed %d chunks from %s/%s\n", chunks, ingestBucket, ingestObject)
			return nil
		}

		cat, err := openCatalog(cfg)
		if err != nil {
			return err
		}
		defer cat.Close()

		descriptors, err := cat.List(cmd.Context())
		if err != nil {
			return err
		}

		include := cfg.Include
		if len(ingestInclude) > 0 {
			include = ingestInclude
		}
		exclude := cfg.Exclude
		if len(ingestExclude) > 0 {
			exclude = ingestExclude
		}
		descriptors = catalog.Filter(descriptors, include, exclude)
		if len(descriptors) == 0 {
			fmt.Println("No descriptors to ingest. Run `martechito seed` to register documents.")
			return nil
		}

		bar := progressbar.Default(int64(len(descriptors)), "ingesting")
		pipeline.OnDocument = func(string) { bar.Add(1) }

		chunks, err := pipeline.IngestDescriptors(cmd.Context(), descriptors)
		if err != nil {
			return err
		}
		fmt.Printf("\nIndexed %d chunks from %d documents into %s\n", chunks, len(descriptors), cfg.Index.Collection)
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestBucket, "bucket", "", "object store bucket for single-object ingestion")
	ingestCmd.Flags().StringVar(&ingestObject, "object", "", "object name for single-object ingestion")
	ingestCmd.Flags().StringSliceVar(&ingestInclude, "include", nil, "descriptor URL patterns to include (overrides config)")
	ingestCmd.Flags().StringSliceVar(&ingestExclude, "exclude", nil, "descriptor URL patterns to exclude (overrides config)")
	rootCmd.AddCommand(ingestCmd)
}
