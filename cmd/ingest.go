package cmd

import (
	"fmt"
	"time"

	"feedrank/internal/service"

	"github.com/spf13/cobra"
)

var (
	ingestTitle     string
	ingestBody      string
	ingestPublished string
)

// ingestCmd stores one already-fetched candidate item, mainly for
// piping a scraper's output in without an API layer.
var ingestCmd = &cobra.Command{
	Use:   "ingest <source-id> <link>",
	Short: "Ingest a single candidate item",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		rdb, store, err := newStore(cfg)
		if err != nil {
			return err
		}
		defer rdb.Close()

		var publishedAt time.Time
		if ingestPublished != "" {
			publishedAt, err = time.Parse(time.RFC3339, ingestPublished)
			if err != nil {
				return fmt.Errorf("invalid published time: %w", err)
			}
		}

		ing := service.NewIngestor(store, newScorer(cfg, store))
		item, created, err := ing.Ingest(cmdContext(cmd), args[0], service.Candidate{
			Link:        args[1],
			Title:       ingestTitle,
			Body:        ingestBody,
			PublishedAt: publishedAt,
		})
		if err != nil {
			return err
		}
		if !created {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\tduplicate\n", item.ID)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%.4f\t%s\n", item.ID, item.Score, item.Title)
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestTitle, "title", "", "item title (required)")
	ingestCmd.Flags().StringVar(&ingestBody, "body", "", "item body text")
	ingestCmd.Flags().StringVar(&ingestPublished, "published", "", "publish time, RFC 3339 (defaults to now)")
	rootCmd.AddCommand(ingestCmd)
}
