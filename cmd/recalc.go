package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// recalcCmd rescores every stored item against the current terms.
var recalcCmd = &cobra.Command{
	Use:   "recalc",
	Short: "Recalculate importance scores for all items",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		rdb, store, err := newStore(cfg)
		if err != nil {
			return err
		}
		defer rdb.Close()

		scorer := newScorer(cfg, store)
		if scorer == nil {
			return fmt.Errorf("recalculation requires openai.api_key to be configured")
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		n, err := scorer.RecalculateAll(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "rescored %d items\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(recalcCmd)
}
