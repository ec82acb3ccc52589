package cmd

import (
	"context"
	"fmt"
	"time"

	"feedrank/internal/retention"

	"github.com/spf13/cobra"
)

var (
	sweepMaxAge     string
	sweepMaxReadAge string
)

// sweepCmd runs both retention sweeps once and exits.
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run the retention sweeps once",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		rdb, store, err := newStore(cfg)
		if err != nil {
			return err
		}
		defer rdb.Close()

		maxAgeStr := cfg.Retention.MaxAge
		if sweepMaxAge != "" {
			maxAgeStr = sweepMaxAge
		}
		maxAge, err := time.ParseDuration(maxAgeStr)
		if err != nil {
			return fmt.Errorf("invalid max age: %w", err)
		}
		maxReadAgeStr := cfg.Retention.MaxReadAge
		if sweepMaxReadAge != "" {
			maxReadAgeStr = sweepMaxReadAge
		}
		maxReadAge, err := time.ParseDuration(maxReadAgeStr)
		if err != nil {
			return fmt.Errorf("invalid max read age: %w", err)
		}

		sweeper := retention.NewSweeper(store, cfg.Storage.BatchSize)
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		aged, err := sweeper.SweepAged(ctx, maxAge)
		if err != nil {
			return err
		}
		read, err := sweeper.SweepRead(ctx, maxReadAge)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "swept %d aged, %d read items\n", aged, read)
		return nil
	},
}

func init() {
	sweepCmd.Flags().StringVar(&sweepMaxAge, "max-age", "", "override retention.max_age (e.g., 168h)")
	sweepCmd.Flags().StringVar(&sweepMaxReadAge, "max-read-age", "", "override retention.max_read_age (e.g., 24h)")
	rootCmd.AddCommand(sweepCmd)
}
