package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"feedrank/internal/retention"
	"feedrank/worker"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the service workers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		rdb, store, err := newStore(cfg)
		if err != nil {
			return err
		}
		defer rdb.Close()

		maxAge, err := time.ParseDuration(cfg.Retention.MaxAge)
		if err != nil {
			return fmt.Errorf("invalid max_age: %w", err)
		}
		maxReadAge, err := time.ParseDuration(cfg.Retention.MaxReadAge)
		if err != nil {
			return fmt.Errorf("invalid max_read_age: %w", err)
		}
		interval, err := time.ParseDuration(cfg.Retention.SweepInterval)
		if err != nil {
			return fmt.Errorf("invalid sweep_interval: %w", err)
		}

		sweeper := &worker.Sweeper{
			Sweeper:    retention.NewSweeper(store, cfg.Storage.BatchSize),
			MaxAge:     maxAge,
			MaxReadAge: maxReadAge,
			Interval:   interval,
		}

		slog.Info("starting retention sweeper", "interval", interval, "max_age", maxAge, "max_read_age", maxReadAge)
		mgr := worker.NewManager(sweeper)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Signal handling for systemd
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			s := <-sigc
			log.Printf("received signal: %s, shutting down", s)
			cancel()
		}()

		return mgr.Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
