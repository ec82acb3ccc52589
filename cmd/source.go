package cmd

import (
	"context"
	"fmt"
	"os"

	"feedrank/internal/service"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Manage subscribed sources",
}

var (
	sourceAddTitle string
	sourceAddGroup string
)

var sourceAddCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Register a source",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		rdb, store, err := newStore(cfg)
		if err != nil {
			return err
		}
		defer rdb.Close()

		svc := service.NewSources(store, newCascade(cfg, store))
		src, err := svc.Create(cmdContext(cmd), args[0], sourceAddTitle, sourceAddGroup)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", src.ID, src.Title)
		return nil
	},
}

var sourceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		rdb, store, err := newStore(cfg)
		if err != nil {
			return err
		}
		defer rdb.Close()

		svc := service.NewSources(store, newCascade(cfg, store))
		sources, err := svc.List(cmdContext(cmd))
		if err != nil {
			return err
		}
		for _, src := range sources {
			state := "active"
			if !src.Active {
				state = "paused"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n", src.ID, state, src.Title, src.URL)
		}
		return nil
	},
}

var sourceRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Deregister a source and delete everything it owns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		rdb, store, err := newStore(cfg)
		if err != nil {
			return err
		}
		defer rdb.Close()

		svc := service.NewSources(store, newCascade(cfg, store))
		n, err := svc.Delete(cmdContext(cmd), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted source and %d items\n", n)
		return nil
	},
}

// sourceImportFile is the YAML shape accepted by `source import`.
type sourceImportFile struct {
	Sources []struct {
		URL   string `yaml:"url"`
		Title string `yaml:"title"`
		Group string `yaml:"group"`
	} `yaml:"sources"`
}

var sourceImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Register sources in bulk from a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var file sourceImportFile
		if err := yaml.Unmarshal(b, &file); err != nil {
			return fmt.Errorf("parse %s: %w", args[0], err)
		}

		cfg := GetConfig()
		rdb, store, err := newStore(cfg)
		if err != nil {
			return err
		}
		defer rdb.Close()

		svc := service.NewSources(store, newCascade(cfg, store))
		created := 0
		for _, entry := range file.Sources {
			src, err := svc.Create(cmdContext(cmd), entry.URL, entry.Title, entry.Group)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "skipping %s: %v\n", entry.URL, err)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", src.ID, src.Title)
			created++
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d of %d sources\n", created, len(file.Sources))
		return nil
	},
}

// cmdContext returns the command's context, or a background one for
// direct invocations in tests.
func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func init() {
	sourceAddCmd.Flags().StringVar(&sourceAddTitle, "title", "", "display title (defaults to one derived from the URL)")
	sourceAddCmd.Flags().StringVar(&sourceAddGroup, "group", "", "grouping label")
	sourceCmd.AddCommand(sourceAddCmd, sourceListCmd, sourceRmCmd, sourceImportCmd)
	rootCmd.AddCommand(sourceCmd)
}
