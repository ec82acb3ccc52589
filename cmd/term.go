package cmd

import (
	"fmt"

	"feedrank/internal/service"

	"github.com/spf13/cobra"
)

var termCmd = &cobra.Command{
	Use:   "term",
	Short: "Manage interest terms",
}

var termAddWeight float64

var termAddCmd = &cobra.Command{
	Use:   "add <text>",
	Short: "Register an interest term",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		rdb, store, err := newStore(cfg)
		if err != nil {
			return err
		}
		defer rdb.Close()

		svc := service.NewTerms(store, newScorer(cfg, store))
		term, err := svc.Add(cmdContext(cmd), args[0], termAddWeight)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%.2f\n", term.ID, term.Text, term.Weight)
		return nil
	},
}

var termListCmd = &cobra.Command{
	Use:   "list",
	Short: "List interest terms",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		rdb, store, err := newStore(cfg)
		if err != nil {
			return err
		}
		defer rdb.Close()

		svc := service.NewTerms(store, newScorer(cfg, store))
		terms, err := svc.List(cmdContext(cmd))
		if err != nil {
			return err
		}
		for _, term := range terms {
			state := "active"
			if !term.Active {
				state = "inactive"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%.2f\t%s\n", term.ID, state, term.Weight, term.Text)
		}
		return nil
	},
}

var (
	termSetText   string
	termSetWeight float64
	termSetActive bool
)

var termSetCmd = &cobra.Command{
	Use:   "set <id>",
	Short: "Edit an interest term",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		rdb, store, err := newStore(cfg)
		if err != nil {
			return err
		}
		defer rdb.Close()

		var upd service.TermUpdate
		if cmd.Flags().Changed("text") {
			upd.Text = &termSetText
		}
		if cmd.Flags().Changed("weight") {
			upd.Weight = &termSetWeight
		}
		if cmd.Flags().Changed("active") {
			upd.Active = &termSetActive
		}

		svc := service.NewTerms(store, newScorer(cfg, store))
		term, needsRecalc, err := svc.Update(cmdContext(cmd), args[0], upd)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%.2f\n", term.ID, term.Text, term.Weight)
		if needsRecalc {
			fmt.Fprintln(cmd.OutOrStdout(), "stored scores are stale; run `feedrank recalc`")
		}
		return nil
	},
}

var termRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete an interest term",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		rdb, store, err := newStore(cfg)
		if err != nil {
			return err
		}
		defer rdb.Close()

		svc := service.NewTerms(store, newScorer(cfg, store))
		if err := svc.Delete(cmdContext(cmd), args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "deleted")
		return nil
	},
}

func init() {
	termAddCmd.Flags().Float64Var(&termAddWeight, "weight", 1.0, "term weight (0 < w <= 10)")
	termSetCmd.Flags().StringVar(&termSetText, "text", "", "new term text")
	termSetCmd.Flags().Float64Var(&termSetWeight, "weight", 1.0, "new weight (0 < w <= 10)")
	termSetCmd.Flags().BoolVar(&termSetActive, "active", true, "enable or disable the term")
	termCmd.AddCommand(termAddCmd, termListCmd, termSetCmd, termRmCmd)
	rootCmd.AddCommand(termCmd)
}
