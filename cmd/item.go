package cmd

import (
	"fmt"
	"time"

	"feedrank/internal/service"

	"github.com/spf13/cobra"
)

var itemCmd = &cobra.Command{
	Use:   "item",
	Short: "Browse and flag stored items",
}

var (
	itemListSort   string
	itemListFilter string
	itemListLimit  int
	itemListCursor string
)

var itemListCmd = &cobra.Command{
	Use:   "list",
	Short: "List items by recency or relevance",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		rdb, store, err := newStore(cfg)
		if err != nil {
			return err
		}
		defer rdb.Close()

		svc := service.NewItems(store)
		items, next, err := svc.List(cmdContext(cmd), service.ListOptions{
			Sort:     service.Sort(itemListSort),
			Filter:   service.Filter(itemListFilter),
			PageSize: itemListLimit,
			Cursor:   itemListCursor,
		})
		if err != nil {
			return err
		}
		for _, item := range items {
			flags := "-"
			if item.Read {
				flags = "r"
			}
			if item.Saved {
				flags += "s"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%8.3f\t%s\t%s\n",
				item.ID, flags, item.Score, item.PublishedAt.Format(time.RFC3339), item.Title)
		}
		if next != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "next: --cursor %s\n", next)
		}
		return nil
	},
}

var itemShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one item and its score breakdown",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		rdb, store, err := newStore(cfg)
		if err != nil {
			return err
		}
		defer rdb.Close()

		svc := service.NewItems(store)
		item, contribs, err := svc.Get(cmdContext(cmd), args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "id:        %s\n", item.ID)
		fmt.Fprintf(out, "source:    %s\n", item.SourceID)
		fmt.Fprintf(out, "title:     %s\n", item.Title)
		fmt.Fprintf(out, "link:      %s\n", item.Link)
		fmt.Fprintf(out, "published: %s\n", item.PublishedAt.Format(time.RFC3339))
		fmt.Fprintf(out, "score:     %.4f\n", item.Score)
		for _, c := range contribs {
			fmt.Fprintf(out, "  %-24s sim=%.4f contrib=%.4f\n", c.TermText, c.Similarity, c.Contribution)
		}
		return nil
	},
}

func itemFlagCmd(use, short string, run func(*service.Items, *cobra.Command, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := GetConfig()
			rdb, store, err := newStore(cfg)
			if err != nil {
				return err
			}
			defer rdb.Close()
			return run(service.NewItems(store), cmd, args[0])
		},
	}
}

func init() {
	itemListCmd.Flags().StringVar(&itemListSort, "sort", "recency", "sort order: recency or relevance")
	itemListCmd.Flags().StringVar(&itemListFilter, "filter", "all", "filter: all, unread, read, or saved")
	itemListCmd.Flags().IntVar(&itemListLimit, "limit", 20, "page size")
	itemListCmd.Flags().StringVar(&itemListCursor, "cursor", "", "resume cursor from a previous page")

	readCmd := itemFlagCmd("read <id>", "Mark an item as read", func(svc *service.Items, cmd *cobra.Command, id string) error {
		item, err := svc.MarkRead(cmdContext(cmd), id, true)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\tread\n", item.ID)
		return nil
	})
	unreadCmd := itemFlagCmd("unread <id>", "Mark an item as unread", func(svc *service.Items, cmd *cobra.Command, id string) error {
		item, err := svc.MarkRead(cmdContext(cmd), id, false)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\tunread\n", item.ID)
		return nil
	})
	saveCmd := itemFlagCmd("save <id>", "Mark an item as saved", func(svc *service.Items, cmd *cobra.Command, id string) error {
		item, err := svc.MarkSaved(cmdContext(cmd), id, true)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\tsaved\n", item.ID)
		return nil
	})
	unsaveCmd := itemFlagCmd("unsave <id>", "Clear an item's saved flag", func(svc *service.Items, cmd *cobra.Command, id string) error {
		item, err := svc.MarkSaved(cmdContext(cmd), id, false)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\tunsaved\n", item.ID)
		return nil
	})

	itemCmd.AddCommand(itemListCmd, itemShowCmd, readCmd, unreadCmd, saveCmd, unsaveCmd)
	rootCmd.AddCommand(itemCmd)
}
