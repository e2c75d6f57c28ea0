package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"inventory-server-go/internal/client"
)

func itemsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "Manage inventory items",
	}

	cmd.AddCommand(
		itemsListCmd(opts),
		itemsAllCmd(opts),
		itemsGetCmd(opts),
		itemsCreateCmd(opts),
		itemsUpdateCmd(opts),
		itemsDeleteCmd(opts),
		itemsWatchCmd(opts),
	)
	return cmd
}

func itemsListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your items",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.newClient(cmd)
			if err != nil {
				return err
			}

			items, err := c.ListItems(cmd.Context())
			if err != nil {
				return err
			}
			return renderItems(cmd.OutOrStdout(), items)
		},
	}
}

func itemsAllCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "List every item in the catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.newClient(cmd)
			if err != nil {
				return err
			}

			items, err := c.GetAllItems(cmd.Context())
			if err != nil {
				return err
			}
			return renderItems(cmd.OutOrStdout(), items)
		},
	}
}

func itemsGetCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.newClient(cmd)
			if err != nil {
				return err
			}

			item, err := c.GetItem(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return renderItem(cmd.OutOrStdout(), item)
		},
	}
}

func itemsCreateCmd(opts *options) *cobra.Command {
	var (
		name     string
		price    float64
		category string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new item",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.newClient(cmd)
			if err != nil {
				return err
			}

			created, err := c.CreateItem(cmd.Context(), client.Item{
				Name:     name,
				Price:    price,
				Category: category,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created item %s.\n", created.ItemID)
			return renderItem(cmd.OutOrStdout(), created)
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Item name")
	cmd.Flags().Float64Var(&price, "price", 0, "Item price")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Item category")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("price")
	return cmd
}

func itemsUpdateCmd(opts *options) *cobra.Command {
	var (
		name     string
		price    float64
		category string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update an item's fields",
		Long: `Update an item. Only the provided flags change; the other fields are
fetched from the server and sent back unchanged.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.newClient(cmd)
			if err != nil {
				return err
			}

			item, err := c.GetItem(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("name") {
				item.Name = name
			}
			if cmd.Flags().Changed("price") {
				item.Price = price
			}
			if cmd.Flags().Changed("category") {
				item.Category = category
			}

			updated, err := c.UpdateItem(cmd.Context(), args[0], item)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Updated item %s.\n", updated.ItemID)
			return renderItem(cmd.OutOrStdout(), updated)
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "New item name")
	cmd.Flags().Float64Var(&price, "price", 0, "New item price")
	cmd.Flags().StringVarP(&category, "category", "c", "", "New item category")
	return cmd
}

func itemsDeleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.newClient(cmd)
			if err != nil {
				return err
			}

			if err := c.DeleteItem(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted item %s.\n", args[0])
			return nil
		},
	}
}

func itemsWatchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stream live item changes until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.newClient(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Watching item changes (ctrl-c to stop)...")
			return c.WatchItems(ctx, func(ev client.ItemEvent) {
				renderItemEvent(out, ev)
			})
		},
	}
}
