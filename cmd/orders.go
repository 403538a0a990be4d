package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/wooxyyy/Instant-Wellnes-Kits/internal/store"
)

var (
	ordersSource string
	ordersLimit  int
	ordersOffset int
)

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List stored orders, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate(); err != nil {
			return err
		}
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "orders: migrate store")
		}

		orders, err := st.ListOrders(ctx, store.OrderFilter{
			Source: ordersSource,
			Limit:  ordersLimit,
			Offset: ordersOffset,
		})
		if err != nil {
			return eris.Wrap(err, "orders: list")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(orders)
	},
}

func init() {
	ordersCmd.Flags().StringVar(&ordersSource, "source", "", "filter by order source (create_order_block, csv_orders_block)")
	ordersCmd.Flags().IntVar(&ordersLimit, "limit", 100, "max orders to return")
	ordersCmd.Flags().IntVar(&ordersOffset, "offset", 0, "rows to skip")
	rootCmd.AddCommand(ordersCmd)
}
