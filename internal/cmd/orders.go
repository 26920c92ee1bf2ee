package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oakmart/storefront/internal/mutation"
)

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List your orders",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}

		orders, err := application.Orders(cmd.Context())
		if err != nil {
			return fail(err)
		}

		if len(orders) == 0 {
			fmt.Println("No orders yet")
			return nil
		}
		for _, o := range orders {
			fmt.Printf("%-12s  %-10s  $%.2f  %s\n", o.ID, o.Status, o.Total, o.CreatedAt)
		}
		return nil
	},
}

var orderCmd = &cobra.Command{
	Use:   "order <id>",
	Short: "Show an order with its shipment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}

		details, err := application.OrderDetails(cmd.Context(), args[0])
		if err != nil {
			return fail(err)
		}

		o := details.Order
		fmt.Printf("%s  %s  $%.2f\n", o.ID, o.Status, o.Total)
		for _, item := range o.Items {
			fmt.Printf("  %-30s  %d × $%.2f\n", item.ProductName, item.Quantity, item.Price)
		}

		if details.Shipment != nil {
			s := details.Shipment
			fmt.Printf("shipment: %s via %s (%s)\n", s.TrackingNumber, s.Carrier, s.Status)
		}
		return nil
	},
}

var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Place an order for the current cart",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}

		order, outcome, err := application.Checkout(cmd.Context())
		if err != nil {
			return fail(err)
		}
		if outcome == mutation.OutcomeRolledBack {
			return fmt.Errorf("checkout failed")
		}

		fmt.Printf("Order %s placed: $%.2f\n", order.ID, order.Total)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ordersCmd, orderCmd, checkoutCmd)
}
