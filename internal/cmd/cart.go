package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/oakmart/storefront/internal/api"
	"github.com/oakmart/storefront/internal/mutation"
)

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Show the cart",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}

		cart, err := application.Cart(cmd.Context())
		if err != nil {
			return fail(err)
		}

		printCart(cart)
		return nil
	},
}

var addQuantity int

var cartAddCmd = &cobra.Command{
	Use:   "add <product-id>",
	Short: "Add a product to the cart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}

		// the cart service stores denormalized product fields, so the
		// product is resolved first (usually straight from cache)
		details, err := application.ProductDetails(cmd.Context(), args[0])
		if err != nil {
			return fail(err)
		}

		cart, outcome := application.AddToCart(cmd.Context(), details.Product, addQuantity)
		if outcome == mutation.OutcomeRolledBack {
			return fmt.Errorf("add to cart failed")
		}

		printCart(cart)
		return nil
	},
}

var cartSetCmd = &cobra.Command{
	Use:   "set <item-id> <quantity>",
	Short: "Change a cart line's quantity",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}

		quantity, err := strconv.Atoi(args[1])
		if err != nil || quantity < 1 {
			return fmt.Errorf("quantity must be a positive number")
		}

		cart, outcome := application.SetCartQuantity(cmd.Context(), args[0], quantity)
		if outcome == mutation.OutcomeRolledBack {
			return fmt.Errorf("quantity update failed")
		}

		printCart(cart)
		return nil
	},
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove <item-id>",
	Short: "Remove a cart line",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}

		if outcome := application.RemoveCartItem(cmd.Context(), args[0]); outcome == mutation.OutcomeRolledBack {
			return fmt.Errorf("remove failed")
		}
		return nil
	},
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the cart",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}

		if outcome := application.ClearCart(cmd.Context()); outcome == mutation.OutcomeRolledBack {
			return fmt.Errorf("clear failed")
		}
		return nil
	},
}

func printCart(cart api.Cart) {
	if len(cart.Items) == 0 {
		fmt.Println("Your cart is empty")
		return
	}

	for _, item := range cart.Items {
		fmt.Printf("%-12s  %-30s  %d × $%.2f\n", item.ID, item.ProductName, item.Quantity, item.ProductPrice)
	}
	fmt.Printf("subtotal $%.2f  shipping $%.2f  total $%.2f\n", cart.Subtotal, cart.Shipping, cart.Total)
}

func init() {
	cartAddCmd.Flags().IntVar(&addQuantity, "qty", 1, "quantity to add")
	cartCmd.AddCommand(cartAddCmd, cartSetCmd, cartRemoveCmd, cartClearCmd)
	rootCmd.AddCommand(cartCmd)
}
