package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var productsPage int
var productsLimit int

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Browse the catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := application.Products(cmd.Context(), productsPage, productsLimit)
		if err != nil {
			return fail(err)
		}

		for _, p := range page.Items {
			fmt.Printf("%-12s  %-30s  $%.2f  (%d in stock)\n", p.ID, p.Name, p.Price, p.Stock)
		}
		fmt.Printf("page %d of %d products\n", productsPage, page.Total)
		return nil
	},
}

var productCmd = &cobra.Command{
	Use:   "product <id>",
	Short: "Show a product with its stock and reviews",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		details, err := application.ProductDetails(cmd.Context(), args[0])
		if err != nil {
			return fail(err)
		}

		p := details.Product
		fmt.Printf("%s\n%s\n$%.2f — %d in stock\n", p.Name, p.Description, p.Price, details.Stock)

		if len(details.Reviews) > 0 {
			fmt.Printf("\nReviews (%d):\n", len(details.Reviews))
			for _, r := range details.Reviews {
				fmt.Printf("  %d/5  %s — %s\n", r.Rating, r.Title, r.Comment)
			}
		}
		return nil
	},
}

func init() {
	productsCmd.Flags().IntVar(&productsPage, "page", 1, "catalog page")
	productsCmd.Flags().IntVar(&productsLimit, "limit", 30, "products per page")
	rootCmd.AddCommand(productsCmd, productCmd)
}
