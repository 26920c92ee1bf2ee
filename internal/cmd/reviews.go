package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oakmart/storefront/internal/mutation"
)

var reviewsCmd = &cobra.Command{
	Use:   "reviews <product-id>",
	Short: "List a product's reviews",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reviews, err := application.Reviews(cmd.Context(), args[0])
		if err != nil {
			return fail(err)
		}

		if len(reviews) == 0 {
			fmt.Println("No reviews yet")
			return nil
		}
		for _, r := range reviews {
			fmt.Printf("%d/5  %s — %s\n", r.Rating, r.Title, r.Comment)
		}
		return nil
	},
}

var reviewRating int
var reviewTitle string
var reviewComment string

var reviewAddCmd = &cobra.Command{
	Use:   "add <product-id>",
	Short: "Review a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}

		_, outcome := application.SubmitReview(cmd.Context(), args[0], reviewRating, reviewTitle, reviewComment)
		if outcome == mutation.OutcomeRolledBack {
			return fmt.Errorf("review submission failed")
		}
		return nil
	},
}

func init() {
	reviewAddCmd.Flags().IntVar(&reviewRating, "rating", 5, "rating from 1 to 5")
	reviewAddCmd.Flags().StringVar(&reviewTitle, "title", "", "review title")
	reviewAddCmd.Flags().StringVar(&reviewComment, "comment", "", "review text")
	reviewsCmd.AddCommand(reviewAddCmd)
	rootCmd.AddCommand(reviewsCmd)
}
