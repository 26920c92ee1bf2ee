package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var trackCmd = &cobra.Command{
	Use:   "track <tracking-number>",
	Short: "Track a shipment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := application.API.TrackShipment(cmd.Context(), args[0])
		if err != nil {
			return fail(err)
		}

		fmt.Printf("%s via %s: %s\n", info.TrackingNumber, info.Carrier, info.Status)
		for _, h := range info.History {
			fmt.Printf("  %s  %s  %s\n", h.Timestamp, h.Status, h.Location)
		}
		return nil
	},
}

var estimateFrom string
var estimateTo string
var estimateWeight float64

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate shipping cost",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		estimate, err := application.API.EstimateShipping(cmd.Context(), estimateFrom, estimateTo, estimateWeight)
		if err != nil {
			return fail(err)
		}

		fmt.Printf("$%.2f, about %d days\n", estimate.Cost, estimate.EstimatedDays)
		return nil
	},
}

func init() {
	estimateCmd.Flags().StringVar(&estimateFrom, "from", "", "origin")
	estimateCmd.Flags().StringVar(&estimateTo, "to", "", "destination")
	estimateCmd.Flags().Float64Var(&estimateWeight, "weight", 1, "weight in kg")
	_ = estimateCmd.MarkFlagRequired("from")
	_ = estimateCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(trackCmd, estimateCmd)
}
