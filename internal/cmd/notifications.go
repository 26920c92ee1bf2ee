package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oakmart/storefront/internal/mutation"
)

var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "Show the notification feed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}

		notes, err := application.Notifications(cmd.Context())
		if err != nil {
			return fail(err)
		}

		for _, n := range notes {
			marker := " "
			if !n.Read {
				marker = "*"
			}
			fmt.Printf("%s %-10s  %s: %s\n", marker, n.ID, n.Title, n.Message)
		}
		return nil
	},
}

var notificationsReadCmd = &cobra.Command{
	Use:   "read <id>",
	Short: "Mark a notification as read",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}

		if outcome := application.MarkNotificationRead(cmd.Context(), args[0]); outcome == mutation.OutcomeRolledBack {
			return fmt.Errorf("mark read failed")
		}
		return nil
	},
}

func init() {
	notificationsCmd.AddCommand(notificationsReadCmd)
	rootCmd.AddCommand(notificationsCmd)
}
