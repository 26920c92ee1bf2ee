package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oakmart/storefront/internal/mutation"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show your profile",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}

		user, err := application.Profile(cmd.Context())
		if err != nil {
			return fail(err)
		}

		fmt.Printf("%s <%s>\n", user.Username, user.Email)
		if user.Name != "" {
			fmt.Printf("name:  %s\n", user.Name)
		}
		if user.Phone != "" {
			fmt.Printf("phone: %s\n", user.Phone)
		}
		return nil
	},
}

var profileName string
var profilePhone string

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update your name and phone",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}

		user, outcome := application.UpdateProfile(cmd.Context(), profileName, profilePhone)
		if outcome == mutation.OutcomeRolledBack {
			return fmt.Errorf("profile update failed")
		}

		fmt.Printf("%s — %s\n", user.Name, user.Phone)
		return nil
	},
}

func init() {
	profileUpdateCmd.Flags().StringVar(&profileName, "name", "", "display name")
	profileUpdateCmd.Flags().StringVar(&profilePhone, "phone", "", "phone number")
	profileCmd.AddCommand(profileUpdateCmd)
	rootCmd.AddCommand(profileCmd)
}
