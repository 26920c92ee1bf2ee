package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login <username> <password>",
	Short: "Log in and persist the session for every storefront process",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := application.Login(cmd.Context(), args[0], args[1])
		if err != nil {
			return fail(err)
		}

		fmt.Printf("Logged in as %s\n", user.Username)
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register <username> <email> <password>",
	Short: "Create an account and log in",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := application.Register(cmd.Context(), args[0], args[1], args[2])
		if err != nil {
			return fail(err)
		}

		fmt.Printf("Welcome, %s\n", user.Username)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session everywhere",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := application.Logout(); err != nil {
			return fail(err)
		}

		fmt.Println("Logged out")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd)
}
