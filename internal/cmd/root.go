// Package cmd implements the storefront command line. Every command goes
// through the shared application root, so cached reads, deduplication and
// the persisted session behave the same here as in any other frontend.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oakmart/storefront/internal/app"
	"github.com/oakmart/storefront/internal/config"
	"github.com/oakmart/storefront/internal/errmsg"
)

// application is built once per invocation by the root pre-run.
var application *app.App

var rootCmd = &cobra.Command{
	Use:           "storefront",
	Short:         "Storefront client: browse, shop and track orders from the terminal.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cmd.Context())
		if err != nil {
			return fmt.Errorf("configuration load failed: %w", err)
		}

		application, err = app.New(cfg, app.WithNotifier(toastNotifier{}))
		if err != nil {
			return fmt.Errorf("client setup failed: %w", err)
		}

		return nil
	},
}

// toastNotifier prints mutation outcomes the way a UI would toast them.
type toastNotifier struct{}

func (toastNotifier) Success(message string) {
	fmt.Fprintln(os.Stdout, message)
}

func (toastNotifier) Error(message string) {
	fmt.Fprintln(os.Stderr, message)
}

// fail prints the user-facing form of an error and reports it upward.
func fail(err error) error {
	fmt.Fprintln(os.Stderr, errmsg.FromError(err))
	return err
}

// requireSession guards the commands that need a logged-in user.
func requireSession() error {
	if !application.Session.Authenticated() {
		return fmt.Errorf("not logged in; run `storefront login` first")
	}
	return nil
}

// Execute runs the root command. Called by main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
