package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/GriffinCanCode/gatorbrowse/internal/browser"
	"github.com/GriffinCanCode/gatorbrowse/internal/sites/uf"
	"github.com/spf13/cobra"
)

// Environment variables holding the GatorLink credentials
const (
	envUsername = "GATOR_USERNAME"
	envPassword = "GATOR_PASSWORD"
)

var errNoCredentials = errors.New(envUsername + " and " + envPassword + " must be set")

// NewLoginCmd creates the login command
func NewLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to GatorLink",
		Long: `Login signs in to GatorLink with the credentials in GATOR_USERNAME and
GATOR_PASSWORD and reports the resulting authentication state. With --isis
it then opens the named ISIS page in the same session.

Examples:
  gatorbrowse login
  gatorbrowse login --isis RSI-GRADES --logout`,
		Args: cobra.NoArgs,
		RunE: runLogin,
	}
	cmd.Flags().String("isis", "", "ISIS page code to open after signing in")
	cmd.Flags().Bool("logout", false, "Sign out again before exiting")
	return cmd
}

func runLogin(cmd *cobra.Command, _ []string) error {
	username, password := os.Getenv(envUsername), os.Getenv(envPassword)
	if username == "" || password == "" {
		return errNoCredentials
	}

	_, log, b, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	_, err = b.Call(ctx, uf.ExtensionLogin, uf.NewCredentials(username, password))
	state, _ := b.Get(uf.PropertyAuthState)
	fmt.Fprintf(out, "state:   %v\n", state)
	if err != nil {
		return err
	}
	printPage(out, b.Current())

	if code, _ := cmd.Flags().GetString("isis"); code != "" {
		v, err := b.Call(ctx, uf.ExtensionLoadIsisPage, code)
		if err != nil {
			return err
		}
		fmt.Fprintln(out)
		printPage(out, v.(*browser.Page))
	}

	if logout, _ := cmd.Flags().GetBool("logout"); logout {
		if _, err := b.Call(ctx, uf.ExtensionLogout); err != nil {
			return err
		}
		state, _ := b.Get(uf.PropertyAuthState)
		fmt.Fprintf(out, "state:   %v\n", state)
	}
	return nil
}
