package main

import (
	"context"
	"fmt"
	"io"

	"github.com/GriffinCanCode/gatorbrowse/internal/browser"
	"github.com/GriffinCanCode/gatorbrowse/internal/browser/plugins/redirect"
	"github.com/GriffinCanCode/gatorbrowse/internal/browser/plugins/trace"
	"github.com/spf13/cobra"
)

// NewFetchCmd creates the fetch command
func NewFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch <url>",
		Short: "Load a page and print where it ended up",
		Long: `Fetch loads a URL through the full plugin set and prints the final
URL, the status code, the page title and every redirect hop taken.

Examples:
  gatorbrowse fetch https://www.isis.ufl.edu/
  gatorbrowse fetch --body https://login.ufl.edu/`,
		Args: cobra.ExactArgs(1),
		RunE: runFetch,
	}
	cmd.Flags().Bool("body", false, "Print the decoded page text")
	return cmd
}

func runFetch(cmd *cobra.Command, args []string) error {
	_, log, b, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	chain := &redirect.Chain{}
	ctx = redirect.WithChain(ctx, chain)

	page, err := b.Load(ctx, args[0])
	out := cmd.OutOrStdout()
	printHops(out, chain)
	if err != nil {
		return err
	}
	printPage(out, page)
	if id, err := b.Get(trace.PropertyLastTrace); err == nil {
		fmt.Fprintf(out, "trace:   %v\n", id)
	}

	if body, _ := cmd.Flags().GetBool("body"); body {
		fmt.Fprintln(out)
		fmt.Fprintln(out, page.Text())
	}
	return nil
}

func printPage(w io.Writer, page *browser.Page) {
	fmt.Fprintf(w, "url:     %s\n", page.URL())
	fmt.Fprintf(w, "status:  %d\n", page.Status())
	fmt.Fprintf(w, "title:   %s\n", page.Title())
	fmt.Fprintf(w, "charset: %s\n", page.Charset())
}

func printHops(w io.Writer, chain *redirect.Chain) {
	for i, hop := range chain.Hops() {
		fmt.Fprintf(w, "hop %d: %s %s %s", i+1, hop.Kind, hop.Method, hop.URL)
		if hop.Status != 0 {
			fmt.Fprintf(w, " (%d)", hop.Status)
		}
		fmt.Fprintln(w)
	}
}
