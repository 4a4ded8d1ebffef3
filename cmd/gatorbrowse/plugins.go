package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// NewPluginsCmd creates the plugins command
func NewPluginsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plugins [member...]",
		Short: "List installed plugins and what they contribute",
		Long: `Plugins prints every installed plugin in install order with the members
it contributes. Given member names, it instead explains which plugins
shaped each member.

Examples:
  gatorbrowse plugins
  gatorbrowse plugins load_page uf_login`,
		RunE: runPlugins,
	}
	return cmd
}

func runPlugins(cmd *cobra.Command, args []string) error {
	_, log, b, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	out := cmd.OutOrStdout()

	if len(args) > 0 {
		for _, name := range args {
			fmt.Fprintf(out, "%s:\n", name)
			trail := b.Explain(name)
			if len(trail) == 0 {
				fmt.Fprintln(out, "  (not defined)")
			}
			for _, p := range trail {
				fmt.Fprintf(out, "  %s %s\n", p.Kind, p.Plugin)
			}
		}
		return nil
	}

	for _, rec := range b.Records() {
		fmt.Fprintf(out, "%d. %s\n", rec.Order, rec.Plugin)
		printMembers(out, "overrides", rec.Overrides)
		printMembers(out, "extensions", rec.Extensions)
		printMembers(out, "properties", rec.Properties)
		if rec.Handlers > 0 {
			fmt.Fprintf(out, "   handlers: %d\n", rec.Handlers)
		}
	}
	return nil
}

func printMembers(w io.Writer, label string, names []string) {
	if len(names) > 0 {
		fmt.Fprintf(w, "   %s: %s\n", label, strings.Join(names, ", "))
	}
}
