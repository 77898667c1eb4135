package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Imergent-Technology/Protogen-sub001/internal/toolset"
)

func newToolsetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toolsets",
		Short: "Print the built-in toolset registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tPRELOAD\tLIBRARIES\tCSS")
			for _, c := range toolset.Builtin() {
				fmt.Fprintf(tw, "%s\t%t\t%s\t%s\n", c.Key, c.Preload, orDash(c.Libraries), orDash(c.CSS))
			}
			return tw.Flush()
		},
	}
}

func orDash(s []string) string {
	if len(s) == 0 {
		return "-"
	}
	return strings.Join(s, ",")
}
