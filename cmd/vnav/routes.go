package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func routesCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the route table",
		Long: `List configured routes in definition order with their guards.

Flags:
  S  secured, anonymous visitors are sent to the login page
  P  public only, signed-in visitors are sent home
  L  lazy, the component is imported on first visit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "PATH\tCOMPONENT\tFLAGS\tTITLE")
			for _, r := range cfg.Routes {
				var f strings.Builder
				if r.Secured {
					f.WriteByte('S')
				}
				if r.PublicOnly {
					f.WriteByte('P')
				}
				if r.Lazy {
					f.WriteByte('L')
				}
				marks := f.String()
				if marks == "" {
					marks = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Path, r.Component, marks, r.Title)
			}
			return tw.Flush()
		},
	}
}
