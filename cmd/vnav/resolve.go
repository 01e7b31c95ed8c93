package main

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vnav"
	"github.com/vango-dev/vnav/internal/errors"
	"github.com/vango-dev/vnav/pkg/loader"
)

func resolveCmd(flags *globalFlags) *cobra.Command {
	var (
		loggedIn bool
		showHTML bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <path>",
		Short: "Show what a URL resolves to",
		Long: `Resolve a URL against the route table without starting a server.

Guards are applied as for an anonymous visitor unless --logged-in is set.
Lazy components are imported as they would be on a first visit.

Examples:
  vnav resolve /users/42
  vnav resolve /account --logged-in
  vnav resolve /docs#install --html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if !strings.HasPrefix(path, "/") {
				return errors.New("E160").WithDetail(fmt.Sprintf("Paths must start with '/', got %q", path))
			}

			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			app, err := vnav.New(cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			res, err := app.Resolve(cmd.Context(), path, loggedIn)
			if err != nil {
				return err
			}
			printResolution(cmd, res, showHTML)
			return importError(res.Err)
		},
	}

	cmd.Flags().BoolVar(&loggedIn, "logged-in", false, "Resolve as a signed-in visitor")
	cmd.Flags().BoolVar(&showHTML, "html", false, "Print the rendered component")

	return cmd
}

func printResolution(cmd *cobra.Command, res *vnav.Resolution, showHTML bool) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-10s %s\n", "outcome:", res.Outcome)
	switch res.Outcome {
	case vnav.OutcomeRedirected:
		fmt.Fprintf(out, "%-10s %s\n", "redirect:", res.Redirect)
		return
	case vnav.OutcomeNotFound:
		return
	}

	if res.Route != nil {
		fmt.Fprintf(out, "%-10s %s\n", "route:", res.Route.Path)
		fmt.Fprintf(out, "%-10s %s\n", "component:", res.Route.Component)
	}
	if len(res.Props) > 0 {
		keys := make([]string, 0, len(res.Props))
		for k := range res.Props {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, len(keys))
		for i, k := range keys {
			pairs[i] = k + "=" + res.Props[k]
		}
		fmt.Fprintf(out, "%-10s %s\n", "props:", strings.Join(pairs, " "))
	}
	if showHTML && res.HTML != "" {
		fmt.Fprintln(out)
		fmt.Fprintln(out, res.HTML)
	}
}

// importError maps a materialization failure to a coded error.
func importError(err error) error {
	if err == nil {
		return nil
	}
	code := "E141"
	if stderrors.Is(err, loader.ErrNotFound) {
		code = "E140"
	}
	return errors.FromError(err, code)
}
