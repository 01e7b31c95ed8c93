package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vnav/internal/config"
	"github.com/vango-dev/vnav/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╦  ╦┌┐┌┌─┐┬  ┬
  ╚╗╔╝│││├─┤└┐┌┘
   ╚╝ ┘└┘┴ ┴ └┘
`

// globalFlags holds flags shared by every command.
type globalFlags struct {
	configPath string
	logLevel   string
	noColor    bool
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		errors.Print(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "vnav",
		Short: "Serve and inspect declarative route tables",
		Long: `vnav serves an application from a declarative route table.

Routes map URL patterns to components. Secured routes send anonymous
visitors to the login page, public-only routes send signed-in visitors
home, and lazy routes import their component on the first visit.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if flags.noColor {
				errors.DisableColors()
			}
			var level slog.Level
			if err := level.UnmarshalText([]byte(flags.logLevel)); err != nil {
				return fmt.Errorf("invalid --log-level %q: %w", flags.logLevel, err)
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))
			return nil
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Config file (default: vnav.json or vnav.yaml in the current directory)")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		serveCmd(flags),
		resolveCmd(flags),
		routesCmd(flags),
		initCmd(),
		versionCmd(),
	)
	return rootCmd
}

// loadConfig reads the file named by --config, or searches upward from the
// working directory for a project root.
func loadConfig(flags *globalFlags) (*config.Config, error) {
	if flags.configPath != "" {
		return config.LoadFile(flags.configPath)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	root, err := config.FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}
	return config.Load(root)
}

// printBanner prints the vnav ASCII art banner.
func printBanner(w io.Writer) {
	fmt.Fprint(w, banner)
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}
