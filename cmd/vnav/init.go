package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vnav/internal/config"
	"github.com/vango-dev/vnav/internal/errors"
)

func initCmd() *cobra.Command {
	var (
		dir   string
		yaml  bool
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter configuration",
		Long: `Write a starter vnav.json (or vnav.yaml) with a home page, a login
page, and a secured account page.

Examples:
  vnav init
  vnav init --yaml --dir=./site`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if config.Exists(dir) && !force {
				return errors.New("E161").
					WithDetail("Found a configuration in " + dir).
					WithSuggestion("Pass --force to overwrite it")
			}
			name := config.ConfigFileName
			if yaml {
				name = config.YAMLConfigFileName
			}
			path := filepath.Join(dir, name)
			if err := starterConfig().SaveTo(path); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "wrote %s", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Directory to write to")
	cmd.Flags().BoolVar(&yaml, "yaml", false, "Write YAML instead of JSON")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing configuration")

	return cmd
}

func starterConfig() *config.Config {
	cfg := config.New()
	cfg.Name = "My App"
	cfg.Components = map[string]string{
		"home-page":    "<h1>Home</h1><a href=\"/account\" data-link>Account</a>",
		"login-page":   "<h1>Sign in</h1>",
		"account-page": "<h1>Account</h1>",
	}
	cfg.Routes = []config.RouteConfig{
		{Path: "/", Component: "home-page", Title: "Home"},
		{Path: "/login", Component: "login-page", Title: "Sign in", PublicOnly: true},
		{Path: "/account", Component: "account-page", Title: "Account", Secured: true},
	}
	return cfg
}
