package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"marquee/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand())
	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if _, err := os.Stat(target); err == nil {
				if !overwrite {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				}
				if err := os.Remove(target); err != nil {
					return fmt.Errorf("remove existing config: %w", err)
				}
			} else if !os.IsNotExist(err) {
				return fmt.Errorf("check config path: %w", err)
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit the file to set store and TMDB credentials (or export SUPABASE_URL, SUPABASE_ANON_KEY, TMDB_BEARER) before running Marquee.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Validate configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load("")
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", path)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintf(out, "Store backend: %s\n", cfg.Store.Backend)
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if useJSON(ctx) {
				return writeJSON(cmd, redacted(cfg))
			}
			r := redacted(cfg)
			rows := [][]string{
				{"server.bind", r.Server.Bind},
				{"server.public_base_url", r.Server.PublicBaseURL},
				{"store.backend", r.Store.Backend},
				{"store.url", r.Store.URL},
				{"store.anon_key", r.Store.AnonKey},
				{"store.service_role_key", r.Store.ServiceRoleKey},
				{"store.sqlite_path", r.Store.SQLitePath},
				{"tmdb.bearer", r.TMDB.Bearer},
				{"tmdb.api_key", r.TMDB.APIKey},
				{"tmdb.base_url", r.TMDB.BaseURL},
				{"tmdb.language", r.TMDB.Language},
				{"paths.data_dir", r.Paths.DataDir},
				{"paths.log_dir", r.Paths.LogDir},
				{"logging.format", r.Logging.Format},
				{"logging.level", r.Logging.Level},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"key", "value"}, rows, nil))
			return nil
		},
	}
}

// redacted returns a copy of the config with secrets masked for display.
func redacted(cfg *config.Config) config.Config {
	out := *cfg
	out.Server.APIToken = maskSecret(out.Server.APIToken)
	out.Store.AnonKey = maskSecret(out.Store.AnonKey)
	out.Store.ServiceRoleKey = maskSecret(out.Store.ServiceRoleKey)
	out.TMDB.Bearer = maskSecret(out.TMDB.Bearer)
	out.TMDB.APIKey = maskSecret(out.TMDB.APIKey)
	return out
}

func maskSecret(value string) string {
	if value == "" {
		return ""
	}
	return "********"
}
