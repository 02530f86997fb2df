package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"marquee/internal/ingest"
	"marquee/internal/logging"
	"marquee/internal/recstore"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <movies.csv> <links.csv>",
		Short: "Load MovieLens CSV exports into the local store",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}

			store, err := recstore.OpenSQLite(cfg.Store.SQLitePath)
			if err != nil {
				return err
			}
			defer store.Close()

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return err
			}

			loader := ingest.NewLoader(store, logger)
			result, err := loader.Load(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if useJSON(ctx) {
				return writeJSON(cmd, result)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "loaded %d movies and %d links into %s\n",
				result.Movies, result.Links, store.Path())
			return nil
		},
	}
}
