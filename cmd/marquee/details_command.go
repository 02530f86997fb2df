package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"marquee/internal/tmdb"
)

func newDetailsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "details <tmdbId>",
		Short: "Look up movie details in the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tmdbID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid tmdb id %q", args[0])
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			client, err := tmdb.New(cfg.TMDB.Bearer, cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language)
			if err != nil {
				return err
			}

			movie, err := client.MovieDetails(cmd.Context(), tmdbID)
			if err != nil {
				return err
			}
			if useJSON(ctx) {
				return writeJSON(cmd, movie)
			}

			rows := [][]string{
				{"id", strconv.FormatInt(movie.ID, 10)},
				{"title", movie.DisplayTitle()},
				{"release date", movie.ReleaseDate},
				{"vote average", fmt.Sprintf("%.1f", movie.VoteAverage)},
			}
			if movie.Overview != "" {
				rows = append(rows, []string{"overview", movie.Overview})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"field", "value"}, rows, nil))
			return nil
		},
	}
}
