package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"marquee/internal/enrich"
	"marquee/internal/ipc"
)

func newRecommendCommand(ctx *commandContext) *cobra.Command {
	var enrichFlag bool

	cmd := &cobra.Command{
		Use:   "recommend <userId>",
		Short: "Show stored recommendations for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Recommend(args[0], enrichFlag)
				if err != nil {
					return err
				}
				if useJSON(ctx) {
					return writeJSON(cmd, resp)
				}
				if len(resp.Items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "no recommendations stored for this user")
					return nil
				}

				var rows [][]string
				headers := []string{"movie", "tmdb id", "score"}
				if enrichFlag && len(resp.Enriched) > 0 {
					headers = []string{"title", "tmdb id", "score", "poster"}
					rows = make([][]string, 0, len(resp.Enriched))
					for _, item := range resp.Enriched {
						rows = append(rows, []string{
							item.Title,
							formatTMDBID(item.TMDBID),
							enrich.FormatScore(item.Score),
							item.PosterURL,
						})
					}
				} else {
					rows = make([][]string, 0, len(resp.Items))
					for _, item := range resp.Items {
						title := strconv.FormatInt(item.MovieID, 10)
						if item.Title != nil {
							title = *item.Title
						}
						rows = append(rows, []string{
							title,
							formatTMDBID(item.TMDBID),
							enrich.FormatScore(item.Score),
						})
					}
				}

				aligns := make([]columnAlignment, len(headers))
				aligns[2] = alignRight
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))
				if resp.UpdatedAt != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "updated: %s\n", *resp.UpdatedAt)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&enrichFlag, "enrich", false, "Join each item with catalog metadata")
	return cmd
}

func formatTMDBID(id *int64) string {
	if id == nil {
		return "-"
	}
	return strconv.FormatInt(*id, 10)
}
