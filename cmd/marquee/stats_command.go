package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"marquee/internal/ipc"
	"marquee/internal/stats"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show store table counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				snapshot, err := client.Stats()
				if err != nil {
					return err
				}
				if useJSON(ctx) {
					return writeJSON(cmd, snapshot)
				}
				if !snapshot.OK {
					return errors.New(snapshot.Error)
				}
				rows := make([][]string, 0, len(snapshot.Tables))
				for _, table := range stats.Tables() {
					rows = append(rows, []string{table, strconv.FormatInt(snapshot.Tables[table], 10)})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"table", "rows"}, rows,
					[]columnAlignment{alignLeft, alignRight}))
				if snapshot.Meta != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "server time: %s\n", snapshot.Meta.ServerTime)
				}
				return nil
			})
		},
	}
}
