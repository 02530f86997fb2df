package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"marquee/internal/ipc"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				status, err := client.Status()
				if err != nil {
					return err
				}
				if useJSON(ctx) {
					return writeJSON(cmd, status)
				}
				rows := [][]string{
					{"running", yesNo(status.Running)},
					{"pid", fmt.Sprintf("%d", status.PID)},
					{"bind", status.Bind},
					{"store backend", status.StoreBackend},
					{"catalog ready", yesNo(status.CatalogReady)},
					{"lock file", status.LockFilePath},
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"field", "value"}, rows, nil))
				return nil
			})
		},
	}
}

func newStopCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Stop()
				if err != nil {
					return err
				}
				if useJSON(ctx) {
					return writeJSON(cmd, resp)
				}
				if resp.Stopped {
					fmt.Fprintln(cmd.OutOrStdout(), "daemon stopped")
				}
				return nil
			})
		},
	}
}
