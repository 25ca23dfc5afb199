package main

import (
	"github.com/spf13/cobra"
)

func newResultCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "result BLOB_ID",
		Short: "Fetch the recognized labels for a blob",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			res, err := client.Result(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd, res)
		},
	}
}
