package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRegisterCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "register CALLBACK_URL",
		Short: "Register a blob for recognition and obtain an upload target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			reg, err := client.Register(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, reg)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Registered blob %s\n", reg.BlobID)
			fmt.Fprintf(out, "  Upload URL:   %s\n", reg.UploadURL)
			fmt.Fprintf(out, "  Callback URL: %s\n", reg.CallbackURL)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the registration as JSON")
	return cmd
}
