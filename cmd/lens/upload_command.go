package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lens/internal/config"
)

func newUploadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "upload BLOB_ID FILE",
		Short: "Upload blob content and start recognition",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			blobID := args[0]
			path, err := config.ExpandPath(args[1])
			if err != nil {
				return fmt.Errorf("resolve content path: %w", err)
			}

			file, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open content file: %w", err)
			}
			defer file.Close()
			info, err := file.Stat()
			if err != nil {
				return fmt.Errorf("stat content file: %w", err)
			}

			client, err := ctx.client()
			if err != nil {
				return err
			}
			if err := client.Upload(cmd.Context(), blobID, file); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %d bytes for blob %s; recognition started\n",
				info.Size(), blobID)
			return nil
		},
	}
}
