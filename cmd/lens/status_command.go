package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"lens/internal/api"
	"lens/internal/blob"
)

const statusTimeLayout = "2006-01-02 15:04:05"

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon health and registered blobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}

			health, err := client.Health(cmd.Context())
			if err != nil {
				return err
			}
			blobs, err := client.List(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, struct {
					Health api.HealthResponse `json:"health"`
					Blobs  []api.BlobSummary  `json:"blobs"`
				}{Health: health, Blobs: blobs})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Service status: %s\n", colorizeStatus(out, health.Status))
			if countRows := statusCountRows(health); len(countRows) > 0 {
				fmt.Fprintln(out, renderTable(
					[]string{"STATUS", "COUNT"},
					countRows,
					[]columnAlignment{alignLeft, alignRight},
				))
			}
			if len(blobs) == 0 {
				fmt.Fprintln(out, "No blobs registered")
				return nil
			}
			fmt.Fprintln(out, renderTable(
				[]string{"BLOB ID", "STATUS", "CREATED", "UPDATED"},
				blobRows(blobs),
				nil,
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit status as JSON")
	return cmd
}

// statusCountRows orders the health counts canonically and drops empty
// buckets so the table only shows statuses that occur.
func statusCountRows(health api.HealthResponse) [][]string {
	rows := make([][]string, 0, len(health.Counts))
	for _, status := range blob.AllStatuses() {
		count, ok := health.Counts[status]
		if !ok || count == 0 {
			continue
		}
		rows = append(rows, []string{string(status), strconv.Itoa(count)})
	}
	return rows
}

func blobRows(blobs []api.BlobSummary) [][]string {
	rows := make([][]string, 0, len(blobs))
	for _, summary := range blobs {
		rows = append(rows, []string{
			summary.BlobID,
			string(summary.Status),
			summary.CreatedAt.UTC().Format(statusTimeLayout),
			summary.UpdatedAt.UTC().Format(statusTimeLayout),
		})
	}
	return rows
}
