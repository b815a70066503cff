package cli

import (
	"fmt"
	"time"

	"github.com/sadopc/contextflow/internal/export"
	"github.com/spf13/cobra"
)

func newExportCmd(e *env) *cobra.Command {
	var format, out string
	var days int
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export sessions (csv, json) or the whole snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := e.open()
			if err != nil {
				return err
			}
			snap, now := tr.Snapshot(), tr.Now()
			if out == "" {
				ext := format
				if format == "snapshot" {
					ext = "json"
				}
				out = fmt.Sprintf("contextflow-%s-%s.%s", format, now.Format("20060102-150405"), ext)
			}

			var from time.Time
			if days > 0 {
				from = now.AddDate(0, 0, -days)
			}
			switch format {
			case "csv":
				err = export.ToCSV(export.Since(snap, from), snap, out)
			case "json":
				err = export.ToJSON(export.Since(snap, from), snap, out)
			case "snapshot":
				err = export.ToSnapshot(snap, out)
			default:
				return fmt.Errorf("unknown format %q (want csv, json or snapshot)", format)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "csv", "csv, json or snapshot")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file")
	cmd.Flags().IntVar(&days, "days", 0, "only sessions from the last N days (csv, json)")
	return cmd
}

func newImportCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace all data with a snapshot export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := export.ReadSnapshot(args[0])
			if err != nil {
				return err
			}
			tr, err := e.open()
			if err != nil {
				return err
			}
			if err := tr.Replace(snap); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d buckets, %d tasks, %d sessions\n",
				len(snap.Buckets), len(snap.Tasks), len(snap.Sessions))
			return nil
		},
	}
}
