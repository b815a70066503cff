package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/sadopc/contextflow/internal/flow"
	"github.com/spf13/cobra"
)

func newBucketsCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "buckets",
		Short: "List buckets with RESUME and STALE badges",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := e.open()
			if err != nil {
				return err
			}
			snap, now := tr.Snapshot(), tr.Now()
			badges := flow.Badges(snap, now)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tBUCKET\tCATEGORY\tTASKS\tLAST SESSION\tBADGE")
			for _, c := range flow.Categories {
				for _, b := range snap.BucketsIn(c) {
					last := "never"
					if s, ok := snap.LastSession(b.ID); ok {
						last = formatAge(now, s.StartedAt)
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
						b.ID, b.Name, b.Category, len(snap.TasksIn(b.ID)), last, badges[b.ID])
				}
			}
			return w.Flush()
		},
	}
}
