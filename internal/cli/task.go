package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/sadopc/contextflow/internal/flow"
	"github.com/spf13/cobra"
)

func newTaskCmd(e *env) *cobra.Command {
	task := &cobra.Command{
		Use:   "task",
		Short: "List, add and move tasks",
	}

	var bucketFilter string
	list := &cobra.Command{
		Use:   "list",
		Short: "List tasks, grouped by bucket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := e.open()
			if err != nil {
				return err
			}
			snap := tr.Snapshot()
			buckets := snap.Buckets
			if bucketFilter != "" {
				b, err := resolveBucket(snap, bucketFilter)
				if err != nil {
					return err
				}
				buckets = []flow.Bucket{b}
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tBUCKET\tSTATE\tTITLE\tNEXT ACTION")
			for _, b := range buckets {
				for _, t := range snap.TasksIn(b.ID) {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", t.ID, b.Name, t.State, t.Title, t.NextAction)
				}
			}
			return w.Flush()
		},
	}
	list.Flags().StringVar(&bucketFilter, "bucket", "", "only this bucket (ID or name)")

	var next, done, state, notes string
	add := &cobra.Command{
		Use:   "add <bucket> <title...>",
		Short: "Add a task",
		Long: `Add a task to a bucket. Tasks start in Inbox. Ready and Doing
require both --next and --done.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := e.open()
			if err != nil {
				return err
			}
			b, err := resolveBucket(tr.Snapshot(), args[0])
			if err != nil {
				return err
			}
			st, err := parseState(state)
			if err != nil {
				return err
			}
			t, err := tr.SaveTask(flow.Task{
				BucketID:       b.ID,
				Title:          strings.Join(args[1:], " "),
				State:          st,
				NextAction:     next,
				DoneDefinition: done,
				Notes:          notes,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s to %s [%s]\n", t.ID, b.Name, t.State)
			return nil
		},
	}
	add.Flags().StringVar(&next, "next", "", "next physical action")
	add.Flags().StringVar(&done, "done", "", "definition of done")
	add.Flags().StringVar(&state, "state", "", "initial state (default Inbox)")
	add.Flags().StringVar(&notes, "notes", "", "free-form notes")

	move := &cobra.Command{
		Use:   "move <id> <state>",
		Short: "Move a task to another state",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := e.open()
			if err != nil {
				return err
			}
			st, err := parseState(args[1])
			if err != nil {
				return err
			}
			t, err := tr.MoveTask(args[0], st)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", t.Title, t.State)
			return nil
		},
	}

	task.AddCommand(list, add, move)
	return task
}

// parseState matches a task state case-insensitively. Empty means Inbox.
func parseState(s string) (flow.TaskState, error) {
	if s == "" {
		return flow.StateInbox, nil
	}
	for _, st := range flow.TaskStates {
		if strings.EqualFold(string(st), s) {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: unknown task state %q", flow.ErrInvalid, s)
}
