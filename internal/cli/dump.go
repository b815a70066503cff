package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newCaptureCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "capture <text...>",
		Short: "Drop a thought into the mind dump",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := e.open()
			if err != nil {
				return err
			}
			item, err := tr.Capture(strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Captured %s\n", item.ID)
			return nil
		},
	}
}

func newDumpCmd(e *env) *cobra.Command {
	dump := &cobra.Command{
		Use:   "dump",
		Short: "Review the mind dump",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List open mind dump items, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := e.open()
			if err != nil {
				return err
			}
			items := tr.Snapshot().InboxItems()
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Mind dump is empty.")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCAPTURED\tTEXT")
			for _, d := range items {
				fmt.Fprintf(w, "%s\t%s\t%s\n", d.ID, formatAge(tr.Now(), d.CreatedAt), d.Text)
			}
			return w.Flush()
		},
	}

	convert := &cobra.Command{
		Use:   "convert <id> <bucket>",
		Short: "Turn an item into an Inbox task in a bucket",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := e.open()
			if err != nil {
				return err
			}
			b, err := resolveBucket(tr.Snapshot(), args[1])
			if err != nil {
				return err
			}
			task, err := tr.ConvertMindDump(args[0], b.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created task %s in %s\n", task.ID, b.Name)
			return nil
		},
	}

	archive := &cobra.Command{
		Use:   "archive <id>",
		Short: "Archive an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := e.open()
			if err != nil {
				return err
			}
			if err := tr.ArchiveMindDump(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Archived %s\n", args[0])
			return nil
		},
	}

	dump.AddCommand(list, convert, archive)
	return dump
}
