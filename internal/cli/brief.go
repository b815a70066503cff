package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/sadopc/contextflow/internal/flow"
	"github.com/spf13/cobra"
)

func newBriefCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "brief",
		Short: "Show today's anchor, sprint and recovery",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := e.open()
			if err != nil {
				return err
			}
			return renderBrief(cmd.OutOrStdout(), tr.Snapshot(), tr.Now())
		},
	}
}

func renderBrief(out io.Writer, snap flow.Snapshot, now time.Time) error {
	f := flow.SelectFocus(snap, now)
	fmt.Fprintln(out, flow.Greeting(now))
	fmt.Fprintln(out)

	if f.Empty() {
		fmt.Fprintln(out, "No Main Work bucket to anchor on. Add one, or plan tonight.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ANCHOR\t%s\n", f.Anchor.Name)
	if t := f.AnchorTask; t != nil {
		fmt.Fprintf(w, "  task\t%s [%s]\n", t.Title, t.State)
		if t.NextAction != "" {
			fmt.Fprintf(w, "  next\t%s\n", t.NextAction)
		}
		if t.DoneDefinition != "" {
			fmt.Fprintf(w, "  done\t%s\n", t.DoneDefinition)
		}
	} else {
		fmt.Fprintf(w, "  task\tnone ready, refine something first\n")
	}
	if f.Goal != nil && f.Milestone != nil {
		fmt.Fprintf(w, "  goal\t%s > %s\n", f.Goal.Title, f.Milestone.Title)
	}
	if f.AnchorStale {
		fmt.Fprintf(w, "  stale\tlast touched %s; shrink the next action\n", formatAge(now, f.AnchorTask.UpdatedAt))
	} else if f.AnchorLast != nil && f.AnchorLast.CloseoutFirstAction != "" {
		fmt.Fprintf(w, "  resume\t%s (%s)\n", f.AnchorLast.CloseoutFirstAction, formatAge(now, f.AnchorLast.StartedAt))
	}

	if f.Sprint != nil {
		note := ""
		if f.SprintNeglected {
			note = " (neglected)"
		}
		fmt.Fprintf(w, "SPRINT\t%s%s\n", f.Sprint.Name, note)
	}
	if f.Recovery != nil {
		fmt.Fprintf(w, "RECOVERY\t%s\n", f.Recovery.Name)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if loops := flow.OpenLoops(snap, now, 3); len(loops) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Open loops:")
		for _, t := range loops {
			fmt.Fprintf(out, "  - %s (%s, %s)\n", t.Title, snap.BucketName(t.BucketID), t.State)
		}
	}
	if n := len(snap.InboxItems()); n > 0 {
		fmt.Fprintf(out, "\n%d item(s) in the mind dump.\n", n)
	}
	return nil
}

func newStandupCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "standup",
		Short: "Show yesterday, today and tomorrow per bucket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := e.open()
			if err != nil {
				return err
			}
			return renderStandup(cmd.OutOrStdout(), tr.Snapshot(), tr.Now())
		},
	}
}

func renderStandup(out io.Writer, snap flow.Snapshot, now time.Time) error {
	rows := flow.Standup(snap, now)
	if len(rows) == 0 {
		fmt.Fprintln(out, "Nothing in motion.")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BUCKET\tYESTERDAY\tTODAY\tTOMORROW")
	for _, r := range rows {
		yesterday := "-"
		if r.Yesterday != nil {
			yesterday = fmt.Sprintf("%d session(s)", r.YesterdayRuns)
			if r.Yesterday.CloseoutFinished != "" {
				yesterday += ": " + r.Yesterday.CloseoutFinished
			}
		}
		today := "-"
		switch {
		case r.Active != nil && r.ActiveStale:
			today = r.Active.Title + " (stale)"
		case r.Active != nil:
			today = r.Active.Title
		case len(r.Ready) > 0:
			today = fmt.Sprintf("%d ready", len(r.Ready))
		}
		tomorrow := "-"
		if r.TomorrowRole != flow.RoleNone {
			tomorrow = string(r.TomorrowRole)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Bucket.Name, yesterday, today, tomorrow)
	}
	return w.Flush()
}

// formatAge returns a human-readable relative time string.
func formatAge(now time.Time, m flow.Millis) string {
	duration := now.Sub(m.Time())

	if duration < time.Minute {
		return "just now"
	}

	minutes := int(duration.Minutes())
	if minutes < 60 {
		return fmt.Sprintf("%dm ago", minutes)
	}

	hours := int(duration.Hours())
	if hours < 24 {
		return fmt.Sprintf("%dh ago", hours)
	}

	days := hours / 24
	return fmt.Sprintf("%dd ago", days)
}
