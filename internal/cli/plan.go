package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/sadopc/contextflow/internal/flow"
	"github.com/spf13/cobra"
)

func newPlanCmd(e *env) *cobra.Command {
	plan := &cobra.Command{
		Use:   "plan",
		Short: "Plan tomorrow or the week",
	}

	var date, anchor, anchorTask, recovery string
	var sprints []string
	nightly := &cobra.Command{
		Use:   "nightly",
		Short: "Set tomorrow's anchor, sprints and recovery",
		Long: `Set the nightly plan for --date (default tomorrow). Flags that are not
given keep the values already planned for that day.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := e.open()
			if err != nil {
				return err
			}
			snap := tr.Snapshot()
			key := date
			if key == "" {
				key = flow.NightlyKey(tr.Now().AddDate(0, 0, 1))
			} else if _, err := time.Parse("2006-01-02", key); err != nil {
				return fmt.Errorf("%w: date must be YYYY-MM-DD", flow.ErrInvalid)
			}

			p, _ := snap.Plan(flow.PlanNightly, key)
			p.Type, p.DateKey = flow.PlanNightly, key
			if cmd.Flags().Changed("anchor") {
				if p.AnchorBucketID, err = bucketID(snap, anchor); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("task") {
				p.AnchorTaskID = ""
				if anchorTask != "" {
					t, ok := snap.Task(anchorTask)
					if !ok {
						return fmt.Errorf("task %q: %w", anchorTask, flow.ErrNotFound)
					}
					p.AnchorTaskID = t.ID
					if p.AnchorBucketID == "" {
						p.AnchorBucketID = t.BucketID
					}
				}
			}
			if cmd.Flags().Changed("sprint") {
				if len(sprints) > flow.MaxSprintBuckets {
					return fmt.Errorf("%w: at most %d sprint buckets", flow.ErrInvalid, flow.MaxSprintBuckets)
				}
				p.SprintBucketIDs = nil
				for _, s := range sprints {
					id, err := bucketID(snap, s)
					if err != nil {
						return err
					}
					p.SprintBucketIDs = append(p.SprintBucketIDs, id)
				}
			}
			if cmd.Flags().Changed("recovery") {
				if p.RecoveryBucketID, err = bucketID(snap, recovery); err != nil {
					return err
				}
			}

			saved, err := tr.SavePlan(p)
			if err != nil {
				return err
			}
			printPlan(cmd, tr.Snapshot(), saved)
			return nil
		},
	}
	nightly.Flags().StringVar(&date, "date", "", "plan date YYYY-MM-DD (default tomorrow)")
	nightly.Flags().StringVar(&anchor, "anchor", "", "anchor bucket (ID or name)")
	nightly.Flags().StringVar(&anchorTask, "task", "", "anchor task ID")
	nightly.Flags().StringArrayVar(&sprints, "sprint", nil, "sprint bucket, repeat up to twice")
	nightly.Flags().StringVar(&recovery, "recovery", "", "recovery bucket (ID or name)")

	var week string
	var outcomes []string
	weekly := &cobra.Command{
		Use:   "weekly",
		Short: "Set up to three outcomes for the week",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := e.open()
			if err != nil {
				return err
			}
			if len(outcomes) > flow.MaxOutcomes {
				return fmt.Errorf("%w: at most %d outcomes", flow.ErrInvalid, flow.MaxOutcomes)
			}
			key := week
			if key == "" {
				key = flow.WeeklyKey(tr.Now())
			}
			p, _ := tr.Snapshot().Plan(flow.PlanWeekly, key)
			p.Type, p.DateKey = flow.PlanWeekly, key
			if cmd.Flags().Changed("outcome") {
				p.Outcomes = nil
				for _, o := range outcomes {
					if o = strings.TrimSpace(o); o != "" {
						p.Outcomes = append(p.Outcomes, o)
					}
				}
			}
			saved, err := tr.SavePlan(p)
			if err != nil {
				return err
			}
			printPlan(cmd, tr.Snapshot(), saved)
			return nil
		},
	}
	weekly.Flags().StringVar(&week, "week", "", "week key YYYY-Www (default this week)")
	weekly.Flags().StringArrayVar(&outcomes, "outcome", nil, "an outcome, repeat up to three times")

	show := &cobra.Command{
		Use:   "show",
		Short: "Show today's, tomorrow's and this week's plans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := e.open()
			if err != nil {
				return err
			}
			snap, now := tr.Snapshot(), tr.Now()
			found := false
			for _, k := range []struct {
				typ flow.PlanType
				key string
			}{
				{flow.PlanNightly, flow.NightlyKey(now)},
				{flow.PlanNightly, flow.NightlyKey(now.AddDate(0, 0, 1))},
				{flow.PlanWeekly, flow.WeeklyKey(now)},
			} {
				if p, ok := snap.Plan(k.typ, k.key); ok {
					printPlan(cmd, snap, p)
					found = true
				}
			}
			if !found {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing planned.")
			}
			return nil
		},
	}

	plan.AddCommand(nightly, weekly, show)
	return plan
}

func bucketID(snap flow.Snapshot, arg string) (string, error) {
	if arg == "" {
		return "", nil
	}
	b, err := resolveBucket(snap, arg)
	if err != nil {
		return "", err
	}
	return b.ID, nil
}

func printPlan(cmd *cobra.Command, snap flow.Snapshot, p flow.Plan) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s plan %s\n", p.Type, p.DateKey)
	if p.Type == flow.PlanWeekly {
		for i, o := range p.Outcomes {
			fmt.Fprintf(out, "  %d. %s\n", i+1, o)
		}
		return
	}
	if p.AnchorBucketID != "" {
		line := snap.BucketName(p.AnchorBucketID)
		if t, ok := snap.Task(p.AnchorTaskID); ok {
			line += " / " + t.Title
		}
		fmt.Fprintf(out, "  anchor:   %s\n", line)
	}
	for _, id := range p.SprintBucketIDs {
		fmt.Fprintf(out, "  sprint:   %s\n", snap.BucketName(id))
	}
	if p.RecoveryBucketID != "" {
		fmt.Fprintf(out, "  recovery: %s\n", snap.BucketName(p.RecoveryBucketID))
	}
}
