package flow

import "time"

// RefineStaleAfter is how long a task may sit in Refine before it shows up
// as an open loop.
const RefineStaleAfter = 7 * 24 * time.Hour

// Greeting picks a salutation for the hour of now.
func Greeting(now time.Time) string {
	switch h := now.Hour(); {
	case h < 12:
		return "Good Morning."
	case h < 17:
		return "Good Afternoon."
	default:
		return "Good Evening."
	}
}

// DayRecap summarises one calendar day.
type DayRecap struct {
	Sessions  []Session
	TotalMin  int
	LastEnded *Session
	Completed []Task
}

// Recap collects the sessions started on day, their total minutes, the
// session that ended last (for its closeout note) and tasks finished that
// day.
func Recap(s Snapshot, day time.Time) DayRecap {
	var r DayRecap
	r.Sessions = s.SessionsOn(day)
	for i, sess := range r.Sessions {
		r.TotalMin += sess.ActualMin
		if r.LastEnded == nil || sess.EndedAt > r.LastEnded.EndedAt {
			r.LastEnded = &r.Sessions[i]
		}
	}
	for _, t := range s.Tasks {
		if t.State == StateDone && SameDay(t.UpdatedAt, day) {
			r.Completed = append(r.Completed, t)
		}
	}
	return r
}

// PlanRole is a bucket's role in a nightly plan.
type PlanRole string

const (
	RoleNone     PlanRole = ""
	RoleAnchor   PlanRole = "anchor"
	RoleSprint   PlanRole = "sprint"
	RoleRecovery PlanRole = "recovery"
)

// RoleIn returns the role bucketID plays in p.
func RoleIn(p *Plan, bucketID string) PlanRole {
	if p == nil {
		return RoleNone
	}
	if p.AnchorBucketID == bucketID {
		return RoleAnchor
	}
	for _, id := range p.SprintBucketIDs {
		if id == bucketID {
			return RoleSprint
		}
	}
	if p.RecoveryBucketID == bucketID {
		return RoleRecovery
	}
	return RoleNone
}

// StandupRow is one bucket's line in the standup: yesterday, today,
// tomorrow.
type StandupRow struct {
	Bucket        Bucket
	Yesterday     *Session
	Active        *Task
	ActiveStale   bool
	Ready         []Task
	TomorrowRole  PlanRole
	YesterdayRuns int
}

// Standup lists buckets with any activity: a session yesterday, a Doing or
// Ready task, or a role in tomorrow's plan.
func Standup(s Snapshot, now time.Time) []StandupRow {
	yesterday := now.AddDate(0, 0, -1)
	var tomorrow *Plan
	if p, ok := s.Plan(PlanNightly, NightlyKey(now.AddDate(0, 0, 1))); ok {
		tomorrow = &p
	}

	var rows []StandupRow
	for _, b := range s.Buckets {
		row := StandupRow{Bucket: b, TomorrowRole: RoleIn(tomorrow, b.ID)}
		for _, sess := range s.Sessions {
			if sess.BucketID != b.ID || !SameDay(sess.StartedAt, yesterday) {
				continue
			}
			row.YesterdayRuns++
			if row.Yesterday == nil || sess.EndedAt > row.Yesterday.EndedAt {
				sess := sess
				row.Yesterday = &sess
			}
		}
		for _, t := range s.Tasks {
			if t.BucketID != b.ID {
				continue
			}
			switch t.State {
			case StateDoing:
				if row.Active == nil {
					t := t
					row.Active = &t
					row.ActiveStale = now.Sub(t.UpdatedAt.Time()) > StaleAfter
				}
			case StateReady:
				row.Ready = append(row.Ready, t)
			}
		}
		if row.YesterdayRuns > 0 || row.Active != nil || len(row.Ready) > 0 ||
			row.TomorrowRole == RoleAnchor || row.TomorrowRole == RoleSprint {
			rows = append(rows, row)
		}
	}
	return rows
}

// OpenLoops returns up to limit tasks that look forgotten: anything in
// Doing, or in Refine for longer than RefineStaleAfter.
func OpenLoops(s Snapshot, now time.Time, limit int) []Task {
	var out []Task
	for _, t := range s.Tasks {
		if limit > 0 && len(out) >= limit {
			break
		}
		switch {
		case t.State == StateDoing:
			out = append(out, t)
		case t.State == StateRefine && now.Sub(t.UpdatedAt.Time()) > RefineStaleAfter:
			out = append(out, t)
		}
	}
	return out
}

// BucketMinutes is the focus time logged in one bucket on one day.
type BucketMinutes struct {
	Date     string
	BucketID string
	Name     string
	Color    string
	Minutes  int
	Sessions int
}

// DailyMinutes aggregates session minutes per day and bucket for sessions
// started in [from, to). Rows are ordered by date, then bucket order.
func DailyMinutes(s Snapshot, from, to time.Time) []BucketMinutes {
	type key struct{ date, bucket string }
	totals := make(map[key]*BucketMinutes)
	for _, sess := range s.Sessions {
		t := sess.StartedAt.Time().In(from.Location())
		if t.Before(from) || !t.Before(to) {
			continue
		}
		k := key{t.Format("2006-01-02"), sess.BucketID}
		row, ok := totals[k]
		if !ok {
			row = &BucketMinutes{Date: k.date, BucketID: sess.BucketID, Name: s.BucketName(sess.BucketID)}
			if b, ok := s.Bucket(sess.BucketID); ok {
				row.Color = b.Color
			}
			totals[k] = row
		}
		row.Minutes += sess.ActualMin
		row.Sessions++
	}

	var out []BucketMinutes
	for d := StartOfDay(from); d.Before(to); d = d.AddDate(0, 0, 1) {
		date := d.Format("2006-01-02")
		seen := make(map[string]bool)
		for _, b := range s.Buckets {
			seen[b.ID] = true
			if row, ok := totals[key{date, b.ID}]; ok {
				out = append(out, *row)
			}
		}
		// sessions whose bucket no longer exists
		var orphans []BucketMinutes
		for k, row := range totals {
			if k.date == date && !seen[k.bucket] {
				orphans = append(orphans, *row)
			}
		}
		sortStable(orphans, func(a, b BucketMinutes) bool { return a.BucketID < b.BucketID })
		out = append(out, orphans...)
	}
	return out
}
