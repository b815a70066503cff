package flow

// SchemaVersion is written into every encoded snapshot. Blobs without a
// version field are treated as version 0.
const SchemaVersion = 1

// Snapshot is the whole persisted state. It is treated as a value: every
// mutating method returns a new Snapshot and leaves the receiver untouched.
type Snapshot struct {
	Version       int            `json:"version"`
	Buckets       []Bucket       `json:"buckets"`
	Workspaces    []Workspace    `json:"workspaces"`
	Tasks         []Task         `json:"tasks"`
	Sessions      []Session      `json:"sessions"`
	Goals         []Goal         `json:"goals"`
	Milestones    []Milestone    `json:"milestones"`
	Plans         []Plan         `json:"plans"`
	MindDumpItems []MindDumpItem `json:"mindDumpItems"`
}

func (s Snapshot) Bucket(id string) (Bucket, bool) {
	for _, b := range s.Buckets {
		if b.ID == id {
			return b, true
		}
	}
	return Bucket{}, false
}

func (s Snapshot) Task(id string) (Task, bool) {
	for _, t := range s.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}

// WorkspaceFor returns the workspace attached to a bucket.
func (s Snapshot) WorkspaceFor(bucketID string) (Workspace, bool) {
	for _, w := range s.Workspaces {
		if w.BucketID == bucketID {
			return w, true
		}
	}
	return Workspace{}, false
}

func (s Snapshot) Goal(id string) (Goal, bool) {
	for _, g := range s.Goals {
		if g.ID == id {
			return g, true
		}
	}
	return Goal{}, false
}

func (s Snapshot) Milestone(id string) (Milestone, bool) {
	for _, m := range s.Milestones {
		if m.ID == id {
			return m, true
		}
	}
	return Milestone{}, false
}

func (s Snapshot) MindDump(id string) (MindDumpItem, bool) {
	for _, d := range s.MindDumpItems {
		if d.ID == id {
			return d, true
		}
	}
	return MindDumpItem{}, false
}

// Plan returns the plan of the given type for dateKey.
func (s Snapshot) Plan(typ PlanType, dateKey string) (Plan, bool) {
	for _, p := range s.Plans {
		if p.Type == typ && p.DateKey == dateKey {
			return p, true
		}
	}
	return Plan{}, false
}

// TasksIn returns the bucket's tasks in snapshot order.
func (s Snapshot) TasksIn(bucketID string) []Task {
	var out []Task
	for _, t := range s.Tasks {
		if t.BucketID == bucketID {
			out = append(out, t)
		}
	}
	return out
}

func (s Snapshot) BucketsIn(c Category) []Bucket {
	var out []Bucket
	for _, b := range s.Buckets {
		if b.Category == c {
			out = append(out, b)
		}
	}
	return out
}

// BucketName resolves a bucket id for display, falling back to "Unknown".
func (s Snapshot) BucketName(id string) string {
	if b, ok := s.Bucket(id); ok {
		return b.Name
	}
	return "Unknown"
}

func cloneSlice[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}
