package flow

import (
	"fmt"
	"time"
)

var seedBuckets = []Bucket{
	{ID: "b1", Name: "Academic", Category: MainWork, Color: "blue", Icon: "book"},
	{ID: "b2", Name: "Skill Learning", Category: MainWork, Color: "indigo", Icon: "code"},
	{ID: "b3", Name: "Earning Money", Category: MainWork, Color: "emerald", Icon: "dollar-sign"},

	{ID: "b4", Name: "Time Mgmt & Planning", Category: SupportingHabits, Color: "slate", Icon: "calendar"},
	{ID: "b5", Name: "Crisis Planning", Category: SupportingHabits, Color: "orange", Icon: "alert-triangle"},

	{ID: "b6", Name: "Mental & Emotional", Category: SelfCare, Color: "purple", Icon: "heart"},
	{ID: "b7", Name: "Personal Growth", Category: SelfCare, Color: "teal", Icon: "sprout"},
	{ID: "b8", Name: "Fun & Relaxation", Category: SelfCare, Color: "pink", Icon: "smile"},
	{ID: "b9", Name: "Social Life", Category: SelfCare, Color: "rose", Icon: "users"},
}

// DefaultChecklist is the startup checklist every seeded workspace gets.
var DefaultChecklist = []string{"Clear desk", "Open necessary apps", "Check notifications (2m limit)"}

// Seed returns the built-in starting snapshot used when nothing has been
// stored yet.
func Seed(now time.Time) Snapshot {
	stamp := At(now)
	s := Snapshot{
		Version: SchemaVersion,
		Buckets: cloneSlice(seedBuckets),
		Goals: []Goal{
			{ID: "g1", Title: "Master React Ecosystem", Description: "Become a senior frontend engineer"},
		},
		Milestones: []Milestone{
			{ID: "m1", GoalID: "g1", Title: "Understand Advanced Hooks"},
			{ID: "m2", GoalID: "g1", Title: "Build a complex Fullstack App"},
		},
		Tasks: []Task{
			{
				ID:             "t1",
				BucketID:       "b2",
				Title:          "Learn React Hooks",
				State:          StateReady,
				NextAction:     "Read official docs on useReducer",
				DoneDefinition: "Create a counter app using useReducer",
				MilestoneID:    "m1",
				CreatedAt:      stamp,
				UpdatedAt:      stamp,
			},
		},
		Sessions:      []Session{},
		Plans:         []Plan{},
		MindDumpItems: []MindDumpItem{},
	}
	for _, b := range s.Buckets {
		s.Workspaces = append(s.Workspaces, Workspace{
			ID:               "ws-" + b.ID,
			BucketID:         b.ID,
			Title:            fmt.Sprintf("%s Workspace", b.Name),
			Links:            []WorkspaceLink{},
			StartupChecklist: cloneSlice(DefaultChecklist),
		})
	}
	return s
}
