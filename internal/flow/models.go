package flow

import "time"

// Millis is a wall-clock timestamp in milliseconds since the Unix epoch.
type Millis int64

// At converts t to Millis.
func At(t time.Time) Millis {
	return Millis(t.UnixMilli())
}

func (m Millis) Time() time.Time {
	return time.UnixMilli(int64(m))
}

func (m Millis) IsZero() bool { return m == 0 }

type Category string

const (
	MainWork         Category = "Main Work"
	SupportingHabits Category = "Supporting Habits"
	SelfCare         Category = "Self-Care & Fun"
)

// Categories lists the bucket categories in display order.
var Categories = []Category{MainWork, SupportingHabits, SelfCare}

type TaskState string

const (
	StateInbox  TaskState = "Inbox"
	StateRefine TaskState = "Refine"
	StateReady  TaskState = "Ready"
	StateDoing  TaskState = "Doing"
	StateDone   TaskState = "Done"
	StateParked TaskState = "Parked"
)

var TaskStates = []TaskState{StateInbox, StateRefine, StateReady, StateDoing, StateDone, StateParked}

func (s TaskState) Valid() bool {
	for _, v := range TaskStates {
		if s == v {
			return true
		}
	}
	return false
}

type SessionType string

const (
	SessionAnchor   SessionType = "Anchor"
	SessionSprint   SessionType = "Sprint"
	SessionRecovery SessionType = "Recovery"
)

func (t SessionType) Valid() bool {
	return t == SessionAnchor || t == SessionSprint || t == SessionRecovery
}

type PlanType string

const (
	PlanNightly PlanType = "Nightly"
	PlanWeekly  PlanType = "Weekly"
)

type DumpStatus string

const (
	DumpInbox     DumpStatus = "inbox"
	DumpConverted DumpStatus = "converted"
	DumpArchived  DumpStatus = "archived"
)

// Terminal reports whether no further transitions are allowed.
func (s DumpStatus) Terminal() bool {
	return s == DumpConverted || s == DumpArchived
}

type Bucket struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category Category `json:"category"`
	Color    string   `json:"color"`
	Icon     string   `json:"icon"`
}

type WorkspaceLink struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	URL   string `json:"url"`
}

type Workspace struct {
	ID               string          `json:"id"`
	BucketID         string          `json:"bucketId"`
	Title            string          `json:"title"`
	Links            []WorkspaceLink `json:"links"`
	StartupChecklist []string        `json:"startupChecklist"`
}

type Goal struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type Milestone struct {
	ID          string `json:"id"`
	GoalID      string `json:"goalId"`
	Title       string `json:"title"`
	IsCompleted bool   `json:"isCompleted"`
}

type Task struct {
	ID             string    `json:"id"`
	BucketID       string    `json:"bucketId"`
	Title          string    `json:"title"`
	State          TaskState `json:"state"`
	NextAction     string    `json:"nextAction,omitempty"`
	DoneDefinition string    `json:"doneDefinition,omitempty"`
	Links          []string  `json:"links,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	MilestoneID    string    `json:"milestoneId,omitempty"`
	CreatedAt      Millis    `json:"createdAt"`
	UpdatedAt      Millis    `json:"updatedAt"`
}

type Session struct {
	ID                  string      `json:"id"`
	BucketID            string      `json:"bucketId"`
	TaskID              string      `json:"taskId,omitempty"`
	Type                SessionType `json:"type"`
	PlannedMin          int         `json:"plannedMin"`
	ActualMin           int         `json:"actualMin"`
	EnergyBefore        int         `json:"energyBefore"`
	EnergyAfter         int         `json:"energyAfter,omitempty"`
	CloseoutFinished    string      `json:"closeoutFinished,omitempty"`
	CloseoutNext        string      `json:"closeoutNext,omitempty"`
	CloseoutFirstAction string      `json:"closeoutFirstAction,omitempty"`
	StartedAt           Millis      `json:"startedAt"`
	EndedAt             Millis      `json:"endedAt,omitempty"`
}

type Plan struct {
	ID               string   `json:"id"`
	DateKey          string   `json:"dateKey"`
	Type             PlanType `json:"type"`
	AnchorBucketID   string   `json:"anchorBucketId,omitempty"`
	AnchorTaskID     string   `json:"anchorTaskId,omitempty"`
	SprintBucketIDs  []string `json:"sprintBucketIds,omitempty"`
	RecoveryBucketID string   `json:"recoveryBucketId,omitempty"`
	Outcomes         []string `json:"outcomes,omitempty"`
	CreatedAt        Millis   `json:"createdAt"`
}

type MindDumpItem struct {
	ID              string     `json:"id"`
	Text            string     `json:"text"`
	CreatedAt       Millis     `json:"createdAt"`
	Status          DumpStatus `json:"status"`
	BucketID        string     `json:"bucketId,omitempty"`
	ConvertedTaskID string     `json:"convertedTaskId,omitempty"`
}
