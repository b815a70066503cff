package cli

import (
	"bytes"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sadopc/contextflow/internal/flow"
	"github.com/sadopc/contextflow/internal/store"
)

// newTestDB isolates config lookups and returns a fresh database path.
func newTestDB(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	return filepath.Join(t.TempDir(), "contextflow.db")
}

func runCLI(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()
	e := &env{}
	defer e.close()
	root := newRootCmd(e)
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(append([]string{"--db", dbPath}, args...))
	err := root.Execute()
	return buf.String(), err
}

func mustRun(t *testing.T, dbPath string, args ...string) string {
	t.Helper()
	out, err := runCLI(t, dbPath, args...)
	if err != nil {
		t.Fatalf("%v: %v\n%s", args, err, out)
	}
	return out
}

// secondField returns the ID in lines like "Captured <id>" or "Added <id> to ...".
func secondField(t *testing.T, out string) string {
	t.Helper()
	f := strings.Fields(out)
	if len(f) < 2 {
		t.Fatalf("unexpected output %q", out)
	}
	return f[1]
}

// ============================================================
// Brief
// ============================================================

func TestBriefFromSeed(t *testing.T) {
	db := newTestDB(t)
	out := mustRun(t, db, "brief")
	if !strings.Contains(out, "Skill Learning") || !strings.Contains(out, "Learn React Hooks") {
		t.Fatalf("expected seeded anchor in brief:\n%s", out)
	}
	if !strings.Contains(out, "Master React Ecosystem > Understand Advanced Hooks") {
		t.Fatalf("expected goal context:\n%s", out)
	}
	if !strings.Contains(out, "RECOVERY") {
		t.Fatalf("expected a recovery line:\n%s", out)
	}
}

func TestBriefFollowsTodaysPlan(t *testing.T) {
	db := newTestDB(t)
	today := flow.NightlyKey(time.Now())
	mustRun(t, db, "plan", "nightly", "--date", today, "--anchor", "earning", "--sprint", "b5", "--recovery", "social")
	out := mustRun(t, db, "brief")
	if !strings.Contains(out, "Earning Money") {
		t.Fatalf("expected planned anchor:\n%s", out)
	}
	if !strings.Contains(out, "Crisis Planning") || !strings.Contains(out, "Social Life") {
		t.Fatalf("expected planned sprint and recovery:\n%s", out)
	}
}

func TestRenderBriefEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := renderBrief(&buf, flow.Snapshot{}, time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "Good Evening.") {
		t.Fatalf("expected evening greeting, got %q", out)
	}
	if !strings.Contains(out, "No Main Work bucket") {
		t.Fatalf("expected empty message, got %q", out)
	}
}

// ============================================================
// Mind dump
// ============================================================

func TestCaptureListConvertArchive(t *testing.T) {
	db := newTestDB(t)
	first := secondField(t, mustRun(t, db, "capture", "renew", "passport"))
	second := secondField(t, mustRun(t, db, "capture", "email professor"))

	out := mustRun(t, db, "dump", "list")
	if strings.Index(out, "email professor") > strings.Index(out, "renew passport") {
		t.Fatalf("expected newest first:\n%s", out)
	}

	out = mustRun(t, db, "dump", "convert", second, "academic")
	if !strings.Contains(out, "in Academic") {
		t.Fatalf("unexpected convert output %q", out)
	}
	mustRun(t, db, "dump", "archive", first)

	if _, err := runCLI(t, db, "dump", "archive", second); !errors.Is(err, flow.ErrTerminal) {
		t.Fatalf("expected ErrTerminal, got %v", err)
	}
	if out := mustRun(t, db, "dump", "list"); !strings.Contains(out, "empty") {
		t.Fatalf("expected empty dump:\n%s", out)
	}
	if out := mustRun(t, db, "task", "list", "--bucket", "b1"); !strings.Contains(out, "email professor") {
		t.Fatalf("converted task missing:\n%s", out)
	}
}

func TestCaptureRequiresText(t *testing.T) {
	db := newTestDB(t)
	if _, err := runCLI(t, db, "capture", "   "); !errors.Is(err, flow.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

// ============================================================
// Tasks
// ============================================================

func TestTaskAddAndMove(t *testing.T) {
	db := newTestDB(t)
	out := mustRun(t, db, "task", "add", "b1", "Write", "intro")
	if !strings.Contains(out, "[Inbox]") {
		t.Fatalf("expected Inbox task, got %q", out)
	}
	id := secondField(t, out)

	if _, err := runCLI(t, db, "task", "move", id, "doing"); !errors.Is(err, flow.ErrNotReady) {
		t.Fatalf("expected readiness gate, got %v", err)
	}
	out = mustRun(t, db, "task", "move", id, "parked")
	if !strings.Contains(out, "Parked") {
		t.Fatalf("unexpected move output %q", out)
	}
}

func TestTaskAddReadyNeedsBothFields(t *testing.T) {
	db := newTestDB(t)
	_, err := runCLI(t, db, "task", "add", "b1", "Draft", "--state", "ready", "--next", "open doc")
	if !errors.Is(err, flow.ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
	out := mustRun(t, db, "task", "add", "b1", "Draft", "--state", "ready", "--next", "open doc", "--done", "one page")
	if !strings.Contains(out, "[Ready]") {
		t.Fatalf("expected Ready task, got %q", out)
	}
}

func TestTaskMoveUnknownState(t *testing.T) {
	db := newTestDB(t)
	if _, err := runCLI(t, db, "task", "move", "t1", "Someday"); !errors.Is(err, flow.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

// ============================================================
// Plans and buckets
// ============================================================

func TestPlanNightlyDefaultsToTomorrow(t *testing.T) {
	db := newTestDB(t)
	out := mustRun(t, db, "plan", "nightly", "--anchor", "b1")
	tomorrow := flow.NightlyKey(time.Now().AddDate(0, 0, 1))
	if !strings.Contains(out, tomorrow) {
		t.Fatalf("expected plan for %s:\n%s", tomorrow, out)
	}

	// later flags keep earlier fields
	out = mustRun(t, db, "plan", "nightly", "--recovery", "b8")
	if !strings.Contains(out, "Academic") || !strings.Contains(out, "Fun & Relaxation") {
		t.Fatalf("expected merged plan:\n%s", out)
	}
}

func TestPlanNightlyTooManySprints(t *testing.T) {
	db := newTestDB(t)
	_, err := runCLI(t, db, "plan", "nightly", "--sprint", "b4", "--sprint", "b5", "--sprint", "b1")
	if !errors.Is(err, flow.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestPlanWeeklyOutcomes(t *testing.T) {
	db := newTestDB(t)
	out := mustRun(t, db, "plan", "weekly", "--outcome", "ship draft", "--outcome", "gym x3")
	if !strings.Contains(out, "1. ship draft") || !strings.Contains(out, "2. gym x3") {
		t.Fatalf("unexpected weekly plan:\n%s", out)
	}
	_, err := runCLI(t, db, "plan", "weekly", "--outcome", "a", "--outcome", "b", "--outcome", "c", "--outcome", "d")
	if !errors.Is(err, flow.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	if out := mustRun(t, db, "plan", "show"); !strings.Contains(out, "Weekly plan") {
		t.Fatalf("expected weekly plan in show:\n%s", out)
	}
}

func TestPlanWeeklyWithoutOutcomesKeepsThem(t *testing.T) {
	db := newTestDB(t)
	week := flow.WeeklyKey(time.Now())
	mustRun(t, db, "plan", "weekly", "--week", week, "--outcome", "ship draft")
	out := mustRun(t, db, "plan", "weekly", "--week", week)
	if !strings.Contains(out, "1. ship draft") {
		t.Fatalf("outcomes dropped without --outcome:\n%s", out)
	}
}

func TestBucketsListsBadges(t *testing.T) {
	db := newTestDB(t)
	out := mustRun(t, db, "buckets")
	for _, want := range []string{"Academic", "Social Life", "STALE", "never"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
}

func TestResolveBucket(t *testing.T) {
	snap := flow.Seed(time.Now())
	tests := []struct {
		arg     string
		want    string
		wantErr bool
	}{
		{"b3", "b3", false},
		{"social", "b9", false},
		{"Skill", "b2", false},
		{"s", "", true},
		{"nothing", "", true},
	}
	for _, tt := range tests {
		b, err := resolveBucket(snap, tt.arg)
		if tt.wantErr {
			if err == nil {
				t.Errorf("resolveBucket(%q): expected error", tt.arg)
			}
			continue
		}
		if err != nil || b.ID != tt.want {
			t.Errorf("resolveBucket(%q) = %q, %v; want %q", tt.arg, b.ID, err, tt.want)
		}
	}
}

// ============================================================
// Export / import
// ============================================================

func TestExportSnapshotAndImport(t *testing.T) {
	db := newTestDB(t)
	mustRun(t, db, "task", "add", "b3", "Send", "invoice")
	path := filepath.Join(t.TempDir(), "backup.json")
	mustRun(t, db, "export", "--format", "snapshot", "--out", path)

	other := filepath.Join(t.TempDir(), "other.db")
	out := mustRun(t, other, "import", path)
	if !strings.Contains(out, "9 buckets, 2 tasks") {
		t.Fatalf("unexpected import summary %q", out)
	}
	if out := mustRun(t, other, "task", "list"); !strings.Contains(out, "Send invoice") {
		t.Fatalf("imported task missing:\n%s", out)
	}
}

// writeSlot stores a raw payload in the default snapshot slot.
func writeSlot(t *testing.T, dbPath, payload string) {
	t.Helper()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	_, err = db.Exec(
		`INSERT INTO snapshots (slot, payload) VALUES (?, ?)
		 ON CONFLICT(slot) DO UPDATE SET payload = excluded.payload`,
		store.DefaultSlot, payload,
	)
	if err != nil {
		t.Fatal(err)
	}
}

func readSlot(t *testing.T, dbPath string) string {
	t.Helper()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	var payload string
	if err := db.QueryRow(`SELECT payload FROM snapshots WHERE slot = ?`, store.DefaultSlot).Scan(&payload); err != nil {
		t.Fatal(err)
	}
	return payload
}

func TestNewerSnapshotIsNotOverwritten(t *testing.T) {
	db := newTestDB(t)
	mustRun(t, db, "brief")
	newer := `{"version":2,"buckets":[{"id":"bx","name":"Precious","category":"Main Work"}]}`
	writeSlot(t, db, newer)

	_, err := runCLI(t, db, "capture", "hello")
	if !errors.Is(err, flow.ErrNewerSchema) {
		t.Fatalf("expected ErrNewerSchema, got %v", err)
	}
	if got := readSlot(t, db); got != newer {
		t.Fatalf("newer snapshot was replaced: %s", got)
	}
}

func TestCorruptSnapshotStartsFromSeed(t *testing.T) {
	db := newTestDB(t)
	mustRun(t, db, "brief")
	writeSlot(t, db, "null")

	mustRun(t, db, "capture", "hello")
	if got := readSlot(t, db); !strings.Contains(got, "Academic") || !strings.Contains(got, "hello") {
		t.Fatalf("expected seed plus capture, got %s", got)
	}
}

func TestExportCSV(t *testing.T) {
	db := newTestDB(t)
	path := filepath.Join(t.TempDir(), "sessions.csv")
	mustRun(t, db, "export", "--format", "csv", "-o", path)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "ID,Bucket,Task,Type") {
		t.Fatalf("unexpected csv header: %q", data)
	}
}

func TestExportUnknownFormat(t *testing.T) {
	db := newTestDB(t)
	if _, err := runCLI(t, db, "export", "--format", "xml", "-o", filepath.Join(t.TempDir(), "x")); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

// ============================================================
// Config
// ============================================================

func TestConfigInitAndPath(t *testing.T) {
	db := newTestDB(t)
	out := mustRun(t, db, "config", "init")
	if !strings.HasPrefix(out, "Wrote ") {
		t.Fatalf("unexpected init output %q", out)
	}
	if out := mustRun(t, db, "config", "init"); !strings.Contains(out, "already exists") {
		t.Fatalf("second init should not overwrite: %q", out)
	}
	out = mustRun(t, db, "config", "path")
	if !strings.Contains(out, "database: "+db) {
		t.Fatalf("--db should show in path output:\n%s", out)
	}
}

// ============================================================
// Helpers
// ============================================================

func TestParseState(t *testing.T) {
	if st, err := parseState("doing"); err != nil || st != flow.StateDoing {
		t.Fatalf("parseState(doing) = %q, %v", st, err)
	}
	if st, err := parseState(""); err != nil || st != flow.StateInbox {
		t.Fatalf("empty should be Inbox, got %q, %v", st, err)
	}
	if _, err := parseState("later"); !errors.Is(err, flow.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestFormatAge(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		duration time.Duration
		want     string
	}{
		{"just now for less than a minute", 30 * time.Second, "just now"},
		{"just now for 0 seconds", 0, "just now"},
		{"5 minutes ago", 5 * time.Minute, "5m ago"},
		{"1 hour ago", time.Hour, "1h ago"},
		{"23 hours ago", 23 * time.Hour, "23h ago"},
		{"1 day ago", 24 * time.Hour, "1d ago"},
		{"10 days ago", 240 * time.Hour, "10d ago"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatAge(now, flow.At(now.Add(-tt.duration))); got != tt.want {
				t.Errorf("formatAge() = %q, want %q", got, tt.want)
			}
		})
	}
}
