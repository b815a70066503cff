package store

import (
	"errors"
	"testing"
	"time"

	"github.com/sadopc/contextflow/internal/flow"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != currentVersion {
		t.Fatalf("expected user_version %d, got %d", currentVersion, version)
	}
	if s.Slot() != DefaultSlot {
		t.Fatalf("expected slot %q, got %q", DefaultSlot, s.Slot())
	}
}

func TestNewWithPath(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/sub/contextflow.db"
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	s.Close()

	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	s2.Close()
}

func TestDefaultDBPath(t *testing.T) {
	path, err := DefaultDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if path == "" {
		t.Fatal("empty path")
	}
}

func TestPragmasConfigured(t *testing.T) {
	s := newTestStore(t)
	var fk int
	s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk)
	if fk != 1 {
		t.Fatalf("expected foreign_keys=1, got %d", fk)
	}
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

// ============================================================
// Snapshots
// ============================================================

func TestLoadEmptySlotReturnsSeed(t *testing.T) {
	s := newTestStore(t)
	snap, err := s.Load()
	if err != nil {
		t.Fatalf("load empty slot: %v", err)
	}
	if len(snap.Buckets) != 9 {
		t.Fatalf("expected 9 seed buckets, got %d", len(snap.Buckets))
	}
	if _, ok, _ := s.SavedAt(); ok {
		t.Fatal("empty slot should have no saved_at")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	snap := flow.Seed(now)
	snap, item, err := snap.Capture("call the bank", now)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Save(snap); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.MindDumpItems) != 1 || got.MindDumpItems[0].ID != item.ID {
		t.Fatalf("mind dump not persisted: %+v", got.MindDumpItems)
	}
	if len(got.Tasks) != len(snap.Tasks) {
		t.Fatalf("expected %d tasks, got %d", len(snap.Tasks), len(got.Tasks))
	}
	if _, ok, err := s.SavedAt(); err != nil || !ok {
		t.Fatalf("expected saved_at after save, ok=%v err=%v", ok, err)
	}
}

func TestSaveOverwritesSlot(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()
	first := flow.Seed(now)
	if err := s.Save(first); err != nil {
		t.Fatal(err)
	}
	second, _, err := first.Capture("second save", now)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Save(second); err != nil {
		t.Fatal(err)
	}

	var rows int
	s.db.QueryRow(`SELECT COUNT(*) FROM snapshots`).Scan(&rows)
	if rows != 1 {
		t.Fatalf("expected a single slot row, got %d", rows)
	}
	got, _ := s.Load()
	if len(got.MindDumpItems) != 1 {
		t.Fatalf("expected latest snapshot, got %d dump items", len(got.MindDumpItems))
	}
}

func TestLoadCorruptSlotFallsBackToSeed(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.db.Exec(`INSERT INTO snapshots (slot, payload) VALUES (?, ?)`, DefaultSlot, "{not json"); err != nil {
		t.Fatal(err)
	}
	snap, err := s.Load()
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
	if len(snap.Buckets) != 9 {
		t.Fatalf("expected seed on corrupt slot, got %d buckets", len(snap.Buckets))
	}
}

func TestLoadNewerSchemaIsNotCorrupt(t *testing.T) {
	s := newTestStore(t)
	payload := `{"version":2,"buckets":[{"id":"bx","name":"Precious","category":"Main Work"}]}`
	if _, err := s.db.Exec(`INSERT INTO snapshots (slot, payload) VALUES (?, ?)`, DefaultSlot, payload); err != nil {
		t.Fatal(err)
	}
	_, err := s.Load()
	if !errors.Is(err, flow.ErrNewerSchema) {
		t.Fatalf("expected ErrNewerSchema, got %v", err)
	}
	if errors.Is(err, ErrCorrupt) {
		t.Fatalf("newer schema must not be reported as corrupt: %v", err)
	}
}

func TestLoadEmptyPayloadFallsBackToSeed(t *testing.T) {
	for _, payload := range []string{"null", "{}"} {
		s := newTestStore(t)
		if _, err := s.db.Exec(`INSERT INTO snapshots (slot, payload) VALUES (?, ?)`, DefaultSlot, payload); err != nil {
			t.Fatal(err)
		}
		snap, err := s.Load()
		if !errors.Is(err, ErrCorrupt) {
			t.Fatalf("%s: expected ErrCorrupt, got %v", payload, err)
		}
		if len(snap.Buckets) != 9 {
			t.Fatalf("%s: expected seed buckets, got %d", payload, len(snap.Buckets))
		}
	}
}

func TestLoadPartialPayloadMigrates(t *testing.T) {
	s := newTestStore(t)
	payload := `{"buckets":[{"id":"b1","name":"Work","category":"Main Work","color":"blue","icon":"briefcase"}]}`
	if _, err := s.db.Exec(`INSERT INTO snapshots (slot, payload) VALUES (?, ?)`, DefaultSlot, payload); err != nil {
		t.Fatal(err)
	}
	snap, err := s.Load()
	if err != nil {
		t.Fatalf("load partial: %v", err)
	}
	if len(snap.Buckets) != 1 || snap.Tasks == nil || snap.MindDumpItems == nil {
		t.Fatalf("partial payload not normalised: %+v", snap)
	}
}

func TestSlotsAreIsolated(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()
	snap, _, _ := flow.Seed(now).Capture("in default slot", now)
	if err := s.Save(snap); err != nil {
		t.Fatal(err)
	}

	s.UseSlot("scratch")
	got, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(got.MindDumpItems) != 0 {
		t.Fatal("scratch slot should start from the seed")
	}

	s.UseSlot("")
	if s.Slot() != "scratch" {
		t.Fatalf("empty slot name should be ignored, got %q", s.Slot())
	}
}

// ============================================================
// Settings
// ============================================================

func TestSettingsDefaults(t *testing.T) {
	s := newTestStore(t)
	tests := []struct {
		key  string
		want string
	}{
		{"anchor_minutes", "50"},
		{"sprint_minutes", "20"},
		{"recovery_minutes", "15"},
		{"idle_timeout", "300"},
		{"week_start", "monday"},
	}
	for _, tt := range tests {
		got, err := s.GetSetting(tt.key)
		if err != nil {
			t.Fatalf("get %s: %v", tt.key, err)
		}
		if got != tt.want {
			t.Fatalf("%s: expected %q, got %q", tt.key, tt.want, got)
		}
	}
}

func TestSetSettingOverwrite(t *testing.T) {
	s := newTestStore(t)
	if err := s.SetSetting("anchor_minutes", "90"); err != nil {
		t.Fatal(err)
	}
	if got := s.PlannedMinutes(flow.SessionAnchor); got != 90 {
		t.Fatalf("expected 90, got %d", got)
	}
}

func TestGetSettingNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetSetting("nonexistent"); err == nil {
		t.Fatal("expected error for missing setting")
	}
}

func TestGetAllSettings(t *testing.T) {
	s := newTestStore(t)
	settings, err := s.GetAllSettings()
	if err != nil {
		t.Fatal(err)
	}
	if len(settings) != 5 {
		t.Fatalf("expected 5 settings, got %d", len(settings))
	}
	for i := 1; i < len(settings); i++ {
		if settings[i-1].Key > settings[i].Key {
			t.Fatal("settings should be ordered by key")
		}
	}
}

func TestPlannedMinutesDefaults(t *testing.T) {
	s := newTestStore(t)
	if got := s.PlannedMinutes(flow.SessionAnchor); got != 50 {
		t.Fatalf("anchor: %d", got)
	}
	if got := s.PlannedMinutes(flow.SessionSprint); got != 20 {
		t.Fatalf("sprint: %d", got)
	}
	if got := s.PlannedMinutes(flow.SessionRecovery); got != 15 {
		t.Fatalf("recovery: %d", got)
	}
}

func TestIntSettingFallback(t *testing.T) {
	s := newTestStore(t)
	s.SetSetting("idle_timeout", "soon")
	if got := s.IdleTimeout(); got != 300*time.Second {
		t.Fatalf("expected fallback 300s, got %v", got)
	}
	if got := s.IntSetting("missing", 7); got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}
}

func TestWeekStart(t *testing.T) {
	s := newTestStore(t)
	if s.WeekStart() != time.Monday {
		t.Fatal("default week start should be monday")
	}
	s.SetSetting("week_start", "sunday")
	if s.WeekStart() != time.Sunday {
		t.Fatal("expected sunday")
	}
}

func TestCloseStore(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
