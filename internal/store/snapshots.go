package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sadopc/contextflow/internal/flow"
)

// ErrCorrupt is returned by Load when the stored payload cannot be decoded.
// The seed snapshot is returned alongside it.
var ErrCorrupt = errors.New("stored snapshot is unreadable")

// Load reads the snapshot slot. An empty slot yields the seed snapshot and
// no error. A read or decode failure also yields the seed, together with the
// error, so callers can log it and carry on. Only decode failures wrap
// ErrCorrupt; a payload from a newer schema wraps flow.ErrNewerSchema
// instead and must not be overwritten.
func (s *Store) Load() (flow.Snapshot, error) {
	var payload string
	err := s.db.QueryRow(`SELECT payload FROM snapshots WHERE slot = ?`, s.slot).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return flow.Seed(time.Now()), nil
	}
	if err != nil {
		return flow.Seed(time.Now()), fmt.Errorf("load snapshot: %w", err)
	}
	snap, err := flow.Decode([]byte(payload))
	if errors.Is(err, flow.ErrNewerSchema) {
		return flow.Seed(time.Now()), fmt.Errorf("load snapshot: %w", err)
	}
	if err != nil {
		return flow.Seed(time.Now()), fmt.Errorf("load snapshot: %w: %v", ErrCorrupt, err)
	}
	return snap, nil
}

// Save overwrites the slot with the whole snapshot.
func (s *Store) Save(snap flow.Snapshot) error {
	data, err := flow.Encode(snap)
	if err != nil {
		return err
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.Exec(
		`INSERT INTO snapshots (slot, payload, saved_at) VALUES (?, ?, ?)
		 ON CONFLICT(slot) DO UPDATE SET payload = excluded.payload, saved_at = excluded.saved_at`,
		s.slot, string(data), now,
	)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// SavedAt reports when the slot was last written. ok is false for an empty
// slot.
func (s *Store) SavedAt() (t time.Time, ok bool, err error) {
	var savedAt string
	err = s.db.QueryRow(`SELECT saved_at FROM snapshots WHERE slot = ?`, s.slot).Scan(&savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("read saved_at: %w", err)
	}
	t, _ = time.Parse(time.RFC3339, savedAt)
	return t, true, nil
}
