package store

import (
	"fmt"
	"strconv"
	"time"

	"github.com/sadopc/contextflow/internal/flow"
)

type Setting struct {
	Key   string
	Value string
}

func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

func (s *Store) GetAllSettings() ([]Setting, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// IntSetting reads a numeric setting, returning fallback when it is missing
// or not a number.
func (s *Store) IntSetting(key string, fallback int) int {
	v, err := s.GetSetting(key)
	if err != nil {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// PlannedMinutes is the default length of a session of type t.
func (s *Store) PlannedMinutes(t flow.SessionType) int {
	switch t {
	case flow.SessionSprint:
		return s.IntSetting("sprint_minutes", 20)
	case flow.SessionRecovery:
		return s.IntSetting("recovery_minutes", 15)
	default:
		return s.IntSetting("anchor_minutes", 50)
	}
}

// IdleTimeout is how long the session timer waits without input before
// pausing itself.
func (s *Store) IdleTimeout() time.Duration {
	return time.Duration(s.IntSetting("idle_timeout", 300)) * time.Second
}

// WeekStart returns the first day of the week for reports.
func (s *Store) WeekStart() time.Weekday {
	v, err := s.GetSetting("week_start")
	if err == nil && v == "sunday" {
		return time.Sunday
	}
	return time.Monday
}
