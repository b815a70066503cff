package flow

import (
	"encoding/json"
	"fmt"
)

// partialSnapshot mirrors Snapshot with every collection optional, so that
// a missing field can be told apart from an empty one.
type partialSnapshot struct {
	Version       *int            `json:"version"`
	Buckets       *[]Bucket       `json:"buckets"`
	Workspaces    *[]Workspace    `json:"workspaces"`
	Tasks         *[]Task         `json:"tasks"`
	Sessions      *[]Session      `json:"sessions"`
	Goals         *[]Goal         `json:"goals"`
	Milestones    *[]Milestone    `json:"milestones"`
	Plans         *[]Plan         `json:"plans"`
	MindDumpItems *[]MindDumpItem `json:"mindDumpItems"`
}

// Decode parses a stored snapshot and upgrades it to SchemaVersion.
// Collections absent from older blobs are initialised empty; present data is
// left as is. A payload without a buckets list is rejected as invalid.
func Decode(data []byte) (Snapshot, error) {
	var p partialSnapshot
	if err := json.Unmarshal(data, &p); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	version := 0
	if p.Version != nil {
		version = *p.Version
	}
	if version > SchemaVersion {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w: version %d, this build reads up to %d", ErrNewerSchema, version, SchemaVersion)
	}
	if p.Buckets == nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w: no buckets", ErrInvalid)
	}
	return Snapshot{
		Version:       SchemaVersion,
		Buckets:       orEmpty(p.Buckets),
		Workspaces:    normalizeWorkspaces(orEmpty(p.Workspaces)),
		Tasks:         orEmpty(p.Tasks),
		Sessions:      orEmpty(p.Sessions),
		Goals:         orEmpty(p.Goals),
		Milestones:    orEmpty(p.Milestones),
		Plans:         orEmpty(p.Plans),
		MindDumpItems: orEmpty(p.MindDumpItems),
	}, nil
}

// Encode serialises s in its current schema version.
func Encode(s Snapshot) ([]byte, error) {
	s.Version = SchemaVersion
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// Normalize fills nil collections so a snapshot built in code encodes the
// same way as a decoded one.
func Normalize(s Snapshot) Snapshot {
	s.Version = SchemaVersion
	s.Buckets = orEmpty(&s.Buckets)
	s.Workspaces = normalizeWorkspaces(cloneSlice(s.Workspaces))
	s.Tasks = orEmpty(&s.Tasks)
	s.Sessions = orEmpty(&s.Sessions)
	s.Goals = orEmpty(&s.Goals)
	s.Milestones = orEmpty(&s.Milestones)
	s.Plans = orEmpty(&s.Plans)
	s.MindDumpItems = orEmpty(&s.MindDumpItems)
	return s
}

func orEmpty[T any](p *[]T) []T {
	if p == nil || *p == nil {
		return []T{}
	}
	return *p
}

func normalizeWorkspaces(list []Workspace) []Workspace {
	for i := range list {
		if list[i].Links == nil {
			list[i].Links = []WorkspaceLink{}
		}
		if list[i].StartupChecklist == nil {
			list[i].StartupChecklist = []string{}
		}
	}
	return list
}
