package flow

import "errors"

var (
	// ErrNotReady is returned when a task would enter Ready or Doing
	// without both a next action and a done definition.
	ErrNotReady = errors.New("task needs a next action and a done definition to be Ready or Doing")

	ErrInvalid  = errors.New("invalid input")
	ErrNotFound = errors.New("not found")

	// ErrTerminal is returned for transitions out of a converted or archived
	// mind-dump item.
	ErrTerminal = errors.New("item already converted or archived")

	// ErrNewerSchema is returned by Decode for a snapshot written by a newer
	// build. The payload is intact and must not be replaced.
	ErrNewerSchema = errors.New("snapshot schema is newer than this build")
)
