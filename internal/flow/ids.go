package flow

import "github.com/google/uuid"

// NewID returns a short identifier such as "t-1a2b3c4d".
func NewID(prefix string) string {
	return prefix + "-" + uuid.New().String()[:8]
}
