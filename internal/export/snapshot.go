package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sadopc/contextflow/internal/flow"
)

// ToSnapshot writes the whole snapshot as indented JSON, in the same schema
// the store keeps.
func ToSnapshot(snap flow.Snapshot, path string) error {
	data, err := flow.Encode(snap)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return fmt.Errorf("indent snapshot: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write snapshot file: %w", err)
	}
	return nil
}

// ReadSnapshot loads a snapshot file, migrating older versions.
func ReadSnapshot(path string) (flow.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return flow.Snapshot{}, fmt.Errorf("read snapshot file: %w", err)
	}
	return flow.Decode(data)
}
