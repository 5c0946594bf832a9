package state

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nao1215/corpuscrawl/internal/model"
)

// SchemaVersion is the checkpoint layout written by this build.
const SchemaVersion = 1

// Snapshot is the persisted form of a State.
type Snapshot struct {
	SchemaVersion int              `json:"schema_version"`
	RunID         string           `json:"run_id"`
	SavedAt       time.Time        `json:"saved_at"`
	Visited       []string         `json:"visited_urls"`
	Frontier      []model.URLEntry `json:"frontier"`
	Fingerprints  []string         `json:"content_hashes"`
	Failed        []string         `json:"failed_urls"`
	Stats         model.Stats      `json:"stats"`
}

// Encode serializes a snapshot.
func Encode(snap *Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode checkpoint: %w", err)
	}
	return data, nil
}

// Decode parses a snapshot and checks its schema version.
func Decode(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptCheckpoint, err)
	}
	if snap.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrSchemaVersion, snap.SchemaVersion, SchemaVersion)
	}
	return &snap, nil
}
