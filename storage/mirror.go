package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/CharfiNour/enstarobots-server/models"
)

const stateSnapshotKey = "state/competition-state.json"

// StateMirror pushes serialized competition-state snapshots to object
// storage so a replacement admin device can hydrate after a crash.
type StateMirror struct {
	uploader FileUploader
}

func NewStateMirror(uploader FileUploader) *StateMirror {
	return &StateMirror{uploader: uploader}
}

func (m *StateMirror) MirrorState(ctx context.Context, state *models.CompetitionState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state for mirror: %w", err)
	}
	if _, err := m.uploader.Upload(ctx, stateSnapshotKey, "application/json", bytes.NewReader(raw)); err != nil {
		return fmt.Errorf("mirror state snapshot: %w", err)
	}
	return nil
}
