package participant

import (
	"context"
	"fmt"
	"time"

	"github.com/absmach/fedlearn/pkg/fl"
)

const snapshotVersion = 1

// Snapshot is the persisted state of a stopped participant. Session is opaque
// to the participant and belongs to the Coordinator that produced it; it may
// hold private keys.
type Snapshot struct {
	Version int       `json:"version"  cbor:"version"`
	State   State     `json:"state"    cbor:"state"`
	Round   uint64    `json:"round"    cbor:"round"`
	Session []byte    `json:"session"  cbor:"session"`
	SavedAt time.Time `json:"saved_at" cbor:"saved_at"`
}

// SnapshotStore persists encoded snapshots under a key.
type SnapshotStore interface {
	Save(ctx context.Context, key string, data []byte) error
}

func (s Snapshot) Encode() ([]byte, error) {
	data, err := fl.EncodeCBOR(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	return data, nil
}

func DecodeSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := fl.DecodeCBOR(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if s.Version != snapshotVersion {
		return Snapshot{}, fmt.Errorf("unsupported snapshot version %d", s.Version)
	}
	if s.State > Done {
		return Snapshot{}, ErrUnknownState
	}

	return s, nil
}
