// Package backup captures and restores point-in-time copies of the
// progress ledger document.
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/yufin/yufin/internal/progress"
	"github.com/yufin/yufin/internal/store"
)

// snapshotVersion is bumped when SnapshotData changes shape.
const snapshotVersion = 1

// ErrNoSnapshot is returned by Restore when nothing has been captured yet.
var ErrNoSnapshot = errors.New("no snapshot to restore")

// Service copies the ledger document between the KV store and the
// snapshot table.
type Service struct {
	kv        store.KV
	snapshots store.SnapshotRepo
	events    store.EventRepo
	key       string
	keep      int
	now       func() time.Time
}

// NewService creates a Service that keeps the newest keep snapshots of the
// default ledger key. events may be nil.
func NewService(kv store.KV, snapshots store.SnapshotRepo, events store.EventRepo, keep int) *Service {
	if keep < 1 {
		keep = 1
	}
	return &Service{
		kv:        kv,
		snapshots: snapshots,
		events:    events,
		key:       progress.DefaultKey,
		keep:      keep,
		now:       time.Now,
	}
}

// Capture saves the current ledger document as a new snapshot and prunes
// old ones. It returns nil, nil when no ledger has been written yet.
func (s *Service) Capture(ctx context.Context) (*store.Snapshot, error) {
	raw, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	if raw == nil {
		return nil, nil
	}

	var learners map[string]json.RawMessage
	if err := json.Unmarshal(raw, &learners); err != nil {
		return nil, fmt.Errorf("decode ledger: %w", err)
	}

	var seq int64
	if s.events != nil {
		if seq, err = s.events.LatestSequence(ctx); err != nil {
			return nil, fmt.Errorf("read event sequence: %w", err)
		}
	}

	snap := &store.Snapshot{
		Sequence:  seq,
		Timestamp: s.now(),
		Data: store.SnapshotData{
			Version:  snapshotVersion,
			Key:      s.key,
			Learners: len(learners),
			Blob:     raw,
		},
	}
	if err := s.snapshots.Save(ctx, snap); err != nil {
		return nil, err
	}
	if err := s.snapshots.Prune(ctx, s.keep); err != nil {
		return nil, err
	}
	return snap, nil
}

// Restore writes the latest snapshot back over the ledger document.
func (s *Service) Restore(ctx context.Context) (*store.Snapshot, error) {
	snap, err := s.snapshots.Latest(ctx)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, ErrNoSnapshot
	}
	if snap.Data.Key != s.key {
		return nil, fmt.Errorf("snapshot %d holds key %q, want %q", snap.ID, snap.Data.Key, s.key)
	}
	if snap.Data.Version > snapshotVersion {
		return nil, fmt.Errorf("snapshot %d has unsupported version %d", snap.ID, snap.Data.Version)
	}

	if err := s.kv.Set(ctx, s.key, snap.Data.Blob); err != nil {
		return nil, fmt.Errorf("write ledger: %w", err)
	}
	return snap, nil
}
