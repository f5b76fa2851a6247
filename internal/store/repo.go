package store

import (
	"context"
	"encoding/json"
	"time"
)

// KV is a durable key-value store of JSON documents.
type KV interface {
	// Get returns the value stored under key, or nil if the key is absent.
	Get(ctx context.Context, key string) (json.RawMessage, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value json.RawMessage) error
}

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// Ledger event kinds.
const (
	EventInitialized         = "initialized"
	EventLessonCompleted     = "lesson_completed"
	EventAchievementUnlocked = "achievement_unlocked"
	EventModuleChanged       = "module_changed"
	EventReset               = "reset"
	EventMaxXPRepaired       = "maxxp_repaired"
)

// LedgerEventData captures one change made by the progress ledger.
type LedgerEventData struct {
	UserID     string  `json:"userId"`
	Kind       string  `json:"kind"`
	LessonID   *string `json:"lessonId,omitempty"`
	Module     int     `json:"module,omitempty"`
	XPDelta    int     `json:"xpDelta"`
	CoinsDelta int     `json:"coinsDelta"`
	Detail     string  `json:"detail,omitempty"`
}

// LedgerEventRecord is a persisted ledger event.
type LedgerEventRecord struct {
	LedgerEventData
	Sequence  int64     `json:"sequence"`
	Timestamp time.Time `json:"timestamp"`
}

// EventRepo provides append and query access to ledger events.
type EventRepo interface {
	// AppendLedgerEvent records a ledger change.
	AppendLedgerEvent(ctx context.Context, data LedgerEventData) error

	// QueryLedgerEvents returns a learner's events, newest first.
	QueryLedgerEvents(ctx context.Context, userID string, opts QueryOpts) ([]LedgerEventRecord, error)

	// LatestSequence returns the highest sequence assigned so far, or 0.
	LatestSequence(ctx context.Context) (int64, error)
}

// SnapshotData is the payload of a ledger backup.
type SnapshotData struct {
	Version  int             `json:"version"`
	Key      string          `json:"key"`
	Learners int             `json:"learners"`
	Blob     json.RawMessage `json:"blob"`
}

// Snapshot represents a point-in-time capture of the ledger.
type Snapshot struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	Data      SnapshotData
}

// SnapshotRepo manages ledger snapshots.
type SnapshotRepo interface {
	// Save stores a new snapshot.
	Save(ctx context.Context, snap *Snapshot) error

	// Latest returns the most recent snapshot, or nil if none exist.
	Latest(ctx context.Context) (*Snapshot, error)

	// Prune deletes all but the N most recent snapshots.
	Prune(ctx context.Context, keep int) error
}
