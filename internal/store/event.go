package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// sequenceCounter manages the global monotonic sequence number assigned to
// ledger events. Snapshots record the sequence current at capture time, so
// events newer than a snapshot can be found with sequence > snapshot.Sequence.
//
// The mutex serializes within the process; the RETURNING clause makes the
// increment atomic at the database level.
type sequenceCounter struct {
	mu sync.Mutex
	db *sql.DB
}

// newSequenceCounter creates a counter and ensures the tracking table exists.
func newSequenceCounter(db *sql.DB) (*sequenceCounter, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS global_sequence (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		next_val INTEGER NOT NULL DEFAULT 1
	)`)
	if err != nil {
		return nil, fmt.Errorf("create sequence table: %w", err)
	}

	_, err = db.Exec(`INSERT OR IGNORE INTO global_sequence (id, next_val) VALUES (1, 1)`)
	if err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}

	return &sequenceCounter{db: db}, nil
}

// Next atomically returns the next sequence number and increments the counter.
func (sc *sequenceCounter) Next(ctx context.Context) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	var seq int64
	err := sc.db.QueryRowContext(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}

// eventRepo implements EventRepo on the ledger_events table.
type eventRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

var eventSelectColumns = []string{
	"sequence", "timestamp", "user_id", "kind", "lesson_id",
	"module", "xp_delta", "coins_delta", "detail",
}

func (r *eventRepo) AppendLedgerEvent(ctx context.Context, data LedgerEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	var lessonID any
	if data.LessonID != nil {
		lessonID = *data.LessonID
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(eventTable).
		Columns("sequence", "timestamp", "user_id", "kind", "lesson_id",
			"module", "xp_delta", "coins_delta", "detail").
		Values(seqNum, time.Now().UTC(), data.UserID, data.Kind, lessonID,
			data.Module, data.XPDelta, data.CoinsDelta, data.Detail).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save ledger event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryLedgerEvents(ctx context.Context, userID string, opts QueryOpts) ([]LedgerEventRecord, error) {
	b := entsql.Dialect(dialect.SQLite)
	sel := b.Select(eventSelectColumns...).
		From(b.Table(eventTable)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("sequence"))

	if opts.After > 0 {
		sel.Where(entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		sel.Where(entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		sel.Where(entsql.GTE("timestamp", opts.From))
	}
	if !opts.To.IsZero() {
		sel.Where(entsql.LTE("timestamp", opts.To))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query ledger events: %w", err)
	}
	defer rows.Close()

	var records []LedgerEventRecord
	for rows.Next() {
		var (
			rec      LedgerEventRecord
			lessonID sql.NullString
		)
		err := rows.Scan(&rec.Sequence, &rec.Timestamp, &rec.UserID, &rec.Kind, &lessonID,
			&rec.Module, &rec.XPDelta, &rec.CoinsDelta, &rec.Detail)
		if err != nil {
			return nil, fmt.Errorf("scan ledger event: %w", err)
		}
		if lessonID.Valid {
			id := lessonID.String
			rec.LessonID = &id
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger events: %w", err)
	}
	return records, nil
}

func (r *eventRepo) LatestSequence(ctx context.Context) (int64, error) {
	b := entsql.Dialect(dialect.SQLite)
	query, args := b.Select(entsql.Max("sequence")).
		From(b.Table(eventTable)).
		Query()

	var seq sql.NullInt64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&seq); err != nil {
		return 0, fmt.Errorf("latest sequence: %w", err)
	}
	return seq.Int64, nil
}
