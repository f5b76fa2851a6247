package progress

import (
	"context"
	"encoding/json"

	"github.com/yufin/yufin/internal/store"
)

// DefaultKey is the KV key holding every learner's record.
const DefaultKey = "yufin.progress.gratuito"

// ledgerState is the decoded top-level document: learner ID -> record.
type ledgerState struct {
	records map[string]*Record

	// writable is false when the stored document could not be read. Saving
	// then would overwrite other learners' records with a partial map.
	writable bool

	// pending events describe changes made while loading, such as a
	// repaired maxXp. They are emitted only once a save succeeds.
	pending []store.LedgerEventData
}

// load reads all records. Failures are logged and yield an empty,
// read-only state.
func (l *Ledger) load(ctx context.Context) *ledgerState {
	raw, err := l.kv.Get(ctx, l.key)
	if err != nil {
		l.warnf("load progress: %v", err)
		return &ledgerState{records: map[string]*Record{}}
	}
	if raw == nil {
		return &ledgerState{records: map[string]*Record{}, writable: true}
	}

	records := map[string]*Record{}
	if err := json.Unmarshal(raw, &records); err != nil {
		l.warnf("decode progress: %v", err)
		return &ledgerState{records: map[string]*Record{}}
	}
	return &ledgerState{records: records, writable: true}
}

// save writes all records. Failures are logged, never returned.
func (l *Ledger) save(ctx context.Context, st *ledgerState) {
	if !st.writable {
		l.warnf("save progress: skipped, stored progress is unreadable")
		return
	}
	raw, err := json.Marshal(st.records)
	if err != nil {
		l.warnf("encode progress: %v", err)
		return
	}
	if err := l.kv.Set(ctx, l.key, raw); err != nil {
		l.warnf("save progress: %v", err)
		return
	}
	l.emit(ctx, st.pending...)
	st.pending = nil
}

// emit appends ledger events when an event repo is configured.
func (l *Ledger) emit(ctx context.Context, events ...store.LedgerEventData) {
	if l.events == nil {
		return
	}
	for _, e := range events {
		if err := l.events.AppendLedgerEvent(ctx, e); err != nil {
			l.warnf("record %s event: %v", e.Kind, err)
		}
	}
}

func (l *Ledger) warnf(format string, args ...any) {
	l.logger.Printf("warning: "+format, args...)
}
