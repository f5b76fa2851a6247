package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yufin/yufin/internal/progress"
	"github.com/yufin/yufin/internal/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "backup.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestCaptureEmptyLedger(t *testing.T) {
	st := openStore(t)
	svc := NewService(st.KV(), st.SnapshotRepo(), st.EventRepo(), 3)

	snap, err := svc.Capture(context.Background())
	require.NoError(t, err)
	assert.Nil(t, snap)

	latest, err := st.SnapshotRepo().Latest(context.Background())
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestCaptureAndRestore(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	ledger := progress.NewLedger(st.KV(), progress.WithEventRepo(st.EventRepo()))
	svc := NewService(st.KV(), st.SnapshotRepo(), st.EventRepo(), 3)

	ledger.Initialize(ctx, "u1", "6º Ano")
	ledger.Initialize(ctx, "u2", "7º Ano")
	ledger.CompleteLesson(ctx, "u1", progress.LessonResult{LessonID: "lesson-1"})

	snap, err := svc.Capture(ctx)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, 2, snap.Data.Learners)
	assert.Equal(t, progress.DefaultKey, snap.Data.Key)
	assert.Equal(t, int64(3), snap.Sequence)

	// Lose progress, then restore it.
	ledger.Reset(ctx, "u1", "6º Ano")
	require.Equal(t, 0, ledger.Get(ctx, "u1").XP)

	restored, err := svc.Restore(ctx)
	require.NoError(t, err)
	assert.Equal(t, snap.Sequence, restored.Sequence)

	rec := ledger.Get(ctx, "u1")
	require.NotNil(t, rec)
	assert.Equal(t, 100, rec.XP)
	assert.Equal(t, "7º Ano", ledger.Get(ctx, "u2").GradeID)
}

func TestRestoreWithoutSnapshot(t *testing.T) {
	st := openStore(t)
	svc := NewService(st.KV(), st.SnapshotRepo(), nil, 3)

	_, err := svc.Restore(context.Background())
	assert.True(t, errors.Is(err, ErrNoSnapshot))
}

func TestRestoreRejectsForeignKey(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()

	require.NoError(t, st.SnapshotRepo().Save(ctx, &store.Snapshot{
		Timestamp: time.Now(),
		Data:      store.SnapshotData{Version: 1, Key: "something.else", Blob: json.RawMessage(`{}`)},
	}))

	svc := NewService(st.KV(), st.SnapshotRepo(), nil, 3)
	_, err := svc.Restore(ctx)
	assert.ErrorContains(t, err, "something.else")
}

func TestCapturePrunes(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	ledger := progress.NewLedger(st.KV())
	ledger.Initialize(ctx, "u1", "6º Ano")

	svc := NewService(st.KV(), st.SnapshotRepo(), nil, 2)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		ts := base.Add(time.Duration(i) * time.Minute)
		svc.now = func() time.Time { return ts }
		_, err := svc.Capture(ctx)
		require.NoError(t, err)
	}

	var count int
	require.NoError(t, st.DB().QueryRow("SELECT COUNT(*) FROM snapshots").Scan(&count))
	assert.Equal(t, 2, count)

	latest, err := st.SnapshotRepo().Latest(ctx)
	require.NoError(t, err)
	assert.True(t, latest.Timestamp.Equal(base.Add(4*time.Minute)))
}

func TestCaptureCorruptLedger(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	require.NoError(t, st.KV().Set(ctx, progress.DefaultKey, json.RawMessage(`[1,2,3]`)))

	svc := NewService(st.KV(), st.SnapshotRepo(), nil, 3)
	_, err := svc.Capture(ctx)
	assert.ErrorContains(t, err, "decode ledger")
}

func TestCaptureMemoryKV(t *testing.T) {
	// Snapshots of a non-SQLite KV land in a separate SQLite store.
	st := openStore(t)
	kv := store.NewMemoryKV()
	ctx := context.Background()
	progress.NewLedger(kv).Initialize(ctx, "u1", "6º Ano")

	svc := NewService(kv, st.SnapshotRepo(), nil, 3)
	snap, err := svc.Capture(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), snap.Sequence)
	assert.Equal(t, 1, snap.Data.Learners)
}

// syncBuffer is a bytes.Buffer safe for the scheduler goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSchedulerCaptures(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	progress.NewLedger(st.KV()).Initialize(ctx, "u1", "6º Ano")

	var logs syncBuffer
	sched := NewScheduler(NewService(st.KV(), st.SnapshotRepo(), nil, 5), 50*time.Millisecond, log.New(&logs, "", 0))
	require.NoError(t, sched.Start())
	defer sched.Stop()

	require.Eventually(t, func() bool {
		latest, err := st.SnapshotRepo().Latest(ctx)
		return err == nil && latest != nil
	}, 2*time.Second, 20*time.Millisecond)
	require.Eventually(t, func() bool {
		return strings.Contains(logs.String(), "snapshot saved: 1 learners")
	}, 2*time.Second, 20*time.Millisecond)
}

func TestSchedulerRejectsZeroInterval(t *testing.T) {
	st := openStore(t)
	sched := NewScheduler(NewService(st.KV(), st.SnapshotRepo(), nil, 5), 0, nil)
	assert.Error(t, sched.Start())
}
