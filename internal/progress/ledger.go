package progress

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"
	"sync"
	"time"

	"github.com/yufin/yufin/internal/store"
)

// Ledger maintains one progress Record per learner in a KV store.
//
// Operations on a learner without a record return nil. Storage failures are
// logged and the computed record is still returned; nothing is rolled back.
// Read-modify-write cycles are serialized within the process; concurrent
// writers in other processes are last-write-wins.
type Ledger struct {
	kv     store.KV
	events store.EventRepo
	logger *log.Logger
	now    func() time.Time
	key    string

	mu sync.Mutex
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithEventRepo records every ledger change in repo.
func WithEventRepo(repo store.EventRepo) Option {
	return func(l *Ledger) { l.events = repo }
}

// WithLogger sets the logger used for storage warnings.
func WithLogger(logger *log.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithKey overrides the KV key holding the records.
func WithKey(key string) Option {
	return func(l *Ledger) { l.key = key }
}

// NewLedger creates a Ledger on kv.
func NewLedger(kv store.KV, opts ...Option) *Ledger {
	l := &Ledger{
		kv:     kv,
		logger: log.New(io.Discard, "", 0),
		now:    time.Now,
		key:    DefaultKey,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Initialize stores a zeroed record for userID, replacing any existing one.
// Use InitializeIfAbsent to keep an existing record.
func (l *Ledger) Initialize(ctx context.Context, userID, gradeID string) *Record {
	l.mu.Lock()
	defer l.mu.Unlock()

	st := l.load(ctx)
	return l.initialize(ctx, st, userID, gradeID, store.EventInitialized)
}

// InitializeIfAbsent stores a zeroed record for userID unless one exists.
// created is false when the existing record was returned instead.
func (l *Ledger) InitializeIfAbsent(ctx context.Context, userID, gradeID string) (rec *Record, created bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	st := l.load(ctx)
	rec, repaired := l.lookup(st, userID)
	if rec != nil {
		if repaired {
			l.save(ctx, st)
		}
		return rec, false
	}
	return l.initialize(ctx, st, userID, gradeID, store.EventInitialized), true
}

// Get returns the learner's record, or nil if none exists. A maxXp that
// disagrees with the level curve is repaired and saved before returning.
func (l *Ledger) Get(ctx context.Context, userID string) *Record {
	l.mu.Lock()
	defer l.mu.Unlock()

	st := l.load(ctx)
	rec, repaired := l.lookup(st, userID)
	if repaired {
		l.save(ctx, st)
	}
	return rec
}

// CompleteLesson records a finished lesson and applies its rewards. A lesson
// already in the history is ignored and the record is returned unchanged.
func (l *Ledger) CompleteLesson(ctx context.Context, userID string, res LessonResult) *Record {
	l.mu.Lock()
	defer l.mu.Unlock()

	st := l.load(ctx)
	rec, repaired := l.lookup(st, userID)
	if rec == nil {
		return nil
	}
	if rec.HasCompleted(res.LessonID) {
		if repaired {
			l.save(ctx, st)
		}
		return rec
	}

	now := l.now()
	module := ResolveModule(res.LessonID, res.Module)

	rec.CompletedLessons = append(rec.CompletedLessons, CompletedLesson{
		LessonID:      res.LessonID,
		Score:         res.Score,
		TimeSpent:     res.TimeSpent,
		CompletedAt:   now,
		XPEarned:      LessonXP,
		YuCoinsEarned: LessonYuCoins,
		Module:        module,
	})
	rec.XP += LessonXP
	rec.YuCoins += LessonYuCoins
	rec.Streak++
	rec.DailyProgress += LessonXP

	rec.recountModules()

	unlocked := newAchievements(rec, now)
	for _, a := range unlocked {
		rec.Achievements = append(rec.Achievements, a)
		rec.XP += AchievementBonusXP
		rec.YuCoins += AchievementBonusYuCoins
	}

	prevLevel := rec.Level
	if level := LevelFor(rec.XP); level > prevLevel {
		rec.Level = level
		rec.MaxXP = LevelThreshold(level)
	}
	rec.LastActivity = now

	l.save(ctx, st)

	lessonID := res.LessonID
	events := []store.LedgerEventData{{
		UserID:     userID,
		Kind:       store.EventLessonCompleted,
		LessonID:   &lessonID,
		Module:     module,
		XPDelta:    LessonXP,
		CoinsDelta: LessonYuCoins,
		Detail:     fmt.Sprintf("level %d -> %d", prevLevel, rec.Level),
	}}
	for _, a := range unlocked {
		events = append(events, store.LedgerEventData{
			UserID:     userID,
			Kind:       store.EventAchievementUnlocked,
			LessonID:   &lessonID,
			Module:     module,
			XPDelta:    AchievementBonusXP,
			CoinsDelta: AchievementBonusYuCoins,
			Detail:     a.ID,
		})
	}
	l.emit(ctx, events...)

	return rec
}

// SetCurrentModule moves the learner to module. Modules outside
// 1..MaxModules are rejected: the record is returned unchanged and not saved.
func (l *Ledger) SetCurrentModule(ctx context.Context, userID string, module int) *Record {
	l.mu.Lock()
	defer l.mu.Unlock()

	st := l.load(ctx)
	rec, repaired := l.lookup(st, userID)
	if rec == nil {
		return nil
	}
	if module > MaxModules || module < 1 {
		if repaired {
			l.save(ctx, st)
		}
		return rec
	}

	rec.CurrentModule = module
	rec.LastActivity = l.now()
	l.save(ctx, st)
	l.emit(ctx, store.LedgerEventData{
		UserID: userID,
		Kind:   store.EventModuleChanged,
		Module: module,
	})
	return rec
}

// Reset replaces the learner's record with a zeroed one for gradeID,
// whether or not a record existed. Confirming with the learner is the
// caller's job.
func (l *Ledger) Reset(ctx context.Context, userID, gradeID string) *Record {
	l.mu.Lock()
	defer l.mu.Unlock()

	st := l.load(ctx)
	return l.initialize(ctx, st, userID, gradeID, store.EventReset)
}

// Stats summarizes the learner's record, or returns nil if none exists.
func (l *Ledger) Stats(ctx context.Context, userID string) *Stats {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec := l.load(ctx).records[userID]
	if rec == nil {
		return nil
	}
	return computeStats(rec)
}

// LoadDashboard returns the dashboard view for userID, creating the
// learner's record for gradeID first if it does not exist yet.
func (l *Ledger) LoadDashboard(ctx context.Context, userID, gradeID string) Dashboard {
	l.mu.Lock()
	defer l.mu.Unlock()

	st := l.load(ctx)
	rec, repaired := l.lookup(st, userID)
	if rec == nil {
		rec = l.initialize(ctx, st, userID, gradeID, store.EventInitialized)
	} else if repaired {
		l.save(ctx, st)
	}
	return FormatDashboard(rec)
}

func (l *Ledger) initialize(ctx context.Context, st *ledgerState, userID, gradeID, kind string) *Record {
	rec := newRecord(userID, gradeID, l.now())
	st.records[userID] = rec
	l.save(ctx, st)
	l.emit(ctx, store.LedgerEventData{
		UserID: userID,
		Kind:   kind,
		Detail: gradeID,
	})
	return rec
}

// lookup returns the learner's record from st, repairing a stale maxXp in
// place. repaired reports whether st needs saving; the repair event is
// queued on st until then.
func (l *Ledger) lookup(st *ledgerState, userID string) (rec *Record, repaired bool) {
	rec = st.records[userID]
	if rec == nil {
		return nil, false
	}
	if want := LevelThreshold(rec.Level); rec.MaxXP != want {
		st.pending = append(st.pending, store.LedgerEventData{
			UserID: userID,
			Kind:   store.EventMaxXPRepaired,
			Detail: fmt.Sprintf("maxXp %d -> %d", rec.MaxXP, want),
		})
		rec.MaxXP = want
		rec.LastActivity = l.now()
		repaired = true
	}
	if rec.ByModule == nil {
		rec.recountModules()
	}
	return rec, repaired
}

func computeStats(rec *Record) *Stats {
	var total, completed int
	for m := 1; m <= MaxModules; m++ {
		p := rec.ByModule[m]
		total += p.Total
		completed += p.Completed
	}

	percent := 0
	if total > 0 {
		percent = int(math.Round(float64(completed) * 100 / float64(total)))
		if percent > 100 {
			percent = 100
		}
	}

	return &Stats{
		TotalLessons:      total,
		CompletedLessons:  completed,
		CompletionPercent: percent,
		XP:                rec.XP,
		YuCoins:           rec.YuCoins,
		Streak:            rec.Streak,
		Level:             rec.Level,
		Achievements:      len(rec.Achievements),
	}
}
