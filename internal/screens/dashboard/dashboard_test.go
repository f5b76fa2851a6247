package dashboard

import (
	"context"
	"io"
	"log"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/yufin/yufin/internal/progress"
	"github.com/yufin/yufin/internal/router"
	"github.com/yufin/yufin/internal/screen"
	"github.com/yufin/yufin/internal/screens/achievements"
	"github.com/yufin/yufin/internal/screens/complete"
	"github.com/yufin/yufin/internal/screens/history"
	"github.com/yufin/yufin/internal/screens/resetconfirm"
	"github.com/yufin/yufin/internal/store"
)

func key(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

// eventLog is an in-memory store.EventRepo.
type eventLog struct {
	events []store.LedgerEventRecord
}

func (l *eventLog) AppendLedgerEvent(_ context.Context, data store.LedgerEventData) error {
	l.events = append(l.events, store.LedgerEventRecord{LedgerEventData: data, Sequence: int64(len(l.events) + 1)})
	return nil
}

func (l *eventLog) QueryLedgerEvents(_ context.Context, userID string, _ store.QueryOpts) ([]store.LedgerEventRecord, error) {
	var out []store.LedgerEventRecord
	for i := len(l.events) - 1; i >= 0; i-- {
		if l.events[i].UserID == userID {
			out = append(out, l.events[i])
		}
	}
	return out, nil
}

func (l *eventLog) LatestSequence(context.Context) (int64, error) {
	return int64(len(l.events)), nil
}

func newTestDashboard(t *testing.T) (*DashboardScreen, *progress.Ledger) {
	t.Helper()
	events := &eventLog{}
	ledger := progress.NewLedger(store.NewMemoryKV(),
		progress.WithLogger(log.New(io.Discard, "", 0)),
		progress.WithEventRepo(events))
	return New(context.Background(), ledger, events, "ana", "6º Ano"), ledger
}

// loaded runs Init and feeds the resulting message back.
func loaded(t *testing.T) (*DashboardScreen, *progress.Ledger) {
	t.Helper()
	d, ledger := newTestDashboard(t)
	cmd := d.Init()
	if cmd == nil {
		t.Fatal("Init returned nil cmd")
	}
	d.Update(cmd())
	return d, ledger
}

func TestInitCreatesRecord(t *testing.T) {
	d, ledger := newTestDashboard(t)

	msg := d.Init()()
	pm, ok := msg.(screen.ProgressMsg)
	if !ok {
		t.Fatalf("Init msg = %T, want screen.ProgressMsg", msg)
	}
	if pm.Record == nil || pm.Record.GradeID != "6º Ano" {
		t.Fatalf("record = %+v, want grade 6º Ano", pm.Record)
	}
	if ledger.Get(context.Background(), "ana") == nil {
		t.Error("learner was not persisted")
	}
}

func TestViewBeforeLoad(t *testing.T) {
	d, _ := newTestDashboard(t)
	if !strings.Contains(d.View(80, 30), "Loading") {
		t.Error("expected loading placeholder before the first ProgressMsg")
	}
}

func TestViewShowsLevelAndModules(t *testing.T) {
	d, _ := loaded(t)

	view := d.View(100, 40)
	for _, want := range []string{"Level 1", "Module 1", "Module 2", "Module 3", "0/100"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestSelectModule(t *testing.T) {
	d, _ := loaded(t)

	_, cmd := d.Update(key('2'))
	if cmd == nil {
		t.Fatal("expected a cmd for digit key")
	}
	d.Update(cmd())

	if d.rec.CurrentModule != 2 {
		t.Errorf("CurrentModule = %d, want 2", d.rec.CurrentModule)
	}
	if d.notice != "" {
		t.Errorf("notice = %q, want empty", d.notice)
	}
}

func TestSelectLockedModule(t *testing.T) {
	d, _ := loaded(t)

	_, cmd := d.Update(key('5'))
	d.Update(cmd())

	if d.rec.CurrentModule != 1 {
		t.Errorf("CurrentModule = %d, want 1", d.rec.CurrentModule)
	}
	if !strings.Contains(d.notice, "Module 5") {
		t.Errorf("notice = %q, want free plan notice", d.notice)
	}
	if !strings.Contains(d.View(100, 40), "not part of the free plan") {
		t.Error("notice not rendered")
	}
}

func TestSelectModuleWithoutRecord(t *testing.T) {
	d, _ := newTestDashboard(t)

	_, cmd := d.Update(key('2'))
	d.Update(cmd())

	if d.notice != "No progress found for this learner." {
		t.Errorf("notice = %q", d.notice)
	}
}

func TestMenuHotkeysPushScreens(t *testing.T) {
	tests := []struct {
		key  rune
		want string
	}{
		{'c', "Complete Lesson"},
		{'a', "Achievements"},
		{'r', "Reset Progress"},
		{'h', "History"},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			d, _ := loaded(t)
			_, cmd := d.Update(key(tt.key))
			if cmd == nil {
				t.Fatal("expected a push cmd")
			}
			push, ok := cmd().(router.PushScreenMsg)
			if !ok {
				t.Fatalf("msg is not PushScreenMsg")
			}
			if push.Screen.Title() != tt.want {
				t.Errorf("pushed %q, want %q", push.Screen.Title(), tt.want)
			}
			switch push.Screen.(type) {
			case *complete.CompleteScreen, *achievements.AchievementsScreen, *resetconfirm.ResetScreen, *history.HistoryScreen:
			default:
				t.Errorf("unexpected screen type %T", push.Screen)
			}
		})
	}
}

func TestQuitHotkey(t *testing.T) {
	d, _ := loaded(t)
	_, cmd := d.Update(key('q'))
	if cmd == nil {
		t.Fatal("expected quit cmd")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestResumeReloads(t *testing.T) {
	d, ledger := loaded(t)

	ledger.CompleteLesson(context.Background(), "ana", progress.LessonResult{LessonID: "lessonA_module1", Score: 90})
	d.Update(d.Resume()())

	if d.rec.XP != progress.LessonXP {
		t.Errorf("XP after resume = %d, want %d", d.rec.XP, progress.LessonXP)
	}
}

func TestHearts(t *testing.T) {
	tests := []struct {
		hearts, max int
		want        string
	}{
		{3, 3, "♥♥♥"},
		{1, 3, "♥♡♡"},
		{5, 3, "♥♥♥"},
		{-1, 3, "♡♡♡"},
		{0, 0, ""},
	}
	for _, tt := range tests {
		got := hearts(&progress.Record{Hearts: tt.hearts, MaxHearts: tt.max})
		if got != tt.want {
			t.Errorf("hearts(%d/%d) = %q, want %q", tt.hearts, tt.max, got, tt.want)
		}
	}
}

func TestHistoryDisabledWithoutEvents(t *testing.T) {
	ledger := progress.NewLedger(store.NewMemoryKV(), progress.WithLogger(log.New(io.Discard, "", 0)))
	d := New(context.Background(), ledger, nil, "ana", "6º Ano")
	d.Update(d.Init()())

	if _, cmd := d.Update(key('h')); cmd != nil {
		t.Error("history should be disabled without an event repo")
	}
}
