package resetconfirm

import (
	"context"
	"io"
	"log"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/yufin/yufin/internal/progress"
	"github.com/yufin/yufin/internal/router"
	"github.com/yufin/yufin/internal/store"
)

var (
	enter = tea.KeyPressMsg{Code: tea.KeyEnter}
	tab   = tea.KeyPressMsg{Code: tea.KeyTab}
	right = tea.KeyPressMsg{Code: tea.KeyRight}
)

func newTestScreen(t *testing.T, grade string) (*ResetScreen, *progress.Ledger) {
	t.Helper()
	ctx := context.Background()
	ledger := progress.NewLedger(store.NewMemoryKV(), progress.WithLogger(log.New(io.Discard, "", 0)))
	ledger.Initialize(ctx, "ana", "6º Ano")
	ledger.CompleteLesson(ctx, "ana", progress.LessonResult{LessonID: "lessonA_module1", Score: 90})
	return New(ctx, ledger, "ana", grade), ledger
}

func TestFocusStartsOnCancel(t *testing.T) {
	s, _ := newTestScreen(t, "6º Ano")
	if s.focus != focusCancel {
		t.Errorf("focus = %d, want %d", s.focus, focusCancel)
	}
	if !s.cancel.Active || s.reset.Active {
		t.Error("only Cancel should be active")
	}
	if s.grade.Focused() {
		t.Error("grade input should not be focused")
	}
}

func TestFocusCycle(t *testing.T) {
	s, _ := newTestScreen(t, "6º Ano")

	want := []int{focusReset, focusGrade, focusCancel}
	for i, w := range want {
		s.Update(tab)
		if s.focus != w {
			t.Errorf("after tab %d focus = %d, want %d", i+1, s.focus, w)
		}
	}

	s.Update(right)
	if s.focus != focusReset {
		t.Errorf("right from Cancel: focus = %d, want %d", s.focus, focusReset)
	}
}

func TestCancelLeavesProgress(t *testing.T) {
	s, ledger := newTestScreen(t, "6º Ano")

	_, cmd := s.Update(enter)
	if cmd == nil {
		t.Fatal("expected pop cmd")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("Cancel should pop")
	}
	if rec := ledger.Get(context.Background(), "ana"); rec.XP != progress.LessonXP {
		t.Errorf("XP = %d, want %d", rec.XP, progress.LessonXP)
	}
}

func TestResetClearsProgress(t *testing.T) {
	s, ledger := newTestScreen(t, "7º Ano")

	s.Update(right)
	_, cmd := s.Update(enter)
	if cmd == nil {
		t.Fatal("expected reset cmd")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("reset should pop after completing")
	}

	rec := ledger.Get(context.Background(), "ana")
	if rec.XP != 0 || len(rec.CompletedLessons) != 0 {
		t.Errorf("record not reset: xp=%d completed=%d", rec.XP, len(rec.CompletedLessons))
	}
	if rec.GradeID != "7º Ano" {
		t.Errorf("GradeID = %q, want %q", rec.GradeID, "7º Ano")
	}
}

func TestResetRequiresGrade(t *testing.T) {
	s, ledger := newTestScreen(t, "")

	s.Update(right)
	_, cmd := s.Update(enter)
	if cmd != nil {
		t.Error("reset without a grade should not run")
	}
	if s.problem == "" {
		t.Error("expected a problem message")
	}
	if rec := ledger.Get(context.Background(), "ana"); rec.XP == 0 {
		t.Error("progress was reset without a grade")
	}
}
