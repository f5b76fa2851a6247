package backup

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

// captureTimeout bounds a single scheduled capture.
const captureTimeout = 30 * time.Second

// Scheduler runs Capture on a fixed interval in the background.
type Scheduler struct {
	cron     *gocron.Scheduler
	svc      *Service
	interval time.Duration
	logger   *log.Logger
}

// NewScheduler creates a Scheduler. A nil logger discards output.
func NewScheduler(svc *Service, interval time.Duration, logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	cron := gocron.NewScheduler(time.UTC)
	cron.SingletonModeAll()
	return &Scheduler{
		cron:     cron,
		svc:      svc,
		interval: interval,
		logger:   logger,
	}
}

// Start schedules the capture job and returns immediately. The first
// capture runs right away.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		return fmt.Errorf("snapshot interval must be positive, got %s", s.interval)
	}
	if _, err := s.cron.Every(s.interval).Do(s.capture); err != nil {
		return fmt.Errorf("schedule snapshots: %w", err)
	}
	s.cron.StartAsync()
	return nil
}

// Stop halts the scheduler. A capture already running is not interrupted.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) capture() {
	ctx, cancel := context.WithTimeout(context.Background(), captureTimeout)
	defer cancel()

	snap, err := s.svc.Capture(ctx)
	switch {
	case err != nil:
		s.logger.Printf("warning: snapshot: %v", err)
	case snap == nil:
		// Nothing written yet.
	default:
		s.logger.Printf("snapshot saved: %d learners at sequence %d", snap.Data.Learners, snap.Sequence)
	}
}
