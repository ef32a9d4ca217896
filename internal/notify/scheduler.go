package notify

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/lenta-assistant/pkg/logging"
)

// Runner is one scheduled unit of work.
type Runner interface {
	Run(ctx context.Context) (Result, error)
}

// Scheduler runs a job every interval until its context ends.
type Scheduler struct {
	runner   Runner
	interval time.Duration
	logger   zerolog.Logger
}

// NewScheduler creates a scheduler for runner.
func NewScheduler(runner Runner, interval time.Duration) *Scheduler {
	return &Scheduler{
		runner:   runner,
		interval: interval,
		logger:   logging.NewLogger("notify-scheduler"),
	}
}

// Start blocks, running the job on every tick. Run errors are logged by the
// job and do not stop the loop. Returns when ctx is done.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info().Dur("interval", s.interval).Msg("Discount scheduler started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Discount scheduler stopped")
			return
		case <-ticker.C:
			_, _ = s.runner.Run(ctx)
		}
	}
}
