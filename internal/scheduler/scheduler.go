package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/dj0804/GrievanceInsight/infrastructure/logger"
)

// DefaultSchedule runs the snapshot daily at midnight.
const DefaultSchedule = "0 0 * * *"

// Scheduler runs the snapshotter on a cron schedule.
type Scheduler struct {
	cron        *cron.Cron
	parser      cron.Parser
	snapshotter *Snapshotter
	log         logger.Logger

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	entryID cron.EntryID
}

// New creates a Scheduler. Schedules use the standard five-field format.
func New(snapshotter *Snapshotter, log logger.Logger) *Scheduler {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	return &Scheduler{
		cron:        cron.New(cron.WithParser(parser), cron.WithChain(cron.Recover(cron.DefaultLogger))),
		parser:      parser,
		snapshotter: snapshotter,
		log:         log,
	}
}

// Start registers the snapshot job and starts the cron runner.
func (s *Scheduler) Start(ctx context.Context, schedule string) error {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	if _, err := s.parser.Parse(schedule); err != nil {
		return fmt.Errorf("failed to parse cron expression %q: %w", schedule, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.ctx, s.cancel = context.WithCancel(ctx)
	entryID, err := s.cron.AddFunc(schedule, s.run)
	if err != nil {
		s.cancel()
		return fmt.Errorf("failed to schedule snapshot: %w", err)
	}
	s.entryID = entryID
	s.cron.Start()

	s.log.Info("Snapshot scheduler started",
		logger.String("schedule", schedule),
		logger.Time("next_run", s.cron.Entry(entryID).Next),
	)
	return nil
}

// Stop halts the scheduler and waits for a running snapshot to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	if cancel != nil {
		cancel()
	}
	s.log.Info("Snapshot scheduler stopped")
}

func (s *Scheduler) run() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	if _, err := s.snapshotter.Capture(ctx); err != nil {
		s.log.Error("Scheduled snapshot failed", logger.Error(err))
	}
}
