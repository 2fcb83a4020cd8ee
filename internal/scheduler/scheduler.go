package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Roller advances a relative date range to the given time.
type Roller interface {
	Roll(now time.Time) (bool, error)
}

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron   *cron.Cron
	Roller Roller
	Logger *zap.Logger
	// Report, when set, is logged after every roll.
	Report func(now time.Time) string

	now func() time.Time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(r Roller, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		Cron:   cron.New(cron.WithSeconds()),
		Roller: r,
		Logger: logger,
		now:    time.Now,
	}
}

// RegisterAll registers the daily preset roll.
func (s *Scheduler) RegisterAll(rollCron string) error {
	if _, err := s.Cron.AddFunc(rollCron, s.rollTask); err != nil {
		return fmt.Errorf("register roll task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Logger.Info("scheduler started", zap.Int("jobs", len(s.Cron.Entries())))
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Logger.Info("scheduler stopped")
}

// RunRollNow executes the roll task immediately.
func (s *Scheduler) RunRollNow() {
	s.rollTask()
}

func (s *Scheduler) rollTask() {
	now := s.now()
	rolled, err := s.Roller.Roll(now)
	if err != nil {
		s.Logger.Error("roll date preset", zap.Error(err))
		return
	}
	if !rolled {
		s.Logger.Debug("no relative preset active, nothing to roll")
		return
	}
	s.Logger.Info("date preset rolled", zap.Time("now", now))
	if s.Report != nil {
		s.Logger.Info("dashboard status\n" + s.Report(now))
	}
}
