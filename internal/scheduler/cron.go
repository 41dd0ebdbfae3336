package scheduler

import (
	"fmt"

	"github.com/mbonnet/cinelist/internal/controllers"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler manages scheduled maintenance tasks
type Scheduler struct {
	cron          *cron.Cron
	cleanupCtrl   *controllers.CleanupController
	intervalHours int
	logger        *logrus.Logger
}

// NewScheduler creates a new scheduler
func NewScheduler(cleanupCtrl *controllers.CleanupController, intervalHours int, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:          cron.New(),
		cleanupCtrl:   cleanupCtrl,
		intervalHours: intervalHours,
		logger:        logger,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.logger.Info("Starting scheduler")

	spec := fmt.Sprintf("@every %dh", s.intervalHours)
	_, err := s.cron.AddFunc(spec, func() {
		s.runCleanup()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule cleanup: %w", err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) runCleanup() {
	s.logger.Debug("Running orphaned image sweep")
	if err := s.cleanupCtrl.SweepOrphanedImages(); err != nil {
		s.logger.WithError(err).Error("Orphaned image sweep failed")
	}
}
