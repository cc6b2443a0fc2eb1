package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Dispatcher hands periodic jobs to whatever executes them.
type Dispatcher interface {
	EnqueueOverdueReport(runID string) error
	EnqueueAuditCleanup(retentionDays int) error
}

type Config struct {
	Enabled            bool
	ReportSchedule     string
	CleanupSchedule    string
	AuditRetentionDays int
}

// OverdueScheduler periodically dispatches the overdue report and the audit
// cleanup.
type OverdueScheduler struct {
	dispatcher Dispatcher
	config     Config

	cron       *cron.Cron
	reportID   cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

func NewOverdueScheduler(dispatcher Dispatcher, cfg Config) *OverdueScheduler {
	return &OverdueScheduler{
		dispatcher: dispatcher,
		config:     cfg,
		cron:       cron.New(cron.WithParser(parser), cron.WithLocation(time.UTC)),
	}
}

// Start registers both jobs and starts the cron loop. It is a no-op when the
// scheduler is disabled or already running.
func (s *OverdueScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if !s.config.Enabled {
		log.Info().Msg("Overdue report scheduler disabled")
		return nil
	}

	if err := ValidateSchedule(s.config.ReportSchedule); err != nil {
		return fmt.Errorf("invalid report schedule '%s': %w", s.config.ReportSchedule, err)
	}
	reportID, err := s.cron.AddFunc(s.config.ReportSchedule, func() { s.dispatchReport() })
	if err != nil {
		return fmt.Errorf("failed to schedule overdue report: %w", err)
	}
	s.reportID = reportID

	if s.config.CleanupSchedule != "" {
		if err := ValidateSchedule(s.config.CleanupSchedule); err != nil {
			return fmt.Errorf("invalid cleanup schedule '%s': %w", s.config.CleanupSchedule, err)
		}
		if _, err := s.cron.AddFunc(s.config.CleanupSchedule, func() { s.dispatchCleanup() }); err != nil {
			return fmt.Errorf("failed to schedule audit cleanup: %w", err)
		}
	}

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Info().
		Str("schedule", s.config.ReportSchedule).
		Time("next_run", s.cron.Entry(s.reportID).Next).
		Msg("Overdue report scheduler started")

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for a running job to finish.
func (s *OverdueScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	<-s.cron.Stop().Done()
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}
	s.isRunning = false

	log.Info().Msg("Overdue report scheduler stopped")
}

// RunNow dispatches an overdue report outside the schedule and returns its run id.
func (s *OverdueScheduler) RunNow() (string, error) {
	runID := uuid.NewString()
	if err := s.dispatcher.EnqueueOverdueReport(runID); err != nil {
		return "", err
	}
	return runID, nil
}

func (s *OverdueScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRunTime is nil while the scheduler is stopped.
func (s *OverdueScheduler) NextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	next := s.cron.Entry(s.reportID).Next
	return &next
}

func (s *OverdueScheduler) dispatchReport() {
	runID, err := s.RunNow()
	if err != nil {
		log.Error().Err(err).Msg("Failed to dispatch overdue report")
		return
	}
	log.Debug().Str("run_id", runID).Msg("Overdue report dispatched")
}

func (s *OverdueScheduler) dispatchCleanup() {
	if err := s.dispatcher.EnqueueAuditCleanup(s.config.AuditRetentionDays); err != nil {
		log.Error().Err(err).Msg("Failed to dispatch audit cleanup")
	}
}

// ValidateSchedule checks a five-field cron expression.
func ValidateSchedule(schedule string) error {
	_, err := parser.Parse(schedule)
	return err
}

// NextRun returns the first activation of schedule strictly after from.
func NextRun(schedule string, from time.Time) (time.Time, error) {
	sched, err := parser.Parse(schedule)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(from), nil
}
