package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/pulsesocial/pulse/internal/domain/maintenance"
	"github.com/pulsesocial/pulse/internal/pkg/logger"
)

// SchedulerConfig holds six-field (with seconds) cron specs for the sweeps
type SchedulerConfig struct {
	MonthlyResetSpec string
	TrialExpirySpec  string
	JobTimeout       time.Duration
}

// ScheduledJob describes one registered sweep
type ScheduledJob struct {
	Name       string              `json:"name"`
	Schedule   string              `json:"schedule"`
	NextRun    *time.Time          `json:"next_run,omitempty"`
	LastRun    *time.Time          `json:"last_run,omitempty"`
	LastResult *maintenance.Result `json:"last_result,omitempty"`
	LastError  string              `json:"last_error,omitempty"`
}

type jobEntry struct {
	spec    string
	run     func(ctx context.Context) (*maintenance.Result, error)
	entryID cron.EntryID
	lastRun *time.Time
	result  *maintenance.Result
	lastErr string
}

// Scheduler runs the maintenance sweeps in-process on cron schedules
type Scheduler struct {
	service maintenance.Service
	cfg     SchedulerConfig
	logger  *logger.Logger

	cron         *cron.Cron
	jobs         map[string]*jobEntry
	order        []string
	entriesMutex sync.RWMutex
	isRunning    bool
	runningMutex sync.RWMutex
}

// NewScheduler creates a scheduler for service's sweeps
func NewScheduler(service maintenance.Service, cfg SchedulerConfig, log *logger.Logger) *Scheduler {
	if cfg.JobTimeout == 0 {
		cfg.JobTimeout = 5 * time.Minute
	}
	s := &Scheduler{
		service: service,
		cfg:     cfg,
		logger:  log,
		jobs:    make(map[string]*jobEntry),
	}
	s.register(maintenance.JobMonthlyReset, cfg.MonthlyResetSpec, service.MonthlyReset)
	s.register(maintenance.JobTrialExpiry, cfg.TrialExpirySpec, service.ExpireTrials)
	return s
}

func (s *Scheduler) register(name, spec string, run func(ctx context.Context) (*maintenance.Result, error)) {
	if spec == "" {
		return
	}
	s.jobs[name] = &jobEntry{spec: spec, run: run}
	s.order = append(s.order, name)
}

// Start validates every schedule and starts the cron loop
func (s *Scheduler) Start() error {
	s.runningMutex.Lock()
	defer s.runningMutex.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	c := cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	s.entriesMutex.Lock()
	for _, name := range s.order {
		name, entry := name, s.jobs[name]
		id, err := c.AddFunc(entry.spec, func() { s.execute(name) })
		if err != nil {
			s.entriesMutex.Unlock()
			return fmt.Errorf("invalid schedule %q for %s: %w", entry.spec, name, err)
		}
		entry.entryID = id
	}
	s.entriesMutex.Unlock()

	s.cron = c
	s.cron.Start()
	s.isRunning = true

	s.logger.WithFields(map[string]interface{}{
		"jobs_loaded": len(s.order),
	}).Info("Maintenance scheduler started")
	return nil
}

// Stop stops the cron loop and waits for running sweeps
func (s *Scheduler) Stop() {
	s.runningMutex.Lock()
	defer s.runningMutex.Unlock()

	if !s.isRunning {
		return
	}
	<-s.cron.Stop().Done()
	s.isRunning = false
	s.logger.Info("Maintenance scheduler stopped")
}

// IsRunning returns whether the scheduler is running
func (s *Scheduler) IsRunning() bool {
	s.runningMutex.RLock()
	defer s.runningMutex.RUnlock()
	return s.isRunning
}

// Run executes the named sweep immediately
func (s *Scheduler) Run(ctx context.Context, name string) (*maintenance.Result, error) {
	s.entriesMutex.RLock()
	entry, ok := s.jobs[name]
	s.entriesMutex.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown job %q", name)
	}
	result, err := entry.run(ctx)

	now := time.Now().UTC()
	s.entriesMutex.Lock()
	entry.lastRun = &now
	entry.result = result
	entry.lastErr = ""
	if err != nil {
		entry.lastErr = err.Error()
	}
	s.entriesMutex.Unlock()
	return result, err
}

// Jobs lists the registered sweeps with their next and last runs
func (s *Scheduler) Jobs() []ScheduledJob {
	s.entriesMutex.RLock()
	defer s.entriesMutex.RUnlock()

	out := make([]ScheduledJob, 0, len(s.order))
	for _, name := range s.order {
		entry := s.jobs[name]
		j := ScheduledJob{
			Name:       name,
			Schedule:   entry.spec,
			LastRun:    entry.lastRun,
			LastResult: entry.result,
			LastError:  entry.lastErr,
		}
		if s.cron != nil && entry.entryID != 0 {
			if next := s.cron.Entry(entry.entryID).Next; !next.IsZero() {
				next = next.UTC()
				j.NextRun = &next
			}
		}
		out = append(out, j)
	}
	return out
}

func (s *Scheduler) execute(name string) {
	runID := uuid.New().String()
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.JobTimeout)
	defer cancel()

	log := s.logger.WithFields(map[string]interface{}{
		"job":    name,
		"run_id": runID,
	})
	log.Info("Scheduled maintenance run started")

	start := time.Now()
	if _, err := s.Run(ctx, name); err != nil {
		log.ErrorWithErr(err, "Scheduled maintenance run failed")
		return
	}
	log.With("duration_ms", time.Since(start).Milliseconds()).Info("Scheduled maintenance run completed")
}
