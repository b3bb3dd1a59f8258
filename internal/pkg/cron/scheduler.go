package cron

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Job represents a scheduled job
type Job struct {
	Name     string
	Interval time.Duration
	Fn       func(ctx context.Context) error
}

// JobStatus is the observable state of one registered job.
type JobStatus struct {
	Name      string     `json:"name"`
	Interval  string     `json:"interval"`
	RunCount  int64      `json:"run_count"`
	LastRunAt *time.Time `json:"last_run_at,omitempty"`
	LastError string     `json:"last_error,omitempty"`
}

type jobState struct {
	job       Job
	runCount  int64
	lastRunAt *time.Time
	lastError string
}

// Scheduler manages scheduled jobs
type Scheduler struct {
	jobs   []*jobState
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewScheduler creates a new cron scheduler
func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		jobs:   make([]*jobState, 0),
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddJob adds a job to the scheduler
func (s *Scheduler) AddJob(name string, interval time.Duration, fn func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = append(s.jobs, &jobState{job: Job{
		Name:     name,
		Interval: interval,
		Fn:       fn,
	}})
	slog.Info("Cron job registered", "name", name, "interval", interval)
}

// Start begins running all scheduled jobs
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, state := range s.jobs {
		s.wg.Add(1)
		go s.runJob(state)
	}

	slog.Info("Cron scheduler started", "job_count", len(s.jobs))
}

// Stop gracefully stops all scheduled jobs
func (s *Scheduler) Stop() {
	slog.Info("Stopping cron scheduler...")
	s.cancel()
	s.wg.Wait()
	slog.Info("Cron scheduler stopped")
}

// Status reports each job's run count, last run time and last error.
func (s *Scheduler) Status() []JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	statuses := make([]JobStatus, 0, len(s.jobs))
	for _, state := range s.jobs {
		statuses = append(statuses, JobStatus{
			Name:      state.job.Name,
			Interval:  state.job.Interval.String(),
			RunCount:  state.runCount,
			LastRunAt: state.lastRunAt,
			LastError: state.lastError,
		})
	}
	return statuses
}

// runJob runs a single job on its schedule
func (s *Scheduler) runJob(state *jobState) {
	defer s.wg.Done()

	ticker := time.NewTicker(state.job.Interval)
	defer ticker.Stop()

	// Run immediately on start
	s.executeJob(state)

	for {
		select {
		case <-s.ctx.Done():
			slog.Info("Cron job stopping", "name", state.job.Name)
			return
		case <-ticker.C:
			s.executeJob(state)
		}
	}
}

// executeJob executes a job and records the outcome
func (s *Scheduler) executeJob(state *jobState) {
	start := time.Now()
	slog.Debug("Cron job starting", "name", state.job.Name)

	err := state.job.Fn(s.ctx)

	s.mu.Lock()
	state.runCount++
	state.lastRunAt = &start
	if err != nil {
		state.lastError = err.Error()
	} else {
		state.lastError = ""
	}
	s.mu.Unlock()

	if err != nil {
		slog.Error("Cron job failed", "name", state.job.Name, "error", err, "duration", time.Since(start))
	} else {
		slog.Debug("Cron job completed", "name", state.job.Name, "duration", time.Since(start))
	}
}

// RunOnce runs all jobs once (useful for testing)
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.mu.Lock()
	states := make([]*jobState, len(s.jobs))
	copy(states, s.jobs)
	s.mu.Unlock()

	for _, state := range states {
		if err := state.job.Fn(ctx); err != nil {
			slog.Error("Cron job failed", "name", state.job.Name, "error", err)
		}
	}
}
