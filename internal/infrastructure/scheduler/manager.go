// Package scheduler provides unified scheduler management using gocron v2.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"mirra/internal/shared/config"
	"mirra/internal/shared/logger"
)

// tickTimeout bounds one incremental pass.
const tickTimeout = 5 * time.Minute

// SyncJob runs one incremental pass for one project.
type SyncJob interface {
	Execute(ctx context.Context, project config.ProjectConfig) error
}

// SchedulerManager manages the per-project sync jobs using gocron v2.
// Each project gets its own singleton job: a tick that fires while the
// previous one is still running is skipped, never queued.
type SchedulerManager struct {
	scheduler gocron.Scheduler
	guard     *tickGuard
	logger    logger.Interface

	started   bool
	startedMu sync.RWMutex
}

// NewSchedulerManager creates a new SchedulerManager instance.
func NewSchedulerManager(log logger.Interface) (*SchedulerManager, error) {
	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(time.UTC),
	)
	if err != nil {
		return nil, err
	}

	return &SchedulerManager{
		scheduler: scheduler,
		guard:     newTickGuard(),
		logger:    log,
	}, nil
}

// RegisterSyncJobs registers one incremental sync job per project. The
// first tick fires immediately on Start.
func (m *SchedulerManager) RegisterSyncJobs(job SyncJob, projects []config.ProjectConfig, interval time.Duration) error {
	for _, project := range projects {
		_, err := m.scheduler.NewJob(
			gocron.DurationJob(interval),
			gocron.NewTask(func() {
				m.runTick(job, project)
			}),
			gocron.WithStartAt(gocron.WithStartImmediately()),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
			gocron.WithTags("sync", project.Key),
			gocron.WithName(jobName(project.Key)),
		)
		if err != nil {
			return err
		}
	}

	m.logger.Infow("registered sync jobs",
		"projects", len(projects), "interval", interval)
	return nil
}

func (m *SchedulerManager) runTick(job SyncJob, project config.ProjectConfig) {
	if !m.guard.TryAcquire(project.Key) {
		m.logger.Warnw("previous sync pass still running, skipping tick",
			"project", project.Key)
		return
	}
	defer m.guard.Release(project.Key)

	ctx, cancel := context.WithTimeout(context.Background(), tickTimeout)
	defer cancel()

	startTime := time.Now()
	if err := job.Execute(ctx, project); err != nil {
		m.logger.Errorw("sync pass failed",
			"project", project.Key,
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}

	m.logger.Debugw("sync pass finished",
		"project", project.Key,
		"duration", time.Since(startTime),
	)
}

// RunGuard exposes the run-slot guard so HTTP-triggered passes share
// it with scheduled ticks.
type RunGuard interface {
	TryAcquire(projectKey string) bool
	Release(projectKey string)
}

// Guard returns the manager's run-slot guard.
func (m *SchedulerManager) Guard() RunGuard {
	return m.guard
}

// NextRun returns the next scheduled tick for a project.
func (m *SchedulerManager) NextRun(projectKey string) (time.Time, bool) {
	for _, job := range m.scheduler.Jobs() {
		if job.Name() != jobName(projectKey) {
			continue
		}
		next, err := job.NextRun()
		if err != nil {
			return time.Time{}, false
		}
		return next, true
	}
	return time.Time{}, false
}

// Start starts the scheduler and all registered jobs.
func (m *SchedulerManager) Start() {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if m.started {
		return
	}

	m.scheduler.Start()
	m.started = true
	m.logger.Infow("scheduler manager started", "job_count", len(m.scheduler.Jobs()))
}

// Stop gracefully stops the scheduler. It waits for running jobs to
// complete before returning.
func (m *SchedulerManager) Stop() error {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if !m.started {
		return nil
	}

	m.logger.Infow("stopping scheduler manager")

	err := m.scheduler.Shutdown()
	m.started = false

	if err != nil {
		m.logger.Errorw("scheduler manager shutdown with error", "error", err)
		return err
	}

	m.logger.Infow("scheduler manager stopped")
	return nil
}

// IsStarted returns whether the scheduler is running.
func (m *SchedulerManager) IsStarted() bool {
	m.startedMu.RLock()
	defer m.startedMu.RUnlock()
	return m.started
}

func jobName(projectKey string) string {
	return "sync-" + projectKey
}
