package cron

import (
	"context"
	"fmt"
	"time"

	cronlib "github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/shreeglass/erp-backend/pkg/db/models"
	pkgerrors "github.com/shreeglass/erp-backend/pkg/errors"
	"github.com/shreeglass/erp-backend/pkg/logger"
	"github.com/shreeglass/erp-backend/pkg/metrics"
)

// Run statuses recorded in scheduler_logs.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
	StatusSkipped = "skipped"
)

// ServiceParams configure the scheduler.
type ServiceParams struct {
	Logger   *logger.Logger
	Registry *Registry
	DB       *gorm.DB
	Metrics  *metrics.CronJobMetrics
	Timezone string
	// LockFor builds the cross-instance lock for one job. Nil disables
	// distributed locking (single-instance deployments and tests).
	LockFor func(job string) Lock
}

// Service schedules registered jobs in the configured timezone. Every run,
// scheduled or manual, goes through Execute so both paths share the lock,
// the log row, and the metrics.
type Service struct {
	logg     *logger.Logger
	registry *Registry
	db       *gorm.DB
	metrics  *metrics.CronJobMetrics
	lockFor  func(job string) Lock
	cron     *cronlib.Cron
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db required")
	}
	registry := params.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	tz := params.Timezone
	if tz == "" {
		tz = "Asia/Kolkata"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", tz, err)
	}
	return &Service{
		logg:     params.Logger,
		registry: registry,
		db:       params.DB,
		metrics:  params.Metrics,
		lockFor:  params.LockFor,
		cron:     cronlib.New(cronlib.WithLocation(loc)),
	}, nil
}

// Start schedules every registered job and begins ticking. It returns
// immediately; Stop drains in-flight runs.
func (s *Service) Start(ctx context.Context) error {
	for _, job := range s.registry.Jobs() {
		job := job
		_, err := s.cron.AddFunc(job.Spec(), func() {
			s.Execute(ctx, job)
		})
		if err != nil {
			return fmt.Errorf("schedule %s (%q): %w", job.Name(), job.Spec(), err)
		}
	}
	s.cron.Start()
	s.logg.Info(ctx, "scheduler started")
	return nil
}

// Stop halts scheduling and waits for running jobs to finish.
func (s *Service) Stop() {
	<-s.cron.Stop().Done()
}

// RunNow executes one job by name outside its schedule. It is the manual
// trigger behind the admin endpoint and runs the identical code path.
func (s *Service) RunNow(ctx context.Context, name string) (*models.SchedulerLog, error) {
	job := s.registry.Get(name)
	if job == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "unknown scheduler job: "+name)
	}
	return s.Execute(ctx, job), nil
}

// Execute runs one job under its lock and appends the scheduler log row.
func (s *Service) Execute(ctx context.Context, job Job) *models.SchedulerLog {
	jobCtx := s.logg.WithField(ctx, "job", job.Name())
	jobCtx = s.logg.WithField(jobCtx, "event", "cron.job")

	if s.lockFor != nil {
		lock := s.lockFor(job.Name())
		locked, err := lock.Acquire(jobCtx)
		if err != nil {
			s.logg.Error(jobCtx, "job lock acquire failed", err)
			return s.record(jobCtx, job.Name(), StatusFailure, "", err)
		}
		if !locked {
			s.logg.Info(jobCtx, "job already running elsewhere; skipping")
			return s.record(jobCtx, job.Name(), StatusSkipped, "held by another instance", nil)
		}
		defer func() {
			if relErr := lock.Release(jobCtx); relErr != nil {
				s.logg.Error(jobCtx, "failed to release job lock", relErr)
			}
		}()
	}

	s.logg.Info(jobCtx, "job start")
	start := time.Now()
	result, err := job.Run(jobCtx)
	duration := time.Since(start)
	if s.metrics != nil {
		s.metrics.ObserveDuration(job.Name(), duration)
	}
	jobCtx = s.logg.WithField(jobCtx, "duration_ms", duration.Milliseconds())
	if err != nil {
		s.logg.Error(jobCtx, "job failed", err)
		if s.metrics != nil {
			s.metrics.IncFailure(job.Name())
		}
		return s.record(jobCtx, job.Name(), StatusFailure, result, err)
	}
	s.logg.Info(jobCtx, "job completed")
	if s.metrics != nil {
		s.metrics.IncSuccess(job.Name())
	}
	return s.record(jobCtx, job.Name(), StatusSuccess, result, nil)
}

func (s *Service) record(ctx context.Context, job, status, result string, runErr error) *models.SchedulerLog {
	row := &models.SchedulerLog{Job: job, Status: status, Result: result}
	if runErr != nil {
		msg := runErr.Error()
		row.Error = &msg
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		s.logg.Error(ctx, "failed to append scheduler log", err)
	}
	return row
}

// History returns the most recent log rows for one job, newest first.
func (s *Service) History(ctx context.Context, job string, limit int) ([]models.SchedulerLog, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []models.SchedulerLog
	query := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit)
	if job != "" {
		query = query.Where("job = ?", job)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "scheduler history")
	}
	return rows, nil
}
