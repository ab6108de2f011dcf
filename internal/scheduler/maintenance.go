package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateSchedule checks a standard five-field cron expression.
func ValidateSchedule(schedule string) error {
	_, err := cronParser.Parse(schedule)
	return err
}

// Job is a named piece of periodic maintenance.
type Job struct {
	Name     string
	Schedule string
	Run      func(ctx context.Context) error
}

// MaintenanceScheduler fires maintenance jobs on their cron schedules.
type MaintenanceScheduler struct {
	jobs []Job

	cron      *cron.Cron
	entries   map[string]cron.EntryID
	mu        sync.RWMutex
	isRunning bool
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewMaintenanceScheduler(jobs ...Job) *MaintenanceScheduler {
	return &MaintenanceScheduler{
		jobs:    jobs,
		cron:    cron.New(cron.WithParser(cronParser)),
		entries: make(map[string]cron.EntryID),
	}
}

// Start schedules every job with a non-empty schedule. Jobs stop firing
// once ctx is cancelled or Stop is called.
func (s *MaintenanceScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	for _, job := range s.jobs {
		if job.Schedule == "" {
			log.Printf("Maintenance scheduler: %s disabled", job.Name)
			continue
		}
		if err := ValidateSchedule(job.Schedule); err != nil {
			return fmt.Errorf("invalid cron schedule '%s' for %s: %w", job.Schedule, job.Name, err)
		}
	}

	s.ctx, s.cancel = context.WithCancel(ctx)

	for _, job := range s.jobs {
		if job.Schedule == "" {
			continue
		}
		job, jobCtx := job, s.ctx
		entryID, err := s.cron.AddFunc(job.Schedule, func() {
			runJob(jobCtx, job)
		})
		if err != nil {
			s.cancel()
			return fmt.Errorf("failed to schedule %s: %w", job.Name, err)
		}
		s.entries[job.Name] = entryID
	}

	s.cron.Start()
	s.isRunning = true

	for name, id := range s.entries {
		log.Printf("Maintenance scheduler: %s scheduled, next run %v", name, s.cron.Entry(id).Next)
	}

	go func(done <-chan struct{}) {
		<-done
		s.Stop()
	}(s.ctx.Done())

	return nil
}

// Stop waits for running jobs and stops the scheduler.
func (s *MaintenanceScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	<-s.cron.Stop().Done()
	s.cancel()
	s.isRunning = false

	log.Printf("Maintenance scheduler: stopped")
}

// RunNow runs the named job synchronously, outside its schedule.
func (s *MaintenanceScheduler) RunNow(ctx context.Context, name string) error {
	for _, job := range s.jobs {
		if job.Name == name {
			return job.Run(ctx)
		}
	}
	return fmt.Errorf("unknown maintenance job %q", name)
}

func (s *MaintenanceScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRunTime returns when the named job fires next, or nil if it is not scheduled.
func (s *MaintenanceScheduler) NextRunTime(name string) *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	id, ok := s.entries[name]
	if !ok {
		return nil
	}
	next := s.cron.Entry(id).Next
	return &next
}

func runJob(ctx context.Context, job Job) {
	start := time.Now()
	if err := job.Run(ctx); err != nil {
		log.Printf("Maintenance %s: failed: %v", job.Name, err)
		return
	}
	log.Printf("Maintenance %s: done in %v", job.Name, time.Since(start).Round(time.Millisecond))
}
