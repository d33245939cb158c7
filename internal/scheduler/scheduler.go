package scheduler

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

// Scheduler runs the periodic maintenance job: refreshing the cached
// remote configuration and compacting the persistent store.
type Scheduler struct {
	scheduler *gocron.Scheduler
	interval  time.Duration
	job       func()
}

// New creates a Scheduler running job every interval.
func New(interval time.Duration, job func()) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		interval:  interval,
		job:       job,
	}
}

// Start schedules the job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.job == nil {
		log.Println("scheduler: no maintenance job configured; nothing to schedule")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 15
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		log.Println("scheduler: running maintenance job")
		s.job()
		log.Println("scheduler: completed maintenance job")
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
