// Package scheduler runs the periodic background jobs behind the API: the
// watchlist quote refresh and the expired-session sweep.
package scheduler

import (
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is a named unit of scheduled work.
type Job interface {
	Name() string
	Run() error
}

type funcJob struct {
	name string
	fn   func() error
}

// NewJob adapts a function to the Job interface.
func NewJob(name string, fn func() error) Job {
	return funcJob{name: name, fn: fn}
}

func (j funcJob) Name() string { return j.name }
func (j funcJob) Run() error   { return j.fn() }

// Scheduler manages the cron-driven background jobs.
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
}

// New creates a scheduler. Jobs only run after Start.
func New(log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		log:  log,
	}
}

// AddJob registers a job under a cron schedule. Standard five-field specs
// and the @every / @hourly shorthands are accepted. Job failures are logged
// and do not unregister the job.
func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		s.log.Debug().Str("job", job.Name()).Msg("job starting")
		if err := job.Run(); err != nil {
			s.log.Error().Err(err).Str("job", job.Name()).Msg("job failed")
			return
		}
		s.log.Debug().Str("job", job.Name()).Msg("job completed")
	})
	if err != nil {
		return err
	}

	s.log.Info().Str("job", job.Name()).Str("schedule", schedule).Msg("job registered")
	return nil
}

// Start begins running registered jobs on their schedules.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("scheduler started")
}

// Stop halts scheduling and waits for any running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("scheduler stopped")
}
