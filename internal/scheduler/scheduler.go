// Package scheduler runs the periodic inbox analyses and keeps their run
// history for the status endpoint.
package scheduler

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// ErrJobRunning is returned when a job is triggered while its previous run
// is still in flight.
var ErrJobRunning = errors.New("job already running")

// Job represents a scheduled job
type Job interface {
	Run() error
	Name() string
}

// sourcedJob is a job bound to one inbox. Several instances of the same job
// may be registered, one per inbox, and are tracked separately.
type sourcedJob interface {
	Source() string
}

// JobStatus is the run history of one registered job
type JobStatus struct {
	Job            string     `json:"job"`
	Source         string     `json:"source,omitempty"`
	Schedule       string     `json:"schedule,omitempty"`
	Running        bool       `json:"running"`
	Runs           int        `json:"runs"`
	Failures       int        `json:"failures"`
	Skipped        int        `json:"skipped"`
	LastRun        *time.Time `json:"last_run,omitempty"`
	LastDurationMS int64      `json:"last_duration_ms"`
	LastError      string     `json:"last_error,omitempty"`
}

// Scheduler runs jobs on cron schedules (with a seconds field) and never
// lets two runs of the same job overlap.
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger

	mu   sync.Mutex
	jobs map[string]*JobStatus
}

// New creates a new scheduler
func New(log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds()),
		log:  log.With().Str("component", "scheduler").Logger(),
		jobs: make(map[string]*JobStatus),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Int("jobs", s.Entries()).Msg("Scheduler started")
}

// Stop stops the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}

// AddJob registers a job under a six-field cron expression or descriptor.
func (s *Scheduler) AddJob(schedule string, job Job) error {
	if _, err := s.cron.AddFunc(schedule, func() {
		_ = s.run(job, "schedule")
	}); err != nil {
		return err
	}

	s.mu.Lock()
	s.status(job).Schedule = schedule
	s.mu.Unlock()

	jobLog := s.jobLogger(job)
	jobLog.Info().Str("schedule", schedule).Msg("Job registered")
	return nil
}

// Entries returns the number of registered jobs
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// RunNow executes a job immediately, outside its schedule. It returns
// ErrJobRunning without running the job when a run is already in flight.
func (s *Scheduler) RunNow(job Job) error {
	return s.run(job, "manual")
}

// Statuses returns a snapshot of every known job, ordered by job and source.
func (s *Scheduler) Statuses() []JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]JobStatus, 0, len(s.jobs))
	for _, st := range s.jobs {
		cp := *st
		if st.LastRun != nil {
			t := *st.LastRun
			cp.LastRun = &t
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Job != out[j].Job {
			return out[i].Job < out[j].Job
		}
		return out[i].Source < out[j].Source
	})
	return out
}

func (s *Scheduler) run(job Job, trigger string) error {
	log := s.jobLogger(job).With().Str("trigger", trigger).Logger()

	s.mu.Lock()
	st := s.status(job)
	if st.Running {
		st.Skipped++
		s.mu.Unlock()
		log.Warn().Msg("Previous run still in flight, skipping")
		return ErrJobRunning
	}
	st.Running = true
	s.mu.Unlock()

	start := time.Now()
	log.Debug().Msg("Running job")
	err := job.Run()
	elapsed := time.Since(start)

	s.mu.Lock()
	st.Running = false
	st.Runs++
	st.LastRun = &start
	st.LastDurationMS = elapsed.Milliseconds()
	st.LastError = ""
	if err != nil {
		st.Failures++
		st.LastError = err.Error()
	}
	s.mu.Unlock()

	if err != nil {
		log.Error().Err(err).Dur("duration", elapsed).Msg("Job failed")
		return err
	}
	log.Info().Dur("duration", elapsed).Msg("Job completed")
	return nil
}

// status returns the tracked entry for a job, creating it on first sight.
// Callers hold s.mu.
func (s *Scheduler) status(job Job) *JobStatus {
	name, source := job.Name(), jobSource(job)
	key := name + "\x00" + source
	st, ok := s.jobs[key]
	if !ok {
		st = &JobStatus{Job: name, Source: source}
		s.jobs[key] = st
	}
	return st
}

func (s *Scheduler) jobLogger(job Job) zerolog.Logger {
	ctx := s.log.With().Str("job", job.Name())
	if source := jobSource(job); source != "" {
		ctx = ctx.Str("source", source)
	}
	return ctx.Logger()
}

func jobSource(job Job) string {
	if sj, ok := job.(sourcedJob); ok {
		return sj.Source()
	}
	return ""
}
