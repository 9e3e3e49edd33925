package scheduler

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	runs atomic.Int32
	err  error
}

func (j *countingJob) Name() string { return "counting" }

func (j *countingJob) Run() error {
	j.runs.Add(1)
	return j.err
}

func TestScheduler_AddJob(t *testing.T) {
	tests := []struct {
		name     string
		schedule string
		wantErr  bool
	}{
		{name: "six field cron", schedule: "0 0 7 * * *"},
		{name: "descriptor", schedule: "@every 1h"},
		{name: "five fields rejected", schedule: "0 7 * * *", wantErr: true},
		{name: "garbage", schedule: "whenever", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(zerolog.Nop())
			err := s.AddJob(tt.schedule, &countingJob{})
			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, 0, s.Entries())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 1, s.Entries())
		})
	}
}

func TestScheduler_RunsScheduledJob(t *testing.T) {
	s := New(zerolog.Nop())
	job := &countingJob{err: errors.New("boom")}
	require.NoError(t, s.AddJob("@every 1s", job))

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool { return job.runs.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
}

func TestScheduler_RunNow(t *testing.T) {
	s := New(zerolog.Nop())

	job := &countingJob{}
	require.NoError(t, s.RunNow(job))
	assert.Equal(t, int32(1), job.runs.Load())

	failing := &countingJob{err: errors.New("boom")}
	assert.EqualError(t, s.RunNow(failing), "boom")
}

type inboxJob struct {
	source  string
	release chan struct{}
	started chan struct{}
}

func (j *inboxJob) Name() string   { return "inbox_analysis" }
func (j *inboxJob) Source() string { return j.source }

func (j *inboxJob) Run() error {
	if j.started != nil {
		close(j.started)
	}
	if j.release != nil {
		<-j.release
	}
	return nil
}

func TestScheduler_Statuses(t *testing.T) {
	s := New(zerolog.Nop())

	ok := &countingJob{}
	s3Job := &inboxJob{source: "s3://funds/inbox/"}
	other := &inboxJob{source: "/srv/inbox"}
	require.NoError(t, s.AddJob("@every 1h", s3Job))
	require.NoError(t, s.AddJob("@every 1h", other))

	require.NoError(t, s.RunNow(ok))
	require.NoError(t, s.RunNow(ok))
	require.NoError(t, s.RunNow(other))

	broken := &countingJob{err: errors.New("bucket unreachable")}
	assert.Error(t, s.RunNow(broken))

	statuses := s.Statuses()
	require.Len(t, statuses, 3)

	// countingJob instances share a name and no source, so they share history
	assert.Equal(t, "counting", statuses[0].Job)
	assert.Equal(t, 3, statuses[0].Runs)
	assert.Equal(t, 1, statuses[0].Failures)
	assert.Equal(t, "bucket unreachable", statuses[0].LastError)
	assert.Empty(t, statuses[0].Schedule)

	assert.Equal(t, "inbox_analysis", statuses[1].Job)
	assert.Equal(t, "/srv/inbox", statuses[1].Source)
	assert.Equal(t, "@every 1h", statuses[1].Schedule)
	assert.Equal(t, 1, statuses[1].Runs)
	require.NotNil(t, statuses[1].LastRun)
	assert.Empty(t, statuses[1].LastError)

	assert.Equal(t, "s3://funds/inbox/", statuses[2].Source)
	assert.Equal(t, 0, statuses[2].Runs)
	assert.Nil(t, statuses[2].LastRun)
}

func TestScheduler_SkipsOverlappingRun(t *testing.T) {
	s := New(zerolog.Nop())
	job := &inboxJob{
		source:  "/srv/inbox",
		release: make(chan struct{}),
		started: make(chan struct{}),
	}

	done := make(chan error, 1)
	go func() { done <- s.RunNow(job) }()
	<-job.started

	assert.ErrorIs(t, s.RunNow(job), ErrJobRunning)

	statuses := s.Statuses()
	require.Len(t, statuses, 1)
	assert.True(t, statuses[0].Running)
	assert.Equal(t, 1, statuses[0].Skipped)

	close(job.release)
	require.NoError(t, <-done)

	statuses = s.Statuses()
	assert.False(t, statuses[0].Running)
	assert.Equal(t, 1, statuses[0].Runs)
}
