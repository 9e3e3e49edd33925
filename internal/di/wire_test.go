package di

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/fundrisk/internal/config"
	"github.com/aristath/fundrisk/internal/modules/risk"
	"github.com/aristath/fundrisk/internal/modules/sources"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DataDir:      t.TempDir(),
		LogLevel:     "info",
		Port:         8001,
		MinFiles:     21,
		MaxFiles:     500,
		MaxFileBytes: 20 << 20,
		Workers:      4,
		VaRZ:         1.645,
		HorizonDays:  21,
		VaRModel:     string(risk.ModelParametric),
		Coefficients: risk.DefaultConfig().Coefficients,
		Inbox:        &config.InboxConfig{Schedule: "0 0 7 * * *"},
	}
}

func TestWire(t *testing.T) {
	cfg := testConfig(t)

	container, jobs, err := Wire(context.Background(), cfg, nil, zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, container)
	require.NotNil(t, jobs)

	assert.NotNil(t, container.Registry)
	assert.NotNil(t, container.Service)
	assert.Same(t, container.Store, container.Service.Store())
	assert.Same(t, container.Loader, container.Service.Loader())
	assert.Equal(t, 500, container.Loader.Limits().MaxFiles)
	assert.NotNil(t, container.Scheduler)
	assert.Empty(t, jobs.InboxAnalysis)
}

func TestWire_InboxJobs(t *testing.T) {
	cfg := testConfig(t)
	cfg.Inbox.Dir = t.TempDir()
	cfg.S3 = sources.S3Config{Bucket: "funds", Prefix: "inbox/"}

	var requested sources.S3Config
	factory := func(ctx context.Context, c sources.S3Config) (sources.S3API, error) {
		requested = c
		return nil, nil
	}

	container, jobs, err := Wire(context.Background(), cfg, factory, zerolog.Nop())
	require.NoError(t, err)
	assert.Len(t, jobs.InboxAnalysis, 2)
	assert.Equal(t, 2, container.Scheduler.Entries())
	assert.Equal(t, "funds", requested.Bucket)

	statuses := container.Scheduler.Statuses()
	require.Len(t, statuses, 2)
	assert.Equal(t, cfg.Inbox.Dir, statuses[0].Source)
	assert.Equal(t, "s3://funds/inbox/", statuses[1].Source)
	assert.Equal(t, cfg.Inbox.Schedule, statuses[1].Schedule)
}

func TestWire_Errors(t *testing.T) {
	t.Run("s3 client failure", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.S3 = sources.S3Config{Bucket: "funds"}
		factory := func(ctx context.Context, c sources.S3Config) (sources.S3API, error) {
			return nil, errors.New("no credentials")
		}

		_, _, err := Wire(context.Background(), cfg, factory, zerolog.Nop())
		assert.ErrorContains(t, err, "no credentials")
	})

	t.Run("bad schedule", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Inbox.Dir = t.TempDir()
		cfg.Inbox.Schedule = "daily"

		_, _, err := Wire(context.Background(), cfg, nil, zerolog.Nop())
		assert.ErrorContains(t, err, "failed to register inbox job")
	})

	t.Run("jobs before services", func(t *testing.T) {
		_, err := RegisterJobs(context.Background(), &Container{}, testConfig(t), nil, zerolog.Nop())
		assert.Error(t, err)
	})
}
