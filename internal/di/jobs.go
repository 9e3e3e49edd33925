package di

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/fundrisk/internal/config"
	"github.com/aristath/fundrisk/internal/modules/sources"
	"github.com/aristath/fundrisk/internal/scheduler"
)

// S3ClientFactory builds the object storage client for an S3 inbox
type S3ClientFactory func(ctx context.Context, cfg sources.S3Config) (sources.S3API, error)

// DefaultS3ClientFactory connects with the AWS SDK
func DefaultS3ClientFactory(ctx context.Context, cfg sources.S3Config) (sources.S3API, error) {
	client, err := sources.NewS3Client(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// RegisterJobs creates the scheduler and registers the inbox analysis jobs.
// Nothing is registered when no inbox is configured.
func RegisterJobs(ctx context.Context, container *Container, cfg *config.Config, newS3 S3ClientFactory, log zerolog.Logger) (*JobInstances, error) {
	if container == nil || container.Service == nil {
		return nil, fmt.Errorf("container services must be initialized before jobs")
	}

	container.Scheduler = scheduler.New(log)
	instances := &JobInstances{}

	if !cfg.InboxEnabled() {
		log.Info().Msg("No inbox configured, scheduled analysis disabled")
		return instances, nil
	}

	var inboxes []sources.Source
	if cfg.Inbox.Dir != "" {
		inboxes = append(inboxes, sources.NewDirSource(cfg.Inbox.Dir, container.Loader))
	}
	if cfg.S3.Enabled() {
		if newS3 == nil {
			newS3 = DefaultS3ClientFactory
		}
		client, err := newS3(ctx, cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("failed to create s3 client: %w", err)
		}
		inboxes = append(inboxes, sources.NewS3Source(client, cfg.S3.Bucket, cfg.S3.Prefix, container.Loader, log))
	}

	for _, inbox := range inboxes {
		job := scheduler.NewInboxAnalysisJob(scheduler.InboxAnalysisConfig{
			Log:      log.With().Str("inbox", inbox.Name()).Logger(),
			Source:   inbox,
			Analyzer: container.Service,
		})
		if err := container.Scheduler.AddJob(cfg.Inbox.Schedule, job); err != nil {
			return nil, fmt.Errorf("failed to register inbox job for %s: %w", inbox.Name(), err)
		}
		instances.InboxAnalysis = append(instances.InboxAnalysis, job)
	}

	return instances, nil
}
