package sources

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"
)

// KindDownload is reported for objects that could not be fetched
const KindDownload = "download_failed"

// S3API is the subset of the S3 client the source needs
type S3API interface {
	s3.ListObjectsV2APIClient
	manager.DownloadAPIClient
}

// S3Config locates a statement prefix in an S3-compatible bucket
type S3Config struct {
	Bucket    string
	Prefix    string
	Endpoint  string // custom endpoint for R2, MinIO and similar
	Region    string
	AccessKey string
	SecretKey string
}

// Enabled reports whether a bucket is configured
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

// NewS3Client builds a client from the configuration. Static credentials are
// used when given, otherwise the default AWS credential chain.
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

var _ Source = (*S3Source)(nil)

// S3Source loads every statement object under a prefix
type S3Source struct {
	client     S3API
	downloader *manager.Downloader
	bucket     string
	prefix     string
	loader     *Loader
	log        zerolog.Logger
}

// NewS3Source creates a new S3 statement source
func NewS3Source(client S3API, bucket, prefix string, loader *Loader, log zerolog.Logger) *S3Source {
	return &S3Source{
		client: client,
		downloader: manager.NewDownloader(client, func(d *manager.Downloader) {
			d.Concurrency = 1
		}),
		bucket: bucket,
		prefix: prefix,
		loader: loader,
		log:    log.With().Str("component", "s3_source").Str("bucket", bucket).Logger(),
	}
}

// Name identifies the source in reports
func (s *S3Source) Name() string {
	return "s3://" + s.bucket + "/" + s.prefix
}

// List returns the statement objects under the prefix in key order
func (s *S3Source) List(ctx context.Context) ([]types.Object, error) {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})

	var objects []types.Object
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list s3 objects: %w", err)
		}
		for _, obj := range page.Contents {
			if obj.Key == nil || strings.HasSuffix(*obj.Key, "/") || !IsStatementName(*obj.Key) {
				continue
			}
			objects = append(objects, obj)
		}
	}

	sort.Slice(objects, func(i, j int) bool {
		return aws.ToString(objects[i].Key) < aws.ToString(objects[j].Key)
	})
	return objects, nil
}

// Load downloads and expands every statement object. Objects that fail to
// download become failures; a cancelled context aborts the batch.
func (s *S3Source) Load(ctx context.Context) (Batch, error) {
	objects, err := s.List(ctx)
	if err != nil {
		return Batch{}, err
	}
	if err := s.loader.checkCount(len(objects)); err != nil {
		return Batch{}, err
	}

	var batch Batch
	for _, obj := range objects {
		key := aws.ToString(obj.Key)
		size := aws.ToInt64(obj.Size)
		if !strings.EqualFold(path.Ext(key), ".zip") {
			if err := s.loader.checkSize(size); err != nil {
				batch.fail(key, KindTooLarge, err)
				continue
			}
		}

		buf := manager.NewWriteAtBuffer(make([]byte, 0, size))
		if _, err := s.downloader.Download(ctx, buf, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    obj.Key,
		}); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Batch{}, ctxErr
			}
			s.log.Warn().Err(err).Str("key", key).Msg("Failed to download statement")
			batch.fail(key, KindDownload, err)
			continue
		}

		loaded, err := s.loader.FromBytes(key, buf.Bytes())
		if err != nil {
			return Batch{Failures: append(batch.Failures, loaded.Failures...)}, err
		}
		batch.Merge(loaded)
	}

	if err := s.loader.CheckCount(batch); err != nil {
		return Batch{Failures: batch.Failures}, err
	}

	s.log.Info().
		Int("objects", len(objects)).
		Int("documents", len(batch.Documents)).
		Int("failures", len(batch.Failures)).
		Msg("Loaded statements from s3")
	return batch, nil
}
