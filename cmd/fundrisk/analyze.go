package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/aristath/fundrisk/internal/config"
	"github.com/aristath/fundrisk/internal/di"
	"github.com/aristath/fundrisk/internal/modules/analysis"
	"github.com/aristath/fundrisk/internal/modules/sources"
)

// Output formats
const (
	FormatText    = "text"
	FormatJSON    = "json"
	FormatMsgpack = "msgpack"
)

// errNotAnswered signals a report without answers (no data or too few files)
var errNotAnswered = errors.New("statements could not be analyzed")

var analyzeCmd = &cobra.Command{
	Use:   "analyze <path|s3://bucket/prefix>...",
	Short: "Analyze statement files, directories, ZIP archives or an S3 prefix",
	Long: `Analyze loads every statement found in the given inputs and prints the
answers to the risk questionnaire. Directories contribute their .xml and .zip
entries. An s3://bucket/prefix argument reads every statement object under
the prefix, using the FUNDRISK_S3_* settings for credentials and endpoint.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		return runAnalyze(cmd.Context(), cmd.OutOrStdout(), cfg, analyzeOpts, args, di.DefaultS3ClientFactory, log)
	},
}

type analyzeOptions struct {
	Format   string
	MinFiles int
	Raw      bool
}

var analyzeOpts analyzeOptions

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeOpts.Format, "format", "f", FormatText, "Output format (text, json, msgpack)")
	analyzeCmd.Flags().IntVar(&analyzeOpts.MinFiles, "min-files", 0, "Minimum valid statements (defaults to FUNDRISK_MIN_FILES)")
	analyzeCmd.Flags().BoolVar(&analyzeOpts.Raw, "raw", false, "Include raw risk metrics in json/msgpack output")
}

func runAnalyze(
	ctx context.Context,
	out io.Writer,
	cfg *config.Config,
	opts analyzeOptions,
	args []string,
	newS3 di.S3ClientFactory,
	log zerolog.Logger,
) error {
	switch opts.Format {
	case FormatText, FormatJSON, FormatMsgpack:
	default:
		return fmt.Errorf("unknown format %q (want text, json or msgpack)", opts.Format)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	container := &di.Container{}
	if err := di.InitializeServices(container, cfg, log); err != nil {
		return err
	}

	batch, err := loadInputs(ctx, container.Loader, cfg.S3, args, newS3, log)
	if err != nil {
		return err
	}

	report, err := container.Service.Analyze(ctx, batch, analysis.Options{
		Source:     strings.Join(args, ","),
		MinFiles:   opts.MinFiles,
		IncludeRaw: opts.Raw,
	})
	if err != nil {
		return err
	}

	if err := writeReport(out, opts.Format, report); err != nil {
		return err
	}
	if !report.OK() {
		return fmt.Errorf("%w: %s", errNotAnswered, report.Message)
	}
	return nil
}

// loadInputs merges local paths with any s3:// prefixes into one batch
func loadInputs(
	ctx context.Context,
	loader *sources.Loader,
	s3cfg sources.S3Config,
	args []string,
	newS3 di.S3ClientFactory,
	log zerolog.Logger,
) (sources.Batch, error) {
	var (
		batch sources.Batch
		paths []string
	)
	for _, arg := range args {
		bucket, prefix, ok := parseS3URL(arg)
		if !ok {
			paths = append(paths, arg)
			continue
		}

		c := s3cfg
		c.Bucket, c.Prefix = bucket, prefix
		client, err := newS3(ctx, c)
		if err != nil {
			return sources.Batch{}, fmt.Errorf("failed to create s3 client: %w", err)
		}
		loaded, err := sources.NewS3Source(client, bucket, prefix, loader, log).Load(ctx)
		if err != nil {
			return sources.Batch{}, err
		}
		batch.Merge(loaded)
	}

	if len(paths) > 0 {
		loaded, err := loader.FromPaths(paths...)
		if err != nil {
			return sources.Batch{}, err
		}
		batch.Merge(loaded)
	}

	if err := loader.CheckCount(batch); err != nil {
		return sources.Batch{}, err
	}
	return batch, nil
}

// parseS3URL splits s3://bucket/prefix
func parseS3URL(arg string) (bucket, prefix string, ok bool) {
	rest, found := strings.CutPrefix(arg, "s3://")
	if !found || rest == "" {
		return "", "", false
	}
	bucket, prefix, _ = strings.Cut(rest, "/")
	return bucket, prefix, bucket != ""
}

func writeReport(out io.Writer, format string, report *analysis.Report) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case FormatMsgpack:
		data, err := msgpack.Marshal(report)
		if err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		_, err = out.Write(data)
		return err
	default:
		_, err := io.WriteString(out, reportText(report))
		return err
	}
}

func reportText(report *analysis.Report) string {
	if report.OK() {
		return report.AnswerSet.Text()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Situação: %s\n", report.ValidationStatus)
	if report.Message != "" {
		fmt.Fprintf(&b, "%s\n", report.Message)
	}
	for _, f := range report.Errors {
		fmt.Fprintf(&b, "  - %s [%s]: %s\n", f.Source, f.Kind, f.Reason)
	}
	return b.String()
}
