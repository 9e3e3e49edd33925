package di

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/aristath/fundrisk/internal/config"
	"github.com/aristath/fundrisk/internal/modules/analysis"
	"github.com/aristath/fundrisk/internal/modules/risk"
	"github.com/aristath/fundrisk/internal/modules/sources"
)

// reportTTL bounds how long analyzed reports stay retrievable by id
const reportTTL = 24 * time.Hour

// InitializeServices creates the analysis pipeline
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container == nil {
		return fmt.Errorf("container cannot be nil")
	}

	container.Registry = prometheus.NewRegistry()
	container.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	container.Loader = sources.NewLoader(cfg.Limits(), log)
	container.Engine = risk.NewEngine(cfg.RiskConfig(), log)
	container.Store = analysis.NewReportStore(reportTTL)
	container.Metrics = analysis.NewMetrics(container.Registry)
	container.Service = analysis.NewService(
		container.Loader,
		cfg.AggregationConfig(),
		container.Engine,
		container.Store,
		container.Metrics,
		log,
	)

	log.Info().
		Int("min_files", cfg.MinFiles).
		Int("workers", cfg.Workers).
		Str("var_model", cfg.VaRModel).
		Msg("Analysis services initialized")

	return nil
}
