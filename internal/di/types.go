// Package di provides dependency injection wiring and initialization.
package di

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/aristath/fundrisk/internal/modules/analysis"
	"github.com/aristath/fundrisk/internal/modules/risk"
	"github.com/aristath/fundrisk/internal/modules/sources"
	"github.com/aristath/fundrisk/internal/scheduler"
)

// Container holds every long-lived dependency of the server
type Container struct {
	// Metrics registry exposed on /metrics
	Registry *prometheus.Registry

	// Services
	Loader   *sources.Loader
	Engine   *risk.Engine
	Store    *analysis.ReportStore
	Metrics  *analysis.Metrics
	Service  *analysis.Service

	// Background jobs
	Scheduler *scheduler.Scheduler
}

// JobInstances holds the registered jobs for manual triggering
type JobInstances struct {
	// InboxAnalysis contains one job per configured inbox (directory and/or S3 prefix)
	InboxAnalysis []scheduler.Job
}
