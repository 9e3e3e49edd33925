package server

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/fundrisk/internal/modules/analysis"
	"github.com/aristath/fundrisk/internal/scheduler"
	"github.com/aristath/fundrisk/internal/version"
)

// JobReporter exposes the run history of the scheduled inbox jobs
type JobReporter interface {
	Statuses() []scheduler.JobStatus
}

// SystemHandlers handles system-wide monitoring endpoints
type SystemHandlers struct {
	log         zerolog.Logger
	store       *analysis.ReportStore
	jobs        JobReporter
	dataDir     string
	startupTime time.Time
}

// SystemStatusResponse represents the system status
type SystemStatusResponse struct {
	Status         string  `json:"status"`
	Version        string  `json:"version"`
	UptimeSeconds  int64   `json:"uptime_seconds"`
	CPUPercent     float64 `json:"cpu_percent"`
	MemoryPercent  float64 `json:"memory_percent"`
	DataDirMB      float64 `json:"data_dir_mb"`
	ReportsCached  int     `json:"reports_cached"`
	LatestReportID string  `json:"latest_report_id,omitempty"`
	LatestStatus   string  `json:"latest_status,omitempty"`
	LatestAt       string  `json:"latest_at,omitempty"`

	Jobs []scheduler.JobStatus `json:"jobs,omitempty"`
}

// NewSystemHandlers creates a new system handlers instance
func NewSystemHandlers(store *analysis.ReportStore, jobs JobReporter, dataDir string, log zerolog.Logger) *SystemHandlers {
	return &SystemHandlers{
		log:         log.With().Str("handler", "system").Logger(),
		store:       store,
		jobs:        jobs,
		dataDir:     dataDir,
		startupTime: time.Now(),
	}
}

// Snapshot collects the current system status
func (h *SystemHandlers) Snapshot() SystemStatusResponse {
	cpuPercent, memPercent := h.getSystemStats()

	response := SystemStatusResponse{
		Status:        "healthy",
		Version:       version.Version,
		UptimeSeconds: int64(time.Since(h.startupTime).Seconds()),
		CPUPercent:    cpuPercent,
		MemoryPercent: memPercent,
		DataDirMB:     h.getDirSize(h.dataDir),
	}

	if h.store != nil {
		response.ReportsCached = h.store.Count()
		if latest, ok := h.store.Latest(); ok {
			response.LatestReportID = latest.ID
			response.LatestStatus = string(latest.ValidationStatus)
			response.LatestAt = latest.CreatedAt.Format(time.RFC3339)
		}
	}

	if h.jobs != nil {
		response.Jobs = h.jobs.Statuses()
	}

	return response
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting system status")

	writeJSON(w, h.log, http.StatusOK, map[string]interface{}{
		"data": h.Snapshot(),
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// getDirSize calculates total size of a directory in MB
func (h *SystemHandlers) getDirSize(dirPath string) float64 {
	if dirPath == "" {
		return 0
	}

	var totalSize int64
	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if !info.IsDir() {
			totalSize += info.Size()
		}
		return nil
	})
	if err != nil {
		h.log.Warn().Err(err).Str("dir", dirPath).Msg("Failed to calculate directory size")
		return 0
	}

	return float64(totalSize) / 1024 / 1024
}

// getSystemStats calculates CPU and RAM usage percentages
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}
