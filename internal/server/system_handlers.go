package server

import (
	"encoding/json"
	"io/fs"
	"net/http"
	"path/filepath"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/neurotradx/neurotradx/internal/database"
	"github.com/neurotradx/neurotradx/internal/scheduler"
)

// SystemHandlers serves health, status and manual job triggers
type SystemHandlers struct {
	log       zerolog.Logger
	dataDir   string
	databases []*database.DB
	jobs      map[string]scheduler.Job
	startedAt time.Time
}

// NewSystemHandlers creates a new system handlers instance
func NewSystemHandlers(log zerolog.Logger, dataDir string, databases []*database.DB, jobs []scheduler.Job) *SystemHandlers {
	byName := make(map[string]scheduler.Job, len(jobs))
	for _, j := range jobs {
		byName[j.Name()] = j
	}
	return &SystemHandlers{
		log:       log.With().Str("handler", "system").Logger(),
		dataDir:   dataDir,
		databases: databases,
		jobs:      byName,
		startedAt: time.Now(),
	}
}

// SystemStatusResponse is returned by GET /api/system/status
type SystemStatusResponse struct {
	Status        string            `json:"status"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	GoVersion     string            `json:"go_version"`
	Goroutines    int               `json:"goroutines"`
	CPUPercent    float64           `json:"cpu_percent"`
	MemoryPercent float64           `json:"memory_percent"`
	DataDirMB     float64           `json:"data_dir_mb"`
	Databases     []*database.Stats `json:"databases"`
}

// HandleHealth handles GET /health. It pings every database.
func (h *SystemHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	for _, db := range h.databases {
		if db == nil {
			continue
		}
		if err := db.QuickCheck(r.Context()); err != nil {
			h.log.Error().Err(err).Str("database", db.Name()).Msg("Health check failed")
			h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status":   "unhealthy",
				"database": db.Name(),
			})
			return
		}
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPercent, memPercent := h.getSystemStats()

	resp := SystemStatusResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
		GoVersion:     runtime.Version(),
		Goroutines:    runtime.NumGoroutine(),
		CPUPercent:    cpuPercent,
		MemoryPercent: memPercent,
		DataDirMB:     h.dirSizeMB(h.dataDir),
		Databases:     make([]*database.Stats, 0, len(h.databases)),
	}

	for _, db := range h.databases {
		if db == nil {
			continue
		}
		stats, err := db.GetStats()
		if err != nil {
			h.log.Warn().Err(err).Str("database", db.Name()).Msg("Failed to get database stats")
			resp.Status = "degraded"
			continue
		}
		resp.Databases = append(resp.Databases, stats)
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// HandleTriggerJob handles POST /api/jobs/{name}
func (h *SystemHandlers) HandleTriggerJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	job, ok := h.jobs[name]
	if !ok {
		h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown job " + name})
		return
	}

	h.log.Info().Str("job", name).Msg("Manually triggering job")
	if err := job.Run(); err != nil {
		h.log.Error().Err(err).Str("job", name).Msg("Job failed")
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "error", "message": err.Error()})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "success", "job": name})
}

// getSystemStats samples CPU over 100ms and reads memory usage.
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

func (h *SystemHandlers) dirSizeMB(dirPath string) float64 {
	if dirPath == "" {
		return 0
	}

	var totalSize int64
	err := filepath.WalkDir(dirPath, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		totalSize += info.Size()
		return nil
	})
	if err != nil {
		h.log.Warn().Err(err).Str("dir", dirPath).Msg("Failed to calculate directory size")
		return 0
	}

	return float64(totalSize) / 1024 / 1024
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
