package api

import (
	"net/http"
	"runtime"
	"time"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string       `json:"status"`
	Database  string       `json:"database"`
	Timestamp time.Time    `json:"timestamp"`
	Uptime    string       `json:"uptime,omitempty"`
	Memory    *MemoryStats `json:"memory,omitempty"`
}

// MemoryStats represents memory usage statistics
type MemoryStats struct {
	AllocMB      uint64 `json:"alloc_mb"`
	TotalAllocMB uint64 `json:"total_alloc_mb"`
	SysMB        uint64 `json:"sys_mb"`
	NumGC        uint32 `json:"num_gc"`
}

var startTime = time.Now()

// handleHealth returns the health status of the application, including
// whether the query backend is reachable.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	status := http.StatusOK
	database := "ok"
	if err := s.source.Ping(r.Context()); err != nil {
		status = http.StatusServiceUnavailable
		database = "unavailable"
	}

	response := HealthResponse{
		Status:    "ok",
		Database:  database,
		Timestamp: time.Now(),
		Uptime:    time.Since(startTime).String(),
		Memory: &MemoryStats{
			AllocMB:      m.Alloc / 1024 / 1024,
			TotalAllocMB: m.TotalAlloc / 1024 / 1024,
			SysMB:        m.Sys / 1024 / 1024,
			NumGC:        m.NumGC,
		},
	}
	if database != "ok" {
		response.Status = "degraded"
	}

	s.respondJSON(w, status, response)
}
