package web

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"

	"store-monitor/internal/models"
)

// serveFromCacheOrCompute serves a cached JSON body when present and
// fills the cache otherwise.
func (s *Server) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := s.cache.Get(cacheKey); ok {
		s.metrics.IncCacheHits()
		writeJSONBytes(w, data)
		return
	}
	s.metrics.IncCacheMisses()

	result, err := compute()
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	s.cache.Set(cacheKey, gson)
	writeJSONBytes(w, gson)
}

func writeJSONBytes(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

// handleTriggerReport starts a new report job and returns its id.
func (s *Server) handleTriggerReport(w http.ResponseWriter, r *http.Request) {
	id, err := s.runner.Trigger(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("failed to trigger report")
		http.Error(w, "Failed to trigger report", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"report_id": id})
}

// handleGetReport returns the job status, or streams the finished CSV.
func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	rep, err := s.db.GetReport(r.Context(), id)
	if err != nil {
		s.log.Error().Str("report_id", id).Err(err).Msg("failed to load report")
		http.Error(w, "Failed to get report", http.StatusInternalServerError)
		return
	}
	if rep == nil {
		http.Error(w, "Report not found", http.StatusNotFound)
		return
	}

	switch rep.Status {
	case models.ReportRunning:
		writeJSON(w, http.StatusOK, map[string]string{"status": "Running"})
	case models.ReportFailed:
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "Failed",
			"message": rep.Error,
		})
	case models.ReportComplete:
		s.serveCSV(w, r, rep)
	default:
		writeJSON(w, http.StatusOK, map[string]string{"status": "Unknown"})
	}
}

// serveCSV streams the finished report as a CSV attachment. Archived
// reports are transparently decompressed.
func (s *Server) serveCSV(w http.ResponseWriter, r *http.Request, rep *models.Report) {
	if rep.CSVPath == "" {
		http.Error(w, "Report file not found", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=store_report_%s.csv", rep.ID))

	if !strings.HasSuffix(rep.CSVPath, ".zst") {
		w.Header().Set("Content-Type", "text/csv")
		http.ServeFile(w, r, rep.CSVPath)
		return
	}

	file, err := os.Open(rep.CSVPath)
	if err != nil {
		http.Error(w, "Report file not found", http.StatusInternalServerError)
		return
	}
	defer file.Close()

	dec, err := zstd.NewReader(file)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	defer dec.Close()

	w.Header().Set("Content-Type", "text/csv")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, dec); err != nil {
		s.log.Warn().Str("report_id", rep.ID).Err(err).Msg("streaming archived report failed")
	}
}

// handleListReports handles /api/reports requests
func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	reports, err := s.db.ListReports(r.Context(), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

// handleStores handles /api/stores requests
func (s *Server) handleStores(w http.ResponseWriter, r *http.Request) {
	s.serveFromCacheOrCompute(w, "stores", func() (any, error) {
		return s.db.Stores(r.Context())
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"uptime_seconds": time.Since(s.startTime).Seconds(),
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Store Monitoring API",
		"version": "1.0.0",
	})
}
