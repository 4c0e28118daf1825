package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/claude/gymweek/internal/dates"
	"github.com/claude/gymweek/internal/models"
	"github.com/claude/gymweek/internal/storage"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleToday(w http.ResponseWriter, r *http.Request) {
	day, err := s.queries.Today(r.Context())
	if err != nil {
		writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	if day == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no schedule for today"})
		return
	}
	writeJSON(w, http.StatusOK, day)
}

func (s *Server) handleByDate(w http.ResponseWriter, r *http.Request) {
	pd, err := models.ParsePartialDate(chi.URLParam(r, "date"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	day, err := s.queries.ByDate(r.Context(), pd)
	if err != nil {
		if errors.Is(err, dates.ErrInvalidDate) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	if day == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no schedule for " + pd.String()})
		return
	}
	writeJSON(w, http.StatusOK, day)
}

func (s *Server) handleAll(w http.ResponseWriter, r *http.Request) {
	days, err := s.queries.All(r.Context())
	if err != nil {
		writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, days)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	logs, err := s.runs.QueryRunLogs(r.Context(), limit)
	if err != nil {
		writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	if logs == nil {
		logs = []storage.RunLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	report, err := s.runner.Run(r.Context())
	if err != nil {
		s.log.Error("ingestion run failed", "error", err)
		writeJSON(w, http.StatusBadGateway, report)
		return
	}

	if report.ProcessedCount > 0 {
		s.queries.Invalidate()
	}
	writeJSON(w, http.StatusOK, report)
}

// statusFor maps read-path errors: storage unavailability is a server-side
// failure signal, anything else an internal error. Absence never reaches
// here.
func statusFor(err error) int {
	if errors.Is(err, storage.ErrUnavailable) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
