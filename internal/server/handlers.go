package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/claude/setsheet/internal/boostcamp"
	"github.com/claude/setsheet/internal/export"
	"github.com/claude/setsheet/internal/flatten"
	"github.com/claude/setsheet/internal/storage"
)

func (s *Server) decodeAndFlatten(w http.ResponseWriter, r *http.Request) (boostcamp.Payload, flatten.Table, bool) {
	payload, err := boostcamp.Decode(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return nil, flatten.Table{}, false
	}
	return payload, flatten.Flatten(payload), true
}

func (s *Server) handleFlatten(w http.ResponseWriter, r *http.Request) {
	_, table, ok := s.decodeAndFlatten(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, table)
}

func (s *Server) handleFlattenCSV(w http.ResponseWriter, r *http.Request) {
	_, table, ok := s.decodeAndFlatten(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="workout_sets.csv"`)
	if err := export.WriteCSV(w, table); err != nil {
		s.log.Error("csv export error", "error", err)
	}
}

func (s *Server) handleFlattenXLSX(w http.ResponseWriter, r *http.Request) {
	_, table, ok := s.decodeAndFlatten(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="workout_sets.xlsx"`)
	if err := export.WriteXLSX(w, table, s.sheetName); err != nil {
		s.log.Error("xlsx export error", "error", err)
	}
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	payload, table, ok := s.decodeAndFlatten(w, r)
	if !ok {
		return
	}

	exportID := uuid.New()
	rows := storage.RowsFromTable(exportID, table)

	ctx := r.Context()
	for _, day := range payload {
		if err := s.db.DeleteFlatSets(ctx, day.Date); err != nil {
			s.log.Error("ingest delete error", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
	}

	inserted, err := s.db.InsertFlatSets(ctx, rows)
	if err != nil {
		s.log.Error("ingest insert error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	sessions, exercises, _ := payload.Counts()
	durationMs := int(time.Since(started).Milliseconds())
	logEntry := storage.ExportLog{
		ID:           exportID,
		Source:       "api",
		Status:       "success",
		Sessions:     sessions,
		Exercises:    exercises,
		RowsEmitted:  len(table.Rows),
		RowsInserted: inserted,
		DurationMs:   &durationMs,
	}
	if err := s.db.InsertExportLog(ctx, logEntry); err != nil {
		s.log.Warn("export log insert failed", "error", err)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"export_id":     exportID,
		"sessions":      sessions,
		"exercises":     exercises,
		"rows_emitted":  len(table.Rows),
		"rows_inserted": inserted,
	})
}

func (s *Server) handleQuerySets(w http.ResponseWriter, r *http.Request) {
	start, end := parseDateRange(r)
	rows, err := s.db.QueryFlatSets(r.Context(), start, end, r.URL.Query().Get("exercise"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleExerciseSummary(w http.ResponseWriter, r *http.Request) {
	start, end := parseDateRange(r)
	summary, err := s.db.GetExerciseSummary(r.Context(), start, end)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleListExports(w http.ResponseWriter, r *http.Request) {
	logs, err := s.db.ListExportLogs(r.Context(), parseLimit(r, 20, 100))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// parseLimit reads the limit query param. Missing, malformed, or
// non-positive values fall back to def; values above max are capped.
func parseLimit(r *http.Request, def, max int) int {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

// parseDateRange reads start/end query params as the ISO date strings the
// export uses for its session keys. Defaults to the last 90 days.
func parseDateRange(r *http.Request) (start, end string) {
	start = r.URL.Query().Get("start")
	end = r.URL.Query().Get("end")
	if end == "" {
		end = time.Now().Format("2006-01-02")
	}
	if start == "" {
		start = time.Now().AddDate(0, 0, -90).Format("2006-01-02")
	}
	return start, end
}
