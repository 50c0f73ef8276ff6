package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/claude/setsheet/internal/storage"
)

// newTestServer creates an httptest server that routes requests to handler functions
// keyed by path. Verifies the HTTP client sends correct paths and query params.
func newTestServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			t.Errorf("unexpected request path: %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
}

func writeTestJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatal(err)
	}
}

// TestClientQueryFlatSets verifies the HTTP client sends the right query
// params and parses the JSON array response.
func TestClientQueryFlatSets(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/sets": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("start"); got != "2024-01-01" {
				t.Errorf("start=%q, want 2024-01-01", got)
			}
			if got := r.URL.Query().Get("end"); got != "2024-02-01" {
				t.Errorf("end=%q, want 2024-02-01", got)
			}
			if got := r.URL.Query().Get("exercise"); got != "squat" {
				t.Errorf("exercise=%q, want squat", got)
			}

			idx := 1
			writeTestJSON(t, w, []storage.FlatSetRow{
				{SessionDate: "2024-01-15", ExerciseName: "Squat", SetIndex: &idx},
			})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL)
	rows, err := client.QueryFlatSets(context.Background(), "2024-01-01", "2024-02-01", "squat")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].ExerciseName != "Squat" {
		t.Errorf("exercise_name=%q, want Squat", rows[0].ExerciseName)
	}
}

// TestClientQueryFlatSetsNoFilter verifies the exercise param is omitted
// when no filter is given.
func TestClientQueryFlatSetsNoFilter(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/sets": func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Has("exercise") {
				t.Error("exercise param should be omitted when empty")
			}
			writeTestJSON(t, w, []storage.FlatSetRow{})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL)
	if _, err := client.QueryFlatSets(context.Background(), "2024-01-01", "2024-02-01", ""); err != nil {
		t.Fatal(err)
	}
}

// TestClientGetExerciseSummary verifies summary endpoint parsing.
func TestClientGetExerciseSummary(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/exercises/summary": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, []storage.ExerciseSummary{
				{ExerciseName: "Deadlift", Sessions: 3, Sets: 9, Tonnage: 4200},
			})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL)
	summary, err := client.GetExerciseSummary(context.Background(), "2024-01-01", "2024-02-01")
	if err != nil {
		t.Fatal(err)
	}
	if len(summary) != 1 {
		t.Fatalf("got %d entries, want 1", len(summary))
	}
	if summary[0].Sets != 9 {
		t.Errorf("sets=%d, want 9", summary[0].Sets)
	}
	if summary[0].Tonnage != 4200 {
		t.Errorf("tonnage=%f, want 4200", summary[0].Tonnage)
	}
}

// TestClientListExportLogs verifies the limit param and response parsing.
func TestClientListExportLogs(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/exports": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("limit"); got != "5" {
				t.Errorf("limit=%q, want 5", got)
			}
			writeTestJSON(t, w, []storage.ExportLog{
				{Source: "cli", Status: "success", RowsEmitted: 42},
			})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL)
	logs, err := client.ListExportLogs(context.Background(), 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 1 {
		t.Fatalf("got %d logs, want 1", len(logs))
	}
	if logs[0].RowsEmitted != 42 {
		t.Errorf("rows_emitted=%d, want 42", logs[0].RowsEmitted)
	}
}

// TestClientServerError verifies the client returns an error on non-200 responses.
func TestClientServerError(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/exports": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"database down"}`))
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL)
	if _, err := client.ListExportLogs(context.Background(), 20); err == nil {
		t.Fatal("expected error for 500 response")
	}
}
