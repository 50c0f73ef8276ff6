package mcp

import (
	"context"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/setsheet/internal/boostcamp"
	"github.com/claude/setsheet/internal/flatten"
)

// defaultDateRange returns start/end as ISO date strings, defaulting to the
// last 90 days. Session dates are compared as the strings the export uses
// for its keys.
func defaultDateRange(startStr, endStr string) (string, string, error) {
	if endStr == "" {
		endStr = time.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", endStr); err != nil {
		return "", "", err
	}
	if startStr == "" {
		startStr = time.Now().AddDate(0, 0, -90).Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", startStr); err != nil {
		return "", "", err
	}
	return startStr, endStr, nil
}

// --- Tool definitions ---

var toolFlattenPayload = mcp.NewTool("flatten_payload",
	mcp.WithDescription("Flatten a Boostcamp workout-log JSON payload into a one-row-per-set table. Returns the column list and rows; no data is stored."),
	mcp.WithString("payload", mcp.Required(), mcp.Description("The raw export JSON: an object keyed by session date")),
)

var toolGetFlatSets = mcp.NewTool("get_flat_sets",
	mcp.WithDescription("Query ingested flattened set rows. Each row carries full session and exercise context plus per-set values."),
	mcp.WithString("start", mcp.Description("Start date (YYYY-MM-DD). Defaults to 90 days ago.")),
	mcp.WithString("end", mcp.Description("End date (YYYY-MM-DD). Defaults to today.")),
	mcp.WithString("exercise", mcp.Description("Filter by exercise name (partial match, e.g. 'squat')")),
)

var toolGetExerciseSummary = mcp.NewTool("get_exercise_summary",
	mcp.WithDescription("Per-exercise volume totals over a date range: sessions, sets, total reps, and tonnage (weight × reps)."),
	mcp.WithString("start", mcp.Description("Start date (YYYY-MM-DD). Defaults to 90 days ago.")),
	mcp.WithString("end", mcp.Description("End date (YYYY-MM-DD). Defaults to today.")),
)

var toolListExportLogs = mcp.NewTool("list_export_logs",
	mcp.WithDescription("List recent flatten/export runs with row counts and status, newest first."),
	mcp.WithString("limit", mcp.Description("Maximum entries to return. Defaults to 20.")),
)

// --- Tool handlers ---

func (h *handlers) flattenPayload(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("payload")
	if err != nil {
		return mcp.NewToolResultError("payload parameter is required"), nil
	}

	payload, err := boostcamp.Decode(strings.NewReader(raw))
	if err != nil {
		return mcp.NewToolResultError("invalid payload: " + err.Error()), nil
	}

	table := flatten.Flatten(payload)
	result, err := mcp.NewToolResultJSON(table)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getFlatSets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultDateRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	rows, err := h.ds.QueryFlatSets(ctx, start, end, req.GetString("exercise", ""))
	if err != nil {
		h.log.Error("mcp get_flat_sets", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(rows)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getExerciseSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultDateRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	summary, err := h.ds.GetExerciseSummary(ctx, start, end)
	if err != nil {
		h.log.Error("mcp get_exercise_summary", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(summary)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listExportLogs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", 20)

	logs, err := h.ds.ListExportLogs(ctx, limit)
	if err != nil {
		h.log.Error("mcp list_export_logs", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(logs)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
