package mcp

import (
	"context"

	"github.com/claude/setsheet/internal/storage"
)

// DataSource abstracts the data layer for MCP tools. Both *storage.DB
// (local) and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	QueryFlatSets(ctx context.Context, startDate, endDate, exerciseFilter string) ([]storage.FlatSetRow, error)
	GetExerciseSummary(ctx context.Context, startDate, endDate string) ([]storage.ExerciseSummary, error)
	ListExportLogs(ctx context.Context, limit int) ([]storage.ExportLog, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
