package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("SetSheet", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("SetSheet workout export server. Flatten Boostcamp workout-log payloads into one-row-per-set tables and query previously ingested set data."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolFlattenPayload, Handler: h.flattenPayload},
		server.ServerTool{Tool: toolGetFlatSets, Handler: h.getFlatSets},
		server.ServerTool{Tool: toolGetExerciseSummary, Handler: h.getExerciseSummary},
		server.ServerTool{Tool: toolListExportLogs, Handler: h.listExportLogs},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resRecentSets, Handler: h.recentSets},
		server.ServerResource{Resource: resColumnCatalog, Handler: h.columnCatalog},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resRecentSets = mcp.NewResource(
	"setsheet://recent_sets",
	"Recent Sets",
	mcp.WithResourceDescription("Flattened set rows from the last 30 days of ingested sessions"),
	mcp.WithMIMEType("application/json"),
)

var resColumnCatalog = mcp.NewResource(
	"setsheet://column_catalog",
	"Column Catalog",
	mcp.WithResourceDescription("The preferred output column list in order, as used by CSV/XLSX exports"),
	mcp.WithMIMEType("application/json"),
)
