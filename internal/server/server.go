package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/claude/setsheet/internal/storage"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db        *storage.DB
	log       *slog.Logger
	apiKey    string
	sheetName string
	router    chi.Router
}

// New creates a new Server with all routes configured.
func New(db *storage.DB, apiKey, sheetName string, log *slog.Logger) *Server {
	s := &Server{
		db:        db,
		log:       log,
		apiKey:    apiKey,
		sheetName: sheetName,
		router:    chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	// Stateless flatten endpoints: payload in, table out
	s.router.Post("/api/v1/flatten", s.handleFlatten)
	s.router.Post("/api/v1/flatten.csv", s.handleFlattenCSV)
	s.router.Post("/api/v1/flatten.xlsx", s.handleFlattenXLSX)

	// Ingest endpoint (API key required): flatten and persist
	s.router.Route("/api/v1/ingest", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/", s.handleIngest)
	})

	// Query endpoints over stored rows
	s.router.Get("/api/v1/sets", s.handleQuerySets)
	s.router.Get("/api/v1/exercises/summary", s.handleExerciseSummary)
	s.router.Get("/api/v1/exports", s.handleListExports)
}
