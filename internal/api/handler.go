// Package api provides the HTTP surface of the data lake: upload, query,
// export, dataset listing, reconciliation, and semantic search.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sucharith-p/personal-data-lake/internal/domain"
	"github.com/sucharith-p/personal-data-lake/internal/service/export"
	"github.com/sucharith-p/personal-data-lake/internal/service/ingest"
	"github.com/sucharith-p/personal-data-lake/internal/service/reconciler"
)

// Handler carries the wired services behind the HTTP routes.
type Handler struct {
	catalog  domain.CatalogStore
	blobs    domain.BlobStore
	engine   domain.QueryEngine
	index    domain.VectorIndex
	embedder domain.Embedder
	ingest   *ingest.Service
	export   *export.Service
	sweeper  *reconciler.Service
	runner   *reconciler.Runner
	logger   *slog.Logger
}

// NewHandler creates an API handler with all required dependencies.
func NewHandler(
	catalog domain.CatalogStore,
	blobs domain.BlobStore,
	engine domain.QueryEngine,
	index domain.VectorIndex,
	embedder domain.Embedder,
	ingestSvc *ingest.Service,
	exportSvc *export.Service,
	sweeper *reconciler.Service,
	runner *reconciler.Runner,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		catalog:  catalog,
		blobs:    blobs,
		engine:   engine,
		index:    index,
		embedder: embedder,
		ingest:   ingestSvc,
		export:   exportSvc,
		sweeper:  sweeper,
		runner:   runner,
		logger:   logger,
	}
}

// Routes builds the chi router with standard middleware.
func (h *Handler) Routes(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Post("/upload", h.handleUpload)
	r.Post("/query", h.handleQuery)
	r.Post("/export", h.handleExport)
	r.Get("/datasets", h.handleListDatasets)
	r.Delete("/datasets/cleanup", h.handleCleanup)
	r.Post("/reconcile", h.handleReconcile)
	r.Get("/search", h.handleSearch)
	r.Get("/healthz", h.handleHealthz)
	return r
}
