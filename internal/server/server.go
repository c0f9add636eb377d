// Package server exposes the tracker over a JSON HTTP API.
package server

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/claude/liftlog/internal/ingest/alpha"
	"github.com/claude/liftlog/internal/metrics"
	"github.com/claude/liftlog/internal/tracker"
)

// maxUploadBytes bounds CSV import bodies.
const maxUploadBytes = 32 << 20

// Server holds dependencies for HTTP handlers.
type Server struct {
	tracker  *tracker.Tracker
	alpha    *alpha.Provider
	metrics  *metrics.Manager
	gatherer prometheus.Gatherer
	origins  []string
	log      *slog.Logger
	router   chi.Router
}

// Options configures optional parts of the server.
type Options struct {
	Metrics     *metrics.Manager
	Gatherer    prometheus.Gatherer // /metrics is only mounted when set
	CORSOrigins []string
}

// New creates a new Server with all routes configured.
func New(tr *tracker.Tracker, alphaProvider *alpha.Provider, opts Options, log *slog.Logger) *Server {
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewTestManager()
	}
	s := &Server{
		tracker:  tr,
		alpha:    alphaProvider,
		metrics:  opts.Metrics,
		gatherer: opts.Gatherer,
		origins:  opts.CORSOrigins,
		log:      log,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(RequestLogging(s.log))
	s.router.Use(RequestMetrics(s.metrics))
	s.router.Use(CORS(s.origins))

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/log", s.handleLog)
		r.Get("/history", s.handleHistory)
		r.Get("/compare", s.handleCompare)
		r.Get("/exercises", s.handleExercises)
		r.Get("/estimate", s.handleEstimate)

		r.Route("/sessions/{session}", func(r chi.Router) {
			r.Get("/view", s.handleSessionView)
			r.Post("/missed", s.handleMissSession)
			r.Put("/exercises/{exercise}", s.handleLogSets)
			r.Delete("/exercises/{exercise}", s.handleClear)
			r.Post("/exercises/{exercise}/skip", s.handleSkip)
			r.Post("/exercises/{exercise}/edit", s.handleEdit)
		})

		r.Route("/stats", func(r chi.Router) {
			r.Get("/summary", s.handleSummary)
			r.Get("/podium", s.handlePodium)
			r.Get("/records", s.handleRecords)
			r.Get("/record", s.handleRecord)
			r.Get("/balance", s.handleBalance)
			r.Get("/progression", s.handleProgression)
		})

		r.Route("/program", func(r chi.Router) {
			r.Get("/", s.handleGetProgram)
			r.Post("/sessions", s.handleAddSession)
			r.Delete("/sessions/{session}", s.handleRemoveSession)
			r.Post("/sessions/{session}/move", s.handleMoveSession)
			r.Post("/sessions/{session}/exercises", s.handleAddExercise)
			r.Patch("/sessions/{session}/exercises/{index}", s.handleUpdateExercise)
			r.Post("/sessions/{session}/exercises/{index}/move", s.handleMoveExercise)
			r.Delete("/sessions/{session}/exercises/{index}", s.handleRemoveExercise)
		})

		r.Get("/export.csv", s.handleExport)
		r.Post("/import/alpha", s.handleAlphaImport)
		r.Post("/import/sheet", s.handleSheetImport)
		r.Post("/reload", s.handleReload)
	})

	if s.gatherer != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
}

// Mount attaches an extra handler, such as the MCP endpoint, under pattern.
func (s *Server) Mount(pattern string, h http.Handler) {
	s.router.Mount(pattern, h)
}

// SetFrontend mounts a static single-page frontend.
// Unmatched routes serve index.html for client-side routing.
func (s *Server) SetFrontend(webFS fs.FS) {
	fileServer := http.FileServerFS(webFS)

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		f, err := webFS.Open(r.URL.Path[1:])
		if err == nil {
			f.Close()
			fileServer.ServeHTTP(w, r)
			return
		}
		r.URL.Path = "/"
		fileServer.ServeHTTP(w, r)
	})
}
