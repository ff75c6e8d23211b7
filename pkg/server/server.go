package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/layerstack/pkg/store"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 4 << 20

// Server exposes style documents and their layer groups over HTTP.
//
// Every mutating request loads the document, applies one group operation and
// saves the result while holding a process-wide lock. The store's revision
// check protects against writers in other processes.
type Server struct {
	store  store.Store
	logger *log.Logger
	router chi.Router
	mu     sync.Mutex
}

// New creates a server backed by st. If logger is nil, log.Default() is used.
func New(st store.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{store: st, logger: logger}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/styles", func(r chi.Router) {
		r.Get("/", s.handleListDocuments)
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", s.handleGetDocument)
			r.Put("/", s.handlePutDocument)
			r.Delete("/", s.handleDeleteDocument)

			r.Get("/groups", s.handleListGroups)
			r.Get("/groups/{group}", s.handleGetGroup)
			r.Post("/groups/{group}", s.handleAddGroup)
			r.Delete("/groups/{group}", s.handleRemoveGroup)
			r.Post("/groups/{group}/layers", s.handleAddLayerToGroup)
			r.Put("/groups/{group}/position", s.handleMoveGroup)

			r.Put("/layers/{layer}/group", s.handleMoveLayerToGroup)
			r.Delete("/layers/{layer}/group/{group}", s.handleRemoveLayerFromGroup)

			r.Get("/render.dot", s.handleRenderDOT)
			r.Get("/render.svg", s.handleRenderSVG)
		})
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully, giving in-flight requests up to ten seconds to finish.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
