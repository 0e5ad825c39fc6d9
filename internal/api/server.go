package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"subprovider/internal/config"
	"subprovider/internal/logger"
	"subprovider/internal/metrics"
	"subprovider/internal/provider"
	"subprovider/internal/service"
)

// ConfigLoader returns the current configuration. It runs on every
// document request so edits to the file apply without a restart.
type ConfigLoader func() (*config.Config, error)

type Server struct {
	load       ConfigLoader
	options    []service.Option
	stats      *metrics.DecodeStats
	httpServer *http.Server
}

// NewServer mounts the provider routes under pathPrefix.
func NewServer(pathPrefix string, load ConfigLoader, stats *metrics.DecodeStats, options ...service.Option) *Server {
	s := &Server{
		load:    load,
		options: options,
		stats:   stats,
	}
	if stats != nil {
		s.options = append(s.options, service.WithStats(stats))
	}

	r := chi.NewRouter()
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		renderError(w, r, http.StatusNotFound, fmt.Errorf("no route for %s", r.URL.Path))
	})

	r.Get("/", s.hello)
	prefix := "/" + strings.Trim(pathPrefix, "/")
	if prefix == "/" {
		s.setupRoutes(r)
	} else {
		r.Route(prefix, s.setupRoutes)
	}

	s.httpServer = &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes(r chi.Router) {
	r.Get("/healthz", s.health)
	r.Get("/{provider}", s.document)
}

func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Serve accepts connections on l until Close is called.
func (s *Server) Serve(l net.Listener) error {
	logger.Log.Infof("Serving providers at http://%s", l.Addr())
	err := s.httpServer.Serve(l)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) hello(w http.ResponseWriter, r *http.Request) {
	render.HTML(w, r, "<h1>Hello, World!</h1>")
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	resp := render.M{
		"status":    "ok",
		"providers": provider.Names(),
	}
	if s.stats != nil {
		resp["decode"] = s.stats.Snapshot()
	}
	render.JSON(w, r, resp)
}

// document renders the provider named in the path. The optional groups
// query parameter is a comma separated whitelist of group names.
func (s *Server) document(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "provider")
	// checked before the config load so a typo is a 404 even when the
	// config is broken
	if _, err := provider.Get(name); err != nil {
		renderError(w, r, http.StatusNotFound, err)
		return
	}

	cfg, err := s.load()
	if err != nil {
		logger.Log.Errorf("Error loading config: %v", err)
		renderError(w, r, http.StatusInternalServerError, err)
		return
	}

	var filter []string
	if g := r.URL.Query().Get("groups"); g != "" {
		filter = strings.Split(g, ",")
	}

	doc, err := service.NewBuilder(cfg, s.options...).Build(r.Context(), name, filter)
	if err != nil {
		logger.Log.Errorf("Error building %s: %v", name, err)
		renderError(w, r, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", name+extension(doc.ContentType)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Body)
}

func renderError(w http.ResponseWriter, r *http.Request, status int, err error) {
	render.Status(r, status)
	render.JSON(w, r, render.M{"error": err.Error()})
}

func extension(contentType string) string {
	if strings.Contains(contentType, "json") {
		return ".json"
	}
	return ".yaml"
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logger.Log.Debugf("%s %s -> %d (%d bytes, %s)", r.Method, r.URL.Path, ww.Status(), ww.BytesWritten(), time.Since(start).Round(time.Millisecond))
	})
}
