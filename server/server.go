package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"

	"github.com/floe-dev/floectl/pkg/feed"
	"github.com/floe-dev/floectl/pkg/view"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Server is the local preview HTTP server. It serves the cached feed as an
// HTML page, exposes pagination controls over JSON and exports the feed as RSS.
type Server struct {
	config   ConfigProvider
	pager    *feed.Pager
	trigger  *feed.Trigger
	mode     view.Mode
	version  string
	debug    bool
	maxPages int

	templates *template.Template

	lock       sync.Mutex
	httpServer *http.Server
	router     *routegroup.Bundle
}

// ConfigProvider provides server configuration
type ConfigProvider interface {
	GetPreviewConfig() (listen string, timeout time.Duration, pageCached int)
	GetAPIConfig() (baseURL string, timeout time.Duration, pageSize int)
}

// New initializes a new preview server instance
func New(cfg ConfigProvider, pager *feed.Pager, mode view.Mode, version string, debug bool) *Server {
	_, _, maxPages := cfg.GetPreviewConfig()
	s := &Server{
		config:    cfg,
		pager:     pager,
		trigger:   feed.NewTrigger(pager, feed.DefaultThreshold),
		mode:      mode,
		version:   version,
		debug:     debug,
		maxPages:  maxPages,
		templates: template.Must(template.ParseFS(templatesFS, "templates/*.html")),
		router:    routegroup.New(http.NewServeMux()),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Run starts the HTTP server and handles graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	listen, timeout, _ := s.config.GetPreviewConfig()
	log.Printf("[INFO] starting preview server on %s", listen)

	s.lock.Lock()
	s.httpServer = &http.Server{
		Addr:         listen,
		Handler:      s.router,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	}
	s.lock.Unlock()

	go func() {
		<-ctx.Done()
		log.Printf("[INFO] shutting down preview server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] server shutdown error: %v", err)
		}
	}()

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

// setupMiddleware configures standard middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(rest.AppInfo("floectl", "floe-dev", s.version))
	s.router.Use(rest.Ping)

	if s.debug {
		s.router.Use(logger.New(logger.Log(lgr.Default()), logger.Prefix("[DEBUG]")).Handler)
	}

	s.router.Use(rest.Recoverer(lgr.Default()))
	s.router.Use(rest.Throttle(100))
	s.router.Use(rest.SizeLimit(1024 * 1024)) // 1MB
}

// setupRoutes configures application routes
func (s *Server) setupRoutes() {
	// API routes
	s.router.Mount("/api/v1").Route(func(r *routegroup.Bundle) {
		r.HandleFunc("GET /status", s.statusHandler)
		r.HandleFunc("GET /records", s.recordsHandler)
		r.HandleFunc("POST /feed/next", s.nextPageHandler)
		r.HandleFunc("POST /feed/reset", s.resetHandler)
		r.HandleFunc("POST /feed/observe", s.observeHandler)
	})

	// RSS export
	s.router.HandleFunc("GET /rss", s.rssHandler)

	// feed page
	s.router.HandleFunc("GET /{$}", s.feedPageHandler)
}

// Handler exposes the router, used by tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// renderJSON sends JSON response
func renderJSON(w http.ResponseWriter, _ *http.Request, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("[ERROR] can't encode response to JSON: %v", err)
		}
	}
}

// renderError sends error response as JSON
func renderError(w http.ResponseWriter, r *http.Request, err error, code int) {
	errMsg := "unknown error"
	if err != nil {
		errMsg = err.Error()
	}
	renderJSON(w, r, code, map[string]string{"error": errMsg})
}
