// Package server is the live preview server of a page file.
package server

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/zrbsprite/cell"
	"github.com/zrbsprite/cell/internal/config"
	"github.com/zrbsprite/cell/internal/page"
)

// EventsPath is the route of the reload event stream.
const EventsPath = "/_cell/events"

// Server renders a page file and serves the result, re-rendering it when the
// file changes.
type Server struct {
	path string
	cfg  config.Serve
	log  zerolog.Logger

	registry *prometheus.Registry
	nucleus  *cell.Nucleus
	events   *Events
	router   chi.Router

	mu      sync.RWMutex
	current []byte
	err     error
	version int
}

type Option func(*Server)

func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) {
		s.log = l
	}
}

func New(path string, cfg config.Serve, options ...Option) *Server {
	s := &Server{
		path:     path,
		cfg:      cfg,
		log:      zerolog.Nop(),
		registry: prometheus.NewRegistry(),
	}
	for _, option := range options {
		option(s)
	}
	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	s.nucleus = cell.NewNucleus(
		cell.WithLogger(s.log),
		cell.WithMetrics(cell.NewMetrics(s.registry)),
	)
	s.events = NewEvents(s.log)
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok\n"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	if s.cfg.HotReload {
		r.Handle(EventsPath, s.events)
	}
	return r
}

func (s *Server) Handler() http.Handler { return s.router }

// Events returns the reload event stream.
func (s *Server) Events() *Events { return s.events }

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	body, err := s.current, s.err
	s.mu.RUnlock()

	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if body == nil {
		http.Error(w, "page not rendered yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(body)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		event := s.log.Debug()
		if status >= 500 {
			event = s.log.Error()
		} else if status >= 400 {
			event = s.log.Warn()
		}
		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Int("bytes", ww.BytesWritten()).
			Msg("http_request")
	})
}

// Reload parses and renders the page file. A failure is kept and served in
// place of the page until the next successful reload. It must run on the
// goroutine owning the Nucleus.
func (s *Server) Reload() error {
	var buf bytes.Buffer
	err := s.render(&buf)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.version++
	if err != nil {
		s.err = err
		s.log.Error().Err(err).Str("path", s.path).Msg("render failed")
		return err
	}
	s.current, s.err = buf.Bytes(), nil
	s.log.Info().Str("path", s.path).Int("version", s.version).Int("bytes", buf.Len()).Msg("page rendered")
	return nil
}

func (s *Server) render(buf *bytes.Buffer) error {
	p, err := page.Load(s.path)
	if err != nil {
		return err
	}
	options := []page.Option{page.WithLogger(s.log), page.WithNucleus(s.nucleus)}
	if s.cfg.HotReload && p.Options.Reload(true) {
		options = append(options, page.WithReload(EventsPath))
	}
	return p.Render(buf, options...)
}

// Version returns the number of reloads attempted so far.
func (s *Server) Version() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Run renders the page, then serves it on the configured address until ctx is
// done. Changes to the page file are re-rendered through the Nucleus event
// loop and announced to connected browsers.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Reload(); err != nil {
		s.log.Warn().Msg("serving the render error until the page is fixed")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.nucleus.Run(ctx)

	if s.cfg.HotReload {
		watcher, err := watchFile(s.path, s.cfg.Debounce, s.log, func(event fsnotify.Event) {
			s.nucleus.Do(func() {
				if err := s.Reload(); err != nil {
					s.events.Send("build-error", err.Error(), "")
					return
				}
				s.events.Send("reload", event.String(), "")
			})
		})
		if err != nil {
			return err
		}
		defer watcher.Close()
	}

	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	s.log.Info().Str("addr", s.cfg.Addr).Bool("hot_reload", s.cfg.HotReload).Msg("listening")

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdown, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		return srv.Shutdown(shutdown)
	}
}
