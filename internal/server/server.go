// Package server serves form sessions over HTTP: the rendered page, form
// posts, schema import and export, and the live schema editor socket.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-dynform/internal/config"
	"github.com/goliatone/go-dynform/pkg/fileio"
	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/render"
	"github.com/goliatone/go-dynform/pkg/renderers/vanilla"
	"github.com/goliatone/go-dynform/pkg/schema"
	"github.com/goliatone/go-dynform/pkg/session"
	"github.com/goliatone/go-dynform/pkg/state"
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSchema sets the schema every new session starts from.
func WithSchema(form model.FormSchema) Option {
	return func(s *Server) {
		s.initial = form.Clone()
		s.hasInitial = true
	}
}

// WithRenderer replaces the HTML renderer.
func WithRenderer(renderer *vanilla.Renderer) Option {
	return func(s *Server) {
		if renderer != nil {
			s.html = renderer
		}
	}
}

// WithThemes replaces the theme set.
func WithThemes(themes *render.ThemeSet) Option {
	return func(s *Server) {
		if themes != nil {
			s.themes = themes
		}
	}
}

// WithSubmitter receives accepted submissions of every session, overriding
// the webhook configured by DYNFORM_SUBMIT_URL.
func WithSubmitter(submitter state.Submitter) Option {
	return func(s *Server) {
		s.submitter = submitter
	}
}

// WithCatalog offers the catalog's schemas under /schemas.
func WithCatalog(catalog *schema.Catalog) Option {
	return func(s *Server) {
		s.catalog = catalog
	}
}

// WithTranslator localizes rendered pages and notices.
func WithTranslator(locale string, translator render.Translator) Option {
	return func(s *Server) {
		s.messages.Locale = locale
		s.messages.Translator = translator
	}
}

// Server holds the routes and the session manager.
type Server struct {
	cfg        *config.Config
	logger     *slog.Logger
	initial    model.FormSchema
	hasInitial bool
	html       *vanilla.Renderer
	themes     *render.ThemeSet
	submitter  state.Submitter
	reader     *fileio.Reader
	messages   render.RenderOptions
	catalog    *schema.Catalog
	sessions   *session.Manager
	router     chi.Router
}

// New builds a server for cfg. Without WithSchema, sessions start from the
// embedded default schema.
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	if cfg == nil {
		cfg = config.Load()
	}
	s := &Server{
		cfg:    cfg,
		logger: slog.Default(),
		reader: fileio.NewReader(fileio.WithMaxBytes(cfg.MaxUploadBytes)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	if !s.hasInitial {
		s.initial = schema.Default()
	}
	if s.html == nil {
		renderer, err := vanilla.New()
		if err != nil {
			return nil, fmt.Errorf("server: html renderer: %w", err)
		}
		s.html = renderer
	}
	if s.themes == nil {
		themes, err := render.NewThemeSet()
		if err != nil {
			return nil, fmt.Errorf("server: themes: %w", err)
		}
		s.themes = themes
	}
	if s.submitter == nil && cfg.SubmitURL != "" {
		s.submitter = session.NewWebhookSubmitter(cfg.SubmitURL, session.WithWebhookTimeout(cfg.SubmitTimeout))
	}

	sessions, err := session.NewManager(cfg.MaxSessions, s.newSession,
		session.WithIdleTimeout(cfg.IdleTimeout),
		session.WithManagerLogger(s.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("server: sessions: %w", err)
	}
	s.sessions = sessions
	s.router = s.routes()
	return s, nil
}

func (s *Server) newSession(id string) *session.Session {
	storeOpts := []state.Option{state.WithToggleValidation(s.cfg.Toggle())}
	if s.submitter != nil {
		storeOpts = append(storeOpts, state.WithSubmitter(s.submitter))
	}
	return session.New(s.initial,
		session.WithID(id),
		session.WithReader(s.reader),
		session.WithLogger(s.logger),
		session.WithVariant(s.cfg.ThemeVariant),
		session.WithMessages(s.messages),
		session.WithStoreOptions(storeOpts...),
	)
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Sessions exposes the session manager.
func (s *Server) Sessions() *session.Manager {
	return s.sessions
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.FS(vanilla.AssetsFS()))))

	r.Group(func(r chi.Router) {
		r.Use(s.withSession)

		r.Get("/", s.handlePage)
		r.Get("/schemas", s.handleCatalog)
		r.Get("/schema/export", s.handleExport)
		r.Get("/ws", s.handleLive)

		r.Group(func(r chi.Router) {
			r.Use(s.parseForm)
			r.Use(s.requireCSRF)

			r.Post("/submit", s.handleSubmit)
			r.Post("/fields/{id}", s.handleField)
			r.Post("/schema/import", s.handleImport)
			r.Post("/schemas/{name}", s.handleCatalogLoad)
			r.Post("/schema/editor", s.handleEditor)
			r.Post("/theme", s.handleTheme)
		})
	})
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("server: request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// Run serves cfg.Addr until ctx is done, then shuts down gracefully.
func Run(ctx context.Context, cfg *config.Config, opts ...Option) error {
	srv, err := New(cfg, opts...)
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", srv.cfg.Addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", srv.cfg.Addr, err)
	}
	return srv.Serve(ctx, listener)
}

// Serve accepts connections on listener until ctx is done.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.cfg.ReadTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("server: listening", "addr", listener.Addr().String())
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		s.logger.Info("server: shutting down")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}
