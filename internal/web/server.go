// Package web serves the reader as a single HTML page. Every page load
// mounts a fresh viewer; nothing survives a reload.
package web

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/patrickmn/go-cache"

	"github.com/metcalfc/folio/internal/config"
	"github.com/metcalfc/folio/internal/health"
	"github.com/metcalfc/folio/internal/i18n"
	"github.com/metcalfc/folio/internal/reader"
	"github.com/metcalfc/folio/internal/viewer"
)

//go:embed templates/*
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/page.html"))

const loadTimeout = 30 * time.Second

// Options configures a Server.
type Options struct {
	Config *config.Config
	// Source is the book every mount loads.
	Source  reader.Source
	Labels  i18n.Labels
	Health  *health.Handler
	Library viewer.Library
	Info    *log.Logger
	Error   *log.Logger
}

// Server is the web page and its mounts.
type Server struct {
	router chi.Router
	mounts *cache.Cache
	source reader.Source
	cfg    *config.Config
	labels i18n.Labels
	step   int
	lib    viewer.Library
	info   *log.Logger
	errs   *log.Logger
}

type mount struct {
	id      string
	host    *viewer.Host
	surface *htmlSurface
}

// New builds the router. Call Close to tear down live mounts.
func New(opts Options) *Server {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.GetDefault()
	}
	info, errs := opts.Info, opts.Error
	if info == nil {
		info = log.New(io.Discard, "", 0)
	}
	if errs == nil {
		errs = log.New(io.Discard, "", 0)
	}
	hc := opts.Health
	if hc == nil {
		hc = health.NewHandler("")
	}

	ttl := time.Duration(cfg.Server.MountTTL) * time.Minute
	s := &Server{
		router: chi.NewRouter(),
		mounts: cache.New(ttl, ttl/2),
		source: opts.Source,
		cfg:    cfg,
		labels: opts.Labels,
		step:   cfg.Reader.FontStep,
		lib:    opts.Library,
		info:   info,
		errs:   errs,
	}
	if s.labels.Lang == "" {
		s.labels = i18n.For("en")
	}
	s.mounts.OnEvicted(func(id string, v interface{}) {
		v.(*mount).host.Teardown()
		s.info.Printf("unmounted %s", id)
	})

	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/health", hc.LivenessHandler())
	s.router.Get("/health/ready", hc.ReadinessHandler())

	s.router.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(cfg.Server.RateLimit, time.Minute))

		r.Get("/", s.handleMount)
		r.Route("/m/{id}", func(r chi.Router) {
			r.Get("/", s.handlePage)
			r.Post("/chapter/{n}", s.handleChapter)
			r.Post("/font", s.handleFont)
			r.Post("/toc", s.handleTOC)
			r.Post("/resize", s.handleResize)
			r.Post("/unmount", s.handleUnmount)
		})
	})
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Mounts returns the number of live mounts.
func (s *Server) Mounts() int {
	return s.mounts.ItemCount()
}

// Close tears down every live mount.
func (s *Server) Close() {
	for id := range s.mounts.Items() {
		s.mounts.Delete(id)
	}
}

func (s *Server) render(w http.ResponseWriter, code int, d pageData) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, d); err != nil {
		s.errs.Printf("render page: %v", err)
		http.Error(w, "Failed to render template", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	w.Write(buf.Bytes())
}
