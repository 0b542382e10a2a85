package web

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/Vodeneev/matchpredict/internal/pkg/config"
	"github.com/Vodeneev/matchpredict/internal/pkg/health"
)

//go:embed templates/page.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/page.html"))

// Server is the web front: it renders the page of each browser session and
// turns form posts into controller operations.
type Server struct {
	cfg      *config.WebConfig
	backend  Backend
	opts     ControllerOptions
	sessions *sessionRegistry

	// lifetime bounds background prediction requests; cancelled by Close.
	lifetime context.Context
	stop     context.CancelFunc
}

type pageData struct {
	Messages   Messages
	View       View
	ShowDetail bool
	Refresh    int
}

// NewServer creates the web front for the API reachable through backend.
func NewServer(cfg *config.WebConfig, backend Backend) (*Server, error) {
	loc := time.Local
	if cfg.TimeZone != "" {
		l, err := time.LoadLocation(cfg.TimeZone)
		if err != nil {
			return nil, fmt.Errorf("invalid web.timezone %q: %w", cfg.TimeZone, err)
		}
		loc = l
	}

	s := &Server{
		cfg:     cfg,
		backend: backend,
		opts: ControllerOptions{
			Messages:       MessagesFor(cfg.Locale),
			Location:       loc,
			Backgrounds:    NewBackgrounds(cfg.StaticPrefix, cfg.Backgrounds, cfg.DefaultBackground),
			RequestTimeout: cfg.RequestTimeout,
		},
	}
	s.lifetime, s.stop = context.WithCancel(context.Background())
	s.sessions = newSessionRegistry(cfg.SessionTTL, cfg.MaxSessions, func(ctx context.Context) *Controller {
		return NewController(ctx, s.backend, s.opts)
	})
	return s, nil
}

// Router builds the HTTP routes of the web front.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(health.TrackRequests("web"))

	r.HandleFunc("/", s.handlePage).Methods(http.MethodGet)
	r.HandleFunc("/matches/{id}/select", s.handleSelect).Methods(http.MethodPost)
	r.HandleFunc("/back", s.handleBack).Methods(http.MethodPost)

	health.Register(r)
	r.Handle("/health/backend", health.NewRemoteChecker(s.cfg.BackendURL, 5*time.Second).Handler()).Methods(http.MethodGet)

	if s.cfg.StaticDir != "" {
		r.PathPrefix(s.cfg.StaticPrefix).Handler(
			http.StripPrefix(s.cfg.StaticPrefix, http.FileServer(http.Dir(s.cfg.StaticDir))),
		).Methods(http.MethodGet)
	}
	return r
}

// Serve runs the web front until ctx is done.
func (s *Server) Serve(ctx context.Context) error {
	sweepEvery := s.cfg.SessionTTL / 4
	if sweepEvery < time.Second {
		sweepEvery = time.Second
	}
	go s.sessions.run(ctx, sweepEvery)
	defer s.Close()

	return health.Run(ctx, s.cfg.Addr, "web", s.Router(), s.cfg.ReadHeaderTimeout)
}

// Close cancels pending prediction requests and drops all sessions.
func (s *Server) Close() {
	s.stop()
	s.sessions.closeAll()
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	ctrl := s.sessions.obtain(w, r)
	view := ctrl.View()

	data := pageData{
		Messages:   s.opts.Messages,
		View:       view,
		ShowDetail: view.Current == Detail,
	}
	if view.Current == Detail && view.Detail.Pending {
		data.Refresh = refreshSeconds(s.cfg.RefreshInterval)
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		slog.Error("Failed to render page", "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.sessions.lookup(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	match, ok := ctrl.Match(id)
	if !ok {
		http.NotFound(w, r)
		return
	}

	ctrl.SelectMatch(s.lifetime, match)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	if ctrl, ok := s.sessions.lookup(r); ok {
		ctrl.GoBack()
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func refreshSeconds(d time.Duration) int {
	secs := int(d.Round(time.Second) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}
