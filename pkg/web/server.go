// Package web serves the chat page to browsers, one transcript per session cookie.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/minhyannv/chat-assistant-go/pkg/chat"
	loggerpkg "github.com/minhyannv/chat-assistant-go/pkg/logger"
	"github.com/minhyannv/chat-assistant-go/pkg/page"
	"github.com/minhyannv/chat-assistant-go/pkg/render"
)

const (
	// SessionCookie names the cookie carrying the session identifier.
	SessionCookie = "chat_session"

	// MaxMessageBytes bounds one submitted form.
	MaxMessageBytes = 64 * 1024

	DefaultMaxIdle       = 2 * time.Hour
	DefaultSweepInterval = 10 * time.Minute
	shutdownTimeout      = 5 * time.Second
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// Server is the browser chat page.
type Server struct {
	store         *chat.Store
	logger        loggerpkg.Logger
	verbose       bool
	maxIdle       time.Duration
	sweepInterval time.Duration
}

// NewServer creates a server over store.
func NewServer(store *chat.Store, opts ...Option) *Server {
	s := &Server{
		store:         store,
		logger:        loggerpkg.NopLogger{},
		maxIdle:       DefaultMaxIdle,
		sweepInterval: DefaultSweepInterval,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("POST /clear", s.handleClear)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return s.logRequests(mux)
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.sweepLoop(ctx)

	errCh := make(chan error, 1)
	go func() {
		loggerpkg.Info(s.logger, "listening", map[string]any{"addr": addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		loggerpkg.Info(s.logger, "shutting down", nil)
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) sweepLoop(ctx context.Context) {
	if s.sweepInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.store.Sweep(s.maxIdle)
		}
	}
}

type turnView struct {
	Role    string
	HTML    template.HTML
	IsError bool
}

type pageView struct {
	Title           string
	Subtitle        string
	Placeholder     string
	Thinking        string
	ClearLabel      string
	SettingsHeading string
	GuideHeading    string
	SecurityHeading string
	SecurityNote    string
	Instructions    []string
	Turns           []turnView
	Error           string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)

	view := pageView{
		Title:           page.Title,
		Subtitle:        page.Subtitle,
		Placeholder:     page.InputPlaceholder,
		Thinking:        page.Thinking,
		ClearLabel:      page.ClearLabel,
		SettingsHeading: page.SettingsHeading,
		GuideHeading:    page.GuideHeading,
		SecurityHeading: page.SecurityHeading,
		SecurityNote:    page.SecurityNote,
		Instructions:    page.Instructions,
	}
	for _, turn := range sess.Transcript() {
		tv := turnView{Role: string(turn.Role)}
		if turn.IsError() {
			tv.IsError = true
			tv.HTML = template.HTML(template.HTMLEscapeString(turn.Content))
		} else if turn.Role == chat.RoleAssistant {
			tv.HTML = render.HTML(turn.Content)
		} else {
			tv.HTML = template.HTML(template.HTMLEscapeString(turn.Content))
		}
		view.Turns = append(view.Turns, tv)
	}
	if err := sess.LastError(); err != nil {
		view.Error = chat.ErrorContent(err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := indexTemplate.Execute(w, view); err != nil {
		loggerpkg.Error(s.logger, "render page", map[string]any{"error": err.Error()})
	}
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxMessageBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	sess := s.session(w, r)

	// The turn runs to completion even if the browser goes away.
	ctx := context.WithoutCancel(r.Context())
	_, err := sess.Submit(ctx, r.PostForm.Get("message"))
	switch {
	case err == nil, errors.Is(err, chat.ErrEmptyMessage), errors.Is(err, chat.ErrCleared):
	case errors.Is(err, chat.ErrBusy):
		http.Error(w, "a reply is still pending", http.StatusConflict)
		return
	default:
		loggerpkg.Error(s.logger, "submit failed", map[string]any{"session": sess.ID(), "error": err.Error()})
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleClear empties the transcript and drops the session; the next page
// load issues a fresh one.
func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	sess.Clear()
	s.store.Delete(sess.ID())
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"sessions": s.store.Len(),
	})
}

// session returns the caller's session, issuing a cookie for new ones.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *chat.Session {
	var id string
	if c, err := r.Cookie(SessionCookie); err == nil {
		id = c.Value
	}
	sess, created := s.store.GetOrCreate(id)
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    sess.ID(),
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return sess
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		loggerpkg.Debug(s.verbose, s.logger, "request", map[string]any{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rec.status,
			"duration_ms": time.Since(start).Milliseconds(),
		})
	})
}
