package httpapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"bug-reproducer/internal/application/port/output"
	"bug-reproducer/internal/usecase/action"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"
	"github.com/rs/zerolog"
)

// backendLogSink is implemented by browser sessions that can attach server
// side log lines to their state.
type backendLogSink interface {
	AddBackendLog(line string)
}

type Config struct {
	Addr string
	// JSONLogs switches request logging from the console format to JSON.
	JSONLogs bool
	// RequestTimeout bounds a single browser operation.
	RequestTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Addr:           ":8787",
		RequestTimeout: 2 * time.Minute,
	}
}

// Server serves a single browser session. Requests are handled one at a
// time because the underlying page is not safe for concurrent use.
type Server struct {
	cfg        Config
	browser    output.BrowserPort
	logger     output.LoggerPort
	reqLogger  zerolog.Logger
	sem        chan struct{}
	httpServer *http.Server
}

func NewServer(cfg Config, browser output.BrowserPort, logger output.LoggerPort) *Server {
	return &Server{
		cfg:     cfg,
		browser: browser,
		logger:  logger,
		reqLogger: httplog.NewLogger("browser-service", httplog.Options{
			JSON:    cfg.JSONLogs,
			Concise: true,
		}),
		sem: make(chan struct{}, 1),
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(httplog.RequestLogger(s.reqLogger))
	r.Use(middleware.Recoverer)
	if s.cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.cfg.RequestTimeout))
	}

	r.Get("/health", s.handleHealth)
	r.Group(func(r chi.Router) {
		r.Use(s.serialize)
		r.Post("/init", s.handleInit)
		r.Post("/navigate", s.handleNavigate)
		r.Get("/dom", s.handleDOM)
		r.Post("/click", s.handleClick)
		r.Post("/input", s.handleInput)
		r.Get("/state", s.handleState)
		r.Get("/network", s.handleNetwork)
		r.Get("/screenshot", s.handleScreenshot)
		r.Get("/html", s.handleHTML)
		r.Post("/backend-logs", s.handleBackendLogs)
		r.Post("/stop", s.handleStop)
		r.Post("/close", s.handleClose)
	})
	return r
}

// ListenAndServe blocks until ctx is cancelled, then shuts down gracefully
// and closes the browser session.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Browser service listening", "addr", s.cfg.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("browser service failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("Browser service shutdown failed", "error", err)
	}
	if err := s.browser.Close(); err != nil {
		s.logger.Warn("Browser close failed", "error", err)
	}
	return nil
}

func (s *Server) serialize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case s.sem <- struct{}{}:
		case <-r.Context().Done():
			respondError(w, http.StatusServiceUnavailable, CodeInternal, "request cancelled while waiting for the browser")
			return
		}
		defer func() { <-s.sem }()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleInit(w http.ResponseWriter, r *http.Request) {
	var req InitRequest
	if !decode(w, r, &req) {
		return
	}
	// The session outlives this request.
	if err := s.browser.Init(context.WithoutCancel(r.Context()), req.Headless); err != nil {
		s.fail(w, "init", err)
		return
	}
	respondJSON(w, http.StatusOK, StatusResponse{Success: true})
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req NavigateRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.browser.Navigate(r.Context(), req.URL); err != nil {
		s.fail(w, "navigate", err)
		return
	}
	respondJSON(w, http.StatusOK, StatusResponse{Success: true})
}

func (s *Server) handleDOM(w http.ResponseWriter, r *http.Request) {
	elements, err := s.browser.DOM(r.Context())
	if err != nil {
		s.fail(w, "dom", err)
		return
	}
	respondJSON(w, http.StatusOK, DOMResponse{Elements: elements})
}

// handleClick accepts any selector the executor understands, including
// text="..." forms and "structural or text=..." hints.
func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	var req ClickRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Selector == "" {
		respondError(w, http.StatusBadRequest, CodeBadRequest, "selector is required")
		return
	}

	target := action.ResolveSelector(req.Selector)
	var err error
	if target.Kind == action.TargetText {
		err = s.browser.ClickText(r.Context(), target.Value)
	} else {
		err = s.browser.ClickSelector(r.Context(), target.Value)
	}
	if err != nil {
		s.fail(w, "click", err)
		return
	}
	respondJSON(w, http.StatusOK, StatusResponse{Success: true})
}

func (s *Server) handleInput(w http.ResponseWriter, r *http.Request) {
	var req InputRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Selector == "" {
		respondError(w, http.StatusBadRequest, CodeBadRequest, "selector is required")
		return
	}

	target := action.ResolveSelector(req.Selector)
	var err error
	if target.Kind == action.TargetText {
		err = s.browser.FillText(r.Context(), target.Value, req.Text)
	} else {
		err = s.browser.FillSelector(r.Context(), target.Value, req.Text)
	}
	if err != nil {
		s.fail(w, "input", err)
		return
	}
	respondJSON(w, http.StatusOK, StatusResponse{Success: true})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	state, err := s.browser.State(r.Context())
	if err != nil {
		s.fail(w, "state", err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleNetwork(w http.ResponseWriter, r *http.Request) {
	entries, err := s.browser.Network(r.Context())
	if err != nil {
		s.fail(w, "network", err)
		return
	}
	respondJSON(w, http.StatusOK, NetworkResponse{Entries: entries})
}

func (s *Server) handleScreenshot(w http.ResponseWriter, r *http.Request) {
	shot, err := s.browser.Screenshot(r.Context())
	if err != nil {
		s.fail(w, "screenshot", err)
		return
	}
	respondJSON(w, http.StatusOK, ScreenshotResponse{
		Screenshot: base64.StdEncoding.EncodeToString(shot.Data),
		Format:     "base64",
		ImageType:  shot.Format,
		Width:      shot.Width,
		Height:     shot.Height,
	})
}

func (s *Server) handleHTML(w http.ResponseWriter, r *http.Request) {
	html, err := s.browser.HTML(r.Context())
	if err != nil {
		s.fail(w, "html", err)
		return
	}
	respondJSON(w, http.StatusOK, HTMLResponse{HTML: html})
}

func (s *Server) handleBackendLogs(w http.ResponseWriter, r *http.Request) {
	sink, ok := s.browser.(backendLogSink)
	if !ok {
		respondError(w, http.StatusNotImplemented, CodeInternal, "backend logs are not supported by this browser")
		return
	}
	var req BackendLogRequest
	if !decode(w, r, &req) {
		return
	}
	for _, line := range req.Lines {
		sink.AddBackendLog(line)
	}
	respondJSON(w, http.StatusOK, StatusResponse{Success: true})
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	var req StopRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := s.browser.Finalize(r.Context(), req.TracingPath)
	if err != nil {
		s.fail(w, "stop", err)
		return
	}
	respondJSON(w, http.StatusOK, StopResponse{
		Success:     true,
		TracingPath: res.TracingPath,
		VideoPath:   res.VideoPath,
	})
}

func (s *Server) handleClose(w http.ResponseWriter, _ *http.Request) {
	if err := s.browser.Close(); err != nil {
		s.fail(w, "close", err)
		return
	}
	respondJSON(w, http.StatusOK, StatusResponse{Success: true})
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	code := ErrorCode(err)
	status := http.StatusInternalServerError
	switch code {
	case CodeNotInitialized, CodeInvalidURL:
		status = http.StatusBadRequest
	case CodeElementNotFound:
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("Browser operation failed", "op", op, "error", err)
	}
	respondError(w, status, code, err.Error())
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, CodeBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, msg string) {
	respondJSON(w, status, ErrorResponse{Error: msg, Code: code})
}
