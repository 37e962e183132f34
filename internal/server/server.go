// Package server implements the chat backend: POST /chat answers a message
// using recalled memory and a Responder.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/diogo/recallchat/internal/memory"
	"github.com/diogo/recallchat/internal/models"
)

const (
	recalledPrefix  = "Recalled Summary: "
	recallLimit     = 10
	recallThreshold = 0.5
	maxRequestBody  = 1 << 20
)

// Server is the chat backend.
type Server struct {
	router    *chi.Mux
	addr      string
	responder Responder
	store     memory.Store
	userID    string
	logger    *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithUserID sets the user whose memory is written and recalled.
func WithUserID(id string) Option {
	return func(s *Server) { s.userID = id }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// NewServer creates a backend listening on addr. A nil store disables memory.
func NewServer(addr string, responder Responder, store memory.Store, opts ...Option) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		addr:      addr,
		responder: responder,
		store:     store,
		userID:    "default_user",
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)

	s.router.Get(models.PathHealth, s.health)
	s.router.Post(models.PathChat, s.chat)

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("chat backend starting", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("chat backend shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// chat accepts {"message": "..."} regardless of Content-Type.
func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	if !gjson.ValidBytes(body) {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var text string
	if msg := gjson.GetBytes(body, models.FieldMessage); msg.Type == gjson.String {
		text = strings.TrimSpace(msg.String())
	}
	if text == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	ctx := r.Context()
	reqID := middleware.GetReqID(ctx)

	summary, err := s.remember(ctx, text)
	if err != nil {
		s.logger.Error("memory failure", "request_id", reqID, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	prompt := make([]PromptMessage, 0, 2)
	if summary != "" {
		prompt = append(prompt, PromptMessage{Role: RoleSystem, Content: recalledPrefix + summary})
	}
	prompt = append(prompt, PromptMessage{Role: RoleUser, Content: text})

	reply, err := s.responder.Respond(ctx, prompt)
	if err != nil {
		s.logger.Error("completion failed", "request_id", reqID, "error", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("completion failed: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{models.FieldReply: reply})
}

// remember writes text to memory and returns a summary of earlier related
// memories. The record just written is left out of the recall. A failing
// memory backend during recall yields an empty summary.
func (s *Server) remember(ctx context.Context, text string) (string, error) {
	if s.store == nil {
		return "", nil
	}

	rec := memory.Record{ID: uuid.NewString(), UserID: s.userID, Content: text}
	if err := s.store.Write(ctx, rec); err != nil {
		return "", fmt.Errorf("memory write failed: %w", err)
	}

	matches, err := s.store.Recall(ctx, memory.Query{
		UserID:    s.userID,
		Text:      text,
		Limit:     recallLimit,
		Threshold: recallThreshold,
		ExcludeID: rec.ID,
	})
	if err != nil {
		if memory.IsBackendError(err) {
			s.logger.Warn("memory recall unavailable, answering without summary",
				"request_id", middleware.GetReqID(ctx), "error", err)
			return "", nil
		}
		return "", fmt.Errorf("memory recall failed: %w", err)
	}
	return memory.Summarize(matches), nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(models.HeaderContentType, models.ContentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{models.FieldError: message})
}
