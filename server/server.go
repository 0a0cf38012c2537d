package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/chatdesk/support-assistant/agent/orchestrator"
)

const (
	maxRequestBytes int64 = 1 << 20

	resetConfirmation = "Threads database reset successfully."
)

// Service is what the HTTP layer needs from the orchestration core.
type Service interface {
	HandleTurn(ctx context.Context, userID, message string) (string, error)
	Reset(ctx context.Context) error
}

type Config struct {
	Addr              string        `envconfig:"ADDR" split_words:"true" default:":5000"`
	AllowedOrigin     string        `envconfig:"ALLOWED_ORIGIN" split_words:"true" default:"http://localhost:3000"`
	ReadHeaderTimeout time.Duration `envconfig:"READ_HEADER_TIMEOUT" split_words:"true" default:"5s"`
}

type server struct {
	svc Service
}

// New builds the API server. Cross-origin calls are restricted to the
// single configured origin.
func New(cfg Config, svc Service) *http.Server {
	s := &server{svc: svc}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{cfg.AllowedOrigin},
		AllowedMethods: []string{http.MethodPost, http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Post("/api/assistant", s.handleAssistant)
	r.Post("/api/reset_threads", s.handleResetThreads)

	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

type assistantRequest struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *server) handleAssistant(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req assistantRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if strings.TrimSpace(req.Message) == "" || strings.TrimSpace(req.ID) == "" {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	reply, err := s.svc.HandleTurn(r.Context(), req.ID, req.Message)
	if err != nil {
		if errors.Is(err, orchestrator.ErrInvalidUser) || errors.Is(err, orchestrator.ErrInvalidMessage) {
			writeError(w, http.StatusBadRequest, "Invalid input")
			return
		}
		log.Error().Err(err).Str("user_id", req.ID).Msg("turn failed")
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"response": reply})
}

func (s *server) handleResetThreads(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Reset(r.Context()); err != nil {
		log.Error().Err(err).Msg("reset threads failed")
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": resetConfirmation})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
