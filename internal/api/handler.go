// Package api exposes the wizard over HTTP as JSON endpoints: session-based
// routes driving the state machine, plus direct generation routes.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"maya-studio/internal/gateway"
	"maya-studio/internal/workflow"
)

type Options struct {
	Machine *workflow.Machine
	Gateway *gateway.Gateway
	Logger  *slog.Logger
}

type Handler struct {
	machine *workflow.Machine
	gw      *gateway.Gateway
	logger  *slog.Logger

	mu       sync.Mutex
	sessions map[string]struct{}
}

func New(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		machine:  opts.Machine,
		gw:       opts.Gateway,
		logger:   logger,
		sessions: make(map[string]struct{}),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/sessions", h.CreateSession)
		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Use(h.requireSession)
			r.Get("/", h.GetSession)
			r.Post("/messages", h.PostMessage)
			r.Post("/content-type/confirm", h.ConfirmContentType)
			r.Post("/content-type/reject", h.RejectContentType)
			r.Post("/inspiration", h.SelectInspiration)
			r.Post("/aesthetic", h.SelectAesthetic)
			r.Post("/revision", h.RequestRevision)
			r.Post("/approve", h.Approve)
			r.Post("/back", h.Back)
			r.Post("/reset", h.Reset)
		})

		r.Post("/generate-image", h.GenerateImage)
		r.Post("/generate-captions", h.GenerateCaptions)
		r.Post("/analyze-inspiration", h.AnalyzeInspiration)
	})
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

func (h *Handler) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "sessionID")

		h.mu.Lock()
		_, ok := h.sessions[id]
		h.mu.Unlock()

		if !ok {
			Error(w, http.StatusNotFound, "session not found")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()

	h.mu.Lock()
	h.sessions[id] = struct{}{}
	h.mu.Unlock()

	sess := h.machine.Session(id)
	JSON(w, http.StatusCreated, sessionResponse(id, sess))
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	JSON(w, http.StatusOK, sessionResponse(id, h.machine.Session(id)))
}

func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Text == "" {
		Error(w, http.StatusBadRequest, "text is required")
		return
	}

	sess, err := h.machine.HandleMessage(id, req.Text)
	h.respond(w, id, sess, err)
}

func (h *Handler) ConfirmContentType(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	sess, err := h.machine.ConfirmContentType(id)
	h.respond(w, id, sess, err)
}

func (h *Handler) RejectContentType(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	sess, err := h.machine.RejectContentType(id)
	h.respond(w, id, sess, err)
}

func (h *Handler) SelectInspiration(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")

	var req struct {
		Source      string `json:"source"`
		Reference   string `json:"reference"`
		ImageBase64 string `json:"imageBase64"`
		MimeType    string `json:"mimeType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var source workflow.InspirationSource
	switch req.Source {
	case "upload":
		source = workflow.InspirationUpload
	case "link":
		source = workflow.InspirationLink
	case "skip":
		source = workflow.InspirationSkip
	default:
		Error(w, http.StatusBadRequest, "source must be upload, link, or skip")
		return
	}

	img := gateway.InspirationImage{
		DataBase64: req.ImageBase64,
		MimeType:   req.MimeType,
		URL:        req.Reference,
	}
	if source != workflow.InspirationSkip && img.DataBase64 == "" && img.URL == "" {
		Error(w, http.StatusBadRequest, "imageBase64 or reference is required")
		return
	}

	sess, err := h.machine.SelectInspiration(r.Context(), id, source, req.Reference, img)
	h.respond(w, id, sess, err)
}

func (h *Handler) SelectAesthetic(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")

	var req struct {
		Aesthetic string `json:"aesthetic"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	sess, err := h.machine.SelectAesthetic(r.Context(), id, req.Aesthetic)
	h.respond(w, id, sess, err)
}

func (h *Handler) RequestRevision(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")

	var req struct {
		Aspect string `json:"aspect"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	sess, err := h.machine.RequestRevision(r.Context(), id, req.Aspect)
	h.respond(w, id, sess, err)
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	sess, err := h.machine.Approve(r.Context(), id)
	h.respond(w, id, sess, err)
}

func (h *Handler) Back(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	sess, err := h.machine.Back(id)
	h.respond(w, id, sess, err)
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	sess := h.machine.Reset(id)
	JSON(w, http.StatusOK, sessionResponse(id, sess))
}

func (h *Handler) respond(w http.ResponseWriter, id string, sess workflow.Session, err error) {
	switch {
	case err == nil:
		JSON(w, http.StatusOK, sessionResponse(id, sess))
	case errors.Is(err, workflow.ErrInvalidTransition):
		Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, workflow.ErrBusy):
		Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, workflow.ErrRevisionLimit):
		Error(w, http.StatusUnprocessableEntity, err.Error())
	default:
		h.logger.Error("session action failed", "session", id, "err", err)
		Error(w, http.StatusInternalServerError, "internal error")
	}
}
