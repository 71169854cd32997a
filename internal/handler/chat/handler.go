package chat

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	agentService "github.com/ocanamx/salud-rural/backend/internal/service/agent"
	sessionService "github.com/ocanamx/salud-rural/backend/internal/service/session"
	"github.com/ocanamx/salud-rural/backend/internal/service/tools"
	"github.com/ocanamx/salud-rural/backend/pkg/utils"
)

// Handler exposes the conversational turn loop over HTTP.
type Handler struct {
	agent    *agentService.Service
	sessions *sessionService.Service
	images   *tools.ImageDelivery
}

func New(agent *agentService.Service, sessions *sessionService.Service, images *tools.ImageDelivery) *Handler {
	return &Handler{agent: agent, sessions: sessions, images: images}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/sessions/{sessionID}/messages", h.handleTurn)
	r.Get("/sessions/{sessionID}/transcript", h.handleTranscript)
	r.Post("/sessions/{sessionID}/image", h.handleImage)
}

func (h *Handler) handleTurn(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var payload struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Content == "" {
		utils.RespondError(w, http.StatusBadRequest, "content is required")
		return
	}

	result, err := h.agent.Turn(r.Context(), sessionID, payload.Content)
	if err != nil {
		if errors.Is(err, sessionService.ErrSessionNotFound) {
			utils.RespondError(w, http.StatusNotFound, err.Error())
			return
		}
		// The apology reply is already part of the transcript; surface
		// the failure alongside it.
		utils.RespondJSON(w, http.StatusBadGateway, result)
		return
	}

	utils.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	messages, err := h.sessions.Transcript(r.Context(), sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

// handleImage forwards an uploaded medical image to the doctor once the
// patient consents.
func (h *Handler) handleImage(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	session, err := h.sessions.Get(r.Context(), sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "failed to read image")
		return
	}

	answer := r.FormValue("answer")
	outcome := h.images.Deliver(r.Context(), session.Patient.ID, header.Filename, data, answer)

	status := http.StatusOK
	if outcome.Status == tools.StatusError {
		status = http.StatusBadGateway
	}
	utils.RespondJSON(w, status, map[string]string{
		"status":  string(outcome.Status),
		"message": outcome.Message,
	})
}
