package history

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ocanamx/salud-rural/backend/internal/model/triage"
	historyService "github.com/ocanamx/salud-rural/backend/internal/service/history"
	sessionService "github.com/ocanamx/salud-rural/backend/internal/service/session"
	"github.com/ocanamx/salud-rural/backend/pkg/utils"
)

// Handler exposes the case history of a session's patient.
type Handler struct {
	sessions *sessionService.Service
	store    historyService.Store
}

func New(sessions *sessionService.Service, store historyService.Store) *Handler {
	return &Handler{sessions: sessions, store: store}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/sessions/{sessionID}/history", h.handleList)
	r.Get("/sessions/{sessionID}/history/latest/report", h.handleLatestReport)
	r.Post("/sessions/{sessionID}/validation", h.handleValidation)
}

func (h *Handler) patientID(r *http.Request) (string, error) {
	sessionID := chi.URLParam(r, "sessionID")
	session, err := h.sessions.Get(r.Context(), sessionID)
	if err != nil {
		return "", err
	}
	return session.Patient.ID, nil
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	patientID, err := h.patientID(r)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}

	encounters, err := h.store.All(r.Context(), patientID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"patientId":  patientID,
		"encounters": encounters,
	})
}

// handleLatestReport serves the rendered PDF of the most recent encounter.
func (h *Handler) handleLatestReport(w http.ResponseWriter, r *http.Request) {
	patientID, err := h.patientID(r)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}

	latest, err := h.store.Latest(r.Context(), patientID)
	if err != nil {
		if errors.Is(err, historyService.ErrNoEncounters) {
			utils.RespondError(w, http.StatusNotFound, err.Error())
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if latest.Report == nil || len(latest.Report.PDF) == 0 {
		utils.RespondError(w, http.StatusNotFound, "no report available for latest encounter")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Length", strconv.Itoa(len(latest.Report.PDF)))
	w.Header().Set("Content-Disposition", "attachment; filename=reporte_medico_"+patientID+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(latest.Report.PDF)
}

func (h *Handler) handleValidation(w http.ResponseWriter, r *http.Request) {
	patientID, err := h.patientID(r)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}

	var payload struct {
		Status        string `json:"status"`
		Urgency       string `json:"urgency"`
		Notes         string `json:"notes"`
		TreatmentPlan string `json:"treatmentPlan"`
		Validator     string `json:"validator"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	switch payload.Status {
	case triage.ValidationConfirmed, triage.ValidationModified, triage.ValidationRejected:
	default:
		utils.RespondError(w, http.StatusBadRequest, "status must be confirmed, modified or rejected")
		return
	}

	validation := triage.Validation{
		Status:        payload.Status,
		Urgency:       payload.Urgency,
		Notes:         payload.Notes,
		TreatmentPlan: payload.TreatmentPlan,
		Validator:     payload.Validator,
		CreatedAt:     time.Now(),
	}

	if err := h.store.AttachValidation(r.Context(), patientID, validation); err != nil {
		if errors.Is(err, historyService.ErrNoEncounters) {
			utils.RespondError(w, http.StatusNotFound, err.Error())
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusCreated, validation)
}
