package session

import (
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ocanamx/salud-rural/backend/internal/model/patient"
	historyService "github.com/ocanamx/salud-rural/backend/internal/service/history"
	sessionService "github.com/ocanamx/salud-rural/backend/internal/service/session"
	"github.com/ocanamx/salud-rural/backend/pkg/utils"
)

// Handler exposes session lifecycle and patient-context routes.
type Handler struct {
	sessions *sessionService.Service
	history  historyService.Store
}

func New(sessions *sessionService.Service, history historyService.Store) *Handler {
	return &Handler{sessions: sessions, history: history}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/sessions", h.handleCreate)
	r.Get("/sessions/{sessionID}", h.handleGet)
	r.Post("/sessions/{sessionID}/reset", h.handleReset)
	r.Put("/sessions/{sessionID}/location", h.handleUpdateLocation)
	r.Get("/sessions/{sessionID}/nearby", h.handleNearby)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.Create(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusCreated, session)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	session, err := h.sessions.Get(r.Context(), sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	cart, err := h.sessions.Cart(r.Context(), sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"session": session,
		"cart":    cart,
	})
}

// handleReset performs the "new patient" action: fresh identity, emptied
// transcript and cart, dropped case history.
func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	session, previousPatientID, err := h.sessions.Reset(r.Context(), sessionID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, sessionService.ErrSessionNotFound) {
			status = http.StatusNotFound
		}
		utils.RespondError(w, status, err.Error())
		return
	}

	if err := h.history.Reset(r.Context(), previousPatientID); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, session)
}

func (h *Handler) handleUpdateLocation(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var payload struct {
		Label string  `json:"label"`
		Lat   float64 `json:"lat"`
		Lon   float64 `json:"lon"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.sessions.UpdateLocation(r.Context(), sessionID, payload.Label, patient.Coordinates{
		Lat: payload.Lat,
		Lon: payload.Lon,
	})
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, session)
}

// mapPoint is one marker on the patient context map.
type mapPoint struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Kind string  `json:"kind"`
}

// handleNearby returns the patient marker plus generated pharmacy and
// hospital points scattered around the patient's location.
func (h *Handler) handleNearby(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	session, err := h.sessions.Get(r.Context(), sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	if session.Patient.Location == nil {
		utils.RespondError(w, http.StatusBadRequest, "patient location not set")
		return
	}

	loc := *session.Patient.Location
	points := []mapPoint{{Lat: loc.Lat, Lon: loc.Lon, Kind: "patient"}}

	for i := 0; i < 5+rand.Intn(6); i++ {
		points = append(points, mapPoint{
			Lat:  loc.Lat + float64(rand.Intn(5)-2)/100,
			Lon:  loc.Lon + float64(rand.Intn(5)-2)/100,
			Kind: "pharmacy",
		})
	}
	for i := 0; i < 1+rand.Intn(3); i++ {
		points = append(points, mapPoint{
			Lat:  loc.Lat + float64(rand.Intn(11)-5)/100,
			Lon:  loc.Lon + float64(rand.Intn(11)-5)/100,
			Kind: "hospital",
		})
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{"points": points})
}
