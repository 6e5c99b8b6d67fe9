package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/veritaslab/credence/internal/domain"
	"github.com/veritaslab/credence/internal/service"
)

type InvestigationHandler struct {
	svc *service.InvestigationService
}

func NewInvestigationHandler(svc *service.InvestigationService) *InvestigationHandler {
	return &InvestigationHandler{svc: svc}
}

type saveInvestigationRequest struct {
	ID               string         `json:"id,omitempty"`
	EventID          string         `json:"event_id,omitempty"`
	Report           map[string]any `json:"report,omitempty"`
	CredibilityScore float64        `json:"credibility_score"`
	StartedAt        *time.Time     `json:"started_at,omitempty"`
	CompletedAt      *time.Time     `json:"completed_at,omitempty"`
}

func (h *InvestigationHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req saveInvestigationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	inv := &domain.Investigation{
		ID:               req.ID,
		Report:           req.Report,
		CredibilityScore: req.CredibilityScore,
		StartedAt:        req.StartedAt,
		CompletedAt:      req.CompletedAt,
	}
	if req.EventID != "" {
		inv.EventID = &req.EventID
	}

	if err := h.svc.Save(r.Context(), inv); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInvestigation):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrEventNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to save investigation")
		}
		return
	}

	writeJSON(w, http.StatusCreated, inv)
}

func (h *InvestigationHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	inv, err := h.svc.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, service.ErrInvestigationNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get investigation")
		return
	}

	writeJSON(w, http.StatusOK, inv)
}

func (h *InvestigationHandler) List(w http.ResponseWriter, r *http.Request) {
	eventID := r.URL.Query().Get("event_id")
	if eventID == "" {
		writeError(w, http.StatusBadRequest, "event_id is required")
		return
	}

	invs, err := h.svc.ListByEvent(r.Context(), eventID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list investigations")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"investigations": invs,
		"count":          len(invs),
	})
}
