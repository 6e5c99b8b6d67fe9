package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/veritaslab/credence/internal/domain"
	"github.com/veritaslab/credence/internal/service"
)

type ClaimHandler struct {
	svc *service.ClaimService
}

func NewClaimHandler(svc *service.ClaimService) *ClaimHandler {
	return &ClaimHandler{svc: svc}
}

type createClaimRequest struct {
	EventID    string         `json:"event_id,omitempty"`
	SourceName string         `json:"source_name"`
	SourceType string         `json:"source_type,omitempty"`
	SourceURL  string         `json:"source_url,omitempty"`
	Text       string         `json:"text"`
	ClaimType  string         `json:"claim_type,omitempty"`
	Entities   []string       `json:"entities,omitempty"`
	AssertedAt time.Time      `json:"asserted_at,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

func (h *ClaimHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claim, err := h.svc.Create(r.Context(), &service.CreateClaimInput{
		EventID:    req.EventID,
		SourceName: req.SourceName,
		SourceType: domain.SourceType(req.SourceType),
		SourceURL:  req.SourceURL,
		Text:       req.Text,
		ClaimType:  req.ClaimType,
		Entities:   req.Entities,
		AssertedAt: req.AssertedAt,
		Metadata:   req.Metadata,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidClaim),
			errors.Is(err, service.ErrInvalidSourceType):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrEventNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to create claim")
		}
		return
	}

	writeJSON(w, http.StatusCreated, claim)
}

func (h *ClaimHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid claim id")
		return
	}

	claim, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrClaimNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get claim")
		return
	}

	writeJSON(w, http.StatusOK, claim)
}

type updateClaimStatusRequest struct {
	Status       string         `json:"status"`
	Verification map[string]any `json:"verification,omitempty"`
}

func (h *ClaimHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid claim id")
		return
	}

	var req updateClaimStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claim, err := h.svc.UpdateStatus(r.Context(), id, domain.ClaimStatus(req.Status), req.Verification)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStatus):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrClaimNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrInvalidTransition):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to update claim status")
		}
		return
	}

	writeJSON(w, http.StatusOK, claim)
}

type createRefutationRequest struct {
	RefutingClaimID string   `json:"refuting_claim_id"`
	RefutedClaimID  string   `json:"refuted_claim_id"`
	Confidence      float64  `json:"confidence"`
	Evidence        []string `json:"evidence,omitempty"`
}

func (h *ClaimHandler) Refute(w http.ResponseWriter, r *http.Request) {
	var req createRefutationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	refutingID, err := uuid.Parse(req.RefutingClaimID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid refuting_claim_id")
		return
	}
	refutedID, err := uuid.Parse(req.RefutedClaimID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid refuted_claim_id")
		return
	}

	ref, err := h.svc.Refute(r.Context(), refutingID, refutedID, req.Confidence, req.Evidence)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSelfRefutation),
			errors.Is(err, service.ErrInvalidConfidence):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrClaimNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrAlreadyRefuted):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to record refutation")
		}
		return
	}

	writeJSON(w, http.StatusCreated, ref)
}

func (h *ClaimHandler) ListRefutations(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid claim id")
		return
	}

	refs, err := h.svc.ListRefutations(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrClaimNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to list refutations")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"refutations": refs,
		"count":       len(refs),
	})
}
