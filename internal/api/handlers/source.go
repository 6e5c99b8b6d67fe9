package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/veritaslab/credence/internal/domain"
	"github.com/veritaslab/credence/internal/service"
)

type SourceHandler struct {
	sources    *service.SourceService
	reputation *service.ReputationService
}

func NewSourceHandler(sources *service.SourceService, reputation *service.ReputationService) *SourceHandler {
	return &SourceHandler{sources: sources, reputation: reputation}
}

type createSourceRequest struct {
	Name        string         `json:"name"`
	Type        string         `json:"type,omitempty"`
	URL         string         `json:"url,omitempty"`
	Description string         `json:"description,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

func (h *SourceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	src := &domain.Source{
		Name:        req.Name,
		Type:        domain.SourceType(req.Type),
		URL:         req.URL,
		Description: req.Description,
		Metadata:    req.Metadata,
	}

	registered, err := h.sources.Register(r.Context(), src)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidSource),
			errors.Is(err, service.ErrInvalidSourceType):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to register source")
		}
		return
	}

	writeJSON(w, http.StatusCreated, registered)
}

func (h *SourceHandler) GetByName(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	src, err := h.sources.GetByName(r.Context(), name)
	if err != nil {
		if errors.Is(err, service.ErrSourceNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get source")
		return
	}

	writeJSON(w, http.StatusOK, src)
}

func (h *SourceHandler) Trending(w http.ResponseWriter, r *http.Request) {
	sources, err := h.sources.ListTrending(r.Context(), queryLimit(r, 10))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list trending sources")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sources": sources,
		"count":   len(sources),
	})
}

func (h *SourceHandler) GetReputation(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	view, err := h.reputation.GetReputation(r.Context(), name)
	if err != nil {
		if errors.Is(err, service.ErrSourceNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get reputation")
		return
	}

	writeJSON(w, http.StatusOK, view)
}

type updateReputationRequest struct {
	SourceID        string  `json:"source_id"`
	InvestigationID string  `json:"investigation_id"`
	Credibility     float64 `json:"credibility_score"`
	TotalClaims     int     `json:"total_claims"`
	VerifiedClaims  int     `json:"verified_claims"`
	RefutedClaims   int     `json:"refuted_claims"`
}

func (req *updateReputationRequest) result() *domain.InvestigationResult {
	return &domain.InvestigationResult{
		InvestigationID: req.InvestigationID,
		Credibility:     req.Credibility,
		TotalClaims:     req.TotalClaims,
		VerifiedClaims:  req.VerifiedClaims,
		RefutedClaims:   req.RefutedClaims,
	}
}

func (h *SourceHandler) UpdateReputation(w http.ResponseWriter, r *http.Request) {
	var req updateReputationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	score, err := h.reputation.UpdateSourceReputation(r.Context(), req.SourceID, req.result())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidSourceID),
			errors.Is(err, service.ErrInvalidResult):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrSourceNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrCacheInconsistent):
			writeError(w, http.StatusInternalServerError, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to update reputation")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"source_id":    req.SourceID,
		"credit_score": score,
	})
}

type batchReputationRequest struct {
	SourceIDs       []string `json:"source_ids"`
	InvestigationID string   `json:"investigation_id"`
	Credibility     float64  `json:"credibility_score"`
	TotalClaims     int      `json:"total_claims"`
	VerifiedClaims  int      `json:"verified_claims"`
	RefutedClaims   int      `json:"refuted_claims"`
}

func (h *SourceHandler) BatchUpdateReputation(w http.ResponseWriter, r *http.Request) {
	var req batchReputationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.SourceIDs) == 0 {
		writeError(w, http.StatusBadRequest, "source_ids is required")
		return
	}

	result := &domain.InvestigationResult{
		InvestigationID: req.InvestigationID,
		Credibility:     req.Credibility,
		TotalClaims:     req.TotalClaims,
		VerifiedClaims:  req.VerifiedClaims,
		RefutedClaims:   req.RefutedClaims,
	}

	applied, failed := h.reputation.BatchUpdateReputation(r.Context(), req.SourceIDs, result)

	writeJSON(w, http.StatusOK, map[string]any{
		"applied": applied,
		"failed":  failed,
	})
}
