package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/veritaslab/credence/internal/domain"
	"github.com/veritaslab/credence/internal/service"
)

type EventHandler struct {
	events      *service.EventService
	credibility *service.CredibilityService
	graph       *service.GraphService
}

func NewEventHandler(events *service.EventService, credibility *service.CredibilityService, graph *service.GraphService) *EventHandler {
	return &EventHandler{events: events, credibility: credibility, graph: graph}
}

type createEventRequest struct {
	ID          string         `json:"id,omitempty"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Category    string         `json:"category,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	event := &domain.Event{
		ID:          req.ID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Tags:        req.Tags,
		Metadata:    req.Metadata,
	}

	if err := h.events.Create(r.Context(), event); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEvent),
			errors.Is(err, service.ErrInvalidStatus):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrEventConflict):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to create event")
		}
		return
	}

	writeJSON(w, http.StatusCreated, event)
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.List(r.Context(), queryLimit(r, 50))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"events": events,
		"count":  len(events),
	})
}

func (h *EventHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	event, err := h.events.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get event")
		return
	}

	writeJSON(w, http.StatusOK, event)
}

type updateEventStatusRequest struct {
	Status string `json:"status"`
}

func (h *EventHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateEventStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.events.UpdateStatus(r.Context(), id, domain.EventStatus(req.Status)); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStatus):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrEventNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to update event status")
		}
		return
	}

	event, err := h.events.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get event")
		return
	}

	writeJSON(w, http.StatusOK, event)
}

func (h *EventHandler) GetCredibility(w http.ResponseWriter, r *http.Request) {
	result, err := h.credibility.ComputeEventCredibility(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to compute credibility")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// RecomputeCredibility scores the event and persists the result in one call.
func (h *EventHandler) RecomputeCredibility(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := h.credibility.ComputeEventCredibility(r.Context(), id)
	if err == nil {
		err = h.credibility.ApplyCredibility(r.Context(), id, result)
	}
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to recompute credibility")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *EventHandler) Graph(w http.ResponseWriter, r *http.Request) {
	graph, err := h.graph.BuildEventGraph(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to build event graph")
		return
	}

	writeJSON(w, http.StatusOK, graph)
}

func (h *EventHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	entries, err := h.graph.PropagationTimeline(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to build timeline")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"event_id": id,
		"timeline": entries,
		"count":    len(entries),
	})
}
