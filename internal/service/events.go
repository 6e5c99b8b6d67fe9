package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/veritaslab/credence/internal/domain"
	"github.com/veritaslab/credence/internal/store"
)

var (
	ErrInvalidEvent  = errors.New("invalid event")
	ErrEventConflict = errors.New("event with this id already exists")
)

type EventService struct {
	store domain.EventStore
}

func NewEventService(s domain.EventStore) *EventService {
	return &EventService{store: s}
}

// Create registers an event. Callers may bring their own id as long as it
// fits the E- form; otherwise one is generated.
func (s *EventService) Create(ctx context.Context, e *domain.Event) error {
	if strings.TrimSpace(e.Title) == "" {
		return fmt.Errorf("%w: missing title", ErrInvalidEvent)
	}
	if e.ID == "" {
		e.ID = domain.NewEventID()
	} else if !domain.ValidEventID(e.ID) {
		return fmt.Errorf("%w: malformed id %q", ErrInvalidEvent, e.ID)
	}
	if e.Status == "" {
		e.Status = domain.EventDeveloping
	} else if !domain.ValidEventStatus(e.Status) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, e.Status)
	}
	if e.CredibilityScore == 0 {
		e.CredibilityScore = domain.DefaultCredibilityScore
	}

	err := s.store.Create(ctx, e)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return ErrEventConflict
		}
		return err
	}
	return nil
}

func (s *EventService) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	e, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return e, nil
}

func (s *EventService) List(ctx context.Context, limit int) ([]domain.Event, error) {
	return s.store.List(ctx, limit)
}

// UpdateStatus sets the lifecycle status directly. Credibility-driven status
// movement goes through the credibility engine instead.
func (s *EventService) UpdateStatus(ctx context.Context, id string, status domain.EventStatus) error {
	if !domain.ValidEventStatus(status) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	err := s.store.UpdateStatus(ctx, id, status, nil)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrEventNotFound
		}
		return err
	}
	return nil
}
