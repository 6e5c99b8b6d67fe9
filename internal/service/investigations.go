package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/veritaslab/credence/internal/domain"
	"github.com/veritaslab/credence/internal/store"
)

var (
	ErrInvestigationNotFound = errors.New("investigation not found")
	ErrInvalidInvestigation  = errors.New("invalid investigation")
)

// InvestigationService keeps the record of what was investigated and what it
// concluded, so reputation updates can point back at their evidence.
type InvestigationService struct {
	store domain.InvestigationStore
}

func NewInvestigationService(s domain.InvestigationStore) *InvestigationService {
	return &InvestigationService{store: s}
}

// Save upserts an investigation report. Re-saving under the same id replaces
// the report; external pipelines retry, and the last write is the one that
// counts.
func (s *InvestigationService) Save(ctx context.Context, inv *domain.Investigation) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	if inv.CredibilityScore < 0 || inv.CredibilityScore > 100 {
		return fmt.Errorf("%w: credibility %.2f out of range", ErrInvalidInvestigation, inv.CredibilityScore)
	}

	err := s.store.Save(ctx, inv)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrEventNotFound
		}
		return err
	}
	return nil
}

func (s *InvestigationService) GetByID(ctx context.Context, id string) (*domain.Investigation, error) {
	inv, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvestigationNotFound
		}
		return nil, err
	}
	return inv, nil
}

func (s *InvestigationService) ListByEvent(ctx context.Context, eventID string) ([]domain.Investigation, error) {
	return s.store.ListByEvent(ctx, eventID)
}
