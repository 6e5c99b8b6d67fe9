package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/veritaslab/credence/internal/domain"
	"github.com/veritaslab/credence/internal/store"
)

var ErrInvalidSource = errors.New("invalid source")

type SourceService struct {
	store domain.SourceStore

	// InitialScore is assigned on registration regardless of what the
	// caller sends; credit is earned through investigations, not declared.
	InitialScore int
}

func NewSourceService(s domain.SourceStore) *SourceService {
	return &SourceService{store: s, InitialScore: domain.DefaultCreditScore}
}

// Register creates the source if the name is new and returns the existing
// row otherwise.
func (s *SourceService) Register(ctx context.Context, src *domain.Source) (*domain.Source, error) {
	src.Name = strings.TrimSpace(src.Name)
	if src.Name == "" {
		return nil, fmt.Errorf("%w: missing name", ErrInvalidSource)
	}
	if src.Type == "" {
		src.Type = domain.SourceUnknown
	}
	if !domain.ValidSourceType(src.Type) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSourceType, src.Type)
	}
	src.CreditScore = s.InitialScore

	return s.store.FindOrCreate(ctx, src)
}

func (s *SourceService) GetByName(ctx context.Context, name string) (*domain.Source, error) {
	src, err := s.store.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSourceNotFound
		}
		return nil, err
	}
	return src, nil
}

// ListTrending returns the most-cited sources, busiest first.
func (s *SourceService) ListTrending(ctx context.Context, limit int) ([]domain.Source, error) {
	return s.store.ListTrending(ctx, limit)
}
