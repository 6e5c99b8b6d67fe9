package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/veritaslab/credence/internal/domain"
	"github.com/veritaslab/credence/internal/store"
	"go.uber.org/zap"
)

var (
	ErrClaimNotFound     = errors.New("claim not found")
	ErrInvalidClaim      = errors.New("invalid claim")
	ErrInvalidSourceType = errors.New("invalid source type")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidConfidence = errors.New("confidence out of range")
	ErrSelfRefutation    = errors.New("claim cannot refute itself")
	ErrAlreadyRefuted    = errors.New("refutation already recorded")
)

// ClaimService ingests claims and owns their status lifecycle. Reputation
// counters move with the claim rows inside the store transactions, so a
// transition observed here is a counter bump observed everywhere.
type ClaimService struct {
	claims      domain.ClaimStore
	sources     domain.SourceStore
	events      domain.EventStore
	entities    domain.EntityStore
	refutations domain.RefutationStore
	logger      *zap.Logger

	// InitialScore is the credit score given to sources first seen through
	// claim ingestion.
	InitialScore int
}

func NewClaimService(
	claims domain.ClaimStore,
	sources domain.SourceStore,
	events domain.EventStore,
	entities domain.EntityStore,
	refutations domain.RefutationStore,
	logger *zap.Logger,
) *ClaimService {
	return &ClaimService{
		claims:       claims,
		sources:      sources,
		events:       events,
		entities:     entities,
		refutations:  refutations,
		logger:       logger,
		InitialScore: domain.DefaultCreditScore,
	}
}

// CreateClaimInput names the source rather than pointing at it; unseen
// sources enter the system at the neutral credit score.
type CreateClaimInput struct {
	EventID    string
	SourceName string
	SourceType domain.SourceType
	SourceURL  string
	Text       string
	ClaimType  string
	Entities   []string
	AssertedAt time.Time
	Metadata   map[string]any
}

// Create registers the claim's source and entities as needed, inserts the
// claim as pending, and warms the event's heat. Entity registration and the
// heat bump are best-effort; the claim itself is not.
func (s *ClaimService) Create(ctx context.Context, in *CreateClaimInput) (*domain.Claim, error) {
	if strings.TrimSpace(in.Text) == "" {
		return nil, fmt.Errorf("%w: empty text", ErrInvalidClaim)
	}
	if strings.TrimSpace(in.SourceName) == "" {
		return nil, fmt.Errorf("%w: missing source name", ErrInvalidClaim)
	}
	srcType := in.SourceType
	if srcType == "" {
		srcType = domain.SourceUnknown
	}
	if !domain.ValidSourceType(srcType) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSourceType, srcType)
	}

	var eventID *string
	if in.EventID != "" {
		if _, err := s.events.GetByID(ctx, in.EventID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, ErrEventNotFound
			}
			return nil, err
		}
		eventID = &in.EventID
	}

	src, err := s.sources.FindOrCreate(ctx, &domain.Source{
		Name:        strings.TrimSpace(in.SourceName),
		Type:        srcType,
		CreditScore: s.InitialScore,
		URL:         in.SourceURL,
	})
	if err != nil {
		return nil, err
	}

	entities := make([]string, 0, len(in.Entities))
	for _, name := range in.Entities {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		entities = append(entities, name)
		if _, err := s.entities.FindOrCreate(ctx, &domain.Entity{Name: name, Type: domain.EntityOther}); err != nil {
			s.logger.Warn("entity registration failed",
				zap.String("entity", name),
				zap.Error(err))
		}
	}

	claim := &domain.Claim{
		EventID:    eventID,
		SourceID:   src.ID,
		Text:       in.Text,
		Status:     domain.ClaimPending,
		ClaimType:  in.ClaimType,
		Entities:   entities,
		Metadata:   in.Metadata,
		AssertedAt: in.AssertedAt,
	}
	if err := s.claims.Create(ctx, claim); err != nil {
		return nil, err
	}

	if eventID != nil {
		if err := s.events.IncrementHeat(ctx, *eventID, 1); err != nil {
			s.logger.Warn("heat increment failed",
				zap.String("event_id", *eventID),
				zap.Error(err))
		}
	}

	s.logger.Info("claim recorded",
		zap.String("claim_id", claim.ID.String()),
		zap.String("source", src.Name),
		zap.Stringp("event_id", eventID))

	return claim, nil
}

func (s *ClaimService) Get(ctx context.Context, id uuid.UUID) (*domain.Claim, error) {
	claim, err := s.claims.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrClaimNotFound
		}
		return nil, err
	}
	return claim, nil
}

// UpdateStatus moves a claim along its lifecycle. Verified and refuted are
// terminal; a repeat of the current status is a no-op success. The store
// guards the transition against concurrent writers, so the counter behind it
// moves at most once.
func (s *ClaimService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ClaimStatus, verification map[string]any) (*domain.Claim, error) {
	if !domain.ValidClaimStatus(status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	claim, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if claim.Status == status {
		return claim, nil
	}
	if !claim.Status.CanTransition(status) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, claim.Status, status)
	}

	if err := s.claims.UpdateStatus(ctx, id, claim.Status, status, verification); err != nil {
		if errors.Is(err, store.ErrVersionConflict) {
			return nil, fmt.Errorf("%w: concurrent update from %s", ErrInvalidTransition, claim.Status)
		}
		return nil, err
	}

	s.logger.Info("claim status updated",
		zap.String("claim_id", id.String()),
		zap.String("from", string(claim.Status)),
		zap.String("to", string(status)))

	return s.Get(ctx, id)
}

// Refute records that one claim disputes another. The relationship is
// directed and recorded once per ordered pair; it does not by itself change
// either claim's status.
func (s *ClaimService) Refute(ctx context.Context, refutingID, refutedID uuid.UUID, confidence float64, evidence []string) (*domain.Refutation, error) {
	if refutingID == refutedID {
		return nil, ErrSelfRefutation
	}
	if confidence < 0 || confidence > 1 {
		return nil, fmt.Errorf("%w: %.2f", ErrInvalidConfidence, confidence)
	}
	for _, id := range []uuid.UUID{refutingID, refutedID} {
		if _, err := s.Get(ctx, id); err != nil {
			return nil, err
		}
	}

	ref := &domain.Refutation{
		RefutingClaimID: refutingID,
		RefutedClaimID:  refutedID,
		Confidence:      confidence,
		Evidence:        evidence,
	}
	if err := s.refutations.Create(ctx, ref); err != nil {
		switch {
		case errors.Is(err, store.ErrConflict):
			return nil, ErrAlreadyRefuted
		case errors.Is(err, store.ErrNotFound):
			return nil, ErrClaimNotFound
		}
		return nil, err
	}

	s.logger.Info("refutation recorded",
		zap.String("refuting_claim_id", refutingID.String()),
		zap.String("refuted_claim_id", refutedID.String()),
		zap.Float64("confidence", confidence))

	return ref, nil
}

func (s *ClaimService) ListRefutations(ctx context.Context, claimID uuid.UUID) ([]domain.Refutation, error) {
	if _, err := s.Get(ctx, claimID); err != nil {
		return nil, err
	}
	return s.refutations.ListInvolving(ctx, claimID)
}
