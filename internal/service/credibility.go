package service

import (
	"context"
	"errors"
	"math"

	"github.com/google/uuid"
	"github.com/veritaslab/credence/internal/domain"
	"github.com/veritaslab/credence/internal/store"
	"go.uber.org/zap"
)

const (
	// BaselineCredibility anchors every event at neutral before evidence
	// moves it. The baseline enters the blend at BaselineWeight so that
	// claim-derived impacts keep their full effect.
	BaselineCredibility = 50.0
	BaselineWeight      = 0.7

	VerifiedImpactWeight = 30.0
	RefutedImpactWeight  = -40.0
	SourceImpactWeight   = 0.3

	HighConfidenceClaims   = 3
	MediumConfidenceClaims = 2
)

const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

var ErrEventNotFound = errors.New("event not found")

// CredibilityResult is the deterministic output of scoring one event.
type CredibilityResult struct {
	EventID        string  `json:"event_id"`
	Score          float64 `json:"score"`
	TotalClaims    int     `json:"total_claims"`
	VerifiedClaims int     `json:"verified_claims"`
	RefutedClaims  int     `json:"refuted_claims"`
	Confidence     string  `json:"confidence"`
	Reason         string  `json:"reason,omitempty"`
}

type CredibilityService struct {
	events  domain.EventStore
	claims  domain.ClaimStore
	sources domain.SourceStore
	logger  *zap.Logger
}

func NewCredibilityService(events domain.EventStore, claims domain.ClaimStore, sources domain.SourceStore, logger *zap.Logger) *CredibilityService {
	return &CredibilityService{
		events:  events,
		claims:  claims,
		sources: sources,
		logger:  logger,
	}
}

// ComputeEventCredibility scores an event from its claims and their sources.
// It is a pure read: same store state, same result.
//
//	score = 50*0.7 + verified/total*30 + refuted/total*(-40) + avgSource*0.3
//
// clamped to [0,100] and rounded to two decimals. The source average is over
// the distinct sources behind the claims; a source cited by three claims
// counts once.
func (s *CredibilityService) ComputeEventCredibility(ctx context.Context, eventID string) (*CredibilityResult, error) {
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	claims, err := s.claims.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if len(claims) == 0 {
		return &CredibilityResult{
			EventID:    eventID,
			Score:      BaselineCredibility,
			Confidence: ConfidenceLow,
			Reason:     "no claims",
		}, nil
	}

	total := len(claims)
	verified, refuted := 0, 0
	sourceIDs := make([]uuid.UUID, 0, total)
	seen := make(map[uuid.UUID]bool)
	for _, c := range claims {
		switch c.Status {
		case domain.ClaimVerified:
			verified++
		case domain.ClaimRefuted:
			refuted++
		}
		if !seen[c.SourceID] {
			seen[c.SourceID] = true
			sourceIDs = append(sourceIDs, c.SourceID)
		}
	}

	avgSource, err := s.averageSourceScore(ctx, sourceIDs)
	if err != nil {
		return nil, err
	}

	verifiedImpact := float64(verified) / float64(total) * VerifiedImpactWeight
	refutedImpact := float64(refuted) / float64(total) * RefutedImpactWeight
	raw := BaselineCredibility*BaselineWeight + verifiedImpact + refutedImpact + avgSource*SourceImpactWeight

	result := &CredibilityResult{
		EventID:        eventID,
		Score:          round2(clampScore(raw)),
		TotalClaims:    total,
		VerifiedClaims: verified,
		RefutedClaims:  refuted,
		Confidence:     confidenceLabel(total),
	}

	s.logger.Debug("event credibility computed",
		zap.String("event_id", eventID),
		zap.Float64("score", result.Score),
		zap.Int("total_claims", total),
		zap.Int("verified_claims", verified),
		zap.Int("refuted_claims", refuted),
		zap.String("confidence", result.Confidence))

	return result, nil
}

// ApplyCredibility writes a computed score back to the event. A developing
// event moves to investigated in the same write; other statuses keep their
// status and only refresh the score.
func (s *CredibilityService) ApplyCredibility(ctx context.Context, eventID string, result *CredibilityResult) error {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrEventNotFound
		}
		return err
	}

	if event.Status == domain.EventDeveloping {
		return s.events.UpdateStatus(ctx, eventID, domain.EventInvestigated, &result.Score)
	}
	return s.events.UpdateCredibility(ctx, eventID, result.Score)
}

// averageSourceScore averages credit scores over distinct sources, falling
// back to neutral when none of the claims' sources resolve.
func (s *CredibilityService) averageSourceScore(ctx context.Context, sourceIDs []uuid.UUID) (float64, error) {
	if len(sourceIDs) == 0 {
		return BaselineCredibility, nil
	}

	sum, n := 0.0, 0
	for _, id := range sourceIDs {
		src, err := s.sources.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return 0, err
		}
		sum += float64(src.CreditScore)
		n++
	}
	if n == 0 {
		return BaselineCredibility, nil
	}
	return sum / float64(n), nil
}

func confidenceLabel(totalClaims int) string {
	switch {
	case totalClaims >= HighConfidenceClaims:
		return ConfidenceHigh
	case totalClaims == MediumConfidenceClaims:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
