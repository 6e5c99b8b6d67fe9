package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/veritaslab/credence/internal/domain"
	"github.com/veritaslab/credence/internal/store"
	"go.uber.org/zap"
)

const (
	// DefaultHighThreshold and DefaultLowThreshold split investigation
	// outcomes into reward, penalty, and the neutral band between them.
	DefaultHighThreshold = 70.0
	DefaultLowThreshold  = 30.0

	DefaultIncrement = 5
	DefaultDecrement = 5
)

var (
	ErrSourceNotFound  = errors.New("source not found")
	ErrInvalidSourceID = errors.New("invalid source id")
	ErrInvalidResult   = errors.New("invalid investigation result")

	// ErrCacheInconsistent reports that the reputation write landed but the
	// cached view could not be dropped, so reads may briefly serve the old
	// score until the TTL expires.
	ErrCacheInconsistent = errors.New("reputation updated but cache invalidation failed")
)

// ReputationService closes the feedback loop between investigations and
// source credit: verified outcomes raise the sources behind them, refuted
// outcomes lower them, and the adjusted scores feed the next computation.
type ReputationService struct {
	sources domain.SourceStore
	cache   domain.ReputationCache
	logger  *zap.Logger

	// Thresholds and step sizes are exported so callers can tune the
	// flywheel without rebuilding.
	HighThreshold float64
	LowThreshold  float64
	Increment     int
	Decrement     int
}

func NewReputationService(sources domain.SourceStore, cache domain.ReputationCache, logger *zap.Logger) *ReputationService {
	return &ReputationService{
		sources:       sources,
		cache:         cache,
		logger:        logger,
		HighThreshold: DefaultHighThreshold,
		LowThreshold:  DefaultLowThreshold,
		Increment:     DefaultIncrement,
		Decrement:     DefaultDecrement,
	}
}

// UpdateSourceReputation applies one investigation outcome to one source.
// Replays of the same (investigation, source) pair are absorbed by the store
// and leave the score untouched. The returned score is the source's credit
// after the call, whether or not this call changed it.
func (s *ReputationService) UpdateSourceReputation(ctx context.Context, sourceID string, result *domain.InvestigationResult) (int, error) {
	id, err := parseSourceID(sourceID)
	if err != nil {
		return 0, err
	}
	if err := validateResult(result); err != nil {
		return 0, err
	}

	update := &domain.ReputationUpdate{
		SourceID:        id,
		InvestigationID: result.InvestigationID,
		ScoreDelta:      s.scoreDelta(result.Credibility),
		TotalClaims:     result.TotalClaims,
		VerifiedClaims:  result.VerifiedClaims,
		RefutedClaims:   result.RefutedClaims,
	}

	src, applied, err := s.sources.ApplyReputationUpdate(ctx, update)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, ErrSourceNotFound
		}
		return 0, err
	}

	if !applied {
		s.logger.Debug("reputation update already applied",
			zap.String("source_id", sourceID),
			zap.String("investigation_id", result.InvestigationID))
		return src.CreditScore, nil
	}

	s.logger.Info("source reputation updated",
		zap.String("source_id", sourceID),
		zap.String("source_name", src.Name),
		zap.String("investigation_id", result.InvestigationID),
		zap.Int("score_delta", update.ScoreDelta),
		zap.Int("credit_score", src.CreditScore))

	if err := s.invalidate(src.Name); err != nil {
		s.logger.Warn("reputation cache invalidation failed",
			zap.String("source_name", src.Name),
			zap.Error(err))
		return src.CreditScore, ErrCacheInconsistent
	}
	return src.CreditScore, nil
}

// BatchUpdateReputation fans one investigation result out to several sources.
// Failures are isolated per source; the counts report how many updates landed
// and how many did not.
func (s *ReputationService) BatchUpdateReputation(ctx context.Context, sourceIDs []string, result *domain.InvestigationResult) (applied, failed int) {
	for _, sourceID := range sourceIDs {
		if _, err := s.UpdateSourceReputation(ctx, sourceID, result); err != nil {
			failed++
			s.logger.Warn("batch reputation update failed",
				zap.String("source_id", sourceID),
				zap.String("investigation_id", result.InvestigationID),
				zap.Error(err))
			continue
		}
		applied++
	}
	return applied, failed
}

// GetReputation reads a source's reputation view through the cache.
func (s *ReputationService) GetReputation(ctx context.Context, name string) (*domain.ReputationView, error) {
	view, err := s.cache.Get(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSourceNotFound
		}
		return nil, err
	}
	return view, nil
}

// scoreDelta maps an investigation credibility to a credit adjustment. The
// high threshold is inclusive, the low threshold exclusive, so a score of
// exactly LowThreshold sits in the neutral band.
func (s *ReputationService) scoreDelta(credibility float64) int {
	switch {
	case credibility >= s.HighThreshold:
		return s.Increment
	case credibility < s.LowThreshold:
		return -s.Decrement
	default:
		return 0
	}
}

// invalidate drops the cached view, retrying once before giving up.
func (s *ReputationService) invalidate(name string) error {
	if err := s.cache.Invalidate(name); err != nil {
		return s.cache.Invalidate(name)
	}
	return nil
}

func parseSourceID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrInvalidSourceID, s)
	}
	return id, nil
}

func validateResult(result *domain.InvestigationResult) error {
	if result == nil {
		return fmt.Errorf("%w: missing result", ErrInvalidResult)
	}
	if result.InvestigationID == "" {
		return fmt.Errorf("%w: missing investigation id", ErrInvalidResult)
	}
	if result.Credibility < 0 || result.Credibility > 100 {
		return fmt.Errorf("%w: credibility %.2f out of range", ErrInvalidResult, result.Credibility)
	}
	if result.TotalClaims < 0 || result.VerifiedClaims < 0 || result.RefutedClaims < 0 {
		return fmt.Errorf("%w: negative claim counts", ErrInvalidResult)
	}
	if result.VerifiedClaims+result.RefutedClaims > result.TotalClaims {
		return fmt.Errorf("%w: resolved claims exceed total", ErrInvalidResult)
	}
	return nil
}
