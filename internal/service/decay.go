package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/veritaslab/credence/internal/domain"
	"github.com/veritaslab/credence/internal/store"
	"go.uber.org/zap"
)

const (
	defaultDecayInterval    = 6 * time.Hour
	defaultInactivityWindow = 30 * 24 * time.Hour
	defaultDecayRate        = 0.1
	decaySweepTimeout       = 5 * time.Minute
	decayMinStep            = 1
)

type DecayResult struct {
	SourcesDecayed int `json:"sources_decayed"`
	SourcesSkipped int `json:"sources_skipped"`
}

// DecayService drifts idle sources back toward the neutral credit score.
// A reputation earned long ago should not read as current forever.
type DecayService struct {
	sources domain.SourceStore
	cache   domain.ReputationCache
	logger  *zap.Logger

	interval time.Duration
	window   time.Duration
	rate     float64
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func NewDecayService(sources domain.SourceStore, cache domain.ReputationCache, logger *zap.Logger) *DecayService {
	return &DecayService{
		sources:  sources,
		cache:    cache,
		logger:   logger,
		interval: defaultDecayInterval,
		window:   defaultInactivityWindow,
		rate:     defaultDecayRate,
		stopCh:   make(chan struct{}),
	}
}

func (s *DecayService) SetInterval(d time.Duration) {
	s.interval = d
}

func (s *DecayService) SetInactivityWindow(d time.Duration) {
	s.window = d
}

func (s *DecayService) SetRate(r float64) {
	if r > 0 && r <= 1 {
		s.rate = r
	}
}

func (s *DecayService) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.logger.Info("reputation decay worker started",
			zap.Duration("interval", s.interval),
			zap.Duration("inactivity_window", s.window),
			zap.Float64("rate", s.rate))

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), decaySweepTimeout)
				s.RunDecay(ctx)
				cancel()
			case <-s.stopCh:
				s.logger.Info("reputation decay worker stopped")
				return
			}
		}
	}()
}

func (s *DecayService) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}

// RunDecay sweeps sources whose last write predates the inactivity window and
// moves each one step toward neutral. The write goes through the optimistic
// update, so a source touched concurrently is skipped rather than fought
// over; the next sweep sees whatever won.
func (s *DecayService) RunDecay(ctx context.Context) *DecayResult {
	result := &DecayResult{}

	cutoff := time.Now().Add(-s.window)
	sources, err := s.sources.ListInactiveSince(ctx, cutoff)
	if err != nil {
		s.logger.Error("failed to list inactive sources", zap.Error(err))
		return result
	}

	for i := range sources {
		src := &sources[i]
		step := decayStep(src.CreditScore, s.rate)
		if step == 0 {
			continue
		}

		src.CreditScore += step
		if err := s.sources.Update(ctx, src); err != nil {
			if errors.Is(err, store.ErrVersionConflict) {
				s.logger.Debug("decay skipped contended source",
					zap.String("source", src.Name))
				result.SourcesSkipped++
				continue
			}
			s.logger.Warn("decay update failed",
				zap.String("source", src.Name),
				zap.Error(err))
			result.SourcesSkipped++
			continue
		}

		if err := s.cache.Invalidate(src.Name); err != nil {
			s.logger.Warn("decay cache invalidation failed",
				zap.String("source", src.Name),
				zap.Error(err))
		}
		result.SourcesDecayed++
	}

	if result.SourcesDecayed > 0 || result.SourcesSkipped > 0 {
		s.logger.Info("reputation decay sweep complete",
			zap.Int("sources_decayed", result.SourcesDecayed),
			zap.Int("sources_skipped", result.SourcesSkipped))
	}

	return result
}

// decayStep returns the signed credit adjustment for one sweep: the decay
// rate's share of the distance to neutral, at least one point so far-off
// scores cannot stall short of it.
func decayStep(score int, rate float64) int {
	gap := domain.DefaultCreditScore - score
	if gap == 0 {
		return 0
	}
	step := int(math.Round(math.Abs(float64(gap)) * rate))
	if step < decayMinStep {
		step = decayMinStep
	}
	if gap < 0 {
		return -step
	}
	return step
}
