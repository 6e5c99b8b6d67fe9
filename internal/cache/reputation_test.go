package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/veritaslab/credence/internal/domain"
	"github.com/veritaslab/credence/internal/store"
	"go.uber.org/zap"
)

// countingSourceStore serves FindByName from a map and counts store hits so
// the tests can tell a cache hit from a read-through.
type countingSourceStore struct {
	byName map[string]*domain.Source
	loads  int
}

func newCountingSourceStore() *countingSourceStore {
	return &countingSourceStore{byName: make(map[string]*domain.Source)}
}

func (c *countingSourceStore) add(name string, score int) *domain.Source {
	s := &domain.Source{
		ID:          uuid.New(),
		Name:        name,
		Type:        domain.SourceNewsOutlet,
		CreditScore: score,
		UpdatedAt:   time.Now(),
	}
	c.byName[name] = s
	return s
}

func (c *countingSourceStore) FindByName(ctx context.Context, name string) (*domain.Source, error) {
	c.loads++
	s, ok := c.byName[name]
	if !ok {
		return nil, store.ErrNotFound
	}
	return s, nil
}

func (c *countingSourceStore) Create(ctx context.Context, s *domain.Source) error { return nil }
func (c *countingSourceStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Source, error) {
	return nil, store.ErrNotFound
}
func (c *countingSourceStore) FindOrCreate(ctx context.Context, s *domain.Source) (*domain.Source, error) {
	return s, nil
}
func (c *countingSourceStore) Update(ctx context.Context, s *domain.Source) error { return nil }
func (c *countingSourceStore) ApplyReputationUpdate(ctx context.Context, u *domain.ReputationUpdate) (*domain.Source, bool, error) {
	return nil, false, store.ErrNotFound
}
func (c *countingSourceStore) ListTrending(ctx context.Context, limit int) ([]domain.Source, error) {
	return nil, nil
}
func (c *countingSourceStore) ListInactiveSince(ctx context.Context, cutoff time.Time) ([]domain.Source, error) {
	return nil, nil
}

func TestReputationCache_ReadThroughThenHit(t *testing.T) {
	sources := newCountingSourceStore()
	sources.add("Morning Gazette", 72)
	c := NewReputationCache(sources, time.Minute, zap.NewNop())

	first, err := c.Get(context.Background(), "Morning Gazette")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.CreditScore != 72 {
		t.Errorf("score = %d, want 72", first.CreditScore)
	}
	if sources.loads != 1 {
		t.Fatalf("store loads = %d, want 1", sources.loads)
	}

	if _, err := c.Get(context.Background(), "Morning Gazette"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sources.loads != 1 {
		t.Errorf("store loads = %d after cached read, want still 1", sources.loads)
	}
}

func TestReputationCache_InvalidateForcesReload(t *testing.T) {
	sources := newCountingSourceStore()
	src := sources.add("Channel Seven", 50)
	c := NewReputationCache(sources, time.Minute, zap.NewNop())

	if _, err := c.Get(context.Background(), "Channel Seven"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	src.CreditScore = 55
	if err := c.Invalidate("Channel Seven"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	view, err := c.Get(context.Background(), "Channel Seven")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.CreditScore != 55 {
		t.Errorf("score = %d, want the post-invalidation 55", view.CreditScore)
	}
	if sources.loads != 2 {
		t.Errorf("store loads = %d, want 2", sources.loads)
	}
}

func TestReputationCache_TTLExpiryRepopulates(t *testing.T) {
	sources := newCountingSourceStore()
	src := sources.add("Short Lived", 40)
	c := NewReputationCache(sources, 30*time.Millisecond, zap.NewNop())

	if _, err := c.Get(context.Background(), "Short Lived"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	src.CreditScore = 45

	time.Sleep(60 * time.Millisecond)

	view, err := c.Get(context.Background(), "Short Lived")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.CreditScore != 45 {
		t.Errorf("score = %d, want the refreshed 45", view.CreditScore)
	}
	if sources.loads != 2 {
		t.Errorf("store loads = %d, want 2", sources.loads)
	}
}

// Unknown sources surface not-found and the miss is not cached, so a source
// created right after its first lookup is visible immediately.
func TestReputationCache_MissesNotCached(t *testing.T) {
	sources := newCountingSourceStore()
	c := NewReputationCache(sources, time.Minute, zap.NewNop())

	_, err := c.Get(context.Background(), "Late Arrival")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want store.ErrNotFound", err)
	}

	sources.add("Late Arrival", 50)
	view, err := c.Get(context.Background(), "Late Arrival")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.CreditScore != 50 {
		t.Errorf("score = %d, want 50", view.CreditScore)
	}
}

func TestReputationCache_CaseInsensitiveKeys(t *testing.T) {
	sources := newCountingSourceStore()
	sources.add("Morning Gazette", 72)

	c := NewReputationCache(sources, time.Minute, zap.NewNop())
	if _, err := c.Get(context.Background(), "Morning Gazette"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// An invalidation with different casing still evicts the entry.
	if err := c.Invalidate("MORNING GAZETTE"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := c.Get(context.Background(), "Morning Gazette"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sources.loads != 2 {
		t.Errorf("store loads = %d, want 2 after cross-case invalidation", sources.loads)
	}
}

// Callers get their own copy; mutating a returned view never corrupts the
// cached entry.
func TestReputationCache_ReturnsCopies(t *testing.T) {
	sources := newCountingSourceStore()
	sources.add("Immutable Post", 66)
	c := NewReputationCache(sources, time.Minute, zap.NewNop())

	first, err := c.Get(context.Background(), "Immutable Post")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first.CreditScore = 1

	second, err := c.Get(context.Background(), "Immutable Post")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.CreditScore != 66 {
		t.Errorf("score = %d, caller mutation leaked into the cache", second.CreditScore)
	}
}
