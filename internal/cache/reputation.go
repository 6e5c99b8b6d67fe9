package cache

import (
	"context"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/veritaslab/credence/internal/domain"
	"go.uber.org/zap"
)

// DefaultTTL bounds how stale a cached reputation view may get between
// invalidations.
const DefaultTTL = 5 * time.Minute

// ReputationCache is a read-through TTL cache over source lookups, keyed by
// source name. Unknown names pass the store's not-found error through and are
// never cached, so "no reputation history" stays observable and a source
// created moments later is visible on its first read.
type ReputationCache struct {
	sources domain.SourceStore
	cache   *gocache.Cache
	logger  *zap.Logger
	ttl     time.Duration
}

func NewReputationCache(sources domain.SourceStore, ttl time.Duration, logger *zap.Logger) *ReputationCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ReputationCache{
		sources: sources,
		cache:   gocache.New(ttl, 2*ttl),
		logger:  logger,
		ttl:     ttl,
	}
}

// cacheKey matches the store's case-insensitive name resolution, so an
// invalidation with the canonical name also evicts entries filled through a
// differently-cased lookup.
func cacheKey(name string) string {
	return strings.ToLower(name)
}

func (c *ReputationCache) Get(ctx context.Context, name string) (*domain.ReputationView, error) {
	key := cacheKey(name)
	if v, found := c.cache.Get(key); found {
		view := *v.(*domain.ReputationView)
		return &view, nil
	}

	src, err := c.sources.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}

	view := domain.NewReputationView(src)
	c.cache.Set(key, view, c.ttl)
	c.logger.Debug("reputation cache fill", zap.String("source", src.Name))

	out := *view
	return &out, nil
}

// Invalidate drops the cached view for a source name. The in-process backend
// cannot fail, but callers must treat a returned error as a stale cache: the
// store already holds the new value.
func (c *ReputationCache) Invalidate(name string) error {
	c.cache.Delete(cacheKey(name))
	return nil
}

func (c *ReputationCache) Flush() {
	c.cache.Flush()
}

func (c *ReputationCache) ItemCount() int {
	return c.cache.ItemCount()
}
