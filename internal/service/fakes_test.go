package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/veritaslab/credence/internal/domain"
	"github.com/veritaslab/credence/internal/store"
)

// In-memory fakes shared by the service tests. They keep the same contracts
// as the Postgres stores: counter bumps ride along with claim writes,
// reputation updates consume idempotency keys, and guarded status
// transitions fail when the expected status is stale.

type fakeSourceStore struct {
	sources     map[uuid.UUID]*domain.Source
	byName      map[string]uuid.UUID
	applied     map[string]bool
	failVersion map[uuid.UUID]bool
}

func newFakeSourceStore() *fakeSourceStore {
	return &fakeSourceStore{
		sources:     make(map[uuid.UUID]*domain.Source),
		byName:      make(map[string]uuid.UUID),
		applied:     make(map[string]bool),
		failVersion: make(map[uuid.UUID]bool),
	}
}

func (f *fakeSourceStore) Create(ctx context.Context, s *domain.Source) error {
	key := strings.ToLower(s.Name)
	if _, ok := f.byName[key]; ok {
		return store.ErrConflict
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	now := time.Now()
	s.Version = 1
	s.CreatedAt = now
	s.UpdatedAt = now
	f.sources[s.ID] = s
	f.byName[key] = s.ID
	return nil
}

func (f *fakeSourceStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Source, error) {
	s, ok := f.sources[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return s, nil
}

func (f *fakeSourceStore) FindByName(ctx context.Context, name string) (*domain.Source, error) {
	id, ok := f.byName[strings.ToLower(name)]
	if !ok {
		return nil, store.ErrNotFound
	}
	return f.sources[id], nil
}

func (f *fakeSourceStore) FindOrCreate(ctx context.Context, s *domain.Source) (*domain.Source, error) {
	if existing, err := f.FindByName(ctx, s.Name); err == nil {
		return existing, nil
	}
	if err := f.Create(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (f *fakeSourceStore) Update(ctx context.Context, s *domain.Source) error {
	stored, ok := f.sources[s.ID]
	if !ok {
		return store.ErrNotFound
	}
	if f.failVersion[s.ID] || stored.Version != s.Version {
		return store.ErrVersionConflict
	}
	s.Version++
	s.UpdatedAt = time.Now()
	*stored = *s
	return nil
}

func (f *fakeSourceStore) ApplyReputationUpdate(ctx context.Context, u *domain.ReputationUpdate) (*domain.Source, bool, error) {
	s, ok := f.sources[u.SourceID]
	if !ok {
		return nil, false, store.ErrNotFound
	}
	key := u.InvestigationID + "|" + u.SourceID.String()
	if f.applied[key] {
		return s, false, nil
	}
	f.applied[key] = true

	score := s.CreditScore + u.ScoreDelta
	if score < domain.MinCreditScore {
		score = domain.MinCreditScore
	}
	if score > domain.MaxCreditScore {
		score = domain.MaxCreditScore
	}
	s.CreditScore = score
	s.TotalClaims += u.TotalClaims
	s.VerifiedClaims += u.VerifiedClaims
	s.RefutedClaims += u.RefutedClaims
	s.Version++
	s.UpdatedAt = time.Now()
	return s, true, nil
}

func (f *fakeSourceStore) ListTrending(ctx context.Context, limit int) ([]domain.Source, error) {
	out := make([]domain.Source, 0, len(f.sources))
	for _, s := range f.sources {
		out = append(out, *s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalClaims != out[j].TotalClaims {
			return out[i].TotalClaims > out[j].TotalClaims
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeSourceStore) ListInactiveSince(ctx context.Context, cutoff time.Time) ([]domain.Source, error) {
	ids := make([]uuid.UUID, 0, len(f.sources))
	for id := range f.sources {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	var out []domain.Source
	for _, id := range ids {
		s := f.sources[id]
		if s.UpdatedAt.Before(cutoff) && s.CreditScore != domain.DefaultCreditScore {
			out = append(out, *s)
		}
	}
	return out, nil
}

type fakeEventStore struct {
	events map[string]*domain.Event
	order  []string
}

func newFakeEventStore() *fakeEventStore {
	return &fakeEventStore{events: make(map[string]*domain.Event)}
}

func (f *fakeEventStore) Create(ctx context.Context, e *domain.Event) error {
	if _, ok := f.events[e.ID]; ok {
		return store.ErrConflict
	}
	now := time.Now()
	e.CreatedAt = now
	e.UpdatedAt = now
	f.events[e.ID] = e
	f.order = append(f.order, e.ID)
	return nil
}

func (f *fakeEventStore) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	e, ok := f.events[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return e, nil
}

func (f *fakeEventStore) List(ctx context.Context, limit int) ([]domain.Event, error) {
	var out []domain.Event
	for i := len(f.order) - 1; i >= 0; i-- {
		out = append(out, *f.events[f.order[i]])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeEventStore) UpdateStatus(ctx context.Context, id string, status domain.EventStatus, credibility *float64) error {
	e, ok := f.events[id]
	if !ok {
		return store.ErrNotFound
	}
	e.Status = status
	if credibility != nil {
		e.CredibilityScore = *credibility
	}
	e.UpdatedAt = time.Now()
	return nil
}

func (f *fakeEventStore) UpdateCredibility(ctx context.Context, id string, score float64) error {
	e, ok := f.events[id]
	if !ok {
		return store.ErrNotFound
	}
	e.CredibilityScore = score
	e.UpdatedAt = time.Now()
	return nil
}

func (f *fakeEventStore) IncrementHeat(ctx context.Context, id string, delta float64) error {
	e, ok := f.events[id]
	if !ok {
		return store.ErrNotFound
	}
	e.HeatScore += delta
	e.UpdatedAt = time.Now()
	return nil
}

type fakeClaimStore struct {
	sources *fakeSourceStore
	claims  map[uuid.UUID]*domain.Claim
	order   []uuid.UUID
}

func newFakeClaimStore(sources *fakeSourceStore) *fakeClaimStore {
	return &fakeClaimStore{
		sources: sources,
		claims:  make(map[uuid.UUID]*domain.Claim),
	}
}

func (f *fakeClaimStore) Create(ctx context.Context, c *domain.Claim) error {
	src, ok := f.sources.sources[c.SourceID]
	if !ok {
		return store.ErrNotFound
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now()
	if c.AssertedAt.IsZero() {
		c.AssertedAt = now
	}
	c.CreatedAt = now
	c.UpdatedAt = now
	f.claims[c.ID] = c
	f.order = append(f.order, c.ID)
	src.TotalClaims++
	return nil
}

func (f *fakeClaimStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Claim, error) {
	c, ok := f.claims[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return c, nil
}

func (f *fakeClaimStore) ListByEvent(ctx context.Context, eventID string) ([]domain.Claim, error) {
	var out []domain.Claim
	for _, id := range f.order {
		c := f.claims[id]
		if c.EventID != nil && *c.EventID == eventID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeClaimStore) CountByEvent(ctx context.Context, eventID string) (int, error) {
	claims, _ := f.ListByEvent(ctx, eventID)
	return len(claims), nil
}

func (f *fakeClaimStore) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.ClaimStatus, verification map[string]any) error {
	c, ok := f.claims[id]
	if !ok {
		return store.ErrNotFound
	}
	if c.Status != from {
		return store.ErrVersionConflict
	}
	c.Status = to
	if verification != nil {
		c.Verification = verification
	}
	c.UpdatedAt = time.Now()

	if src, ok := f.sources.sources[c.SourceID]; ok {
		switch to {
		case domain.ClaimVerified:
			src.VerifiedClaims++
		case domain.ClaimRefuted:
			src.RefutedClaims++
		}
	}
	return nil
}

type fakeRefutationStore struct {
	refs  []domain.Refutation
	pairs map[string]bool
}

func newFakeRefutationStore() *fakeRefutationStore {
	return &fakeRefutationStore{pairs: make(map[string]bool)}
}

func (f *fakeRefutationStore) Create(ctx context.Context, r *domain.Refutation) error {
	key := r.RefutingClaimID.String() + "|" + r.RefutedClaimID.String()
	if f.pairs[key] {
		return store.ErrConflict
	}
	f.pairs[key] = true
	r.ID = uuid.New()
	r.CreatedAt = time.Now()
	f.refs = append(f.refs, *r)
	return nil
}

func (f *fakeRefutationStore) ListInvolving(ctx context.Context, claimID uuid.UUID) ([]domain.Refutation, error) {
	var out []domain.Refutation
	for _, r := range f.refs {
		if r.RefutingClaimID == claimID || r.RefutedClaimID == claimID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRefutationStore) ListAmong(ctx context.Context, claimIDs []uuid.UUID) ([]domain.Refutation, error) {
	in := make(map[uuid.UUID]bool, len(claimIDs))
	for _, id := range claimIDs {
		in[id] = true
	}
	var out []domain.Refutation
	for _, r := range f.refs {
		if in[r.RefutingClaimID] && in[r.RefutedClaimID] {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeEntityStore struct {
	entities  map[string]*domain.Entity
	failNames map[string]bool
}

func newFakeEntityStore() *fakeEntityStore {
	return &fakeEntityStore{
		entities:  make(map[string]*domain.Entity),
		failNames: make(map[string]bool),
	}
}

func (f *fakeEntityStore) FindOrCreate(ctx context.Context, e *domain.Entity) (*domain.Entity, error) {
	if f.failNames[e.Name] {
		return nil, context.DeadlineExceeded
	}
	key := strings.ToLower(e.Name)
	if existing, ok := f.entities[key]; ok {
		return existing, nil
	}
	e.ID = uuid.New()
	now := time.Now()
	e.CreatedAt = now
	e.UpdatedAt = now
	f.entities[key] = e
	return e, nil
}

func (f *fakeEntityStore) FindByName(ctx context.Context, name string) (*domain.Entity, error) {
	e, ok := f.entities[strings.ToLower(name)]
	if !ok {
		return nil, store.ErrNotFound
	}
	return e, nil
}

func (f *fakeEntityStore) List(ctx context.Context, limit int) ([]domain.Entity, error) {
	var out []domain.Entity
	for _, e := range f.entities {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeInvestigationStore struct {
	invs  map[string]*domain.Investigation
	order []string
}

func newFakeInvestigationStore() *fakeInvestigationStore {
	return &fakeInvestigationStore{invs: make(map[string]*domain.Investigation)}
}

func (f *fakeInvestigationStore) Save(ctx context.Context, inv *domain.Investigation) error {
	if _, ok := f.invs[inv.ID]; !ok {
		inv.CreatedAt = time.Now()
		f.order = append(f.order, inv.ID)
	} else {
		inv.CreatedAt = f.invs[inv.ID].CreatedAt
	}
	f.invs[inv.ID] = inv
	return nil
}

func (f *fakeInvestigationStore) GetByID(ctx context.Context, id string) (*domain.Investigation, error) {
	inv, ok := f.invs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return inv, nil
}

func (f *fakeInvestigationStore) ListByEvent(ctx context.Context, eventID string) ([]domain.Investigation, error) {
	var out []domain.Investigation
	for i := len(f.order) - 1; i >= 0; i-- {
		inv := f.invs[f.order[i]]
		if inv.EventID != nil && *inv.EventID == eventID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

// fakeReputationCache reads through the fake source store and records
// invalidations. failInvalidate makes the next N Invalidate calls fail.
type fakeReputationCache struct {
	sources        *fakeSourceStore
	invalidated    []string
	failInvalidate int
}

func newFakeReputationCache(sources *fakeSourceStore) *fakeReputationCache {
	return &fakeReputationCache{sources: sources}
}

func (f *fakeReputationCache) Get(ctx context.Context, name string) (*domain.ReputationView, error) {
	src, err := f.sources.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return domain.NewReputationView(src), nil
}

func (f *fakeReputationCache) Invalidate(name string) error {
	if f.failInvalidate > 0 {
		f.failInvalidate--
		return context.DeadlineExceeded
	}
	f.invalidated = append(f.invalidated, name)
	return nil
}

var (
	_ domain.SourceStore        = (*fakeSourceStore)(nil)
	_ domain.EventStore         = (*fakeEventStore)(nil)
	_ domain.ClaimStore         = (*fakeClaimStore)(nil)
	_ domain.RefutationStore    = (*fakeRefutationStore)(nil)
	_ domain.EntityStore        = (*fakeEntityStore)(nil)
	_ domain.InvestigationStore = (*fakeInvestigationStore)(nil)
	_ domain.ReputationCache    = (*fakeReputationCache)(nil)
)
