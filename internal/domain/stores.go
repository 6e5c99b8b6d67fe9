package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type SourceStore interface {
	Create(ctx context.Context, s *Source) error
	GetByID(ctx context.Context, id uuid.UUID) (*Source, error)
	FindByName(ctx context.Context, name string) (*Source, error)
	// FindOrCreate resolves a name to its canonical source row, creating it if
	// needed. Concurrent callers with the same name get the same row.
	FindOrCreate(ctx context.Context, s *Source) (*Source, error)
	// Update writes the mutable fields with an optimistic version check.
	Update(ctx context.Context, s *Source) error
	// ApplyReputationUpdate applies an investigation's score delta and counter
	// increments in one transaction, claiming the (investigation, source)
	// idempotency key. The bool reports whether the update was applied now;
	// false means this key was already consumed and the row is untouched.
	ApplyReputationUpdate(ctx context.Context, u *ReputationUpdate) (*Source, bool, error)
	ListTrending(ctx context.Context, limit int) ([]Source, error)
	ListInactiveSince(ctx context.Context, cutoff time.Time) ([]Source, error)
}

type EventStore interface {
	Create(ctx context.Context, e *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context, limit int) ([]Event, error)
	// UpdateStatus moves the event and, when credibility is non-nil, records
	// the score in the same write.
	UpdateStatus(ctx context.Context, id string, status EventStatus, credibility *float64) error
	UpdateCredibility(ctx context.Context, id string, score float64) error
	IncrementHeat(ctx context.Context, id string, delta float64) error
}

type ClaimStore interface {
	// Create inserts the claim and bumps the source's total_claims counter in
	// one transaction.
	Create(ctx context.Context, c *Claim) error
	GetByID(ctx context.Context, id uuid.UUID) (*Claim, error)
	// ListByEvent returns the event's claims in stable creation order.
	ListByEvent(ctx context.Context, eventID string) ([]Claim, error)
	CountByEvent(ctx context.Context, eventID string) (int, error)
	// UpdateStatus performs the transition guarded by the expected current
	// status, and when the claim enters verified or refuted it bumps the
	// source's matching counter in the same transaction. A guard miss returns
	// a version conflict.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to ClaimStatus, verification map[string]any) error
}

type RefutationStore interface {
	Create(ctx context.Context, r *Refutation) error
	ListInvolving(ctx context.Context, claimID uuid.UUID) ([]Refutation, error)
	// ListAmong returns refutations whose both endpoints are in the given set.
	ListAmong(ctx context.Context, claimIDs []uuid.UUID) ([]Refutation, error)
}

type EntityStore interface {
	FindOrCreate(ctx context.Context, e *Entity) (*Entity, error)
	FindByName(ctx context.Context, name string) (*Entity, error)
	List(ctx context.Context, limit int) ([]Entity, error)
}

type InvestigationStore interface {
	// Save upserts the history record by investigation id.
	Save(ctx context.Context, inv *Investigation) error
	GetByID(ctx context.Context, id string) (*Investigation, error)
	ListByEvent(ctx context.Context, eventID string) ([]Investigation, error)
}

// ReputationCache is the read-through cache in front of SourceStore lookups by
// name. Invalidate must complete before a reputation update is reported done.
type ReputationCache interface {
	Get(ctx context.Context, name string) (*ReputationView, error)
	Invalidate(name string) error
}
