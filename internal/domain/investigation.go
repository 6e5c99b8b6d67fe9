package domain

import (
	"time"

	"github.com/google/uuid"
)

// InvestigationResult is the summarized outcome of one investigation as it
// applies to one source: the credibility the investigation settled on and how
// many of the source's claims it covered.
type InvestigationResult struct {
	InvestigationID string  `json:"investigation_id"`
	Credibility     float64 `json:"credibility"`
	TotalClaims     int     `json:"total_claims"`
	VerifiedClaims  int     `json:"verified_claims"`
	RefutedClaims   int     `json:"refuted_claims"`
}

// ReputationUpdate is the atomic write derived from an InvestigationResult:
// a clamped score delta plus counter increments, keyed for idempotency by
// (InvestigationID, SourceID).
type ReputationUpdate struct {
	SourceID        uuid.UUID
	InvestigationID string
	ScoreDelta      int
	TotalClaims     int
	VerifiedClaims  int
	RefutedClaims   int
}

// Investigation is the stored history record of a completed investigation.
type Investigation struct {
	ID               string         `json:"id"`
	EventID          *string        `json:"event_id,omitempty"`
	Report           map[string]any `json:"report,omitempty"`
	CredibilityScore float64        `json:"credibility_score"`
	StartedAt        *time.Time     `json:"started_at,omitempty"`
	CompletedAt      *time.Time     `json:"completed_at,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
}
