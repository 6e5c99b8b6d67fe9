package domain

import (
	"time"

	"github.com/google/uuid"
)

type ClaimStatus string

const (
	ClaimPending      ClaimStatus = "pending"
	ClaimVerified     ClaimStatus = "verified"
	ClaimRefuted      ClaimStatus = "refuted"
	ClaimUnverifiable ClaimStatus = "unverifiable"
)

func ValidClaimStatus(s ClaimStatus) bool {
	switch s {
	case ClaimPending, ClaimVerified, ClaimRefuted, ClaimUnverifiable:
		return true
	}
	return false
}

// CanTransition reports whether a claim may move from this status to another.
// Verified and refuted are terminal; unverifiable claims may still be resolved
// later when evidence turns up.
func (s ClaimStatus) CanTransition(to ClaimStatus) bool {
	if s == to {
		return false
	}
	switch s {
	case ClaimPending:
		return to == ClaimVerified || to == ClaimRefuted || to == ClaimUnverifiable
	case ClaimUnverifiable:
		return to == ClaimVerified || to == ClaimRefuted
	}
	return false
}

// Claim is a single assertion attributed to exactly one source, optionally
// attached to an event. SourceID is immutable after creation.
type Claim struct {
	ID           uuid.UUID      `json:"id"`
	EventID      *string        `json:"event_id,omitempty"`
	SourceID     uuid.UUID      `json:"source_id"`
	Text         string         `json:"text"`
	Status       ClaimStatus    `json:"status"`
	ClaimType    string         `json:"claim_type,omitempty"`
	Entities     []string       `json:"entities,omitempty"`
	Verification map[string]any `json:"verification,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	AssertedAt   time.Time      `json:"asserted_at"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// Refutation is a directed edge recording that one claim disputes another.
// It is immutable once recorded.
type Refutation struct {
	ID              uuid.UUID `json:"id"`
	RefutingClaimID uuid.UUID `json:"refuting_claim_id"`
	RefutedClaimID  uuid.UUID `json:"refuted_claim_id"`
	Confidence      float64   `json:"confidence"`
	Evidence        []string  `json:"evidence,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
