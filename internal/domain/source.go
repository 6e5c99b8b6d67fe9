package domain

import (
	"time"

	"github.com/google/uuid"
)

type SourceType string

const (
	SourceOfficialMedia SourceType = "official_media"
	SourceSocialMedia   SourceType = "social_media"
	SourceNewsOutlet    SourceType = "news_outlet"
	SourceBlog          SourceType = "blog"
	SourceForum         SourceType = "forum"
	SourceAnonymous     SourceType = "anonymous"
	SourceUnknown       SourceType = "unknown"
)

func ValidSourceType(t SourceType) bool {
	switch t {
	case SourceOfficialMedia, SourceSocialMedia, SourceNewsOutlet, SourceBlog, SourceForum, SourceAnonymous, SourceUnknown:
		return true
	}
	return false
}

// DefaultCreditScore is the neutral starting score for a source with no track record.
const DefaultCreditScore = 50

const (
	MinCreditScore = 0
	MaxCreditScore = 100
)

// Source is an information origin (outlet, account, site) whose trustworthiness
// the engine tracks. Name is the natural key: a given name always resolves to
// the same source row. Counters only ever grow.
type Source struct {
	ID             uuid.UUID      `json:"id"`
	Name           string         `json:"name"`
	Type           SourceType     `json:"type"`
	CreditScore    int            `json:"credit_score"`
	TotalClaims    int            `json:"total_claims"`
	VerifiedClaims int            `json:"verified_claims"`
	RefutedClaims  int            `json:"refuted_claims"`
	URL            string         `json:"url,omitempty"`
	Description    string         `json:"description,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	Version        int64          `json:"version"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// AccuracyRate is verified_claims/total_claims. A source with no claims has a
// rate of 0; "never seen" is signalled separately by a not-found lookup.
func (s *Source) AccuracyRate() float64 {
	if s.TotalClaims == 0 {
		return 0
	}
	return float64(s.VerifiedClaims) / float64(s.TotalClaims)
}
