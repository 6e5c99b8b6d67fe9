package domain

import "time"

// ReputationView is the cached read model for a source's standing, keyed by
// source name.
type ReputationView struct {
	Name           string     `json:"name"`
	Type           SourceType `json:"type"`
	CreditScore    int        `json:"credit_score"`
	TotalClaims    int        `json:"total_claims"`
	VerifiedClaims int        `json:"verified_claims"`
	RefutedClaims  int        `json:"refuted_claims"`
	AccuracyRate   float64    `json:"accuracy_rate"`
	LastUpdated    time.Time  `json:"last_updated"`
}

func NewReputationView(s *Source) *ReputationView {
	return &ReputationView{
		Name:           s.Name,
		Type:           s.Type,
		CreditScore:    s.CreditScore,
		TotalClaims:    s.TotalClaims,
		VerifiedClaims: s.VerifiedClaims,
		RefutedClaims:  s.RefutedClaims,
		AccuracyRate:   s.AccuracyRate(),
		LastUpdated:    s.UpdatedAt,
	}
}
