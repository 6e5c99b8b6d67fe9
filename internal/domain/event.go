package domain

import (
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
)

type EventStatus string

const (
	EventDeveloping   EventStatus = "developing"
	EventInvestigated EventStatus = "investigated"
	EventVerified     EventStatus = "verified"
	EventRefuted      EventStatus = "refuted"
)

func ValidEventStatus(s EventStatus) bool {
	switch s {
	case EventDeveloping, EventInvestigated, EventVerified, EventRefuted:
		return true
	}
	return false
}

// DefaultCredibilityScore is the neutral credibility for an event nobody has scored yet.
const DefaultCredibilityScore = 50.0

const EventIDPrefix = "E-"

// NewEventID returns an id of the form "E-1a2b3c4d" (8 hex chars from a random UUID).
func NewEventID() string {
	id := uuid.New()
	return EventIDPrefix + hex.EncodeToString(id[:4])
}

func ValidEventID(id string) bool {
	return strings.HasPrefix(id, EventIDPrefix) && len(id) > len(EventIDPrefix)
}

// Event is a cluster of claims about one real-world happening.
type Event struct {
	ID               string         `json:"id"`
	Title            string         `json:"title"`
	Description      string         `json:"description,omitempty"`
	Status           EventStatus    `json:"status"`
	CredibilityScore float64        `json:"credibility_score"`
	HeatScore        float64        `json:"heat_score"`
	Category         string         `json:"category,omitempty"`
	Tags             []string       `json:"tags,omitempty"`
	Metadata         map[string]any `json:"metadata,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}
