package domain

import (
	"time"

	"github.com/google/uuid"
)

type EntityType string

const (
	EntityPerson       EntityType = "person"
	EntityOrganization EntityType = "organization"
	EntityLocation     EntityType = "location"
	EntityOther        EntityType = "other"
)

func ValidEntityType(t EntityType) bool {
	switch t {
	case EntityPerson, EntityOrganization, EntityLocation, EntityOther:
		return true
	}
	return false
}

// Entity is a named person, organization or place mentioned by claims.
// Names are unique; repeated mentions resolve to the same row.
type Entity struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"name"`
	Type        EntityType     `json:"type"`
	Description string         `json:"description,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
