package domain

import (
	"time"

	"github.com/google/uuid"
)

type NodeType string

const (
	NodeEvent  NodeType = "event"
	NodeClaim  NodeType = "claim"
	NodeSource NodeType = "source"
)

type EdgeType string

const (
	EdgeHasClaim  EdgeType = "has_claim"
	EdgeMadeClaim EdgeType = "made_claim"
	EdgeRefutes   EdgeType = "refutes"
)

// GraphNode is one vertex of an event graph. ID is the underlying row id
// (event id string, claim uuid, source uuid); a node is unique per (Type, ID).
type GraphNode struct {
	ID    string         `json:"id"`
	Type  NodeType       `json:"type"`
	Label string         `json:"label"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// GraphEdge is a directed edge between two node ids. Weight carries the
// refutation confidence for refutes edges and is zero otherwise.
type GraphEdge struct {
	From   string   `json:"from"`
	To     string   `json:"to"`
	Type   EdgeType `json:"type"`
	Weight float64  `json:"weight,omitempty"`
}

// EventGraph is the assembled view of an event, its claims, the sources that
// made them, and refutation edges between the event's claims.
type EventGraph struct {
	EventID string      `json:"event_id"`
	Nodes   []GraphNode `json:"nodes"`
	Edges   []GraphEdge `json:"edges"`
}

// TimelineEntry is one step in an event's propagation timeline: a claim, who
// asserted it and when.
type TimelineEntry struct {
	ClaimID    uuid.UUID   `json:"claim_id"`
	Text       string      `json:"text"`
	Status     ClaimStatus `json:"status"`
	SourceName string      `json:"source_name"`
	AssertedAt time.Time   `json:"asserted_at"`
}
