package service

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"github.com/veritaslab/credence/internal/domain"
	"github.com/veritaslab/credence/internal/store"
	"go.uber.org/zap"
)

// GraphService renders an event and its evidence as a graph for clients that
// want to walk the structure instead of the tables.
type GraphService struct {
	events      domain.EventStore
	claims      domain.ClaimStore
	sources     domain.SourceStore
	refutations domain.RefutationStore
	logger      *zap.Logger
}

func NewGraphService(events domain.EventStore, claims domain.ClaimStore, sources domain.SourceStore, refutations domain.RefutationStore, logger *zap.Logger) *GraphService {
	return &GraphService{
		events:      events,
		claims:      claims,
		sources:     sources,
		refutations: refutations,
		logger:      logger,
	}
}

type nodeRef struct {
	typ domain.NodeType
	id  string
}

// BuildEventGraph walks breadth-first from the event through its claims to
// their sources, emitting each node once. Claims follow store order and
// sources first-mention order, so the same store state always yields the
// same graph. Refutation edges are added for pairs whose endpoints both
// belong to the event.
func (s *GraphService) BuildEventGraph(ctx context.Context, eventID string) (*domain.EventGraph, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	claims, err := s.claims.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	claimsByID := make(map[string]*domain.Claim, len(claims))
	for i := range claims {
		claimsByID[claims[i].ID.String()] = &claims[i]
	}

	graph := &domain.EventGraph{
		EventID: eventID,
		Nodes:   []domain.GraphNode{},
		Edges:   []domain.GraphEdge{},
	}

	visited := make(map[string]bool)
	queue := []nodeRef{{typ: domain.NodeEvent, id: eventID}}

	for len(queue) > 0 {
		ref := queue[0]
		queue = queue[1:]

		key := string(ref.typ) + ":" + ref.id
		if visited[key] {
			continue
		}
		visited[key] = true

		switch ref.typ {
		case domain.NodeEvent:
			graph.Nodes = append(graph.Nodes, domain.GraphNode{
				ID:    event.ID,
				Type:  domain.NodeEvent,
				Label: event.Title,
				Attrs: map[string]any{
					"status":            event.Status,
					"credibility_score": event.CredibilityScore,
				},
			})
			for i := range claims {
				claimID := claims[i].ID.String()
				graph.Edges = append(graph.Edges, domain.GraphEdge{
					From: event.ID,
					To:   claimID,
					Type: domain.EdgeHasClaim,
				})
				queue = append(queue, nodeRef{typ: domain.NodeClaim, id: claimID})
			}

		case domain.NodeClaim:
			claim := claimsByID[ref.id]
			if claim == nil {
				continue
			}
			graph.Nodes = append(graph.Nodes, domain.GraphNode{
				ID:    ref.id,
				Type:  domain.NodeClaim,
				Label: claim.Text,
				Attrs: map[string]any{"status": claim.Status},
			})
			graph.Edges = append(graph.Edges, domain.GraphEdge{
				From: claim.SourceID.String(),
				To:   ref.id,
				Type: domain.EdgeMadeClaim,
			})
			queue = append(queue, nodeRef{typ: domain.NodeSource, id: claim.SourceID.String()})

		case domain.NodeSource:
			id, err := uuid.Parse(ref.id)
			if err != nil {
				continue
			}
			src, err := s.sources.GetByID(ctx, id)
			if err != nil {
				return nil, err
			}
			graph.Nodes = append(graph.Nodes, domain.GraphNode{
				ID:    ref.id,
				Type:  domain.NodeSource,
				Label: src.Name,
				Attrs: map[string]any{
					"type":         src.Type,
					"credit_score": src.CreditScore,
				},
			})
		}
	}

	if err := s.addRefutationEdges(ctx, graph, claims); err != nil {
		return nil, err
	}

	s.logger.Debug("event graph built",
		zap.String("event_id", eventID),
		zap.Int("nodes", len(graph.Nodes)),
		zap.Int("edges", len(graph.Edges)))

	return graph, nil
}

func (s *GraphService) addRefutationEdges(ctx context.Context, graph *domain.EventGraph, claims []domain.Claim) error {
	if len(claims) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(claims))
	for i := range claims {
		ids[i] = claims[i].ID
	}

	refs, err := s.refutations.ListAmong(ctx, ids)
	if err != nil {
		return err
	}
	for _, ref := range refs {
		graph.Edges = append(graph.Edges, domain.GraphEdge{
			From:   ref.RefutingClaimID.String(),
			To:     ref.RefutedClaimID.String(),
			Type:   domain.EdgeRefutes,
			Weight: ref.Confidence,
		})
	}
	return nil
}

// PropagationTimeline orders an event's claims by assertion time so a client
// can replay how the story spread.
func (s *GraphService) PropagationTimeline(ctx context.Context, eventID string) ([]domain.TimelineEntry, error) {
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	claims, err := s.claims.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	names := make(map[uuid.UUID]string)
	entries := make([]domain.TimelineEntry, 0, len(claims))
	for _, c := range claims {
		name, ok := names[c.SourceID]
		if !ok {
			src, err := s.sources.GetByID(ctx, c.SourceID)
			if err != nil {
				return nil, err
			}
			name = src.Name
			names[c.SourceID] = name
		}
		entries = append(entries, domain.TimelineEntry{
			ClaimID:    c.ID,
			Text:       c.Text,
			Status:     c.Status,
			SourceName: name,
			AssertedAt: c.AssertedAt,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].AssertedAt.Equal(entries[j].AssertedAt) {
			return entries[i].ClaimID.String() < entries[j].ClaimID.String()
		}
		return entries[i].AssertedAt.Before(entries[j].AssertedAt)
	})

	return entries, nil
}
