package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/veritaslab/credence/internal/domain"
)

func TestEventService_CreateGeneratesID(t *testing.T) {
	events := newFakeEventStore()
	svc := NewEventService(events)

	e := &domain.Event{Title: "Reservoir levels questioned"}
	if err := svc.Create(context.Background(), e); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(e.ID, domain.EventIDPrefix) {
		t.Errorf("id = %q, want %s prefix", e.ID, domain.EventIDPrefix)
	}
	if e.Status != domain.EventDeveloping {
		t.Errorf("status = %q, want developing", e.Status)
	}
	if e.CredibilityScore != 50.0 {
		t.Errorf("credibility = %v, want the neutral 50.0", e.CredibilityScore)
	}
}

func TestEventService_CreateKeepsCallerID(t *testing.T) {
	events := newFakeEventStore()
	svc := NewEventService(events)

	e := &domain.Event{ID: "E-cafe0001", Title: "Caller-named event"}
	if err := svc.Create(context.Background(), e); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.ID != "E-cafe0001" {
		t.Errorf("id = %q, want the caller's", e.ID)
	}

	dup := &domain.Event{ID: "E-cafe0001", Title: "Same id again"}
	if err := svc.Create(context.Background(), dup); !errors.Is(err, ErrEventConflict) {
		t.Errorf("err = %v, want ErrEventConflict", err)
	}
}

func TestEventService_CreateValidation(t *testing.T) {
	events := newFakeEventStore()
	svc := NewEventService(events)

	tests := []struct {
		name  string
		event *domain.Event
		want  error
	}{
		{"missing title", &domain.Event{}, ErrInvalidEvent},
		{"malformed id", &domain.Event{ID: "EVT-123", Title: "x"}, ErrInvalidEvent},
		{"bad status", &domain.Event{Title: "x", Status: "simmering"}, ErrInvalidStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := svc.Create(context.Background(), tt.event); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEventService_UpdateStatus(t *testing.T) {
	events := newFakeEventStore()
	svc := NewEventService(events)
	seedEvent(t, events, "E-cafe0002")

	if err := svc.UpdateStatus(context.Background(), "E-cafe0002", domain.EventRefuted); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stored, _ := events.GetByID(context.Background(), "E-cafe0002")
	if stored.Status != domain.EventRefuted {
		t.Errorf("status = %q, want refuted", stored.Status)
	}

	if err := svc.UpdateStatus(context.Background(), "E-cafe0002", "simmering"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("err = %v, want ErrInvalidStatus", err)
	}
	if err := svc.UpdateStatus(context.Background(), "E-00000000", domain.EventVerified); !errors.Is(err, ErrEventNotFound) {
		t.Errorf("err = %v, want ErrEventNotFound", err)
	}
}

func TestSourceService_RegisterFindOrCreate(t *testing.T) {
	sources := newFakeSourceStore()
	svc := NewSourceService(sources)

	first, err := svc.Register(context.Background(), &domain.Source{Name: "  Harbor Tribune  "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Name != "Harbor Tribune" {
		t.Errorf("name = %q, want trimmed", first.Name)
	}
	if first.Type != domain.SourceUnknown {
		t.Errorf("type = %q, want unknown default", first.Type)
	}
	if first.CreditScore != domain.DefaultCreditScore {
		t.Errorf("score = %d, want %d", first.CreditScore, domain.DefaultCreditScore)
	}

	// Re-registering resolves to the same row, earned credit intact.
	first.CreditScore = 80
	again, err := svc.Register(context.Background(), &domain.Source{
		Name: "Harbor Tribune", Type: domain.SourceNewsOutlet,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again.ID != first.ID {
		t.Errorf("ids differ: %s vs %s", again.ID, first.ID)
	}
	if again.CreditScore != 80 {
		t.Errorf("score = %d, want the earned 80", again.CreditScore)
	}
}

func TestSourceService_RegisterValidation(t *testing.T) {
	sources := newFakeSourceStore()
	svc := NewSourceService(sources)

	if _, err := svc.Register(context.Background(), &domain.Source{Name: "   "}); !errors.Is(err, ErrInvalidSource) {
		t.Errorf("err = %v, want ErrInvalidSource", err)
	}
	if _, err := svc.Register(context.Background(), &domain.Source{
		Name: "X", Type: "carrier_pigeon",
	}); !errors.Is(err, ErrInvalidSourceType) {
		t.Errorf("err = %v, want ErrInvalidSourceType", err)
	}
}

func TestSourceService_TrendingOrder(t *testing.T) {
	sources := newFakeSourceStore()
	svc := NewSourceService(sources)

	busy := seedSource(t, sources, "Busy Wire", 50)
	busy.TotalClaims = 9
	quiet := seedSource(t, sources, "Quiet Blog", 50)
	quiet.TotalClaims = 1

	trending, err := svc.ListTrending(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trending) != 2 || trending[0].Name != "Busy Wire" {
		t.Errorf("trending = %+v, want Busy Wire first", trending)
	}
}
