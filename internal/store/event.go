package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/veritaslab/credence/internal/domain"
)

type EventStore struct {
	db *pgxpool.Pool
}

func NewEventStore(db *pgxpool.Pool) *EventStore {
	return &EventStore{db: db}
}

const eventColumns = `id, title, description, status, credibility_score, heat_score,
	category, tags, metadata, created_at, updated_at`

func scanEvent(row pgx.Row) (*domain.Event, error) {
	e := &domain.Event{}
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Status, &e.CredibilityScore, &e.HeatScore,
		&e.Category, &e.Tags, &e.Metadata, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (s *EventStore) Create(ctx context.Context, e *domain.Event) error {
	err := s.db.QueryRow(ctx,
		`INSERT INTO events (id, title, description, status, credibility_score, heat_score, category, tags, metadata)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING created_at, updated_at`,
		e.ID, e.Title, e.Description, e.Status, e.CredibilityScore, e.HeatScore, e.Category, e.Tags, e.Metadata,
	).Scan(&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if isPgError(err, pgUniqueViolation) {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (s *EventStore) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	return scanEvent(s.db.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
}

func (s *EventStore) List(ctx context.Context, limit int) ([]domain.Event, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY created_at DESC, id LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var e domain.Event
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.Status, &e.CredibilityScore, &e.HeatScore,
			&e.Category, &e.Tags, &e.Metadata, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *EventStore) UpdateStatus(ctx context.Context, id string, status domain.EventStatus, credibility *float64) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE events
		 SET status = $2, credibility_score = COALESCE($3, credibility_score), updated_at = NOW()
		 WHERE id = $1`,
		id, status, credibility,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *EventStore) UpdateCredibility(ctx context.Context, id string, score float64) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE events SET credibility_score = $2, updated_at = NOW() WHERE id = $1`,
		id, score,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *EventStore) IncrementHeat(ctx context.Context, id string, delta float64) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE events SET heat_score = heat_score + $2, updated_at = NOW() WHERE id = $1`,
		id, delta,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
