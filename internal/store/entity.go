package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/veritaslab/credence/internal/domain"
)

type EntityStore struct {
	db *pgxpool.Pool
}

func NewEntityStore(db *pgxpool.Pool) *EntityStore {
	return &EntityStore{db: db}
}

func (s *EntityStore) FindByName(ctx context.Context, name string) (*domain.Entity, error) {
	e := &domain.Entity{}
	err := s.db.QueryRow(ctx,
		`SELECT id, name, entity_type, description, metadata, created_at, updated_at
		 FROM entities WHERE LOWER(name) = LOWER($1)`,
		name,
	).Scan(&e.ID, &e.Name, &e.Type, &e.Description, &e.Metadata, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (s *EntityStore) FindOrCreate(ctx context.Context, e *domain.Entity) (*domain.Entity, error) {
	existing, err := s.FindByName(ctx, e.Name)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	err = s.db.QueryRow(ctx,
		`INSERT INTO entities (name, entity_type, description, metadata)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		e.Name, e.Type, e.Description, e.Metadata,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if isPgError(err, pgUniqueViolation) {
			return s.FindByName(ctx, e.Name)
		}
		return nil, err
	}
	return e, nil
}

func (s *EntityStore) List(ctx context.Context, limit int) ([]domain.Entity, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, name, entity_type, description, metadata, created_at, updated_at
		 FROM entities ORDER BY name LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entities []domain.Entity
	for rows.Next() {
		var e domain.Entity
		if err := rows.Scan(&e.ID, &e.Name, &e.Type, &e.Description, &e.Metadata, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	return entities, rows.Err()
}
