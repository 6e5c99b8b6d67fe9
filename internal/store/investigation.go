package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/veritaslab/credence/internal/domain"
)

type InvestigationStore struct {
	db *pgxpool.Pool
}

func NewInvestigationStore(db *pgxpool.Pool) *InvestigationStore {
	return &InvestigationStore{db: db}
}

// Save upserts by investigation id so a re-run investigation overwrites its
// earlier report rather than duplicating history.
func (s *InvestigationStore) Save(ctx context.Context, inv *domain.Investigation) error {
	err := s.db.QueryRow(ctx,
		`INSERT INTO investigations (id, event_id, report, credibility_score, started_at, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE
		 SET report = EXCLUDED.report,
		     credibility_score = EXCLUDED.credibility_score,
		     started_at = EXCLUDED.started_at,
		     completed_at = EXCLUDED.completed_at
		 RETURNING created_at`,
		inv.ID, inv.EventID, inv.Report, inv.CredibilityScore, inv.StartedAt, inv.CompletedAt,
	).Scan(&inv.CreatedAt)
	if err != nil {
		if isPgError(err, pgForeignKeyViolation) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *InvestigationStore) GetByID(ctx context.Context, id string) (*domain.Investigation, error) {
	inv := &domain.Investigation{}
	err := s.db.QueryRow(ctx,
		`SELECT id, event_id, report, credibility_score, started_at, completed_at, created_at
		 FROM investigations WHERE id = $1`,
		id,
	).Scan(&inv.ID, &inv.EventID, &inv.Report, &inv.CredibilityScore, &inv.StartedAt, &inv.CompletedAt, &inv.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return inv, nil
}

func (s *InvestigationStore) ListByEvent(ctx context.Context, eventID string) ([]domain.Investigation, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, event_id, report, credibility_score, started_at, completed_at, created_at
		 FROM investigations WHERE event_id = $1
		 ORDER BY created_at DESC, id`,
		eventID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invs []domain.Investigation
	for rows.Next() {
		var inv domain.Investigation
		if err := rows.Scan(&inv.ID, &inv.EventID, &inv.Report, &inv.CredibilityScore, &inv.StartedAt, &inv.CompletedAt, &inv.CreatedAt); err != nil {
			return nil, err
		}
		invs = append(invs, inv)
	}
	return invs, rows.Err()
}
