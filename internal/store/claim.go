package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/veritaslab/credence/internal/domain"
)

type ClaimStore struct {
	db *pgxpool.Pool
}

func NewClaimStore(db *pgxpool.Pool) *ClaimStore {
	return &ClaimStore{db: db}
}

const claimColumns = `id, event_id, source_id, text, status, claim_type, entities,
	verification, metadata, asserted_at, created_at, updated_at`

func scanClaim(row pgx.Row) (*domain.Claim, error) {
	c := &domain.Claim{}
	err := row.Scan(&c.ID, &c.EventID, &c.SourceID, &c.Text, &c.Status, &c.ClaimType, &c.Entities,
		&c.Verification, &c.Metadata, &c.AssertedAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

// Create inserts the claim and bumps the source's total_claims in one
// transaction so the counter can never drift from the claim rows.
func (s *ClaimStore) Create(ctx context.Context, c *domain.Claim) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx,
		`INSERT INTO claims (event_id, source_id, text, status, claim_type, entities, verification, metadata, asserted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, COALESCE($9, NOW()))
		 RETURNING id, asserted_at, created_at, updated_at`,
		c.EventID, c.SourceID, c.Text, c.Status, c.ClaimType, c.Entities, c.Verification, c.Metadata, nullableTime(c.AssertedAt),
	).Scan(&c.ID, &c.AssertedAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isPgError(err, pgForeignKeyViolation) {
			return ErrNotFound
		}
		return err
	}

	tag, err := tx.Exec(ctx,
		`UPDATE sources SET total_claims = total_claims + 1, updated_at = NOW() WHERE id = $1`,
		c.SourceID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return tx.Commit(ctx)
}

func (s *ClaimStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Claim, error) {
	return scanClaim(s.db.QueryRow(ctx,
		`SELECT `+claimColumns+` FROM claims WHERE id = $1`, id))
}

func (s *ClaimStore) ListByEvent(ctx context.Context, eventID string) ([]domain.Claim, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+claimColumns+` FROM claims
		 WHERE event_id = $1
		 ORDER BY created_at, id`,
		eventID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var claims []domain.Claim
	for rows.Next() {
		var c domain.Claim
		if err := rows.Scan(&c.ID, &c.EventID, &c.SourceID, &c.Text, &c.Status, &c.ClaimType, &c.Entities,
			&c.Verification, &c.Metadata, &c.AssertedAt, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		claims = append(claims, c)
	}
	return claims, rows.Err()
}

func (s *ClaimStore) CountByEvent(ctx context.Context, eventID string) (int, error) {
	var count int
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM claims WHERE event_id = $1`, eventID,
	).Scan(&count)
	return count, err
}

// UpdateStatus performs the transition guarded by the expected current status
// and, when the claim enters verified or refuted, bumps the source's matching
// counter in the same transaction. Zero affected rows on the guarded update
// means a concurrent transition won.
func (s *ClaimStore) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.ClaimStatus, verification map[string]any) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx,
		`UPDATE claims
		 SET status = $3, verification = COALESCE($4, verification), updated_at = NOW()
		 WHERE id = $1 AND status = $2`,
		id, from, to, verification,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrVersionConflict
	}

	var counter string
	switch to {
	case domain.ClaimVerified:
		counter = "verified_claims"
	case domain.ClaimRefuted:
		counter = "refuted_claims"
	}
	if counter != "" {
		tag, err := tx.Exec(ctx,
			`UPDATE sources s
			 SET `+counter+` = s.`+counter+` + 1, updated_at = NOW()
			 FROM claims c
			 WHERE c.id = $1 AND s.id = c.source_id`,
			id,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
	}

	return tx.Commit(ctx)
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
