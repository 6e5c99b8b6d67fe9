package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/veritaslab/credence/internal/domain"
)

type RefutationStore struct {
	db *pgxpool.Pool
}

func NewRefutationStore(db *pgxpool.Pool) *RefutationStore {
	return &RefutationStore{db: db}
}

func (s *RefutationStore) Create(ctx context.Context, r *domain.Refutation) error {
	err := s.db.QueryRow(ctx,
		`INSERT INTO claim_refutations (refuting_claim_id, refuted_claim_id, confidence, evidence)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		r.RefutingClaimID, r.RefutedClaimID, r.Confidence, r.Evidence,
	).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		if isPgError(err, pgUniqueViolation) {
			return ErrConflict
		}
		if isPgError(err, pgForeignKeyViolation) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *RefutationStore) ListInvolving(ctx context.Context, claimID uuid.UUID) ([]domain.Refutation, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, refuting_claim_id, refuted_claim_id, confidence, evidence, created_at
		 FROM claim_refutations
		 WHERE refuting_claim_id = $1 OR refuted_claim_id = $1
		 ORDER BY created_at, id`,
		claimID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectRefutations(rows)
}

func (s *RefutationStore) ListAmong(ctx context.Context, claimIDs []uuid.UUID) ([]domain.Refutation, error) {
	if len(claimIDs) == 0 {
		return nil, nil
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, refuting_claim_id, refuted_claim_id, confidence, evidence, created_at
		 FROM claim_refutations
		 WHERE refuting_claim_id = ANY($1) AND refuted_claim_id = ANY($1)
		 ORDER BY created_at, id`,
		claimIDs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectRefutations(rows)
}

func collectRefutations(rows pgx.Rows) ([]domain.Refutation, error) {
	var refs []domain.Refutation
	for rows.Next() {
		var r domain.Refutation
		if err := rows.Scan(&r.ID, &r.RefutingClaimID, &r.RefutedClaimID, &r.Confidence, &r.Evidence, &r.CreatedAt); err != nil {
			return nil, err
		}
		refs = append(refs, r)
	}
	return refs, rows.Err()
}
