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

type SourceStore struct {
	db *pgxpool.Pool
}

func NewSourceStore(db *pgxpool.Pool) *SourceStore {
	return &SourceStore{db: db}
}

const sourceColumns = `id, name, source_type, credit_score, total_claims, verified_claims,
	refuted_claims, url, description, metadata, version, created_at, updated_at`

func scanSource(row pgx.Row) (*domain.Source, error) {
	s := &domain.Source{}
	err := row.Scan(&s.ID, &s.Name, &s.Type, &s.CreditScore, &s.TotalClaims, &s.VerifiedClaims,
		&s.RefutedClaims, &s.URL, &s.Description, &s.Metadata, &s.Version, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (s *SourceStore) Create(ctx context.Context, src *domain.Source) error {
	err := s.db.QueryRow(ctx,
		`INSERT INTO sources (name, source_type, credit_score, url, description, metadata)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, total_claims, verified_claims, refuted_claims, version, created_at, updated_at`,
		src.Name, src.Type, src.CreditScore, src.URL, src.Description, src.Metadata,
	).Scan(&src.ID, &src.TotalClaims, &src.VerifiedClaims, &src.RefutedClaims, &src.Version, &src.CreatedAt, &src.UpdatedAt)
	if err != nil {
		if isPgError(err, pgUniqueViolation) {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (s *SourceStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Source, error) {
	return scanSource(s.db.QueryRow(ctx,
		`SELECT `+sourceColumns+` FROM sources WHERE id = $1`, id))
}

func (s *SourceStore) FindByName(ctx context.Context, name string) (*domain.Source, error) {
	return scanSource(s.db.QueryRow(ctx,
		`SELECT `+sourceColumns+` FROM sources WHERE LOWER(name) = LOWER($1)`, name))
}

// FindOrCreate resolves a name to its canonical row. A create that loses a
// race to another inserter falls back to reading the winner's row.
func (s *SourceStore) FindOrCreate(ctx context.Context, src *domain.Source) (*domain.Source, error) {
	existing, err := s.FindByName(ctx, src.Name)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if err := s.Create(ctx, src); err != nil {
		if errors.Is(err, ErrConflict) {
			return s.FindByName(ctx, src.Name)
		}
		return nil, err
	}
	return src, nil
}

// Update writes the mutable fields guarded by the row version. Callers hold a
// row read from one of the getters, so zero affected rows means a concurrent
// writer got there first.
func (s *SourceStore) Update(ctx context.Context, src *domain.Source) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE sources
		 SET source_type = $2, credit_score = $3, url = $4, description = $5,
		     metadata = $6, version = version + 1, updated_at = NOW()
		 WHERE id = $1 AND version = $7`,
		src.ID, src.Type, src.CreditScore, src.URL, src.Description, src.Metadata, src.Version,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrVersionConflict
	}
	src.Version++
	return nil
}

// ApplyReputationUpdate claims the (investigation, source) idempotency key and
// applies the clamped score delta plus counter increments in one transaction.
// The clamp runs inside the UPDATE so concurrent updates to the same source
// serialize on the row lock without losing increments.
func (s *SourceStore) ApplyReputationUpdate(ctx context.Context, u *domain.ReputationUpdate) (*domain.Source, bool, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx,
		`INSERT INTO reputation_applications (investigation_id, source_id)
		 VALUES ($1, $2)
		 ON CONFLICT (investigation_id, source_id) DO NOTHING`,
		u.InvestigationID, u.SourceID,
	)
	if err != nil {
		if isPgError(err, pgForeignKeyViolation) {
			return nil, false, ErrNotFound
		}
		return nil, false, err
	}

	if tag.RowsAffected() == 0 {
		// Already applied; report the row as it stands.
		src, err := scanSource(tx.QueryRow(ctx,
			`SELECT `+sourceColumns+` FROM sources WHERE id = $1`, u.SourceID))
		if err != nil {
			return nil, false, err
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, false, err
		}
		return src, false, nil
	}

	src, err := scanSource(tx.QueryRow(ctx,
		`UPDATE sources
		 SET credit_score = LEAST(100, GREATEST(0, credit_score + $2)),
		     total_claims = total_claims + $3,
		     verified_claims = verified_claims + $4,
		     refuted_claims = refuted_claims + $5,
		     version = version + 1,
		     updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+sourceColumns,
		u.SourceID, u.ScoreDelta, u.TotalClaims, u.VerifiedClaims, u.RefutedClaims,
	))
	if err != nil {
		return nil, false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, err
	}
	return src, true, nil
}

func (s *SourceStore) ListTrending(ctx context.Context, limit int) ([]domain.Source, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(ctx,
		`SELECT `+sourceColumns+` FROM sources
		 ORDER BY total_claims DESC, name
		 LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectSources(rows)
}

func (s *SourceStore) ListInactiveSince(ctx context.Context, cutoff time.Time) ([]domain.Source, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+sourceColumns+` FROM sources
		 WHERE updated_at < $1 AND credit_score <> $2
		 ORDER BY updated_at`,
		cutoff, domain.DefaultCreditScore)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectSources(rows)
}

func collectSources(rows pgx.Rows) ([]domain.Source, error) {
	var sources []domain.Source
	for rows.Next() {
		var s domain.Source
		if err := rows.Scan(&s.ID, &s.Name, &s.Type, &s.CreditScore, &s.TotalClaims, &s.VerifiedClaims,
			&s.RefutedClaims, &s.URL, &s.Description, &s.Metadata, &s.Version, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		sources = append(sources, s)
	}
	return sources, rows.Err()
}
