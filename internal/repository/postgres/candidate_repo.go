package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"placement-backoffice/internal/domain"
)

type candidateRepo struct {
	db *pgxpool.Pool
}

// NewCandidateRepository creates a new candidate repository
func NewCandidateRepository(db *pgxpool.Pool) domain.CandidateRepository {
	return &candidateRepo{db: db}
}

// GetByID retrieves a candidate by ID, scoped to the company
func (r *candidateRepo) GetByID(ctx context.Context, companyID, id int64) (*domain.Candidate, error) {
	query := `
		SELECT id, company_id, full_name, nationality, status, created_at, updated_at
		FROM candidates
		WHERE company_id = $1 AND id = $2`

	var c domain.Candidate
	err := queryEngine(ctx, r.db).QueryRow(ctx, query, companyID, id).Scan(
		&c.ID, &c.CompanyID, &c.FullName, &c.Nationality, &c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// UpdateStatus updates the availability status of a candidate
func (r *candidateRepo) UpdateStatus(ctx context.Context, companyID, id int64, status domain.CandidateStatus) error {
	query := `UPDATE candidates SET status = $3, updated_at = $4 WHERE company_id = $1 AND id = $2`
	result, err := queryEngine(ctx, r.db).Exec(ctx, query, companyID, id, status, time.Now())
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
