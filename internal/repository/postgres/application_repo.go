package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"placement-backoffice/internal/domain"
)

type applicationRepo struct {
	db *pgxpool.Pool
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db *pgxpool.Pool) domain.ApplicationRepository {
	return &applicationRepo{db: db}
}

const applicationColumns = `
	a.id, a.company_id, a.client_id, a.candidate_id, a.status, a.type,
	a.from_client_id, a.agreed_fee, a.currency,
	a.exact_arrival_date, a.labor_permit_date, a.residency_permit_date,
	a.created_at, a.updated_at`

func scanApplication(row pgx.Row) (*domain.Application, error) {
	var app domain.Application
	err := row.Scan(
		&app.ID, &app.CompanyID, &app.ClientID, &app.CandidateID, &app.Status, &app.Type,
		&app.FromClientID, &app.AgreedFee, &app.Currency,
		&app.ExactArrivalDate, &app.LaborPermitDate, &app.ResidencyPermitDate,
		&app.CreatedAt, &app.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &app, nil
}

// Create inserts a new application
func (r *applicationRepo) Create(ctx context.Context, app *domain.Application) error {
	query := `
		INSERT INTO applications (company_id, client_id, candidate_id, status, type,
			from_client_id, agreed_fee, currency, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	now := time.Now()
	app.CreatedAt = now
	app.UpdatedAt = now
	if app.Status == "" {
		app.Status = domain.StatusPendingMOL
	}

	return queryEngine(ctx, r.db).QueryRow(ctx, query,
		app.CompanyID,
		app.ClientID,
		app.CandidateID,
		app.Status,
		app.Type,
		app.FromClientID,
		app.AgreedFee,
		app.Currency,
		app.CreatedAt,
		app.UpdatedAt,
	).Scan(&app.ID)
}

// GetByID retrieves an application by ID, scoped to the company
func (r *applicationRepo) GetByID(ctx context.Context, companyID, id int64) (*domain.Application, error) {
	query := `SELECT` + applicationColumns + `
		FROM applications a
		WHERE a.company_id = $1 AND a.id = $2`

	return scanApplication(queryEngine(ctx, r.db).QueryRow(ctx, query, companyID, id))
}

// GetByIDForUpdate retrieves an application and locks its row until the
// enclosing transaction commits. Outside a transaction the lock is released
// immediately, so callers must hold one.
func (r *applicationRepo) GetByIDForUpdate(ctx context.Context, companyID, id int64) (*domain.Application, error) {
	query := `SELECT` + applicationColumns + `
		FROM applications a
		WHERE a.company_id = $1 AND a.id = $2
		FOR UPDATE`

	return scanApplication(queryEngine(ctx, r.db).QueryRow(ctx, query, companyID, id))
}

// Update persists the status and date fields of an application
func (r *applicationRepo) Update(ctx context.Context, app *domain.Application) error {
	query := `
		UPDATE applications
		SET status = $3, exact_arrival_date = $4, labor_permit_date = $5,
			residency_permit_date = $6, updated_at = $7
		WHERE company_id = $1 AND id = $2`

	app.UpdatedAt = time.Now()
	result, err := queryEngine(ctx, r.db).Exec(ctx, query,
		app.CompanyID,
		app.ID,
		app.Status,
		app.ExactArrivalDate,
		app.LaborPermitDate,
		app.ResidencyPermitDate,
		app.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
