package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"placement-backoffice/internal/domain"
)

type paymentRepo struct {
	db *pgxpool.Pool
}

// NewPaymentRepository creates the read-only payment/cost ledger repository
func NewPaymentRepository(db *pgxpool.Pool) domain.PaymentRepository {
	return &paymentRepo{db: db}
}

// ListByApplication retrieves the payment ledger for one application with
// the payment type's name and refundability default joined in.
func (r *paymentRepo) ListByApplication(ctx context.Context, companyID, applicationID int64) ([]domain.Payment, error) {
	query := `
		SELECT
			p.id, p.company_id, p.application_id, p.client_id,
			p.amount, p.currency, p.payment_type_id, p.payment_date, p.notes, p.created_at,
			pt.name as type_name,
			pt.is_refundable as type_refundable
		FROM payments p
		JOIN payment_types pt ON p.payment_type_id = pt.id
		WHERE p.company_id = $1 AND p.application_id = $2
		ORDER BY p.payment_date, p.id`

	rows, err := queryEngine(ctx, r.db).Query(ctx, query, companyID, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(
			&p.ID, &p.CompanyID, &p.ApplicationID, &p.ClientID,
			&p.Amount, &p.Currency, &p.PaymentTypeID, &p.PaymentDate, &p.Notes, &p.CreatedAt,
			&p.TypeName, &p.TypeRefundable,
		); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// ListCostsByApplication retrieves recorded office costs for one application
func (r *paymentRepo) ListCostsByApplication(ctx context.Context, companyID, applicationID int64) ([]domain.Cost, error) {
	query := `
		SELECT id, company_id, application_id, amount, currency, category, description, incurred_at
		FROM costs
		WHERE company_id = $1 AND application_id = $2
		ORDER BY incurred_at, id`

	rows, err := queryEngine(ctx, r.db).Query(ctx, query, companyID, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var costs []domain.Cost
	for rows.Next() {
		var c domain.Cost
		if err := rows.Scan(
			&c.ID, &c.CompanyID, &c.ApplicationID, &c.Amount, &c.Currency,
			&c.Category, &c.Description, &c.IncurredAt,
		); err != nil {
			return nil, err
		}
		costs = append(costs, c)
	}
	return costs, rows.Err()
}

type adjustmentRepo struct {
	db *pgxpool.Pool
}

// NewAdjustmentRepository creates the financial ledger adjustment repository
func NewAdjustmentRepository(db *pgxpool.Pool) domain.AdjustmentRepository {
	return &adjustmentRepo{db: db}
}

// Create appends a ledger adjustment
func (r *adjustmentRepo) Create(ctx context.Context, adj *domain.LedgerAdjustment) error {
	query := `
		INSERT INTO ledger_adjustments (company_id, application_id, type, amount, currency, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	adj.CreatedAt = time.Now()
	return queryEngine(ctx, r.db).QueryRow(ctx, query,
		adj.CompanyID,
		adj.ApplicationID,
		adj.Type,
		adj.Amount,
		adj.Currency,
		adj.Description,
		adj.CreatedAt,
	).Scan(&adj.ID)
}
