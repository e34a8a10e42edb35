package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"placement-backoffice/internal/domain"
)

type settingRepo struct {
	db *pgxpool.Pool
}

// NewCancellationSettingRepository creates the business rule store repository
func NewCancellationSettingRepository(db *pgxpool.Pool) domain.CancellationSettingRepository {
	return &settingRepo{db: db}
}

const settingColumns = `
	id, company_id, cancellation_type, penalty_fee, refund_percentage,
	non_refundable_fees, monthly_service_fee, max_refund_amount, active,
	created_at, updated_at`

func scanSetting(row pgx.Row) (*domain.CancellationSetting, error) {
	var s domain.CancellationSetting
	err := row.Scan(
		&s.ID, &s.CompanyID, &s.CancellationType, &s.PenaltyFee, &s.RefundPercentage,
		&s.NonRefundableFees, &s.MonthlyServiceFee, &s.MaxRefundAmount, &s.Active,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// GetActive retrieves the single active setting for a cancellation type
func (r *settingRepo) GetActive(ctx context.Context, companyID int64, cancellationType domain.CancellationType) (*domain.CancellationSetting, error) {
	query := `SELECT` + settingColumns + `
		FROM cancellation_settings
		WHERE company_id = $1 AND cancellation_type = $2 AND active
		LIMIT 1`

	return scanSetting(queryEngine(ctx, r.db).QueryRow(ctx, query, companyID, cancellationType))
}

// List retrieves all settings for a company, newest first
func (r *settingRepo) List(ctx context.Context, companyID int64) ([]domain.CancellationSetting, error) {
	query := `SELECT` + settingColumns + `
		FROM cancellation_settings
		WHERE company_id = $1
		ORDER BY created_at DESC, id DESC`

	rows, err := queryEngine(ctx, r.db).Query(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var settings []domain.CancellationSetting
	for rows.Next() {
		var s domain.CancellationSetting
		if err := rows.Scan(
			&s.ID, &s.CompanyID, &s.CancellationType, &s.PenaltyFee, &s.RefundPercentage,
			&s.NonRefundableFees, &s.MonthlyServiceFee, &s.MaxRefundAmount, &s.Active,
			&s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// Create inserts a new setting
func (r *settingRepo) Create(ctx context.Context, setting *domain.CancellationSetting) error {
	query := `
		INSERT INTO cancellation_settings (company_id, cancellation_type, penalty_fee,
			refund_percentage, non_refundable_fees, monthly_service_fee, max_refund_amount,
			active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	now := time.Now()
	setting.CreatedAt = now
	setting.UpdatedAt = now
	return queryEngine(ctx, r.db).QueryRow(ctx, query,
		setting.CompanyID,
		setting.CancellationType,
		setting.PenaltyFee,
		setting.RefundPercentage,
		setting.NonRefundableFees,
		setting.MonthlyServiceFee,
		setting.MaxRefundAmount,
		setting.Active,
		setting.CreatedAt,
		setting.UpdatedAt,
	).Scan(&setting.ID)
}

// Update rewrites a setting's rule fields
func (r *settingRepo) Update(ctx context.Context, setting *domain.CancellationSetting) error {
	query := `
		UPDATE cancellation_settings
		SET penalty_fee = $3, refund_percentage = $4, non_refundable_fees = $5,
			monthly_service_fee = $6, max_refund_amount = $7, active = $8, updated_at = $9
		WHERE company_id = $1 AND id = $2`

	setting.UpdatedAt = time.Now()
	result, err := queryEngine(ctx, r.db).Exec(ctx, query,
		setting.CompanyID,
		setting.ID,
		setting.PenaltyFee,
		setting.RefundPercentage,
		setting.NonRefundableFees,
		setting.MonthlyServiceFee,
		setting.MaxRefundAmount,
		setting.Active,
		setting.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeactivateByType deactivates every setting for a (company, type) pair,
// preserving the at-most-one-active invariant before a create or activate.
func (r *settingRepo) DeactivateByType(ctx context.Context, companyID int64, cancellationType domain.CancellationType) error {
	query := `
		UPDATE cancellation_settings
		SET active = false, updated_at = $3
		WHERE company_id = $1 AND cancellation_type = $2 AND active`

	_, err := queryEngine(ctx, r.db).Exec(ctx, query, companyID, cancellationType, time.Now())
	return err
}

// GetLawyerService retrieves the company's lawyer fee/charge pair
func (r *settingRepo) GetLawyerService(ctx context.Context, companyID int64) (*domain.LawyerServiceSetting, error) {
	query := `
		SELECT company_id, fee, charge, updated_at
		FROM lawyer_service_settings
		WHERE company_id = $1`

	var s domain.LawyerServiceSetting
	err := queryEngine(ctx, r.db).QueryRow(ctx, query, companyID).Scan(&s.CompanyID, &s.Fee, &s.Charge, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// UpsertLawyerService writes the company's lawyer fee/charge pair
func (r *settingRepo) UpsertLawyerService(ctx context.Context, setting *domain.LawyerServiceSetting) error {
	query := `
		INSERT INTO lawyer_service_settings (company_id, fee, charge, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (company_id) DO UPDATE SET fee = $2, charge = $3, updated_at = $4`

	setting.UpdatedAt = time.Now()
	_, err := queryEngine(ctx, r.db).Exec(ctx, query, setting.CompanyID, setting.Fee, setting.Charge, setting.UpdatedAt)
	return err
}
