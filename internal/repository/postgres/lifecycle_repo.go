package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"placement-backoffice/internal/domain"
)

type lifecycleRepo struct {
	db *pgxpool.Pool
}

// NewLifecycleEventRepository creates the append-only audit store
func NewLifecycleEventRepository(db *pgxpool.Pool) domain.LifecycleEventRepository {
	return &lifecycleRepo{db: db}
}

// Append writes one immutable lifecycle event. There is no update or delete.
func (r *lifecycleRepo) Append(ctx context.Context, event *domain.LifecycleEvent) error {
	query := `
		INSERT INTO lifecycle_events (company_id, application_id, action,
			from_status, to_status, from_client_id, to_client_id,
			candidate_status_before, candidate_status_after,
			financial_impact, notes, performed_by, performed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`

	if event.PerformedAt.IsZero() {
		event.PerformedAt = time.Now()
	}

	var impact []byte
	if event.FinancialImpact != nil {
		b, err := json.Marshal(event.FinancialImpact)
		if err != nil {
			return err
		}
		impact = b
	}

	return queryEngine(ctx, r.db).QueryRow(ctx, query,
		event.CompanyID,
		event.ApplicationID,
		event.Action,
		event.FromStatus,
		event.ToStatus,
		event.FromClientID,
		event.ToClientID,
		event.CandidateStatusBefore,
		event.CandidateStatusAfter,
		impact,
		event.Notes,
		event.PerformedBy,
		event.PerformedAt,
	).Scan(&event.ID)
}

// ListByApplication retrieves the audit trail for one application, ordered
// by performed_at then insertion order.
func (r *lifecycleRepo) ListByApplication(ctx context.Context, companyID, applicationID int64) ([]domain.LifecycleEvent, error) {
	query := `
		SELECT id, company_id, application_id, action,
			from_status, to_status, from_client_id, to_client_id,
			candidate_status_before, candidate_status_after,
			financial_impact, notes, performed_by, performed_at
		FROM lifecycle_events
		WHERE company_id = $1 AND application_id = $2
		ORDER BY performed_at, id`

	rows, err := queryEngine(ctx, r.db).Query(ctx, query, companyID, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.LifecycleEvent
	for rows.Next() {
		var e domain.LifecycleEvent
		var impact []byte
		if err := rows.Scan(
			&e.ID, &e.CompanyID, &e.ApplicationID, &e.Action,
			&e.FromStatus, &e.ToStatus, &e.FromClientID, &e.ToClientID,
			&e.CandidateStatusBefore, &e.CandidateStatusAfter,
			&impact, &e.Notes, &e.PerformedBy, &e.PerformedAt,
		); err != nil {
			return nil, err
		}
		if len(impact) > 0 {
			var fi domain.FinancialImpact
			if err := json.Unmarshal(impact, &fi); err != nil {
				return nil, err
			}
			e.FinancialImpact = &fi
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
