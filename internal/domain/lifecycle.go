package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Lifecycle event actions
const (
	ActionStatusChange = "status_change"
	ActionCancellation = "cancellation"
	ActionClientChange = "client_change"
)

// FinancialImpact records the money side of a lifecycle event, if any.
type FinancialImpact struct {
	Type        string          `json:"type"` // refund | credit
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Description string          `json:"description"`
}

// LifecycleEvent is an immutable audit record of a state-changing action on
// an application. Append-only: never edited or deleted.
type LifecycleEvent struct {
	ID                    int64              `json:"id"`
	CompanyID             int64              `json:"company_id"`
	ApplicationID         int64              `json:"application_id"`
	Action                string             `json:"action"`
	FromStatus            *ApplicationStatus `json:"from_status,omitempty"`
	ToStatus              *ApplicationStatus `json:"to_status,omitempty"`
	FromClientID          *int64             `json:"from_client_id,omitempty"`
	ToClientID            *int64             `json:"to_client_id,omitempty"`
	CandidateStatusBefore *CandidateStatus   `json:"candidate_status_before,omitempty"`
	CandidateStatusAfter  *CandidateStatus   `json:"candidate_status_after,omitempty"`
	FinancialImpact       *FinancialImpact   `json:"financial_impact,omitempty"`
	Notes                 string             `json:"notes,omitempty"`
	PerformedBy           string             `json:"performed_by"`
	PerformedAt           time.Time          `json:"performed_at"`
}

// LifecycleEventRepository is the append-only audit store. Ordering is by
// performed_at then insertion order.
type LifecycleEventRepository interface {
	Append(ctx context.Context, event *LifecycleEvent) error
	ListByApplication(ctx context.Context, companyID, applicationID int64) ([]LifecycleEvent, error)
}
