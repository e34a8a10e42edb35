package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentType is a company-configurable category of payment carrying a
// refundability default. Refundability is always resolved through
// ResolveRefundable, never by matching on free-text names at call sites.
type PaymentType struct {
	ID           int64  `json:"id"`
	CompanyID    int64  `json:"company_id"`
	Name         string `json:"name"`
	IsRefundable bool   `json:"is_refundable"`
	Active       bool   `json:"active"`
}

// Payment is a recorded client payment on one application. Immutable after
// creation (soft-void is handled outside this core).
type Payment struct {
	ID            int64           `json:"id"`
	CompanyID     int64           `json:"company_id"`
	ApplicationID int64           `json:"application_id"`
	ClientID      int64           `json:"client_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	PaymentTypeID int64           `json:"payment_type_id"`
	PaymentDate   time.Time       `json:"payment_date"`
	Notes         *string         `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`

	// Joined from payment_types for ledger replay
	TypeName       string `json:"type_name"`
	TypeRefundable bool   `json:"type_refundable"`
}

// ResolveRefundable resolves a payment's effective refundability: the rule
// set's non-refundable list overrides the payment type's own default.
func (p Payment) ResolveRefundable(nonRefundableFees []string) bool {
	for _, name := range nonRefundableFees {
		if name == p.TypeName {
			return false
		}
	}
	return p.TypeRefundable
}

// Cost is money the office spent on an application (visa fees, tickets...).
// Recorded for the ledger view; costs do not participate in refund math.
type Cost struct {
	ID            int64           `json:"id"`
	CompanyID     int64           `json:"company_id"`
	ApplicationID int64           `json:"application_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Category      string          `json:"category"`
	Description   *string         `json:"description,omitempty"`
	IncurredAt    time.Time       `json:"incurred_at"`
}

// Ledger adjustment types
const (
	AdjustmentTypeRefund = "refund"
	AdjustmentTypeCredit = "credit"
)

// LedgerAdjustment is a financial ledger entry written as a cancellation
// side effect: a cash-out refund, or a credit when the money flows on to a
// new guarantor.
type LedgerAdjustment struct {
	ID            int64           `json:"id"`
	CompanyID     int64           `json:"company_id"`
	ApplicationID int64           `json:"application_id"`
	Type          string          `json:"type"` // refund | credit
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Description   string          `json:"description"`
	CreatedAt     time.Time       `json:"created_at"`
}

// PaymentRepository is the read-only payment/cost ledger for applications.
type PaymentRepository interface {
	ListByApplication(ctx context.Context, companyID, applicationID int64) ([]Payment, error)
	ListCostsByApplication(ctx context.Context, companyID, applicationID int64) ([]Cost, error)
}

// AdjustmentRepository appends financial ledger adjustments.
type AdjustmentRepository interface {
	Create(ctx context.Context, adj *LedgerAdjustment) error
}
