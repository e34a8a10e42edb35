package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// CancellationType is one of the fixed categories determining refund policy.
type CancellationType string

const (
	CancelPreArrival         CancellationType = "pre_arrival"
	CancelPostArrivalWithin3 CancellationType = "post_arrival_within_3_months"
	CancelPostArrivalAfter3  CancellationType = "post_arrival_after_3_months"
	CancelByCandidate        CancellationType = "candidate_cancellation"

	// SettingDeportation is a fifth settings variant keyed in the same table.
	// It is never a selectable cancellation type; it replaces the standard
	// rule set when the candidate is deported.
	SettingDeportation CancellationType = "deportation"
)

// TerminalStatus maps a cancellation type to the terminal application status
// it produces.
func (t CancellationType) TerminalStatus() ApplicationStatus {
	switch t {
	case CancelPreArrival:
		return StatusCancelledPreArrival
	case CancelPostArrivalWithin3, CancelPostArrivalAfter3:
		return StatusCancelledPostArrival
	default:
		return StatusCancelledCandidate
	}
}

// NextAction is the post-cancellation disposition of the candidate.
type NextAction string

const (
	NextActionMoveToClient NextAction = "move_to_client"
	NextActionDeport       NextAction = "deport"
	NextActionKeepWaiting  NextAction = "keep_waiting"
	NextActionNone         NextAction = ""
)

// CancellationSetting is the versioned, company-scoped refund policy for one
// cancellation type. At most one active row per (company, type).
type CancellationSetting struct {
	ID                int64            `json:"id"`
	CompanyID         int64            `json:"company_id"`
	CancellationType  CancellationType `json:"cancellation_type"`
	PenaltyFee        decimal.Decimal  `json:"penalty_fee"`
	RefundPercentage  decimal.Decimal  `json:"refund_percentage"` // 0-100
	NonRefundableFees []string         `json:"non_refundable_fees"`
	MonthlyServiceFee decimal.Decimal  `json:"monthly_service_fee"`
	MaxRefundAmount   *decimal.Decimal `json:"max_refund_amount,omitempty"`
	Active            bool             `json:"active"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// LawyerServiceSetting is the company-wide lawyer fee/charge pair. It is rule
// store data only; the refund formula does not consult it.
type LawyerServiceSetting struct {
	CompanyID int64           `json:"company_id"`
	Fee       decimal.Decimal `json:"fee"`
	Charge    decimal.Decimal `json:"charge"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// CandidateFlags are caller-supplied hints about the candidate's location.
// The core re-derives what it can and treats these as hints only.
type CandidateFlags struct {
	CandidateInLebanon bool `json:"candidate_in_lebanon"`
	CandidateDeparted  bool `json:"candidate_departed"`
}

// RefundOverrides are admin-level adjustments to a refund computation.
type RefundOverrides struct {
	CustomRefundAmount *decimal.Decimal `json:"custom_refund_amount,omitempty"`
	OverrideFee        *decimal.Decimal `json:"override_fee,omitempty"`
}

// RefundLine is the per-payment itemization of a computed refund, for
// display. Line refund amounts are proportionally allocated and rounded
// independently; FinalRefund on the parent is the authoritative total.
type RefundLine struct {
	PaymentID    int64           `json:"payment_id"`
	PaymentType  string          `json:"payment_type"`
	Amount       decimal.Decimal `json:"amount"`
	IsRefundable bool            `json:"is_refundable"`
	RefundAmount decimal.Decimal `json:"refund_amount"`
}

// RefundCalculation is a computed, non-persisted value object. Only its
// FinalRefund and inputs are persisted, as part of the lifecycle event.
type RefundCalculation struct {
	TotalPaid           decimal.Decimal `json:"total_paid"`
	RefundableAmount    decimal.Decimal `json:"refundable_amount"`
	NonRefundableAmount decimal.Decimal `json:"non_refundable_amount"`
	CalculatedRefund    decimal.Decimal `json:"calculated_refund"`
	FinalRefund         decimal.Decimal `json:"final_refund"`
	Currency            string          `json:"currency"`
	RefundBreakdown     []RefundLine    `json:"refund_breakdown"`
}

// CancellationOptions is what the UI needs to render the cancellation dialog.
type CancellationOptions struct {
	CanCancel      bool               `json:"can_cancel"`
	AvailableTypes []CancellationType `json:"available_types"`
	Warnings       []string           `json:"warnings"`
	RefundEstimate *RefundCalculation `json:"refund_estimate,omitempty"`
}

// CancelRequest is the commit-time input for cancelling an application.
type CancelRequest struct {
	ApplicationID    int64
	CancellationType CancellationType
	Reason           string
	Flags            CandidateFlags
	NextAction       NextAction
	ToClientID       *int64
	Overrides        RefundOverrides
	Notes            string
}

// CancelResult reports what a committed cancellation did.
type CancelResult struct {
	NewStatus        ApplicationStatus  `json:"new_status"`
	Refund           *RefundCalculation `json:"refund"`
	LifecycleEventID int64              `json:"lifecycle_event_id"`
}

// GuarantorChangeRequest transfers a candidate from their current client to
// a new one.
type GuarantorChangeRequest struct {
	ApplicationID int64
	ToClientID    int64
	Reason        string
	Flags         CandidateFlags
	Overrides     RefundOverrides
	Notes         string
}

// GuarantorChangeResult reports the cancel-and-recreate outcome.
type GuarantorChangeResult struct {
	CancelledApplicationID int64              `json:"cancelled_application_id"`
	NewApplicationID       int64              `json:"new_application_id"`
	Refund                 *RefundCalculation `json:"refund"`
}

// CancellationSettingRepository is the persistence side of the business rule
// store.
type CancellationSettingRepository interface {
	GetActive(ctx context.Context, companyID int64, cancellationType CancellationType) (*CancellationSetting, error)
	List(ctx context.Context, companyID int64) ([]CancellationSetting, error)
	Create(ctx context.Context, setting *CancellationSetting) error
	Update(ctx context.Context, setting *CancellationSetting) error
	DeactivateByType(ctx context.Context, companyID int64, cancellationType CancellationType) error
	GetLawyerService(ctx context.Context, companyID int64) (*LawyerServiceSetting, error)
	UpsertLawyerService(ctx context.Context, setting *LawyerServiceSetting) error
}

// CancellationUsecase drives the cancellation workflow.
type CancellationUsecase interface {
	GetOptions(ctx context.Context, companyID, applicationID int64, flags CandidateFlags) (*CancellationOptions, error)
	CalculateRefund(ctx context.Context, companyID, applicationID int64, cancellationType CancellationType, flags CandidateFlags, overrides RefundOverrides) (*RefundCalculation, error)
	Cancel(ctx context.Context, companyID int64, actor string, req CancelRequest) (*CancelResult, error)
}

// GuarantorChangeUsecase drives the client-transfer workflow.
type GuarantorChangeUsecase interface {
	CalculateRefund(ctx context.Context, companyID, applicationID int64, flags CandidateFlags, overrides RefundOverrides) (*RefundCalculation, error)
	Process(ctx context.Context, companyID int64, actor string, req GuarantorChangeRequest) (*GuarantorChangeResult, error)
}

// SettingsUsecase is the Super-Admin CRUD surface over the rule store.
type SettingsUsecase interface {
	ListCancellationSettings(ctx context.Context, companyID int64) ([]CancellationSetting, error)
	CreateCancellationSetting(ctx context.Context, setting *CancellationSetting) (*CancellationSetting, error)
	UpdateCancellationSetting(ctx context.Context, setting *CancellationSetting) (*CancellationSetting, error)
	GetLawyerService(ctx context.Context, companyID int64) (*LawyerServiceSetting, error)
	PutLawyerService(ctx context.Context, setting *LawyerServiceSetting) (*LawyerServiceSetting, error)
}
