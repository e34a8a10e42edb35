package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ApplicationStatus is a node in the placement workflow graph.
type ApplicationStatus string

const (
	StatusPendingMOL                ApplicationStatus = "PENDING_MOL"
	StatusMOLAuthReceived           ApplicationStatus = "MOL_AUTH_RECEIVED"
	StatusVisaProcessing            ApplicationStatus = "VISA_PROCESSING"
	StatusVisaReceived              ApplicationStatus = "VISA_RECEIVED"
	StatusWorkerArrived             ApplicationStatus = "WORKER_ARRIVED"
	StatusLabourPermitProcessing    ApplicationStatus = "LABOUR_PERMIT_PROCESSING"
	StatusResidencyPermitProcessing ApplicationStatus = "RESIDENCY_PERMIT_PROCESSING"
	StatusActiveEmployment          ApplicationStatus = "ACTIVE_EMPLOYMENT"
	StatusRenewalPending            ApplicationStatus = "RENEWAL_PENDING"
	StatusContractEnded             ApplicationStatus = "CONTRACT_ENDED"
	StatusCancelledPreArrival       ApplicationStatus = "CANCELLED_PRE_ARRIVAL"
	StatusCancelledPostArrival      ApplicationStatus = "CANCELLED_POST_ARRIVAL"
	StatusCancelledCandidate        ApplicationStatus = "CANCELLED_CANDIDATE"
)

// Application type constants
const (
	ApplicationTypeNewCandidate    = "NEW_CANDIDATE"
	ApplicationTypeGuarantorChange = "GUARANTOR_CHANGE"
)

// IsTerminal reports whether no further transition is accepted from s.
func (s ApplicationStatus) IsTerminal() bool {
	switch s {
	case StatusContractEnded, StatusCancelledPreArrival, StatusCancelledPostArrival, StatusCancelledCandidate:
		return true
	}
	return false
}

// IsCancelled reports whether s is one of the cancellation terminals.
func (s ApplicationStatus) IsCancelled() bool {
	switch s {
	case StatusCancelledPreArrival, StatusCancelledPostArrival, StatusCancelledCandidate:
		return true
	}
	return false
}

// Application represents one candidate-to-client placement lifecycle.
type Application struct {
	ID                  int64             `json:"id"`
	CompanyID           int64             `json:"company_id"`
	ClientID            int64             `json:"client_id"`
	CandidateID         int64             `json:"candidate_id"`
	Status              ApplicationStatus `json:"status"`
	Type                string            `json:"type"` // NEW_CANDIDATE | GUARANTOR_CHANGE
	FromClientID        *int64            `json:"from_client_id,omitempty"`
	AgreedFee           decimal.Decimal   `json:"agreed_fee"`
	Currency            string            `json:"currency"`
	ExactArrivalDate    *time.Time        `json:"exact_arrival_date,omitempty"`
	LaborPermitDate     *time.Time        `json:"labor_permit_date,omitempty"`
	ResidencyPermitDate *time.Time        `json:"residency_permit_date,omitempty"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`

	// Joined data for detail responses
	ClientName    *string `json:"client_name,omitempty"`
	CandidateName *string `json:"candidate_name,omitempty"`
}

// StatusDates carries the document-sourced dates that certain forward
// transitions require.
type StatusDates struct {
	ExactArrivalDate    *time.Time `json:"exact_arrival_date,omitempty"`
	LaborPermitDate     *time.Time `json:"labor_permit_date,omitempty"`
	ResidencyPermitDate *time.Time `json:"residency_permit_date,omitempty"`
}

// ApplicationDetail is the back-office detail view of one application.
type ApplicationDetail struct {
	Application *Application            `json:"application"`
	Payments    []Payment               `json:"payments"`
	Costs       []Cost                  `json:"costs"`
	Checklist   []DocumentChecklistItem `json:"checklist,omitempty"`
}

// ApplicationRepository defines data access methods for applications
type ApplicationRepository interface {
	Create(ctx context.Context, app *Application) error
	GetByID(ctx context.Context, companyID, id int64) (*Application, error)
	// GetByIDForUpdate locks the application row for the duration of the
	// enclosing transaction. Callers must be inside TxManager.WithinTransaction.
	GetByIDForUpdate(ctx context.Context, companyID, id int64) (*Application, error)
	Update(ctx context.Context, app *Application) error
}

// ApplicationUsecase defines business logic for the application lifecycle
type ApplicationUsecase interface {
	GetDetail(ctx context.Context, companyID, id int64) (*ApplicationDetail, error)
	AdvanceStatus(ctx context.Context, companyID int64, actor string, id int64, target ApplicationStatus, dates StatusDates) (*Application, error)
	GetLifecycleHistory(ctx context.Context, companyID, id int64) ([]LifecycleEvent, error)
}

// TxManager runs fn inside a single database transaction. The transaction is
// carried in the returned context; repositories pick it up transparently.
type TxManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
