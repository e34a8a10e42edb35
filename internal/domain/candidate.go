package domain

import (
	"context"
	"time"
)

// CandidateStatus tracks a candidate's availability. It is mutated only as a
// side effect of application transitions or explicit office action.
type CandidateStatus string

const (
	CandidateAvailableAbroad    CandidateStatus = "AVAILABLE_ABROAD"
	CandidateAvailableInLebanon CandidateStatus = "AVAILABLE_IN_LEBANON"
	CandidateReserved           CandidateStatus = "RESERVED"
	CandidateInProcess          CandidateStatus = "IN_PROCESS"
	CandidatePlaced             CandidateStatus = "PLACED"
	CandidateDeported           CandidateStatus = "DEPORTED"
)

// Candidate is the worker being placed with a client.
type Candidate struct {
	ID          int64           `json:"id"`
	CompanyID   int64           `json:"company_id"`
	FullName    string          `json:"full_name"`
	Nationality string          `json:"nationality"`
	Status      CandidateStatus `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CandidateRepository defines data access methods for candidates
type CandidateRepository interface {
	GetByID(ctx context.Context, companyID, id int64) (*Candidate, error)
	UpdateStatus(ctx context.Context, companyID, id int64, status CandidateStatus) error
}
