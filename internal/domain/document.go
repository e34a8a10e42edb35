package domain

import (
	"context"
	"time"
)

// Document checklist item states. SUBMITTED and RECEIVED both count as
// complete for stage gating.
const (
	DocumentStatusPending   = "PENDING"
	DocumentStatusSubmitted = "SUBMITTED"
	DocumentStatusReceived  = "RECEIVED"
)

// DocumentChecklistItem is one required office/client document on an
// application, tied to the workflow stage it must be complete for.
type DocumentChecklistItem struct {
	ID            int64             `json:"id"`
	ApplicationID int64             `json:"application_id"`
	Name          string            `json:"name"`
	Stage         ApplicationStatus `json:"stage"`
	Status        string            `json:"status"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// IsComplete reports whether the document no longer blocks a forward move.
func (d DocumentChecklistItem) IsComplete() bool {
	return d.Status == DocumentStatusSubmitted || d.Status == DocumentStatusReceived
}

// DocumentTemplate seeds the checklist of a newly created application.
type DocumentTemplate struct {
	ID        int64             `json:"id"`
	CompanyID int64             `json:"company_id"`
	Name      string            `json:"name"`
	Stage     ApplicationStatus `json:"stage"`
}

// DocumentRepository defines data access for checklists and their templates.
type DocumentRepository interface {
	ListByApplication(ctx context.Context, applicationID int64) ([]DocumentChecklistItem, error)
	ListTemplates(ctx context.Context, companyID int64) ([]DocumentTemplate, error)
	CreateForApplication(ctx context.Context, applicationID int64, templates []DocumentTemplate) error
}
