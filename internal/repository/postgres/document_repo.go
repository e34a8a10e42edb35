package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"placement-backoffice/internal/domain"
)

type documentRepo struct {
	db *pgxpool.Pool
}

// NewDocumentRepository creates a new document checklist repository
func NewDocumentRepository(db *pgxpool.Pool) domain.DocumentRepository {
	return &documentRepo{db: db}
}

// ListByApplication retrieves the document checklist for one application
func (r *documentRepo) ListByApplication(ctx context.Context, applicationID int64) ([]domain.DocumentChecklistItem, error) {
	query := `
		SELECT id, application_id, name, stage, status, updated_at
		FROM document_checklist_items
		WHERE application_id = $1
		ORDER BY id`

	rows, err := queryEngine(ctx, r.db).Query(ctx, query, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.DocumentChecklistItem
	for rows.Next() {
		var item domain.DocumentChecklistItem
		if err := rows.Scan(&item.ID, &item.ApplicationID, &item.Name, &item.Stage, &item.Status, &item.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ListTemplates retrieves the company's checklist templates
func (r *documentRepo) ListTemplates(ctx context.Context, companyID int64) ([]domain.DocumentTemplate, error) {
	query := `
		SELECT id, company_id, name, stage
		FROM document_templates
		WHERE company_id = $1
		ORDER BY id`

	rows, err := queryEngine(ctx, r.db).Query(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []domain.DocumentTemplate
	for rows.Next() {
		var t domain.DocumentTemplate
		if err := rows.Scan(&t.ID, &t.CompanyID, &t.Name, &t.Stage); err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

// CreateForApplication seeds a fresh checklist from templates
func (r *documentRepo) CreateForApplication(ctx context.Context, applicationID int64, templates []domain.DocumentTemplate) error {
	query := `
		INSERT INTO document_checklist_items (application_id, name, stage, status, updated_at)
		VALUES ($1, $2, $3, $4, $5)`

	now := time.Now()
	for _, t := range templates {
		if _, err := queryEngine(ctx, r.db).Exec(ctx, query, applicationID, t.Name, t.Stage, domain.DocumentStatusPending, now); err != nil {
			return err
		}
	}
	return nil
}
