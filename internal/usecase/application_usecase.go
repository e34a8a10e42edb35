package usecase

import (
	"context"
	"time"

	"placement-backoffice/internal/domain"
)

type applicationUsecase struct {
	txm         domain.TxManager
	appRepo     domain.ApplicationRepository
	paymentRepo domain.PaymentRepository
	docRepo     domain.DocumentRepository
	eventRepo   domain.LifecycleEventRepository
	now         func() time.Time
}

// NewApplicationUsecase creates the application lifecycle usecase
func NewApplicationUsecase(
	txm domain.TxManager,
	appRepo domain.ApplicationRepository,
	paymentRepo domain.PaymentRepository,
	docRepo domain.DocumentRepository,
	eventRepo domain.LifecycleEventRepository,
) domain.ApplicationUsecase {
	return &applicationUsecase{
		txm:         txm,
		appRepo:     appRepo,
		paymentRepo: paymentRepo,
		docRepo:     docRepo,
		eventRepo:   eventRepo,
		now:         time.Now,
	}
}

// GetDetail returns the back-office detail view: application, payment and
// cost ledgers, document checklist.
func (uc *applicationUsecase) GetDetail(ctx context.Context, companyID, id int64) (*domain.ApplicationDetail, error) {
	app, err := uc.appRepo.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	payments, err := uc.paymentRepo.ListByApplication(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	costs, err := uc.paymentRepo.ListCostsByApplication(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	checklist, err := uc.docRepo.ListByApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	return &domain.ApplicationDetail{
		Application: app,
		Payments:    payments,
		Costs:       costs,
		Checklist:   checklist,
	}, nil
}

// AdvanceStatus moves an application one step forward in the workflow and
// appends the matching lifecycle event, atomically.
func (uc *applicationUsecase) AdvanceStatus(ctx context.Context, companyID int64, actor string, id int64, target domain.ApplicationStatus, dates domain.StatusDates) (*domain.Application, error) {
	var updated *domain.Application
	err := uc.txm.WithinTransaction(ctx, func(ctx context.Context) error {
		app, err := uc.appRepo.GetByIDForUpdate(ctx, companyID, id)
		if err != nil {
			return err
		}
		docs, err := uc.docRepo.ListByApplication(ctx, id)
		if err != nil {
			return err
		}

		statusBefore := app.Status
		if err := AdvanceApplication(app, target, dates, docs); err != nil {
			return err
		}
		if err := uc.appRepo.Update(ctx, app); err != nil {
			return err
		}

		event := &domain.LifecycleEvent{
			CompanyID:     companyID,
			ApplicationID: app.ID,
			Action:        domain.ActionStatusChange,
			FromStatus:    &statusBefore,
			ToStatus:      &app.Status,
			PerformedBy:   actor,
			PerformedAt:   uc.now(),
		}
		if err := uc.eventRepo.Append(ctx, event); err != nil {
			return err
		}
		updated = app
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// GetLifecycleHistory returns the ordered audit trail for one application.
func (uc *applicationUsecase) GetLifecycleHistory(ctx context.Context, companyID, id int64) ([]domain.LifecycleEvent, error) {
	if _, err := uc.appRepo.GetByID(ctx, companyID, id); err != nil {
		return nil, err
	}
	return uc.eventRepo.ListByApplication(ctx, companyID, id)
}
