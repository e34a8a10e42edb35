package usecase

import (
	"context"
	"fmt"
	"time"

	"placement-backoffice/internal/domain"
)

// guarantorChangeUsecase is a specialization of the cancellation machinery:
// a guarantor change is a cancellation whose refund flows on to the new
// guarantor as a credit, followed by a replacement application.
type guarantorChangeUsecase struct {
	*cancellationUsecase
}

// NewGuarantorChangeUsecase creates the client-transfer usecase
func NewGuarantorChangeUsecase(
	txm domain.TxManager,
	appRepo domain.ApplicationRepository,
	candidateRepo domain.CandidateRepository,
	paymentRepo domain.PaymentRepository,
	settingRepo domain.CancellationSettingRepository,
	adjustmentRepo domain.AdjustmentRepository,
	eventRepo domain.LifecycleEventRepository,
	docRepo domain.DocumentRepository,
) domain.GuarantorChangeUsecase {
	return &guarantorChangeUsecase{&cancellationUsecase{
		txm:            txm,
		appRepo:        appRepo,
		candidateRepo:  candidateRepo,
		paymentRepo:    paymentRepo,
		settingRepo:    settingRepo,
		adjustmentRepo: adjustmentRepo,
		eventRepo:      eventRepo,
		docRepo:        docRepo,
		now:            time.Now,
	}}
}

// CalculateRefund estimates the transfer credit. The cancellation type is
// inferred from the application's current status, as it will be at commit.
func (uc *guarantorChangeUsecase) CalculateRefund(ctx context.Context, companyID, applicationID int64, flags domain.CandidateFlags, overrides domain.RefundOverrides) (*domain.RefundCalculation, error) {
	app, err := uc.appRepo.GetByID(ctx, companyID, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status.IsTerminal() {
		return nil, &domain.IllegalCancellationError{Status: app.Status}
	}
	inferred := availableCancellationTypes(app, uc.now())[0]

	payments, err := uc.paymentRepo.ListByApplication(ctx, companyID, app.ID)
	if err != nil {
		return nil, err
	}
	rules, err := uc.activeOrZeroSetting(ctx, companyID, inferred)
	if err != nil {
		return nil, err
	}
	return ComputeRefund(payments, RefundContext{
		CancellationType: inferred,
		Flags:            flags,
		ArrivalDate:      app.ExactArrivalDate,
		Now:              uc.now(),
	}, *rules, overrides)
}

// Process transfers a candidate to a new client: cancels the original
// application with the transfer disposition, then creates a replacement
// application bound to the new client, all in one transaction.
func (uc *guarantorChangeUsecase) Process(ctx context.Context, companyID int64, actor string, req domain.GuarantorChangeRequest) (*domain.GuarantorChangeResult, error) {
	var result *domain.GuarantorChangeResult
	err := uc.txm.WithinTransaction(ctx, func(ctx context.Context) error {
		app, err := uc.appRepo.GetByIDForUpdate(ctx, companyID, req.ApplicationID)
		if err != nil {
			return err
		}
		if app.ClientID == req.ToClientID {
			return domain.ErrSameClientTransfer
		}
		if app.Status.IsTerminal() {
			return &domain.IllegalCancellationError{Status: app.Status}
		}
		inferred := availableCancellationTypes(app, uc.now())[0]

		cancelled, res, err := uc.cancelLocked(ctx, companyID, actor, domain.CancelRequest{
			ApplicationID:    req.ApplicationID,
			CancellationType: inferred,
			Reason:           req.Reason,
			Flags:            req.Flags,
			NextAction:       domain.NextActionMoveToClient,
			ToClientID:       &req.ToClientID,
			Overrides:        req.Overrides,
			Notes:            req.Notes,
		}, true)
		if err != nil {
			return err
		}

		newApp, err := uc.createTransferApplication(ctx, companyID, actor, cancelled, req.ToClientID, res.Refund, req.Notes)
		if err != nil {
			return err
		}

		result = &domain.GuarantorChangeResult{
			CancelledApplicationID: cancelled.ID,
			NewApplicationID:       newApp.ID,
			Refund:                 res.Refund,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// createTransferApplication creates the replacement application for a
// guarantor change: same candidate, new client, workflow reset to the start,
// checklist seeded from the company's document templates. A client_change
// event on the new application cross-references the cancelled one and
// carries the credit.
func (uc *cancellationUsecase) createTransferApplication(ctx context.Context, companyID int64, actor string, oldApp *domain.Application, toClientID int64, refund *domain.RefundCalculation, notes string) (*domain.Application, error) {
	fromClient := oldApp.ClientID
	newApp := &domain.Application{
		CompanyID:    companyID,
		ClientID:     toClientID,
		CandidateID:  oldApp.CandidateID,
		Status:       domain.StatusPendingMOL,
		Type:         domain.ApplicationTypeGuarantorChange,
		FromClientID: &fromClient,
		AgreedFee:    oldApp.AgreedFee,
		Currency:     oldApp.Currency,
	}
	if err := uc.appRepo.Create(ctx, newApp); err != nil {
		return nil, err
	}

	templates, err := uc.docRepo.ListTemplates(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if len(templates) > 0 {
		if err := uc.docRepo.CreateForApplication(ctx, newApp.ID, templates); err != nil {
			return nil, err
		}
	}

	currency := refund.Currency
	if currency == "" {
		currency = oldApp.Currency
	}
	toStatus := newApp.Status
	event := &domain.LifecycleEvent{
		CompanyID:     companyID,
		ApplicationID: newApp.ID,
		Action:        domain.ActionClientChange,
		ToStatus:      &toStatus,
		FromClientID:  &fromClient,
		ToClientID:    &toClientID,
		FinancialImpact: &domain.FinancialImpact{
			Type:        domain.AdjustmentTypeCredit,
			Amount:      refund.FinalRefund,
			Currency:    currency,
			Description: fmt.Sprintf("credit carried from application %d", oldApp.ID),
		},
		Notes:       notes,
		PerformedBy: actor,
		PerformedAt: uc.now(),
	}
	if err := uc.eventRepo.Append(ctx, event); err != nil {
		return nil, err
	}
	return newApp, nil
}
