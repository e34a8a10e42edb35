package usecase

import (
	"context"
	"errors"
	"time"

	"placement-backoffice/internal/domain"
)

type cancellationUsecase struct {
	txm            domain.TxManager
	appRepo        domain.ApplicationRepository
	candidateRepo  domain.CandidateRepository
	paymentRepo    domain.PaymentRepository
	settingRepo    domain.CancellationSettingRepository
	adjustmentRepo domain.AdjustmentRepository
	eventRepo      domain.LifecycleEventRepository
	docRepo        domain.DocumentRepository
	now            func() time.Time
}

// NewCancellationUsecase creates the cancellation workflow usecase
func NewCancellationUsecase(
	txm domain.TxManager,
	appRepo domain.ApplicationRepository,
	candidateRepo domain.CandidateRepository,
	paymentRepo domain.PaymentRepository,
	settingRepo domain.CancellationSettingRepository,
	adjustmentRepo domain.AdjustmentRepository,
	eventRepo domain.LifecycleEventRepository,
	docRepo domain.DocumentRepository,
) domain.CancellationUsecase {
	return &cancellationUsecase{
		txm:            txm,
		appRepo:        appRepo,
		candidateRepo:  candidateRepo,
		paymentRepo:    paymentRepo,
		settingRepo:    settingRepo,
		adjustmentRepo: adjustmentRepo,
		eventRepo:      eventRepo,
		docRepo:        docRepo,
		now:            time.Now,
	}
}

// Cancel runs the full cancellation fan-out inside one transaction: status
// transition, candidate disposition, financial adjustment, lifecycle event,
// and (for a client transfer) the replacement application. Either everything
// commits or nothing does.
func (uc *cancellationUsecase) Cancel(ctx context.Context, companyID int64, actor string, req domain.CancelRequest) (*domain.CancelResult, error) {
	var result *domain.CancelResult
	err := uc.txm.WithinTransaction(ctx, func(ctx context.Context) error {
		inFlow := req.NextAction == domain.NextActionMoveToClient && req.ToClientID != nil
		app, res, err := uc.cancelLocked(ctx, companyID, actor, req, inFlow)
		if err != nil {
			return err
		}
		if inFlow {
			if _, err := uc.createTransferApplication(ctx, companyID, actor, app, *req.ToClientID, res.Refund, req.Notes); err != nil {
				return err
			}
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// cancelLocked performs steps 1-4 and 6 of the cancellation under the
// application's row lock. Callers must already be inside a transaction.
// When inFlow is true the refund is booked as a credit to the incoming
// guarantor instead of a cash-out.
func (uc *cancellationUsecase) cancelLocked(ctx context.Context, companyID int64, actor string, req domain.CancelRequest, inFlow bool) (*domain.Application, *domain.CancelResult, error) {
	app, err := uc.appRepo.GetByIDForUpdate(ctx, companyID, req.ApplicationID)
	if err != nil {
		return nil, nil, err
	}

	// Revalidate against the current status; a concurrent caller that lost
	// the race observes the terminal status here and fails fast.
	if app.Status.IsTerminal() {
		return nil, nil, &domain.IllegalCancellationError{Status: app.Status}
	}
	available := availableCancellationTypes(app, uc.now())
	if !typeIsAvailable(req.CancellationType, available) {
		return nil, nil, &domain.IllegalCancellationError{Status: app.Status, Type: req.CancellationType}
	}
	if inFlow && *req.ToClientID == app.ClientID {
		return nil, nil, domain.ErrSameClientTransfer
	}

	flags := uc.deriveFlags(app, req.Flags)

	rules, err := uc.rulesFor(ctx, companyID, req)
	if err != nil {
		return nil, nil, err
	}

	payments, err := uc.paymentRepo.ListByApplication(ctx, companyID, req.ApplicationID)
	if err != nil {
		return nil, nil, err
	}
	refund, err := ComputeRefund(payments, RefundContext{
		CancellationType: req.CancellationType,
		Flags:            flags,
		ArrivalDate:      app.ExactArrivalDate,
		Now:              uc.now(),
	}, *rules, req.Overrides)
	if err != nil {
		return nil, nil, err
	}

	candidate, err := uc.candidateRepo.GetByID(ctx, companyID, app.CandidateID)
	if err != nil {
		return nil, nil, err
	}
	candidateBefore := candidate.Status
	candidateAfter := uc.candidateDisposition(app, candidate, req.NextAction)

	statusBefore := app.Status
	if err := CancelInto(app, req.CancellationType.TerminalStatus()); err != nil {
		return nil, nil, err
	}
	if err := uc.appRepo.Update(ctx, app); err != nil {
		return nil, nil, err
	}
	if candidateAfter != candidateBefore {
		if err := uc.candidateRepo.UpdateStatus(ctx, companyID, candidate.ID, candidateAfter); err != nil {
			return nil, nil, err
		}
	}

	impactType := domain.AdjustmentTypeRefund
	if inFlow {
		impactType = domain.AdjustmentTypeCredit
	}
	currency := refund.Currency
	if currency == "" {
		currency = app.Currency
	}
	if refund.FinalRefund.IsPositive() {
		adj := &domain.LedgerAdjustment{
			CompanyID:     companyID,
			ApplicationID: app.ID,
			Type:          impactType,
			Amount:        refund.FinalRefund,
			Currency:      currency,
			Description:   "cancellation: " + req.Reason,
		}
		if err := uc.adjustmentRepo.Create(ctx, adj); err != nil {
			return nil, nil, err
		}
	}

	event := &domain.LifecycleEvent{
		CompanyID:             companyID,
		ApplicationID:         app.ID,
		Action:                domain.ActionCancellation,
		FromStatus:            &statusBefore,
		ToStatus:              &app.Status,
		CandidateStatusBefore: &candidateBefore,
		CandidateStatusAfter:  &candidateAfter,
		FinancialImpact: &domain.FinancialImpact{
			Type:        impactType,
			Amount:      refund.FinalRefund,
			Currency:    currency,
			Description: req.Reason,
		},
		Notes:       req.Notes,
		PerformedBy: actor,
		PerformedAt: uc.now(),
	}
	if err := uc.eventRepo.Append(ctx, event); err != nil {
		return nil, nil, err
	}

	return app, &domain.CancelResult{
		NewStatus:        app.Status,
		Refund:           refund,
		LifecycleEventID: event.ID,
	}, nil
}

// rulesFor selects the rule set for the commit. Deportation uses its own,
// more punitive template and fails closed when that template is absent.
func (uc *cancellationUsecase) rulesFor(ctx context.Context, companyID int64, req domain.CancelRequest) (*domain.CancellationSetting, error) {
	if req.NextAction == domain.NextActionDeport {
		setting, err := uc.settingRepo.GetActive(ctx, companyID, domain.SettingDeportation)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.ErrMissingDeportationTemplate
			}
			return nil, err
		}
		return setting, nil
	}
	return uc.activeOrZeroSetting(ctx, companyID, req.CancellationType)
}

// deriveFlags treats client-supplied flags as hints and re-derives what the
// application state already proves: a candidate who never arrived is abroad.
func (uc *cancellationUsecase) deriveFlags(app *domain.Application, flags domain.CandidateFlags) domain.CandidateFlags {
	if statusRank[app.Status] < statusRank[domain.StatusWorkerArrived] {
		flags.CandidateInLebanon = false
		flags.CandidateDeparted = false
	} else if flags.CandidateDeparted {
		flags.CandidateInLebanon = false
	}
	return flags
}

// candidateDisposition maps the chosen next action to the candidate's new
// availability state. Next action is only honored post-arrival.
func (uc *cancellationUsecase) candidateDisposition(app *domain.Application, candidate *domain.Candidate, next domain.NextAction) domain.CandidateStatus {
	if statusRank[app.Status] < statusRank[domain.StatusWorkerArrived] {
		return domain.CandidateAvailableAbroad
	}
	switch next {
	case domain.NextActionMoveToClient:
		// Stays reserved pending the new application.
		if candidate.Status == domain.CandidateInProcess {
			return domain.CandidateInProcess
		}
		return domain.CandidateReserved
	case domain.NextActionDeport:
		return domain.CandidateDeported
	case domain.NextActionKeepWaiting:
		return domain.CandidateAvailableInLebanon
	default:
		return domain.CandidateAvailableAbroad
	}
}
