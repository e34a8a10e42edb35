package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"placement-backoffice/internal/domain"
)

// availableCancellationTypes derives the legal cancellation types for the
// application's current status. The stage-specific type comes first (it is
// the default for estimates); candidate cancellation is available at any
// non-terminal stage.
func availableCancellationTypes(app *domain.Application, now time.Time) []domain.CancellationType {
	if app.Status.IsTerminal() {
		return nil
	}
	if statusRank[app.Status] < statusRank[domain.StatusWorkerArrived] {
		return []domain.CancellationType{domain.CancelPreArrival, domain.CancelByCandidate}
	}

	// Post-arrival: threshold is exactly 3 calendar months from arrival.
	stageType := domain.CancelPostArrivalAfter3
	if app.ExactArrivalDate != nil && now.Before(app.ExactArrivalDate.AddDate(0, 3, 0)) {
		stageType = domain.CancelPostArrivalWithin3
	}
	return []domain.CancellationType{stageType, domain.CancelByCandidate}
}

func typeIsAvailable(t domain.CancellationType, available []domain.CancellationType) bool {
	for _, a := range available {
		if a == t {
			return true
		}
	}
	return false
}

// GetOptions reports which cancellation paths are currently legal, advisory
// warnings, and an informational refund estimate for the default type. The
// binding calculation happens again at commit time.
func (uc *cancellationUsecase) GetOptions(ctx context.Context, companyID, applicationID int64, flags domain.CandidateFlags) (*domain.CancellationOptions, error) {
	app, err := uc.appRepo.GetByID(ctx, companyID, applicationID)
	if err != nil {
		return nil, err
	}

	opts := &domain.CancellationOptions{
		CanCancel:      !app.Status.IsTerminal(),
		AvailableTypes: []domain.CancellationType{},
		Warnings:       []string{},
	}
	if !opts.CanCancel {
		return opts, nil
	}
	opts.AvailableTypes = availableCancellationTypes(app, uc.now())

	if flags.CandidateInLebanon && flags.CandidateDeparted {
		opts.Warnings = append(opts.Warnings, "candidate_in_lebanon and candidate_departed are mutually exclusive; flags will be re-derived at commit time")
	}

	settings := map[domain.CancellationType]*domain.CancellationSetting{}
	for _, t := range opts.AvailableTypes {
		setting, err := uc.settingRepo.GetActive(ctx, companyID, t)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				opts.Warnings = append(opts.Warnings, fmt.Sprintf("no active refund policy configured for %s", t))
				continue
			}
			return nil, err
		}
		settings[t] = setting
	}

	// Informational estimate on the default (first) available type.
	defaultType := opts.AvailableTypes[0]
	rules, ok := settings[defaultType]
	if !ok {
		return opts, nil
	}
	payments, err := uc.paymentRepo.ListByApplication(ctx, companyID, applicationID)
	if err != nil {
		return nil, err
	}
	estimate, err := ComputeRefund(payments, RefundContext{
		CancellationType: defaultType,
		Flags:            flags,
		ArrivalDate:      app.ExactArrivalDate,
		Now:              uc.now(),
	}, *rules, domain.RefundOverrides{})
	if err != nil {
		var mixed *domain.MixedCurrencyError
		if errors.As(err, &mixed) {
			opts.Warnings = append(opts.Warnings, mixed.Error())
			return opts, nil
		}
		return nil, err
	}
	opts.RefundEstimate = estimate
	return opts, nil
}

// CalculateRefund is the what-if endpoint behind the cancellation dialog. It
// does not check type legality; the processor revalidates at commit time.
func (uc *cancellationUsecase) CalculateRefund(ctx context.Context, companyID, applicationID int64, cancellationType domain.CancellationType, flags domain.CandidateFlags, overrides domain.RefundOverrides) (*domain.RefundCalculation, error) {
	app, err := uc.appRepo.GetByID(ctx, companyID, applicationID)
	if err != nil {
		return nil, err
	}
	payments, err := uc.paymentRepo.ListByApplication(ctx, companyID, applicationID)
	if err != nil {
		return nil, err
	}
	rules, err := uc.activeOrZeroSetting(ctx, companyID, cancellationType)
	if err != nil {
		return nil, err
	}
	return ComputeRefund(payments, RefundContext{
		CancellationType: cancellationType,
		Flags:            flags,
		ArrivalDate:      app.ExactArrivalDate,
		Now:              uc.now(),
	}, *rules, overrides)
}

// activeOrZeroSetting falls back to an all-zero rule set when no active
// setting exists for the type: a missing policy means no refund, not an
// error. The options resolver surfaces the gap as a warning.
func (uc *cancellationUsecase) activeOrZeroSetting(ctx context.Context, companyID int64, t domain.CancellationType) (*domain.CancellationSetting, error) {
	setting, err := uc.settingRepo.GetActive(ctx, companyID, t)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &domain.CancellationSetting{CompanyID: companyID, CancellationType: t}, nil
		}
		return nil, err
	}
	return setting, nil
}
