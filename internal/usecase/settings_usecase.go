package usecase

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"placement-backoffice/internal/domain"
	"placement-backoffice/pkg/apperror"
)

type settingsUsecase struct {
	txm         domain.TxManager
	settingRepo domain.CancellationSettingRepository
	validate    *validator.Validate
}

// NewSettingsUsecase creates the business-rule store usecase
func NewSettingsUsecase(txm domain.TxManager, settingRepo domain.CancellationSettingRepository, validate *validator.Validate) domain.SettingsUsecase {
	return &settingsUsecase{txm: txm, settingRepo: settingRepo, validate: validate}
}

// settingInput mirrors the validated fields of a CancellationSetting.
// Negative or zero fees are legitimate configuration (a refund percentage of
// 0 is a real "no refund" policy); only the type name and the percentage
// upper bound are constrained.
type settingInput struct {
	CancellationType string `validate:"required,oneof=pre_arrival post_arrival_within_3_months post_arrival_after_3_months candidate_cancellation deportation"`
}

func (uc *settingsUsecase) validateSetting(setting *domain.CancellationSetting) error {
	in := settingInput{CancellationType: string(setting.CancellationType)}
	if err := uc.validate.Struct(in); err != nil {
		return apperror.BadRequest(err.Error())
	}
	if setting.RefundPercentage.GreaterThan(decimal.NewFromInt(100)) {
		return apperror.BadRequest("refund_percentage must not exceed 100")
	}
	return nil
}

func (uc *settingsUsecase) ListCancellationSettings(ctx context.Context, companyID int64) ([]domain.CancellationSetting, error) {
	return uc.settingRepo.List(ctx, companyID)
}

// CreateCancellationSetting creates a new active setting for a type. Any
// previously active sibling for the same (company, type) is deactivated in
// the same transaction, preserving the one-active-row invariant.
func (uc *settingsUsecase) CreateCancellationSetting(ctx context.Context, setting *domain.CancellationSetting) (*domain.CancellationSetting, error) {
	if err := uc.validateSetting(setting); err != nil {
		return nil, err
	}
	setting.Active = true
	err := uc.txm.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := uc.settingRepo.DeactivateByType(ctx, setting.CompanyID, setting.CancellationType); err != nil {
			return err
		}
		return uc.settingRepo.Create(ctx, setting)
	})
	if err != nil {
		return nil, err
	}
	return setting, nil
}

// UpdateCancellationSetting updates a setting in place. Activating a setting
// deactivates its siblings first.
func (uc *settingsUsecase) UpdateCancellationSetting(ctx context.Context, setting *domain.CancellationSetting) (*domain.CancellationSetting, error) {
	if err := uc.validateSetting(setting); err != nil {
		return nil, err
	}
	err := uc.txm.WithinTransaction(ctx, func(ctx context.Context) error {
		if setting.Active {
			if err := uc.settingRepo.DeactivateByType(ctx, setting.CompanyID, setting.CancellationType); err != nil {
				return err
			}
		}
		return uc.settingRepo.Update(ctx, setting)
	})
	if err != nil {
		return nil, err
	}
	return setting, nil
}

// GetLawyerService returns the company's lawyer fee/charge pair, zero-valued
// when never configured.
func (uc *settingsUsecase) GetLawyerService(ctx context.Context, companyID int64) (*domain.LawyerServiceSetting, error) {
	setting, err := uc.settingRepo.GetLawyerService(ctx, companyID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &domain.LawyerServiceSetting{CompanyID: companyID}, nil
		}
		return nil, err
	}
	return setting, nil
}

func (uc *settingsUsecase) PutLawyerService(ctx context.Context, setting *domain.LawyerServiceSetting) (*domain.LawyerServiceSetting, error) {
	if setting.Fee.IsNegative() || setting.Charge.IsNegative() {
		return nil, apperror.BadRequest("lawyer service fee and charge must not be negative")
	}
	if err := uc.settingRepo.UpsertLawyerService(ctx, setting); err != nil {
		return nil, err
	}
	return setting, nil
}
