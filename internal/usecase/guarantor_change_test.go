package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"placement-backoffice/internal/domain"
	"placement-backoffice/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newGuarantorUC() (domain.GuarantorChangeUsecase, *cancellationMocks) {
	m := &cancellationMocks{
		appRepo:        new(MockApplicationRepo),
		candidateRepo:  new(MockCandidateRepo),
		paymentRepo:    new(MockPaymentRepo),
		settingRepo:    new(MockSettingRepo),
		adjustmentRepo: new(MockAdjustmentRepo),
		eventRepo:      new(MockEventRepo),
		docRepo:        new(MockDocumentRepo),
	}
	uc := usecase.NewGuarantorChangeUsecase(passthroughTxManager{},
		m.appRepo, m.candidateRepo, m.paymentRepo, m.settingRepo,
		m.adjustmentRepo, m.eventRepo, m.docRepo)
	return uc, m
}

func TestGuarantorChangeCalculateRefund(t *testing.T) {
	t.Run("Should infer the cancellation type from the current status", func(t *testing.T) {
		uc, m := newGuarantorUC()
		m.appRepo.On("GetByID", mock.Anything, testCompanyID, testAppID).
			Return(arrivedApp(45*24*time.Hour), nil)
		m.paymentRepo.On("ListByApplication", mock.Anything, testCompanyID, testAppID).Return(testPayments(), nil)
		m.settingRepo.On("GetActive", mock.Anything, testCompanyID, domain.CancelPostArrivalWithin3).
			Return(&domain.CancellationSetting{
				CancellationType:  domain.CancelPostArrivalWithin3,
				PenaltyFee:        dec(100),
				RefundPercentage:  dec(50),
				MonthlyServiceFee: dec(50),
				Active:            true,
			}, nil)

		calc, err := uc.CalculateRefund(context.Background(), testCompanyID, testAppID,
			domain.CandidateFlags{CandidateInLebanon: true}, domain.RefundOverrides{})
		assert.NoError(t, err)
		// 1000 * 50% - 100 - 1*50 = 350
		assert.True(t, calc.FinalRefund.Equal(dec(350)), "final = %s", calc.FinalRefund)
	})

	t.Run("Should refuse an estimate on a terminal application", func(t *testing.T) {
		uc, m := newGuarantorUC()
		app := pendingApp()
		app.Status = domain.StatusCancelledPostArrival
		m.appRepo.On("GetByID", mock.Anything, testCompanyID, testAppID).Return(app, nil)

		_, err := uc.CalculateRefund(context.Background(), testCompanyID, testAppID,
			domain.CandidateFlags{}, domain.RefundOverrides{})

		var illegal *domain.IllegalCancellationError
		assert.True(t, errors.As(err, &illegal))
	})
}

func TestGuarantorChangeProcess(t *testing.T) {
	t.Run("Should reject a transfer to the same client without touching anything", func(t *testing.T) {
		uc, m := newGuarantorUC()
		app := arrivedApp(30 * 24 * time.Hour) // ClientID 5
		m.appRepo.On("GetByIDForUpdate", mock.Anything, testCompanyID, testAppID).Return(app, nil)

		_, err := uc.Process(context.Background(), testCompanyID, "admin", domain.GuarantorChangeRequest{
			ApplicationID: testAppID,
			ToClientID:    5,
			Reason:        "paperwork mixup",
		})

		assert.ErrorIs(t, err, domain.ErrSameClientTransfer)
		assert.Equal(t, domain.StatusWorkerArrived, app.Status)
		m.appRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		m.appRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		m.eventRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("Should cancel the old application and create the replacement with the credit", func(t *testing.T) {
		uc, m := newGuarantorUC()
		oldApp := arrivedApp(30 * 24 * time.Hour)
		m.appRepo.On("GetByIDForUpdate", mock.Anything, testCompanyID, testAppID).Return(oldApp, nil)
		m.settingRepo.On("GetActive", mock.Anything, testCompanyID, domain.CancelPostArrivalWithin3).
			Return(&domain.CancellationSetting{
				CancellationType: domain.CancelPostArrivalWithin3,
				PenaltyFee:       dec(100),
				RefundPercentage: dec(50),
				Active:           true,
			}, nil)
		m.paymentRepo.On("ListByApplication", mock.Anything, testCompanyID, testAppID).Return(testPayments(), nil)
		// Candidate stays reserved through the handover
		m.candidateRepo.On("GetByID", mock.Anything, testCompanyID, testCandidateID).
			Return(&domain.Candidate{ID: testCandidateID, Status: domain.CandidateInProcess}, nil)
		m.appRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

		m.adjustmentRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.LedgerAdjustment")).Return(nil).Run(func(args mock.Arguments) {
			adj := args.Get(1).(*domain.LedgerAdjustment)
			// Money flows on to the new guarantor, not out the door
			assert.Equal(t, domain.AdjustmentTypeCredit, adj.Type)
			assert.True(t, adj.Amount.Equal(dec(400)))
		})
		m.appRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Application")).Return(nil).Run(func(args mock.Arguments) {
			newApp := args.Get(1).(*domain.Application)
			newApp.ID = 99
			assert.Equal(t, int64(6), newApp.ClientID)
			assert.Equal(t, testCandidateID, newApp.CandidateID)
			assert.Equal(t, domain.StatusPendingMOL, newApp.Status)
			assert.Equal(t, domain.ApplicationTypeGuarantorChange, newApp.Type)
			assert.Equal(t, int64(5), *newApp.FromClientID)
			assert.Equal(t, "USD", newApp.Currency)
		})
		templates := []domain.DocumentTemplate{{ID: 1, Name: "Contract", Stage: domain.StatusPendingMOL}}
		m.docRepo.On("ListTemplates", mock.Anything, testCompanyID).Return(templates, nil)
		m.docRepo.On("CreateForApplication", mock.Anything, int64(99), templates).Return(nil)

		var events []*domain.LifecycleEvent
		m.eventRepo.On("Append", mock.Anything, mock.AnythingOfType("*domain.LifecycleEvent")).Return(nil).Run(func(args mock.Arguments) {
			events = append(events, args.Get(1).(*domain.LifecycleEvent))
		})

		result, err := uc.Process(context.Background(), testCompanyID, "admin", domain.GuarantorChangeRequest{
			ApplicationID: testAppID,
			ToClientID:    6,
			Reason:        "client relocation",
		})
		assert.NoError(t, err)
		assert.Equal(t, testAppID, result.CancelledApplicationID)
		assert.Equal(t, int64(99), result.NewApplicationID)
		assert.True(t, result.Refund.FinalRefund.Equal(dec(400)))

		// One cancellation event on the old application, one client_change on the new
		assert.Len(t, events, 2)
		assert.Equal(t, domain.ActionCancellation, events[0].Action)
		assert.Equal(t, testAppID, events[0].ApplicationID)
		assert.Equal(t, domain.AdjustmentTypeCredit, events[0].FinancialImpact.Type)
		assert.Equal(t, domain.ActionClientChange, events[1].Action)
		assert.Equal(t, int64(99), events[1].ApplicationID)
		assert.Equal(t, int64(5), *events[1].FromClientID)
		assert.Equal(t, int64(6), *events[1].ToClientID)
		assert.True(t, events[1].FinancialImpact.Amount.Equal(dec(400)))

		// IN_PROCESS candidate keeps its status through a transfer
		m.candidateRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should refuse to transfer a terminal application", func(t *testing.T) {
		uc, m := newGuarantorUC()
		app := pendingApp()
		app.Status = domain.StatusContractEnded
		m.appRepo.On("GetByIDForUpdate", mock.Anything, testCompanyID, testAppID).Return(app, nil)

		_, err := uc.Process(context.Background(), testCompanyID, "admin", domain.GuarantorChangeRequest{
			ApplicationID: testAppID,
			ToClientID:    6,
			Reason:        "late request",
		})

		var illegal *domain.IllegalCancellationError
		assert.True(t, errors.As(err, &illegal))
		m.appRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}
