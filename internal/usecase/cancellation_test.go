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

type cancellationMocks struct {
	appRepo        *MockApplicationRepo
	candidateRepo  *MockCandidateRepo
	paymentRepo    *MockPaymentRepo
	settingRepo    *MockSettingRepo
	adjustmentRepo *MockAdjustmentRepo
	eventRepo      *MockEventRepo
	docRepo        *MockDocumentRepo
}

func newCancellationUC() (domain.CancellationUsecase, *cancellationMocks) {
	m := &cancellationMocks{
		appRepo:        new(MockApplicationRepo),
		candidateRepo:  new(MockCandidateRepo),
		paymentRepo:    new(MockPaymentRepo),
		settingRepo:    new(MockSettingRepo),
		adjustmentRepo: new(MockAdjustmentRepo),
		eventRepo:      new(MockEventRepo),
		docRepo:        new(MockDocumentRepo),
	}
	uc := usecase.NewCancellationUsecase(passthroughTxManager{},
		m.appRepo, m.candidateRepo, m.paymentRepo, m.settingRepo,
		m.adjustmentRepo, m.eventRepo, m.docRepo)
	return uc, m
}

const (
	testCompanyID   int64 = 10
	testAppID       int64 = 1
	testCandidateID int64 = 7
)

func pendingApp() *domain.Application {
	return &domain.Application{
		ID:          testAppID,
		CompanyID:   testCompanyID,
		ClientID:    5,
		CandidateID: testCandidateID,
		Status:      domain.StatusPendingMOL,
		Type:        domain.ApplicationTypeNewCandidate,
		Currency:    "USD",
	}
}

func arrivedApp(arrivedAgo time.Duration) *domain.Application {
	app := pendingApp()
	app.Status = domain.StatusWorkerArrived
	arrival := time.Now().Add(-arrivedAgo)
	app.ExactArrivalDate = &arrival
	return app
}

func TestGetOptions(t *testing.T) {
	t.Run("Should offer pre-arrival and candidate types before arrival", func(t *testing.T) {
		uc, m := newCancellationUC()
		m.appRepo.On("GetByID", mock.Anything, testCompanyID, testAppID).Return(pendingApp(), nil)
		m.settingRepo.On("GetActive", mock.Anything, testCompanyID, domain.CancelPreArrival).
			Return(&domain.CancellationSetting{CancellationType: domain.CancelPreArrival, PenaltyFee: dec(100), RefundPercentage: dec(50), Active: true}, nil)
		m.settingRepo.On("GetActive", mock.Anything, testCompanyID, domain.CancelByCandidate).
			Return(nil, domain.ErrNotFound)
		m.paymentRepo.On("ListByApplication", mock.Anything, testCompanyID, testAppID).Return(testPayments(), nil)

		opts, err := uc.GetOptions(context.Background(), testCompanyID, testAppID, domain.CandidateFlags{})
		assert.NoError(t, err)
		assert.True(t, opts.CanCancel)
		assert.Equal(t, []domain.CancellationType{domain.CancelPreArrival, domain.CancelByCandidate}, opts.AvailableTypes)
		// Missing candidate_cancellation policy is a warning, not an error
		assert.Len(t, opts.Warnings, 1)
		assert.Contains(t, opts.Warnings[0], "candidate_cancellation")
		// Estimate uses the default (first) type
		assert.NotNil(t, opts.RefundEstimate)
		assert.True(t, opts.RefundEstimate.FinalRefund.Equal(dec(400)))
	})

	t.Run("Should offer within-3-months type while inside the window", func(t *testing.T) {
		uc, m := newCancellationUC()
		m.appRepo.On("GetByID", mock.Anything, testCompanyID, testAppID).
			Return(arrivedApp(45*24*time.Hour), nil)
		m.settingRepo.On("GetActive", mock.Anything, testCompanyID, mock.Anything).Return(nil, domain.ErrNotFound)

		opts, err := uc.GetOptions(context.Background(), testCompanyID, testAppID, domain.CandidateFlags{})
		assert.NoError(t, err)
		assert.Equal(t, domain.CancelPostArrivalWithin3, opts.AvailableTypes[0])
	})

	t.Run("Should offer after-3-months type once the window closes", func(t *testing.T) {
		uc, m := newCancellationUC()
		m.appRepo.On("GetByID", mock.Anything, testCompanyID, testAppID).
			Return(arrivedApp(4*30*24*time.Hour), nil)
		m.settingRepo.On("GetActive", mock.Anything, testCompanyID, mock.Anything).Return(nil, domain.ErrNotFound)

		opts, err := uc.GetOptions(context.Background(), testCompanyID, testAppID, domain.CandidateFlags{})
		assert.NoError(t, err)
		assert.Equal(t, domain.CancelPostArrivalAfter3, opts.AvailableTypes[0])
	})

	t.Run("Should report can_cancel=false for a terminal application", func(t *testing.T) {
		uc, m := newCancellationUC()
		app := pendingApp()
		app.Status = domain.StatusCancelledPreArrival
		m.appRepo.On("GetByID", mock.Anything, testCompanyID, testAppID).Return(app, nil)

		opts, err := uc.GetOptions(context.Background(), testCompanyID, testAppID, domain.CandidateFlags{})
		assert.NoError(t, err)
		assert.False(t, opts.CanCancel)
		assert.Empty(t, opts.AvailableTypes)
		assert.Nil(t, opts.RefundEstimate)
	})

	t.Run("Should warn on mutually exclusive candidate flags", func(t *testing.T) {
		uc, m := newCancellationUC()
		m.appRepo.On("GetByID", mock.Anything, testCompanyID, testAppID).Return(pendingApp(), nil)
		m.settingRepo.On("GetActive", mock.Anything, testCompanyID, mock.Anything).Return(nil, domain.ErrNotFound)

		opts, err := uc.GetOptions(context.Background(), testCompanyID, testAppID,
			domain.CandidateFlags{CandidateInLebanon: true, CandidateDeparted: true})
		assert.NoError(t, err)
		assert.Contains(t, opts.Warnings[0], "mutually exclusive")
	})

	t.Run("Should degrade a mixed-currency ledger to a warning", func(t *testing.T) {
		uc, m := newCancellationUC()
		m.appRepo.On("GetByID", mock.Anything, testCompanyID, testAppID).Return(pendingApp(), nil)
		m.settingRepo.On("GetActive", mock.Anything, testCompanyID, mock.Anything).
			Return(&domain.CancellationSetting{CancellationType: domain.CancelPreArrival, RefundPercentage: dec(50), Active: true}, nil)
		payments := testPayments()
		payments[1].Currency = "LBP"
		m.paymentRepo.On("ListByApplication", mock.Anything, testCompanyID, testAppID).Return(payments, nil)

		opts, err := uc.GetOptions(context.Background(), testCompanyID, testAppID, domain.CandidateFlags{})
		assert.NoError(t, err)
		assert.Nil(t, opts.RefundEstimate)
		assert.NotEmpty(t, opts.Warnings)
	})
}

func TestCalculateRefund(t *testing.T) {
	t.Run("Should fall back to a zero policy when none is configured", func(t *testing.T) {
		uc, m := newCancellationUC()
		m.appRepo.On("GetByID", mock.Anything, testCompanyID, testAppID).Return(pendingApp(), nil)
		m.paymentRepo.On("ListByApplication", mock.Anything, testCompanyID, testAppID).Return(testPayments(), nil)
		m.settingRepo.On("GetActive", mock.Anything, testCompanyID, domain.CancelPreArrival).Return(nil, domain.ErrNotFound)

		calc, err := uc.CalculateRefund(context.Background(), testCompanyID, testAppID,
			domain.CancelPreArrival, domain.CandidateFlags{}, domain.RefundOverrides{})
		assert.NoError(t, err)
		assert.True(t, calc.FinalRefund.IsZero())
		assert.True(t, calc.TotalPaid.Equal(dec(1200)))
	})

	t.Run("Should not enforce type legality on what-if calculations", func(t *testing.T) {
		uc, m := newCancellationUC()
		// Pre-arrival application asked about a post-arrival type: allowed here
		m.appRepo.On("GetByID", mock.Anything, testCompanyID, testAppID).Return(pendingApp(), nil)
		m.paymentRepo.On("ListByApplication", mock.Anything, testCompanyID, testAppID).Return(testPayments(), nil)
		m.settingRepo.On("GetActive", mock.Anything, testCompanyID, domain.CancelPostArrivalAfter3).
			Return(&domain.CancellationSetting{CancellationType: domain.CancelPostArrivalAfter3, RefundPercentage: dec(50), Active: true}, nil)

		calc, err := uc.CalculateRefund(context.Background(), testCompanyID, testAppID,
			domain.CancelPostArrivalAfter3, domain.CandidateFlags{}, domain.RefundOverrides{})
		assert.NoError(t, err)
		assert.True(t, calc.FinalRefund.Equal(dec(500)))
	})
}

func TestCancel(t *testing.T) {
	t.Run("Should cancel, disposition the candidate, book the refund and log one event", func(t *testing.T) {
		uc, m := newCancellationUC()
		m.appRepo.On("GetByIDForUpdate", mock.Anything, testCompanyID, testAppID).Return(pendingApp(), nil)
		m.settingRepo.On("GetActive", mock.Anything, testCompanyID, domain.CancelPreArrival).
			Return(&domain.CancellationSetting{CancellationType: domain.CancelPreArrival, PenaltyFee: dec(100), RefundPercentage: dec(50), Active: true}, nil)
		m.paymentRepo.On("ListByApplication", mock.Anything, testCompanyID, testAppID).Return(testPayments(), nil)
		m.candidateRepo.On("GetByID", mock.Anything, testCompanyID, testCandidateID).
			Return(&domain.Candidate{ID: testCandidateID, Status: domain.CandidateInProcess}, nil)

		m.appRepo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Application")).Return(nil).Run(func(args mock.Arguments) {
			app := args.Get(1).(*domain.Application)
			assert.Equal(t, domain.StatusCancelledPreArrival, app.Status)
		})
		m.candidateRepo.On("UpdateStatus", mock.Anything, testCompanyID, testCandidateID, domain.CandidateAvailableAbroad).Return(nil)
		m.adjustmentRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.LedgerAdjustment")).Return(nil).Run(func(args mock.Arguments) {
			adj := args.Get(1).(*domain.LedgerAdjustment)
			assert.Equal(t, domain.AdjustmentTypeRefund, adj.Type)
			assert.True(t, adj.Amount.Equal(dec(400)))
			assert.Equal(t, "USD", adj.Currency)
		})
		m.eventRepo.On("Append", mock.Anything, mock.AnythingOfType("*domain.LifecycleEvent")).Return(nil).Run(func(args mock.Arguments) {
			ev := args.Get(1).(*domain.LifecycleEvent)
			ev.ID = 42
			assert.Equal(t, domain.ActionCancellation, ev.Action)
			assert.Equal(t, domain.StatusPendingMOL, *ev.FromStatus)
			assert.Equal(t, domain.StatusCancelledPreArrival, *ev.ToStatus)
			assert.Equal(t, domain.CandidateInProcess, *ev.CandidateStatusBefore)
			assert.Equal(t, domain.CandidateAvailableAbroad, *ev.CandidateStatusAfter)
			assert.Equal(t, domain.AdjustmentTypeRefund, ev.FinancialImpact.Type)
			assert.True(t, ev.FinancialImpact.Amount.Equal(dec(400)))
		})

		result, err := uc.Cancel(context.Background(), testCompanyID, "admin@office.test", domain.CancelRequest{
			ApplicationID:    testAppID,
			CancellationType: domain.CancelPreArrival,
			Reason:           "client changed mind",
		})
		assert.NoError(t, err)
		assert.Equal(t, domain.StatusCancelledPreArrival, result.NewStatus)
		assert.True(t, result.Refund.FinalRefund.Equal(dec(400)))
		assert.Equal(t, int64(42), result.LifecycleEventID)
		m.eventRepo.AssertNumberOfCalls(t, "Append", 1)
	})

	t.Run("Should reject a type that is stale for the current status", func(t *testing.T) {
		uc, m := newCancellationUC()
		// Application moved past arrival since the dialog was opened
		m.appRepo.On("GetByIDForUpdate", mock.Anything, testCompanyID, testAppID).
			Return(arrivedApp(30*24*time.Hour), nil)

		_, err := uc.Cancel(context.Background(), testCompanyID, "admin", domain.CancelRequest{
			ApplicationID:    testAppID,
			CancellationType: domain.CancelPreArrival,
			Reason:           "stale dialog",
		})

		var illegal *domain.IllegalCancellationError
		assert.True(t, errors.As(err, &illegal))
		assert.Equal(t, domain.CancelPreArrival, illegal.Type)
		m.appRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		m.eventRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("Should fail fast when the application is already terminal", func(t *testing.T) {
		uc, m := newCancellationUC()
		app := pendingApp()
		app.Status = domain.StatusCancelledCandidate
		m.appRepo.On("GetByIDForUpdate", mock.Anything, testCompanyID, testAppID).Return(app, nil)

		_, err := uc.Cancel(context.Background(), testCompanyID, "admin", domain.CancelRequest{
			ApplicationID:    testAppID,
			CancellationType: domain.CancelByCandidate,
			Reason:           "double submit",
		})

		var illegal *domain.IllegalCancellationError
		assert.True(t, errors.As(err, &illegal))
		m.appRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("Should fail closed on deport without a deportation template", func(t *testing.T) {
		uc, m := newCancellationUC()
		m.appRepo.On("GetByIDForUpdate", mock.Anything, testCompanyID, testAppID).
			Return(arrivedApp(30*24*time.Hour), nil)
		m.settingRepo.On("GetActive", mock.Anything, testCompanyID, domain.SettingDeportation).
			Return(nil, domain.ErrNotFound)

		_, err := uc.Cancel(context.Background(), testCompanyID, "admin", domain.CancelRequest{
			ApplicationID:    testAppID,
			CancellationType: domain.CancelPostArrivalWithin3,
			Reason:           "deportation",
			NextAction:       domain.NextActionDeport,
		})

		assert.ErrorIs(t, err, domain.ErrMissingDeportationTemplate)
		m.appRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		m.adjustmentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Should use the deportation template when deporting", func(t *testing.T) {
		uc, m := newCancellationUC()
		m.appRepo.On("GetByIDForUpdate", mock.Anything, testCompanyID, testAppID).
			Return(arrivedApp(30*24*time.Hour), nil)
		// Punitive template: nothing back
		m.settingRepo.On("GetActive", mock.Anything, testCompanyID, domain.SettingDeportation).
			Return(&domain.CancellationSetting{CancellationType: domain.SettingDeportation, RefundPercentage: dec(0), Active: true}, nil)
		m.paymentRepo.On("ListByApplication", mock.Anything, testCompanyID, testAppID).Return(testPayments(), nil)
		m.candidateRepo.On("GetByID", mock.Anything, testCompanyID, testCandidateID).
			Return(&domain.Candidate{ID: testCandidateID, Status: domain.CandidateInProcess}, nil)
		m.appRepo.On("Update", mock.Anything, mock.Anything).Return(nil)
		m.candidateRepo.On("UpdateStatus", mock.Anything, testCompanyID, testCandidateID, domain.CandidateDeported).Return(nil)
		m.eventRepo.On("Append", mock.Anything, mock.Anything).Return(nil)

		result, err := uc.Cancel(context.Background(), testCompanyID, "admin", domain.CancelRequest{
			ApplicationID:    testAppID,
			CancellationType: domain.CancelPostArrivalWithin3,
			Reason:           "deportation order",
			NextAction:       domain.NextActionDeport,
		})
		assert.NoError(t, err)
		assert.True(t, result.Refund.FinalRefund.IsZero())
		// Zero refund writes no ledger adjustment
		m.adjustmentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Should reject move_to_client back to the application's own client", func(t *testing.T) {
		uc, m := newCancellationUC()
		app := arrivedApp(30 * 24 * time.Hour) // ClientID 5
		m.appRepo.On("GetByIDForUpdate", mock.Anything, testCompanyID, testAppID).Return(app, nil)

		sameClient := int64(5)
		_, err := uc.Cancel(context.Background(), testCompanyID, "admin", domain.CancelRequest{
			ApplicationID:    testAppID,
			CancellationType: domain.CancelPostArrivalWithin3,
			Reason:           "handover to new guarantor",
			NextAction:       domain.NextActionMoveToClient,
			ToClientID:       &sameClient,
		})

		assert.ErrorIs(t, err, domain.ErrSameClientTransfer)
		assert.Equal(t, domain.StatusWorkerArrived, app.Status)
		m.appRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		m.appRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		m.eventRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("Should keep the candidate waiting in Lebanon on keep_waiting", func(t *testing.T) {
		uc, m := newCancellationUC()
		m.appRepo.On("GetByIDForUpdate", mock.Anything, testCompanyID, testAppID).
			Return(arrivedApp(30*24*time.Hour), nil)
		m.settingRepo.On("GetActive", mock.Anything, testCompanyID, domain.CancelPostArrivalWithin3).
			Return(nil, domain.ErrNotFound) // no policy: no refund, still cancellable
		m.paymentRepo.On("ListByApplication", mock.Anything, testCompanyID, testAppID).Return(testPayments(), nil)
		m.candidateRepo.On("GetByID", mock.Anything, testCompanyID, testCandidateID).
			Return(&domain.Candidate{ID: testCandidateID, Status: domain.CandidateInProcess}, nil)
		m.appRepo.On("Update", mock.Anything, mock.Anything).Return(nil)
		m.candidateRepo.On("UpdateStatus", mock.Anything, testCompanyID, testCandidateID, domain.CandidateAvailableInLebanon).Return(nil)
		m.eventRepo.On("Append", mock.Anything, mock.Anything).Return(nil)

		result, err := uc.Cancel(context.Background(), testCompanyID, "admin", domain.CancelRequest{
			ApplicationID:    testAppID,
			CancellationType: domain.CancelPostArrivalWithin3,
			Reason:           "client dissatisfied",
			NextAction:       domain.NextActionKeepWaiting,
		})
		assert.NoError(t, err)
		assert.Equal(t, domain.StatusCancelledPostArrival, result.NewStatus)
		assert.True(t, result.Refund.FinalRefund.IsZero())
		m.candidateRepo.AssertCalled(t, "UpdateStatus", mock.Anything, testCompanyID, testCandidateID, domain.CandidateAvailableInLebanon)
	})
}
