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

func newApplicationUC() (domain.ApplicationUsecase, *cancellationMocks) {
	m := &cancellationMocks{
		appRepo:     new(MockApplicationRepo),
		paymentRepo: new(MockPaymentRepo),
		eventRepo:   new(MockEventRepo),
		docRepo:     new(MockDocumentRepo),
	}
	uc := usecase.NewApplicationUsecase(passthroughTxManager{},
		m.appRepo, m.paymentRepo, m.docRepo, m.eventRepo)
	return uc, m
}

func TestAdvanceStatus(t *testing.T) {
	t.Run("Should advance one step and log a status_change event", func(t *testing.T) {
		uc, m := newApplicationUC()
		m.appRepo.On("GetByIDForUpdate", mock.Anything, testCompanyID, testAppID).Return(pendingApp(), nil)
		m.docRepo.On("ListByApplication", mock.Anything, testAppID).Return([]domain.DocumentChecklistItem{}, nil)
		m.appRepo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Application")).Return(nil)
		m.eventRepo.On("Append", mock.Anything, mock.AnythingOfType("*domain.LifecycleEvent")).Return(nil).Run(func(args mock.Arguments) {
			ev := args.Get(1).(*domain.LifecycleEvent)
			assert.Equal(t, domain.ActionStatusChange, ev.Action)
			assert.Equal(t, domain.StatusPendingMOL, *ev.FromStatus)
			assert.Equal(t, domain.StatusMOLAuthReceived, *ev.ToStatus)
			assert.Equal(t, "admin@office.test", ev.PerformedBy)
			assert.Nil(t, ev.FinancialImpact)
		})

		updated, err := uc.AdvanceStatus(context.Background(), testCompanyID, "admin@office.test",
			testAppID, domain.StatusMOLAuthReceived, domain.StatusDates{})
		assert.NoError(t, err)
		assert.Equal(t, domain.StatusMOLAuthReceived, updated.Status)
	})

	t.Run("Should not persist anything on an invalid transition", func(t *testing.T) {
		uc, m := newApplicationUC()
		m.appRepo.On("GetByIDForUpdate", mock.Anything, testCompanyID, testAppID).Return(pendingApp(), nil)
		m.docRepo.On("ListByApplication", mock.Anything, testAppID).Return([]domain.DocumentChecklistItem{}, nil)

		_, err := uc.AdvanceStatus(context.Background(), testCompanyID, "admin",
			testAppID, domain.StatusWorkerArrived, domain.StatusDates{})

		var invalid *domain.InvalidTransitionError
		assert.True(t, errors.As(err, &invalid))
		m.appRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		m.eventRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("Should surface incomplete documents with their names", func(t *testing.T) {
		uc, m := newApplicationUC()
		app := pendingApp()
		app.Status = domain.StatusVisaReceived
		m.appRepo.On("GetByIDForUpdate", mock.Anything, testCompanyID, testAppID).Return(app, nil)
		m.docRepo.On("ListByApplication", mock.Anything, testAppID).Return([]domain.DocumentChecklistItem{
			{Name: "Passport Copy", Stage: domain.StatusVisaReceived, Status: domain.DocumentStatusPending},
		}, nil)

		arrival := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		_, err := uc.AdvanceStatus(context.Background(), testCompanyID, "admin",
			testAppID, domain.StatusWorkerArrived, domain.StatusDates{ExactArrivalDate: &arrival})

		var incomplete *domain.DocumentsIncompleteError
		assert.True(t, errors.As(err, &incomplete))
		assert.Contains(t, incomplete.Missing, "Passport Copy")
	})

	t.Run("Should propagate not found", func(t *testing.T) {
		uc, m := newApplicationUC()
		m.appRepo.On("GetByIDForUpdate", mock.Anything, testCompanyID, testAppID).Return(nil, domain.ErrNotFound)

		_, err := uc.AdvanceStatus(context.Background(), testCompanyID, "admin",
			testAppID, domain.StatusMOLAuthReceived, domain.StatusDates{})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestGetDetail(t *testing.T) {
	t.Run("Should assemble application, ledgers and checklist", func(t *testing.T) {
		uc, m := newApplicationUC()
		m.appRepo.On("GetByID", mock.Anything, testCompanyID, testAppID).Return(pendingApp(), nil)
		m.paymentRepo.On("ListByApplication", mock.Anything, testCompanyID, testAppID).Return(testPayments(), nil)
		m.paymentRepo.On("ListCostsByApplication", mock.Anything, testCompanyID, testAppID).
			Return([]domain.Cost{{ID: 1, Amount: dec(75), Currency: "USD", Category: "visa"}}, nil)
		m.docRepo.On("ListByApplication", mock.Anything, testAppID).Return([]domain.DocumentChecklistItem{}, nil)

		detail, err := uc.GetDetail(context.Background(), testCompanyID, testAppID)
		assert.NoError(t, err)
		assert.Equal(t, testAppID, detail.Application.ID)
		assert.Len(t, detail.Payments, 2)
		assert.Len(t, detail.Costs, 1)
	})
}

func TestGetLifecycleHistory(t *testing.T) {
	t.Run("Should scope history lookups to the tenant's application", func(t *testing.T) {
		uc, m := newApplicationUC()
		m.appRepo.On("GetByID", mock.Anything, testCompanyID, testAppID).Return(nil, domain.ErrNotFound)

		_, err := uc.GetLifecycleHistory(context.Background(), testCompanyID, testAppID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		m.eventRepo.AssertNotCalled(t, "ListByApplication", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should return the ordered audit trail", func(t *testing.T) {
		uc, m := newApplicationUC()
		from := domain.StatusPendingMOL
		to := domain.StatusMOLAuthReceived
		m.appRepo.On("GetByID", mock.Anything, testCompanyID, testAppID).Return(pendingApp(), nil)
		m.eventRepo.On("ListByApplication", mock.Anything, testCompanyID, testAppID).Return([]domain.LifecycleEvent{
			{ID: 1, Action: domain.ActionStatusChange, FromStatus: &from, ToStatus: &to},
		}, nil)

		events, err := uc.GetLifecycleHistory(context.Background(), testCompanyID, testAppID)
		assert.NoError(t, err)
		assert.Len(t, events, 1)
	})
}
