package usecase_test

import (
	"context"

	"placement-backoffice/internal/domain"

	"github.com/stretchr/testify/mock"
)

// passthroughTxManager runs the function in the caller's context; the
// usecases under test never see a real transaction.
type passthroughTxManager struct{}

func (passthroughTxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Mock Repositories

type MockApplicationRepo struct {
	mock.Mock
}

func (m *MockApplicationRepo) Create(ctx context.Context, app *domain.Application) error {
	return m.Called(ctx, app).Error(0)
}

func (m *MockApplicationRepo) GetByID(ctx context.Context, companyID, id int64) (*domain.Application, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}

func (m *MockApplicationRepo) GetByIDForUpdate(ctx context.Context, companyID, id int64) (*domain.Application, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}

func (m *MockApplicationRepo) Update(ctx context.Context, app *domain.Application) error {
	return m.Called(ctx, app).Error(0)
}

type MockCandidateRepo struct {
	mock.Mock
}

func (m *MockCandidateRepo) GetByID(ctx context.Context, companyID, id int64) (*domain.Candidate, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Candidate), args.Error(1)
}

func (m *MockCandidateRepo) UpdateStatus(ctx context.Context, companyID, id int64, status domain.CandidateStatus) error {
	return m.Called(ctx, companyID, id, status).Error(0)
}

type MockPaymentRepo struct {
	mock.Mock
}

func (m *MockPaymentRepo) ListByApplication(ctx context.Context, companyID, applicationID int64) ([]domain.Payment, error) {
	args := m.Called(ctx, companyID, applicationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Payment), args.Error(1)
}

func (m *MockPaymentRepo) ListCostsByApplication(ctx context.Context, companyID, applicationID int64) ([]domain.Cost, error) {
	args := m.Called(ctx, companyID, applicationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Cost), args.Error(1)
}

type MockSettingRepo struct {
	mock.Mock
}

func (m *MockSettingRepo) GetActive(ctx context.Context, companyID int64, cancellationType domain.CancellationType) (*domain.CancellationSetting, error) {
	args := m.Called(ctx, companyID, cancellationType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CancellationSetting), args.Error(1)
}

func (m *MockSettingRepo) List(ctx context.Context, companyID int64) ([]domain.CancellationSetting, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CancellationSetting), args.Error(1)
}

func (m *MockSettingRepo) Create(ctx context.Context, setting *domain.CancellationSetting) error {
	return m.Called(ctx, setting).Error(0)
}

func (m *MockSettingRepo) Update(ctx context.Context, setting *domain.CancellationSetting) error {
	return m.Called(ctx, setting).Error(0)
}

func (m *MockSettingRepo) DeactivateByType(ctx context.Context, companyID int64, cancellationType domain.CancellationType) error {
	return m.Called(ctx, companyID, cancellationType).Error(0)
}

func (m *MockSettingRepo) GetLawyerService(ctx context.Context, companyID int64) (*domain.LawyerServiceSetting, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LawyerServiceSetting), args.Error(1)
}

func (m *MockSettingRepo) UpsertLawyerService(ctx context.Context, setting *domain.LawyerServiceSetting) error {
	return m.Called(ctx, setting).Error(0)
}

type MockAdjustmentRepo struct {
	mock.Mock
}

func (m *MockAdjustmentRepo) Create(ctx context.Context, adj *domain.LedgerAdjustment) error {
	return m.Called(ctx, adj).Error(0)
}

type MockEventRepo struct {
	mock.Mock
}

func (m *MockEventRepo) Append(ctx context.Context, event *domain.LifecycleEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockEventRepo) ListByApplication(ctx context.Context, companyID, applicationID int64) ([]domain.LifecycleEvent, error) {
	args := m.Called(ctx, companyID, applicationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LifecycleEvent), args.Error(1)
}

type MockDocumentRepo struct {
	mock.Mock
}

func (m *MockDocumentRepo) ListByApplication(ctx context.Context, applicationID int64) ([]domain.DocumentChecklistItem, error) {
	args := m.Called(ctx, applicationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DocumentChecklistItem), args.Error(1)
}

func (m *MockDocumentRepo) ListTemplates(ctx context.Context, companyID int64) ([]domain.DocumentTemplate, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DocumentTemplate), args.Error(1)
}

func (m *MockDocumentRepo) CreateForApplication(ctx context.Context, applicationID int64, templates []domain.DocumentTemplate) error {
	return m.Called(ctx, applicationID, templates).Error(0)
}
