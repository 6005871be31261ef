package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stockroom/backend/internal/domain/catalog"
	"github.com/stockroom/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockExpiryRuleRepository is a mock implementation of ExpiryRuleRepository
type MockExpiryRuleRepository struct {
	mock.Mock
}

func (m *MockExpiryRuleRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.ExpiryAlertRule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.ExpiryAlertRule), args.Error(1)
}

func (m *MockExpiryRuleRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.ExpiryAlertRule, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.ExpiryAlertRule), args.Error(1)
}

func (m *MockExpiryRuleRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockExpiryRuleRepository) ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, name, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockExpiryRuleRepository) Save(ctx context.Context, rule *catalog.ExpiryAlertRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockExpiryRuleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockExpiryRuleRepository) Attach(ctx context.Context, productID, ruleID uuid.UUID) error {
	args := m.Called(ctx, productID, ruleID)
	return args.Error(0)
}

func (m *MockExpiryRuleRepository) Detach(ctx context.Context, productID, ruleID uuid.UUID) error {
	args := m.Called(ctx, productID, ruleID)
	return args.Error(0)
}

func (m *MockExpiryRuleRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]catalog.ExpiryAlertRule, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).([]catalog.ExpiryAlertRule), args.Error(1)
}

func (m *MockExpiryRuleRepository) FindAssignments(ctx context.Context) ([]catalog.RuleAssignment, error) {
	args := m.Called(ctx)
	return args.Get(0).([]catalog.RuleAssignment), args.Error(1)
}

func TestExpiryRuleService_Create(t *testing.T) {
	ctx := context.Background()
	ruleRepo := new(MockExpiryRuleRepository)
	svc := NewExpiryRuleService(ruleRepo, new(MockProductRepository))

	ruleRepo.On("ExistsByName", ctx, "Semana", (*uuid.UUID)(nil)).Return(false, nil)
	ruleRepo.On("Save", ctx, mock.AnythingOfType("*catalog.ExpiryAlertRule")).Return(nil)

	resp, err := svc.Create(ctx, ExpiryRuleRequest{Name: "Semana", DaysBefore: 7})
	require.NoError(t, err)
	assert.Equal(t, 7, resp.DaysBefore)

	_, err = svc.Create(ctx, ExpiryRuleRequest{Name: "Semana", DaysBefore: -1})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestExpiryRuleService_Attach(t *testing.T) {
	ctx := context.Background()
	rule, err := catalog.NewExpiryAlertRule("Tres días", "", 3)
	require.NoError(t, err)
	product := newTestProduct(t, "Berlín", 6, 1, 12)

	t.Run("links product", func(t *testing.T) {
		ruleRepo := new(MockExpiryRuleRepository)
		productRepo := new(MockProductRepository)
		svc := NewExpiryRuleService(ruleRepo, productRepo)
		ruleRepo.On("FindByID", ctx, rule.ID).Return(rule, nil)
		productRepo.On("FindByID", ctx, product.ID).Return(product, nil)
		ruleRepo.On("Attach", ctx, product.ID, rule.ID).Return(nil)

		require.NoError(t, svc.Attach(ctx, rule.ID, product.ID))
		ruleRepo.AssertExpectations(t)
	})

	t.Run("duplicate pair conflicts", func(t *testing.T) {
		ruleRepo := new(MockExpiryRuleRepository)
		productRepo := new(MockProductRepository)
		svc := NewExpiryRuleService(ruleRepo, productRepo)
		ruleRepo.On("FindByID", ctx, rule.ID).Return(rule, nil)
		productRepo.On("FindByID", ctx, product.ID).Return(product, nil)
		ruleRepo.On("Attach", ctx, product.ID, rule.ID).Return(shared.ErrAlreadyExists)

		err := svc.Attach(ctx, rule.ID, product.ID)
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("unknown product", func(t *testing.T) {
		ruleRepo := new(MockExpiryRuleRepository)
		productRepo := new(MockProductRepository)
		svc := NewExpiryRuleService(ruleRepo, productRepo)
		missing := uuid.New()
		ruleRepo.On("FindByID", ctx, rule.ID).Return(rule, nil)
		productRepo.On("FindByID", ctx, missing).Return(nil, shared.ErrNotFound)

		err := svc.Attach(ctx, rule.ID, missing)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		ruleRepo.AssertNotCalled(t, "Attach", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestExpiryRuleService_Detach(t *testing.T) {
	ctx := context.Background()
	ruleRepo := new(MockExpiryRuleRepository)
	svc := NewExpiryRuleService(ruleRepo, new(MockProductRepository))
	ruleID, productID := uuid.New(), uuid.New()
	ruleRepo.On("Detach", ctx, productID, ruleID).Return(shared.ErrNotFound)

	err := svc.Detach(ctx, ruleID, productID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
