package partner

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stockroom/backend/internal/domain/partner"
	"github.com/stockroom/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSupplierRepository is a mock implementation of partner.SupplierRepository
type MockSupplierRepository struct {
	mock.Mock
}

func (m *MockSupplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Supplier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Supplier, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]partner.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSupplierRepository) ExistsByRUT(ctx context.Context, rut string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, rut, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSupplierRepository) ExistsByCompanyName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, name, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSupplierRepository) ExistsByEmail(ctx context.Context, email string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, email, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSupplierRepository) Save(ctx context.Context, supplier *partner.Supplier) error {
	args := m.Called(ctx, supplier)
	return args.Error(0)
}

func (m *MockSupplierRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

func validRequest() SupplierRequest {
	return SupplierRequest{
		RUT:            "76.123.456-k",
		CompanyName:    " Molinos del Sur ",
		ContactName:    "Carla Muñoz",
		Email:          "Ventas@MolinosSur.cl",
		Phone:          "+56 2 2345 6789",
		LineOfBusiness: "Harinas",
	}
}

func expectUnique(repo *MockSupplierRepository, excludeID *uuid.UUID, rut, name, email bool) {
	repo.On("ExistsByRUT", mock.Anything, "76123456-K", excludeID).Return(rut, nil)
	repo.On("ExistsByCompanyName", mock.Anything, "Molinos del Sur", excludeID).Return(name, nil)
	repo.On("ExistsByEmail", mock.Anything, "ventas@molinossur.cl", excludeID).Return(email, nil)
}

func TestSupplierService_Create(t *testing.T) {
	ctx := context.Background()
	repo := new(MockSupplierRepository)
	publisher := new(MockEventPublisher)
	expectUnique(repo, nil, false, false, false)
	repo.On("Save", ctx, mock.AnythingOfType("*partner.Supplier")).Return(nil)
	publisher.On("Publish", ctx, mock.MatchedBy(func(events []shared.DomainEvent) bool {
		return len(events) == 1 && events[0].EventType() == partner.EventTypeSupplierCreated
	})).Return(nil)

	svc := NewSupplierService(repo)
	svc.SetEventPublisher(publisher)

	resp, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)
	assert.Equal(t, "76123456-K", resp.RUT)
	assert.Equal(t, "Molinos del Sur", resp.CompanyName)
	assert.Equal(t, "ventas@molinossur.cl", resp.Email)
	repo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestSupplierService_Create_Duplicates(t *testing.T) {
	ctx := context.Background()
	repo := new(MockSupplierRepository)
	expectUnique(repo, nil, true, true, false)

	svc := NewSupplierService(repo)
	_, err := svc.Create(ctx, validRequest())

	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ElementsMatch(t, []string{partner.FieldRUT, partner.FieldCompanyName}, verr.FieldNames())
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSupplierService_Create_InvalidFormat(t *testing.T) {
	repo := new(MockSupplierRepository)
	req := validRequest()
	req.Phone = "abc"

	_, err := NewSupplierService(repo).Create(context.Background(), req)

	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, partner.FieldPhone)
	repo.AssertNotCalled(t, "ExistsByRUT", mock.Anything, mock.Anything, mock.Anything)
}

func TestSupplierService_Update_ExcludesItself(t *testing.T) {
	ctx := context.Background()
	existing, err := partner.NewSupplier(validRequest().params())
	require.NoError(t, err)
	existing.ClearDomainEvents()

	repo := new(MockSupplierRepository)
	repo.On("FindByID", ctx, existing.ID).Return(existing, nil)
	expectUnique(repo, &existing.ID, false, false, false)
	repo.On("Save", ctx, existing).Return(nil)

	req := validRequest()
	req.ContactName = "Pedro Rojas"
	resp, err := NewSupplierService(repo).Update(ctx, existing.ID, req)

	require.NoError(t, err)
	assert.Equal(t, "Pedro Rojas", resp.ContactName)
	repo.AssertExpectations(t)
}

func TestSupplierService_Update_EmailTakenByAnother(t *testing.T) {
	ctx := context.Background()
	existing, err := partner.NewSupplier(validRequest().params())
	require.NoError(t, err)

	repo := new(MockSupplierRepository)
	repo.On("FindByID", ctx, existing.ID).Return(existing, nil)
	expectUnique(repo, &existing.ID, false, false, true)

	_, err = NewSupplierService(repo).Update(ctx, existing.ID, validRequest())

	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{partner.FieldEmail}, verr.FieldNames())
}

func TestSupplierService_Delete(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("success", func(t *testing.T) {
		repo := new(MockSupplierRepository)
		repo.On("FindByID", ctx, id).Return(&partner.Supplier{}, nil)
		repo.On("Delete", ctx, id).Return(nil)
		require.NoError(t, NewSupplierService(repo).Delete(ctx, id))
		repo.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		repo := new(MockSupplierRepository)
		repo.On("FindByID", ctx, id).Return(nil, shared.NewNotFoundError("Supplier", id))
		err := NewSupplierService(repo).Delete(ctx, id)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestSupplierService_List(t *testing.T) {
	ctx := context.Background()
	repo := new(MockSupplierRepository)
	s, err := partner.NewSupplier(validRequest().params())
	require.NoError(t, err)

	match := mock.MatchedBy(func(f shared.Filter) bool {
		return f.Search == "molinos" && f.OrderBy == "company_name" && f.OrderDir == "asc" && f.PageSize == 20
	})
	repo.On("Count", ctx, match).Return(int64(1), nil)
	repo.On("FindAll", ctx, match).Return([]partner.Supplier{*s}, nil)

	page, err := NewSupplierService(repo).List(ctx, SupplierListFilter{Search: "molinos"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, "Molinos del Sur", page.Items[0].CompanyName)

	t.Run("count failure", func(t *testing.T) {
		repo := new(MockSupplierRepository)
		repo.On("Count", ctx, mock.Anything).Return(int64(0), errors.New("boom"))
		_, err := NewSupplierService(repo).List(ctx, SupplierListFilter{})
		assert.EqualError(t, err, "boom")
	})
}
