package order

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockroom/backend/internal/domain/cart"
	"github.com/stockroom/backend/internal/domain/catalog"
	"github.com/stockroom/backend/internal/domain/order"
	"github.com/stockroom/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderRepository is a mock implementation of order.Repository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.Order, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) Create(ctx context.Context, o *order.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockOrderRepository) SaveWithLock(ctx context.Context, o *order.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockOrderRepository) CountByStatus(ctx context.Context, status order.Status) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) DailyTotals(ctx context.Context, from, to time.Time, exclude ...order.Status) ([]order.DailyTotal, error) {
	args := m.Called(ctx, from, to, exclude)
	return args.Get(0).([]order.DailyTotal), args.Error(1)
}

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) FindExpiringBetween(ctx context.Context, from, to time.Time) ([]catalog.Product, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	args := m.Called(ctx, categoryID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) SaveWithLock(ctx context.Context, product *catalog.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) DecrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	return m.Called(ctx, id, qty).Error(0)
}

func (m *MockProductRepository) IncrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	return m.Called(ctx, id, qty).Error(0)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	return m.Called(ctx, events).Error(0)
}

type spyRecorder struct {
	placed   int
	rejected []string
	retries  int
}

func (r *spyRecorder) OrderPlaced(decimal.Decimal) { r.placed++ }
func (r *spyRecorder) OrderRejected(reason string) { r.rejected = append(r.rejected, reason) }
func (r *spyRecorder) PlaceRetried()               { r.retries++ }

type memStore struct {
	carts map[string][]cart.Item
}

func (s *memStore) Get(_ context.Context, key string) (*cart.Cart, error) {
	c := cart.New(key)
	c.Items = append(c.Items, s.carts[key]...)
	return c, nil
}

func (s *memStore) Set(_ context.Context, key string, c *cart.Cart) error {
	s.carts[key] = c.Snapshot()
	return nil
}

func (s *memStore) Clear(_ context.Context, key string) error {
	delete(s.carts, key)
	return nil
}

type fixture struct {
	orders    *MockOrderRepository
	products  *MockProductRepository
	publisher *MockEventPublisher
	store     *memStore
	recorder  *spyRecorder
	svc       *Service
}

func newFixture() *fixture {
	f := &fixture{
		orders:    new(MockOrderRepository),
		products:  new(MockProductRepository),
		publisher: new(MockEventPublisher),
		store:     &memStore{carts: make(map[string][]cart.Item)},
		recorder:  &spyRecorder{},
	}
	f.svc = NewService(f.orders, f.products, f.store, NewNoOpTransactionScope(f.orders, f.products))
	f.svc.SetEventPublisher(f.publisher)
	f.svc.SetRecorder(f.recorder)
	f.svc.SetRetryBackoff(0)
	return f
}

func newProduct(t *testing.T, name, price string, stock, minStock int) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(catalog.ProductParams{
		Name:         name,
		Price:        decimal.RequireFromString(price),
		CurrentStock: stock,
		MinStock:     minStock,
		MaxStock:     100,
		ExpiryDate:   time.Now().AddDate(0, 1, 0),
	})
	require.NoError(t, err)
	p.ClearDomainEvents()
	return p
}

func eventTypes(events []shared.DomainEvent) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.EventType()
	}
	return out
}

const key = "user:buyer"

func TestService_PlaceOrder(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("creates order, decrements stock and clears cart", func(t *testing.T) {
		f := newFixture()
		a := newProduct(t, "Pan amasado", "1190", 5, 1)
		f.store.carts[key] = []cart.Item{{ProductID: a.ID, Quantity: 2}}
		after := *a
		after.CurrentStock = 3

		f.products.On("FindByIDs", ctx, []uuid.UUID{a.ID}).Return([]catalog.Product{*a}, nil).Once()
		f.products.On("FindByIDs", ctx, []uuid.UUID{a.ID}).Return([]catalog.Product{after}, nil).Once()
		f.orders.On("Create", ctx, mock.AnythingOfType("*order.Order")).Return(nil).Once()
		f.products.On("DecrementStock", ctx, a.ID, 2).Return(nil).Once()
		f.publisher.On("Publish", ctx, mock.MatchedBy(func(events []shared.DomainEvent) bool {
			return assert.ObjectsAreEqual([]string{order.EventTypeOrderPlaced}, eventTypes(events))
		})).Return(nil).Once()

		resp, err := f.svc.PlaceOrder(ctx, userID, key)
		require.NoError(t, err)

		assert.Equal(t, order.StatusPending, resp.Status)
		assert.Equal(t, userID, resp.UserID)
		require.Len(t, resp.Lines, 1)
		assert.Equal(t, 2, resp.Lines[0].Quantity)
		assert.True(t, resp.Lines[0].UnitPrice.Equal(a.Price))
		assert.True(t, resp.Total.Equal(decimal.NewFromInt(2380)))
		_, ok := f.store.carts[key]
		assert.False(t, ok, "cart must be cleared after commit")
		assert.Equal(t, 1, f.recorder.placed)

		f.orders.AssertExpectations(t)
		f.products.AssertExpectations(t)
		f.publisher.AssertExpectations(t)
	})

	t.Run("publishes stock.low for products at or below minimum", func(t *testing.T) {
		f := newFixture()
		a := newProduct(t, "Kuchen", "4500", 3, 1)
		f.store.carts[key] = []cart.Item{{ProductID: a.ID, Quantity: 2}}
		after := *a
		after.CurrentStock = 1

		f.products.On("FindByIDs", ctx, []uuid.UUID{a.ID}).Return([]catalog.Product{*a}, nil).Once()
		f.products.On("FindByIDs", ctx, []uuid.UUID{a.ID}).Return([]catalog.Product{after}, nil).Once()
		f.orders.On("Create", ctx, mock.Anything).Return(nil)
		f.products.On("DecrementStock", ctx, a.ID, 2).Return(nil)
		f.publisher.On("Publish", ctx, mock.MatchedBy(func(events []shared.DomainEvent) bool {
			return assert.ObjectsAreEqual(
				[]string{order.EventTypeOrderPlaced, catalog.EventTypeStockLow},
				eventTypes(events),
			)
		})).Return(nil).Once()

		_, err := f.svc.PlaceOrder(ctx, userID, key)
		require.NoError(t, err)
		f.publisher.AssertExpectations(t)
	})

	t.Run("insufficient stock leaves cart and stock untouched", func(t *testing.T) {
		f := newFixture()
		a := newProduct(t, "Pan amasado", "1190", 5, 1)
		f.store.carts[key] = []cart.Item{{ProductID: a.ID, Quantity: 10}}
		f.products.On("FindByIDs", ctx, []uuid.UUID{a.ID}).Return([]catalog.Product{*a}, nil)

		_, err := f.svc.PlaceOrder(ctx, userID, key)
		require.Error(t, err)

		var stockErr *order.StockError
		require.ErrorAs(t, err, &stockErr)
		assert.Equal(t, a.ID, stockErr.ProductID)
		assert.Equal(t, 10, stockErr.Requested)
		assert.Equal(t, 5, stockErr.Available)
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)

		assert.Len(t, f.store.carts[key], 1)
		f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		f.products.AssertNotCalled(t, "DecrementStock", mock.Anything, mock.Anything, mock.Anything)
		f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
		assert.Equal(t, []string{RejectStock}, f.recorder.rejected)
	})

	t.Run("empty cart is a validation error", func(t *testing.T) {
		f := newFixture()

		_, err := f.svc.PlaceOrder(ctx, userID, key)
		assert.ErrorIs(t, err, order.ErrEmptyCart)
		assert.ErrorIs(t, err, shared.ErrValidation)
		assert.Equal(t, []string{RejectEmptyCart}, f.recorder.rejected)
	})

	t.Run("missing product is not found", func(t *testing.T) {
		f := newFixture()
		gone := uuid.New()
		f.store.carts[key] = []cart.Item{{ProductID: gone, Quantity: 1}}
		f.products.On("FindByIDs", ctx, []uuid.UUID{gone}).Return([]catalog.Product{}, nil)

		_, err := f.svc.PlaceOrder(ctx, userID, key)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Len(t, f.store.carts[key], 1)
	})

	t.Run("retries after losing a stock race", func(t *testing.T) {
		f := newFixture()
		a := newProduct(t, "Hallulla", "300", 5, 0)
		f.store.carts[key] = []cart.Item{{ProductID: a.ID, Quantity: 2}}

		f.products.On("FindByIDs", ctx, []uuid.UUID{a.ID}).Return([]catalog.Product{*a}, nil)
		f.orders.On("Create", ctx, mock.Anything).Return(nil)
		f.products.On("DecrementStock", ctx, a.ID, 2).Return(shared.ErrInsufficientStock).Once()
		f.products.On("DecrementStock", ctx, a.ID, 2).Return(nil).Once()
		f.publisher.On("Publish", ctx, mock.Anything).Return(nil)

		_, err := f.svc.PlaceOrder(ctx, userID, key)
		require.NoError(t, err)
		f.orders.AssertNumberOfCalls(t, "Create", 2)
		assert.Equal(t, 1, f.recorder.retries)
	})

	t.Run("retries on transactional conflict", func(t *testing.T) {
		f := newFixture()
		a := newProduct(t, "Hallulla", "300", 5, 0)
		f.store.carts[key] = []cart.Item{{ProductID: a.ID, Quantity: 1}}

		f.products.On("FindByIDs", ctx, []uuid.UUID{a.ID}).Return([]catalog.Product{*a}, nil)
		f.orders.On("Create", ctx, mock.Anything).Return(shared.ErrConcurrencyConflict).Once()
		f.orders.On("Create", ctx, mock.Anything).Return(nil).Once()
		f.products.On("DecrementStock", ctx, a.ID, 1).Return(nil)
		f.publisher.On("Publish", ctx, mock.Anything).Return(nil)

		_, err := f.svc.PlaceOrder(ctx, userID, key)
		require.NoError(t, err)
		assert.Equal(t, 1, f.recorder.retries)
	})

	t.Run("gives up after max attempts with a stock error", func(t *testing.T) {
		f := newFixture()
		a := newProduct(t, "Hallulla", "300", 5, 0)
		f.store.carts[key] = []cart.Item{{ProductID: a.ID, Quantity: 2}}

		f.products.On("FindByIDs", ctx, []uuid.UUID{a.ID}).Return([]catalog.Product{*a}, nil)
		f.orders.On("Create", ctx, mock.Anything).Return(nil)
		f.products.On("DecrementStock", ctx, a.ID, 2).Return(shared.ErrInsufficientStock)

		_, err := f.svc.PlaceOrder(ctx, userID, key)
		var stockErr *order.StockError
		require.ErrorAs(t, err, &stockErr)
		assert.Equal(t, "Hallulla", stockErr.ProductName)
		f.orders.AssertNumberOfCalls(t, "Create", MaxPlaceAttempts)
		assert.Equal(t, MaxPlaceAttempts-1, f.recorder.retries)
		assert.Len(t, f.store.carts[key], 1)
	})

	t.Run("publish failure does not fail the order", func(t *testing.T) {
		f := newFixture()
		a := newProduct(t, "Hallulla", "300", 50, 0)
		f.store.carts[key] = []cart.Item{{ProductID: a.ID, Quantity: 1}}

		f.products.On("FindByIDs", ctx, []uuid.UUID{a.ID}).Return([]catalog.Product{*a}, nil)
		f.orders.On("Create", ctx, mock.Anything).Return(nil)
		f.products.On("DecrementStock", ctx, a.ID, 1).Return(nil)
		f.publisher.On("Publish", ctx, mock.Anything).Return(assert.AnError)

		_, err := f.svc.PlaceOrder(ctx, userID, key)
		assert.NoError(t, err)
	})
}

func placedOrder(t *testing.T, userID uuid.UUID) *order.Order {
	t.Helper()
	o, err := order.New(userID, []order.LineInput{
		{ProductID: uuid.New(), ProductName: "Pan", Quantity: 2, UnitPrice: decimal.NewFromInt(1000)},
		{ProductID: uuid.New(), ProductName: "Queque", Quantity: 1, UnitPrice: decimal.NewFromInt(3500)},
	})
	require.NoError(t, err)
	o.ClearDomainEvents()
	return o
}

func TestService_Cancel(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()

	t.Run("owner cancels pending order and stock is restored", func(t *testing.T) {
		f := newFixture()
		o := placedOrder(t, owner)
		f.orders.On("FindByID", ctx, o.ID).Return(o, nil)
		f.orders.On("SaveWithLock", ctx, o).Return(nil)
		for _, l := range o.Lines {
			f.products.On("IncrementStock", ctx, l.ProductID, l.Quantity).Return(nil).Once()
		}
		f.publisher.On("Publish", ctx, mock.Anything).Return(nil)

		resp, err := f.svc.Cancel(ctx, Actor{UserID: owner}, o.ID)
		require.NoError(t, err)
		assert.Equal(t, order.StatusCancelled, resp.Status)
		assert.NotNil(t, resp.CancelledAt)
		f.products.AssertExpectations(t)
	})

	t.Run("owner cannot cancel once preparing", func(t *testing.T) {
		f := newFixture()
		o := placedOrder(t, owner)
		require.NoError(t, o.TransitionTo(order.StatusPreparing))
		f.orders.On("FindByID", ctx, o.ID).Return(o, nil)

		_, err := f.svc.Cancel(ctx, Actor{UserID: owner}, o.ID)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
		f.orders.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("staff cancels preparing order", func(t *testing.T) {
		f := newFixture()
		o := placedOrder(t, owner)
		require.NoError(t, o.TransitionTo(order.StatusPreparing))
		o.ClearDomainEvents()
		f.orders.On("FindByID", ctx, o.ID).Return(o, nil)
		f.orders.On("SaveWithLock", ctx, o).Return(nil)
		f.products.On("IncrementStock", ctx, mock.Anything, mock.Anything).Return(nil)
		f.publisher.On("Publish", ctx, mock.Anything).Return(nil)

		_, err := f.svc.Cancel(ctx, Actor{UserID: uuid.New(), Staff: true}, o.ID)
		require.NoError(t, err)
		f.products.AssertNumberOfCalls(t, "IncrementStock", 2)
	})

	t.Run("other customers see not found", func(t *testing.T) {
		f := newFixture()
		o := placedOrder(t, owner)
		f.orders.On("FindByID", ctx, o.ID).Return(o, nil)

		_, err := f.svc.Cancel(ctx, Actor{UserID: uuid.New()}, o.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("failed stock restore surfaces the error", func(t *testing.T) {
		f := newFixture()
		o := placedOrder(t, owner)
		f.orders.On("FindByID", ctx, o.ID).Return(o, nil)
		f.orders.On("SaveWithLock", ctx, o).Return(nil)
		f.products.On("IncrementStock", ctx, mock.Anything, mock.Anything).Return(assert.AnError)

		_, err := f.svc.Cancel(ctx, Actor{UserID: owner}, o.ID)
		assert.ErrorIs(t, err, assert.AnError)
		f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})
}

func TestService_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("advances without touching stock", func(t *testing.T) {
		f := newFixture()
		o := placedOrder(t, uuid.New())
		f.orders.On("FindByID", ctx, o.ID).Return(o, nil)
		f.orders.On("SaveWithLock", ctx, o).Return(nil)
		f.publisher.On("Publish", ctx, mock.MatchedBy(func(events []shared.DomainEvent) bool {
			return len(events) == 1 && events[0].EventType() == order.EventTypeOrderStatusChanged
		})).Return(nil)

		resp, err := f.svc.UpdateStatus(ctx, o.ID, UpdateStatusRequest{Status: "PREPARING"})
		require.NoError(t, err)
		assert.Equal(t, order.StatusPreparing, resp.Status)
		f.products.AssertNotCalled(t, "IncrementStock", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects skipping a step", func(t *testing.T) {
		f := newFixture()
		o := placedOrder(t, uuid.New())
		f.orders.On("FindByID", ctx, o.ID).Return(o, nil)

		_, err := f.svc.UpdateStatus(ctx, o.ID, UpdateStatusRequest{Status: "SHIPPED"})
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})

	t.Run("unknown order", func(t *testing.T) {
		f := newFixture()
		id := uuid.New()
		f.orders.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		_, err := f.svc.UpdateStatus(ctx, id, UpdateStatusRequest{Status: "PREPARING"})
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Contains(t, err.Error(), "Order")
	})

	t.Run("version conflict is reported", func(t *testing.T) {
		f := newFixture()
		o := placedOrder(t, uuid.New())
		f.orders.On("FindByID", ctx, o.ID).Return(o, nil)
		f.orders.On("SaveWithLock", ctx, o).Return(shared.ErrConcurrencyConflict)

		_, err := f.svc.UpdateStatus(ctx, o.ID, UpdateStatusRequest{Status: "PREPARING"})
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})
}

func TestService_GetAndList(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()

	t.Run("owner and staff can read, others cannot", func(t *testing.T) {
		f := newFixture()
		o := placedOrder(t, owner)
		f.orders.On("FindByID", ctx, o.ID).Return(o, nil)

		resp, err := f.svc.Get(ctx, Actor{UserID: owner}, o.ID)
		require.NoError(t, err)
		assert.Len(t, resp.Lines, 2)
		assert.Equal(t, 3, resp.ItemCount)
		assert.True(t, resp.Total.Equal(decimal.NewFromInt(5500)))

		_, err = f.svc.Get(ctx, Actor{UserID: uuid.New(), Staff: true}, o.ID)
		assert.NoError(t, err)

		_, err = f.svc.Get(ctx, Actor{UserID: uuid.New()}, o.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("ListMine scopes by user", func(t *testing.T) {
		f := newFixture()
		scoped := mock.MatchedBy(func(filter shared.Filter) bool {
			return filter.Filters[order.FilterUserID] == owner && filter.Page == 2 && filter.PageSize == 5
		})
		f.orders.On("Count", ctx, scoped).Return(int64(7), nil)
		f.orders.On("FindAll", ctx, scoped).Return([]order.Order{*placedOrder(t, owner), *placedOrder(t, owner)}, nil)

		page, err := f.svc.ListMine(ctx, owner, ListFilter{Page: 2, PageSize: 5})
		require.NoError(t, err)
		assert.Len(t, page.Items, 2)
		assert.Equal(t, int64(7), page.Total)
		assert.Equal(t, 2, page.TotalPages)
	})

	t.Run("ListAll filters by status and rejects a bad user id", func(t *testing.T) {
		f := newFixture()
		f.orders.On("Count", ctx, mock.MatchedBy(func(filter shared.Filter) bool {
			return filter.Filters[order.FilterStatus] == order.StatusPending
		})).Return(int64(0), nil)
		f.orders.On("FindAll", ctx, mock.Anything).Return([]order.Order{}, nil)

		page, err := f.svc.ListAll(ctx, AdminListFilter{Status: "PENDING"})
		require.NoError(t, err)
		assert.Empty(t, page.Items)

		_, err = f.svc.ListAll(ctx, AdminListFilter{UserID: "nope"})
		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}
