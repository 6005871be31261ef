package order

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockroom/backend/internal/application/event"
	"github.com/stockroom/backend/internal/domain/cart"
	"github.com/stockroom/backend/internal/domain/catalog"
	"github.com/stockroom/backend/internal/domain/order"
	"github.com/stockroom/backend/internal/domain/shared"
	"github.com/stockroom/backend/internal/infrastructure/logger"
	"github.com/stockroom/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// MaxPlaceAttempts bounds how often PlaceOrder retries after losing a race
const MaxPlaceAttempts = 3

const defaultRetryBackoff = 50 * time.Millisecond

// Recorder receives order placement outcomes for metrics
type Recorder interface {
	OrderPlaced(total decimal.Decimal)
	OrderRejected(reason string)
	PlaceRetried()
}

// Rejection reasons passed to Recorder.OrderRejected
const (
	RejectEmptyCart = "empty_cart"
	RejectStock     = "insufficient_stock"
	RejectNotFound  = "product_not_found"
	RejectError     = "error"
)

type noopRecorder struct{}

func (noopRecorder) OrderPlaced(decimal.Decimal) {}
func (noopRecorder) OrderRejected(string)        {}
func (noopRecorder) PlaceRetried()               {}

// Service turns carts into orders and manages the order lifecycle
type Service struct {
	orderRepo      order.Repository
	productRepo    catalog.ProductRepository
	carts          cart.SessionStore
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
	recorder       Recorder
	backoff        time.Duration
}

// NewService creates a new order Service
func NewService(
	orderRepo order.Repository,
	productRepo catalog.ProductRepository,
	carts cart.SessionStore,
	txScope TransactionScope,
) *Service {
	return &Service{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		carts:       carts,
		txScope:     txScope,
		recorder:    noopRecorder{},
		backoff:     defaultRetryBackoff,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetRecorder sets the metrics recorder
func (s *Service) SetRecorder(recorder Recorder) {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	s.recorder = recorder
}

// SetRetryBackoff sets the base delay between placement attempts
func (s *Service) SetRetryBackoff(d time.Duration) {
	s.backoff = d
}

// stockRace marks a conditional decrement that lost to a concurrent order
type stockRace struct {
	stock *order.StockError
}

func (e *stockRace) Error() string { return e.stock.Error() }
func (e *stockRace) Unwrap() error { return e.stock }

// PlaceOrder converts the session cart into a Pending order.
// Stock is checked against fresh product reads, then the order rows and the
// stock decrements are written in one transaction. The cart is cleared only
// after commit; on any error it is left untouched.
func (s *Service) PlaceOrder(ctx context.Context, userID uuid.UUID, sessionKey string) (_ *OrderResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "place",
		attribute.String("user_id", userID.String()))
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()
	log := logger.L(ctx)

	c, err := s.carts.Get(ctx, sessionKey)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		s.recorder.OrderRejected(RejectEmptyCart)
		return nil, order.ErrEmptyCart
	}

	var placed *order.Order
	for attempt := 1; ; attempt++ {
		placed, err = s.tryPlace(ctx, userID, c)
		if err == nil {
			break
		}
		if !retryable(err) || attempt >= MaxPlaceAttempts {
			var race *stockRace
			if errors.As(err, &race) {
				err = race.stock
			}
			s.recordRejection(err)
			return nil, err
		}

		log.Warn("Order placement lost a race, retrying",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		span.AddEvent("retry")
		s.recorder.PlaceRetried()
		if err = sleepCtx(ctx, s.backoff*time.Duration(attempt)); err != nil {
			return nil, err
		}
	}

	if clearErr := s.carts.Clear(ctx, sessionKey); clearErr != nil {
		log.Warn("Failed to clear cart after order placement",
			zap.String("order_id", placed.ID.String()),
			zap.Error(clearErr),
		)
	}
	span.SetAttributes(attribute.String("order_id", placed.ID.String()))

	log.Info("Order placed",
		zap.String("order_id", placed.ID.String()),
		zap.String("total", placed.Total.StringFixed(2)),
		zap.Int("lines", len(placed.Lines)),
	)
	s.recorder.OrderPlaced(placed.Total)

	sources := []event.EventSource{placed}
	sources = append(sources, s.lowStockSources(ctx, placed)...)
	event.PublishPending(ctx, s.eventPublisher, sources...)

	resp := ToOrderResponse(placed)
	return &resp, nil
}

func (s *Service) tryPlace(ctx context.Context, userID uuid.UUID, c *cart.Cart) (*order.Order, error) {
	products, err := s.productRepo.FindByIDs(ctx, c.ProductIDs())
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	inputs := make([]order.LineInput, 0, len(c.Items))
	for _, item := range c.Items {
		p, ok := byID[item.ProductID]
		if !ok {
			return nil, shared.NewNotFoundError("Product", item.ProductID)
		}
		if !p.CanFulfil(item.Quantity) {
			return nil, &order.StockError{
				ProductID:   p.ID,
				ProductName: p.Name,
				Requested:   item.Quantity,
				Available:   p.CurrentStock,
			}
		}
		inputs = append(inputs, order.LineInput{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    item.Quantity,
			UnitPrice:   p.Price,
		})
	}

	o, err := order.New(userID, inputs)
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.OrderRepo().Create(ctx, o); err != nil {
			return err
		}
		for _, line := range o.Lines {
			err := repos.ProductRepo().DecrementStock(ctx, line.ProductID, line.Quantity)
			if errors.Is(err, shared.ErrInsufficientStock) {
				return &stockRace{stock: &order.StockError{
					ProductID:   line.ProductID,
					ProductName: line.ProductName,
					Requested:   line.Quantity,
					Available:   byID[line.ProductID].CurrentStock,
				}}
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

// lowStockSources re-reads the ordered products and attaches a stock.low
// event to each one now at or below its minimum
func (s *Service) lowStockSources(ctx context.Context, o *order.Order) []event.EventSource {
	ids := make([]uuid.UUID, len(o.Lines))
	for i, l := range o.Lines {
		ids[i] = l.ProductID
	}
	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		logger.L(ctx).Warn("Failed to reload products for low stock check", zap.Error(err))
		return nil
	}

	var sources []event.EventSource
	for i := range products {
		p := &products[i]
		if p.IsLowStock() {
			p.AddDomainEvent(catalog.NewStockLowEvent(p))
			sources = append(sources, p)
		}
	}
	return sources
}

func (s *Service) recordRejection(err error) {
	var stockErr *order.StockError
	switch {
	case errors.As(err, &stockErr):
		s.recorder.OrderRejected(RejectStock)
	case errors.Is(err, shared.ErrNotFound):
		s.recorder.OrderRejected(RejectNotFound)
	default:
		s.recorder.OrderRejected(RejectError)
	}
}

func retryable(err error) bool {
	var race *stockRace
	return errors.As(err, &race) || errors.Is(err, shared.ErrConcurrencyConflict)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Get returns an order with its lines. Customers only see their own orders.
func (s *Service) Get(ctx context.Context, actor Actor, id uuid.UUID) (*OrderResponse, error) {
	o, err := s.visible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// ListMine pages the caller's orders, newest first
func (s *Service) ListMine(ctx context.Context, userID uuid.UUID, filter ListFilter) (*shared.Paginated[OrderResponse], error) {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	f.Filters[order.FilterUserID] = userID
	return s.list(ctx, f)
}

// ListAll pages every order for staff
func (s *Service) ListAll(ctx context.Context, filter AdminListFilter) (*shared.Paginated[OrderResponse], error) {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		f.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		f.OrderDir = filter.OrderDir
	}
	if filter.Status != "" {
		f.Filters[order.FilterStatus] = order.Status(filter.Status)
	}
	if filter.UserID != "" {
		userID, err := uuid.Parse(filter.UserID)
		if err != nil {
			return nil, shared.FieldError("user_id", "invalid user id")
		}
		f.Filters[order.FilterUserID] = userID
	}
	return s.list(ctx, f)
}

func (s *Service) list(ctx context.Context, f shared.Filter) (*shared.Paginated[OrderResponse], error) {
	total, err := s.orderRepo.Count(ctx, f)
	if err != nil {
		return nil, err
	}
	orders, err := s.orderRepo.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(toOrderResponses(orders), total, f.Page, f.PageSize)
	return &page, nil
}

// UpdateStatus moves an order to the requested status (staff only)
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, req UpdateStatusRequest) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, id)
	}
	if err := s.transition(ctx, o, order.Status(req.Status)); err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// Cancel cancels an order and returns its units to stock.
// Owners may cancel while the order is Pending; staff also while Preparing.
func (s *Service) Cancel(ctx context.Context, actor Actor, id uuid.UUID) (*OrderResponse, error) {
	o, err := s.visible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !actor.Staff && o.Status != order.StatusPending {
		return nil, shared.NewInvalidStateError("only pending orders can be cancelled")
	}
	if err := s.transition(ctx, o, order.StatusCancelled); err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

func (s *Service) transition(ctx context.Context, o *order.Order, target order.Status) error {
	releases := o.ReleasesStock(target)
	from := o.Status
	if err := o.TransitionTo(target); err != nil {
		return err
	}

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.OrderRepo().SaveWithLock(ctx, o); err != nil {
			return err
		}
		if !releases {
			return nil
		}
		for _, line := range o.Lines {
			if err := repos.ProductRepo().IncrementStock(ctx, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.L(ctx).Info("Order status changed",
		zap.String("order_id", o.ID.String()),
		zap.String("from", from.String()),
		zap.String("to", target.String()),
		zap.Bool("stock_released", releases),
	)
	event.PublishPending(ctx, s.eventPublisher, o)
	return nil
}

func (s *Service) visible(ctx context.Context, actor Actor, id uuid.UUID) (*order.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, id)
	}
	if !actor.Staff && !o.IsOwnedBy(actor.UserID) {
		return nil, shared.NewNotFoundError("Order", id)
	}
	return o, nil
}

func notFound(err error, id uuid.UUID) error {
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewNotFoundError("Order", id)
	}
	return err
}
