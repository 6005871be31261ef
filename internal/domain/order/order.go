package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockroom/backend/internal/domain/shared"
)

// Line is one ordered product with the unit price frozen at order time
type Line struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	CreatedAt   time.Time
}

// Subtotal returns UnitPrice × Quantity
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// LineInput describes a line before the order exists
type LineInput struct {
	ProductID   uuid.UUID
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// Order is the aggregate root for a placed order
type Order struct {
	shared.BaseAggregateRoot
	UserID      uuid.UUID
	Status      Status
	Total       decimal.Decimal
	Lines       []Line
	CancelledAt *time.Time
}

// New builds a Pending order from the given lines and computes its total
func New(userID uuid.UUID, inputs []LineInput) (*Order, error) {
	if userID == uuid.Nil {
		return nil, shared.FieldError("user_id", "user is required")
	}
	if len(inputs) == 0 {
		return nil, ErrEmptyCart
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		Status:            StatusPending,
		Lines:             make([]Line, 0, len(inputs)),
	}

	seen := make(map[uuid.UUID]bool, len(inputs))
	errs := shared.NewValidationError()
	for _, in := range inputs {
		switch {
		case in.ProductID == uuid.Nil:
			errs.Add("product_id", "product is required")
		case seen[in.ProductID]:
			errs.Add("product_id", "product "+in.ProductID.String()+" appears more than once")
		case in.Quantity <= 0:
			errs.Add("quantity", "quantity must be greater than 0")
		case in.UnitPrice.IsNegative():
			errs.Add("unit_price", "unit price cannot be negative")
		}
		seen[in.ProductID] = true
		o.Lines = append(o.Lines, Line{
			ID:          uuid.New(),
			OrderID:     o.ID,
			ProductID:   in.ProductID,
			ProductName: in.ProductName,
			Quantity:    in.Quantity,
			UnitPrice:   in.UnitPrice.Round(2),
			CreatedAt:   o.CreatedAt,
		})
	}
	if err := errs.OrNil(); err != nil {
		return nil, err
	}

	o.Total = o.ComputeTotal()
	o.AddDomainEvent(NewOrderPlacedEvent(o))
	return o, nil
}

// ComputeTotal returns Σ line.UnitPrice × line.Quantity. Line prices are
// frozen at 2 places, so the sum needs no rounding.
func (o *Order) ComputeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// ItemCount sums the quantities of all lines
func (o *Order) ItemCount() int {
	n := 0
	for _, l := range o.Lines {
		n += l.Quantity
	}
	return n
}

// TransitionTo moves the order to target if the lifecycle allows it
func (o *Order) TransitionTo(target Status) error {
	if !target.IsValid() {
		return shared.FieldError("status", "unknown status "+string(target))
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.NewInvalidStateError("cannot move order from " + o.Status.String() + " to " + target.String())
	}
	old := o.Status
	o.Status = target
	if target == StatusCancelled {
		now := time.Now()
		o.CancelledAt = &now
	}
	o.Touch()
	o.IncrementVersion()
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, old))
	return nil
}

// Cancel cancels the order
func (o *Order) Cancel() error {
	return o.TransitionTo(StatusCancelled)
}

// IsOwnedBy reports whether userID placed the order
func (o *Order) IsOwnedBy(userID uuid.UUID) bool {
	return o.UserID == userID
}

// ReleasesStock reports whether moving to target gives the ordered units back
func (o *Order) ReleasesStock(target Status) bool {
	return target == StatusCancelled && (o.Status == StatusPending || o.Status == StatusPreparing)
}
