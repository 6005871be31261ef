package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockroom/backend/internal/domain/shared"
)

// Filter keys understood by Repository.FindAll / Count
const (
	FilterUserID = "user_id"
	FilterStatus = "status"
)

// DailyTotal is the summed order total of one calendar day
type DailyTotal struct {
	Day   time.Time
	Total decimal.Decimal
	Count int64
}

// Repository defines the interface for order persistence
type Repository interface {
	// FindByID loads an order with its lines
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindAll finds orders (without lines) matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)

	// Count counts orders matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Create inserts the header and all lines
	Create(ctx context.Context, o *Order) error

	// SaveWithLock updates header fields if the stored version matches
	SaveWithLock(ctx context.Context, o *Order) error

	// CountByStatus counts orders in the given status
	CountByStatus(ctx context.Context, status Status) (int64, error)

	// DailyTotals sums order totals per day in [from, to), skipping the excluded statuses
	DailyTotals(ctx context.Context, from, to time.Time, exclude ...Status) ([]DailyTotal, error)
}
