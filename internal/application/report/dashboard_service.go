// Package report builds the back-office dashboard and data exports.
package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stockroom/backend/internal/domain/catalog"
	"github.com/stockroom/backend/internal/domain/identity"
	"github.com/stockroom/backend/internal/domain/order"
	"github.com/stockroom/backend/internal/domain/partner"
	"github.com/stockroom/backend/internal/domain/shared"
	"golang.org/x/sync/errgroup"
)

// DashboardService aggregates counters from every context
type DashboardService struct {
	userRepo     identity.UserRepository
	productRepo  catalog.ProductRepository
	supplierRepo partner.SupplierRepository
	orderRepo    order.Repository
	now          func() time.Time
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(
	userRepo identity.UserRepository,
	productRepo catalog.ProductRepository,
	supplierRepo partner.SupplierRepository,
	orderRepo order.Repository,
) *DashboardService {
	return &DashboardService{
		userRepo:     userRepo,
		productRepo:  productRepo,
		supplierRepo: supplierRepo,
		orderRepo:    orderRepo,
		now:          time.Now,
	}
}

// Dashboard queries every counter concurrently
func (s *DashboardService) Dashboard(ctx context.Context) (*DashboardResponse, error) {
	today := startOfDay(s.now())
	resp := &DashboardResponse{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		resp.Users, err = s.userRepo.Count(gctx, shared.Filter{})
		return err
	})
	g.Go(func() (err error) {
		resp.Products, err = s.productRepo.Count(gctx, shared.Filter{})
		return err
	})
	g.Go(func() (err error) {
		resp.Suppliers, err = s.supplierRepo.Count(gctx, shared.Filter{})
		return err
	})
	g.Go(func() (err error) {
		resp.PendingOrders, err = s.orderRepo.CountByStatus(gctx, order.StatusPending)
		return err
	})
	g.Go(func() error {
		products, err := s.productRepo.FindExpiringBetween(gctx, today, today.AddDate(0, 0, ExpiringWindowDays))
		if err != nil {
			return err
		}
		resp.ExpiringSoon = toExpiring(products, today)
		return nil
	})
	g.Go(func() error {
		from := today.AddDate(0, 0, -(DashboardWindowDays - 1))
		totals, err := s.orderRepo.DailyTotals(gctx, from, today.AddDate(0, 0, 1), order.StatusCancelled)
		if err != nil {
			return err
		}
		resp.DailySales = fillDays(totals, from, DashboardWindowDays)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return resp, nil
}

func toExpiring(products []catalog.Product, today time.Time) []ExpiringProduct {
	out := make([]ExpiringProduct, len(products))
	for i := range products {
		p := &products[i]
		out[i] = ExpiringProduct{
			ID:           p.ID,
			Name:         p.Name,
			Brand:        p.Brand,
			CurrentStock: p.CurrentStock,
			ExpiryDate:   p.ExpiryDate.Format(dateLayout),
			DaysLeft:     p.DaysUntilExpiry(today),
		}
	}
	return out
}

// fillDays returns one row per day starting at from, zero where no sales happened
func fillDays(totals []order.DailyTotal, from time.Time, days int) []DailySales {
	byDay := make(map[string]order.DailyTotal, len(totals))
	for _, t := range totals {
		byDay[t.Day.Format(dateLayout)] = t
	}

	out := make([]DailySales, days)
	for i := range out {
		day := from.AddDate(0, 0, i).Format(dateLayout)
		row := DailySales{Date: day, Total: decimal.Zero}
		if t, ok := byDay[day]; ok {
			row.Total = t.Total.Round(2)
			row.Orders = t.Count
		}
		out[i] = row
	}
	return out
}

const dateLayout = "2006-01-02"

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
