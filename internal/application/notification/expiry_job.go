package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stockroom/backend/internal/domain/catalog"
	"github.com/stockroom/backend/internal/domain/identity"
	"github.com/stockroom/backend/internal/domain/notification"
	"github.com/stockroom/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ExpiryJob raises expiry alerts for products watched by an ExpiryAlertRule
type ExpiryJob struct {
	ruleRepo    catalog.ExpiryRuleRepository
	productRepo catalog.ProductRepository
	userRepo    identity.UserRepository
	repo        notification.Repository
}

// ExpiryRunResult summarizes one run of the job
type ExpiryRunResult struct {
	ProductsAlerted int
	Notifications   int
}

// NewExpiryJob creates a new ExpiryJob
func NewExpiryJob(
	ruleRepo catalog.ExpiryRuleRepository,
	productRepo catalog.ProductRepository,
	userRepo identity.UserRepository,
	repo notification.Repository,
) *ExpiryJob {
	return &ExpiryJob{
		ruleRepo:    ruleRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		repo:        repo,
	}
}

// Run alerts every staff member about each watched product whose expiry date
// falls within a rule's window counted from today. At most one alert per
// product, user and day is stored, so running twice on the same day is harmless.
func (j *ExpiryJob) Run(ctx context.Context, today time.Time) (*ExpiryRunResult, error) {
	log := logger.L(ctx)

	assignments, err := j.ruleRepo.FindAssignments(ctx)
	if err != nil {
		return nil, fmt.Errorf("load rule assignments: %w", err)
	}

	rulesByProduct := make(map[uuid.UUID][]catalog.ExpiryAlertRule)
	for _, a := range assignments {
		for _, pid := range a.ProductIDs {
			rulesByProduct[pid] = append(rulesByProduct[pid], a.Rule)
		}
	}
	result := &ExpiryRunResult{}
	if len(rulesByProduct) == 0 {
		return result, nil
	}

	ids := make([]uuid.UUID, 0, len(rulesByProduct))
	for id := range rulesByProduct {
		ids = append(ids, id)
	}
	products, err := j.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load watched products: %w", err)
	}

	var due []catalog.Product
	for i := range products {
		for _, rule := range rulesByProduct[products[i].ID] {
			if rule.Triggers(&products[i], today) {
				due = append(due, products[i])
				break
			}
		}
	}
	if len(due) == 0 {
		return result, nil
	}

	staff, err := j.userRepo.FindStaff(ctx)
	if err != nil {
		return nil, fmt.Errorf("load staff: %w", err)
	}

	var batch []*notification.Notification
	for i := range due {
		p := &due[i]
		productID := p.ID
		message := expiryMessage(p, today)
		key := notification.ExpiryDedupKey(productID, today)
		for _, u := range staff {
			n, err := notification.New(u.ID, &productID, notification.KindExpiry, message)
			if err != nil {
				return nil, err
			}
			batch = append(batch, n.WithDedupKey(key))
		}
	}

	var created int64
	if len(batch) > 0 {
		if created, err = j.repo.Create(ctx, batch...); err != nil {
			return nil, fmt.Errorf("create expiry notifications: %w", err)
		}
	}

	result.ProductsAlerted = len(due)
	result.Notifications = int(created)
	log.Info("Expiry check finished",
		zap.Int("products", result.ProductsAlerted),
		zap.Int("notifications", result.Notifications))
	return result, nil
}

func expiryMessage(p *catalog.Product, today time.Time) string {
	date := p.ExpiryDate.Format("2006-01-02")
	switch days := p.DaysUntilExpiry(today); days {
	case 0:
		return fmt.Sprintf("%s vence hoy (%s)", p.Name, date)
	case 1:
		return fmt.Sprintf("%s vence mañana (%s)", p.Name, date)
	default:
		return fmt.Sprintf("%s vence en %d días (%s)", p.Name, days, date)
	}
}
