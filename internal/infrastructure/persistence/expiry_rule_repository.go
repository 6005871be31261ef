package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stockroom/backend/internal/domain/catalog"
	"github.com/stockroom/backend/internal/domain/shared"
	"github.com/stockroom/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormExpiryRuleRepository implements ExpiryRuleRepository using GORM
type GormExpiryRuleRepository struct {
	db *gorm.DB
}

// NewGormExpiryRuleRepository creates a new GormExpiryRuleRepository
func NewGormExpiryRuleRepository(db *gorm.DB) *GormExpiryRuleRepository {
	return &GormExpiryRuleRepository{db: db}
}

// FindByID finds a rule by ID
func (r *GormExpiryRuleRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.ExpiryAlertRule, error) {
	var model models.ExpiryRuleModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists rules matching the filter
func (r *GormExpiryRuleRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.ExpiryAlertRule, error) {
	var rows []models.ExpiryRuleModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ExpiryRuleModel{}), filter)
	query = applyOrder(query, filter, ExpiryRuleSortFields, "name ASC")
	query = applyPagination(query, filter)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toRules(rows), nil
}

// Count counts rules matching the filter
func (r *GormExpiryRuleRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.ExpiryRuleModel{}), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByName checks case-insensitively, ignoring excludeID when set
func (r *GormExpiryRuleRepository) ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error) {
	return existsFolded(ctx, r.db, &models.ExpiryRuleModel{}, "name", name, excludeID)
}

// Save creates or updates a rule
func (r *GormExpiryRuleRepository) Save(ctx context.Context, rule *catalog.ExpiryAlertRule) error {
	var model models.ExpiryRuleModel
	model.FromDomain(rule)
	return translateError(r.db.WithContext(ctx).Save(&model).Error)
}

// Delete removes a rule together with its product links
func (r *GormExpiryRuleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("rule_id = ?", id).Delete(&models.ProductExpiryRuleModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.ExpiryRuleModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Attach links a product to a rule; a duplicate pair yields shared.ErrAlreadyExists
func (r *GormExpiryRuleRepository) Attach(ctx context.Context, productID, ruleID uuid.UUID) error {
	link := models.ProductExpiryRuleModel{ProductID: productID, RuleID: ruleID, CreatedAt: time.Now()}
	return translateError(r.db.WithContext(ctx).Create(&link).Error)
}

// Detach removes a product-rule link
func (r *GormExpiryRuleRepository) Detach(ctx context.Context, productID, ruleID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("product_id = ? AND rule_id = ?", productID, ruleID).
		Delete(&models.ProductExpiryRuleModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByProduct lists the rules attached to a product
func (r *GormExpiryRuleRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]catalog.ExpiryAlertRule, error) {
	var rows []models.ExpiryRuleModel
	if err := r.db.WithContext(ctx).
		Joins("JOIN product_expiry_rules per ON per.rule_id = expiry_alert_rules.id").
		Where("per.product_id = ?", productID).
		Order("expiry_alert_rules.name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toRules(rows), nil
}

// FindAssignments returns every rule that has at least one product attached
func (r *GormExpiryRuleRepository) FindAssignments(ctx context.Context) ([]catalog.RuleAssignment, error) {
	var links []models.ProductExpiryRuleModel
	if err := r.db.WithContext(ctx).Order("rule_id, product_id").Find(&links).Error; err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return []catalog.RuleAssignment{}, nil
	}

	byRule := make(map[uuid.UUID][]uuid.UUID)
	ruleIDs := make([]uuid.UUID, 0)
	for _, l := range links {
		if _, ok := byRule[l.RuleID]; !ok {
			ruleIDs = append(ruleIDs, l.RuleID)
		}
		byRule[l.RuleID] = append(byRule[l.RuleID], l.ProductID)
	}

	var rules []models.ExpiryRuleModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ruleIDs).Order("name ASC").Find(&rules).Error; err != nil {
		return nil, err
	}

	assignments := make([]catalog.RuleAssignment, 0, len(rules))
	for i := range rules {
		assignments = append(assignments, catalog.RuleAssignment{
			Rule:       *rules[i].ToDomain(),
			ProductIDs: byRule[rules[i].ID],
		})
	}
	return assignments, nil
}

func (r *GormExpiryRuleRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("LOWER(name) LIKE ?", likePattern(filter.Search))
	}
	return query
}

func toRules(rows []models.ExpiryRuleModel) []catalog.ExpiryAlertRule {
	out := make([]catalog.ExpiryAlertRule, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

// Ensure GormExpiryRuleRepository implements ExpiryRuleRepository
var _ catalog.ExpiryRuleRepository = (*GormExpiryRuleRepository)(nil)
