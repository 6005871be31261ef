package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/stockroom/backend/internal/domain/catalog"
	"github.com/stockroom/backend/internal/domain/shared"
)

// ExpiryRuleService manages expiry alert rules and their product links
type ExpiryRuleService struct {
	ruleRepo    catalog.ExpiryRuleRepository
	productRepo catalog.ProductRepository
}

// NewExpiryRuleService creates a new ExpiryRuleService
func NewExpiryRuleService(ruleRepo catalog.ExpiryRuleRepository, productRepo catalog.ProductRepository) *ExpiryRuleService {
	return &ExpiryRuleService{
		ruleRepo:    ruleRepo,
		productRepo: productRepo,
	}
}

// Create creates a rule; names are unique ignoring case
func (s *ExpiryRuleService) Create(ctx context.Context, req ExpiryRuleRequest) (*ExpiryRuleResponse, error) {
	if err := s.checkName(ctx, req.Name, nil); err != nil {
		return nil, err
	}
	rule, err := catalog.NewExpiryAlertRule(req.Name, req.Description, req.DaysBefore)
	if err != nil {
		return nil, err
	}
	if err := s.ruleRepo.Save(ctx, rule); err != nil {
		return nil, err
	}
	resp := ToExpiryRuleResponse(rule)
	return &resp, nil
}

// GetByID retrieves a rule by ID
func (s *ExpiryRuleService) GetByID(ctx context.Context, id uuid.UUID) (*ExpiryRuleResponse, error) {
	rule, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToExpiryRuleResponse(rule)
	return &resp, nil
}

// Update replaces a rule's fields
func (s *ExpiryRuleService) Update(ctx context.Context, id uuid.UUID, req ExpiryRuleRequest) (*ExpiryRuleResponse, error) {
	rule, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkName(ctx, req.Name, &id); err != nil {
		return nil, err
	}
	if err := rule.Update(req.Name, req.Description, req.DaysBefore); err != nil {
		return nil, err
	}
	if err := s.ruleRepo.Save(ctx, rule); err != nil {
		return nil, err
	}
	resp := ToExpiryRuleResponse(rule)
	return &resp, nil
}

// Delete removes a rule and its product links
func (s *ExpiryRuleService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	return s.ruleRepo.Delete(ctx, id)
}

// List lists rules alphabetically
func (s *ExpiryRuleService) List(ctx context.Context, filter ListFilter) ([]ExpiryRuleResponse, int64, error) {
	domainFilter := toDomainFilter(filter, "name")

	rules, err := s.ruleRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.ruleRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return toExpiryRuleResponses(rules), total, nil
}

// Attach links a product to a rule. Linking the same pair twice is a conflict.
func (s *ExpiryRuleService) Attach(ctx context.Context, ruleID, productID uuid.UUID) error {
	if _, err := s.find(ctx, ruleID); err != nil {
		return err
	}
	if _, err := s.findProduct(ctx, productID); err != nil {
		return err
	}
	if err := s.ruleRepo.Attach(ctx, productID, ruleID); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return shared.NewDomainError("ALREADY_EXISTS", "Product is already attached to this rule")
		}
		return err
	}
	return nil
}

// Detach removes a product-rule link
func (s *ExpiryRuleService) Detach(ctx context.Context, ruleID, productID uuid.UUID) error {
	if err := s.ruleRepo.Detach(ctx, productID, ruleID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("NOT_FOUND", "Product is not attached to this rule")
		}
		return err
	}
	return nil
}

// ForProduct lists the rules watching a product
func (s *ExpiryRuleService) ForProduct(ctx context.Context, productID uuid.UUID) ([]ExpiryRuleResponse, error) {
	if _, err := s.findProduct(ctx, productID); err != nil {
		return nil, err
	}
	rules, err := s.ruleRepo.FindByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return toExpiryRuleResponses(rules), nil
}

func (s *ExpiryRuleService) find(ctx context.Context, id uuid.UUID) (*catalog.ExpiryAlertRule, error) {
	rule, err := s.ruleRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("ExpiryAlertRule", id)
		}
		return nil, err
	}
	return rule, nil
}

func (s *ExpiryRuleService) findProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("Product", id)
		}
		return nil, err
	}
	return product, nil
}

func (s *ExpiryRuleService) checkName(ctx context.Context, name string, excludeID *uuid.UUID) error {
	exists, err := s.ruleRepo.ExistsByName(ctx, name, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return shared.FieldError("name", "a rule with this name already exists")
	}
	return nil
}

func toExpiryRuleResponses(rules []catalog.ExpiryAlertRule) []ExpiryRuleResponse {
	responses := make([]ExpiryRuleResponse, len(rules))
	for i := range rules {
		responses[i] = ToExpiryRuleResponse(&rules[i])
	}
	return responses
}
