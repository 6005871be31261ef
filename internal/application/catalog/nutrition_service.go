package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/stockroom/backend/internal/domain/catalog"
	"github.com/stockroom/backend/internal/domain/shared"
)

// NutritionService manages the nutrition facts products can reference
type NutritionService struct {
	nutritionRepo catalog.NutritionRepository
}

// NewNutritionService creates a new NutritionService
func NewNutritionService(nutritionRepo catalog.NutritionRepository) *NutritionService {
	return &NutritionService{nutritionRepo: nutritionRepo}
}

// Create stores new nutrition facts
func (s *NutritionService) Create(ctx context.Context, req NutritionRequest) (*NutritionResponse, error) {
	info, err := catalog.NewNutritionInfo(req.params())
	if err != nil {
		return nil, err
	}
	if err := s.nutritionRepo.Save(ctx, info); err != nil {
		return nil, err
	}
	resp := ToNutritionResponse(info)
	return &resp, nil
}

// GetByID retrieves nutrition facts by ID
func (s *NutritionService) GetByID(ctx context.Context, id uuid.UUID) (*NutritionResponse, error) {
	info, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToNutritionResponse(info)
	return &resp, nil
}

// Update replaces nutrition facts
func (s *NutritionService) Update(ctx context.Context, id uuid.UUID, req NutritionRequest) (*NutritionResponse, error) {
	info, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := info.Update(req.params()); err != nil {
		return nil, err
	}
	if err := s.nutritionRepo.Save(ctx, info); err != nil {
		return nil, err
	}
	resp := ToNutritionResponse(info)
	return &resp, nil
}

// Delete removes nutrition facts and unlinks them from products
func (s *NutritionService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	return s.nutritionRepo.Delete(ctx, id)
}

// List lists nutrition facts, newest first
func (s *NutritionService) List(ctx context.Context, filter ListFilter) ([]NutritionResponse, int64, error) {
	domainFilter := toDomainFilter(filter, "created_at")
	if filter.OrderBy == "" {
		domainFilter.OrderDir = "desc"
	}

	items, err := s.nutritionRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.nutritionRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]NutritionResponse, len(items))
	for i := range items {
		responses[i] = ToNutritionResponse(&items[i])
	}
	return responses, total, nil
}

func (s *NutritionService) find(ctx context.Context, id uuid.UUID) (*catalog.NutritionInfo, error) {
	info, err := s.nutritionRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("NutritionInfo", id)
		}
		return nil, err
	}
	return info, nil
}
