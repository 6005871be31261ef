package catalog

import (
	"strings"

	"github.com/stockroom/backend/internal/domain/shared"
)

// NutritionInfo holds the free-form nutritional label of a product
type NutritionInfo struct {
	shared.BaseEntity
	Ingredients     string
	PreparationTime string
	Proteins        string
	Sugar           string
	Gluten          string
}

// NutritionParams are the editable nutrition fields
type NutritionParams struct {
	Ingredients     string
	PreparationTime string
	Proteins        string
	Sugar           string
	Gluten          string
}

// NewNutritionInfo creates a nutrition record
func NewNutritionInfo(params NutritionParams) (*NutritionInfo, error) {
	n := &NutritionInfo{BaseEntity: shared.NewBaseEntity()}
	if err := n.Update(params); err != nil {
		return nil, err
	}
	return n, nil
}

// Update replaces the nutrition fields
func (n *NutritionInfo) Update(params NutritionParams) error {
	errs := shared.NewValidationError()
	limits := []struct {
		field string
		value string
		max   int
	}{
		{"ingredients", params.Ingredients, 300},
		{"preparation_time", params.PreparationTime, 100},
		{"proteins", params.Proteins, 45},
		{"sugar", params.Sugar, 45},
		{"gluten", params.Gluten, 45},
	}
	for _, l := range limits {
		if len(strings.TrimSpace(l.value)) > l.max {
			errs.Add(l.field, "value is too long")
		}
	}
	if err := errs.OrNil(); err != nil {
		return err
	}

	n.Ingredients = strings.TrimSpace(params.Ingredients)
	n.PreparationTime = strings.TrimSpace(params.PreparationTime)
	n.Proteins = strings.TrimSpace(params.Proteins)
	n.Sugar = strings.TrimSpace(params.Sugar)
	n.Gluten = strings.TrimSpace(params.Gluten)
	n.Touch()
	return nil
}
