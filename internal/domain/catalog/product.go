package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockroom/backend/internal/domain/shared"
)

// Product represents a sellable item with its stock counters.
// It is the aggregate root for catalog and stock operations.
type Product struct {
	shared.BaseAggregateRoot
	Name           string
	Description    string
	Brand          string
	Price          decimal.Decimal
	CurrentStock   int
	MinStock       int
	MaxStock       int
	ExpiryDate     time.Time
	ProductionDate *time.Time
	Kind           string
	Presentation   string
	Format         string
	CategoryID     *uuid.UUID
	NutritionID    *uuid.UUID
	DeletedAt      *time.Time
}

// ProductParams carries the editable fields of a product
type ProductParams struct {
	Name           string
	Description    string
	Brand          string
	Price          decimal.Decimal
	CurrentStock   int
	MinStock       int
	MaxStock       int
	ExpiryDate     time.Time
	ProductionDate *time.Time
	Kind           string
	Presentation   string
	Format         string
	CategoryID     *uuid.UUID
	NutritionID    *uuid.UUID
}

func (p ProductParams) candidate() ProductCandidate {
	price := p.Price
	current, minStock, maxStock := p.CurrentStock, p.MinStock, p.MaxStock
	expiry := p.ExpiryDate
	return ProductCandidate{
		Name:           p.Name,
		Price:          &price,
		ProductionDate: p.ProductionDate,
		ExpiryDate:     &expiry,
		CurrentStock:   &current,
		MinStock:       &minStock,
		MaxStock:       &maxStock,
	}
}

func validateParams(p ProductParams) error {
	err := ValidateProduct(p.candidate())
	if p.ExpiryDate.IsZero() {
		verr, ok := err.(*shared.ValidationError)
		if !ok {
			verr = shared.NewValidationError()
		}
		verr.Add(FieldExpiryDate, "expiry date is required")
		return verr
	}
	return err
}

// NewProduct validates params and creates a product
func NewProduct(params ProductParams) (*Product, error) {
	if err := validateParams(params); err != nil {
		return nil, err
	}

	product := &Product{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
	product.apply(params)

	product.AddDomainEvent(NewProductCreatedEvent(product))
	return product, nil
}

// Update replaces the editable fields after validation
func (p *Product) Update(params ProductParams) error {
	if p.IsDeleted() {
		return shared.NewInvalidStateError("cannot update a deleted product")
	}
	if err := validateParams(params); err != nil {
		return err
	}

	oldPrice := p.Price
	p.apply(params)
	p.Touch()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductUpdatedEvent(p))
	if !oldPrice.Equal(p.Price) {
		p.AddDomainEvent(NewProductPriceChangedEvent(p, oldPrice))
	}
	return nil
}

func (p *Product) apply(params ProductParams) {
	p.Name = strings.TrimSpace(params.Name)
	p.Description = strings.TrimSpace(params.Description)
	p.Brand = strings.TrimSpace(params.Brand)
	p.Price = params.Price
	p.CurrentStock = params.CurrentStock
	p.MinStock = params.MinStock
	p.MaxStock = params.MaxStock
	p.ExpiryDate = dateOnly(params.ExpiryDate)
	if params.ProductionDate != nil {
		d := dateOnly(*params.ProductionDate)
		p.ProductionDate = &d
	} else {
		p.ProductionDate = nil
	}
	p.Kind = strings.TrimSpace(params.Kind)
	p.Presentation = strings.TrimSpace(params.Presentation)
	p.Format = strings.TrimSpace(params.Format)
	p.CategoryID = params.CategoryID
	p.NutritionID = params.NutritionID
}

// Params returns the editable fields of the product
func (p *Product) Params() ProductParams {
	return ProductParams{
		Name:           p.Name,
		Description:    p.Description,
		Brand:          p.Brand,
		Price:          p.Price,
		CurrentStock:   p.CurrentStock,
		MinStock:       p.MinStock,
		MaxStock:       p.MaxStock,
		ExpiryDate:     p.ExpiryDate,
		ProductionDate: p.ProductionDate,
		Kind:           p.Kind,
		Presentation:   p.Presentation,
		Format:         p.Format,
		CategoryID:     p.CategoryID,
		NutritionID:    p.NutritionID,
	}
}

// AdjustStock sets the stock counters, re-running the stock rules
func (p *Product) AdjustStock(current, minStock, maxStock int) error {
	params := p.Params()
	params.CurrentStock, params.MinStock, params.MaxStock = current, minStock, maxStock
	if err := ValidateProduct(params.candidate()); err != nil {
		return err
	}

	oldStock := p.CurrentStock
	p.CurrentStock, p.MinStock, p.MaxStock = current, minStock, maxStock
	p.Touch()
	p.IncrementVersion()

	p.AddDomainEvent(NewStockAdjustedEvent(p, oldStock))
	if p.IsLowStock() {
		p.AddDomainEvent(NewStockLowEvent(p))
	}
	return nil
}

// CanFulfil reports whether qty units are available
func (p *Product) CanFulfil(qty int) bool {
	return qty > 0 && qty <= p.CurrentStock
}

// IsLowStock reports whether the stock is at or below its minimum
func (p *Product) IsLowStock() bool {
	return p.CurrentStock <= p.MinStock
}

// InStock reports whether at least one unit is available
func (p *Product) InStock() bool {
	return p.CurrentStock > 0
}

// ExpiresWithin reports whether the product expires between today and today+days inclusive
func (p *Product) ExpiresWithin(today time.Time, days int) bool {
	start := dateOnly(today)
	end := start.AddDate(0, 0, days)
	exp := dateOnly(p.ExpiryDate)
	return !exp.Before(start) && !exp.After(end)
}

// DaysUntilExpiry returns the whole days between today and the expiry date
func (p *Product) DaysUntilExpiry(today time.Time) int {
	return int(dateOnly(p.ExpiryDate).Sub(dateOnly(today)).Hours() / 24)
}

// MarkDeleted soft-deletes the product
func (p *Product) MarkDeleted() {
	now := time.Now()
	p.DeletedAt = &now
	p.Touch()
	p.IncrementVersion()
	p.AddDomainEvent(NewProductDeletedEvent(p))
}

// IsDeleted reports whether the product was soft-deleted
func (p *Product) IsDeleted() bool {
	return p.DeletedAt != nil
}
