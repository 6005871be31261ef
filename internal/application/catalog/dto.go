package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockroom/backend/internal/domain/catalog"
	"github.com/stockroom/backend/internal/domain/shared"
)

// Storefront listing options
const (
	DefaultBrowsePerPage = 9
	SortAlphaAsc         = "alpha_asc"
	SortAlphaDesc        = "alpha_desc"
	SortPriceAsc         = "price_asc"
	SortPriceDesc        = "price_desc"
)

// BrowsePageSizes are the page sizes the storefront accepts
var BrowsePageSizes = []int{5, 9, 15, 30}

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	Name           string          `json:"name" binding:"required,max=100"`
	Description    string          `json:"description" binding:"max=2000"`
	Brand          string          `json:"brand" binding:"max=100"`
	Price          decimal.Decimal `json:"price"`
	CurrentStock   int             `json:"current_stock"`
	MinStock       int             `json:"min_stock"`
	MaxStock       int             `json:"max_stock"`
	ExpiryDate     string          `json:"expiry_date" binding:"required,datetime=2006-01-02"`
	ProductionDate *string         `json:"production_date" binding:"omitempty,datetime=2006-01-02"`
	Kind           string          `json:"kind" binding:"max=100"`
	Presentation   string          `json:"presentation" binding:"max=100"`
	Format         string          `json:"format" binding:"max=100"`
	CategoryID     *uuid.UUID      `json:"category_id"`
	NutritionID    *uuid.UUID      `json:"nutrition_id"`
}

func (r CreateProductRequest) params() (catalog.ProductParams, error) {
	expiry, err := parseDate(catalog.FieldExpiryDate, r.ExpiryDate)
	if err != nil {
		return catalog.ProductParams{}, err
	}
	production, err := parseOptionalDate(catalog.FieldProductionDate, r.ProductionDate)
	if err != nil {
		return catalog.ProductParams{}, err
	}
	return catalog.ProductParams{
		Name:           r.Name,
		Description:    r.Description,
		Brand:          r.Brand,
		Price:          r.Price,
		CurrentStock:   r.CurrentStock,
		MinStock:       r.MinStock,
		MaxStock:       r.MaxStock,
		ExpiryDate:     expiry,
		ProductionDate: production,
		Kind:           r.Kind,
		Presentation:   r.Presentation,
		Format:         r.Format,
		CategoryID:     r.CategoryID,
		NutritionID:    r.NutritionID,
	}, nil
}

// UpdateProductRequest represents a partial product update; nil fields keep their value
type UpdateProductRequest struct {
	Name           *string          `json:"name" binding:"omitempty,max=100"`
	Description    *string          `json:"description" binding:"omitempty,max=2000"`
	Brand          *string          `json:"brand" binding:"omitempty,max=100"`
	Price          *decimal.Decimal `json:"price"`
	ExpiryDate     *string          `json:"expiry_date" binding:"omitempty,datetime=2006-01-02"`
	ProductionDate *string          `json:"production_date" binding:"omitempty,datetime=2006-01-02"`
	Kind           *string          `json:"kind" binding:"omitempty,max=100"`
	Presentation   *string          `json:"presentation" binding:"omitempty,max=100"`
	Format         *string          `json:"format" binding:"omitempty,max=100"`
	CategoryID     *uuid.UUID       `json:"category_id"`
	NutritionID    *uuid.UUID       `json:"nutrition_id"`
	ClearCategory  bool             `json:"clear_category"`
	ClearNutrition bool             `json:"clear_nutrition"`
}

func (r UpdateProductRequest) apply(p catalog.ProductParams) (catalog.ProductParams, error) {
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Description != nil {
		p.Description = *r.Description
	}
	if r.Brand != nil {
		p.Brand = *r.Brand
	}
	if r.Price != nil {
		p.Price = *r.Price
	}
	if r.ExpiryDate != nil {
		expiry, err := parseDate(catalog.FieldExpiryDate, *r.ExpiryDate)
		if err != nil {
			return p, err
		}
		p.ExpiryDate = expiry
	}
	if r.ProductionDate != nil {
		production, err := parseOptionalDate(catalog.FieldProductionDate, r.ProductionDate)
		if err != nil {
			return p, err
		}
		p.ProductionDate = production
	}
	if r.Kind != nil {
		p.Kind = *r.Kind
	}
	if r.Presentation != nil {
		p.Presentation = *r.Presentation
	}
	if r.Format != nil {
		p.Format = *r.Format
	}
	switch {
	case r.ClearCategory:
		p.CategoryID = nil
	case r.CategoryID != nil:
		p.CategoryID = r.CategoryID
	}
	switch {
	case r.ClearNutrition:
		p.NutritionID = nil
	case r.NutritionID != nil:
		p.NutritionID = r.NutritionID
	}
	return p, nil
}

// AdjustStockRequest sets the stock counters of a product
type AdjustStockRequest struct {
	CurrentStock int `json:"current_stock" binding:"min=0"`
	MinStock     int `json:"min_stock" binding:"min=0"`
	MaxStock     int `json:"max_stock" binding:"min=0"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Brand          string          `json:"brand"`
	Price          decimal.Decimal `json:"price"`
	CurrentStock   int             `json:"current_stock"`
	MinStock       int             `json:"min_stock"`
	MaxStock       int             `json:"max_stock"`
	LowStock       bool            `json:"low_stock"`
	ExpiryDate     string          `json:"expiry_date"`
	ProductionDate *string         `json:"production_date,omitempty"`
	Kind           string          `json:"kind"`
	Presentation   string          `json:"presentation"`
	Format         string          `json:"format"`
	CategoryID     *uuid.UUID      `json:"category_id"`
	CategoryName   string          `json:"category_name,omitempty"`
	NutritionID    *uuid.UUID      `json:"nutrition_id"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Version        int             `json:"version"`
}

// ShopProductResponse is the storefront view of a product
type ShopProductResponse struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Brand        string          `json:"brand"`
	Price        decimal.Decimal `json:"price"`
	Available    int             `json:"available"`
	Presentation string          `json:"presentation"`
	Format       string          `json:"format"`
	CategoryName string          `json:"category_name,omitempty"`
	ExpiryDate   string          `json:"expiry_date"`
}

// ProductDetailResponse is a storefront product with its nutrition facts
type ProductDetailResponse struct {
	ShopProductResponse
	Nutrition *NutritionResponse `json:"nutrition,omitempty"`
}

// ProductListFilter represents filter options for the staff product list
type ProductListFilter struct {
	Search     string `form:"search"`
	CategoryID string `form:"category_id" binding:"omitempty,uuid"`
	LowStock   bool   `form:"low_stock"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string `form:"order_by"`
	OrderDir   string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// BrowseFilter is the raw storefront query. Values are kept as sent so that
// malformed or out-of-range input falls back to defaults instead of failing.
type BrowseFilter struct {
	Query      string `form:"q"`
	Sort       string `form:"sort"`
	Page       string `form:"page"`
	PerPage    string `form:"per_page"`
	CategoryID string `form:"category_id"`
}

// BrowseResult is one storefront page
type BrowseResult struct {
	Items      []ShopProductResponse `json:"items"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	PerPage    int                   `json:"per_page"`
	TotalPages int                   `json:"total_pages"`
	Sort       string                `json:"sort"`
	Query      string                `json:"q"`
}

// CategoryRequest creates or replaces a category
type CategoryRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"max=100"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	ProductCount *int64    `json:"product_count,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NutritionRequest creates or replaces nutrition facts
type NutritionRequest struct {
	Ingredients     string `json:"ingredients" binding:"max=300"`
	PreparationTime string `json:"preparation_time" binding:"max=100"`
	Proteins        string `json:"proteins" binding:"max=45"`
	Sugar           string `json:"sugar" binding:"max=45"`
	Gluten          string `json:"gluten" binding:"max=45"`
}

func (r NutritionRequest) params() catalog.NutritionParams {
	return catalog.NutritionParams(r)
}

// NutritionResponse represents nutrition facts in API responses
type NutritionResponse struct {
	ID              uuid.UUID `json:"id"`
	Ingredients     string    `json:"ingredients"`
	PreparationTime string    `json:"preparation_time"`
	Proteins        string    `json:"proteins"`
	Sugar           string    `json:"sugar"`
	Gluten          string    `json:"gluten"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ExpiryRuleRequest creates or replaces an expiry alert rule
type ExpiryRuleRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"max=255"`
	DaysBefore  int    `json:"days_before" binding:"min=0"`
}

// ExpiryRuleResponse represents an expiry alert rule in API responses
type ExpiryRuleResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	DaysBefore  int       `json:"days_before"`
	CreatedAt   time.Time `json:"created_at"`
}

// ExpiringProductResponse is a product inside the expiry window
type ExpiringProductResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	ExpiryDate   string    `json:"expiry_date"`
	DaysLeft     int       `json:"days_left"`
	CurrentStock int       `json:"current_stock"`
}

// ListFilter is the paging filter shared by the small catalog listings
type ListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

const dateLayout = "2006-01-02"

func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, shared.FieldError(field, "date must use the YYYY-MM-DD format")
	}
	return t, nil
}

// parseOptionalDate treats nil and "" as no date
func parseOptionalDate(field string, value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	t, err := parseDate(field, *value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	resp := ProductResponse{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Brand:        p.Brand,
		Price:        p.Price,
		CurrentStock: p.CurrentStock,
		MinStock:     p.MinStock,
		MaxStock:     p.MaxStock,
		LowStock:     p.IsLowStock(),
		ExpiryDate:   p.ExpiryDate.Format(dateLayout),
		Kind:         p.Kind,
		Presentation: p.Presentation,
		Format:       p.Format,
		CategoryID:   p.CategoryID,
		NutritionID:  p.NutritionID,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
		Version:      p.Version,
	}
	if p.ProductionDate != nil {
		d := p.ProductionDate.Format(dateLayout)
		resp.ProductionDate = &d
	}
	return resp
}

// ToShopProductResponse converts a domain Product to its storefront view
func ToShopProductResponse(p *catalog.Product, categoryName string) ShopProductResponse {
	return ShopProductResponse{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Brand:        p.Brand,
		Price:        p.Price,
		Available:    p.CurrentStock,
		Presentation: p.Presentation,
		Format:       p.Format,
		CategoryName: categoryName,
		ExpiryDate:   p.ExpiryDate.Format(dateLayout),
	}
}

// ToCategoryResponse converts a domain Category to CategoryResponse
func ToCategoryResponse(c *catalog.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// ToNutritionResponse converts domain NutritionInfo to NutritionResponse
func ToNutritionResponse(n *catalog.NutritionInfo) NutritionResponse {
	return NutritionResponse{
		ID:              n.ID,
		Ingredients:     n.Ingredients,
		PreparationTime: n.PreparationTime,
		Proteins:        n.Proteins,
		Sugar:           n.Sugar,
		Gluten:          n.Gluten,
		UpdatedAt:       n.UpdatedAt,
	}
}

// ToExpiryRuleResponse converts a domain ExpiryAlertRule to ExpiryRuleResponse
func ToExpiryRuleResponse(r *catalog.ExpiryAlertRule) ExpiryRuleResponse {
	return ExpiryRuleResponse{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		DaysBefore:  r.DaysBefore,
		CreatedAt:   r.CreatedAt,
	}
}
