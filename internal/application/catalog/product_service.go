package catalog

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stockroom/backend/internal/application/event"
	"github.com/stockroom/backend/internal/domain/catalog"
	"github.com/stockroom/backend/internal/domain/shared"
)

// ProductService handles product-related business operations
type ProductService struct {
	productRepo    catalog.ProductRepository
	categoryRepo   catalog.CategoryRepository
	nutritionRepo  catalog.NutritionRepository
	eventPublisher shared.EventPublisher
	now            func() time.Time
}

// NewProductService creates a new ProductService
func NewProductService(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	nutritionRepo catalog.NutritionRepository,
) *ProductService {
	return &ProductService{
		productRepo:   productRepo,
		categoryRepo:  categoryRepo,
		nutritionRepo: nutritionRepo,
		now:           time.Now,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *ProductService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	params, err := req.params()
	if err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, params); err != nil {
		return nil, err
	}

	product, err := catalog.NewProduct(params)
	if err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	event.PublishPending(ctx, s.eventPublisher, product)

	return s.withCategory(ctx, product)
}

// Validate runs the checks of Create without saving anything
func (s *ProductService) Validate(ctx context.Context, req CreateProductRequest) error {
	params, err := req.params()
	if err != nil {
		return err
	}
	if err := s.checkReferences(ctx, params); err != nil {
		return err
	}
	_, err = catalog.NewProduct(params)
	return err
}

// GetByID retrieves a live product by ID
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withCategory(ctx, product)
}

// Update applies a partial update. Stock counters are changed through AdjustStock.
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	params, err := req.apply(product.Params())
	if err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, params); err != nil {
		return nil, err
	}
	if err := product.Update(params); err != nil {
		return nil, err
	}
	if err := s.productRepo.SaveWithLock(ctx, product); err != nil {
		return nil, err
	}
	event.PublishPending(ctx, s.eventPublisher, product)

	return s.withCategory(ctx, product)
}

// Delete soft-deletes a product. Past order lines keep their snapshot.
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	product.MarkDeleted()
	if err := s.productRepo.SaveWithLock(ctx, product); err != nil {
		return err
	}
	event.PublishPending(ctx, s.eventPublisher, product)
	return nil
}

// AdjustStock sets the stock counters after re-running the stock rules
func (s *ProductService) AdjustStock(ctx context.Context, id uuid.UUID, req AdjustStockRequest) (*ProductResponse, error) {
	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := product.AdjustStock(req.CurrentStock, req.MinStock, req.MaxStock); err != nil {
		return nil, err
	}
	if err := s.productRepo.SaveWithLock(ctx, product); err != nil {
		return nil, err
	}
	event.PublishPending(ctx, s.eventPublisher, product)

	return s.withCategory(ctx, product)
}

// List returns the staff product list
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) ([]ProductResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "name"
		filter.OrderDir = "asc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	if filter.CategoryID != "" {
		categoryID, err := uuid.Parse(filter.CategoryID)
		if err != nil {
			return nil, 0, shared.FieldError("category_id", "invalid category id")
		}
		domainFilter.Filters[catalog.FilterCategoryID] = categoryID
	}
	if filter.LowStock {
		domainFilter.Filters[catalog.FilterLowStock] = true
	}

	products, err := s.productRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.productRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	names, err := s.categoryNames(ctx, products)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
		if products[i].CategoryID != nil {
			responses[i].CategoryName = names[*products[i].CategoryID]
		}
	}
	return responses, total, nil
}

// Browse returns one storefront page: products with stock, optionally
// matching q on name or description, sorted and paginated.
func (s *ProductService) Browse(ctx context.Context, filter BrowseFilter) (*BrowseResult, error) {
	perPage := normalizePerPage(filter.PerPage)
	sortKey, orderBy, orderDir := normalizeSort(filter.Sort)
	query := strings.TrimSpace(filter.Query)

	domainFilter := shared.Filter{
		OrderBy:  orderBy,
		OrderDir: orderDir,
		Filters:  map[string]interface{}{catalog.FilterInStock: true},
	}
	if query != "" {
		domainFilter.Filters[catalog.FilterText] = query
	}
	if filter.CategoryID != "" {
		if categoryID, err := uuid.Parse(filter.CategoryID); err == nil {
			domainFilter.Filters[catalog.FilterCategoryID] = categoryID
		}
	}

	total, err := s.productRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	page := normalizePage(filter.Page, totalPages)

	domainFilter.Page = page
	domainFilter.PageSize = perPage
	products, err := s.productRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	names, err := s.categoryNames(ctx, products)
	if err != nil {
		return nil, err
	}
	items := make([]ShopProductResponse, len(products))
	for i := range products {
		name := ""
		if products[i].CategoryID != nil {
			name = names[*products[i].CategoryID]
		}
		items[i] = ToShopProductResponse(&products[i], name)
	}

	return &BrowseResult{
		Items:      items,
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
		Sort:       sortKey,
		Query:      query,
	}, nil
}

// GetShopProduct returns the storefront detail of a live product
func (s *ProductService) GetShopProduct(ctx context.Context, id uuid.UUID) (*ProductDetailResponse, error) {
	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	categoryName := ""
	if product.CategoryID != nil {
		category, err := s.categoryRepo.FindByID(ctx, *product.CategoryID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		if category != nil {
			categoryName = category.Name
		}
	}

	detail := &ProductDetailResponse{ShopProductResponse: ToShopProductResponse(product, categoryName)}
	if product.NutritionID != nil {
		info, err := s.nutritionRepo.FindByID(ctx, *product.NutritionID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		if info != nil {
			resp := ToNutritionResponse(info)
			detail.Nutrition = &resp
		}
	}
	return detail, nil
}

// ExpiringSoon lists live products with today ≤ expiry ≤ today+days, soonest first
func (s *ProductService) ExpiringSoon(ctx context.Context, days int) ([]ExpiringProductResponse, error) {
	if days < 0 {
		return nil, shared.FieldError("days", "days cannot be negative")
	}
	today := s.now()
	from := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, days)

	products, err := s.productRepo.FindExpiringBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]ExpiringProductResponse, len(products))
	for i := range products {
		out[i] = ExpiringProductResponse{
			ID:           products[i].ID,
			Name:         products[i].Name,
			ExpiryDate:   products[i].ExpiryDate.Format(dateLayout),
			DaysLeft:     products[i].DaysUntilExpiry(today),
			CurrentStock: products[i].CurrentStock,
		}
	}
	return out, nil
}

// LowStock lists live products with current ≤ min, lowest stock first
func (s *ProductService) LowStock(ctx context.Context) ([]ProductResponse, error) {
	products, err := s.productRepo.FindAll(ctx, shared.Filter{
		OrderBy:  "current_stock",
		OrderDir: "asc",
		Filters:  map[string]interface{}{catalog.FilterLowStock: true},
	})
	if err != nil {
		return nil, err
	}
	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
	}
	return responses, nil
}

func (s *ProductService) find(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("Product", id)
		}
		return nil, err
	}
	return product, nil
}

// checkReferences verifies that the referenced category and nutrition facts exist
func (s *ProductService) checkReferences(ctx context.Context, params catalog.ProductParams) error {
	if params.CategoryID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, *params.CategoryID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.FieldError("category_id", "category does not exist")
			}
			return err
		}
	}
	if params.NutritionID != nil {
		if _, err := s.nutritionRepo.FindByID(ctx, *params.NutritionID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.FieldError("nutrition_id", "nutrition info does not exist")
			}
			return err
		}
	}
	return nil
}

func (s *ProductService) withCategory(ctx context.Context, product *catalog.Product) (*ProductResponse, error) {
	resp := ToProductResponse(product)
	if product.CategoryID != nil {
		category, err := s.categoryRepo.FindByID(ctx, *product.CategoryID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		if category != nil {
			resp.CategoryName = category.Name
		}
	}
	return &resp, nil
}

func (s *ProductService) categoryNames(ctx context.Context, products []catalog.Product) (map[uuid.UUID]string, error) {
	seen := make(map[uuid.UUID]bool)
	ids := make([]uuid.UUID, 0)
	for _, p := range products {
		if p.CategoryID != nil && !seen[*p.CategoryID] {
			seen[*p.CategoryID] = true
			ids = append(ids, *p.CategoryID)
		}
	}
	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	categories, err := s.categoryRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return names, nil
}

func normalizePerPage(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return DefaultBrowsePerPage
	}
	for _, allowed := range BrowsePageSizes {
		if n == allowed {
			return n
		}
	}
	return DefaultBrowsePerPage
}

// normalizePage returns 1 for malformed or non-positive pages and clamps
// pages past the end to the last page
func normalizePage(raw string, totalPages int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	if totalPages > 0 && n > totalPages {
		return totalPages
	}
	if totalPages == 0 {
		return 1
	}
	return n
}

func normalizeSort(raw string) (key, orderBy, orderDir string) {
	switch raw {
	case SortAlphaDesc:
		return SortAlphaDesc, "name", "desc"
	case SortPriceAsc:
		return SortPriceAsc, "price", "asc"
	case SortPriceDesc:
		return SortPriceDesc, "price", "desc"
	default:
		return SortAlphaAsc, "name", "asc"
	}
}
