package handler

import (
	"github.com/gin-gonic/gin"
	catalogapp "github.com/stockroom/backend/internal/application/catalog"
)

// ShopHandler serves the public storefront
type ShopHandler struct {
	BaseHandler
	productService  *catalogapp.ProductService
	categoryService *catalogapp.CategoryService
}

// NewShopHandler creates a new ShopHandler
func NewShopHandler(productService *catalogapp.ProductService, categoryService *catalogapp.CategoryService) *ShopHandler {
	return &ShopHandler{productService: productService, categoryService: categoryService}
}

// Browse handles GET /shop/products?q=&sort=&page=&per_page=&category_id=
// Unknown sort keys and page sizes fall back to the defaults instead of failing.
func (h *ShopHandler) Browse(c *gin.Context) {
	var filter catalogapp.BrowseFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	result, err := h.productService.Browse(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Product handles GET /shop/products/:id
func (h *ShopHandler) Product(c *gin.Context) {
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	product, err := h.productService.GetShopProduct(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Categories handles GET /shop/categories
func (h *ShopHandler) Categories(c *gin.Context) {
	categories, _, err := h.categoryService.List(c.Request.Context(), catalogapp.ListFilter{PageSize: 100})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, categories)
}
