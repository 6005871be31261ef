package handler

import (
	"github.com/gin-gonic/gin"
	importapp "github.com/stockroom/backend/internal/application/import"
)

// importField is the multipart field carrying the CSV file
const importField = "file"

// ImportHandler serves catalog bulk imports
type ImportHandler struct {
	BaseHandler
	productImport *importapp.ProductImportService
}

// NewImportHandler creates a new ImportHandler
func NewImportHandler(productImport *importapp.ProductImportService) *ImportHandler {
	return &ImportHandler{productImport: productImport}
}

// Products handles POST /admin/imports/products (multipart/form-data, field "file").
// Query flags dry_run, create_categories and delimiter map onto ImportOptions.
func (h *ImportHandler) Products(c *gin.Context) {
	var opts importapp.ImportOptions
	if !h.bindQuery(c, &opts) {
		return
	}
	fh, err := c.FormFile(importField)
	if err != nil {
		h.fieldError(c, importField, "A CSV file is required")
		return
	}

	f, err := fh.Open()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer f.Close()

	result, err := h.productImport.Import(c.Request.Context(), f, opts)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
