// Package importapp loads catalog spreadsheets into the product catalog.
package importapp

import (
	"context"
	"errors"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	catalogapp "github.com/stockroom/backend/internal/application/catalog"
	"github.com/stockroom/backend/internal/domain/catalog"
	"github.com/stockroom/backend/internal/domain/shared"
	csvimport "github.com/stockroom/backend/internal/infrastructure/import"
	"github.com/stockroom/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Import limits
const (
	MaxImportRows   = 5000
	MaxReportErrors = 100
)

// Canonical product columns
const (
	ColName           = "name"
	ColDescription    = "description"
	ColBrand          = "brand"
	ColPrice          = "price"
	ColCurrentStock   = "current_stock"
	ColMinStock       = "min_stock"
	ColMaxStock       = "max_stock"
	ColExpiryDate     = "expiry_date"
	ColProductionDate = "production_date"
	ColCategory       = "category"
	ColKind           = "kind"
	ColPresentation   = "presentation"
	ColFormat         = "format"
)

// RequiredColumns must be present in every product file
var RequiredColumns = []string{ColName, ColPrice, ColExpiryDate}

// productAliases accepts the product export headers and the usual Spanish spellings
var productAliases = map[string]string{
	"nombre":            ColName,
	"descripcion":       ColDescription,
	"marca":             ColBrand,
	"precio":            ColPrice,
	"stock":             ColCurrentStock,
	"stock_actual":      ColCurrentStock,
	"stock_minimo":      ColMinStock,
	"stock_maximo":      ColMaxStock,
	"caducidad":         ColExpiryDate,
	"fecha_caducidad":   ColExpiryDate,
	"vencimiento":       ColExpiryDate,
	"elaboracion":       ColProductionDate,
	"fecha_elaboracion": ColProductionDate,
	"categoria":         ColCategory,
	"tipo":              ColKind,
	"presentacion":      ColPresentation,
	"formato":           ColFormat,
}

// noCategoryLabels mark a row as uncategorized
var noCategoryLabels = map[string]bool{"": true, "sin categoria": true, "sin categoría": true}

var dateLayouts = []string{"2006-01-02", "02-01-2006", "02/01/2006"}

// ImportOptions controls a product import
type ImportOptions struct {
	DryRun           bool `form:"dry_run"`
	CreateCategories bool `form:"create_categories"`
	// Delimiter is "," (default), ";" or "tab". Spreadsheets in Spanish
	// locales save CSV with semicolons.
	Delimiter string `form:"delimiter"`
}

// delimiters are the accepted ImportOptions.Delimiter values
var delimiters = map[string]rune{"": ',', ",": ',', ";": ';', "tab": '\t'}

// ProductImportResult represents the result of a product import operation
type ProductImportResult struct {
	TotalRows         int                  `json:"total_rows"`
	ImportedRows      int                  `json:"imported_rows"`
	ErrorRows         int                  `json:"error_rows"`
	CreatedCategories []string             `json:"created_categories,omitempty"`
	DryRun            bool                 `json:"dry_run"`
	Errors            []csvimport.RowError `json:"errors,omitempty"`
	IsTruncated       bool                 `json:"is_truncated,omitempty"`
	TotalErrors       int                  `json:"total_errors,omitempty"`
}

// ProductImportService handles product bulk import operations.
// Every row goes through ProductService, so imported products get the same
// validation and events as products created one by one.
type ProductImportService struct {
	products     *catalogapp.ProductService
	categories   *catalogapp.CategoryService
	categoryRepo catalog.CategoryRepository
}

// NewProductImportService creates a new ProductImportService
func NewProductImportService(
	products *catalogapp.ProductService,
	categories *catalogapp.CategoryService,
	categoryRepo catalog.CategoryRepository,
) *ProductImportService {
	return &ProductImportService{
		products:     products,
		categories:   categories,
		categoryRepo: categoryRepo,
	}
}

// Import reads a CSV file and creates one product per valid row.
// Invalid rows are reported and skipped; file level problems fail the whole import.
func (s *ProductImportService) Import(ctx context.Context, r io.Reader, opts ImportOptions) (*ProductImportResult, error) {
	delimiter, ok := delimiters[opts.Delimiter]
	if !ok {
		return nil, shared.FieldError("delimiter", `delimiter must be ",", ";" or "tab"`)
	}
	parser, err := csvimport.NewCSVParser(r,
		csvimport.WithDelimiter(delimiter),
		csvimport.WithAliases(productAliases),
		csvimport.WithMaxRows(MaxImportRows),
	)
	if err != nil {
		return nil, fileError(err)
	}
	if err := parser.ParseHeader(); err != nil {
		return nil, fileError(err)
	}
	if missing := parser.MissingHeaders(RequiredColumns...); len(missing) > 0 {
		return nil, shared.FieldError("file", "missing columns: "+strings.Join(missing, ", "))
	}
	rows, err := parser.ReadAllRows()
	if err != nil {
		return nil, fileError(err)
	}

	categoryIDs, err := s.categoryIndex(ctx)
	if err != nil {
		return nil, err
	}

	result := &ProductImportResult{TotalRows: len(rows), DryRun: opts.DryRun}
	errs := csvimport.NewRowErrors(MaxReportErrors)
	created := make(map[string]bool)

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, rowErrs := buildRequest(row)
		if len(rowErrs) == 0 {
			id, rowErr, err := s.resolveCategory(ctx, row, categoryIDs, opts, created)
			if err != nil {
				return nil, err
			}
			if rowErr != nil {
				rowErrs = append(rowErrs, *rowErr)
			}
			req.CategoryID = id
		}
		if len(rowErrs) == 0 {
			var err error
			if opts.DryRun {
				err = s.products.Validate(ctx, req)
			} else {
				_, err = s.products.Create(ctx, req)
			}
			rowErrs, err = rowErrorsFrom(row.LineNumber, err)
			if err != nil {
				return nil, err
			}
		}

		if len(rowErrs) > 0 {
			result.ErrorRows++
			for _, e := range rowErrs {
				errs.Add(e)
			}
			continue
		}
		result.ImportedRows++
	}

	for name := range created {
		result.CreatedCategories = append(result.CreatedCategories, name)
	}
	sort.Strings(result.CreatedCategories)
	result.Errors = errs.List()
	result.IsTruncated = errs.Truncated()
	result.TotalErrors = errs.Total()

	logger.L(ctx).Info("Product import finished",
		zap.Bool("dry_run", opts.DryRun),
		zap.Int("total_rows", result.TotalRows),
		zap.Int("imported_rows", result.ImportedRows),
		zap.Int("error_rows", result.ErrorRows),
	)
	return result, nil
}

// categoryIndex maps lower-cased category names to ids
func (s *ProductImportService) categoryIndex(ctx context.Context) (map[string]uuid.UUID, error) {
	all, err := s.categoryRepo.FindAll(ctx, shared.Filter{})
	if err != nil {
		return nil, err
	}
	index := make(map[string]uuid.UUID, len(all))
	for _, c := range all {
		index[strings.ToLower(c.Name)] = c.ID
	}
	return index, nil
}

// resolveCategory returns the category of a row, creating it when allowed.
// A dry run records would-be categories without saving them.
func (s *ProductImportService) resolveCategory(
	ctx context.Context,
	row *csvimport.Row,
	index map[string]uuid.UUID,
	opts ImportOptions,
	created map[string]bool,
) (*uuid.UUID, *csvimport.RowError, error) {
	name := row.Get(ColCategory)
	key := strings.ToLower(name)
	if noCategoryLabels[key] {
		return nil, nil, nil
	}
	if id, ok := index[key]; ok {
		if id == uuid.Nil {
			return nil, nil, nil
		}
		return &id, nil, nil
	}
	if !opts.CreateCategories {
		return nil, &csvimport.RowError{Row: row.LineNumber, Column: ColCategory, Message: "category does not exist", Value: name}, nil
	}

	if opts.DryRun {
		index[key] = uuid.Nil
		created[name] = true
		return nil, nil, nil
	}
	category, err := s.categories.Create(ctx, catalogapp.CategoryRequest{Name: name})
	if err != nil {
		var verr *shared.ValidationError
		if errors.As(err, &verr) {
			return nil, &csvimport.RowError{Row: row.LineNumber, Column: ColCategory, Message: verr.Error(), Value: name}, nil
		}
		return nil, nil, err
	}
	index[key] = category.ID
	created[category.Name] = true
	return &category.ID, nil, nil
}

// buildRequest converts a row into a create request, collecting format errors
func buildRequest(row *csvimport.Row) (catalogapp.CreateProductRequest, []csvimport.RowError) {
	var errs []csvimport.RowError
	bad := func(col, msg string) {
		errs = append(errs, csvimport.RowError{Row: row.LineNumber, Column: col, Message: msg, Value: row.Get(col)})
	}

	req := catalogapp.CreateProductRequest{
		Name:         row.Get(ColName),
		Description:  row.Get(ColDescription),
		Brand:        row.Get(ColBrand),
		Kind:         row.Get(ColKind),
		Presentation: row.Get(ColPresentation),
		Format:       row.Get(ColFormat),
	}

	price, err := parsePrice(row.Get(ColPrice))
	if err != nil {
		bad(ColPrice, "price must be a number")
	}
	req.Price = price

	ints := map[string]*int{
		ColCurrentStock: &req.CurrentStock,
		ColMinStock:     &req.MinStock,
		ColMaxStock:     &req.MaxStock,
	}
	for _, col := range []string{ColCurrentStock, ColMinStock, ColMaxStock} {
		v := row.Get(col)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			bad(col, "must be a whole number")
			continue
		}
		*ints[col] = n
	}
	// Exports carry no stock bounds; default them around the current stock
	if row.Get(ColMaxStock) == "" {
		req.MaxStock = max(req.CurrentStock, req.MinStock+1)
	}

	if expiry, ok := parseDate(row.Get(ColExpiryDate)); ok {
		req.ExpiryDate = expiry
	} else {
		bad(ColExpiryDate, "date must be YYYY-MM-DD or DD-MM-YYYY")
	}
	if v := row.Get(ColProductionDate); v != "" {
		if production, ok := parseDate(v); ok {
			req.ProductionDate = &production
		} else {
			bad(ColProductionDate, "date must be YYYY-MM-DD or DD-MM-YYYY")
		}
	}

	return req, errs
}

func parsePrice(v string) (decimal.Decimal, error) {
	v = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(v), "$"))
	if v == "" {
		return decimal.Zero, errors.New("empty price")
	}
	return decimal.NewFromString(v)
}

// parseDate returns the date in ISO layout
func parseDate(v string) (string, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}

// rowErrorsFrom turns field errors into row errors; other errors are returned as is
func rowErrorsFrom(line int, err error) ([]csvimport.RowError, error) {
	if err == nil {
		return nil, nil
	}
	var verr *shared.ValidationError
	if !errors.As(err, &verr) {
		return nil, err
	}
	var out []csvimport.RowError
	for _, field := range verr.FieldNames() {
		for _, msg := range verr.Fields[field] {
			out = append(out, csvimport.RowError{Row: line, Column: field, Message: msg})
		}
	}
	return out, nil
}

// fileError reports parser failures against the upload itself
func fileError(err error) error {
	return shared.FieldError("file", err.Error())
}
