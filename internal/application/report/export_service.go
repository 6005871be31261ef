package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/stockroom/backend/internal/domain/catalog"
	"github.com/stockroom/backend/internal/domain/identity"
	"github.com/stockroom/backend/internal/domain/order"
	"github.com/stockroom/backend/internal/domain/shared"
	"github.com/stockroom/backend/internal/infrastructure/logger"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// NoCategoryLabel is written for products without a category
const NoCategoryLabel = "Sin categoría"

const exportPageSize = 500

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var (
	productHeader = []string{"Nombre", "Marca", "Precio", "Stock", "Caducidad", "Categoría"}
	orderHeader   = []string{"ID", "Usuario", "Fecha", "Estado", "Total"}
)

// FileStore uploads finished exports and signs download links
type FileStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	PresignGet(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)
}

// ExportService renders products and orders as CSV or XLSX
type ExportService struct {
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
	orderRepo    order.Repository
	userRepo     identity.UserRepository
	store        FileStore
	now          func() time.Time
}

// NewExportService creates a new ExportService. store may be nil.
func NewExportService(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	orderRepo order.Repository,
	userRepo identity.UserRepository,
	store FileStore,
) *ExportService {
	return &ExportService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		orderRepo:    orderRepo,
		userRepo:     userRepo,
		store:        store,
		now:          time.Now,
	}
}

// CanStore reports whether exports can be uploaded
func (s *ExportService) CanStore() bool {
	return s.store != nil
}

// ExportProducts renders every live product sorted by name
func (s *ExportService) ExportProducts(ctx context.Context, format Format) (*File, error) {
	products, err := s.allProducts(ctx)
	if err != nil {
		return nil, err
	}

	categories, err := s.categoryNames(ctx, products)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, len(products))
	for i := range products {
		p := &products[i]
		category := NoCategoryLabel
		if p.CategoryID != nil {
			if name, ok := categories[*p.CategoryID]; ok {
				category = name
			}
		}
		rows[i] = []string{
			p.Name,
			p.Brand,
			p.Price.StringFixed(2),
			fmt.Sprintf("%d", p.CurrentStock),
			p.ExpiryDate.Format(dateLayout),
			category,
		}
	}

	return s.render("productos", "Productos", format, productHeader, rows)
}

// ExportOrders renders every order, newest first
func (s *ExportService) ExportOrders(ctx context.Context, format Format) (*File, error) {
	orders, err := s.allOrders(ctx)
	if err != nil {
		return nil, err
	}

	emails := make(map[uuid.UUID]string)
	rows := make([][]string, len(orders))
	for i := range orders {
		o := &orders[i]
		email, ok := emails[o.UserID]
		if !ok {
			email, err = s.userEmail(ctx, o.UserID)
			if err != nil {
				return nil, err
			}
			emails[o.UserID] = email
		}
		rows[i] = []string{
			o.ID.String(),
			email,
			o.CreatedAt.Format("2006-01-02 15:04"),
			o.Status.Label(),
			o.Total.StringFixed(2),
		}
	}

	return s.render("pedidos", "Pedidos", format, orderHeader, rows)
}

// Store uploads file and returns a presigned download URL
func (s *ExportService) Store(ctx context.Context, file *File) (*StoredFile, error) {
	if s.store == nil {
		return nil, shared.NewDomainError("STORAGE_DISABLED", "Export storage is not enabled")
	}

	key := path.Join("exports", s.now().Format("2006/01/02"), uuid.NewString()+"-"+file.Filename)
	if err := s.store.Put(ctx, key, file.Data, file.ContentType); err != nil {
		return nil, fmt.Errorf("upload export: %w", err)
	}
	url, expiresAt, err := s.store.PresignGet(ctx, key, 0)
	if err != nil {
		return nil, fmt.Errorf("sign export url: %w", err)
	}

	logger.L(ctx).Info("Export stored", zap.String("key", key), zap.Int("bytes", len(file.Data)))
	return &StoredFile{Key: key, Filename: file.Filename, URL: url, ExpiresAt: expiresAt}, nil
}

func (s *ExportService) allProducts(ctx context.Context) ([]catalog.Product, error) {
	filter := shared.Filter{Page: 1, PageSize: exportPageSize, OrderBy: "name", OrderDir: "asc"}
	var out []catalog.Product
	for {
		page, err := s.productRepo.FindAll(ctx, filter)
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
		if len(page) < filter.PageSize {
			return out, nil
		}
		filter.Page++
	}
}

func (s *ExportService) allOrders(ctx context.Context) ([]order.Order, error) {
	filter := shared.Filter{Page: 1, PageSize: exportPageSize, OrderBy: "created_at", OrderDir: "desc"}
	var out []order.Order
	for {
		page, err := s.orderRepo.FindAll(ctx, filter)
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
		if len(page) < filter.PageSize {
			return out, nil
		}
		filter.Page++
	}
}

func (s *ExportService) categoryNames(ctx context.Context, products []catalog.Product) (map[uuid.UUID]string, error) {
	seen := make(map[uuid.UUID]struct{})
	var ids []uuid.UUID
	for i := range products {
		if id := products[i].CategoryID; id != nil {
			if _, ok := seen[*id]; !ok {
				seen[*id] = struct{}{}
				ids = append(ids, *id)
			}
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

// userEmail tolerates users that no longer exist
func (s *ExportService) userEmail(ctx context.Context, id uuid.UUID) (string, error) {
	u, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return u.Email, nil
}

func (s *ExportService) render(base, sheet string, format Format, header []string, rows [][]string) (*File, error) {
	stamp := s.now().Format("20060102-150405")
	switch format {
	case FormatXLSX:
		data, err := writeXLSX(sheet, header, rows)
		if err != nil {
			return nil, err
		}
		return &File{Filename: base + "-" + stamp + ".xlsx", ContentType: contentTypeXLSX, Data: data}, nil
	case FormatCSV, "":
		data, err := writeCSV(header, rows)
		if err != nil {
			return nil, err
		}
		return &File{Filename: base + "-" + stamp + ".csv", ContentType: contentTypeCSV, Data: data}, nil
	}
	return nil, shared.FieldError("format", "format must be csv or xlsx")
}

func writeCSV(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	// BOM so spreadsheet apps detect UTF-8 accents
	buf.WriteString("\ufeff")
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeXLSX(sheet string, header []string, rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = excelize.Cell{StyleID: bold, Value: h}
	}
	if err := sw.SetRow("A1", headerRow); err != nil {
		return nil, err
	}
	for i, r := range rows {
		cells := make([]interface{}, len(r))
		for j, v := range r {
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := sw.SetRow(cell, cells); err != nil {
			return nil, err
		}
	}
	if err := sw.Flush(); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
