package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockroom/backend/internal/application/event"
	"github.com/stockroom/backend/internal/domain/partner"
	"github.com/stockroom/backend/internal/domain/shared"
	"github.com/stockroom/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// SupplierService handles supplier-related business operations
type SupplierService struct {
	supplierRepo   partner.SupplierRepository
	eventPublisher shared.EventPublisher
}

// NewSupplierService creates a new SupplierService
func NewSupplierService(supplierRepo partner.SupplierRepository) *SupplierService {
	return &SupplierService{
		supplierRepo: supplierRepo,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *SupplierService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new supplier
func (s *SupplierService) Create(ctx context.Context, req SupplierRequest) (*SupplierResponse, error) {
	supplier, err := partner.NewSupplier(req.params())
	if err != nil {
		return nil, err
	}

	if err := s.checkUnique(ctx, supplier, nil); err != nil {
		return nil, err
	}

	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("Supplier created",
		zap.String("supplier_id", supplier.ID.String()),
		zap.String("rut", supplier.RUT))

	event.PublishPending(ctx, s.eventPublisher, supplier)

	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

// GetByID retrieves a supplier by ID
func (s *SupplierService) GetByID(ctx context.Context, id uuid.UUID) (*SupplierResponse, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

// List returns a page of suppliers
func (s *SupplierService) List(ctx context.Context, f SupplierListFilter) (*shared.Paginated[SupplierResponse], error) {
	filter := shared.DefaultFilter()
	filter.OrderBy = "company_name"
	filter.OrderDir = "asc"
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	if f.OrderBy != "" {
		filter.OrderBy = f.OrderBy
	}
	if f.OrderDir != "" {
		filter.OrderDir = f.OrderDir
	}
	filter.Search = f.Search

	total, err := s.supplierRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	suppliers, err := s.supplierRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]SupplierResponse, len(suppliers))
	for i := range suppliers {
		items[i] = ToSupplierResponse(&suppliers[i])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Update replaces the editable fields of a supplier
func (s *SupplierService) Update(ctx context.Context, id uuid.UUID, req SupplierRequest) (*SupplierResponse, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := supplier.Update(req.params()); err != nil {
		return nil, err
	}

	if err := s.checkUnique(ctx, supplier, &supplier.ID); err != nil {
		return nil, err
	}

	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, err
	}

	event.PublishPending(ctx, s.eventPublisher, supplier)

	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

// Delete removes a supplier
func (s *SupplierService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.supplierRepo.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.supplierRepo.Delete(ctx, id); err != nil {
		return err
	}
	logger.L(ctx).Info("Supplier deleted", zap.String("supplier_id", id.String()))
	return nil
}

// checkUnique reports every taken field at once, keyed like the format errors
func (s *SupplierService) checkUnique(ctx context.Context, supplier *partner.Supplier, excludeID *uuid.UUID) error {
	errs := shared.NewValidationError()

	checks := []struct {
		field   string
		message string
		exists  func(context.Context, string, *uuid.UUID) (bool, error)
		value   string
	}{
		{partner.FieldRUT, "a supplier with this RUT already exists", s.supplierRepo.ExistsByRUT, supplier.RUT},
		{partner.FieldCompanyName, "a supplier with this company name already exists", s.supplierRepo.ExistsByCompanyName, supplier.CompanyName},
		{partner.FieldEmail, "a supplier with this email already exists", s.supplierRepo.ExistsByEmail, supplier.Email},
	}
	for _, c := range checks {
		taken, err := c.exists(ctx, c.value, excludeID)
		if err != nil {
			return err
		}
		if taken {
			errs.Add(c.field, c.message)
		}
	}

	return errs.OrNil()
}
