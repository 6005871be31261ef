package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockroom/backend/internal/domain/shared"
)

// SupplierRepository defines the interface for supplier persistence
type SupplierRepository interface {
	// FindByID finds a supplier by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Supplier, error)

	// FindAll finds suppliers matching the filter; Search covers company, contact and RUT
	FindAll(ctx context.Context, filter shared.Filter) ([]Supplier, error)

	// Count counts suppliers matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// ExistsByRUT checks the canonical RUT, ignoring excludeID when set
	ExistsByRUT(ctx context.Context, rut string, excludeID *uuid.UUID) (bool, error)

	// ExistsByCompanyName checks case-insensitively, ignoring excludeID when set
	ExistsByCompanyName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error)

	// ExistsByEmail checks case-insensitively, ignoring excludeID when set
	ExistsByEmail(ctx context.Context, email string, excludeID *uuid.UUID) (bool, error)

	// Save creates or updates a supplier
	Save(ctx context.Context, supplier *Supplier) error

	// Delete deletes a supplier
	Delete(ctx context.Context, id uuid.UUID) error
}
