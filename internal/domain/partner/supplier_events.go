package partner

import (
	"github.com/google/uuid"
	"github.com/stockroom/backend/internal/domain/shared"
)

// Aggregate type constant for Supplier
const AggregateTypeSupplier = "Supplier"

// Supplier event types
const (
	EventTypeSupplierCreated = "supplier.created"
	EventTypeSupplierUpdated = "supplier.updated"
)

// SupplierCreatedEvent is published when a supplier is created
type SupplierCreatedEvent struct {
	shared.BaseDomainEvent
	SupplierID  uuid.UUID `json:"supplier_id"`
	RUT         string    `json:"rut"`
	CompanyName string    `json:"company_name"`
}

// NewSupplierCreatedEvent creates a new SupplierCreatedEvent
func NewSupplierCreatedEvent(s *Supplier) *SupplierCreatedEvent {
	return &SupplierCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSupplierCreated, AggregateTypeSupplier, s.ID),
		SupplierID:      s.ID,
		RUT:             s.RUT,
		CompanyName:     s.CompanyName,
	}
}

// SupplierUpdatedEvent is published when a supplier is updated
type SupplierUpdatedEvent struct {
	shared.BaseDomainEvent
	SupplierID  uuid.UUID `json:"supplier_id"`
	CompanyName string    `json:"company_name"`
}

// NewSupplierUpdatedEvent creates a new SupplierUpdatedEvent
func NewSupplierUpdatedEvent(s *Supplier) *SupplierUpdatedEvent {
	return &SupplierUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSupplierUpdated, AggregateTypeSupplier, s.ID),
		SupplierID:      s.ID,
		CompanyName:     s.CompanyName,
	}
}
