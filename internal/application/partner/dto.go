package partner

import (
	"time"

	"github.com/google/uuid"
	"github.com/stockroom/backend/internal/domain/partner"
)

// SupplierRequest is the payload for creating or replacing a supplier
type SupplierRequest struct {
	RUT            string `json:"rut" binding:"required,rut"`
	CompanyName    string `json:"company_name" binding:"required,max=100"`
	ContactName    string `json:"contact_name" binding:"omitempty,max=100"`
	Email          string `json:"email" binding:"required,email,max=254"`
	Phone          string `json:"phone" binding:"omitempty,phone"`
	Address        string `json:"address" binding:"omitempty,max=200"`
	LineOfBusiness string `json:"line_of_business" binding:"omitempty,max=100"`
}

func (r SupplierRequest) params() partner.SupplierParams {
	return partner.SupplierParams{
		RUT:            r.RUT,
		CompanyName:    r.CompanyName,
		ContactName:    r.ContactName,
		Email:          r.Email,
		Phone:          r.Phone,
		Address:        r.Address,
		LineOfBusiness: r.LineOfBusiness,
	}
}

// SupplierListFilter filters the supplier listing
type SupplierListFilter struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Search   string `form:"search" binding:"omitempty,max=100"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=company_name rut created_at"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// SupplierResponse is the public view of a supplier
type SupplierResponse struct {
	ID             uuid.UUID `json:"id"`
	RUT            string    `json:"rut"`
	CompanyName    string    `json:"company_name"`
	ContactName    string    `json:"contact_name,omitempty"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone,omitempty"`
	Address        string    `json:"address,omitempty"`
	LineOfBusiness string    `json:"line_of_business,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ToSupplierResponse converts a domain Supplier to SupplierResponse
func ToSupplierResponse(s *partner.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:             s.ID,
		RUT:            s.RUT,
		CompanyName:    s.CompanyName,
		ContactName:    s.ContactName,
		Email:          s.Email,
		Phone:          s.Phone,
		Address:        s.Address,
		LineOfBusiness: s.LineOfBusiness,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}
