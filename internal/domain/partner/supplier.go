package partner

import (
	"strings"
	"unicode/utf8"

	"github.com/stockroom/backend/internal/domain/shared"
	"github.com/stockroom/backend/internal/domain/shared/valueobject"
)

// Supplier field names used in validation errors
const (
	FieldRUT         = "rut"
	FieldCompanyName = "company_name"
	FieldEmail       = "email"
	FieldPhone       = "phone"
)

// Supplier represents a company the business buys from.
// It is the aggregate root for supplier-related operations.
type Supplier struct {
	shared.BaseAggregateRoot
	RUT            string
	CompanyName    string
	ContactName    string
	Email          string
	Phone          string
	Address        string
	LineOfBusiness string
}

// SupplierParams are the editable supplier fields
type SupplierParams struct {
	RUT            string
	CompanyName    string
	ContactName    string
	Email          string
	Phone          string
	Address        string
	LineOfBusiness string
}

// NewSupplier creates a supplier after validating the format of every field.
// Uniqueness of RUT, company name and email is checked by the application service.
func NewSupplier(params SupplierParams) (*Supplier, error) {
	s := &Supplier{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
	if err := s.apply(params); err != nil {
		return nil, err
	}
	s.AddDomainEvent(NewSupplierCreatedEvent(s))
	return s, nil
}

// Update replaces the supplier's data
func (s *Supplier) Update(params SupplierParams) error {
	if err := s.apply(params); err != nil {
		return err
	}
	s.Touch()
	s.IncrementVersion()
	s.AddDomainEvent(NewSupplierUpdatedEvent(s))
	return nil
}

// Params returns the current editable fields
func (s *Supplier) Params() SupplierParams {
	return SupplierParams{
		RUT:            s.RUT,
		CompanyName:    s.CompanyName,
		ContactName:    s.ContactName,
		Email:          s.Email,
		Phone:          s.Phone,
		Address:        s.Address,
		LineOfBusiness: s.LineOfBusiness,
	}
}

func (s *Supplier) apply(params SupplierParams) error {
	if err := ValidateSupplier(params).OrNil(); err != nil {
		return err
	}

	rut, _ := valueobject.ParseRUT(params.RUT)
	s.RUT = rut.String()
	s.CompanyName = strings.TrimSpace(params.CompanyName)
	s.ContactName = strings.TrimSpace(params.ContactName)
	s.Email = valueobject.NormalizeEmail(params.Email)
	s.Phone = strings.TrimSpace(params.Phone)
	s.Address = strings.TrimSpace(params.Address)
	s.LineOfBusiness = strings.TrimSpace(params.LineOfBusiness)
	return nil
}

// ValidateSupplier checks formats and lengths. The result is never nil;
// callers may add uniqueness failures before calling OrNil.
func ValidateSupplier(params SupplierParams) *shared.ValidationError {
	errs := shared.NewValidationError()

	if strings.TrimSpace(params.RUT) == "" {
		errs.Add(FieldRUT, "RUT is required")
	} else if !valueobject.IsValidRUTFormat(params.RUT) {
		errs.Add(FieldRUT, "invalid RUT format, expected e.g. 12.345.678-9")
	}

	name := strings.TrimSpace(params.CompanyName)
	if name == "" {
		errs.Add(FieldCompanyName, "company name is required")
	} else if utf8.RuneCountInString(name) > 100 {
		errs.Add(FieldCompanyName, "company name cannot exceed 100 characters")
	}

	if utf8.RuneCountInString(strings.TrimSpace(params.ContactName)) > 100 {
		errs.Add("contact_name", "contact name cannot exceed 100 characters")
	}

	if strings.TrimSpace(params.Email) == "" {
		errs.Add(FieldEmail, "email is required")
	} else if !valueobject.IsValidEmail(params.Email) {
		errs.Add(FieldEmail, "email format is invalid")
	}

	if phone := strings.TrimSpace(params.Phone); phone != "" && !valueobject.IsValidPhone(phone) {
		errs.Add(FieldPhone, "phone must contain 8 to 15 digits and may start with +")
	}

	if utf8.RuneCountInString(strings.TrimSpace(params.Address)) > 255 {
		errs.Add("address", "address cannot exceed 255 characters")
	}
	if utf8.RuneCountInString(strings.TrimSpace(params.LineOfBusiness)) > 100 {
		errs.Add("line_of_business", "line of business cannot exceed 100 characters")
	}

	return errs
}
