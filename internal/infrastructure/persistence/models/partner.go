package models

import (
	"github.com/stockroom/backend/internal/domain/partner"
)

// SupplierModel is the persistence model for the Supplier domain entity.
type SupplierModel struct {
	AggregateModel
	RUT            string `gorm:"column:rut;type:varchar(12);not null;uniqueIndex"`
	CompanyName    string `gorm:"type:varchar(100);not null;uniqueIndex"`
	ContactName    string `gorm:"type:varchar(100)"`
	Email          string `gorm:"type:varchar(254);not null;uniqueIndex"`
	Phone          string `gorm:"type:varchar(20)"`
	Address        string `gorm:"type:varchar(200)"`
	LineOfBusiness string `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (SupplierModel) TableName() string {
	return "suppliers"
}

// ToDomain converts the persistence model to a domain Supplier entity.
func (m *SupplierModel) ToDomain() *partner.Supplier {
	return &partner.Supplier{
		BaseAggregateRoot: m.ToAggregateRoot(),
		RUT:               m.RUT,
		CompanyName:       m.CompanyName,
		ContactName:       m.ContactName,
		Email:             m.Email,
		Phone:             m.Phone,
		Address:           m.Address,
		LineOfBusiness:    m.LineOfBusiness,
	}
}

// FromDomain populates the persistence model from a domain Supplier entity.
func (m *SupplierModel) FromDomain(s *partner.Supplier) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.RUT = s.RUT
	m.CompanyName = s.CompanyName
	m.ContactName = s.ContactName
	m.Email = s.Email
	m.Phone = s.Phone
	m.Address = s.Address
	m.LineOfBusiness = s.LineOfBusiness
}
