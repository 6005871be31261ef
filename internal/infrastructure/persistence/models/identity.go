package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/stockroom/backend/internal/domain/identity"
	"github.com/stockroom/backend/internal/domain/shared/valueobject"
)

// RoleModel is the persistence model for the Role domain entity.
type RoleModel struct {
	BaseModel
	Name string `gorm:"type:varchar(50);not null;uniqueIndex"`
}

// TableName returns the table name for GORM
func (RoleModel) TableName() string {
	return "roles"
}

// ToDomain converts the persistence model to a domain Role entity.
func (m *RoleModel) ToDomain() *identity.Role {
	return &identity.Role{
		BaseEntity: m.BaseModel.ToDomain(),
		Name:       m.Name,
	}
}

// FromDomain populates the persistence model from a domain Role entity.
func (m *RoleModel) FromDomain(r *identity.Role) {
	m.FromDomainBaseEntity(r.BaseEntity)
	m.Name = r.Name
}

// UserModel is the persistence model for the User domain entity.
// The postal address is flattened into address_* columns.
type UserModel struct {
	AggregateModel
	Email             string     `gorm:"type:varchar(254);not null;uniqueIndex"`
	RUT               string     `gorm:"column:rut;type:varchar(12);not null;uniqueIndex"`
	FirstName         string     `gorm:"type:varchar(150);not null"`
	LastName          string     `gorm:"type:varchar(150);not null"`
	MotherLastName    string     `gorm:"type:varchar(100)"`
	Phone             string     `gorm:"type:varchar(20)"`
	AvatarKey         string     `gorm:"type:varchar(500)"`
	PasswordHash      string     `gorm:"type:varchar(255);not null"`
	RoleID            *uuid.UUID `gorm:"type:uuid;index"`
	Role              *RoleModel `gorm:"foreignKey:RoleID"`
	AddressStreet     string     `gorm:"type:varchar(100)"`
	AddressNumber     string     `gorm:"type:varchar(10)"`
	AddressApartment  string     `gorm:"type:varchar(10)"`
	AddressCommune    string     `gorm:"type:varchar(100)"`
	AddressRegion     string     `gorm:"type:varchar(100)"`
	AddressPostalCode string     `gorm:"type:varchar(20)"`
	Active            bool       `gorm:"not null;default:true"`
	LastLoginAt       *time.Time
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
// RoleName is filled only when Role was preloaded.
func (m *UserModel) ToDomain() *identity.User {
	user := &identity.User{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Email:             m.Email,
		RUT:               m.RUT,
		FirstName:         m.FirstName,
		LastName:          m.LastName,
		MotherLastName:    m.MotherLastName,
		Phone:             m.Phone,
		AvatarKey:         m.AvatarKey,
		PasswordHash:      m.PasswordHash,
		RoleID:            m.RoleID,
		Active:            m.Active,
		LastLoginAt:       m.LastLoginAt,
	}
	if m.Role != nil {
		user.RoleName = m.Role.Name
	}
	if m.AddressStreet != "" {
		addr, err := valueobject.NewAddress(
			m.AddressStreet, m.AddressNumber, m.AddressCommune, m.AddressRegion,
			valueobject.WithApartment(m.AddressApartment),
			valueobject.WithPostalCode(m.AddressPostalCode),
		)
		if err == nil {
			user.Address = &addr
		}
	}
	return user
}

// FromDomain populates the persistence model from a domain User entity.
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	m.Email = u.Email
	m.RUT = u.RUT
	m.FirstName = u.FirstName
	m.LastName = u.LastName
	m.MotherLastName = u.MotherLastName
	m.Phone = u.Phone
	m.AvatarKey = u.AvatarKey
	m.PasswordHash = u.PasswordHash
	m.RoleID = u.RoleID
	m.Active = u.Active
	m.LastLoginAt = u.LastLoginAt

	addr := valueobject.EmptyAddress()
	if u.Address != nil {
		addr = *u.Address
	}
	m.AddressStreet = addr.Street()
	m.AddressNumber = addr.Number()
	m.AddressApartment = addr.Apartment()
	m.AddressCommune = addr.Commune()
	m.AddressRegion = addr.Region()
	m.AddressPostalCode = addr.PostalCode()
}

// UserModelFromDomain creates a new persistence model from a domain User entity.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}
