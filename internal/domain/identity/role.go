package identity

import (
	"strings"
	"unicode/utf8"

	"github.com/stockroom/backend/internal/domain/shared"
)

// Seeded role names
const (
	RoleNameAdmin     = "Administrador"
	RoleNameWarehouse = "Bodeguero"
	RoleNameCustomer  = "Cliente"
)

// DefaultRoleNames lists the roles every installation starts with
func DefaultRoleNames() []string {
	return []string{RoleNameAdmin, RoleNameWarehouse, RoleNameCustomer}
}

// IsStaffRole reports whether a role name grants back-office access
func IsStaffRole(name string) bool {
	return name == RoleNameAdmin || name == RoleNameWarehouse
}

// Role is a named access level. A user holds at most one.
type Role struct {
	shared.BaseEntity
	Name string
}

// NewRole creates a role
func NewRole(name string) (*Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.FieldError("name", "role name is required")
	}
	if utf8.RuneCountInString(name) > 50 {
		return nil, shared.FieldError("name", "role name cannot exceed 50 characters")
	}
	return &Role{BaseEntity: shared.NewBaseEntity(), Name: name}, nil
}

// IsStaff reports whether the role grants back-office access
func (r *Role) IsStaff() bool {
	return IsStaffRole(r.Name)
}
