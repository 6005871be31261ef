package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockroom/backend/internal/domain/shared"
)

// Filter keys understood by UserRepository.FindAll / Count
const (
	FilterRoleID = "role_id"
	FilterActive = "active"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// FindByID finds a user by ID, with the role name loaded
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByEmail finds a user by (normalized) email
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindAll returns users matching the filter; Search covers email, names and RUT
	FindAll(ctx context.Context, filter shared.Filter) ([]User, error)

	// Count counts users matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// FindStaff returns every active user holding a staff role
	FindStaff(ctx context.Context) ([]User, error)

	// ExistsByEmail checks if an email is already registered
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// ExistsByRUT checks if a RUT is already registered
	ExistsByRUT(ctx context.Context, rut string) (bool, error)

	// Create inserts a new user
	Create(ctx context.Context, user *User) error

	// Update saves an existing user
	Update(ctx context.Context, user *User) error
}

// RoleRepository defines the interface for role persistence
type RoleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Role, error)
	FindByName(ctx context.Context, name string) (*Role, error)
	FindAll(ctx context.Context) ([]Role, error)
	Save(ctx context.Context, role *Role) error
}
