package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/stockroom/backend/internal/domain/identity"
	"github.com/stockroom/backend/internal/domain/shared/valueobject"
)

// RegisterRequest is the payload of a new customer account
type RegisterRequest struct {
	Email          string `json:"email" binding:"required,email,max=254"`
	RUT            string `json:"rut" binding:"required,rut"`
	FirstName      string `json:"first_name" binding:"required,max=50"`
	LastName       string `json:"last_name" binding:"required,max=50"`
	MotherLastName string `json:"mother_last_name" binding:"omitempty,max=50"`
	Phone          string `json:"phone" binding:"omitempty,phone"`
	Password       string `json:"password" binding:"required,min=8,max=72"`
}

// LoginRequest holds login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries a refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// AddressInput is a postal address in requests
type AddressInput struct {
	Street     string `json:"street" binding:"required,max=100"`
	Number     string `json:"number" binding:"required,max=10"`
	Apartment  string `json:"apartment" binding:"omitempty,max=10"`
	Commune    string `json:"commune" binding:"required,max=50"`
	Region     string `json:"region" binding:"required,max=50"`
	PostalCode string `json:"postal_code" binding:"omitempty,max=10"`
}

func (a AddressInput) toValueObject() (valueobject.Address, error) {
	return valueobject.NewAddress(a.Street, a.Number, a.Commune, a.Region,
		valueobject.WithApartment(a.Apartment),
		valueobject.WithPostalCode(a.PostalCode),
	)
}

// UpdateProfileRequest changes the caller's own profile.
// A nil Address leaves the stored address untouched.
type UpdateProfileRequest struct {
	FirstName      string        `json:"first_name" binding:"required,max=50"`
	LastName       string        `json:"last_name" binding:"required,max=50"`
	MotherLastName string        `json:"mother_last_name" binding:"omitempty,max=50"`
	Phone          string        `json:"phone" binding:"omitempty,phone"`
	Address        *AddressInput `json:"address"`
	ClearAddress   bool          `json:"clear_address"`
}

// AvatarUpload is an uploaded avatar image
type AvatarUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// AssignRoleRequest sets a user's role
type AssignRoleRequest struct {
	RoleID uuid.UUID `json:"role_id" binding:"required"`
}

// UserListFilter filters the staff user listing
type UserListFilter struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Search   string `form:"search" binding:"omitempty,max=100"`
	RoleID   string `form:"role_id" binding:"omitempty,uuid"`
	Active   *bool  `form:"active"`
}

// UserResponse is the public view of a user
type UserResponse struct {
	ID             uuid.UUID            `json:"id"`
	Email          string               `json:"email"`
	RUT            string               `json:"rut"`
	FirstName      string               `json:"first_name"`
	LastName       string               `json:"last_name"`
	MotherLastName string               `json:"mother_last_name,omitempty"`
	Phone          string               `json:"phone,omitempty"`
	AvatarURL      string               `json:"avatar_url,omitempty"`
	Role           string               `json:"role,omitempty"`
	Staff          bool                 `json:"staff"`
	Active         bool                 `json:"active"`
	Address        *valueobject.Address `json:"address,omitempty"`
	LastLoginAt    *time.Time           `json:"last_login_at,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
}

// ToUserResponse converts a domain user; the avatar URL is filled by the caller
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:             u.ID,
		Email:          u.Email,
		RUT:            u.RUT,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		MotherLastName: u.MotherLastName,
		Phone:          u.Phone,
		Role:           u.RoleName,
		Staff:          u.IsStaff(),
		Active:         u.Active,
		Address:        u.Address,
		LastLoginAt:    u.LastLoginAt,
		CreatedAt:      u.CreatedAt,
	}
}

// RoleResponse is the public view of a role
type RoleResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Staff bool      `json:"staff"`
}

// TokenResponse is returned by login and refresh
type TokenResponse struct {
	AccessToken           string       `json:"access_token"`
	RefreshToken          string       `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time    `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time    `json:"refresh_token_expires_at"`
	TokenType             string       `json:"token_type"`
	User                  UserResponse `json:"user"`
}
