package identity

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stockroom/backend/internal/domain/shared"
	"github.com/stockroom/backend/internal/domain/shared/valueobject"
	"golang.org/x/crypto/bcrypt"
)

// Password cost for bcrypt
const bcryptCost = 12

// User represents a registered account.
// It is the aggregate root for user-related operations; the email is the login.
type User struct {
	shared.BaseAggregateRoot
	Email          string
	RUT            string
	FirstName      string
	LastName       string
	MotherLastName string
	Phone          string
	AvatarKey      string
	PasswordHash   string
	RoleID         *uuid.UUID
	RoleName       string // loaded by repository, empty when the role is unset
	Address        *valueobject.Address
	Active         bool
	LastLoginAt    *time.Time
}

// RegistrationParams carries the fields of a new account
type RegistrationParams struct {
	Email          string
	RUT            string
	FirstName      string
	LastName       string
	MotherLastName string
	Phone          string
	Password       string
}

// ProfileParams are the fields a user may change on their own profile
type ProfileParams struct {
	FirstName      string
	LastName       string
	MotherLastName string
	Phone          string
}

// NewUser creates an active user. The role is assigned separately.
func NewUser(params RegistrationParams) (*User, error) {
	errs := shared.NewValidationError()

	email := normalizeEmail(params.Email)
	if err := validateEmail(email); err != "" {
		errs.Add("email", err)
	}

	var rut valueobject.RUT
	if strings.TrimSpace(params.RUT) == "" {
		errs.Add("rut", "RUT is required")
	} else {
		parsed, err := valueobject.ParseRUT(params.RUT)
		if err != nil {
			errs.Add("rut", err.Error())
		}
		rut = parsed
	}

	validateProfile(errs, ProfileParams{
		FirstName:      params.FirstName,
		LastName:       params.LastName,
		MotherLastName: params.MotherLastName,
		Phone:          params.Phone,
	})

	if msg := validatePassword(params.Password); msg != "" {
		errs.Add("password", msg)
	}
	if err := errs.OrNil(); err != nil {
		return nil, err
	}

	passwordHash, err := hashPassword(params.Password)
	if err != nil {
		return nil, shared.WrapDomainError("PASSWORD_HASH_ERROR", "Failed to hash password", err)
	}

	user := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             email,
		RUT:               rut.String(),
		FirstName:         strings.TrimSpace(params.FirstName),
		LastName:          strings.TrimSpace(params.LastName),
		MotherLastName:    strings.TrimSpace(params.MotherLastName),
		Phone:             strings.TrimSpace(params.Phone),
		PasswordHash:      passwordHash,
		Active:            true,
	}

	user.AddDomainEvent(NewUserRegisteredEvent(user))

	return user, nil
}

// FullName joins the name parts that are set
func (u *User) FullName() string {
	parts := []string{u.FirstName, u.LastName}
	if u.MotherLastName != "" {
		parts = append(parts, u.MotherLastName)
	}
	return strings.Join(parts, " ")
}

// UpdateProfile changes the personal data. Email and RUT stay fixed.
func (u *User) UpdateProfile(params ProfileParams) error {
	errs := shared.NewValidationError()
	validateProfile(errs, params)
	if err := errs.OrNil(); err != nil {
		return err
	}

	u.FirstName = strings.TrimSpace(params.FirstName)
	u.LastName = strings.TrimSpace(params.LastName)
	u.MotherLastName = strings.TrimSpace(params.MotherLastName)
	u.Phone = strings.TrimSpace(params.Phone)
	u.Touch()
	u.IncrementVersion()

	return nil
}

// SetAddress replaces the postal address; nil clears it
func (u *User) SetAddress(address *valueobject.Address) {
	if address != nil && address.IsEmpty() {
		address = nil
	}
	u.Address = address
	u.Touch()
	u.IncrementVersion()
}

// SetAvatar sets the object storage key of the user's avatar
func (u *User) SetAvatar(key string) error {
	if utf8.RuneCountInString(key) > 500 {
		return shared.FieldError("avatar", "avatar key cannot exceed 500 characters")
	}

	u.AvatarKey = key
	u.Touch()
	u.IncrementVersion()

	return nil
}

// SetPassword sets a new password
func (u *User) SetPassword(newPassword string) error {
	if msg := validatePassword(newPassword); msg != "" {
		return shared.FieldError("password", msg)
	}

	passwordHash, err := hashPassword(newPassword)
	if err != nil {
		return shared.WrapDomainError("PASSWORD_HASH_ERROR", "Failed to hash password", err)
	}

	u.PasswordHash = passwordHash
	u.Touch()
	u.IncrementVersion()

	return nil
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// AssignRole sets the user's single role
func (u *User) AssignRole(role *Role) error {
	if role == nil || role.ID == uuid.Nil {
		return shared.FieldError("role_id", "role is required")
	}
	if u.RoleID != nil && *u.RoleID == role.ID {
		return nil
	}

	oldRole := u.RoleName
	roleID := role.ID
	u.RoleID = &roleID
	u.RoleName = role.Name
	u.Touch()
	u.IncrementVersion()

	u.AddDomainEvent(NewUserRoleAssignedEvent(u, oldRole))

	return nil
}

// IsStaff reports whether the user's role grants back-office access
func (u *User) IsStaff() bool {
	return IsStaffRole(u.RoleName)
}

// IsAdmin reports whether the user holds the administrator role
func (u *User) IsAdmin() bool {
	return u.RoleName == RoleNameAdmin
}

// RecordLogin stamps the last successful login
func (u *User) RecordLogin() {
	now := time.Now()
	u.LastLoginAt = &now
}

// Deactivate blocks further logins
func (u *User) Deactivate() error {
	if !u.Active {
		return shared.NewInvalidStateError("user is already deactivated")
	}
	u.Active = false
	u.Touch()
	u.IncrementVersion()
	return nil
}

// Activate re-enables a deactivated user
func (u *User) Activate() error {
	if u.Active {
		return shared.NewInvalidStateError("user is already active")
	}
	u.Active = true
	u.Touch()
	u.IncrementVersion()
	return nil
}

// CanLogin checks if the user is allowed to log in
func (u *User) CanLogin() bool {
	return u.Active
}

func normalizeEmail(email string) string {
	return valueobject.NormalizeEmail(email)
}

func validateEmail(email string) string {
	if email == "" {
		return "email is required"
	}
	if !valueobject.IsValidEmail(email) {
		return "email format is invalid"
	}
	return ""
}

func validateProfile(errs *shared.ValidationError, params ProfileParams) {
	first := strings.TrimSpace(params.FirstName)
	last := strings.TrimSpace(params.LastName)
	if first == "" {
		errs.Add("first_name", "first name is required")
	} else if utf8.RuneCountInString(first) > 150 {
		errs.Add("first_name", "first name cannot exceed 150 characters")
	}
	if last == "" {
		errs.Add("last_name", "last name is required")
	} else if utf8.RuneCountInString(last) > 150 {
		errs.Add("last_name", "last name cannot exceed 150 characters")
	}
	if utf8.RuneCountInString(strings.TrimSpace(params.MotherLastName)) > 100 {
		errs.Add("mother_last_name", "mother's last name cannot exceed 100 characters")
	}
	if phone := strings.TrimSpace(params.Phone); phone != "" && !valueobject.IsValidPhone(phone) {
		errs.Add("phone", "phone number format is invalid")
	}
}

func validatePassword(password string) string {
	if password == "" {
		return "password is required"
	}
	if len(password) < 8 {
		return "password must be at least 8 characters"
	}
	if len(password) > 72 {
		return "password cannot exceed 72 characters"
	}
	return ""
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
