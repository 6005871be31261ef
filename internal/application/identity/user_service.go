package identity

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stockroom/backend/internal/application/event"
	"github.com/stockroom/backend/internal/domain/identity"
	"github.com/stockroom/backend/internal/domain/shared"
	"github.com/stockroom/backend/internal/infrastructure/auth"
	"github.com/stockroom/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// MaxAvatarSize is the largest accepted avatar upload in bytes
const MaxAvatarSize = 2 << 20

var avatarExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// AvatarStore persists avatar images in object storage
type AvatarStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	PresignGet(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)
	Delete(ctx context.Context, key string) error
}

// UserService manages profiles and role assignment
type UserService struct {
	userRepo       identity.UserRepository
	roleRepo       identity.RoleRepository
	avatars        AvatarStore
	blacklist      auth.TokenBlacklist
	tokenTTL       time.Duration
	eventPublisher shared.EventPublisher
}

// NewUserService creates a new UserService.
// avatars and blacklist may be nil.
func NewUserService(
	userRepo identity.UserRepository,
	roleRepo identity.RoleRepository,
	avatars AvatarStore,
	blacklist auth.TokenBlacklist,
	tokenTTL time.Duration,
) *UserService {
	return &UserService{
		userRepo:  userRepo,
		roleRepo:  roleRepo,
		avatars:   avatars,
		blacklist: blacklist,
		tokenTTL:  tokenTTL,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *UserService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Me returns the caller's profile
func (s *UserService) Me(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, user), nil
}

// UpdateProfile changes names, phone and address of the caller
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := user.UpdateProfile(identity.ProfileParams{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		MotherLastName: req.MotherLastName,
		Phone:          req.Phone,
	}); err != nil {
		return nil, err
	}

	switch {
	case req.Address != nil:
		addr, err := req.Address.toValueObject()
		if err != nil {
			return nil, shared.FieldError("address", err.Error())
		}
		user.SetAddress(&addr)
	case req.ClearAddress:
		user.SetAddress(nil)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return s.respond(ctx, user), nil
}

// SetAvatar uploads a new avatar image and removes the previous one
func (s *UserService) SetAvatar(ctx context.Context, userID uuid.UUID, upload AvatarUpload) (*UserResponse, error) {
	if s.avatars == nil {
		return nil, shared.NewDomainError("STORAGE_DISABLED", "Avatar uploads are not enabled")
	}

	ext, ok := avatarExtensions[strings.ToLower(upload.ContentType)]
	if !ok {
		return nil, shared.FieldError("avatar", "avatar must be a JPEG, PNG or WebP image")
	}
	if len(upload.Data) == 0 {
		return nil, shared.FieldError("avatar", "avatar file is empty")
	}
	if len(upload.Data) > MaxAvatarSize {
		return nil, shared.FieldError("avatar", fmt.Sprintf("avatar cannot exceed %d bytes", MaxAvatarSize))
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	key := path.Join("avatars", user.ID.String(), uuid.NewString()+ext)
	if err := s.avatars.Put(ctx, key, upload.Data, upload.ContentType); err != nil {
		return nil, fmt.Errorf("upload avatar: %w", err)
	}

	previous := user.AvatarKey
	if err := user.SetAvatar(key); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		_ = s.avatars.Delete(ctx, key)
		return nil, err
	}

	if previous != "" {
		if err := s.avatars.Delete(ctx, previous); err != nil {
			logger.L(ctx).Warn("Failed to delete previous avatar",
				zap.String("key", previous), zap.Error(err))
		}
	}

	return s.respond(ctx, user), nil
}

// ListUsers returns a page of users for staff
func (s *UserService) ListUsers(ctx context.Context, f UserListFilter) (*shared.Paginated[UserResponse], error) {
	filter := shared.DefaultFilter()
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	filter.Search = f.Search
	filter.Filters = map[string]interface{}{}
	if f.RoleID != "" {
		roleID, err := uuid.Parse(f.RoleID)
		if err != nil {
			return nil, shared.FieldError("role_id", "invalid role id")
		}
		filter.Filters[identity.FilterRoleID] = roleID
	}
	if f.Active != nil {
		filter.Filters[identity.FilterActive] = *f.Active
	}

	total, err := s.userRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	users, err := s.userRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]UserResponse, len(users))
	for i := range users {
		items[i] = *s.respond(ctx, &users[i])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// ListRoles returns every role
func (s *UserService) ListRoles(ctx context.Context) ([]RoleResponse, error) {
	roles, err := s.roleRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]RoleResponse, len(roles))
	for i, r := range roles {
		out[i] = RoleResponse{ID: r.ID, Name: r.Name, Staff: r.IsStaff()}
	}
	return out, nil
}

// AssignRole changes a user's role and revokes their outstanding tokens
func (s *UserService) AssignRole(ctx context.Context, userID uuid.UUID, req AssignRoleRequest) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	role, err := s.roleRepo.FindByID(ctx, req.RoleID)
	if err != nil {
		return nil, err
	}

	version := user.GetVersion()
	if err := user.AssignRole(role); err != nil {
		return nil, err
	}
	if user.GetVersion() == version {
		return s.respond(ctx, user), nil
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	if s.blacklist != nil {
		if err := s.blacklist.RevokeUser(ctx, user.ID.String(), s.tokenTTL); err != nil {
			logger.L(ctx).Error("Failed to revoke tokens after role change",
				zap.String("user_id", user.ID.String()), zap.Error(err))
		}
	}

	logger.L(ctx).Info("Role assigned",
		zap.String("user_id", user.ID.String()),
		zap.String("role", role.Name))

	event.PublishPending(ctx, s.eventPublisher, user)
	return s.respond(ctx, user), nil
}

// SetActive activates or deactivates an account
func (s *UserService) SetActive(ctx context.Context, userID uuid.UUID, active bool) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if active {
		err = user.Activate()
	} else {
		err = user.Deactivate()
	}
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	if !active && s.blacklist != nil {
		if err := s.blacklist.RevokeUser(ctx, user.ID.String(), s.tokenTTL); err != nil {
			logger.L(ctx).Error("Failed to revoke tokens of deactivated user", zap.Error(err))
		}
	}
	return s.respond(ctx, user), nil
}

func (s *UserService) respond(ctx context.Context, user *identity.User) *UserResponse {
	resp := ToUserResponse(user)
	if user.AvatarKey != "" && s.avatars != nil {
		url, _, err := s.avatars.PresignGet(ctx, user.AvatarKey, 0)
		if err != nil {
			logger.L(ctx).Warn("Failed to sign avatar URL", zap.Error(err))
		} else {
			resp.AvatarURL = url
		}
	}
	return &resp
}
