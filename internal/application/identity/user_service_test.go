package identity

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stockroom/backend/internal/domain/identity"
	"github.com/stockroom/backend/internal/domain/shared"
	"github.com/stockroom/backend/internal/infrastructure/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUserService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepository)
	user := createTestUser(identity.RoleNameCustomer)
	userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
	userRepo.On("Update", ctx, user).Return(nil)

	svc := NewUserService(userRepo, new(MockRoleRepository), nil, nil, time.Hour)

	resp, err := svc.UpdateProfile(ctx, user.ID, UpdateProfileRequest{
		FirstName: "Ana María",
		LastName:  "Rojas",
		Phone:     "+56 9 8765 4321",
		Address: &AddressInput{
			Street:  "Av. Providencia",
			Number:  "1234",
			Commune: "Providencia",
			Region:  "Metropolitana",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana María", resp.FirstName)
	require.NotNil(t, resp.Address)
	assert.Equal(t, "Providencia", resp.Address.Commune())

	t.Run("clear address", func(t *testing.T) {
		resp, err := svc.UpdateProfile(ctx, user.ID, UpdateProfileRequest{
			FirstName:    "Ana",
			LastName:     "Rojas",
			ClearAddress: true,
		})
		require.NoError(t, err)
		assert.Nil(t, resp.Address)
	})

	t.Run("invalid address is a field error", func(t *testing.T) {
		_, err := svc.UpdateProfile(ctx, user.ID, UpdateProfileRequest{
			FirstName: "Ana",
			LastName:  "Rojas",
			Address:   &AddressInput{Street: "", Number: "1", Commune: "Ñuñoa", Region: "RM"},
		})
		var verr *shared.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "address")
	})
}

func TestUserService_SetAvatar(t *testing.T) {
	ctx := context.Background()
	user := createTestUser(identity.RoleNameCustomer)
	user.AvatarKey = "avatars/old.png"

	userRepo := new(MockUserRepository)
	userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
	userRepo.On("Update", ctx, user).Return(nil)

	store := new(MockAvatarStore)
	prefix := "avatars/" + user.ID.String() + "/"
	store.On("Put", ctx, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, prefix) && strings.HasSuffix(key, ".png")
	}), []byte("png-bytes"), "image/png").Return(nil)
	store.On("Delete", ctx, "avatars/old.png").Return(nil)
	store.On("PresignGet", ctx, mock.AnythingOfType("string"), time.Duration(0)).
		Return("https://cdn.example/avatar", time.Now().Add(time.Minute), nil)

	svc := NewUserService(userRepo, new(MockRoleRepository), store, nil, time.Hour)
	resp, err := svc.SetAvatar(ctx, user.ID, AvatarUpload{
		Filename:    "me.png",
		ContentType: "image/png",
		Data:        []byte("png-bytes"),
	})

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(user.AvatarKey, prefix))
	assert.Equal(t, "https://cdn.example/avatar", resp.AvatarURL)
	store.AssertExpectations(t)
}

func TestUserService_SetAvatar_Rejects(t *testing.T) {
	ctx := context.Background()
	store := new(MockAvatarStore)
	svc := NewUserService(new(MockUserRepository), new(MockRoleRepository), store, nil, time.Hour)

	tests := []struct {
		name   string
		upload AvatarUpload
	}{
		{"unsupported type", AvatarUpload{ContentType: "application/pdf", Data: []byte("x")}},
		{"empty file", AvatarUpload{ContentType: "image/jpeg"}},
		{"too large", AvatarUpload{ContentType: "image/jpeg", Data: make([]byte, MaxAvatarSize+1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SetAvatar(ctx, uuid.New(), tt.upload)
			assert.ErrorIs(t, err, shared.ErrValidation)
		})
	}
	store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	t.Run("storage disabled", func(t *testing.T) {
		svc := NewUserService(new(MockUserRepository), new(MockRoleRepository), nil, nil, time.Hour)
		_, err := svc.SetAvatar(ctx, uuid.New(), AvatarUpload{ContentType: "image/png", Data: []byte("x")})
		assert.Equal(t, "STORAGE_DISABLED", domainCode(t, err))
	})
}

func TestUserService_SetAvatar_RemovesUploadWhenSaveFails(t *testing.T) {
	ctx := context.Background()
	user := createTestUser(identity.RoleNameCustomer)

	userRepo := new(MockUserRepository)
	userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
	userRepo.On("Update", ctx, user).Return(errors.New("db down"))

	store := new(MockAvatarStore)
	store.On("Put", ctx, mock.AnythingOfType("string"), mock.Anything, "image/webp").Return(nil)
	store.On("Delete", ctx, mock.AnythingOfType("string")).Return(nil)

	svc := NewUserService(userRepo, new(MockRoleRepository), store, nil, time.Hour)
	_, err := svc.SetAvatar(ctx, user.ID, AvatarUpload{ContentType: "image/webp", Data: []byte("webp")})

	require.Error(t, err)
	store.AssertNumberOfCalls(t, "Delete", 1)
}

func TestUserService_AssignRole(t *testing.T) {
	ctx := context.Background()
	user := createTestUser(identity.RoleNameCustomer)
	warehouse := createTestRole(identity.RoleNameWarehouse)

	userRepo := new(MockUserRepository)
	userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
	userRepo.On("Update", ctx, user).Return(nil)
	roleRepo := new(MockRoleRepository)
	roleRepo.On("FindByID", ctx, warehouse.ID).Return(warehouse, nil)

	blacklist := auth.NewInMemoryTokenBlacklist()
	issuedBefore := time.Now().Add(-time.Second)

	svc := NewUserService(userRepo, roleRepo, nil, blacklist, time.Hour)
	resp, err := svc.AssignRole(ctx, user.ID, AssignRoleRequest{RoleID: warehouse.ID})

	require.NoError(t, err)
	assert.Equal(t, identity.RoleNameWarehouse, resp.Role)
	assert.True(t, resp.Staff)

	invalidated, err := blacklist.IsUserRevoked(ctx, user.ID.String(), issuedBefore)
	require.NoError(t, err)
	assert.True(t, invalidated)

	t.Run("same role is a no-op", func(t *testing.T) {
		_, err := svc.AssignRole(ctx, user.ID, AssignRoleRequest{RoleID: warehouse.ID})
		require.NoError(t, err)
		userRepo.AssertNumberOfCalls(t, "Update", 1)
	})

	t.Run("unknown role", func(t *testing.T) {
		missing := uuid.New()
		roleRepo.On("FindByID", ctx, missing).Return(nil, shared.NewNotFoundError("Role", missing))
		_, err := svc.AssignRole(ctx, user.ID, AssignRoleRequest{RoleID: missing})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestUserService_ListUsers(t *testing.T) {
	ctx := context.Background()
	roleID := uuid.New()
	active := true
	user := createTestUser(identity.RoleNameCustomer)

	userRepo := new(MockUserRepository)
	matchFilter := mock.MatchedBy(func(f shared.Filter) bool {
		return f.Page == 2 && f.PageSize == 10 && f.Search == "rojas" &&
			f.Filters[identity.FilterRoleID] == roleID && f.Filters[identity.FilterActive] == true
	})
	userRepo.On("Count", ctx, matchFilter).Return(int64(11), nil)
	userRepo.On("FindAll", ctx, matchFilter).Return([]identity.User{*user}, nil)

	svc := NewUserService(userRepo, new(MockRoleRepository), nil, nil, time.Hour)
	page, err := svc.ListUsers(ctx, UserListFilter{
		Page: 2, PageSize: 10, Search: "rojas", RoleID: roleID.String(), Active: &active,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(11), page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, user.Email, page.Items[0].Email)

	_, err = svc.ListUsers(ctx, UserListFilter{RoleID: "nope"})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestUserService_SetActive(t *testing.T) {
	ctx := context.Background()
	user := createTestUser(identity.RoleNameCustomer)
	userRepo := new(MockUserRepository)
	userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
	userRepo.On("Update", ctx, user).Return(nil)

	svc := NewUserService(userRepo, new(MockRoleRepository), nil, auth.NewInMemoryTokenBlacklist(), time.Hour)

	resp, err := svc.SetActive(ctx, user.ID, false)
	require.NoError(t, err)
	assert.False(t, resp.Active)

	_, err = svc.SetActive(ctx, user.ID, false)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}
