package identity

import (
	"context"
	"errors"

	"github.com/stockroom/backend/internal/domain/identity"
	"github.com/stockroom/backend/internal/domain/shared"
	"github.com/stockroom/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// EnsureDefaultRoles creates whichever default roles are missing and returns how many it added
func EnsureDefaultRoles(ctx context.Context, roles identity.RoleRepository) (int, error) {
	created := 0
	for _, name := range identity.DefaultRoleNames() {
		_, err := roles.FindByName(ctx, name)
		if err == nil {
			continue
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return created, err
		}

		role, err := identity.NewRole(name)
		if err != nil {
			return created, err
		}
		if err := roles.Save(ctx, role); err != nil {
			return created, err
		}
		created++
		logger.L(ctx).Info("Role created", zap.String("role", name))
	}
	return created, nil
}
