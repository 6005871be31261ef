package identity

import (
	"context"
	"errors"
	"time"

	"github.com/stockroom/backend/internal/application/event"
	"github.com/stockroom/backend/internal/domain/identity"
	"github.com/stockroom/backend/internal/domain/shared"
	"github.com/stockroom/backend/internal/domain/shared/valueobject"
	"github.com/stockroom/backend/internal/infrastructure/auth"
	"github.com/stockroom/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Error codes returned by AuthService
const (
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeAccountInactive    = "ACCOUNT_INACTIVE"
	CodeInvalidToken       = "INVALID_TOKEN"
)

// AuthService handles registration and token issuance
type AuthService struct {
	userRepo       identity.UserRepository
	roleRepo       identity.RoleRepository
	jwtService     *auth.JWTService
	blacklist      auth.TokenBlacklist
	eventPublisher shared.EventPublisher
}

// NewAuthService creates a new authentication service.
// blacklist may be nil, in which case Logout only succeeds without revoking.
func NewAuthService(
	userRepo identity.UserRepository,
	roleRepo identity.RoleRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		roleRepo:   roleRepo,
		jwtService: jwtService,
		blacklist:  blacklist,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *AuthService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Register creates a customer account holding the default role
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	return s.register(ctx, req, identity.RoleNameCustomer)
}

// CreateAdmin creates an administrator account. It is used by the CLI to bootstrap an installation.
func (s *AuthService) CreateAdmin(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	return s.register(ctx, req, identity.RoleNameAdmin)
}

func (s *AuthService) register(ctx context.Context, req RegisterRequest, roleName string) (*UserResponse, error) {
	user, err := identity.NewUser(identity.RegistrationParams{
		Email:          req.Email,
		RUT:            req.RUT,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		MotherLastName: req.MotherLastName,
		Phone:          req.Phone,
		Password:       req.Password,
	})
	if err != nil {
		return nil, err
	}

	if err := s.checkUnique(ctx, user); err != nil {
		return nil, err
	}

	role, err := s.roleRepo.FindByName(ctx, roleName)
	if err != nil {
		return nil, err
	}
	if err := user.AssignRole(role); err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email),
		zap.String("role", roleName))

	event.PublishPending(ctx, s.eventPublisher, user)

	resp := ToUserResponse(user)
	return &resp, nil
}

func (s *AuthService) checkUnique(ctx context.Context, user *identity.User) error {
	errs := shared.NewValidationError()

	exists, err := s.userRepo.ExistsByEmail(ctx, user.Email)
	if err != nil {
		return err
	}
	if exists {
		errs.Add("email", "an account with this email already exists")
	}

	exists, err = s.userRepo.ExistsByRUT(ctx, user.RUT)
	if err != nil {
		return err
	}
	if exists {
		errs.Add("rut", "an account with this RUT already exists")
	}

	return errs.OrNil()
}

// Login authenticates by email and password and returns a token pair
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	log := logger.L(ctx)
	email := valueobject.NormalizeEmail(req.Email)

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			log.Warn("Login attempt for unknown email", zap.String("email", email))
			return nil, invalidCredentials()
		}
		return nil, err
	}

	if !user.VerifyPassword(req.Password) {
		log.Warn("Invalid password attempt", zap.String("user_id", user.ID.String()))
		return nil, invalidCredentials()
	}

	// checked after the password so inactive accounts are not enumerable
	if !user.CanLogin() {
		log.Warn("Login attempt for inactive account", zap.String("user_id", user.ID.String()))
		return nil, shared.NewDomainError(CodeAccountInactive, "Account has been deactivated")
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}

	user.RecordLogin()
	if err := s.userRepo.Update(ctx, user); err != nil {
		// the login itself already succeeded
		log.Error("Failed to record login", zap.Error(err))
	}

	log.Info("User logged in", zap.String("user_id", user.ID.String()))
	return tokens, nil
}

// Refresh exchanges a valid refresh token for a new pair.
// The user is reloaded so role changes and deactivation take effect.
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest) (*TokenResponse, error) {
	claims, err := s.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, shared.WrapDomainError(CodeInvalidToken, "Invalid or expired refresh token", err)
	}

	if s.blacklist != nil {
		revoked, err := s.isRevoked(ctx, claims)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, shared.WrapDomainError(CodeInvalidToken, "Refresh token has been revoked", auth.ErrTokenRevoked)
		}
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, shared.WrapDomainError(CodeInvalidToken, "Invalid refresh token", err)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError(CodeInvalidToken, "Invalid refresh token")
		}
		return nil, err
	}
	if !user.CanLogin() {
		return nil, shared.NewDomainError(CodeAccountInactive, "Account has been deactivated")
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}

	// the old refresh token must not be reusable
	if s.blacklist != nil && claims.ID != "" {
		if err := s.blacklist.Revoke(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
			logger.L(ctx).Warn("Failed to revoke used refresh token", zap.Error(err))
		}
	}

	return tokens, nil
}

func (s *AuthService) isRevoked(ctx context.Context, claims *auth.Claims) (bool, error) {
	if claims.ID != "" {
		revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
		if err != nil || revoked {
			return revoked, err
		}
	}
	return s.blacklist.IsUserRevoked(ctx, claims.UserID, claims.GetIssuedAtTime())
}

// Logout revokes the access token identified by jti until it would expire anyway
func (s *AuthService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.blacklist == nil || jti == "" {
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.blacklist.Revoke(ctx, jti, ttl); err != nil {
		return err
	}
	logger.L(ctx).Info("Token revoked", zap.String("jti", jti))
	return nil
}

func (s *AuthService) issueTokens(user *identity.User) (*TokenResponse, error) {
	pair, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.RoleName,
		Staff:  user.IsStaff(),
	})
	if err != nil {
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens", err)
	}

	return &TokenResponse{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
		User:                  ToUserResponse(user),
	}, nil
}

func invalidCredentials() error {
	return shared.NewDomainError(CodeInvalidCredentials, "Invalid email or password")
}
