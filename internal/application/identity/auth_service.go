package identity

import (
	"context"
	"errors"

	"github.com/shopfront/backend/internal/domain/identity"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// Authentication failures. All map to 401.
var (
	ErrInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	ErrTokenExpired       = shared.NewDomainError("TOKEN_EXPIRED", "Token has expired")
	ErrTokenInvalid       = shared.NewDomainError("TOKEN_INVALID", "Invalid token")
	ErrTokenRevoked       = shared.NewDomainError("TOKEN_REVOKED", "Token has been revoked")
	ErrTokenMaxRefresh    = shared.NewDomainError("TOKEN_MAX_REFRESH", "Maximum token refresh count exceeded. Please log in again")
)

// AuthService handles registration, login and the token lifecycle
type AuthService struct {
	accounts  identity.AccountRepository
	tokens    *auth.JWTService
	blacklist auth.TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	accounts identity.AccountRepository,
	tokens *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		accounts:  accounts,
		tokens:    tokens,
		blacklist: blacklist,
		logger:    logger,
	}
}

// Register creates a Customer or Seller account. Admins cannot self-register.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AccountInfo, error) {
	role, err := identity.ParseRole(input.Role)
	if err != nil {
		return nil, err
	}
	if !role.IsSelfAssignable() {
		return nil, shared.ErrForbidden.WithMessage("%s accounts cannot be self-registered", role)
	}

	exists, err := s.accounts.ExistsByUsername(ctx, input.Username)
	if err != nil {
		return nil, shared.WrapStorage(err)
	}
	if exists {
		return nil, shared.ErrAlreadyExists.WithMessage("Username %s is already taken", input.Username)
	}

	account, err := identity.NewAccount(input.Username, input.Password, input.Email, role)
	if err != nil {
		return nil, err
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, shared.WrapStorage(err)
	}

	s.logger.Info("Account registered",
		zap.String("account_id", account.ID.String()),
		zap.String("username", account.Username),
		zap.String("role", role.String()))

	info := toAccountInfo(account)
	return &info, nil
}

// Login verifies the password and issues a token pair. An unknown username
// and a wrong password fail identically.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	account, err := s.accounts.GetByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Info("Login failed", zap.String("username", input.Username), zap.String("reason", "unknown user"))
			return nil, ErrInvalidCredentials
		}
		return nil, shared.WrapStorage(err)
	}
	if !account.VerifyPassword(input.Password) {
		s.logger.Info("Login failed", zap.String("username", input.Username), zap.String("reason", "bad password"))
		return nil, ErrInvalidCredentials
	}

	pair, err := s.tokens.GenerateTokenPair(subjectOf(account))
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, err
	}

	s.logger.Info("User logged in", zap.String("account_id", account.ID.String()))
	return &LoginResult{Tokens: pair, Account: toAccountInfo(account)}, nil
}

// Refresh rotates a refresh token: the presented one is revoked and a new pair
// carrying the account's current role is issued.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, mapTokenError(err)
	}
	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, err
	}

	userID, err := claims.UserUUID()
	if err != nil {
		return nil, ErrTokenInvalid
	}
	account, err := s.accounts.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrTokenInvalid.WithMessage("Account no longer exists")
		}
		return nil, shared.WrapStorage(err)
	}

	pair, err := s.tokens.RefreshTokenPair(refreshToken, subjectOf(account))
	if err != nil {
		return nil, mapTokenError(err)
	}
	if err := s.blacklist.Revoke(ctx, claims.ID, claims.RemainingTTL()); err != nil {
		s.logger.Warn("Failed to revoke rotated refresh token", zap.Error(err))
	}

	s.logger.Info("Token refreshed",
		zap.String("account_id", account.ID.String()),
		zap.Int("refresh_count", claims.RefreshCount+1))
	return &LoginResult{Tokens: pair, Account: toAccountInfo(account)}, nil
}

// Logout revokes the access token and, when given, the refresh token
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	if input.AccessClaims == nil {
		return ErrTokenInvalid
	}
	if err := s.blacklist.Revoke(ctx, input.AccessClaims.ID, input.AccessClaims.RemainingTTL()); err != nil {
		return shared.WrapStorage(err)
	}
	if input.RefreshToken != "" {
		if rc, err := s.tokens.ValidateRefreshToken(input.RefreshToken); err == nil && rc.UserID == input.AccessClaims.UserID {
			if err := s.blacklist.Revoke(ctx, rc.ID, rc.RemainingTTL()); err != nil {
				return shared.WrapStorage(err)
			}
		}
	}
	s.logger.Info("User logged out", zap.String("account_id", input.AccessClaims.UserID))
	return nil
}

// Authenticate validates an access token and loads the account it names.
// The account is re-read so that role changes and deletions apply at once.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*identity.Account, *auth.Claims, error) {
	claims, err := s.tokens.ValidateAccessToken(accessToken)
	if err != nil {
		return nil, nil, mapTokenError(err)
	}
	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, nil, err
	}
	userID, err := claims.UserUUID()
	if err != nil {
		return nil, nil, ErrTokenInvalid
	}
	account, err := s.accounts.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil, ErrTokenInvalid.WithMessage("Account no longer exists")
		}
		return nil, nil, shared.WrapStorage(err)
	}
	return account, claims, nil
}

// Me returns the dashboard view of an account
func (s *AuthService) Me(account *identity.Account) AccountInfo {
	return toAccountInfo(account)
}

func (s *AuthService) checkRevoked(ctx context.Context, claims *auth.Claims) error {
	revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		// Fail closed.
		s.logger.Error("Token blacklist check failed", zap.Error(err))
		return shared.WrapStorage(err)
	}
	if revoked {
		return ErrTokenRevoked
	}
	return nil
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return ErrTokenExpired
	case errors.Is(err, auth.ErrMaxRefreshExceeded):
		return ErrTokenMaxRefresh
	case errors.Is(err, auth.ErrTokenBlacklisted):
		return ErrTokenRevoked
	default:
		return ErrTokenInvalid
	}
}
