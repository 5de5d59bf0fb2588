package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopfront/backend/internal/domain/identity"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/infrastructure/auth"
	"github.com/shopfront/backend/internal/infrastructure/logger"
	"github.com/shopfront/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Auth context keys
const (
	AccountKey    = "auth_account"
	ClaimsKey     = "auth_claims"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// Authenticator resolves a bearer token to the account it was issued for
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*identity.Account, *auth.Claims, error)
}

// RequireAuth rejects requests without a valid bearer token with 401. The
// authenticated account is stored on the gin context and on the request
// context for logging.
func RequireAuth(authn Authenticator, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			abortAuth(c, log, shared.ErrUnauthorized.WithMessage("Missing or malformed authorization header"))
			return
		}

		account, claims, err := authn.Authenticate(c.Request.Context(), token)
		if err != nil {
			abortAuth(c, log, err)
			return
		}

		setAccount(c, account, claims)
		c.Next()
	}
}

// OptionalAuth attaches the account when a valid bearer token is present
// and otherwise lets the request through anonymously.
func OptionalAuth(authn Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if account, claims, err := authn.Authenticate(c.Request.Context(), token); err == nil {
				setAccount(c, account, claims)
			}
		}
		c.Next()
	}
}

// RequireRoles allows only the listed roles. Must run after RequireAuth.
func RequireRoles(roles ...identity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, ok := CurrentAccount(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeUnauthorized, "Authentication required", GetRequestID(c)))
			return
		}
		for _, r := range roles {
			if account.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeForbidden, "Your role cannot perform this action", GetRequestID(c)))
	}
}

// CurrentAccount returns the account set by RequireAuth or OptionalAuth
func CurrentAccount(c *gin.Context) (*identity.Account, bool) {
	v, exists := c.Get(AccountKey)
	if !exists {
		return nil, false
	}
	account, ok := v.(*identity.Account)
	return account, ok && account != nil
}

// GetClaims returns the access token claims of the current request
func GetClaims(c *gin.Context) *auth.Claims {
	if v, exists := c.Get(ClaimsKey); exists {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader(AuthHeaderKey)
	if !strings.HasPrefix(header, BearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
	return token, token != ""
}

func setAccount(c *gin.Context, account *identity.Account, claims *auth.Claims) {
	c.Set(AccountKey, account)
	c.Set(ClaimsKey, claims)
	ctx := logger.WithAccount(c.Request.Context(), account.ID.String(), account.Role.String())
	c.Request = c.Request.WithContext(ctx)
}

func abortAuth(c *gin.Context, log *zap.Logger, err error) {
	code := dto.ErrCodeUnauthorized
	message := "Authentication required"

	var de *shared.DomainError
	if errors.As(err, &de) {
		code = dto.NormalizeErrorCode(de.Code)
		message = de.Message
	}
	status := dto.GetHTTPStatus(code)
	// Only auth codes may produce 401; storage failures keep their own status.
	if status >= http.StatusInternalServerError {
		log.Error("Authentication backend failed", zap.Error(err), zap.String("path", c.Request.URL.Path))
	} else {
		status = http.StatusUnauthorized
		log.Debug("Authentication rejected", zap.String("code", code), zap.String("path", c.Request.URL.Path))
	}

	c.AbortWithStatusJSON(status, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}
