package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/identity"
	"github.com/shopfront/backend/internal/infrastructure/auth"
)

// RegisterInput contains the input for self-registration
type RegisterInput struct {
	Username string
	Password string
	Email    string
	Role     string // Customer or Seller, empty means Customer
}

// LoginInput contains the input for user login
type LoginInput struct {
	Username string
	Password string
}

// LoginResult is a fresh token pair plus the account it was issued for
type LoginResult struct {
	Tokens  *auth.TokenPair
	Account AccountInfo
}

// LogoutInput identifies the tokens to revoke. RefreshToken is optional.
type LogoutInput struct {
	AccessClaims *auth.Claims
	RefreshToken string
}

// AccountInfo is the public view of an account
type AccountInfo struct {
	ID        uuid.UUID
	Username  string
	Email     string
	Role      identity.Role
	CreatedAt time.Time
}

func toAccountInfo(a *identity.Account) AccountInfo {
	return AccountInfo{
		ID:        a.ID,
		Username:  a.Username,
		Email:     a.Email,
		Role:      a.Role,
		CreatedAt: a.CreatedAt,
	}
}

func subjectOf(a *identity.Account) auth.Subject {
	return auth.Subject{UserID: a.ID, Username: a.Username, Role: a.Role.String()}
}
