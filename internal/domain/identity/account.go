package identity

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Password cost for bcrypt
const bcryptCost = 12

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-.]+$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	letterRegex   = regexp.MustCompile(`[a-zA-Z]`)
	digitRegex    = regexp.MustCompile(`[0-9]`)
)

// Account is a registered user of the shop.
// It is the aggregate root for the Account Directory.
type Account struct {
	shared.BaseAggregateRoot
	Username     string
	PasswordHash string
	Email        string
	Role         Role
}

// NewAccount creates an account with a hashed password
func NewAccount(username, password, email string, role Role) (*Account, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, shared.ErrInvalidInput.WithMessage("Unknown role: %s", role)
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email != "" {
		if err := validateEmail(email); err != nil {
			return nil, err
		}
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	account := &Account{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Username:          strings.TrimSpace(username),
		PasswordHash:      passwordHash,
		Email:             email,
		Role:              role,
	}
	account.AddDomainEvent(NewAccountRegisteredEvent(account))

	return account, nil
}

// VerifyPassword checks password against the stored hash
func (a *Account) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) == nil
}

// Is reports whether the account is the one identified by id
func (a *Account) Is(id uuid.UUID) bool {
	return a != nil && a.ID == id
}

func validateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return shared.ErrInvalidInput.WithMessage("Username cannot be empty")
	}
	if len(username) < 3 {
		return shared.ErrInvalidInput.WithMessage("Username must be at least 3 characters")
	}
	if len(username) > 100 {
		return shared.ErrInvalidInput.WithMessage("Username cannot exceed 100 characters")
	}
	if !usernameRegex.MatchString(username) {
		return shared.ErrInvalidInput.WithMessage("Username can only contain letters, numbers, underscores, hyphens, and dots")
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return shared.ErrInvalidInput.WithMessage("Password cannot be empty")
	}
	if len(password) < 6 {
		return shared.ErrInvalidInput.WithMessage("Password must be at least 6 characters")
	}
	if len(password) > 72 {
		// bcrypt ignores everything past 72 bytes
		return shared.ErrInvalidInput.WithMessage("Password cannot exceed 72 characters")
	}
	if !letterRegex.MatchString(password) || !digitRegex.MatchString(password) {
		return shared.ErrInvalidInput.WithMessage("Password must contain at least one letter and one number")
	}
	return nil
}

func validateEmail(email string) error {
	if len(email) > 200 {
		return shared.ErrInvalidInput.WithMessage("Email cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.ErrInvalidInput.WithMessage("Invalid email format")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
