package models

import (
	"github.com/shopfront/backend/internal/domain/identity"
)

// AccountModel maps the accounts table.
type AccountModel struct {
	BaseModel
	Username     string `gorm:"type:varchar(100);not null;uniqueIndex"`
	PasswordHash string `gorm:"type:varchar(255);not null"`
	Email        string `gorm:"type:varchar(255)"`
	Role         string `gorm:"type:varchar(20);not null;default:Customer"`
}

func (AccountModel) TableName() string {
	return "accounts"
}

// ToDomain converts the row to an Account. The role was checked on write.
func (m *AccountModel) ToDomain() *identity.Account {
	return &identity.Account{
		BaseAggregateRoot: m.toAggregate(),
		Username:          m.Username,
		PasswordHash:      m.PasswordHash,
		Email:             m.Email,
		Role:              identity.Role(m.Role),
	}
}

// AccountModelFromDomain builds a row from an Account.
func AccountModelFromDomain(a *identity.Account) *AccountModel {
	m := &AccountModel{
		Username:     a.Username,
		PasswordHash: a.PasswordHash,
		Email:        a.Email,
		Role:         a.Role.String(),
	}
	m.fromEntity(a.BaseEntity)
	return m
}
