package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/identity"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAccountRepository implements identity.AccountRepository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

var _ identity.AccountRepository = (*GormAccountRepository)(nil)

func (r *GormAccountRepository) Create(ctx context.Context, account *identity.Account) error {
	err := r.db.WithContext(ctx).Create(models.AccountModelFromDomain(account)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrAlreadyExists.WithMessage("Username %q is already taken", account.Username)
	}
	return err
}

func (r *GormAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*identity.Account, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *GormAccountRepository) GetByUsername(ctx context.Context, username string) (*identity.Account, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *GormAccountRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.AccountModel{}).
		Where("username = ?", username).
		Count(&count).Error
	return count > 0, err
}

func (r *GormAccountRepository) first(ctx context.Context, query string, arg any) (*identity.Account, error) {
	var model models.AccountModel
	if err := r.db.WithContext(ctx).Where(query, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}
