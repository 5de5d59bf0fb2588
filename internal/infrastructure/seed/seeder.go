package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/identity"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const defaultMaxStock = 50

// Result counts what a run created and what it found already present.
type Result struct {
	AccountsCreated int
	AccountsSkipped int
	ProductsCreated int
	ProductsSkipped int
}

// Seeder applies a Plan through the domain repositories. Re-running a plan
// skips accounts whose username exists and products a seller already lists
// under the same name.
type Seeder struct {
	accounts identity.AccountRepository
	products catalog.ProductRepository
	logger   *zap.Logger
}

func NewSeeder(accounts identity.AccountRepository, products catalog.ProductRepository, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{accounts: accounts, products: products, logger: logger}
}

// Run seeds accounts first so products can reference their sellers.
func (s *Seeder) Run(ctx context.Context, plan *Plan) (Result, error) {
	var res Result
	sellers := make(map[string]*identity.Account)

	for _, a := range plan.Accounts {
		acc, created, err := s.ensureAccount(ctx, a)
		if err != nil {
			return res, err
		}
		if created {
			res.AccountsCreated++
		} else {
			res.AccountsSkipped++
		}
		if acc.Role == identity.RoleSeller {
			sellers[acc.Username] = acc
		}
	}

	for _, p := range plan.Products {
		var sellerID *uuid.UUID
		if p.Seller != "" {
			seller, err := s.lookupSeller(ctx, sellers, p.Seller)
			if err != nil {
				return res, err
			}
			sellerID = &seller.ID
		}
		created, err := s.ensureProduct(ctx, p.Name, decimal.RequireFromString(p.Price), p.Stock, sellerID)
		if err != nil {
			return res, err
		}
		if created {
			res.ProductsCreated++
		} else {
			res.ProductsSkipped++
		}
	}

	if plan.Fake.ProductsPerSeller > 0 {
		faker := gofakeit.New(plan.Fake.Seed)
		maxStock := plan.Fake.MaxStock
		if maxStock == 0 {
			maxStock = defaultMaxStock
		}
		for _, a := range plan.Accounts {
			seller, ok := sellers[a.Username]
			if !ok {
				continue
			}
			for range plan.Fake.ProductsPerSeller {
				price := decimal.NewFromFloat(faker.Price(1, 500)).Round(2)
				created, err := s.ensureProduct(ctx, faker.ProductName(), price, faker.IntRange(0, maxStock), &seller.ID)
				if err != nil {
					return res, err
				}
				if created {
					res.ProductsCreated++
				} else {
					res.ProductsSkipped++
				}
			}
		}
	}

	s.logger.Info("Seeding finished",
		zap.Int("accounts_created", res.AccountsCreated),
		zap.Int("accounts_skipped", res.AccountsSkipped),
		zap.Int("products_created", res.ProductsCreated),
		zap.Int("products_skipped", res.ProductsSkipped),
	)
	return res, nil
}

func (s *Seeder) ensureAccount(ctx context.Context, a AccountSeed) (*identity.Account, bool, error) {
	existing, err := s.accounts.GetByUsername(ctx, a.Username)
	switch {
	case err == nil:
		s.logger.Debug("Account exists", zap.String("username", a.Username))
		return existing, false, nil
	case !errors.Is(err, shared.ErrNotFound):
		return nil, false, fmt.Errorf("seed: look up %q: %w", a.Username, err)
	}

	role, err := identity.ParseRole(a.Role)
	if err != nil {
		return nil, false, err
	}
	acc, err := identity.NewAccount(a.Username, a.Password, a.Email, role)
	if err != nil {
		return nil, false, fmt.Errorf("seed: account %q: %w", a.Username, err)
	}
	if err := s.accounts.Create(ctx, acc); err != nil {
		return nil, false, fmt.Errorf("seed: create %q: %w", a.Username, err)
	}
	s.logger.Info("Account created", zap.String("username", acc.Username), zap.String("role", string(acc.Role)))
	return acc, true, nil
}

func (s *Seeder) lookupSeller(ctx context.Context, sellers map[string]*identity.Account, username string) (*identity.Account, error) {
	if acc, ok := sellers[username]; ok {
		return acc, nil
	}
	acc, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("seed: seller %q: %w", username, err)
	}
	if acc.Role != identity.RoleSeller {
		return nil, fmt.Errorf("%w: %q is a %s, not a seller", ErrInvalidPlan, username, acc.Role)
	}
	sellers[username] = acc
	return acc, nil
}

func (s *Seeder) ensureProduct(ctx context.Context, name string, price decimal.Decimal, stock int, sellerID *uuid.UUID) (bool, error) {
	listed, err := s.products.List(ctx, catalog.ProductFilter{SellerID: sellerID})
	if err != nil {
		return false, fmt.Errorf("seed: list products: %w", err)
	}
	for _, l := range listed {
		if l.Name == name && sameSeller(l.SellerID, sellerID) {
			return false, nil
		}
	}

	p, err := catalog.NewProduct(name, price, stock, sellerID)
	if err != nil {
		return false, fmt.Errorf("seed: product %q: %w", name, err)
	}
	if err := s.products.Create(ctx, p); err != nil {
		return false, fmt.Errorf("seed: create product %q: %w", name, err)
	}
	return true, nil
}

func sameSeller(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
