// Package seed loads demo accounts and products into an empty store.
package seed

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/shopfront/backend/internal/domain/identity"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// ErrInvalidPlan is returned when a seed file fails validation.
var ErrInvalidPlan = errors.New("seed: invalid plan")

// Plan is the YAML document describing what to seed.
type Plan struct {
	Accounts []AccountSeed `yaml:"accounts"`
	Products []ProductSeed `yaml:"products,omitempty"`
	Fake     FakeConfig    `yaml:"fake,omitempty"`
}

// AccountSeed is one account to create. Role defaults to Customer.
type AccountSeed struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Email    string `yaml:"email,omitempty"`
	Role     string `yaml:"role,omitempty"`
}

// ProductSeed is one product. Seller names an account from the same plan
// or one that already exists; empty means no seller.
type ProductSeed struct {
	Name   string `yaml:"name"`
	Price  string `yaml:"price"`
	Stock  int    `yaml:"stock"`
	Seller string `yaml:"seller,omitempty"`
}

// FakeConfig adds generated products for every seeded seller.
type FakeConfig struct {
	ProductsPerSeller int    `yaml:"productsPerSeller"`
	Seed              uint64 `yaml:"seed,omitempty"`
	MaxStock          int    `yaml:"maxStock,omitempty"`
}

// LoadPlan reads and validates a plan file.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seed: read %s: %w", path, err)
	}
	return ParsePlan(data)
}

// ParsePlan decodes and validates a plan. Unknown keys are rejected.
func ParsePlan(data []byte) (*Plan, error) {
	var plan Plan
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&plan); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPlan, err)
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return &plan, nil
}

// Validate checks the plan without touching storage.
func (p *Plan) Validate() error {
	seen := make(map[string]identity.Role, len(p.Accounts))
	for i, a := range p.Accounts {
		if a.Username == "" {
			return fmt.Errorf("%w: accounts[%d]: username is required", ErrInvalidPlan, i)
		}
		if _, dup := seen[a.Username]; dup {
			return fmt.Errorf("%w: accounts[%d]: duplicate username %q", ErrInvalidPlan, i, a.Username)
		}
		role, err := identity.ParseRole(a.Role)
		if err != nil {
			return fmt.Errorf("%w: accounts[%d]: %v", ErrInvalidPlan, i, err)
		}
		seen[a.Username] = role
	}
	for i, pr := range p.Products {
		if pr.Name == "" {
			return fmt.Errorf("%w: products[%d]: name is required", ErrInvalidPlan, i)
		}
		price, err := decimal.NewFromString(pr.Price)
		if err != nil || price.IsNegative() {
			return fmt.Errorf("%w: products[%d]: price %q is not a non-negative decimal", ErrInvalidPlan, i, pr.Price)
		}
		if pr.Stock < 0 {
			return fmt.Errorf("%w: products[%d]: stock must not be negative", ErrInvalidPlan, i)
		}
		if role, ok := seen[pr.Seller]; ok && role != identity.RoleSeller {
			return fmt.Errorf("%w: products[%d]: %q cannot sell", ErrInvalidPlan, i, pr.Seller)
		}
	}
	if p.Fake.ProductsPerSeller < 0 || p.Fake.MaxStock < 0 {
		return fmt.Errorf("%w: fake counts must not be negative", ErrInvalidPlan)
	}
	return nil
}
