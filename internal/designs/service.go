package designs

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mdfakih/inventory-backend/pkg/db"
	"github.com/mdfakih/inventory-backend/pkg/db/models"
	"github.com/mdfakih/inventory-backend/pkg/enums"
	pkgerrors "github.com/mdfakih/inventory-backend/pkg/errors"
)

// Service defines design master-data operations the order flow depends on.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Design, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Design, error)
	List(ctx context.Context) ([]models.Design, error)
	UnitPrice(design *models.Design, currency enums.Currency) (decimal.Decimal, error)
}

// PriceInput is one per-currency price line.
type PriceInput struct {
	Currency  enums.Currency
	UnitPrice decimal.Decimal
}

// StoneDefaultInput is one default bill-of-materials line.
type StoneDefaultInput struct {
	StoneID       uuid.UUID
	QuantityGrams decimal.Decimal
}

// CreateInput captures a new sellable design.
type CreateInput struct {
	Name          string
	Number        string
	ImageURL      string
	Prices        []PriceInput
	DefaultStones []StoneDefaultInput
}

type service struct {
	repo Repository
}

// NewService wires a design service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("designs repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Design, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "design name required")
	}
	if input.Number == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "design number required")
	}
	if len(input.Prices) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one price required")
	}

	seen := map[enums.Currency]bool{}
	prices := make([]models.DesignPrice, 0, len(input.Prices))
	for _, price := range input.Prices {
		if !price.Currency.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid currency").
				WithDetails(map[string]string{"currency": price.Currency.String()})
		}
		if seen[price.Currency] {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "at most one price per currency").
				WithDetails(map[string]string{"currency": price.Currency.String()})
		}
		if price.UnitPrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
		}
		seen[price.Currency] = true
		prices = append(prices, models.DesignPrice{Currency: price.Currency, UnitPrice: price.UnitPrice})
	}

	stones := make([]models.DesignStone, 0, len(input.DefaultStones))
	for _, line := range input.DefaultStones {
		if line.StoneID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "default stone id required")
		}
		if !line.QuantityGrams.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "default stone quantity must be positive")
		}
		stones = append(stones, models.DesignStone{StoneID: line.StoneID, QuantityGrams: line.QuantityGrams})
	}

	design := &models.Design{
		Name:          input.Name,
		Number:        input.Number,
		ImageURL:      input.ImageURL,
		Prices:        prices,
		DefaultStones: stones,
	}
	if err := s.repo.Create(ctx, design); err != nil {
		if db.IsUniqueViolation(err, "idx_designs_number") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDuplicateKey, err, "design number already exists").
				WithDetails(map[string]string{"number": input.Number})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create design")
	}
	return design, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Design, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "design id required")
	}
	design, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "design not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load design")
	}
	return design, nil
}

func (s *service) List(ctx context.Context) ([]models.Design, error) {
	designs, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list designs")
	}
	return designs, nil
}

// UnitPrice resolves the design's price in the requested currency.
func (s *service) UnitPrice(design *models.Design, currency enums.Currency) (decimal.Decimal, error) {
	if design == nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "design required")
	}
	for _, price := range design.Prices {
		if price.Currency == currency {
			return price.UnitPrice, nil
		}
	}
	return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "design has no price in requested currency").
		WithDetails(map[string]string{"currency": currency.String()})
}
