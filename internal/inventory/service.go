package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mdfakih/inventory-backend/pkg/db/models"
	"github.com/mdfakih/inventory-backend/pkg/enums"
	pkgerrors "github.com/mdfakih/inventory-backend/pkg/errors"
	"github.com/mdfakih/inventory-backend/pkg/metrics"
)

// Service is the ledger facade the recorder and the finalizer mutate stock
// through. Mutations accept the caller's transaction so a batch lands
// all-or-nothing.
type Service interface {
	Increment(ctx context.Context, tx *gorm.DB, key Key, amount decimal.Decimal) error
	Decrement(ctx context.Context, tx *gorm.DB, key Key, amount decimal.Decimal) (DecrementResult, error)
	Exists(ctx context.Context, key Key) (bool, error)
	Correct(ctx context.Context, key Key, quantity decimal.Decimal) error

	Stock(ctx context.Context, kind enums.MaterialKind, inventoryType enums.InventoryType) (StockList, error)
}

// StockList aggregates the catalog rows for one material kind. Only the slice
// matching the requested kind is populated.
type StockList struct {
	Stones   []models.Stone   `json:"stones,omitempty"`
	Papers   []models.Paper   `json:"papers,omitempty"`
	Plastics []models.Plastic `json:"plastics,omitempty"`
	Tapes    []models.Tape    `json:"tapes,omitempty"`
}

type service struct {
	repo    Repository
	metrics *metrics.CoreMetrics
}

// NewService wires the ledger service. Metrics may be nil.
func NewService(repo Repository, coreMetrics *metrics.CoreMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	return &service{repo: repo, metrics: coreMetrics}, nil
}

// ValidateAmount enforces the kind-specific quantity rules: strictly positive,
// at most two decimal places for stones, whole units for everything else.
func ValidateAmount(kind enums.MaterialKind, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive").
			WithDetails(map[string]string{"quantity": amount.String()})
	}
	if kind.AllowsFractionalQuantity() {
		if !amount.Equal(amount.Round(2)) {
			return pkgerrors.New(pkgerrors.CodeValidation, "stone grams limited to two decimal places").
				WithDetails(map[string]string{"quantity": amount.String()})
		}
		return nil
	}
	if !amount.IsInteger() {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a whole number").
			WithDetails(map[string]string{"kind": kind.String(), "quantity": amount.String()})
	}
	return nil
}

func (s *service) Increment(ctx context.Context, tx *gorm.DB, key Key, amount decimal.Decimal) error {
	if err := key.Validate(); err != nil {
		return err
	}
	if err := ValidateAmount(key.Kind, amount); err != nil {
		return err
	}

	start := time.Now()
	err := s.repo.WithTx(tx).Increment(ctx, key, amount)
	s.metrics.ObserveLedgerMutation("increment", key.Kind.String(), time.Since(start))
	return err
}

func (s *service) Decrement(ctx context.Context, tx *gorm.DB, key Key, amount decimal.Decimal) (DecrementResult, error) {
	if err := key.Validate(); err != nil {
		return DecrementResult{}, err
	}
	if err := ValidateAmount(key.Kind, amount); err != nil {
		return DecrementResult{}, err
	}

	start := time.Now()
	result, err := s.repo.WithTx(tx).Decrement(ctx, key, amount)
	s.metrics.ObserveLedgerMutation("decrement", key.Kind.String(), time.Since(start))
	if err == nil && result.Clamped() {
		s.metrics.IncShortfall(key.Kind.String())
	}
	return result, err
}

func (s *service) Exists(ctx context.Context, key Key) (bool, error) {
	if err := key.Validate(); err != nil {
		return false, err
	}
	return s.repo.Exists(ctx, key)
}

// Correct is the administrative escape hatch: it sets the absolute quantity
// without an entry record. Negative targets are rejected.
func (s *service) Correct(ctx context.Context, key Key, quantity decimal.Decimal) error {
	if err := key.Validate(); err != nil {
		return err
	}
	if quantity.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	if !key.Kind.AllowsFractionalQuantity() && !quantity.IsInteger() {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a whole number")
	}
	return s.repo.SetQuantity(ctx, key, quantity)
}

func (s *service) Stock(ctx context.Context, kind enums.MaterialKind, inventoryType enums.InventoryType) (StockList, error) {
	if !kind.IsValid() {
		return StockList{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid material kind")
	}
	if inventoryType != "" && !inventoryType.IsValid() {
		return StockList{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid inventory type")
	}

	switch kind {
	case enums.MaterialKindStones:
		stones, err := s.repo.ListStones(ctx, inventoryType)
		if err != nil {
			return StockList{}, err
		}
		return StockList{Stones: stones}, nil
	case enums.MaterialKindPaper:
		papers, err := s.repo.ListPapers(ctx, inventoryType)
		if err != nil {
			return StockList{}, err
		}
		return StockList{Papers: papers}, nil
	case enums.MaterialKindPlastic:
		plastics, err := s.repo.ListPlastics(ctx)
		if err != nil {
			return StockList{}, err
		}
		return StockList{Plastics: plastics}, nil
	default:
		tapes, err := s.repo.ListTapes(ctx)
		if err != nil {
			return StockList{}, err
		}
		return StockList{Tapes: tapes}, nil
	}
}
