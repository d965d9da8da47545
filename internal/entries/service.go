package entries

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mdfakih/inventory-backend/internal/inventory"
	"github.com/mdfakih/inventory-backend/pkg/db/models"
	"github.com/mdfakih/inventory-backend/pkg/enums"
	pkgerrors "github.com/mdfakih/inventory-backend/pkg/errors"
	"github.com/mdfakih/inventory-backend/pkg/metrics"
	"github.com/mdfakih/inventory-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service records purchase and return batches. Recording an entry is the only
// sanctioned way stock quantities go up outside of admin correction.
type Service interface {
	Record(ctx context.Context, input RecordInput) (*models.InventoryEntry, error)
	Get(ctx context.Context, id uuid.UUID) (*models.InventoryEntry, error)
	List(ctx context.Context, params pagination.Params) (Page, error)
}

// LineInput is one heterogeneous batch line.
type LineInput struct {
	Kind          enums.MaterialKind
	RefCode       string
	InventoryType enums.InventoryType
	Quantity      decimal.Decimal
	Unit          string
}

// PurchaseDetails carries supplier metadata for purchase entries.
type PurchaseDetails struct {
	SupplierName string
	BillNumber   string
	BillDate     time.Time
}

// ReturnDetails carries provenance for return entries. Orders returns name
// the source order; other returns carry a description.
type ReturnDetails struct {
	Source            enums.ReturnSource
	SourceOrderID     *uuid.UUID
	SourceDescription string
}

/// RecordInput is the tagged entry request: exactly one of Purchase or Return
// must match Type.
type RecordInput struct {
	Type     enums.EntryType
	Purchase *PurchaseDetails
	Return   *ReturnDetails
	Items    []LineInput
	Actor    string
}

// Page is one cursor page of entries.
type Page struct {
	Entries    []models.InventoryEntry `json:"entries"`
	NextCursor string                  `json:"next_cursor,omitempty"`
}

type service struct {
	tx      txRunner
	repo    Repository
	ledger  inventory.Service
	metrics *metrics.CoreMetrics
}

// NewService builds the entry recorder with its dependencies. Metrics may be
// nil.
func NewService(tx txRunner, repo Repository, ledger inventory.Service, coreMetrics *metrics.CoreMetrics) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("entries repository required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("inventory ledger required")
	}
	return &service{tx: tx, repo: repo, ledger: ledger, metrics: coreMetrics}, nil
}

func (s *service) Record(ctx context.Context, input RecordInput) (*models.InventoryEntry, error) {
	if input.Actor == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor identity required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "entry requires at least one line item")
	}

	keys := make([]inventory.Key, len(input.Items))
	for i, item := range input.Items {
		key := inventory.Key{Kind: item.Kind, RefCode: item.RefCode, InventoryType: item.InventoryType}
		if err := key.Validate(); err != nil {
			return nil, lineError(i, err)
		}
		exists, err := s.ledger.Exists(ctx, key)
		if err != nil {
			return nil, lineError(i, err)
		}
		if !exists {
			return nil, lineError(i, inventoryKeyMissing(key))
		}
		if err := inventory.ValidateAmount(item.Kind, item.Quantity); err != nil {
			return nil, lineError(i, err)
		}
		keys[i] = key
	}

	entry, err := buildEntry(input)
	if err != nil {
		return nil, err
	}

	// One transaction for the entry record plus every increment: a failure on
	// any line rolls the whole batch back, so there are no partial increments.
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record inventory entry")
		}
		for i, item := range input.Items {
			if err := s.ledger.Increment(ctx, tx, keys[i], item.Quantity); err != nil {
				return lineError(i, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.AddEntryItems(input.Type.String(), len(input.Items))
	return entry, nil
}

func buildEntry(input RecordInput) (*models.InventoryEntry, error) {
	entry := &models.InventoryEntry{
		Type:      input.Type,
		CreatedBy: input.Actor,
	}

	switch input.Type {
	case enums.EntryTypePurchase:
		if input.Return != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase entry cannot carry return details")
		}
		p := input.Purchase
		if p == nil || strings.TrimSpace(p.SupplierName) == "" || strings.TrimSpace(p.BillNumber) == "" || p.BillDate.IsZero() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase requires supplier name, bill number and bill date")
		}
		supplier := strings.TrimSpace(p.SupplierName)
		bill := strings.TrimSpace(p.BillNumber)
		billDate := p.BillDate
		entry.SupplierName = &supplier
		entry.BillNumber = &bill
		entry.BillDate = &billDate
	case enums.EntryTypeReturn:
		if input.Purchase != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "return entry cannot carry purchase details")
		}
		ret := input.Return
		if ret == nil || !ret.Source.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "return requires a valid source")
		}
		switch ret.Source {
		case enums.ReturnSourceOrder:
			if ret.SourceOrderID == nil || *ret.SourceOrderID == uuid.Nil {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "order return requires a source order id")
			}
		default:
			if strings.TrimSpace(ret.SourceDescription) == "" {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "return requires a source description")
			}
		}
		source := ret.Source
		entry.Source = &source
		entry.SourceOrderID = ret.SourceOrderID
		if desc := strings.TrimSpace(ret.SourceDescription); desc != "" {
			entry.SourceDescription = &desc
		}
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid entry type").
			WithDetails(map[string]string{"type": input.Type.String()})
	}

	entry.Items = make([]models.InventoryEntryItem, len(input.Items))
	for i, item := range input.Items {
		line := models.InventoryEntryItem{
			Kind:     item.Kind,
			RefCode:  item.RefCode,
			Quantity: item.Quantity,
			Unit:     item.Unit,
		}
		if item.InventoryType != "" {
			invType := item.InventoryType
			line.InventoryType = &invType
		}
		entry.Items[i] = line
	}
	return entry, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.InventoryEntry, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "entry id required")
	}
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory entry not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory entry")
	}
	return entry, nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (Page, error) {
	rows, next, err := s.repo.List(ctx, params)
	if err != nil {
		return Page{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list inventory entries")
	}
	return Page{Entries: rows, NextCursor: next}, nil
}

func lineError(index int, err error) error {
	if typed := pkgerrors.As(err); typed != nil {
		details := map[string]any{"line": index}
		if existing := typed.Details(); existing != nil {
			details["cause"] = existing
		}
		return pkgerrors.New(typed.Code(), typed.Message()).WithDetails(details)
	}
	return err
}

func inventoryKeyMissing(key inventory.Key) error {
	details := map[string]string{"kind": key.Kind.String(), "ref": key.RefCode}
	if key.InventoryType != "" {
		details["inventory_type"] = key.InventoryType.String()
	}
	return pkgerrors.New(pkgerrors.CodeUnknownInventoryKey, "inventory record not found").WithDetails(details)
}
