package orders

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mdfakih/inventory-backend/pkg/db/models"
	"github.com/mdfakih/inventory-backend/pkg/enums"
)

// StoneUsageInput is one consumed stone line, addressed by ledger key.
type StoneUsageInput struct {
	StoneNumber   string
	InventoryType enums.InventoryType
	QuantityGrams decimal.Decimal
}

// PaperUsageInput is the tape-paper consumption for an order. WeightPerPc is
// snapshotted from the paper record when omitted.
type PaperUsageInput struct {
	Width         int
	InventoryType enums.InventoryType
	QuantityPcs   int
	WeightPerPc   *decimal.Decimal
}

// ReceivedMaterials captures customer-supplied material for out jobs.
type ReceivedMaterials struct {
	StoneGrams decimal.Decimal
	PaperPcs   int
}

// CreateInput captures a new order. Stones falls back to the design's default
// bill of materials when empty.
type CreateInput struct {
	Type       enums.OrderType
	CustomerID *uuid.UUID
	DesignID   uuid.UUID

	Stones []StoneUsageInput
	Paper  PaperUsageInput

	Currency      enums.Currency
	ModeOfPayment string
	DiscountType  enums.DiscountType
	DiscountValue decimal.Decimal

	Received *ReceivedMaterials

	Actor string
}

// UpdateInput carries the mutable order fields. Nil pointers mean "leave
// unchanged"; every applied change appends an audit row.
type UpdateInput struct {
	Stones        *[]StoneUsageInput
	Paper         *PaperUsageInput
	DiscountType  *enums.DiscountType
	DiscountValue *decimal.Decimal
	PaymentStatus *enums.PaymentStatus
	ModeOfPayment *string

	Actor string
}

// Filters narrow the order list.
type Filters struct {
	Status *enums.OrderStatus
	Type   *enums.OrderType
}

// Page is one cursor page of orders.
type Page struct {
	Orders     []models.Order `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// ShortfallWarning reports a clamped decrement observed during finalize. The
// finalize still commits; the warning exists for reporting.
type ShortfallWarning struct {
	Kind          enums.MaterialKind  `json:"kind"`
	RefCode       string              `json:"ref_code"`
	InventoryType enums.InventoryType `json:"inventory_type,omitempty"`
	Requested     decimal.Decimal     `json:"requested"`
	Deducted      decimal.Decimal     `json:"deducted"`
	Shortfall     decimal.Decimal     `json:"shortfall"`
}

// FinalizeResult is the outcome of a finalize call. AlreadyFinalized marks
// the idempotent repeat: the prior state is returned and no ledger mutation
// was performed.
type FinalizeResult struct {
	Order            *models.Order      `json:"order"`
	AlreadyFinalized bool               `json:"already_finalized"`
	Shortfalls       []ShortfallWarning `json:"shortfalls,omitempty"`
}
