package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mdfakih/inventory-backend/pkg/enums"
)

// Order is the transactional record tying a design, material consumption,
// pricing, and the one-way finalization flag together.
type Order struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Type       enums.OrderType `gorm:"column:type;not null"`
	Status     enums.OrderStatus `gorm:"column:status;not null;default:pending"`
	CustomerID *uuid.UUID      `gorm:"column:customer_id;type:uuid"`
	DesignID   uuid.UUID       `gorm:"column:design_id;type:uuid;not null"`

	Stones []OrderStone `gorm:"foreignKey:OrderID"`

	// Paper usage, embedded. Width plus inventory type addresses the paper
	// ledger key; weight per piece is snapshotted from the paper record.
	PaperWidth         int                 `gorm:"column:paper_width;not null"`
	PaperInventoryType enums.InventoryType `gorm:"column:paper_inventory_type;not null"`
	PaperQuantityPcs   int                 `gorm:"column:paper_quantity_pcs;not null"`
	PaperWeightPerPc   decimal.Decimal     `gorm:"column:paper_weight_per_pc;type:numeric(12,2);not null;default:0"`

	CalculatedWeight      decimal.Decimal  `gorm:"column:calculated_weight;type:numeric(12,2);not null;default:0"`
	FinalTotalWeight      *decimal.Decimal `gorm:"column:final_total_weight;type:numeric(12,2)"`
	WeightDiscrepancy     *decimal.Decimal `gorm:"column:weight_discrepancy;type:numeric(12,2)"`
	DiscrepancyPercentage *decimal.Decimal `gorm:"column:discrepancy_percentage;type:numeric(8,2)"`

	// Out jobs only: customer-supplied material reconciliation.
	StoneReceivedGrams *decimal.Decimal `gorm:"column:stone_received_grams;type:numeric(12,2)"`
	StoneUsedGrams     *decimal.Decimal `gorm:"column:stone_used_grams;type:numeric(12,2)"`
	StoneBalanceGrams  *decimal.Decimal `gorm:"column:stone_balance_grams;type:numeric(12,2)"`
	StoneLossGrams     *decimal.Decimal `gorm:"column:stone_loss_grams;type:numeric(12,2)"`
	PaperReceivedPcs   *int             `gorm:"column:paper_received_pcs"`
	PaperBalancePcs    *int             `gorm:"column:paper_balance_pcs"`
	PaperLossPcs       *int             `gorm:"column:paper_loss_pcs"`

	Currency         enums.Currency      `gorm:"column:currency;not null;default:INR"`
	ModeOfPayment    string              `gorm:"column:mode_of_payment"`
	PaymentStatus    enums.PaymentStatus `gorm:"column:payment_status;not null;default:pending"`
	DiscountType     enums.DiscountType  `gorm:"column:discount_type;not null;default:flat"`
	DiscountValue    decimal.Decimal     `gorm:"column:discount_value;type:numeric(12,2);not null;default:0"`
	TotalCost        decimal.Decimal     `gorm:"column:total_cost;type:numeric(12,2);not null;default:0"`
	DiscountedAmount decimal.Decimal     `gorm:"column:discounted_amount;type:numeric(12,2);not null;default:0"`
	FinalAmount      decimal.Decimal     `gorm:"column:final_amount;type:numeric(12,2);not null;default:0"`

	IsFinalized bool       `gorm:"column:is_finalized;not null;default:false"`
	FinalizedAt *time.Time `gorm:"column:finalized_at"`

	CreatedBy string    `gorm:"column:created_by;not null"`
	UpdatedBy string    `gorm:"column:updated_by"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderStone is one consumed stone line, snapshotted from the design defaults
// or supplied explicitly at create time.
type OrderStone struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID       uuid.UUID           `gorm:"column:order_id;type:uuid;not null;index"`
	StoneID       uuid.UUID           `gorm:"column:stone_id;type:uuid;not null"`
	StoneNumber   string              `gorm:"column:stone_number;not null"`
	InventoryType enums.InventoryType `gorm:"column:inventory_type;not null"`
	QuantityGrams decimal.Decimal     `gorm:"column:quantity_grams;type:numeric(12,2);not null"`
}
