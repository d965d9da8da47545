package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mdfakih/inventory-backend/pkg/enums"
)

// InventoryEntry is an immutable record of one ledger-increasing batch.
// Purchase metadata and return metadata are mutually exclusive.
type InventoryEntry struct {
	ID   uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Type enums.EntryType `gorm:"column:type;not null"`

	SupplierName *string    `gorm:"column:supplier_name"`
	BillNumber   *string    `gorm:"column:bill_number"`
	BillDate     *time.Time `gorm:"column:bill_date"`

	Source            *enums.ReturnSource `gorm:"column:source"`
	SourceOrderID     *uuid.UUID          `gorm:"column:source_order_id;type:uuid"`
	SourceDescription *string             `gorm:"column:source_description"`

	Items []InventoryEntryItem `gorm:"foreignKey:EntryID"`

	CreatedBy string    `gorm:"column:created_by;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// InventoryEntryItem is one line in an entry batch. RefCode addresses the
// ledger key: stone number, paper or plastic width, tape name.
type InventoryEntryItem struct {
	ID            uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EntryID       uuid.UUID            `gorm:"column:entry_id;type:uuid;not null;index"`
	Kind          enums.MaterialKind   `gorm:"column:kind;not null"`
	RefCode       string               `gorm:"column:ref_code;not null"`
	InventoryType *enums.InventoryType `gorm:"column:inventory_type"`
	Quantity      decimal.Decimal      `gorm:"column:quantity;type:numeric(12,2);not null"`
	Unit          string               `gorm:"column:unit"`
}
