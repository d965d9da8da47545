package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mdfakih/inventory-backend/pkg/enums"
)

// Stone is a material catalog record. Quantity is the only field the costing
// core mutates; the rest is descriptive master data.
type Stone struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Number        string              `gorm:"column:number;not null;uniqueIndex:idx_stones_number_type"`
	InventoryType enums.InventoryType `gorm:"column:inventory_type;not null;uniqueIndex:idx_stones_number_type"`
	Name          string              `gorm:"column:name;not null"`
	Color         string              `gorm:"column:color"`
	Size          string              `gorm:"column:size"`
	Quantity      decimal.Decimal     `gorm:"column:quantity;type:numeric(12,2);not null;default:0"`
	Unit          enums.WeightUnit    `gorm:"column:unit;not null;default:g"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
