package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mdfakih/inventory-backend/pkg/enums"
)

// Design is a sellable template. Orders snapshot its default stones at create
// time, so later edits never rewrite finalized history.
type Design struct {
	ID            uuid.UUID     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name          string        `gorm:"column:name;not null"`
	Number        string        `gorm:"column:number;not null;uniqueIndex:idx_designs_number"`
	ImageURL      string        `gorm:"column:image_url"`
	Prices        []DesignPrice `gorm:"foreignKey:DesignID"`
	DefaultStones []DesignStone `gorm:"foreignKey:DesignID"`
	CreatedAt     time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}

// DesignPrice holds the per-currency unit price. At most one row per currency.
type DesignPrice struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DesignID  uuid.UUID       `gorm:"column:design_id;type:uuid;not null;uniqueIndex:idx_design_prices_currency"`
	Currency  enums.Currency  `gorm:"column:currency;not null;uniqueIndex:idx_design_prices_currency"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
}

// DesignStone is one line of a design's default bill of materials.
type DesignStone struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DesignID      uuid.UUID       `gorm:"column:design_id;type:uuid;not null"`
	StoneID       uuid.UUID       `gorm:"column:stone_id;type:uuid;not null"`
	QuantityGrams decimal.Decimal `gorm:"column:quantity_grams;type:numeric(12,2);not null"`
}
