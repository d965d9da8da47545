package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mdfakih/inventory-backend/pkg/enums"
)

// Paper tracks roll stock per (width, inventory type). Quantity is counted in
// rolls; piece availability is derived, never stored.
type Paper struct {
	ID             uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Width          int                 `gorm:"column:width;not null;uniqueIndex:idx_papers_width_type"`
	InventoryType  enums.InventoryType `gorm:"column:inventory_type;not null;uniqueIndex:idx_papers_width_type"`
	Quantity       int                 `gorm:"column:quantity;not null;default:0"`
	PiecesPerRoll  int                 `gorm:"column:pieces_per_roll;not null;default:1"`
	WeightPerPiece decimal.Decimal     `gorm:"column:weight_per_piece;type:numeric(12,2);not null;default:0"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// TotalPieces returns the derived piece availability.
func (p Paper) TotalPieces() int {
	return p.Quantity * p.PiecesPerRoll
}
