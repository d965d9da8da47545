package models

import (
	"time"

	"github.com/google/uuid"
)

// Plastic tracks sheet stock per width.
type Plastic struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Width     int       `gorm:"column:width;not null;uniqueIndex:idx_plastics_width"`
	Quantity  int       `gorm:"column:quantity;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
