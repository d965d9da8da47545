package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mdfakih/inventory-backend/pkg/enums"
)

// OrderAudit is one append-only change record for a mutable order field.
type OrderAudit struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID        `gorm:"column:order_id;type:uuid;not null;index"`
	Field     enums.AuditField `gorm:"column:field;not null"`
	OldValue  string           `gorm:"column:old_value"`
	NewValue  string           `gorm:"column:new_value"`
	Actor     string           `gorm:"column:actor;not null"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
}
