package entries

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mdfakih/inventory-backend/pkg/db/models"
	"github.com/mdfakih/inventory-backend/pkg/pagination"
)

// Repository manages persistence for immutable inventory entry records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.InventoryEntry) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.InventoryEntry, error)
	List(ctx context.Context, params pagination.Params) ([]models.InventoryEntry, string, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an entries repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.InventoryEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.InventoryEntry, error) {
	var entry models.InventoryEntry
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&entry, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params) ([]models.InventoryEntry, string, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).
		Preload("Items").
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		query = query.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.InventoryEntry
	if err := query.Find(&rows).Error; err != nil {
		return nil, "", err
	}

	next := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return rows, next, nil
}
