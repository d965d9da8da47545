package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mdfakih/inventory-backend/pkg/db/models"
	"github.com/mdfakih/inventory-backend/pkg/enums"
	"github.com/mdfakih/inventory-backend/pkg/pagination"
)

// Repository defines persistence operations for orders and their audit trail.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, params pagination.Params, filters Filters) ([]models.Order, string, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	ReplaceStones(ctx context.Context, orderID uuid.UUID, stones []models.OrderStone) error
	MarkFinalized(ctx context.Context, id uuid.UUID, at time.Time, actor string) (bool, error)
	AppendAudit(ctx context.Context, audit *models.OrderAudit) error
	FindAudits(ctx context.Context, orderID uuid.UUID) ([]models.OrderAudit, error)

	FindStoneByID(ctx context.Context, id uuid.UUID) (*models.Stone, error)
	FindStoneByKey(ctx context.Context, number string, inventoryType enums.InventoryType) (*models.Stone, error)
	FindPaperByKey(ctx context.Context, width int, inventoryType enums.InventoryType) (*models.Paper, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Stones").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters Filters) ([]models.Order, string, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).
		Preload("Stones").
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Type != nil {
		query = query.Where("type = ?", *filters.Type)
	}

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

	var rows []models.Order
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

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) ReplaceStones(ctx context.Context, orderID uuid.UUID, stones []models.OrderStone) error {
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Delete(&models.OrderStone{}).Error; err != nil {
		return err
	}
	if len(stones) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&stones).Error
}

// MarkFinalized flips the one-way finalization flag. The conditional WHERE is
// the idempotency guard: a second caller sees zero rows affected and must not
// touch the ledger.
func (r *repository) MarkFinalized(ctx context.Context, id uuid.UUID, at time.Time, actor string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND is_finalized = ?", id, false).
		Updates(map[string]any{
			"is_finalized": true,
			"finalized_at": at,
			"updated_by":   actor,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) AppendAudit(ctx context.Context, audit *models.OrderAudit) error {
	return r.db.WithContext(ctx).Create(audit).Error
}

func (r *repository) FindAudits(ctx context.Context, orderID uuid.UUID) ([]models.OrderAudit, error) {
	var audits []models.OrderAudit
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC, id ASC").
		Find(&audits).Error
	if err != nil {
		return nil, err
	}
	return audits, nil
}

func (r *repository) FindStoneByID(ctx context.Context, id uuid.UUID) (*models.Stone, error) {
	var stone models.Stone
	if err := r.db.WithContext(ctx).First(&stone, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &stone, nil
}

func (r *repository) FindStoneByKey(ctx context.Context, number string, inventoryType enums.InventoryType) (*models.Stone, error) {
	var stone models.Stone
	err := r.db.WithContext(ctx).
		First(&stone, "number = ? AND inventory_type = ?", number, inventoryType).Error
	if err != nil {
		return nil, err
	}
	return &stone, nil
}

func (r *repository) FindPaperByKey(ctx context.Context, width int, inventoryType enums.InventoryType) (*models.Paper, error) {
	var paper models.Paper
	err := r.db.WithContext(ctx).
		First(&paper, "width = ? AND inventory_type = ?", width, inventoryType).Error
	if err != nil {
		return nil, err
	}
	return &paper, nil
}
