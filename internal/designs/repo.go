package designs

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mdfakih/inventory-backend/pkg/db/models"
)

// Repository manages persistence for design master data.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, design *models.Design) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Design, error)
	FindByNumber(ctx context.Context, number string) (*models.Design, error)
	List(ctx context.Context) ([]models.Design, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a design repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, design *models.Design) error {
	return r.db.WithContext(ctx).Create(design).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Design, error) {
	var design models.Design
	if err := r.db.WithContext(ctx).
		Preload("Prices").
		Preload("DefaultStones").
		First(&design, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &design, nil
}

func (r *repository) FindByNumber(ctx context.Context, number string) (*models.Design, error) {
	var design models.Design
	if err := r.db.WithContext(ctx).
		Preload("Prices").
		Preload("DefaultStones").
		First(&design, "number = ?", number).Error; err != nil {
		return nil, err
	}
	return &design, nil
}

func (r *repository) List(ctx context.Context) ([]models.Design, error) {
	var designs []models.Design
	if err := r.db.WithContext(ctx).
		Preload("Prices").
		Order("number ASC").
		Find(&designs).Error; err != nil {
		return nil, err
	}
	return designs, nil
}
