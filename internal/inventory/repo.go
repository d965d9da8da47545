package inventory

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mdfakih/inventory-backend/pkg/db/models"
	"github.com/mdfakih/inventory-backend/pkg/enums"
	pkgerrors "github.com/mdfakih/inventory-backend/pkg/errors"
)

// DecrementResult reports what a clamped deduction actually did. Shortfall is
// zero when stock fully covered the request.
type DecrementResult struct {
	Requested decimal.Decimal
	Deducted  decimal.Decimal
	Shortfall decimal.Decimal
}

// Clamped reports whether the deduction hit the zero floor.
func (r DecrementResult) Clamped() bool {
	return r.Shortfall.IsPositive()
}

// Repository exposes the ledger's storage primitives. Both mutations are
// single conditional UPDATE statements, never read-modify-write, so two
// callers racing on the same key cannot double-spend a quantity.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Exists(ctx context.Context, key Key) (bool, error)
	Increment(ctx context.Context, key Key, amount decimal.Decimal) error
	Decrement(ctx context.Context, key Key, amount decimal.Decimal) (DecrementResult, error)
	SetQuantity(ctx context.Context, key Key, quantity decimal.Decimal) error
	Quantity(ctx context.Context, key Key) (decimal.Decimal, error)

	ListStones(ctx context.Context, inventoryType enums.InventoryType) ([]models.Stone, error)
	ListPapers(ctx context.Context, inventoryType enums.InventoryType) ([]models.Paper, error)
	ListPlastics(ctx context.Context) ([]models.Plastic, error)
	ListTapes(ctx context.Context) ([]models.Tape, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// tableSpec maps a material kind onto its table and key columns.
type tableSpec struct {
	table       string
	keyColumn   string
	numericKey  bool
	partitioned bool
}

var tableSpecs = map[enums.MaterialKind]tableSpec{
	enums.MaterialKindStones:  {table: "stones", keyColumn: "number", partitioned: true},
	enums.MaterialKindPaper:   {table: "papers", keyColumn: "width", numericKey: true, partitioned: true},
	enums.MaterialKindPlastic: {table: "plastics", keyColumn: "width", numericKey: true},
	enums.MaterialKindTape:    {table: "tapes", keyColumn: "name"},
}

// whereKey returns the key predicate and its arguments for the given key.
func whereKey(key Key) (tableSpec, string, []any, error) {
	spec, ok := tableSpecs[key.Kind]
	if !ok {
		return tableSpec{}, "", nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid material kind")
	}

	var ref any = key.RefCode
	if spec.numericKey {
		parsed, err := strconv.Atoi(key.RefCode)
		if err != nil {
			return tableSpec{}, "", nil, pkgerrors.New(pkgerrors.CodeValidation, "numeric ref code required")
		}
		ref = parsed
	}

	clause := spec.keyColumn + " = ?"
	args := []any{ref}
	if spec.partitioned {
		clause += " AND inventory_type = ?"
		args = append(args, key.InventoryType)
	}
	return spec, clause, args, nil
}

func (r *repository) Exists(ctx context.Context, key Key) (bool, error) {
	spec, clause, args, err := whereKey(key)
	if err != nil {
		return false, err
	}
	var count int64
	query := fmt.Sprintf("SELECT COUNT(1) FROM %s WHERE %s", spec.table, clause)
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&count).Error; err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check inventory key")
	}
	return count > 0, nil
}

func (r *repository) Quantity(ctx context.Context, key Key) (decimal.Decimal, error) {
	spec, clause, args, err := whereKey(key)
	if err != nil {
		return decimal.Zero, err
	}

	var row struct {
		Quantity decimal.Decimal
	}
	query := fmt.Sprintf("SELECT quantity FROM %s WHERE %s", spec.table, clause)
	result := r.db.WithContext(ctx).Raw(query, args...).Scan(&row)
	if result.Error != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "read inventory quantity")
	}
	if result.RowsAffected == 0 {
		return decimal.Zero, unknownKey(key)
	}
	return row.Quantity, nil
}

func (r *repository) Increment(ctx context.Context, key Key, amount decimal.Decimal) error {
	spec, clause, args, err := whereKey(key)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(
		"UPDATE %s SET quantity = quantity + ?, updated_at = CURRENT_TIMESTAMP WHERE %s",
		spec.table, clause,
	)
	result := r.db.WithContext(ctx).Exec(query, append([]any{amount}, args...)...)
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "increment inventory")
	}
	if result.RowsAffected == 0 {
		return unknownKey(key)
	}
	return nil
}

func (r *repository) Decrement(ctx context.Context, key Key, amount decimal.Decimal) (DecrementResult, error) {
	spec, clause, args, err := whereKey(key)
	if err != nil {
		return DecrementResult{}, err
	}

	// Fast path: stock covers the full request. The quantity guard in the
	// predicate makes the deduction conditional, so a concurrent decrement
	// that drained the counter first simply leaves RowsAffected at zero.
	full := fmt.Sprintf(
		"UPDATE %s SET quantity = quantity - ?, updated_at = CURRENT_TIMESTAMP WHERE %s AND quantity >= ?",
		spec.table, clause,
	)

	for {
		result := r.db.WithContext(ctx).Exec(full, append(append([]any{amount}, args...), amount)...)
		if result.Error != nil {
			return DecrementResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "decrement inventory")
		}
		if result.RowsAffected > 0 {
			return DecrementResult{Requested: amount, Deducted: amount, Shortfall: decimal.Zero}, nil
		}

		// Clamp path: observed stock is short. Zero the counter with a
		// compare-and-swap on the observed value; if another writer moved
		// it in between, loop and re-evaluate.
		current, err := r.Quantity(ctx, key)
		if err != nil {
			return DecrementResult{}, err
		}
		if current.GreaterThanOrEqual(amount) {
			continue
		}

		clamp := fmt.Sprintf(
			"UPDATE %s SET quantity = 0, updated_at = CURRENT_TIMESTAMP WHERE %s AND quantity = ?",
			spec.table, clause,
		)
		result = r.db.WithContext(ctx).Exec(clamp, append(append([]any{}, args...), current)...)
		if result.Error != nil {
			return DecrementResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "clamp inventory")
		}
		if result.RowsAffected > 0 {
			return DecrementResult{
				Requested: amount,
				Deducted:  current,
				Shortfall: amount.Sub(current),
			}, nil
		}
	}
}

func (r *repository) SetQuantity(ctx context.Context, key Key, quantity decimal.Decimal) error {
	spec, clause, args, err := whereKey(key)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(
		"UPDATE %s SET quantity = ?, updated_at = CURRENT_TIMESTAMP WHERE %s",
		spec.table, clause,
	)
	result := r.db.WithContext(ctx).Exec(query, append([]any{quantity}, args...)...)
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "set inventory quantity")
	}
	if result.RowsAffected == 0 {
		return unknownKey(key)
	}
	return nil
}

func (r *repository) ListStones(ctx context.Context, inventoryType enums.InventoryType) ([]models.Stone, error) {
	var stones []models.Stone
	query := r.db.WithContext(ctx).Order("number ASC")
	if inventoryType != "" {
		query = query.Where("inventory_type = ?", inventoryType)
	}
	if err := query.Find(&stones).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stones")
	}
	return stones, nil
}

func (r *repository) ListPapers(ctx context.Context, inventoryType enums.InventoryType) ([]models.Paper, error) {
	var papers []models.Paper
	query := r.db.WithContext(ctx).Order("width ASC")
	if inventoryType != "" {
		query = query.Where("inventory_type = ?", inventoryType)
	}
	if err := query.Find(&papers).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list papers")
	}
	return papers, nil
}

func (r *repository) ListPlastics(ctx context.Context) ([]models.Plastic, error) {
	var plastics []models.Plastic
	if err := r.db.WithContext(ctx).Order("width ASC").Find(&plastics).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list plastics")
	}
	return plastics, nil
}

func (r *repository) ListTapes(ctx context.Context) ([]models.Tape, error) {
	var tapes []models.Tape
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&tapes).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list tapes")
	}
	return tapes, nil
}
