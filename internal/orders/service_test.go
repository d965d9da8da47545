package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mdfakih/inventory-backend/internal/designs"
	"github.com/mdfakih/inventory-backend/internal/inventory"
	"github.com/mdfakih/inventory-backend/pkg/db/models"
	"github.com/mdfakih/inventory-backend/pkg/enums"
	pkgerrors "github.com/mdfakih/inventory-backend/pkg/errors"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (g gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return g.db.WithContext(ctx).Transaction(fn)
}

func newOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:orders_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	ddl := []string{
		`CREATE TABLE designs (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  number TEXT NOT NULL UNIQUE,
  image_url TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE design_prices (
  id TEXT PRIMARY KEY,
  design_id TEXT NOT NULL,
  currency TEXT NOT NULL,
  unit_price NUMERIC NOT NULL,
  UNIQUE (design_id, currency)
);`,
		`CREATE TABLE design_stones (
  id TEXT PRIMARY KEY,
  design_id TEXT NOT NULL,
  stone_id TEXT NOT NULL,
  quantity_grams NUMERIC NOT NULL
);`,
		`CREATE TABLE stones (
  id TEXT PRIMARY KEY,
  number TEXT NOT NULL,
  inventory_type TEXT NOT NULL,
  name TEXT NOT NULL,
  color TEXT,
  size TEXT,
  quantity NUMERIC NOT NULL DEFAULT 0,
  unit TEXT NOT NULL DEFAULT 'g',
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (number, inventory_type)
);`,
		`CREATE TABLE papers (
  id TEXT PRIMARY KEY,
  width INTEGER NOT NULL,
  inventory_type TEXT NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 0,
  pieces_per_roll INTEGER NOT NULL DEFAULT 1,
  weight_per_piece NUMERIC NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (width, inventory_type)
);`,
		`CREATE TABLE plastics (
  id TEXT PRIMARY KEY,
  width INTEGER NOT NULL UNIQUE,
  quantity INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE tapes (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  quantity INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE orders (
  id TEXT PRIMARY KEY,
  type TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  customer_id TEXT,
  design_id TEXT NOT NULL,
  paper_width INTEGER NOT NULL,
  paper_inventory_type TEXT NOT NULL,
  paper_quantity_pcs INTEGER NOT NULL,
  paper_weight_per_pc NUMERIC NOT NULL DEFAULT 0,
  calculated_weight NUMERIC NOT NULL DEFAULT 0,
  final_total_weight NUMERIC,
  weight_discrepancy NUMERIC,
  discrepancy_percentage NUMERIC,
  stone_received_grams NUMERIC,
  stone_used_grams NUMERIC,
  stone_balance_grams NUMERIC,
  stone_loss_grams NUMERIC,
  paper_received_pcs INTEGER,
  paper_balance_pcs INTEGER,
  paper_loss_pcs INTEGER,
  currency TEXT NOT NULL DEFAULT 'INR',
  mode_of_payment TEXT,
  payment_status TEXT NOT NULL DEFAULT 'pending',
  discount_type TEXT NOT NULL DEFAULT 'flat',
  discount_value NUMERIC NOT NULL DEFAULT 0,
  total_cost NUMERIC NOT NULL DEFAULT 0,
  discounted_amount NUMERIC NOT NULL DEFAULT 0,
  final_amount NUMERIC NOT NULL DEFAULT 0,
  is_finalized INTEGER NOT NULL DEFAULT 0,
  finalized_at DATETIME,
  created_by TEXT NOT NULL,
  updated_by TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE order_stones (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  stone_id TEXT NOT NULL,
  stone_number TEXT NOT NULL,
  inventory_type TEXT NOT NULL,
  quantity_grams NUMERIC NOT NULL
);`,
		`CREATE TABLE order_audits (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  field TEXT NOT NULL,
  old_value TEXT,
  new_value TEXT,
  actor TEXT NOT NULL,
  created_at DATETIME
);`,
	}
	for _, stmt := range ddl {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

type ordersHarness struct {
	db      *gorm.DB
	svc     Service
	design  *models.Design
	stoneID uuid.UUID
}

// seeds one design (INR 500/pc, default stone R1 at 5g), stone R1 with 100g
// internal stock, and paper width 16 with 500 units on hand.
func newOrdersHarness(t *testing.T) *ordersHarness {
	t.Helper()

	db := newOrdersTestDB(t)

	stoneID := uuid.New()
	require.NoError(t, db.Create(&models.Stone{
		ID:            stoneID,
		Number:        "R1",
		InventoryType: enums.InventoryTypeInternal,
		Name:          "round 1",
		Quantity:      decimal.RequireFromString("100.00"),
		Unit:          enums.WeightUnitGram,
	}).Error)
	require.NoError(t, db.Create(&models.Paper{
		ID:             uuid.New(),
		Width:          16,
		InventoryType:  enums.InventoryTypeInternal,
		Quantity:       500,
		PiecesPerRoll:  100,
		WeightPerPiece: decimal.RequireFromString("5"),
	}).Error)

	design := &models.Design{
		ID:     uuid.New(),
		Name:   "peacock",
		Number: "D-101",
	}
	require.NoError(t, db.Create(design).Error)
	require.NoError(t, db.Create(&models.DesignPrice{
		ID:        uuid.New(),
		DesignID:  design.ID,
		Currency:  enums.CurrencyINR,
		UnitPrice: decimal.RequireFromString("500"),
	}).Error)
	require.NoError(t, db.Create(&models.DesignStone{
		ID:            uuid.New(),
		DesignID:      design.ID,
		StoneID:       stoneID,
		QuantityGrams: decimal.RequireFromString("5"),
	}).Error)

	designSvc, err := designs.NewService(designs.NewRepository(db))
	require.NoError(t, err)
	ledger, err := inventory.NewService(inventory.NewRepository(db), nil)
	require.NoError(t, err)
	svc, err := NewService(gormTxRunner{db: db}, NewRepository(db), designSvc, ledger, nil)
	require.NoError(t, err)

	return &ordersHarness{db: db, svc: svc, design: design, stoneID: stoneID}
}

func (h *ordersHarness) createOrder(t *testing.T, input CreateInput) *models.Order {
	t.Helper()
	if input.Type == "" {
		input.Type = enums.OrderTypeInternal
	}
	if input.DesignID == uuid.Nil {
		input.DesignID = h.design.ID
	}
	if input.Currency == "" {
		input.Currency = enums.CurrencyINR
	}
	if input.DiscountType == "" {
		input.DiscountType = enums.DiscountTypeFlat
	}
	if input.Paper.Width == 0 {
		input.Paper = PaperUsageInput{Width: 16, InventoryType: enums.InventoryTypeInternal, QuantityPcs: 10}
	}
	if input.Actor == "" {
		input.Actor = "meera"
	}
	order, err := h.svc.Create(context.Background(), input)
	require.NoError(t, err)
	return order
}

func (h *ordersHarness) stoneQty(t *testing.T) decimal.Decimal {
	t.Helper()
	var stone models.Stone
	require.NoError(t, h.db.First(&stone, "id = ?", h.stoneID).Error)
	return stone.Quantity
}

func (h *ordersHarness) paperQty(t *testing.T) int {
	t.Helper()
	var paper models.Paper
	require.NoError(t, h.db.First(&paper, "width = ?", 16).Error)
	return paper.Quantity
}

func TestCreateOrderComputesDerivedFields(t *testing.T) {
	t.Parallel()

	h := newOrdersHarness(t)
	discount := decimal.RequireFromString("10")
	order := h.createOrder(t, CreateInput{
		Paper:         PaperUsageInput{Width: 16, InventoryType: enums.InventoryTypeInternal, QuantityPcs: 10},
		DiscountType:  enums.DiscountTypePercentage,
		DiscountValue: discount,
	})

	assert.True(t, order.TotalCost.Equal(decimal.RequireFromString("5000")), "total cost, got %s", order.TotalCost)
	assert.True(t, order.DiscountedAmount.Equal(decimal.RequireFromString("500")), "discounted, got %s", order.DiscountedAmount)
	assert.True(t, order.FinalAmount.Equal(decimal.RequireFromString("4500")), "final, got %s", order.FinalAmount)

	// default stone 5g + 10 pcs at 5g/pc
	assert.True(t, order.CalculatedWeight.Equal(decimal.RequireFromString("55")), "calculated weight, got %s", order.CalculatedWeight)

	require.Len(t, order.Stones, 1)
	assert.Equal(t, "R1", order.Stones[0].StoneNumber)
	assert.Equal(t, enums.OrderStatusPending, order.Status)
	assert.False(t, order.IsFinalized)
}

func TestCreateOrderRejectsUnknownStone(t *testing.T) {
	t.Parallel()

	h := newOrdersHarness(t)
	_, err := h.svc.Create(context.Background(), CreateInput{
		Type:         enums.OrderTypeInternal,
		DesignID:     h.design.ID,
		Currency:     enums.CurrencyINR,
		DiscountType: enums.DiscountTypeFlat,
		Paper:        PaperUsageInput{Width: 16, InventoryType: enums.InventoryTypeInternal, QuantityPcs: 10},
		Stones: []StoneUsageInput{
			{StoneNumber: "NOPE", InventoryType: enums.InventoryTypeInternal, QuantityGrams: decimal.NewFromInt(5)},
		},
		Actor: "meera",
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeUnknownInventoryKey, pkgerrors.As(err).Code())
}

func TestRecordFinalWeightComputesDiscrepancy(t *testing.T) {
	t.Parallel()

	h := newOrdersHarness(t)
	// paper only: 40 pcs at 5g each, no stones
	order := h.createOrder(t, CreateInput{
		Stones: []StoneUsageInput{},
		Paper:  PaperUsageInput{Width: 16, InventoryType: enums.InventoryTypeInternal, QuantityPcs: 40},
	})
	// strip the design default so calculated weight is paper alone
	require.NoError(t, h.db.Where("order_id = ?", order.ID).Delete(&models.OrderStone{}).Error)
	require.NoError(t, h.db.Model(&models.Order{}).Where("id = ?", order.ID).
		Update("calculated_weight", decimal.RequireFromString("200")).Error)

	updated, err := h.svc.RecordFinalWeight(context.Background(), order.ID, decimal.RequireFromString("210"), "meera")
	require.NoError(t, err)
	require.NotNil(t, updated.WeightDiscrepancy)
	require.NotNil(t, updated.DiscrepancyPercentage)
	assert.True(t, updated.WeightDiscrepancy.Equal(decimal.RequireFromString("10")), "discrepancy, got %s", updated.WeightDiscrepancy)
	assert.True(t, updated.DiscrepancyPercentage.Equal(decimal.RequireFromString("5")), "percentage, got %s", updated.DiscrepancyPercentage)
}

func TestFinalizeDeductsInventory(t *testing.T) {
	t.Parallel()

	h := newOrdersHarness(t)
	order := h.createOrder(t, CreateInput{
		Stones: []StoneUsageInput{
			{StoneNumber: "R1", InventoryType: enums.InventoryTypeInternal, QuantityGrams: decimal.RequireFromString("30")},
		},
		Paper: PaperUsageInput{Width: 16, InventoryType: enums.InventoryTypeInternal, QuantityPcs: 40},
	})
	ctx := context.Background()

	_, err := h.svc.RecordFinalWeight(ctx, order.ID, decimal.RequireFromString("230"), "meera")
	require.NoError(t, err)

	result, err := h.svc.Finalize(ctx, order.ID, "meera")
	require.NoError(t, err)
	assert.False(t, result.AlreadyFinalized)
	assert.Empty(t, result.Shortfalls)
	assert.True(t, result.Order.IsFinalized)
	require.NotNil(t, result.Order.FinalizedAt)

	assert.True(t, h.stoneQty(t).Equal(decimal.RequireFromString("70")), "stone stock")
	assert.Equal(t, 460, h.paperQty(t), "paper stock")

	audits, err := h.svc.Audits(ctx, order.ID)
	require.NoError(t, err)
	var finalizeAudits int
	for _, audit := range audits {
		if audit.Field == enums.AuditFieldFinalized {
			finalizeAudits++
		}
	}
	assert.Equal(t, 1, finalizeAudits)
}

func TestFinalizeIsIdempotent(t *testing.T) {
	t.Parallel()

	h := newOrdersHarness(t)
	order := h.createOrder(t, CreateInput{
		Stones: []StoneUsageInput{
			{StoneNumber: "R1", InventoryType: enums.InventoryTypeInternal, QuantityGrams: decimal.RequireFromString("30")},
		},
		Paper: PaperUsageInput{Width: 16, InventoryType: enums.InventoryTypeInternal, QuantityPcs: 40},
	})
	ctx := context.Background()

	_, err := h.svc.RecordFinalWeight(ctx, order.ID, decimal.RequireFromString("230"), "meera")
	require.NoError(t, err)

	first, err := h.svc.Finalize(ctx, order.ID, "meera")
	require.NoError(t, err)
	require.False(t, first.AlreadyFinalized)

	second, err := h.svc.Finalize(ctx, order.ID, "meera")
	require.NoError(t, err)
	assert.True(t, second.AlreadyFinalized)
	assert.Empty(t, second.Shortfalls)
	require.NotNil(t, second.Order.FinalizedAt)
	assert.True(t, second.Order.FinalizedAt.Equal(*first.Order.FinalizedAt), "finalized_at must not move")

	assert.True(t, h.stoneQty(t).Equal(decimal.RequireFromString("70")), "second call must not deduct")
	assert.Equal(t, 460, h.paperQty(t))
}

func TestFinalizeClampsShortfall(t *testing.T) {
	t.Parallel()

	h := newOrdersHarness(t)
	// stone stock is 100g; the order consumes 120g
	order := h.createOrder(t, CreateInput{
		Stones: []StoneUsageInput{
			{StoneNumber: "R1", InventoryType: enums.InventoryTypeInternal, QuantityGrams: decimal.RequireFromString("120")},
		},
		Paper: PaperUsageInput{Width: 16, InventoryType: enums.InventoryTypeInternal, QuantityPcs: 10},
	})
	ctx := context.Background()

	_, err := h.svc.RecordFinalWeight(ctx, order.ID, decimal.RequireFromString("170"), "meera")
	require.NoError(t, err)

	result, err := h.svc.Finalize(ctx, order.ID, "meera")
	require.NoError(t, err, "shortfall must not block finalization")
	assert.True(t, result.Order.IsFinalized)

	require.Len(t, result.Shortfalls, 1)
	warning := result.Shortfalls[0]
	assert.Equal(t, enums.MaterialKindStones, warning.Kind)
	assert.Equal(t, "R1", warning.RefCode)
	assert.True(t, warning.Shortfall.Equal(decimal.RequireFromString("20")), "shortfall, got %s", warning.Shortfall)
	assert.True(t, warning.Deducted.Equal(decimal.RequireFromString("100")))

	assert.True(t, h.stoneQty(t).IsZero(), "stock clamps at zero")
}

func TestFinalizePreconditions(t *testing.T) {
	t.Parallel()

	h := newOrdersHarness(t)
	ctx := context.Background()

	t.Run("missing final weight", func(t *testing.T) {
		order := h.createOrder(t, CreateInput{})
		_, err := h.svc.Finalize(ctx, order.ID, "meera")
		require.Error(t, err)
		assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
	})

	t.Run("cancelled order", func(t *testing.T) {
		order := h.createOrder(t, CreateInput{})
		_, err := h.svc.RecordFinalWeight(ctx, order.ID, decimal.RequireFromString("55"), "meera")
		require.NoError(t, err)
		_, err = h.svc.Cancel(ctx, order.ID, "meera")
		require.NoError(t, err)

		_, err = h.svc.Finalize(ctx, order.ID, "meera")
		require.Error(t, err)
		assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
	})
}

func TestCompleteDoesNotTouchLedger(t *testing.T) {
	t.Parallel()

	h := newOrdersHarness(t)
	order := h.createOrder(t, CreateInput{})
	ctx := context.Background()

	_, err := h.svc.Complete(ctx, order.ID, "meera")
	require.Error(t, err, "complete requires a recorded final weight")
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())

	_, err = h.svc.RecordFinalWeight(ctx, order.ID, decimal.RequireFromString("55"), "meera")
	require.NoError(t, err)

	completed, err := h.svc.Complete(ctx, order.ID, "meera")
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCompleted, completed.Status)
	assert.False(t, completed.IsFinalized, "complete is independent of finalize")

	assert.True(t, h.stoneQty(t).Equal(decimal.RequireFromString("100.00")), "no deduction on complete")
	assert.Equal(t, 500, h.paperQty(t))
}

func TestCancelRejectedOnceFinalized(t *testing.T) {
	t.Parallel()

	h := newOrdersHarness(t)
	order := h.createOrder(t, CreateInput{})
	ctx := context.Background()

	_, err := h.svc.RecordFinalWeight(ctx, order.ID, decimal.RequireFromString("55"), "meera")
	require.NoError(t, err)
	_, err = h.svc.Finalize(ctx, order.ID, "meera")
	require.NoError(t, err)

	_, err = h.svc.Cancel(ctx, order.ID, "meera")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestUpdateAppendsAuditAndRecomputes(t *testing.T) {
	t.Parallel()

	h := newOrdersHarness(t)
	order := h.createOrder(t, CreateInput{
		DiscountType:  enums.DiscountTypePercentage,
		DiscountValue: decimal.RequireFromString("10"),
	})
	ctx := context.Background()

	flat := enums.DiscountTypeFlat
	value := decimal.RequireFromString("750")
	updated, err := h.svc.Update(ctx, order.ID, UpdateInput{
		DiscountType:  &flat,
		DiscountValue: &value,
		Actor:         "arjun",
	})
	require.NoError(t, err)
	assert.True(t, updated.FinalAmount.Equal(decimal.RequireFromString("4250")), "recomputed final, got %s", updated.FinalAmount)

	audits, err := h.svc.Audits(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, audits, 1)
	assert.Equal(t, enums.AuditFieldDiscount, audits[0].Field)
	assert.Equal(t, "arjun", audits[0].Actor)
}

func TestUpdateBlockedAfterFinalize(t *testing.T) {
	t.Parallel()

	h := newOrdersHarness(t)
	order := h.createOrder(t, CreateInput{})
	ctx := context.Background()

	_, err := h.svc.RecordFinalWeight(ctx, order.ID, decimal.RequireFromString("55"), "meera")
	require.NoError(t, err)
	_, err = h.svc.Finalize(ctx, order.ID, "meera")
	require.NoError(t, err)

	paid := enums.PaymentStatusPaid
	_, err = h.svc.Update(ctx, order.ID, UpdateInput{PaymentStatus: &paid, Actor: "meera"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeAlreadyFinalized, pkgerrors.As(err).Code())

	_, err = h.svc.RecordFinalWeight(ctx, order.ID, decimal.RequireFromString("60"), "meera")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeAlreadyFinalized, pkgerrors.As(err).Code())
}

func TestOutJobBalancesComputedOnFinalize(t *testing.T) {
	t.Parallel()

	h := newOrdersHarness(t)
	ctx := context.Background()

	order := h.createOrder(t, CreateInput{
		Type: enums.OrderTypeOut,
		Stones: []StoneUsageInput{
			{StoneNumber: "R1", InventoryType: enums.InventoryTypeInternal, QuantityGrams: decimal.RequireFromString("30")},
		},
		Paper:    PaperUsageInput{Width: 16, InventoryType: enums.InventoryTypeInternal, QuantityPcs: 40},
		Received: &ReceivedMaterials{StoneGrams: decimal.RequireFromString("50"), PaperPcs: 35},
	})

	_, err := h.svc.RecordFinalWeight(ctx, order.ID, decimal.RequireFromString("230"), "meera")
	require.NoError(t, err)
	result, err := h.svc.Finalize(ctx, order.ID, "meera")
	require.NoError(t, err)

	final := result.Order
	require.NotNil(t, final.StoneBalanceGrams)
	require.NotNil(t, final.StoneLossGrams)
	assert.True(t, final.StoneBalanceGrams.Equal(decimal.RequireFromString("20")), "stone balance, got %s", final.StoneBalanceGrams)
	assert.True(t, final.StoneLossGrams.IsZero())

	require.NotNil(t, final.PaperBalancePcs)
	require.NotNil(t, final.PaperLossPcs)
	assert.Equal(t, 0, *final.PaperBalancePcs)
	assert.Equal(t, 5, *final.PaperLossPcs)
}

func TestOutJobRequiresReceivedMaterials(t *testing.T) {
	t.Parallel()

	h := newOrdersHarness(t)
	_, err := h.svc.Create(context.Background(), CreateInput{
		Type:         enums.OrderTypeOut,
		DesignID:     h.design.ID,
		Currency:     enums.CurrencyINR,
		DiscountType: enums.DiscountTypeFlat,
		Paper:        PaperUsageInput{Width: 16, InventoryType: enums.InventoryTypeInternal, QuantityPcs: 10},
		Actor:        "meera",
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}
