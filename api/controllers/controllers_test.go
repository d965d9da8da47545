package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mdfakih/inventory-backend/api/routes"
	"github.com/mdfakih/inventory-backend/internal/designs"
	"github.com/mdfakih/inventory-backend/internal/entries"
	"github.com/mdfakih/inventory-backend/internal/inventory"
	"github.com/mdfakih/inventory-backend/internal/orders"
	"github.com/mdfakih/inventory-backend/pkg/config"
	"github.com/mdfakih/inventory-backend/pkg/db/models"
	"github.com/mdfakih/inventory-backend/pkg/enums"
	"github.com/mdfakih/inventory-backend/pkg/logger"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (g gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return g.db.WithContext(ctx).Transaction(fn)
}

var apiDDL = []string{
	`CREATE TABLE designs (
  id TEXT PRIMARY KEY, name TEXT NOT NULL, number TEXT NOT NULL UNIQUE, image_url TEXT,
  created_at DATETIME, updated_at DATETIME
);`,
	`CREATE TABLE design_prices (
  id TEXT PRIMARY KEY, design_id TEXT NOT NULL, currency TEXT NOT NULL, unit_price NUMERIC NOT NULL,
  UNIQUE (design_id, currency)
);`,
	`CREATE TABLE design_stones (
  id TEXT PRIMARY KEY, design_id TEXT NOT NULL, stone_id TEXT NOT NULL, quantity_grams NUMERIC NOT NULL
);`,
	`CREATE TABLE stones (
  id TEXT PRIMARY KEY, number TEXT NOT NULL, inventory_type TEXT NOT NULL, name TEXT NOT NULL,
  color TEXT, size TEXT, quantity NUMERIC NOT NULL DEFAULT 0, unit TEXT NOT NULL DEFAULT 'g',
  created_at DATETIME, updated_at DATETIME, UNIQUE (number, inventory_type)
);`,
	`CREATE TABLE papers (
  id TEXT PRIMARY KEY, width INTEGER NOT NULL, inventory_type TEXT NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 0, pieces_per_roll INTEGER NOT NULL DEFAULT 1,
  weight_per_piece NUMERIC NOT NULL DEFAULT 0, created_at DATETIME, updated_at DATETIME,
  UNIQUE (width, inventory_type)
);`,
	`CREATE TABLE plastics (
  id TEXT PRIMARY KEY, width INTEGER NOT NULL UNIQUE, quantity INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME, updated_at DATETIME
);`,
	`CREATE TABLE tapes (
  id TEXT PRIMARY KEY, name TEXT NOT NULL UNIQUE, quantity INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME, updated_at DATETIME
);`,
	`CREATE TABLE orders (
  id TEXT PRIMARY KEY, type TEXT NOT NULL, status TEXT NOT NULL DEFAULT 'pending',
  customer_id TEXT, design_id TEXT NOT NULL,
  paper_width INTEGER NOT NULL, paper_inventory_type TEXT NOT NULL,
  paper_quantity_pcs INTEGER NOT NULL, paper_weight_per_pc NUMERIC NOT NULL DEFAULT 0,
  calculated_weight NUMERIC NOT NULL DEFAULT 0, final_total_weight NUMERIC,
  weight_discrepancy NUMERIC, discrepancy_percentage NUMERIC,
  stone_received_grams NUMERIC, stone_used_grams NUMERIC, stone_balance_grams NUMERIC,
  stone_loss_grams NUMERIC, paper_received_pcs INTEGER, paper_balance_pcs INTEGER, paper_loss_pcs INTEGER,
  currency TEXT NOT NULL DEFAULT 'INR', mode_of_payment TEXT,
  payment_status TEXT NOT NULL DEFAULT 'pending', discount_type TEXT NOT NULL DEFAULT 'flat',
  discount_value NUMERIC NOT NULL DEFAULT 0, total_cost NUMERIC NOT NULL DEFAULT 0,
  discounted_amount NUMERIC NOT NULL DEFAULT 0, final_amount NUMERIC NOT NULL DEFAULT 0,
  is_finalized INTEGER NOT NULL DEFAULT 0, finalized_at DATETIME,
  created_by TEXT NOT NULL, updated_by TEXT, created_at DATETIME, updated_at DATETIME
);`,
	`CREATE TABLE order_stones (
  id TEXT PRIMARY KEY, order_id TEXT NOT NULL, stone_id TEXT NOT NULL,
  stone_number TEXT NOT NULL, inventory_type TEXT NOT NULL, quantity_grams NUMERIC NOT NULL
);`,
	`CREATE TABLE order_audits (
  id TEXT PRIMARY KEY, order_id TEXT NOT NULL, field TEXT NOT NULL,
  old_value TEXT, new_value TEXT, actor TEXT NOT NULL, created_at DATETIME
);`,
	`CREATE TABLE inventory_entries (
  id TEXT PRIMARY KEY, type TEXT NOT NULL, supplier_name TEXT, bill_number TEXT, bill_date DATETIME,
  source TEXT, source_order_id TEXT, source_description TEXT,
  created_by TEXT NOT NULL, created_at DATETIME
);`,
	`CREATE TABLE inventory_entry_items (
  id TEXT PRIMARY KEY, entry_id TEXT NOT NULL, kind TEXT NOT NULL, ref_code TEXT NOT NULL,
  inventory_type TEXT, quantity NUMERIC NOT NULL, unit TEXT
);`,
}

type apiHarness struct {
	db      *gorm.DB
	handler http.Handler
	design  *models.Design
}

func newAPIHarness(t *testing.T) *apiHarness {
	t.Helper()

	dsn := "file:api_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	for _, stmt := range apiDDL {
		require.NoError(t, db.Exec(stmt).Error)
	}

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

	design := &models.Design{ID: uuid.New(), Name: "peacock", Number: "D-101"}
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

	tx := gormTxRunner{db: db}
	ledger, err := inventory.NewService(inventory.NewRepository(db), nil)
	require.NoError(t, err)
	designSvc, err := designs.NewService(designs.NewRepository(db))
	require.NoError(t, err)
	entrySvc, err := entries.NewService(tx, entries.NewRepository(db), ledger, nil)
	require.NoError(t, err)
	orderSvc, err := orders.NewService(tx, orders.NewRepository(db), designSvc, ledger, nil)
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.App.Env = "test"
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	handler := routes.NewRouter(cfg, logg, nil, nil, prometheus.NewRegistry(), routes.Services{
		Designs:   designSvc,
		Inventory: ledger,
		Entries:   entrySvc,
		Orders:    orderSvc,
	})
	return &apiHarness{db: db, handler: handler, design: design}
}

func (h *apiHarness) request(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Actor", "meera")
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, dest))
}

func (h *apiHarness) createOrderViaAPI(t *testing.T) uuid.UUID {
	t.Helper()
	rec := h.request(t, http.MethodPost, "/api/v1/orders", map[string]any{
		"type":      "internal",
		"design_id": h.design.ID,
		"paper": map[string]any{
			"width":          16,
			"inventory_type": "internal",
			"quantity_pcs":   40,
		},
		"currency":       "INR",
		"discount_type":  "percentage",
		"discount_value": "10",
		"stones": []map[string]any{
			{"stone_number": "R1", "inventory_type": "internal", "quantity_grams": "30"},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var order models.Order
	decodeData(t, rec, &order)
	return order.ID
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	t.Parallel()

	h := newAPIHarness(t)
	orderID := h.createOrderViaAPI(t)

	rec := h.request(t, http.MethodPut, "/api/v1/orders/"+orderID.String()+"/weight", map[string]any{
		"final_total_weight": "240",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = h.request(t, http.MethodPost, "/api/v1/orders/"+orderID.String()+"/finalize", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result orders.FinalizeResult
	decodeData(t, rec, &result)
	assert.False(t, result.AlreadyFinalized)
	assert.Empty(t, result.Shortfalls)
	assert.True(t, result.Order.IsFinalized)

	// replaying finalize reports the idempotent no-op
	rec = h.request(t, http.MethodPost, "/api/v1/orders/"+orderID.String()+"/finalize", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &result)
	assert.True(t, result.AlreadyFinalized)

	var stone models.Stone
	require.NoError(t, h.db.First(&stone, "number = ?", "R1").Error)
	assert.True(t, stone.Quantity.Equal(decimal.RequireFromString("70")), "one deduction only, got %s", stone.Quantity)
}

func TestFinalizeWithoutWeightReturnsConflict(t *testing.T) {
	t.Parallel()

	h := newAPIHarness(t)
	orderID := h.createOrderViaAPI(t)

	rec := h.request(t, http.MethodPost, "/api/v1/orders/"+orderID.String()+"/finalize", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "STATE_CONFLICT")
}

func TestActorHeaderRequired(t *testing.T) {
	t.Parallel()

	h := newAPIHarness(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "X-Actor")
}

func TestEntryRecordOverHTTP(t *testing.T) {
	t.Parallel()

	h := newAPIHarness(t)
	rec := h.request(t, http.MethodPost, "/api/v1/inventory/entries", map[string]any{
		"type": "purchase",
		"purchase": map[string]any{
			"supplier_name": "Sharma Traders",
			"bill_number":   "B-1041",
			"bill_date":     "2024-03-14T00:00:00Z",
		},
		"items": []map[string]any{
			{"kind": "stones", "ref_code": "R1", "inventory_type": "internal", "quantity": "50", "unit": "g"},
			{"kind": "paper", "ref_code": "16", "inventory_type": "internal", "quantity": 3, "unit": "rolls"},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var stone models.Stone
	require.NoError(t, h.db.First(&stone, "number = ?", "R1").Error)
	assert.True(t, stone.Quantity.Equal(decimal.RequireFromString("150")))
}

func TestEntryRecordRejectsUnknownKey(t *testing.T) {
	t.Parallel()

	h := newAPIHarness(t)
	rec := h.request(t, http.MethodPost, "/api/v1/inventory/entries", map[string]any{
		"type": "purchase",
		"purchase": map[string]any{
			"supplier_name": "Sharma Traders",
			"bill_number":   "B-1041",
			"bill_date":     "2024-03-14T00:00:00Z",
		},
		"items": []map[string]any{
			{"kind": "paper", "ref_code": "9", "inventory_type": "internal", "quantity": 3, "unit": "rolls"},
		},
	})
	assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "UNKNOWN_INVENTORY_KEY")
}

func TestInventoryStockAndCorrection(t *testing.T) {
	t.Parallel()

	h := newAPIHarness(t)

	rec := h.request(t, http.MethodGet, "/api/v1/inventory/stones?inventory_type=internal", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stock inventory.StockList
	decodeData(t, rec, &stock)
	require.Len(t, stock.Stones, 1)

	rec = h.request(t, http.MethodPut, "/api/v1/inventory/stones", map[string]any{
		"ref_code":       "R1",
		"inventory_type": "internal",
		"quantity":       "42.50",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var stone models.Stone
	require.NoError(t, h.db.First(&stone, "number = ?", "R1").Error)
	assert.True(t, stone.Quantity.Equal(decimal.RequireFromString("42.50")))
}
