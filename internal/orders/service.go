package orders

import (
	"context"
	stdErrors "errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mdfakih/inventory-backend/internal/costing"
	"github.com/mdfakih/inventory-backend/internal/designs"
	"github.com/mdfakih/inventory-backend/internal/inventory"
	"github.com/mdfakih/inventory-backend/internal/reconciliation"
	"github.com/mdfakih/inventory-backend/pkg/db/models"
	"github.com/mdfakih/inventory-backend/pkg/enums"
	pkgerrors "github.com/mdfakih/inventory-backend/pkg/errors"
	"github.com/mdfakih/inventory-backend/pkg/metrics"
	"github.com/mdfakih/inventory-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service drives the order lifecycle. Finalize is the only operation that
// touches the inventory ledger.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Order, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, params pagination.Params, filters Filters) (Page, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Order, error)
	RecordFinalWeight(ctx context.Context, id uuid.UUID, weight decimal.Decimal, actor string) (*models.Order, error)
	Finalize(ctx context.Context, id uuid.UUID, actor string) (*FinalizeResult, error)
	Complete(ctx context.Context, id uuid.UUID, actor string) (*models.Order, error)
	Cancel(ctx context.Context, id uuid.UUID, actor string) (*models.Order, error)
	Audits(ctx context.Context, id uuid.UUID) ([]models.OrderAudit, error)
}

type service struct {
	tx      txRunner
	repo    Repository
	designs designs.Service
	ledger  inventory.Service
	metrics *metrics.CoreMetrics
}

// NewService wires the order service. Metrics may be nil.
func NewService(tx txRunner, repo Repository, designSvc designs.Service, ledger inventory.Service, coreMetrics *metrics.CoreMetrics) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if designSvc == nil {
		return nil, fmt.Errorf("designs service required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("inventory ledger required")
	}
	return &service{tx: tx, repo: repo, designs: designSvc, ledger: ledger, metrics: coreMetrics}, nil
}

// errRepeatFinalize signals the conditional finalize update matched no row.
var errRepeatFinalize = stdErrors.New("finalize flag already set")

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Order, error) {
	if input.Actor == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor identity required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order type")
	}
	if !input.Currency.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid currency")
	}
	if input.Type == enums.OrderTypeOut && input.Received == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "out jobs require received materials")
	}

	design, err := s.designs.Get(ctx, input.DesignID)
	if err != nil {
		return nil, err
	}
	unitPrice, err := s.designs.UnitPrice(design, input.Currency)
	if err != nil {
		return nil, err
	}

	paper, err := s.resolvePaper(ctx, input.Paper)
	if err != nil {
		return nil, err
	}

	stones, err := s.resolveStones(ctx, design, input.Stones)
	if err != nil {
		return nil, err
	}

	quote, err := costing.Compute(unitPrice, input.Paper.QuantityPcs, costing.Discount{
		Type:  input.DiscountType,
		Value: input.DiscountValue,
	})
	if err != nil {
		return nil, err
	}

	calculated, err := calculatedWeight(stones, input.Paper.QuantityPcs, paper.weightPerPc)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		ID:         uuid.New(),
		Type:       input.Type,
		Status:     enums.OrderStatusPending,
		CustomerID: input.CustomerID,
		DesignID:   design.ID,
		Stones:     stones,

		PaperWidth:         paper.width.Int(),
		PaperInventoryType: input.Paper.InventoryType,
		PaperQuantityPcs:   input.Paper.QuantityPcs,
		PaperWeightPerPc:   paper.weightPerPc,

		CalculatedWeight: calculated,

		Currency:         input.Currency,
		ModeOfPayment:    input.ModeOfPayment,
		PaymentStatus:    enums.PaymentStatusPending,
		DiscountType:     input.DiscountType,
		DiscountValue:    input.DiscountValue,
		TotalCost:        quote.TotalCost,
		DiscountedAmount: quote.DiscountedAmount,
		FinalAmount:      quote.FinalAmount,

		CreatedBy: input.Actor,
		UpdatedBy: input.Actor,
	}
	for i := range order.Stones {
		order.Stones[i].OrderID = order.ID
	}

	if input.Type == enums.OrderTypeOut {
		used := stoneTotal(stones)
		received := input.Received.StoneGrams
		paperReceived := input.Received.PaperPcs
		order.StoneReceivedGrams = &received
		order.StoneUsedGrams = &used
		order.PaperReceivedPcs = &paperReceived
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Create(ctx, order)
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
	}
	return order, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.load(ctx, id)
}

func (s *service) List(ctx context.Context, params pagination.Params, filters Filters) (Page, error) {
	if filters.Status != nil && !filters.Status.IsValid() {
		return Page{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status filter")
	}
	if filters.Type != nil && !filters.Type.IsValid() {
		return Page{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid order type filter")
	}
	rows, next, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return Page{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return Page{Orders: rows, NextCursor: next}, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Order, error) {
	if input.Actor == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor identity required")
	}
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.IsFinalized {
		return nil, pkgerrors.New(pkgerrors.CodeAlreadyFinalized, "finalized orders are immutable")
	}

	updates := map[string]any{"updated_by": input.Actor}
	var audits []models.OrderAudit
	var newStones []models.OrderStone
	stonesChanged := false

	addAudit := func(field enums.AuditField, oldValue, newValue string) {
		audits = append(audits, models.OrderAudit{
			ID:       uuid.New(),
			OrderID:  order.ID,
			Field:    field,
			OldValue: oldValue,
			NewValue: newValue,
			Actor:    input.Actor,
		})
	}

	if input.Stones != nil {
		design, err := s.designs.Get(ctx, order.DesignID)
		if err != nil {
			return nil, err
		}
		newStones, err = s.resolveStones(ctx, design, *input.Stones)
		if err != nil {
			return nil, err
		}
		for i := range newStones {
			newStones[i].OrderID = order.ID
		}
		stonesChanged = true
		addAudit(enums.AuditFieldStonesUsed, stoneSummary(order.Stones), stoneSummary(newStones))
		order.Stones = newStones
	}

	if input.Paper != nil {
		resolved, err := s.resolvePaper(ctx, *input.Paper)
		if err != nil {
			return nil, err
		}
		oldSummary := paperSummary(order.PaperWidth, order.PaperInventoryType, order.PaperQuantityPcs)
		order.PaperWidth = resolved.width.Int()
		order.PaperInventoryType = input.Paper.InventoryType
		order.PaperQuantityPcs = input.Paper.QuantityPcs
		order.PaperWeightPerPc = resolved.weightPerPc
		updates["paper_width"] = order.PaperWidth
		updates["paper_inventory_type"] = order.PaperInventoryType
		updates["paper_quantity_pcs"] = order.PaperQuantityPcs
		updates["paper_weight_per_pc"] = order.PaperWeightPerPc
		addAudit(enums.AuditFieldPaperUsed, oldSummary,
			paperSummary(order.PaperWidth, order.PaperInventoryType, order.PaperQuantityPcs))
	}

	if input.DiscountType != nil || input.DiscountValue != nil {
		oldSummary := discountSummary(order.DiscountType, order.DiscountValue)
		if input.DiscountType != nil {
			order.DiscountType = *input.DiscountType
		}
		if input.DiscountValue != nil {
			order.DiscountValue = *input.DiscountValue
		}
		updates["discount_type"] = order.DiscountType
		updates["discount_value"] = order.DiscountValue
		addAudit(enums.AuditFieldDiscount, oldSummary, discountSummary(order.DiscountType, order.DiscountValue))
	}

	if input.PaymentStatus != nil {
		if !input.PaymentStatus.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment status")
		}
		addAudit(enums.AuditFieldPaymentStatus, order.PaymentStatus.String(), input.PaymentStatus.String())
		order.PaymentStatus = *input.PaymentStatus
		updates["payment_status"] = order.PaymentStatus
	}

	if input.ModeOfPayment != nil {
		addAudit(enums.AuditFieldModeOfPayment, order.ModeOfPayment, *input.ModeOfPayment)
		order.ModeOfPayment = *input.ModeOfPayment
		updates["mode_of_payment"] = order.ModeOfPayment
	}

	if len(audits) == 0 {
		return order, nil
	}

	// Derived fields follow the mutable inputs.
	design, err := s.designs.Get(ctx, order.DesignID)
	if err != nil {
		return nil, err
	}
	unitPrice, err := s.designs.UnitPrice(design, order.Currency)
	if err != nil {
		return nil, err
	}
	quote, err := costing.Compute(unitPrice, order.PaperQuantityPcs, costing.Discount{
		Type:  order.DiscountType,
		Value: order.DiscountValue,
	})
	if err != nil {
		return nil, err
	}
	order.TotalCost = quote.TotalCost
	order.DiscountedAmount = quote.DiscountedAmount
	order.FinalAmount = quote.FinalAmount
	updates["total_cost"] = order.TotalCost
	updates["discounted_amount"] = order.DiscountedAmount
	updates["final_amount"] = order.FinalAmount

	calculated, err := calculatedWeight(order.Stones, order.PaperQuantityPcs, order.PaperWeightPerPc)
	if err != nil {
		return nil, err
	}
	order.CalculatedWeight = calculated
	updates["calculated_weight"] = calculated
	if order.FinalTotalWeight != nil {
		disc := reconciliation.Reconcile(calculated, *order.FinalTotalWeight)
		order.WeightDiscrepancy = &disc.Weight
		order.DiscrepancyPercentage = &disc.Percentage
		updates["weight_discrepancy"] = disc.Weight
		updates["discrepancy_percentage"] = disc.Percentage
	}
	if order.Type == enums.OrderTypeOut {
		used := stoneTotal(order.Stones)
		order.StoneUsedGrams = &used
		updates["stone_used_grams"] = used
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if stonesChanged {
			if err := repo.ReplaceStones(ctx, order.ID, newStones); err != nil {
				return err
			}
		}
		if err := repo.Update(ctx, order.ID, updates); err != nil {
			return err
		}
		for i := range audits {
			if err := repo.AppendAudit(ctx, &audits[i]); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order update")
	}
	return order, nil
}

func (s *service) RecordFinalWeight(ctx context.Context, id uuid.UUID, weight decimal.Decimal, actor string) (*models.Order, error) {
	if actor == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor identity required")
	}
	if weight.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "final total weight cannot be negative")
	}
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.IsFinalized {
		return nil, pkgerrors.New(pkgerrors.CodeAlreadyFinalized, "finalized orders are immutable")
	}

	disc := reconciliation.Reconcile(order.CalculatedWeight, weight)
	oldValue := ""
	if order.FinalTotalWeight != nil {
		oldValue = order.FinalTotalWeight.String()
	}
	order.FinalTotalWeight = &weight
	order.WeightDiscrepancy = &disc.Weight
	order.DiscrepancyPercentage = &disc.Percentage

	audit := models.OrderAudit{
		ID:       uuid.New(),
		OrderID:  order.ID,
		Field:    enums.AuditFieldFinalTotalWeight,
		OldValue: oldValue,
		NewValue: weight.String(),
		Actor:    actor,
	}
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Update(ctx, order.ID, map[string]any{
			"final_total_weight":     weight,
			"weight_discrepancy":     disc.Weight,
			"discrepancy_percentage": disc.Percentage,
			"updated_by":             actor,
		}); err != nil {
			return err
		}
		return repo.AppendAudit(ctx, &audit)
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist final weight")
	}
	return order, nil
}

func (s *service) Finalize(ctx context.Context, id uuid.UUID, actor string) (*FinalizeResult, error) {
	if actor == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor identity required")
	}
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if order.IsFinalized {
		s.metrics.IncFinalization(metrics.FinalizeOutcomeNoop)
		return &FinalizeResult{Order: order, AlreadyFinalized: true}, nil
	}

	if order.Status == enums.OrderStatusCancelled {
		s.metrics.IncFinalization(metrics.FinalizeOutcomeRejected)
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cannot finalize a cancelled order")
	}
	if order.FinalTotalWeight == nil {
		s.metrics.IncFinalization(metrics.FinalizeOutcomeRejected)
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "final total weight not recorded")
	}
	if order.Type == enums.OrderTypeOut && (order.StoneReceivedGrams == nil || order.PaperReceivedPcs == nil) {
		s.metrics.IncFinalization(metrics.FinalizeOutcomeRejected)
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "out job consumption not resolvable")
	}

	now := time.Now().UTC()
	var shortfalls []ShortfallWarning

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		flipped, err := repo.MarkFinalized(ctx, order.ID, now, actor)
		if err != nil {
			return err
		}
		if !flipped {
			return errRepeatFinalize
		}

		for _, line := range order.Stones {
			result, err := s.ledger.Decrement(ctx, tx,
				inventory.StoneKey(line.StoneNumber, line.InventoryType), line.QuantityGrams)
			if err != nil {
				return err
			}
			if result.Clamped() {
				shortfalls = append(shortfalls, ShortfallWarning{
					Kind:          enums.MaterialKindStones,
					RefCode:       line.StoneNumber,
					InventoryType: line.InventoryType,
					Requested:     result.Requested,
					Deducted:      result.Deducted,
					Shortfall:     result.Shortfall,
				})
			}
		}

		result, err := s.ledger.Decrement(ctx, tx,
			inventory.PaperKey(order.PaperWidth, order.PaperInventoryType),
			decimal.NewFromInt(int64(order.PaperQuantityPcs)))
		if err != nil {
			return err
		}
		if result.Clamped() {
			shortfalls = append(shortfalls, ShortfallWarning{
				Kind:          enums.MaterialKindPaper,
				RefCode:       strconv.Itoa(order.PaperWidth),
				InventoryType: order.PaperInventoryType,
				Requested:     result.Requested,
				Deducted:      result.Deducted,
				Shortfall:     result.Shortfall,
			})
		}

		disc := reconciliation.Reconcile(order.CalculatedWeight, *order.FinalTotalWeight)
		updates := map[string]any{
			"weight_discrepancy":     disc.Weight,
			"discrepancy_percentage": disc.Percentage,
		}
		if order.Type == enums.OrderTypeOut {
			used := stoneTotal(order.Stones)
			updates["stone_used_grams"] = used
			updates["stone_balance_grams"] = decimal.Max(order.StoneReceivedGrams.Sub(used), decimal.Zero)
			updates["stone_loss_grams"] = decimal.Max(used.Sub(*order.StoneReceivedGrams), decimal.Zero)

			paperBalance := *order.PaperReceivedPcs - order.PaperQuantityPcs
			paperLoss := 0
			if paperBalance < 0 {
				paperLoss = -paperBalance
				paperBalance = 0
			}
			updates["paper_balance_pcs"] = paperBalance
			updates["paper_loss_pcs"] = paperLoss
		}
		if err := repo.Update(ctx, order.ID, updates); err != nil {
			return err
		}

		return repo.AppendAudit(ctx, &models.OrderAudit{
			ID:       uuid.New(),
			OrderID:  order.ID,
			Field:    enums.AuditFieldFinalized,
			OldValue: "false",
			NewValue: "true",
			Actor:    actor,
		})
	})
	if err != nil {
		if stdErrors.Is(err, errRepeatFinalize) {
			finalized, loadErr := s.load(ctx, id)
			if loadErr != nil {
				return nil, loadErr
			}
			s.metrics.IncFinalization(metrics.FinalizeOutcomeNoop)
			return &FinalizeResult{Order: finalized, AlreadyFinalized: true}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "finalize order")
	}

	s.metrics.IncFinalization(metrics.FinalizeOutcomeApplied)
	for _, warning := range shortfalls {
		s.metrics.IncShortfall(warning.Kind.String())
	}

	finalized, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return &FinalizeResult{Order: finalized, Shortfalls: shortfalls}, nil
}

func (s *service) Complete(ctx context.Context, id uuid.UUID, actor string) (*models.Order, error) {
	if actor == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor identity required")
	}
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status == enums.OrderStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cannot complete a cancelled order")
	}
	if order.FinalTotalWeight == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "final total weight not recorded")
	}
	if order.Status == enums.OrderStatusCompleted {
		return order, nil
	}
	return s.transitionStatus(ctx, order, enums.OrderStatusCompleted, actor)
}

func (s *service) Cancel(ctx context.Context, id uuid.UUID, actor string) (*models.Order, error) {
	if actor == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor identity required")
	}
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.IsFinalized {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cannot cancel a finalized order")
	}
	if order.Status == enums.OrderStatusCancelled {
		return order, nil
	}
	return s.transitionStatus(ctx, order, enums.OrderStatusCancelled, actor)
}

func (s *service) Audits(ctx context.Context, id uuid.UUID) ([]models.OrderAudit, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	audits, err := s.repo.FindAudits(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order audits")
	}
	return audits, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) transitionStatus(ctx context.Context, order *models.Order, status enums.OrderStatus, actor string) (*models.Order, error) {
	audit := models.OrderAudit{
		ID:       uuid.New(),
		OrderID:  order.ID,
		Field:    enums.AuditFieldStatus,
		OldValue: order.Status.String(),
		NewValue: status.String(),
		Actor:    actor,
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Update(ctx, order.ID, map[string]any{
			"status":     status,
			"updated_by": actor,
		}); err != nil {
			return err
		}
		return repo.AppendAudit(ctx, &audit)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist status change")
	}
	order.Status = status
	order.UpdatedBy = actor
	return order, nil
}

type resolvedPaper struct {
	width       enums.PaperWidth
	weightPerPc decimal.Decimal
}

func (s *service) resolvePaper(ctx context.Context, input PaperUsageInput) (resolvedPaper, error) {
	width, err := enums.ParsePaperWidth(input.Width)
	if err != nil {
		return resolvedPaper{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid paper width").
			WithDetails(map[string]int{"width": input.Width})
	}
	if !input.InventoryType.IsValid() {
		return resolvedPaper{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid paper inventory type")
	}
	if input.QuantityPcs <= 0 {
		return resolvedPaper{}, pkgerrors.New(pkgerrors.CodeValidation, "paper quantity must be positive")
	}
	if input.WeightPerPc != nil {
		if input.WeightPerPc.IsNegative() {
			return resolvedPaper{}, pkgerrors.New(pkgerrors.CodeValidation, "paper weight per piece cannot be negative")
		}
		return resolvedPaper{width: width, weightPerPc: *input.WeightPerPc}, nil
	}

	paper, err := s.repo.FindPaperByKey(ctx, input.Width, input.InventoryType)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return resolvedPaper{}, pkgerrors.New(pkgerrors.CodeUnknownInventoryKey, "paper record not found").
				WithDetails(map[string]any{"width": input.Width, "inventory_type": input.InventoryType})
		}
		return resolvedPaper{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve paper")
	}
	return resolvedPaper{width: width, weightPerPc: paper.WeightPerPiece}, nil
}

// resolveStones turns the requested stone lines into order snapshots. An
// empty request falls back to the design's default bill of materials.
func (s *service) resolveStones(ctx context.Context, design *models.Design, requested []StoneUsageInput) ([]models.OrderStone, error) {
	if len(requested) == 0 {
		lines := make([]models.OrderStone, 0, len(design.DefaultStones))
		for _, def := range design.DefaultStones {
			stone, err := s.repo.FindStoneByID(ctx, def.StoneID)
			if err != nil {
				if stdErrors.Is(err, gorm.ErrRecordNotFound) {
					return nil, pkgerrors.New(pkgerrors.CodeUnknownInventoryKey, "stone record not found").
						WithDetails(map[string]string{"stone_id": def.StoneID.String()})
				}
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve default stone")
			}
			lines = append(lines, models.OrderStone{
				ID:            uuid.New(),
				StoneID:       stone.ID,
				StoneNumber:   stone.Number,
				InventoryType: stone.InventoryType,
				QuantityGrams: def.QuantityGrams,
			})
		}
		return lines, nil
	}

	lines := make([]models.OrderStone, 0, len(requested))
	for _, line := range requested {
		if !line.InventoryType.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid stone inventory type").
				WithDetails(map[string]string{"stone_number": line.StoneNumber})
		}
		if err := inventory.ValidateAmount(enums.MaterialKindStones, line.QuantityGrams); err != nil {
			return nil, err
		}
		stone, err := s.repo.FindStoneByKey(ctx, line.StoneNumber, line.InventoryType)
		if err != nil {
			if stdErrors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeUnknownInventoryKey, "stone record not found").
					WithDetails(map[string]string{
						"stone_number":   line.StoneNumber,
						"inventory_type": line.InventoryType.String(),
					})
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve stone")
		}
		lines = append(lines, models.OrderStone{
			ID:            uuid.New(),
			StoneID:       stone.ID,
			StoneNumber:   stone.Number,
			InventoryType: stone.InventoryType,
			QuantityGrams: line.QuantityGrams,
		})
	}
	return lines, nil
}

func calculatedWeight(stones []models.OrderStone, paperPcs int, weightPerPc decimal.Decimal) (decimal.Decimal, error) {
	lines := make([]reconciliation.StoneLine, len(stones))
	for i, stone := range stones {
		lines[i] = reconciliation.StoneLine{QuantityGrams: stone.QuantityGrams}
	}
	return reconciliation.CalculatedWeight(lines, reconciliation.PaperUsage{
		QuantityPcs:    paperPcs,
		WeightPerPiece: weightPerPc,
	})
}

func stoneTotal(stones []models.OrderStone) decimal.Decimal {
	total := decimal.Zero
	for _, stone := range stones {
		total = total.Add(stone.QuantityGrams)
	}
	return total
}

func stoneSummary(stones []models.OrderStone) string {
	parts := make([]string, len(stones))
	for i, stone := range stones {
		parts[i] = fmt.Sprintf("%s/%s:%s", stone.StoneNumber, stone.InventoryType, stone.QuantityGrams.String())
	}
	return strings.Join(parts, ",")
}

func paperSummary(width int, inventoryType enums.InventoryType, quantityPcs int) string {
	return fmt.Sprintf("%d/%s:%d", width, inventoryType, quantityPcs)
}

func discountSummary(discountType enums.DiscountType, value decimal.Decimal) string {
	return fmt.Sprintf("%s:%s", discountType, value.String())
}
