package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mdfakih/inventory-backend/api/middleware"
	"github.com/mdfakih/inventory-backend/api/responses"
	"github.com/mdfakih/inventory-backend/api/validators"
	"github.com/mdfakih/inventory-backend/internal/orders"
	"github.com/mdfakih/inventory-backend/pkg/enums"
	pkgerrors "github.com/mdfakih/inventory-backend/pkg/errors"
	"github.com/mdfakih/inventory-backend/pkg/logger"
	"github.com/mdfakih/inventory-backend/pkg/pagination"
)

type orderStoneRequest struct {
	StoneNumber   string          `json:"stone_number" validate:"required"`
	InventoryType string          `json:"inventory_type" validate:"required"`
	QuantityGrams decimal.Decimal `json:"quantity_grams" validate:"required"`
}

type orderPaperRequest struct {
	Width         int              `json:"width" validate:"required"`
	InventoryType string           `json:"inventory_type" validate:"required"`
	QuantityPcs   int              `json:"quantity_pcs" validate:"required,gt=0"`
	WeightPerPc   *decimal.Decimal `json:"weight_per_pc"`
}

type receivedMaterialsRequest struct {
	StoneGrams decimal.Decimal `json:"stone_grams"`
	PaperPcs   int             `json:"paper_pcs"`
}

type createOrderRequest struct {
	Type          string                    `json:"type" validate:"required"`
	CustomerID    *uuid.UUID                `json:"customer_id"`
	DesignID      uuid.UUID                 `json:"design_id" validate:"required"`
	Stones        []orderStoneRequest       `json:"stones" validate:"dive"`
	Paper         orderPaperRequest         `json:"paper" validate:"required"`
	Currency      string                    `json:"currency" validate:"required"`
	ModeOfPayment string                    `json:"mode_of_payment"`
	DiscountType  string                    `json:"discount_type" validate:"required"`
	DiscountValue decimal.Decimal           `json:"discount_value"`
	Received      *receivedMaterialsRequest `json:"received_materials"`
}

type updateOrderRequest struct {
	Stones        *[]orderStoneRequest `json:"stones" validate:"omitempty,dive"`
	Paper         *orderPaperRequest   `json:"paper"`
	DiscountType  *string              `json:"discount_type"`
	DiscountValue *decimal.Decimal     `json:"discount_value"`
	PaymentStatus *string              `json:"payment_status"`
	ModeOfPayment *string              `json:"mode_of_payment"`
}

type finalWeightRequest struct {
	FinalTotalWeight decimal.Decimal `json:"final_total_weight" validate:"required"`
}

func OrderCreate(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := buildCreateInput(req, middleware.ActorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

func buildCreateInput(req createOrderRequest, actor string) (orders.CreateInput, error) {
	orderType, err := enums.ParseOrderType(req.Type)
	if err != nil {
		return orders.CreateInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid order type").
			WithDetails(map[string]string{"type": req.Type})
	}
	currency, err := enums.ParseCurrency(req.Currency)
	if err != nil {
		return orders.CreateInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid currency").
			WithDetails(map[string]string{"currency": req.Currency})
	}
	discountType, err := enums.ParseDiscountType(req.DiscountType)
	if err != nil {
		return orders.CreateInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid discount type").
			WithDetails(map[string]string{"discount_type": req.DiscountType})
	}

	input := orders.CreateInput{
		Type:          orderType,
		CustomerID:    req.CustomerID,
		DesignID:      req.DesignID,
		Currency:      currency,
		ModeOfPayment: req.ModeOfPayment,
		DiscountType:  discountType,
		DiscountValue: req.DiscountValue,
		Actor:         actor,
	}

	input.Stones, err = buildStoneInputs(req.Stones)
	if err != nil {
		return orders.CreateInput{}, err
	}
	input.Paper, err = buildPaperInput(req.Paper)
	if err != nil {
		return orders.CreateInput{}, err
	}
	if req.Received != nil {
		input.Received = &orders.ReceivedMaterials{
			StoneGrams: req.Received.StoneGrams,
			PaperPcs:   req.Received.PaperPcs,
		}
	}
	return input, nil
}

func buildStoneInputs(reqs []orderStoneRequest) ([]orders.StoneUsageInput, error) {
	lines := make([]orders.StoneUsageInput, 0, len(reqs))
	for _, stone := range reqs {
		inventoryType, err := enums.ParseInventoryType(stone.InventoryType)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid stone inventory type").
				WithDetails(map[string]string{"stone_number": stone.StoneNumber})
		}
		lines = append(lines, orders.StoneUsageInput{
			StoneNumber:   stone.StoneNumber,
			InventoryType: inventoryType,
			QuantityGrams: stone.QuantityGrams,
		})
	}
	return lines, nil
}

func buildPaperInput(req orderPaperRequest) (orders.PaperUsageInput, error) {
	inventoryType, err := enums.ParseInventoryType(req.InventoryType)
	if err != nil {
		return orders.PaperUsageInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid paper inventory type")
	}
	return orders.PaperUsageInput{
		Width:         req.Width,
		InventoryType: inventoryType,
		QuantityPcs:   req.QuantityPcs,
		WeightPerPc:   req.WeightPerPc,
	}, nil
}

func OrderGet(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func OrderList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		var filters orders.Filters
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseOrderStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter"))
				return
			}
			filters.Status = &status
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
			orderType, err := enums.ParseOrderType(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid type filter"))
				return
			}
			filters.Type = &orderType
		}

		page, err := svc.List(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func OrderUpdate(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := orders.UpdateInput{
			DiscountValue: req.DiscountValue,
			ModeOfPayment: req.ModeOfPayment,
			Actor:         middleware.ActorFromContext(r.Context()),
		}
		if req.Stones != nil {
			lines, err := buildStoneInputs(*req.Stones)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.Stones = &lines
		}
		if req.Paper != nil {
			paper, err := buildPaperInput(*req.Paper)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.Paper = &paper
		}
		if req.DiscountType != nil {
			discountType, err := enums.ParseDiscountType(*req.DiscountType)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid discount type"))
				return
			}
			input.DiscountType = &discountType
		}
		if req.PaymentStatus != nil {
			status, err := enums.ParsePaymentStatus(*req.PaymentStatus)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment status"))
				return
			}
			input.PaymentStatus = &status
		}

		order, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func OrderRecordFinalWeight(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req finalWeightRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.RecordFinalWeight(r.Context(), id, req.FinalTotalWeight, middleware.ActorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func OrderFinalize(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithOrderID(ctx, id.String())
		}

		result, err := svc.Finalize(ctx, id, middleware.ActorFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if logg != nil {
			for _, warning := range result.Shortfalls {
				wctx := logg.WithFields(ctx, map[string]any{
					"kind":      warning.Kind.String(),
					"ref":       warning.RefCode,
					"shortfall": warning.Shortfall.String(),
				})
				logg.Warn(wctx, "inventory shortfall on finalize")
			}
		}
		responses.WriteSuccess(w, result)
	}
}

func OrderComplete(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Complete(r.Context(), id, middleware.ActorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func OrderCancel(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Cancel(r.Context(), id, middleware.ActorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func OrderAudits(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		audits, err := svc.Audits(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, audits)
	}
}
