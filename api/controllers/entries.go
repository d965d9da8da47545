package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mdfakih/inventory-backend/api/middleware"
	"github.com/mdfakih/inventory-backend/api/responses"
	"github.com/mdfakih/inventory-backend/api/validators"
	"github.com/mdfakih/inventory-backend/internal/entries"
	"github.com/mdfakih/inventory-backend/pkg/enums"
	pkgerrors "github.com/mdfakih/inventory-backend/pkg/errors"
	"github.com/mdfakih/inventory-backend/pkg/logger"
	"github.com/mdfakih/inventory-backend/pkg/pagination"
)

type entryLineRequest struct {
	Kind          string          `json:"kind" validate:"required"`
	RefCode       string          `json:"ref_code" validate:"required"`
	InventoryType string          `json:"inventory_type"`
	Quantity      decimal.Decimal `json:"quantity" validate:"required"`
	Unit          string          `json:"unit"`
}

type purchaseDetailsRequest struct {
	SupplierName string    `json:"supplier_name" validate:"required"`
	BillNumber   string    `json:"bill_number" validate:"required"`
	BillDate     time.Time `json:"bill_date" validate:"required"`
}

type returnDetailsRequest struct {
	Source            string     `json:"source" validate:"required"`
	SourceOrderID     *uuid.UUID `json:"source_order_id"`
	SourceDescription string     `json:"source_description"`
}

type recordEntryRequest struct {
	Type     string                  `json:"type" validate:"required"`
	Purchase *purchaseDetailsRequest `json:"purchase"`
	Return   *returnDetailsRequest   `json:"return"`
	Items    []entryLineRequest      `json:"items" validate:"required,min=1,dive"`
}

func EntryRecord(svc entries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req recordEntryRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := buildRecordInput(req, middleware.ActorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.Record(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, entry)
	}
}

func buildRecordInput(req recordEntryRequest, actor string) (entries.RecordInput, error) {
	entryType, err := enums.ParseEntryType(req.Type)
	if err != nil {
		return entries.RecordInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid entry type").
			WithDetails(map[string]string{"type": req.Type})
	}

	input := entries.RecordInput{Type: entryType, Actor: actor}

	if req.Purchase != nil {
		input.Purchase = &entries.PurchaseDetails{
			SupplierName: req.Purchase.SupplierName,
			BillNumber:   req.Purchase.BillNumber,
			BillDate:     req.Purchase.BillDate,
		}
	}
	if req.Return != nil {
		source, err := enums.ParseReturnSource(req.Return.Source)
		if err != nil {
			return entries.RecordInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid return source").
				WithDetails(map[string]string{"source": req.Return.Source})
		}
		input.Return = &entries.ReturnDetails{
			Source:            source,
			SourceOrderID:     req.Return.SourceOrderID,
			SourceDescription: req.Return.SourceDescription,
		}
	}

	for i, item := range req.Items {
		kind, err := enums.ParseMaterialKind(item.Kind)
		if err != nil {
			return entries.RecordInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid material kind").
				WithDetails(map[string]any{"line": i, "kind": item.Kind})
		}
		line := entries.LineInput{
			Kind:     kind,
			RefCode:  item.RefCode,
			Quantity: item.Quantity,
			Unit:     item.Unit,
		}
		if item.InventoryType != "" {
			inventoryType, err := enums.ParseInventoryType(item.InventoryType)
			if err != nil {
				return entries.RecordInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid inventory type").
					WithDetails(map[string]any{"line": i, "inventory_type": item.InventoryType})
			}
			line.InventoryType = inventoryType
		}
		input.Items = append(input.Items, line)
	}
	return input, nil
}

func EntryGet(svc entries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUIDParam(r, "entryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		entry, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entry)
	}
}

func EntryList(svc entries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.List(r.Context(), pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}
