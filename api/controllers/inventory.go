package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/mdfakih/inventory-backend/api/responses"
	"github.com/mdfakih/inventory-backend/api/validators"
	"github.com/mdfakih/inventory-backend/internal/inventory"
	"github.com/mdfakih/inventory-backend/pkg/enums"
	pkgerrors "github.com/mdfakih/inventory-backend/pkg/errors"
	"github.com/mdfakih/inventory-backend/pkg/logger"
)

type correctQuantityRequest struct {
	RefCode       string          `json:"ref_code" validate:"required"`
	InventoryType string          `json:"inventory_type"`
	Quantity      decimal.Decimal `json:"quantity"`
}

func InventoryStock(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, err := parseKindParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var inventoryType enums.InventoryType
		if raw := strings.TrimSpace(r.URL.Query().Get("inventory_type")); raw != "" {
			inventoryType, err = enums.ParseInventoryType(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid inventory type"))
				return
			}
		}

		stock, err := svc.Stock(r.Context(), kind, inventoryType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stock)
	}
}

// InventoryCorrect sets an absolute quantity without an entry record. This is
// the admin escape hatch, not the stock-in path.
func InventoryCorrect(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, err := parseKindParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req correctQuantityRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		key := inventory.Key{Kind: kind, RefCode: req.RefCode}
		if req.InventoryType != "" {
			inventoryType, err := enums.ParseInventoryType(req.InventoryType)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid inventory type"))
				return
			}
			key.InventoryType = inventoryType
		}

		if err := svc.Correct(r.Context(), key, req.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "corrected"})
	}
}

func parseKindParam(r *http.Request) (enums.MaterialKind, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "kind"))
	kind, err := enums.ParseMaterialKind(raw)
	if err != nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid material kind").
			WithDetails(map[string]string{"kind": raw})
	}
	return kind, nil
}
