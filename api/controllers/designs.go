package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mdfakih/inventory-backend/api/responses"
	"github.com/mdfakih/inventory-backend/api/validators"
	"github.com/mdfakih/inventory-backend/internal/designs"
	"github.com/mdfakih/inventory-backend/pkg/enums"
	pkgerrors "github.com/mdfakih/inventory-backend/pkg/errors"
	"github.com/mdfakih/inventory-backend/pkg/logger"
)

type designPriceRequest struct {
	Currency  string          `json:"currency" validate:"required"`
	UnitPrice decimal.Decimal `json:"unit_price" validate:"required"`
}

type designStoneRequest struct {
	StoneID       uuid.UUID       `json:"stone_id" validate:"required"`
	QuantityGrams decimal.Decimal `json:"quantity_grams" validate:"required"`
}

type createDesignRequest struct {
	Name          string               `json:"name" validate:"required"`
	Number        string               `json:"number" validate:"required"`
	ImageURL      string               `json:"image_url"`
	Prices        []designPriceRequest `json:"prices" validate:"required,min=1,dive"`
	DefaultStones []designStoneRequest `json:"default_stones" validate:"dive"`
}

func DesignCreate(svc designs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createDesignRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := designs.CreateInput{
			Name:     req.Name,
			Number:   req.Number,
			ImageURL: req.ImageURL,
		}
		for _, price := range req.Prices {
			currency, err := enums.ParseCurrency(price.Currency)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid currency").
					WithDetails(map[string]string{"currency": price.Currency}))
				return
			}
			input.Prices = append(input.Prices, designs.PriceInput{Currency: currency, UnitPrice: price.UnitPrice})
		}
		for _, stone := range req.DefaultStones {
			input.DefaultStones = append(input.DefaultStones, designs.StoneDefaultInput{
				StoneID:       stone.StoneID,
				QuantityGrams: stone.QuantityGrams,
			})
		}

		design, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, design)
	}
}

func DesignGet(svc designs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUIDParam(r, "designId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		design, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, design)
	}
}

func DesignList(svc designs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func parseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, name+" is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name)
	}
	return id, nil
}
