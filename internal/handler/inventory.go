package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/biskaken/garage-api/internal/httpx"
	"github.com/biskaken/garage-api/internal/middleware"
	"github.com/biskaken/garage-api/internal/model"
	"github.com/biskaken/garage-api/internal/repository"
	"github.com/biskaken/garage-api/internal/validation"
)

// InventoryHandler implements the parts catalogue and stock adjustments.
type InventoryHandler struct {
	Parts *repository.PartRepo
}

func NewInventoryHandler(parts *repository.PartRepo) *InventoryHandler {
	return &InventoryHandler{Parts: parts}
}

type partBody struct {
	Name           string `json:"name" validate:"required,min=2,max=200"`
	SKU            string `json:"sku" validate:"required,min=2,max=64"`
	Quantity       int64  `json:"quantity" validate:"gte=0"`
	UnitPriceCents int64  `json:"unit_price_cents" validate:"required,gt=0"`
}

type updatePartBody struct {
	Name           string `json:"name" validate:"required,min=2,max=200"`
	SKU            string `json:"sku" validate:"required,min=2,max=64"`
	UnitPriceCents int64  `json:"unit_price_cents" validate:"required,gt=0"`
}

// adjustBody carries a signed stock delta. Zero is rejected up front so a
// no-op adjustment never reaches the database.
type adjustBody struct {
	Delta int64 `json:"delta" validate:"required"`
}

var (
	ListPartsSchema = validation.Schema{
		Query: func() interface{} { return new(pageQuery) },
	}
	CreatePartSchema = validation.Schema{
		Body: func() interface{} { return new(partBody) },
	}
	UpdatePartSchema = validation.Schema{
		Params: func() interface{} { return new(idParam) },
		Body:   func() interface{} { return new(updatePartBody) },
	}
	AdjustPartSchema = validation.Schema{
		Params: func() interface{} { return new(idParam) },
		Body:   func() interface{} { return new(adjustBody) },
	}
	PartIDSchema = validation.Schema{
		Params: func() interface{} { return new(idParam) },
	}
)

// List returns a page of parts.
func (h *InventoryHandler) List(c echo.Context) error {
	page, limit := middleware.Input(c).Query.(*pageQuery).norm()

	ctx, cancel := reqCtx(c)
	defer cancel()

	parts, total, err := h.Parts.List(ctx, page, limit)
	if err != nil {
		return err
	}
	return httpx.Page(c, parts, httpx.NewPagination(page, limit, total))
}

// Create adds a part to the catalogue.
func (h *InventoryHandler) Create(c echo.Context) error {
	body := middleware.Input(c).Body.(*partBody)

	ctx, cancel := reqCtx(c)
	defer cancel()

	p := model.Part{
		Name:           body.Name,
		SKU:            body.SKU,
		Quantity:       body.Quantity,
		UnitPriceCents: body.UnitPriceCents,
	}
	if err := h.Parts.Create(ctx, &p); err != nil {
		return err
	}
	created, err := h.Parts.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	return httpx.OK(c, http.StatusCreated, created)
}

// Get returns one part.
func (h *InventoryHandler) Get(c echo.Context) error {
	id := middleware.Input(c).Params.(*idParam).ID

	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Parts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return httpx.OK(c, http.StatusOK, p)
}

// Update rewrites a part's name, SKU and price. Stock moves only through
// Adjust.
func (h *InventoryHandler) Update(c echo.Context) error {
	in := middleware.Input(c)
	id := in.Params.(*idParam).ID
	body := in.Body.(*updatePartBody)

	ctx, cancel := reqCtx(c)
	defer cancel()

	p := model.Part{ID: id, Name: body.Name, SKU: body.SKU, UnitPriceCents: body.UnitPriceCents}
	if err := h.Parts.Update(ctx, p); err != nil {
		return err
	}
	updated, err := h.Parts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return httpx.OK(c, http.StatusOK, updated)
}

// Adjust applies a signed stock delta and returns the resulting part.
func (h *InventoryHandler) Adjust(c echo.Context) error {
	in := middleware.Input(c)
	id := in.Params.(*idParam).ID
	delta := in.Body.(*adjustBody).Delta

	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Parts.Adjust(ctx, id, delta)
	if err != nil {
		return err
	}
	return httpx.OK(c, http.StatusOK, p)
}

// Delete removes a part from the catalogue.
func (h *InventoryHandler) Delete(c echo.Context) error {
	id := middleware.Input(c).Params.(*idParam).ID

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Parts.Delete(ctx, id); err != nil {
		return err
	}
	return httpx.Message(c, http.StatusOK, "Part deleted")
}
