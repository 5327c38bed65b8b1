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

// VehicleHandler implements vehicle management under customers.
type VehicleHandler struct {
	Vehicles  *repository.VehicleRepo
	Customers *repository.CustomerRepo
}

func NewVehicleHandler(vehicles *repository.VehicleRepo, customers *repository.CustomerRepo) *VehicleHandler {
	return &VehicleHandler{Vehicles: vehicles, Customers: customers}
}

var (
	CreateVehicleSchema = validation.Schema{
		Params: func() interface{} { return new(idParam) },
		Body:   func() interface{} { return new(vehicleBody) },
	}
	UpdateVehicleSchema = validation.Schema{
		Params: func() interface{} { return new(idParam) },
		Body:   func() interface{} { return new(vehicleBody) },
	}
	VehicleIDSchema = validation.Schema{
		Params: func() interface{} { return new(idParam) },
	}
)

// ListByCustomer returns all vehicles owned by :id.
func (h *VehicleHandler) ListByCustomer(c echo.Context) error {
	customerID := middleware.Input(c).Params.(*idParam).ID

	ctx, cancel := reqCtx(c)
	defer cancel()

	// 404 for an unknown customer instead of an empty list
	if _, err := h.Customers.GetByID(ctx, customerID); err != nil {
		return err
	}
	vehicles, err := h.Vehicles.ListByCustomer(ctx, customerID)
	if err != nil {
		return err
	}
	return httpx.OK(c, http.StatusOK, vehicles)
}

// Create adds a vehicle to customer :id.
func (h *VehicleHandler) Create(c echo.Context) error {
	in := middleware.Input(c)
	customerID := in.Params.(*idParam).ID
	body := in.Body.(*vehicleBody)

	ctx, cancel := reqCtx(c)
	defer cancel()

	v := model.Vehicle{
		CustomerID: customerID,
		Make:       body.Make,
		Model:      body.Model,
		Year:       body.Year,
		Plate:      body.Plate,
	}
	if err := h.Vehicles.Create(ctx, &v); err != nil {
		return err
	}
	return httpx.OK(c, http.StatusCreated, v)
}

// Update rewrites vehicle :id.
func (h *VehicleHandler) Update(c echo.Context) error {
	in := middleware.Input(c)
	id := in.Params.(*idParam).ID
	body := in.Body.(*vehicleBody)

	ctx, cancel := reqCtx(c)
	defer cancel()

	v := model.Vehicle{ID: id, Make: body.Make, Model: body.Model, Year: body.Year, Plate: body.Plate}
	if err := h.Vehicles.Update(ctx, v); err != nil {
		return err
	}
	updated, err := h.Vehicles.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return httpx.OK(c, http.StatusOK, updated)
}

// Delete removes vehicle :id.
func (h *VehicleHandler) Delete(c echo.Context) error {
	id := middleware.Input(c).Params.(*idParam).ID

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Vehicles.Delete(ctx, id); err != nil {
		return err
	}
	return httpx.Message(c, http.StatusOK, "Vehicle deleted")
}
