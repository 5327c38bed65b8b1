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

// CustomerHandler implements the customer book.
type CustomerHandler struct {
	Customers *repository.CustomerRepo
	Vehicles  *repository.VehicleRepo
}

func NewCustomerHandler(customers *repository.CustomerRepo, vehicles *repository.VehicleRepo) *CustomerHandler {
	return &CustomerHandler{Customers: customers, Vehicles: vehicles}
}

type vehicleBody struct {
	Make  string `json:"make" validate:"required,min=2"`
	Model string `json:"model" validate:"required"`
	Year  int    `json:"year" validate:"required,vehicleyear"`
	Plate string `json:"plate" validate:"required,min=2"`
}

type createCustomerBody struct {
	Name    string       `json:"name" validate:"required,min=2"`
	Phone   string       `json:"phone" validate:"required,min=10"`
	Email   string       `json:"email" validate:"omitempty,email"`
	Address string       `json:"address" validate:"omitempty,max=255"`
	Vehicle *vehicleBody `json:"vehicle"`
}

type updateCustomerBody struct {
	Name    string `json:"name" validate:"required,min=2"`
	Phone   string `json:"phone" validate:"required,min=10"`
	Email   string `json:"email" validate:"omitempty,email"`
	Address string `json:"address" validate:"omitempty,max=255"`
}

type customerListQuery struct {
	Page   int    `query:"page" validate:"omitempty,gte=1"`
	Limit  int    `query:"limit" validate:"omitempty,gte=1,lte=100"`
	Search string `query:"search" validate:"omitempty,max=100"`
}

func (q customerListQuery) norm() (int, int) {
	return pageQuery{Page: q.Page, Limit: q.Limit}.norm()
}

var (
	ListCustomersSchema = validation.Schema{
		Query: func() interface{} { return new(customerListQuery) },
	}
	CreateCustomerSchema = validation.Schema{
		Body: func() interface{} { return new(createCustomerBody) },
	}
	UpdateCustomerSchema = validation.Schema{
		Params: func() interface{} { return new(idParam) },
		Body:   func() interface{} { return new(updateCustomerBody) },
	}
	CustomerIDSchema = validation.Schema{
		Params: func() interface{} { return new(idParam) },
	}
)

// customerDetail embeds the customer's vehicles in detail responses.
type customerDetail struct {
	model.Customer
	Vehicles []model.Vehicle `json:"vehicles"`
}

// List returns a page of customers, optionally filtered by name or phone.
func (h *CustomerHandler) List(c echo.Context) error {
	q := middleware.Input(c).Query.(*customerListQuery)
	page, limit := q.norm()

	ctx, cancel := reqCtx(c)
	defer cancel()

	customers, total, err := h.Customers.List(ctx, page, limit, q.Search)
	if err != nil {
		return err
	}
	return httpx.Page(c, customers, httpx.NewPagination(page, limit, total))
}

// Create registers a customer, optionally together with their first vehicle.
func (h *CustomerHandler) Create(c echo.Context) error {
	body := middleware.Input(c).Body.(*createCustomerBody)

	cust := model.Customer{
		Name:    body.Name,
		Phone:   body.Phone,
		Email:   body.Email,
		Address: body.Address,
	}
	var veh *model.Vehicle
	if body.Vehicle != nil {
		veh = &model.Vehicle{
			Make:  body.Vehicle.Make,
			Model: body.Vehicle.Model,
			Year:  body.Vehicle.Year,
			Plate: body.Vehicle.Plate,
		}
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Customers.Create(ctx, &cust, veh); err != nil {
		return err
	}
	out := customerDetail{Customer: cust, Vehicles: []model.Vehicle{}}
	if veh != nil {
		out.Vehicles = append(out.Vehicles, *veh)
	}
	return httpx.OK(c, http.StatusCreated, out)
}

// Get returns one customer with their vehicles.
func (h *CustomerHandler) Get(c echo.Context) error {
	id := middleware.Input(c).Params.(*idParam).ID

	ctx, cancel := reqCtx(c)
	defer cancel()

	cust, err := h.Customers.GetByID(ctx, id)
	if err != nil {
		return err
	}
	vehicles, err := h.Vehicles.ListByCustomer(ctx, id)
	if err != nil {
		return err
	}
	return httpx.OK(c, http.StatusOK, customerDetail{Customer: cust, Vehicles: vehicles})
}

// Update rewrites a customer's contact details.
func (h *CustomerHandler) Update(c echo.Context) error {
	in := middleware.Input(c)
	id := in.Params.(*idParam).ID
	body := in.Body.(*updateCustomerBody)

	ctx, cancel := reqCtx(c)
	defer cancel()

	cust := model.Customer{ID: id, Name: body.Name, Phone: body.Phone, Email: body.Email, Address: body.Address}
	if err := h.Customers.Update(ctx, cust); err != nil {
		return err
	}
	updated, err := h.Customers.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return httpx.OK(c, http.StatusOK, updated)
}

// Delete removes a customer without history.
func (h *CustomerHandler) Delete(c echo.Context) error {
	id := middleware.Input(c).Params.(*idParam).ID

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Customers.Delete(ctx, id); err != nil {
		return err
	}
	return httpx.Message(c, http.StatusOK, "Customer deleted")
}
