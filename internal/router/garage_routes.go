package router

import (
	"github.com/labstack/echo/v4"

	"github.com/biskaken/garage-api/internal/handler"
	"github.com/biskaken/garage-api/internal/middleware"
	"github.com/biskaken/garage-api/internal/model"
	"github.com/biskaken/garage-api/internal/token"
)

// staffRoles is the everyday crew: reads and writes on shop records are open
// to all three roles; destructive operations stay ADMIN-only.
var staffRoles = []string{model.RoleAdmin, model.RoleSubAdmin, model.RoleStaff}

// RegisterCustomers registers the customer book and the vehicles nested
// under it.
func RegisterCustomers(e *echo.Echo, ch *handler.CustomerHandler, vh *handler.VehicleHandler, codec *token.Codec, store middleware.PrincipalSource) {
	g := e.Group("/api/customers",
		middleware.Authenticate(codec, store),
		middleware.RequireRole(staffRoles...),
	)
	g.GET("", ch.List, middleware.Validate(handler.ListCustomersSchema))
	g.POST("", ch.Create, middleware.Validate(handler.CreateCustomerSchema))
	g.GET("/:id", ch.Get, middleware.Validate(handler.CustomerIDSchema))
	g.PUT("/:id", ch.Update, middleware.Validate(handler.UpdateCustomerSchema))
	g.DELETE("/:id", ch.Delete,
		middleware.RequireRole(model.RoleAdmin),
		middleware.Validate(handler.CustomerIDSchema))

	// Vehicles hang off their owner: :id here is the customer.
	g.GET("/:id/vehicles", vh.ListByCustomer, middleware.Validate(handler.CustomerIDSchema))
	g.POST("/:id/vehicles", vh.Create, middleware.Validate(handler.CreateVehicleSchema))
}

// RegisterVehicles registers direct vehicle operations under /api/vehicles.
func RegisterVehicles(e *echo.Echo, vh *handler.VehicleHandler, codec *token.Codec, store middleware.PrincipalSource) {
	g := e.Group("/api/vehicles",
		middleware.Authenticate(codec, store),
		middleware.RequireRole(staffRoles...),
	)
	g.PUT("/:id", vh.Update, middleware.Validate(handler.UpdateVehicleSchema))
	g.DELETE("/:id", vh.Delete,
		middleware.RequireRole(model.RoleAdmin),
		middleware.Validate(handler.VehicleIDSchema))
}

// RegisterJobs registers repair-job endpoints under /api/jobs.
func RegisterJobs(e *echo.Echo, h *handler.JobHandler, codec *token.Codec, store middleware.PrincipalSource) {
	g := e.Group("/api/jobs",
		middleware.Authenticate(codec, store),
		middleware.RequireRole(staffRoles...),
	)
	g.GET("", h.List, middleware.Validate(handler.ListJobsSchema))
	g.POST("", h.Create, middleware.Validate(handler.CreateJobSchema))
	g.GET("/:id", h.Get, middleware.Validate(handler.JobIDSchema))
	g.PUT("/:id", h.Update, middleware.Validate(handler.UpdateJobSchema))
	g.PUT("/:id/status", h.UpdateStatus, middleware.Validate(handler.JobStatusSchema))
	g.DELETE("/:id", h.Delete,
		middleware.RequireRole(model.RoleAdmin),
		middleware.Validate(handler.JobIDSchema))
}

// RegisterInventory registers the parts catalogue under /api/inventory.
func RegisterInventory(e *echo.Echo, h *handler.InventoryHandler, codec *token.Codec, store middleware.PrincipalSource) {
	g := e.Group("/api/inventory",
		middleware.Authenticate(codec, store),
		middleware.RequireRole(staffRoles...),
	)
	g.GET("", h.List, middleware.Validate(handler.ListPartsSchema))
	g.POST("", h.Create, middleware.Validate(handler.CreatePartSchema))
	g.GET("/:id", h.Get, middleware.Validate(handler.PartIDSchema))
	g.PUT("/:id", h.Update, middleware.Validate(handler.UpdatePartSchema))
	g.PUT("/:id/adjust", h.Adjust, middleware.Validate(handler.AdjustPartSchema))
	g.DELETE("/:id", h.Delete,
		middleware.RequireRole(model.RoleAdmin),
		middleware.Validate(handler.PartIDSchema))
}
