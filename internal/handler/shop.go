package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/biskaken/garage-api/internal/httpx"
	"github.com/biskaken/garage-api/internal/middleware"
)

// ShopHandler serves the public storefront endpoint.
type ShopHandler struct{}

func NewShopHandler() *ShopHandler { return &ShopHandler{} }

type shopInfo struct {
	Name     string `json:"name"`
	Message  string `json:"message"`
	SignedIn bool   `json:"signed_in"`
}

// Info is reachable without a token; a valid one personalizes the greeting.
func (h *ShopHandler) Info(c echo.Context) error {
	out := shopInfo{
		Name:    "Biskaken Auto Repair",
		Message: "Welcome to the shop",
	}
	if p, ok := middleware.CurrentPrincipal(c); ok {
		out.Message = "Welcome back, " + p.Name
		out.SignedIn = true
	}
	return httpx.OK(c, http.StatusOK, out)
}
