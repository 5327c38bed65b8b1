package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/biskaken/garage-api/internal/httpx"
	"github.com/biskaken/garage-api/internal/repository"
)

// ReportHandler serves the dashboard aggregates.
type ReportHandler struct {
	Reports *repository.ReportRepo
}

func NewReportHandler(reports *repository.ReportRepo) *ReportHandler {
	return &ReportHandler{Reports: reports}
}

// Summary returns the shop snapshot: entity counts plus revenue and
// outstanding balances.
func (h *ReportHandler) Summary(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	s, err := h.Reports.Summarize(ctx)
	if err != nil {
		return err
	}
	return httpx.OK(c, http.StatusOK, s)
}
