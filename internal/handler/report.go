package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/config"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
)

// ReportHandler serves the revenue aggregation endpoints.
type ReportHandler struct {
	Cfg     config.Config
	Reports *repository.ReportRepo
}

func NewReportHandler(cfg config.Config, r *repository.ReportRepo) *ReportHandler {
	return &ReportHandler{Cfg: cfg, Reports: r}
}

// DailyRevenue aggregates paid bills for one calendar day in the
// configured reporting timezone.  ?date=YYYY-MM-DD, defaulting to
// today.
func (h *ReportHandler) DailyRevenue(c echo.Context) error {
	day := time.Now().In(h.Cfg.ReportLoc)
	if raw := strings.TrimSpace(c.QueryParam("date")); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, h.Cfg.ReportLoc)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
		}
		day = parsed
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	report, err := h.Reports.DailyRevenue(ctx, day, h.Cfg.ReportLoc)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "aggregate revenue failed"})
	}
	return c.JSON(http.StatusOK, report)
}
