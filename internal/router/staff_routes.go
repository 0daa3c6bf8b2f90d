package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/handler"
	"github.com/iliyamo/restaurant-table-reservation/internal/middleware"
	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// StaffHandlers bundles every handler mounted under the protected /v1
// surface.
type StaffHandlers struct {
	Tables       *handler.TableHandler
	Menu         *handler.MenuHandler
	Reservations *handler.ReservationHandler
	Orders       *handler.OrderHandler
	Bills        *handler.BillHandler
	Reports      *handler.ReportHandler
}

// RegisterStaff registers the staff endpoints under /v1.  Every route
// requires a valid JWT; write access is narrowed per concern with
// RequireRole.
func RegisterStaff(e *echo.Echo, h StaffHandlers, jwtSecret string) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleManager, model.RoleWaiter, model.RoleCashier))

	manager := middleware.RequireRole(model.RoleManager)
	frontOfHouse := middleware.RequireRole(model.RoleManager, model.RoleWaiter)
	cashiers := middleware.RequireRole(model.RoleManager, model.RoleCashier)

	// ---- Tables ----
	g.GET("/tables", h.Tables.List)
	g.GET("/tables/:id", h.Tables.Get)
	g.GET("/tables/:id/events", h.Tables.Timeline)
	g.POST("/tables", h.Tables.Create, manager)
	g.PUT("/tables/:id", h.Tables.Update, manager)
	g.DELETE("/tables/:id", h.Tables.Delete, manager)
	g.PATCH("/tables/:id/status", h.Tables.OverrideStatus, manager)
	g.POST("/tables/:id/clean-done", h.Tables.FinishCleaning)

	// ---- Menu ----
	g.GET("/menu-items", h.Menu.List)
	g.GET("/menu-items/:id", h.Menu.Get)
	g.POST("/menu-items", h.Menu.Create, manager)
	g.PUT("/menu-items/:id", h.Menu.Update, manager)
	g.DELETE("/menu-items/:id", h.Menu.Delete, manager)

	// ---- Reservations ----
	g.GET("/reservations", h.Reservations.List)
	g.GET("/reservations/:id", h.Reservations.Get)
	g.POST("/reservations", h.Reservations.Create, frontOfHouse)
	g.POST("/reservations/:id/cancel", h.Reservations.Cancel, frontOfHouse)
	g.POST("/reservations/:id/check-in", h.Reservations.CheckIn, frontOfHouse)

	// ---- Orders ----
	g.GET("/orders", h.Orders.List)
	g.GET("/orders/:id", h.Orders.Get)
	g.POST("/orders", h.Orders.Place, frontOfHouse)
	g.PATCH("/orders/:id/status", h.Orders.UpdateStatus, frontOfHouse)

	// ---- Bills ----
	g.GET("/bills/:id", h.Bills.Get)
	g.GET("/orders/:id/bill", h.Bills.GetForOrder)
	g.POST("/orders/:id/bill", h.Bills.Create, cashiers)
	g.POST("/bills/:id/pay", h.Bills.Pay, cashiers)

	// ---- Reports ----
	g.GET("/reports/daily-revenue", h.Reports.DailyRevenue, manager)
}
