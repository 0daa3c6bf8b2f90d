package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/audit"
	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/money"
	"github.com/iliyamo/restaurant-table-reservation/internal/pricing"
	"github.com/iliyamo/restaurant-table-reservation/internal/queue"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
	"github.com/iliyamo/restaurant-table-reservation/internal/txn"
)

// OrderHandler orchestrates order placement for both staff and the QR
// flow.  Prices are resolved against the menu before the transaction
// starts; the captured snapshot is what gets persisted, so later menu
// edits never change an existing order.
type OrderHandler struct {
	Tables *repository.TableRepo
	Orders *repository.OrderRepo
	Menu   *repository.MenuRepo
	Staff  *repository.StaffRepo
	Events *repository.TableEventRepo
}

func NewOrderHandler(t *repository.TableRepo, o *repository.OrderRepo, m *repository.MenuRepo, s *repository.StaffRepo, e *repository.TableEventRepo) *OrderHandler {
	return &OrderHandler{Tables: t, Orders: o, Menu: m, Staff: s, Events: e}
}

type orderItemReq struct {
	MenuItemID uint64  `json:"menu_item_id"`
	Qty        int     `json:"qty"`
	Notes      *string `json:"notes"`
	PayerName  *string `json:"payer_name"`
}

type orderReq struct {
	TableID uint64         `json:"table_id"`
	Items   []orderItemReq `json:"items"`
}

// Place creates a staff order.  Only managers and waiters may place
// orders; the role is re-read from the database so a demoted account
// cannot keep ordering on a stale token.
func (h *OrderHandler) Place(c echo.Context) error {
	staffID, err := getStaffID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	s, err := h.Staff.GetByID(ctx, staffID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if !s.IsActive || !model.CanPlaceOrders(s.Role) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "role cannot place orders"})
	}

	return h.place(c, ctx, false, &staffID)
}

// PlaceQR creates a guest order from the QR page.  No authentication;
// the route is rate limited instead.
func (h *OrderHandler) PlaceQR(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()
	return h.place(c, ctx, true, nil)
}

func (h *OrderHandler) place(c echo.Context, ctx context.Context, isQR bool, staffID *uint64) error {
	var req orderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.TableID == 0 || len(req.Items) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "table_id and items required"})
	}

	ids := make([]uint64, 0, len(req.Items))
	for _, it := range req.Items {
		ids = append(ids, it.MenuItemID)
	}
	resolved, err := h.Menu.ResolveAvailablePrices(ctx, ids, time.Now())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "resolve prices failed"})
	}

	// Promotions become per-line discounts against the captured price.
	snapshot := make(map[uint64]money.Money, len(resolved))
	for id, rp := range resolved {
		snapshot[id] = rp.UnitPrice
	}
	reqs := make([]pricing.ItemRequest, 0, len(req.Items))
	for _, it := range req.Items {
		ir := pricing.ItemRequest{
			MenuItemID: it.MenuItemID,
			Qty:        it.Qty,
			Notes:      it.Notes,
			PayerName:  it.PayerName,
		}
		if rp, ok := resolved[it.MenuItemID]; ok && rp.PromoPct != nil && it.Qty > 0 {
			line := rp.UnitPrice.MulInt(int64(it.Qty))
			ir.DiscountAmount = line.PercentOf(*rp.PromoPct).RoundCurrency()
		}
		reqs = append(reqs, ir)
	}

	priced, err := pricing.PriceItems(reqs, snapshot)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	order := model.Order{
		TableID:   req.TableID,
		Status:    model.OrderPending,
		IsQROrder: isQR,
		PlacedBy:  staffID,
		CreatedBy: staffID,
		SubTotal:  priced.SubTotal,
	}
	for _, pi := range priced.Items {
		order.Items = append(order.Items, model.OrderItem{
			MenuItemID:     pi.MenuItemID,
			Qty:            pi.Qty,
			UnitPrice:      pi.UnitPrice,
			DiscountAmount: pi.DiscountAmount.RoundCurrency(),
			SubTotal:       pi.SubTotal.RoundCurrency(),
			Notes:          pi.Notes,
			PayerName:      pi.PayerName,
		})
	}

	var tableName string
	err = txn.WithSerializable(ctx, h.Tables.DB(), func(tx *sql.Tx) error {
		t, err := h.Tables.GetForUpdateTx(ctx, tx, req.TableID)
		if err != nil {
			return err
		}
		tableName = t.Name
		if !model.CanSeat(t.Status) {
			// RESERVED needs a check-in, OCCUPIED a settled bill,
			// NEEDS_CLEANING a reset.
			return repository.ErrTableUnavailable
		}
		if err := h.Orders.CreateTx(ctx, tx, &order); err != nil {
			return err
		}
		if err := h.Tables.UpdateStatusTx(ctx, tx, req.TableID, model.TableOccupied); err != nil {
			return err
		}
		return h.Events.InsertTx(ctx, tx, model.TableEvent{
			TableID:    req.TableID,
			OrderID:    &order.ID,
			FromStatus: t.Status,
			ToStatus:   model.TableOccupied,
			ActorID:    staffID,
		})
	})
	switch err {
	case nil:
	case repository.ErrTableNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
	case repository.ErrTableUnavailable:
		return c.JSON(http.StatusConflict, echo.Map{"error": "table cannot take orders right now"})
	case txn.ErrRetriesExhausted:
		return c.JSON(http.StatusConflict, echo.Map{"error": "table in high demand, try again"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "place order failed"})
	}

	h.publishPlaced(order, tableName, staffID)

	full, err := h.Orders.GetByID(ctx, order.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load order failed"})
	}
	return c.JSON(http.StatusCreated, full)
}

// publishPlaced emits the kitchen ticket and audit event after commit.
// Both are fire-and-forget.
func (h *OrderHandler) publishPlaced(order model.Order, tableName string, staffID *uint64) {
	go func() {
		bg, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		ticket := queue.KitchenTicketEvent{
			OrderID:   order.ID,
			TableID:   order.TableID,
			TableName: tableName,
			IsQROrder: order.IsQROrder,
		}
		for _, it := range order.Items {
			name := fmt.Sprintf("item #%d", it.MenuItemID)
			if mi, err := h.Menu.GetByID(bg, it.MenuItemID); err == nil {
				name = mi.Name
			}
			line := queue.KitchenTicketItem{Name: name, Qty: it.Qty}
			if it.Notes != nil {
				line.Notes = *it.Notes
			}
			ticket.Items = append(ticket.Items, line)
		}
		_ = audit.PublishKitchenTicket(bg, ticket)

		_ = audit.Record(bg, queue.AuditEvent{
			Action:     "order.placed",
			ActorID:    staffID,
			EntityType: "order",
			EntityID:   order.ID,
			Detail:     fmt.Sprintf("table_id=%d sub_total=%s qr=%t", order.TableID, order.SubTotal.StringFixed(), order.IsQROrder),
		})
	}()
}

// List returns orders, optionally scoped to ?table_id=.
func (h *OrderHandler) List(c echo.Context) error {
	var tableID uint64
	if raw := strings.TrimSpace(c.QueryParam("table_id")); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table_id"})
		}
		tableID = n
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	orders, err := h.Orders.ListByTable(ctx, tableID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list orders failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"orders": orders})
}

// Get returns one order with its items.
func (h *OrderHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	order, err := h.Orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load order failed"})
	}
	return c.JSON(http.StatusOK, order)
}

type orderStatusReq struct {
	Status string `json:"status"`
}

// UpdateStatus moves an order through the kitchen pipeline.
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req orderStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	status := strings.ToUpper(strings.TrimSpace(req.Status))
	if !model.ValidOrderStatus(status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Orders.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update order failed"})
	}
	order, err := h.Orders.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load order failed"})
	}
	return c.JSON(http.StatusOK, order)
}
