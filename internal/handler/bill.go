package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/artifact"
	"github.com/iliyamo/restaurant-table-reservation/internal/audit"
	"github.com/iliyamo/restaurant-table-reservation/internal/config"
	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/money"
	"github.com/iliyamo/restaurant-table-reservation/internal/pricing"
	"github.com/iliyamo/restaurant-table-reservation/internal/queue"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
	"github.com/iliyamo/restaurant-table-reservation/internal/txn"
)

// BillHandler runs the settlement pipeline: bill creation from an
// order, payment, and the post-commit receipt artifact.  Totals are
// always recomputed through the pricing package; the request never
// supplies a grand total.
type BillHandler struct {
	Cfg       config.Config
	Tables    *repository.TableRepo
	Orders    *repository.OrderRepo
	Bills     *repository.BillRepo
	Menu      *repository.MenuRepo
	Events    *repository.TableEventRepo
	Artifacts artifact.Generator
}

func NewBillHandler(cfg config.Config, t *repository.TableRepo, o *repository.OrderRepo, b *repository.BillRepo, m *repository.MenuRepo, e *repository.TableEventRepo, g artifact.Generator) *BillHandler {
	return &BillHandler{Cfg: cfg, Tables: t, Orders: o, Bills: b, Menu: m, Events: e, Artifacts: g}
}

type billReq struct {
	DiscountValue string `json:"discount_value"`
	DiscountType  string `json:"discount_type"`
	PaymentMode   string `json:"payment_mode"`
}

type payReq struct {
	PaymentMode string `json:"payment_mode"`
}

// Create settles an order into a bill.  One bill per order; a repeat
// request is a 409.
func (h *BillHandler) Create(c echo.Context) error {
	orderID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req billReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	discountType := strings.ToUpper(strings.TrimSpace(req.DiscountType))
	if discountType == "" {
		discountType = model.DiscountFlat
	}
	if !model.ValidDiscountType(discountType) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown discount type"})
	}
	discountValue := money.Zero()
	if raw := strings.TrimSpace(req.DiscountValue); raw != "" {
		v, err := money.FromString(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "discount_value must be a decimal string"})
		}
		discountValue = v
	}
	paymentMode := strings.ToUpper(strings.TrimSpace(req.PaymentMode))
	if paymentMode == "" {
		paymentMode = model.PaymentCash
	}
	if !model.ValidPaymentMode(paymentMode) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown payment mode"})
	}

	actorID, err := getStaffID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	var bill model.Bill
	err = txn.WithSerializable(ctx, h.Tables.DB(), func(tx *sql.Tx) error {
		order, err := h.Orders.GetForUpdateTx(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if order.Status == model.OrderCancelled {
			return errOrderCancelled
		}

		totals, err := pricing.ComputeBill(pricing.BillInput{
			SubTotal:      order.SubTotal,
			DiscountValue: discountValue,
			DiscountType:  discountType,
			ServiceCharge: h.Cfg.ServiceCharge,
			TaxPct:        h.Cfg.TaxPct,
		})
		if err != nil {
			return err
		}

		bill = model.Bill{
			OrderID:       orderID,
			SubTotal:      order.SubTotal,
			DiscountValue: discountValue,
			DiscountType:  discountType,
			ServiceCharge: h.Cfg.ServiceCharge,
			TaxPct:        h.Cfg.TaxPct,
			TaxAmount:     totals.TaxAmount.RoundCurrency(),
			GrandTotal:    totals.GrandTotal.RoundCurrency(),
			PaymentMode:   paymentMode,
		}
		return h.Bills.CreateTx(ctx, tx, &bill)
	})
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrOrderNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
	case errors.Is(err, errOrderCancelled):
		return c.JSON(http.StatusConflict, echo.Map{"error": "order is cancelled"})
	case errors.Is(err, repository.ErrBillExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "order already billed"})
	case errors.Is(err, pricing.ErrNegativeDiscount), errors.Is(err, pricing.ErrUnknownDiscount):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, txn.ErrRetriesExhausted):
		return c.JSON(http.StatusConflict, echo.Map{"error": "billing busy, try again"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create bill failed"})
	}

	h.attachReceipt(bill, actorID)

	return c.JSON(http.StatusCreated, bill)
}

var errOrderCancelled = errors.New("order is cancelled")

// attachReceipt generates the receipt artifact and records the audit
// event after the billing transaction committed.  A failure here
// leaves the bill valid with no artifact.
func (h *BillHandler) attachReceipt(bill model.Bill, actorID uint64) {
	go func() {
		bg, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		order, err := h.Orders.GetByID(bg, bill.OrderID)
		if err == nil {
			names := make(map[uint64]string, len(order.Items))
			for _, it := range order.Items {
				if mi, merr := h.Menu.GetByID(bg, it.MenuItemID); merr == nil {
					names[it.MenuItemID] = mi.Name
				}
			}
			if url, gerr := h.Artifacts.Generate(bill, order, names); gerr == nil {
				_ = h.Bills.AttachArtifact(bg, bill.ID, url)
			}
		}

		_ = audit.Record(bg, queue.AuditEvent{
			Action:     "bill.created",
			ActorID:    &actorID,
			EntityType: "bill",
			EntityID:   bill.ID,
			Detail:     fmt.Sprintf("order_id=%d grand_total=%s", bill.OrderID, bill.GrandTotal.StringFixed()),
		})
	}()
}

// Get returns one bill.
func (h *BillHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	bill, err := h.Bills.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBillNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "bill not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load bill failed"})
	}
	return c.JSON(http.StatusOK, bill)
}

// GetForOrder returns the bill attached to an order.
func (h *BillHandler) GetForOrder(c echo.Context) error {
	orderID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	bill, err := h.Bills.GetByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrBillNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "bill not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load bill failed"})
	}
	return c.JSON(http.StatusOK, bill)
}

// Pay settles a bill once.  Settlement completes the order and sends
// the table to NEEDS_CLEANING so it cannot be reseated before a reset.
func (h *BillHandler) Pay(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req payReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	mode := strings.ToUpper(strings.TrimSpace(req.PaymentMode))
	if !model.ValidPaymentMode(mode) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown payment mode"})
	}
	actorID, err := getStaffID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	paidAt := time.Now().UTC()
	err = txn.WithSerializable(ctx, h.Tables.DB(), func(tx *sql.Tx) error {
		bill, err := h.Bills.GetForUpdateTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if bill.IsPaid {
			return repository.ErrBillAlreadyPaid
		}
		if err := h.Bills.MarkPaidTx(ctx, tx, id, mode, paidAt); err != nil {
			return err
		}
		order, err := h.Orders.GetForUpdateTx(ctx, tx, bill.OrderID)
		if err != nil {
			return err
		}
		if err := h.Orders.UpdateStatusTx(ctx, tx, order.ID, model.OrderCompleted); err != nil {
			return err
		}
		t, err := h.Tables.GetForUpdateTx(ctx, tx, order.TableID)
		if err != nil {
			return err
		}
		if t.Status != model.TableOccupied {
			return nil // table was already overridden elsewhere
		}
		if err := h.Tables.UpdateStatusTx(ctx, tx, t.ID, model.TableNeedsCleaning); err != nil {
			return err
		}
		return h.Events.InsertTx(ctx, tx, model.TableEvent{
			TableID:    t.ID,
			OrderID:    &order.ID,
			FromStatus: t.Status,
			ToStatus:   model.TableNeedsCleaning,
			ActorID:    &actorID,
		})
	})
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrBillNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "bill not found"})
	case errors.Is(err, repository.ErrBillAlreadyPaid):
		return c.JSON(http.StatusConflict, echo.Map{"error": "bill already paid"})
	case errors.Is(err, txn.ErrRetriesExhausted):
		return c.JSON(http.StatusConflict, echo.Map{"error": "billing busy, try again"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "pay bill failed"})
	}

	go func() {
		bg, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = audit.Record(bg, queue.AuditEvent{
			Action:     "bill.paid",
			ActorID:    &actorID,
			EntityType: "bill",
			EntityID:   id,
			Detail:     fmt.Sprintf("mode=%s", mode),
		})
	}()

	bill, err := h.Bills.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load bill failed"})
	}
	return c.JSON(http.StatusOK, bill)
}
