package handler

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/audit"
	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/queue"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
	"github.com/iliyamo/restaurant-table-reservation/internal/txn"
)

// ReservationHandler orchestrates the reservation lifecycle.  Creation
// runs the overlap check, the insert and the table transition inside
// one serializable transaction so two guests can never book the same
// table for overlapping windows.
type ReservationHandler struct {
	Tables       *repository.TableRepo
	Reservations *repository.ReservationRepo
	Events       *repository.TableEventRepo
}

func NewReservationHandler(t *repository.TableRepo, r *repository.ReservationRepo, e *repository.TableEventRepo) *ReservationHandler {
	return &ReservationHandler{Tables: t, Reservations: r, Events: e}
}

type reservationReq struct {
	TableID         uint64    `json:"table_id"`
	GuestName       string    `json:"guest_name"`
	GuestPhone      *string   `json:"guest_phone"`
	Guests          int       `json:"guests"`
	ReservedAt      time.Time `json:"reserved_at"`
	DurationMinutes int       `json:"duration_minutes"`
}

// Create books a table for a time window.  The window defaults to two
// hours and is half-open: a reservation ending at 20:00 does not
// collide with one starting at 20:00.
func (h *ReservationHandler) Create(c echo.Context) error {
	var req reservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.GuestName = strings.TrimSpace(req.GuestName)
	if req.TableID == 0 || req.GuestName == "" || req.Guests <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "table_id, guest_name and positive guests required"})
	}
	if req.ReservedAt.IsZero() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reserved_at required"})
	}
	minutes := req.DurationMinutes
	if minutes < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "duration_minutes must be positive"})
	}
	if minutes == 0 {
		minutes = model.DefaultReservationMinutes
	}
	start := req.ReservedAt.UTC()
	end := start.Add(time.Duration(minutes) * time.Minute)
	if !start.After(time.Now().UTC()) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reserved_at must be in the future"})
	}

	actorID, err := getStaffID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	res := model.Reservation{
		TableID:       req.TableID,
		GuestName:     req.GuestName,
		GuestPhone:    req.GuestPhone,
		Guests:        req.Guests,
		Status:        model.ReservationActive,
		ReservedAt:    start,
		ReservedUntil: end,
	}

	err = txn.WithSerializable(ctx, h.Tables.DB(), func(tx *sql.Tx) error {
		t, err := h.Tables.GetForUpdateTx(ctx, tx, req.TableID)
		if err != nil {
			return err
		}
		if req.Guests > t.Seats {
			return errTooManyGuests
		}
		if !model.CanReserve(t.Status) {
			return repository.ErrTableUnavailable
		}
		n, err := h.Reservations.CountOverlappingTx(ctx, tx, req.TableID, start, end)
		if err != nil {
			return err
		}
		if n > 0 {
			return repository.ErrReservationOverlap
		}
		if err := h.Reservations.CreateTx(ctx, tx, &res); err != nil {
			return err
		}
		if err := h.Tables.UpdateStatusTx(ctx, tx, req.TableID, model.TableReserved); err != nil {
			return err
		}
		return h.Events.InsertTx(ctx, tx, model.TableEvent{
			TableID:    req.TableID,
			FromStatus: t.Status,
			ToStatus:   model.TableReserved,
			ActorID:    &actorID,
		})
	})
	switch err {
	case nil:
	case repository.ErrTableNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
	case repository.ErrTableUnavailable:
		return c.JSON(http.StatusConflict, echo.Map{"error": "table is not available"})
	case repository.ErrReservationOverlap:
		return c.JSON(http.StatusConflict, echo.Map{"error": "table already reserved for that window"})
	case errTooManyGuests:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "party exceeds table seats"})
	case txn.ErrRetriesExhausted:
		return c.JSON(http.StatusConflict, echo.Map{"error": "table in high demand, try again"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create reservation failed"})
	}

	go func(ev queue.AuditEvent) {
		bg, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = audit.Record(bg, ev)
	}(queue.AuditEvent{
		Action:     "reservation.created",
		ActorID:    &actorID,
		EntityType: "reservation",
		EntityID:   res.ID,
		Detail:     fmt.Sprintf("table_id=%d window=%s..%s", res.TableID, start.Format(time.RFC3339), end.Format(time.RFC3339)),
	})

	return c.JSON(http.StatusCreated, res)
}

// errTooManyGuests is local to the reservation flow; it never leaves
// the handler.
var errTooManyGuests = fmt.Errorf("party exceeds table seats")

// List returns reservations filtered by ?table_id= and ?status=.
func (h *ReservationHandler) List(c echo.Context) error {
	var tableID uint64
	if raw := strings.TrimSpace(c.QueryParam("table_id")); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table_id"})
		}
		tableID = n
	}
	status := strings.ToUpper(strings.TrimSpace(c.QueryParam("status")))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	out, err := h.Reservations.List(ctx, tableID, status)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list reservations failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": out})
}

// Get returns one reservation.
func (h *ReservationHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Reservations.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrReservationNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load reservation failed"})
	}
	return c.JSON(http.StatusOK, res)
}

// Cancel voids an active reservation.  The table returns to AVAILABLE
// only when it is still sitting in RESERVED; a table that moved on
// (seated, occupied) keeps its current status.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	actorID, err := getStaffID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	var tableID uint64
	err = txn.WithSerializable(ctx, h.Tables.DB(), func(tx *sql.Tx) error {
		res, err := h.Reservations.GetForUpdateTx(ctx, tx, id)
		if err != nil {
			return err
		}
		tableID = res.TableID
		if err := h.Reservations.CancelTx(ctx, tx, id); err != nil {
			return err
		}
		t, err := h.Tables.GetForUpdateTx(ctx, tx, res.TableID)
		if err != nil {
			return err
		}
		if t.Status != model.TableReserved {
			return nil
		}
		if err := h.Tables.UpdateStatusTx(ctx, tx, res.TableID, model.TableAvailable); err != nil {
			return err
		}
		return h.Events.InsertTx(ctx, tx, model.TableEvent{
			TableID:    res.TableID,
			FromStatus: t.Status,
			ToStatus:   model.TableAvailable,
			ActorID:    &actorID,
		})
	})
	switch err {
	case nil:
	case repository.ErrReservationNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "active reservation not found"})
	case txn.ErrRetriesExhausted:
		return c.JSON(http.StatusConflict, echo.Map{"error": "table in high demand, try again"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel reservation failed"})
	}

	go func(ev queue.AuditEvent) {
		bg, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = audit.Record(bg, ev)
	}(queue.AuditEvent{
		Action:     "reservation.cancelled",
		ActorID:    &actorID,
		EntityType: "reservation",
		EntityID:   id,
		Detail:     fmt.Sprintf("table_id=%d", tableID),
	})

	return c.NoContent(http.StatusNoContent)
}

// CheckIn seats an arriving party: the reservation completes and the
// table moves RESERVED to OCCUPIED.
func (h *ReservationHandler) CheckIn(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	actorID, err := getStaffID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	err = txn.WithSerializable(ctx, h.Tables.DB(), func(tx *sql.Tx) error {
		res, err := h.Reservations.GetForUpdateTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if res.Status != model.ReservationActive {
			return repository.ErrReservationNotFound
		}
		t, err := h.Tables.GetForUpdateTx(ctx, tx, res.TableID)
		if err != nil {
			return err
		}
		if !model.CanCheckIn(t.Status) {
			return repository.ErrTableUnavailable
		}
		if err := h.Reservations.CompleteTx(ctx, tx, id); err != nil {
			return err
		}
		if err := h.Tables.UpdateStatusTx(ctx, tx, res.TableID, model.TableOccupied); err != nil {
			return err
		}
		return h.Events.InsertTx(ctx, tx, model.TableEvent{
			TableID:    res.TableID,
			FromStatus: t.Status,
			ToStatus:   model.TableOccupied,
			ActorID:    &actorID,
		})
	})
	switch err {
	case nil:
	case repository.ErrReservationNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "active reservation not found"})
	case repository.ErrTableUnavailable:
		return c.JSON(http.StatusConflict, echo.Map{"error": "table is not awaiting this party"})
	case txn.ErrRetriesExhausted:
		return c.JSON(http.StatusConflict, echo.Map{"error": "table in high demand, try again"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "check-in failed"})
	}

	res, err := h.Reservations.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load reservation failed"})
	}
	return c.JSON(http.StatusOK, res)
}
