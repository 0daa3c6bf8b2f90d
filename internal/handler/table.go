package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
	"github.com/iliyamo/restaurant-table-reservation/internal/txn"
)

// TableHandler serves the dining table endpoints: CRUD for managers,
// the explicit status override, the cleaning transition and the status
// timeline.
type TableHandler struct {
	Tables *repository.TableRepo
	Events *repository.TableEventRepo
}

func NewTableHandler(t *repository.TableRepo, e *repository.TableEventRepo) *TableHandler {
	return &TableHandler{Tables: t, Events: e}
}

type tableReq struct {
	Name             string  `json:"name"`
	Seats            int     `json:"seats"`
	AssignedWaiterID *uint64 `json:"assigned_waiter_id"`
}

type statusOverrideReq struct {
	Status string `json:"status"`
}

// Create adds a table in AVAILABLE status.
func (h *TableHandler) Create(c echo.Context) error {
	var req tableReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.Seats <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and positive seats required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t, err := h.Tables.Create(ctx, req.Name, req.Seats, req.AssignedWaiterID)
	if err != nil {
		if err == repository.ErrTableExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "table name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create table failed"})
	}
	return c.JSON(http.StatusCreated, t)
}

// List returns tables, optionally filtered by ?status=.
func (h *TableHandler) List(c echo.Context) error {
	status := strings.ToUpper(strings.TrimSpace(c.QueryParam("status")))
	if status != "" && !model.ValidTableStatus(status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tables, err := h.Tables.List(ctx, status)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list tables failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"tables": tables})
}

// Get returns one table.
func (h *TableHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t, err := h.Tables.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrTableNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load table failed"})
	}
	return c.JSON(http.StatusOK, t)
}

// Update changes name, seats and waiter assignment.
func (h *TableHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req tableReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.Seats <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and positive seats required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t, err := h.Tables.Update(ctx, id, req.Name, req.Seats, req.AssignedWaiterID)
	switch err {
	case nil:
		return c.JSON(http.StatusOK, t)
	case repository.ErrTableNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
	case repository.ErrTableExists:
		return c.JSON(http.StatusConflict, echo.Map{"error": "table name already exists"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update table failed"})
	}
}

// Delete soft-deletes a table; history keeps pointing at the row.
func (h *TableHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Tables.SoftDelete(ctx, id); err != nil {
		if err == repository.ErrTableNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete table failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// OverrideStatus lets a manager force any valid status, bypassing the
// transition guards.  The jump is still recorded on the timeline with
// the acting manager as actor.
func (h *TableHandler) OverrideStatus(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req statusOverrideReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	status := strings.ToUpper(strings.TrimSpace(req.Status))
	if !model.ValidTableStatus(status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}
	actorID, err := getStaffID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	err = txn.WithSerializable(ctx, h.Tables.DB(), func(tx *sql.Tx) error {
		t, err := h.Tables.GetForUpdateTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if t.Status == status {
			return nil // no-op override, nothing to record
		}
		if err := h.Tables.UpdateStatusTx(ctx, tx, id, status); err != nil {
			return err
		}
		return h.Events.InsertTx(ctx, tx, model.TableEvent{
			TableID:    id,
			FromStatus: t.Status,
			ToStatus:   status,
			ActorID:    &actorID,
		})
	})
	switch err {
	case nil:
	case repository.ErrTableNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
	case txn.ErrRetriesExhausted:
		return c.JSON(http.StatusConflict, echo.Map{"error": "table busy, try again"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "override failed"})
	}

	t, err := h.Tables.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load table failed"})
	}
	return c.JSON(http.StatusOK, t)
}

// FinishCleaning moves NEEDS_CLEANING back to AVAILABLE, the last leg
// of the table lifecycle.
func (h *TableHandler) FinishCleaning(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	actorID, err := getStaffID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	err = txn.WithSerializable(ctx, h.Tables.DB(), func(tx *sql.Tx) error {
		t, err := h.Tables.GetForUpdateTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if !model.CanFinishCleaning(t.Status) {
			return repository.ErrTableUnavailable
		}
		if err := h.Tables.UpdateStatusTx(ctx, tx, id, model.TableAvailable); err != nil {
			return err
		}
		return h.Events.InsertTx(ctx, tx, model.TableEvent{
			TableID:    id,
			FromStatus: t.Status,
			ToStatus:   model.TableAvailable,
			ActorID:    &actorID,
		})
	})
	switch err {
	case nil:
	case repository.ErrTableNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
	case repository.ErrTableUnavailable:
		return c.JSON(http.StatusConflict, echo.Map{"error": "table is not awaiting cleaning"})
	case txn.ErrRetriesExhausted:
		return c.JSON(http.StatusConflict, echo.Map{"error": "table busy, try again"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "transition failed"})
	}

	t, err := h.Tables.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load table failed"})
	}
	return c.JSON(http.StatusOK, t)
}

// Timeline returns the table's status history, oldest first.
func (h *TableHandler) Timeline(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Tables.GetByID(ctx, id); err != nil {
		if err == repository.ErrTableNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load table failed"})
	}
	events, err := h.Events.ListByTable(ctx, id, 200)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load timeline failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"events": events})
}
