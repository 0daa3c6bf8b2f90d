package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/money"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
)

// MenuHandler serves menu item CRUD for managers and the public menu
// read used by the QR flow.
type MenuHandler struct {
	Menu *repository.MenuRepo
}

func NewMenuHandler(m *repository.MenuRepo) *MenuHandler {
	return &MenuHandler{Menu: m}
}

type menuItemReq struct {
	Name          string     `json:"name"`
	Category      string     `json:"category"`
	Price         string     `json:"price"`
	IsAvailable   *bool      `json:"is_available"`
	PromoPct      *string    `json:"promo_pct"`
	PromoStartsAt *time.Time `json:"promo_starts_at"`
	PromoEndsAt   *time.Time `json:"promo_ends_at"`
}

func (req *menuItemReq) toModel() (model.MenuItem, string) {
	req.Name = strings.TrimSpace(req.Name)
	req.Category = strings.TrimSpace(req.Category)
	if req.Name == "" || req.Category == "" {
		return model.MenuItem{}, "name and category required"
	}
	price, err := money.FromString(strings.TrimSpace(req.Price))
	if err != nil || !price.IsPositive() {
		return model.MenuItem{}, "price must be a positive decimal string"
	}
	mi := model.MenuItem{
		Name:          req.Name,
		Category:      req.Category,
		Price:         price,
		IsAvailable:   true,
		PromoStartsAt: req.PromoStartsAt,
		PromoEndsAt:   req.PromoEndsAt,
	}
	if req.IsAvailable != nil {
		mi.IsAvailable = *req.IsAvailable
	}
	if req.PromoPct != nil {
		pct, err := money.FromString(strings.TrimSpace(*req.PromoPct))
		if err != nil || pct.IsNegative() || pct.Cmp(money.MustFromString("100")) > 0 {
			return model.MenuItem{}, "promo_pct must be between 0 and 100"
		}
		mi.PromoPct = &pct
	}
	if mi.PromoStartsAt != nil && mi.PromoEndsAt != nil && !mi.PromoStartsAt.Before(*mi.PromoEndsAt) {
		return model.MenuItem{}, "promo window must start before it ends"
	}
	return mi, ""
}

// Create adds a menu item.
func (h *MenuHandler) Create(c echo.Context) error {
	var req menuItemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	mi, msg := req.toModel()
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Menu.Create(ctx, &mi); err != nil {
		if err == repository.ErrMenuItemExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "menu item already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create menu item failed"})
	}
	return c.JSON(http.StatusCreated, mi)
}

// List returns every non-deleted menu item for staff screens.
func (h *MenuHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Menu.List(ctx, false)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list menu failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get returns one menu item.
func (h *MenuHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	mi, err := h.Menu.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrMenuItemNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "menu item not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load menu item failed"})
	}
	return c.JSON(http.StatusOK, mi)
}

// Update rewrites a menu item's fields.
func (h *MenuHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req menuItemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	mi, msg := req.toModel()
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	mi.ID = id

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	switch err := h.Menu.Update(ctx, &mi); err {
	case nil:
		return c.JSON(http.StatusOK, mi)
	case repository.ErrMenuItemNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "menu item not found"})
	case repository.ErrMenuItemExists:
		return c.JSON(http.StatusConflict, echo.Map{"error": "menu item already exists"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update menu item failed"})
	}
}

// Delete soft-deletes a menu item.  Past order lines keep their price
// snapshot.
func (h *MenuHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Menu.SoftDelete(ctx, id); err != nil {
		if err == repository.ErrMenuItemNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "menu item not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete menu item failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// publicMenuItem is the guest-facing projection: no availability
// flags, no promo windows, just what an item costs right now.
type publicMenuItem struct {
	ID             uint64       `json:"id"`
	Name           string       `json:"name"`
	Category       string       `json:"category"`
	Price          money.Money  `json:"price"`
	PromoPct       *money.Money `json:"promo_pct,omitempty"`
	EffectivePrice money.Money  `json:"effective_price"`
}

// PublicMenu lists available items for the QR ordering page.  The
// route sits behind the response cache middleware.
func (h *MenuHandler) PublicMenu(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Menu.List(ctx, true)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list menu failed"})
	}

	now := time.Now().UTC()
	out := make([]publicMenuItem, 0, len(items))
	for _, mi := range items {
		p := publicMenuItem{
			ID:             mi.ID,
			Name:           mi.Name,
			Category:       mi.Category,
			Price:          mi.Price,
			EffectivePrice: mi.Price,
		}
		if mi.PromoActiveAt(now) {
			p.PromoPct = mi.PromoPct
			p.EffectivePrice = mi.Price.Sub(mi.Price.PercentOf(*mi.PromoPct)).RoundCurrency()
		}
		out = append(out, p)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}
