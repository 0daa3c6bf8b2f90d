package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/money"
)

// MenuRepo provides persistence for menu items.  Besides CRUD it
// exposes ResolveAvailablePrices, the menu lookup the order
// orchestrator performs before pricing: only currently available,
// non-deleted items are returned, together with any promotion active
// at the time of the lookup.
type MenuRepo struct {
	db *sql.DB
}

// NewMenuRepo returns a MenuRepo bound to the given database.
func NewMenuRepo(db *sql.DB) *MenuRepo { return &MenuRepo{db: db} }

const menuColumns = `id, name, category, price, is_available, promo_pct, promo_starts_at,
	promo_ends_at, created_at, updated_at, deleted_at`

func scanMenuItem(row interface{ Scan(...interface{}) error }) (model.MenuItem, error) {
	var mi model.MenuItem
	var promo sql.NullString
	var promoStart, promoEnd, deleted sql.NullTime
	err := row.Scan(&mi.ID, &mi.Name, &mi.Category, &mi.Price, &mi.IsAvailable,
		&promo, &promoStart, &promoEnd, &mi.CreatedAt, &mi.UpdatedAt, &deleted)
	if err != nil {
		return model.MenuItem{}, err
	}
	if promo.Valid {
		p, perr := money.FromString(promo.String)
		if perr != nil {
			return model.MenuItem{}, perr
		}
		mi.PromoPct = &p
	}
	if promoStart.Valid {
		t := promoStart.Time
		mi.PromoStartsAt = &t
	}
	if promoEnd.Valid {
		t := promoEnd.Time
		mi.PromoEndsAt = &t
	}
	if deleted.Valid {
		d := deleted.Time
		mi.DeletedAt = &d
	}
	return mi, nil
}

// Create inserts a new menu item.  Duplicate names map to
// ErrMenuItemExists.
func (r *MenuRepo) Create(ctx context.Context, mi *model.MenuItem) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO menu_items (name, category, price, is_available, promo_pct, promo_starts_at, promo_ends_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		mi.Name, mi.Category, mi.Price, mi.IsAvailable, promoArg(mi.PromoPct), mi.PromoStartsAt, mi.PromoEndsAt)
	if err != nil {
		if isDuplicate(err) {
			return ErrMenuItemExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	mi.ID = uint64(id)
	got, err := r.GetByID(ctx, mi.ID)
	if err != nil {
		return err
	}
	*mi = got
	return nil
}

func promoArg(p *money.Money) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

// GetByID returns a menu item by id, excluding soft-deleted rows.
func (r *MenuRepo) GetByID(ctx context.Context, id uint64) (model.MenuItem, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+menuColumns+` FROM menu_items WHERE id = ? AND deleted_at IS NULL`, id)
	mi, err := scanMenuItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.MenuItem{}, ErrMenuItemNotFound
	}
	return mi, err
}

// List returns all non-deleted menu items ordered by category then
// name.  When onlyAvailable is true, unavailable items are skipped.
func (r *MenuRepo) List(ctx context.Context, onlyAvailable bool) ([]model.MenuItem, error) {
	q := `SELECT ` + menuColumns + ` FROM menu_items WHERE deleted_at IS NULL`
	if onlyAvailable {
		q += ` AND is_available = TRUE`
	}
	q += ` ORDER BY category, name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.MenuItem, 0)
	for rows.Next() {
		mi, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, mi)
	}
	return items, rows.Err()
}

// Update rewrites a menu item's mutable fields.
func (r *MenuRepo) Update(ctx context.Context, mi *model.MenuItem) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE menu_items SET name = ?, category = ?, price = ?, is_available = ?,
		        promo_pct = ?, promo_starts_at = ?, promo_ends_at = ?, updated_at = NOW()
		 WHERE id = ? AND deleted_at IS NULL`,
		mi.Name, mi.Category, mi.Price, mi.IsAvailable,
		promoArg(mi.PromoPct), mi.PromoStartsAt, mi.PromoEndsAt, mi.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrMenuItemExists
		}
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		if _, gerr := r.GetByID(ctx, mi.ID); gerr != nil {
			return gerr
		}
	}
	got, err := r.GetByID(ctx, mi.ID)
	if err != nil {
		return err
	}
	*mi = got
	return nil
}

// SoftDelete marks a menu item as logically removed.  Existing order
// items keep their snapshot reference.
func (r *MenuRepo) SoftDelete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE menu_items SET deleted_at = NOW() WHERE id = ? AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrMenuItemNotFound
	}
	return nil
}

// ResolvedPrice is one entry of the price snapshot handed to the
// pricing engine: the unit price at lookup time plus the promotion
// percentage when one is active.
type ResolvedPrice struct {
	MenuItemID uint64
	UnitPrice  money.Money
	PromoPct   *money.Money
}

// ResolveAvailablePrices returns the price snapshot for the requested
// ids.  Items that are unavailable, soft-deleted or simply absent are
// not returned; the caller treats any missing id as an unavailable
// item and rejects the order.  Promotions are included only when `at`
// falls inside their validity window.
func (r *MenuRepo) ResolveAvailablePrices(ctx context.Context, ids []uint64, at time.Time) (map[uint64]ResolvedPrice, error) {
	if len(ids) == 0 {
		return map[uint64]ResolvedPrice{}, nil
	}
	query := `SELECT id, price, promo_pct, promo_starts_at, promo_ends_at
	          FROM menu_items
	          WHERE is_available = TRUE AND deleted_at IS NULL AND id IN (`
	args := make([]interface{}, 0, len(ids))
	for i, id := range ids {
		if i > 0 {
			query += ","
		}
		query += "?"
		args = append(args, id)
	}
	query += ")"
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	at = at.UTC()
	out := make(map[uint64]ResolvedPrice, len(ids))
	for rows.Next() {
		var rp ResolvedPrice
		var promo sql.NullString
		var promoStart, promoEnd sql.NullTime
		if err := rows.Scan(&rp.MenuItemID, &rp.UnitPrice, &promo, &promoStart, &promoEnd); err != nil {
			return nil, err
		}
		if promo.Valid {
			active := true
			if promoStart.Valid && at.Before(promoStart.Time) {
				active = false
			}
			if promoEnd.Valid && !at.Before(promoEnd.Time) {
				active = false
			}
			if active {
				p, perr := money.FromString(promo.String)
				if perr != nil {
					return nil, perr
				}
				rp.PromoPct = &p
			}
		}
		out[rp.MenuItemID] = rp
	}
	return out, rows.Err()
}
