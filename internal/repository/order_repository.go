package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// OrderRepo provides persistence for orders and their items.  Orders
// and items are created together inside the orchestrator's
// transaction; items are immutable price snapshots and are never
// updated after insertion.
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepo returns an OrderRepo bound to the given database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderColumns = `id, table_id, status, is_qr_order, placed_by, created_by,
	sub_total, created_at, updated_at, deleted_at`

func scanOrder(row interface{ Scan(...interface{}) error }) (model.Order, error) {
	var o model.Order
	var placedBy, createdBy sql.NullInt64
	var deleted sql.NullTime
	err := row.Scan(&o.ID, &o.TableID, &o.Status, &o.IsQROrder, &placedBy, &createdBy,
		&o.SubTotal, &o.CreatedAt, &o.UpdatedAt, &deleted)
	if err != nil {
		return model.Order{}, err
	}
	if placedBy.Valid {
		v := uint64(placedBy.Int64)
		o.PlacedBy = &v
	}
	if createdBy.Valid {
		v := uint64(createdBy.Int64)
		o.CreatedBy = &v
	}
	if deleted.Valid {
		d := deleted.Time
		o.DeletedAt = &d
	}
	return o, nil
}

// CreateTx inserts the order row and all of its items in the caller's
// transaction.  Items are inserted with a single multi-VALUES
// statement.  The generated ids are populated on the passed order.
func (r *OrderRepo) CreateTx(ctx context.Context, tx *sql.Tx, o *model.Order) error {
	result, err := tx.ExecContext(ctx,
		`INSERT INTO orders (table_id, status, is_qr_order, placed_by, created_by, sub_total)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		o.TableID, o.Status, o.IsQROrder, o.PlacedBy, o.CreatedBy, o.SubTotal)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)

	if len(o.Items) == 0 {
		return errors.New("order must have at least one item")
	}
	query := `INSERT INTO order_items (order_id, menu_item_id, qty, unit_price, discount_amount, sub_total, notes, payer_name) VALUES `
	args := make([]interface{}, 0, len(o.Items)*8)
	for i := range o.Items {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?, ?, ?)"
		it := &o.Items[i]
		it.OrderID = o.ID
		args = append(args, o.ID, it.MenuItemID, it.Qty, it.UnitPrice, it.DiscountAmount, it.SubTotal, it.Notes, it.PayerName)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return err
	}
	return nil
}

// GetByID returns an order with its items, excluding soft-deleted
// orders.
func (r *OrderRepo) GetByID(ctx context.Context, id uint64) (model.Order, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = ? AND deleted_at IS NULL`, id)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Order{}, ErrOrderNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	items, err := r.itemsByOrder(ctx, o.ID)
	if err != nil {
		return model.Order{}, err
	}
	o.Items = items
	return o, nil
}

// GetForUpdateTx loads an order (without items) inside tx with a row
// lock.  Used by bill creation to pin the order while billing it.
func (r *OrderRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Order, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = ? AND deleted_at IS NULL FOR UPDATE`, id)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Order{}, ErrOrderNotFound
	}
	return o, err
}

func (r *OrderRepo) itemsByOrder(ctx context.Context, orderID uint64) ([]model.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, order_id, menu_item_id, qty, unit_price, discount_amount, sub_total, notes, payer_name, created_at
		 FROM order_items WHERE order_id = ? ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.OrderItem, 0)
	for rows.Next() {
		var it model.OrderItem
		var notes, payer sql.NullString
		if err := rows.Scan(&it.ID, &it.OrderID, &it.MenuItemID, &it.Qty, &it.UnitPrice,
			&it.DiscountAmount, &it.SubTotal, &notes, &payer, &it.CreatedAt); err != nil {
			return nil, err
		}
		if notes.Valid {
			n := notes.String
			it.Notes = &n
		}
		if payer.Valid {
			p := payer.String
			it.PayerName = &p
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ListByTable returns all orders for a table, newest first, without
// items.  Pass zero to list across all tables.
func (r *OrderRepo) ListByTable(ctx context.Context, tableID uint64) ([]model.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE deleted_at IS NULL`
	args := []interface{}{}
	if tableID != 0 {
		q += ` AND table_id = ?`
		args = append(args, tableID)
	}
	q += ` ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	orders := make([]model.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// UpdateStatusTx sets the order status inside the caller's
// transaction.  Used when settlement completes the order together with
// the table transition.
func (r *OrderRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status string) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE orders SET status = ?, updated_at = NOW() WHERE id = ? AND deleted_at IS NULL`,
		status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// UpdateStatus moves an order through the kitchen pipeline.  The
// caller validates the status value.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = ?, updated_at = NOW() WHERE id = ? AND deleted_at IS NULL`,
		status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrOrderNotFound
	}
	return nil
}
