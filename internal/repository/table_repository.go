package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// TableRepo provides persistence for dining tables.  Reads exclude
// soft-deleted rows by default.  Status mutations used by the
// reservation and order orchestrations run inside the caller's
// transaction via the ...Tx variants; the row is locked with
// SELECT ... FOR UPDATE so concurrent orchestrations serialize on the
// same table.
type TableRepo struct {
	db *sql.DB
}

// NewTableRepo returns a TableRepo bound to the given database.
func NewTableRepo(db *sql.DB) *TableRepo { return &TableRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions.
func (r *TableRepo) DB() *sql.DB { return r.db }

const tableColumns = `id, name, seats, status, assigned_waiter_id, created_at, updated_at, deleted_at`

func scanTable(row interface{ Scan(...interface{}) error }) (model.Table, error) {
	var t model.Table
	var waiter sql.NullInt64
	var deleted sql.NullTime
	err := row.Scan(&t.ID, &t.Name, &t.Seats, &t.Status, &waiter, &t.CreatedAt, &t.UpdatedAt, &deleted)
	if err != nil {
		return model.Table{}, err
	}
	if waiter.Valid {
		w := uint64(waiter.Int64)
		t.AssignedWaiterID = &w
	}
	if deleted.Valid {
		d := deleted.Time
		t.DeletedAt = &d
	}
	return t, nil
}

// Create inserts a new table in AVAILABLE status.  A duplicate name
// maps to ErrTableExists.
func (r *TableRepo) Create(ctx context.Context, name string, seats int, waiterID *uint64) (model.Table, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO tables (name, seats, status, assigned_waiter_id) VALUES (?, ?, ?, ?)`,
		name, seats, model.TableAvailable, waiterID)
	if err != nil {
		if isDuplicate(err) {
			return model.Table{}, ErrTableExists
		}
		return model.Table{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Table{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID returns a table by id, excluding soft-deleted rows.
func (r *TableRepo) GetByID(ctx context.Context, id uint64) (model.Table, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+tableColumns+` FROM tables WHERE id = ? AND deleted_at IS NULL`, id)
	t, err := scanTable(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Table{}, ErrTableNotFound
	}
	return t, err
}

// GetForUpdateTx loads a table inside tx with a row lock.  The lock
// makes concurrent reserve/seat attempts on the same table serialize
// at the storage engine.
func (r *TableRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Table, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+tableColumns+` FROM tables WHERE id = ? AND deleted_at IS NULL FOR UPDATE`, id)
	t, err := scanTable(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Table{}, ErrTableNotFound
	}
	return t, err
}

// List returns all non-deleted tables ordered by name.  When status is
// non-empty only tables in that status are returned.
func (r *TableRepo) List(ctx context.Context, status string) ([]model.Table, error) {
	q := `SELECT ` + tableColumns + ` FROM tables WHERE deleted_at IS NULL`
	args := []interface{}{}
	if status != "" {
		q += ` AND status = ?`
		args = append(args, status)
	}
	q += ` ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tables := make([]model.Table, 0)
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

// UpdateStatusTx sets the table status inside the caller's transaction.
func (r *TableRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status string) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE tables SET status = ?, updated_at = NOW() WHERE id = ? AND deleted_at IS NULL`,
		status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTableNotFound
	}
	return nil
}

// UpdateStatus sets the table status outside any orchestration.  Used
// by the explicit staff override path, which bypasses the transition
// guards but still rejects unknown states at the handler.
func (r *TableRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tables SET status = ?, updated_at = NOW() WHERE id = ? AND deleted_at IS NULL`,
		status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTableNotFound
	}
	return nil
}

// Update changes a table's name, seats and assigned waiter.
func (r *TableRepo) Update(ctx context.Context, id uint64, name string, seats int, waiterID *uint64) (model.Table, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tables SET name = ?, seats = ?, assigned_waiter_id = ?, updated_at = NOW()
		 WHERE id = ? AND deleted_at IS NULL`,
		name, seats, waiterID, id)
	if err != nil {
		if isDuplicate(err) {
			return model.Table{}, ErrTableExists
		}
		return model.Table{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Table{}, err
	}
	if n == 0 {
		// Distinguish "absent" from "no field changed" by re-reading.
		if _, gerr := r.GetByID(ctx, id); gerr != nil {
			return model.Table{}, gerr
		}
	}
	return r.GetByID(ctx, id)
}

// SoftDelete marks a table as logically removed.  Historical orders
// and reservations keep referencing the row.
func (r *TableRepo) SoftDelete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tables SET deleted_at = NOW() WHERE id = ? AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTableNotFound
	}
	return nil
}
