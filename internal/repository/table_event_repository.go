package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// TableEventRepo reads the append-only table status timeline consumed
// by the kitchen display.  Writes happen through InsertTx so every
// event lands in the same transaction as the status change it records.
type TableEventRepo struct {
	db *sql.DB
}

// NewTableEventRepo returns a TableEventRepo bound to the database.
func NewTableEventRepo(db *sql.DB) *TableEventRepo { return &TableEventRepo{db: db} }

// InsertTx appends a status-change event inside the caller's
// transaction, so the event lands atomically with the status change.
func (r *TableEventRepo) InsertTx(ctx context.Context, tx *sql.Tx, ev model.TableEvent) error {
	at := ev.CreatedAt
	if at.IsZero() {
		at = time.Now().UTC()
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO table_events (table_id, order_id, from_status, to_status, actor_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		ev.TableID, ev.OrderID, ev.FromStatus, ev.ToStatus, ev.ActorID, at.UTC())
	return err
}

// ListByTable returns a table's status timeline, oldest first, capped
// at limit rows (0 means no cap).
func (r *TableEventRepo) ListByTable(ctx context.Context, tableID uint64, limit int) ([]model.TableEvent, error) {
	q := `SELECT id, table_id, order_id, from_status, to_status, actor_id, created_at
	      FROM table_events WHERE table_id = ? ORDER BY created_at, id`
	args := []interface{}{tableID}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]model.TableEvent, 0)
	for rows.Next() {
		var ev model.TableEvent
		var orderID, actorID sql.NullInt64
		if err := rows.Scan(&ev.ID, &ev.TableID, &orderID, &ev.FromStatus, &ev.ToStatus, &actorID, &ev.CreatedAt); err != nil {
			return nil, err
		}
		if orderID.Valid {
			v := uint64(orderID.Int64)
			ev.OrderID = &v
		}
		if actorID.Valid {
			v := uint64(actorID.Int64)
			ev.ActorID = &v
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
