package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// ReservationRepo provides persistence for reservations.  The overlap
// check and the insert are exposed as ...Tx variants so the
// orchestrator can run them, together with the table status change,
// inside one serializable transaction.  All timestamps are UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a ReservationRepo bound to the database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = `id, table_id, guest_name, guest_phone, guests, status,
	reserved_at, reserved_until, created_at, updated_at, deleted_at`

func scanReservation(row interface{ Scan(...interface{}) error }) (model.Reservation, error) {
	var res model.Reservation
	var phone sql.NullString
	var deleted sql.NullTime
	err := row.Scan(&res.ID, &res.TableID, &res.GuestName, &phone, &res.Guests, &res.Status,
		&res.ReservedAt, &res.ReservedUntil, &res.CreatedAt, &res.UpdatedAt, &deleted)
	if err != nil {
		return model.Reservation{}, err
	}
	if phone.Valid {
		p := phone.String
		res.GuestPhone = &p
	}
	if deleted.Valid {
		d := deleted.Time
		res.DeletedAt = &d
	}
	return res, nil
}

// CountOverlappingTx counts ACTIVE reservations on the table whose
// half-open interval overlaps [start, end):
//
//	existing.reserved_at < end AND existing.reserved_until > start
//
// This is the single invariant-preserving check for double booking.
// It must run inside a serializable transaction: under weaker
// isolation two concurrent attempts could both observe a zero count
// and both commit.
func (r *ReservationRepo) CountOverlappingTx(ctx context.Context, tx *sql.Tx, tableID uint64, start, end time.Time) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations
		 WHERE table_id = ? AND status = ? AND deleted_at IS NULL
		   AND reserved_at < ? AND reserved_until > ?`,
		tableID, model.ReservationActive, end.UTC(), start.UTC()).Scan(&n)
	return n, err
}

// CreateTx inserts a reservation inside the caller's transaction and
// populates the generated id and timestamps on the given record.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	result, err := tx.ExecContext(ctx,
		`INSERT INTO reservations (table_id, guest_name, guest_phone, guests, status, reserved_at, reserved_until)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		res.TableID, res.GuestName, res.GuestPhone, res.Guests, res.Status,
		res.ReservedAt.UTC(), res.ReservedUntil.UTC())
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	row := tx.QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, res.ID)
	got, err := scanReservation(row)
	if err != nil {
		return err
	}
	*res = got
	return nil
}

// GetByID returns a reservation by id, excluding soft-deleted rows.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (model.Reservation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = ? AND deleted_at IS NULL`, id)
	res, err := scanReservation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Reservation{}, ErrReservationNotFound
	}
	return res, err
}

// GetForUpdateTx loads a reservation inside tx with a row lock.
func (r *ReservationRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Reservation, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = ? AND deleted_at IS NULL FOR UPDATE`, id)
	res, err := scanReservation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Reservation{}, ErrReservationNotFound
	}
	return res, err
}

// List returns reservations ordered by start time, newest first.  When
// tableID is non-zero only that table's reservations are returned;
// when status is non-empty only that status is returned.
func (r *ReservationRepo) List(ctx context.Context, tableID uint64, status string) ([]model.Reservation, error) {
	q := `SELECT ` + reservationColumns + ` FROM reservations WHERE deleted_at IS NULL`
	args := []interface{}{}
	if tableID != 0 {
		q += ` AND table_id = ?`
		args = append(args, tableID)
	}
	if status != "" {
		q += ` AND status = ?`
		args = append(args, status)
	}
	q += ` ORDER BY reserved_at DESC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// CancelTx marks a reservation CANCELLED and soft-deletes it inside
// the caller's transaction.  The row stays in place for history.
func (r *ReservationRepo) CancelTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE reservations SET status = ?, deleted_at = NOW(), updated_at = NOW()
		 WHERE id = ? AND status = ? AND deleted_at IS NULL`,
		model.ReservationCancelled, id, model.ReservationActive)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrReservationNotFound
	}
	return nil
}

// CompleteTx marks a reservation COMPLETED (guest seated) inside the
// caller's transaction.
func (r *ReservationRepo) CompleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE reservations SET status = ?, updated_at = NOW()
		 WHERE id = ? AND status = ? AND deleted_at IS NULL`,
		model.ReservationCompleted, id, model.ReservationActive)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrReservationNotFound
	}
	return nil
}
