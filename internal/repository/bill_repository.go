package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// BillRepo provides persistence for bills.  A bill is created once per
// order (unique order_id); afterwards only the paid flag, paid
// timestamp and the artifact URL may change.
type BillRepo struct {
	db *sql.DB
}

// NewBillRepo returns a BillRepo bound to the given database.
func NewBillRepo(db *sql.DB) *BillRepo { return &BillRepo{db: db} }

const billColumns = `id, order_id, sub_total, discount_value, discount_type, service_charge,
	tax_pct, tax_amount, grand_total, payment_mode, is_paid, paid_at, pdf_url, created_at, updated_at`

func scanBill(row interface{ Scan(...interface{}) error }) (model.Bill, error) {
	var b model.Bill
	var paidAt sql.NullTime
	var pdfURL sql.NullString
	err := row.Scan(&b.ID, &b.OrderID, &b.SubTotal, &b.DiscountValue, &b.DiscountType,
		&b.ServiceCharge, &b.TaxPct, &b.TaxAmount, &b.GrandTotal, &b.PaymentMode,
		&b.IsPaid, &paidAt, &pdfURL, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return model.Bill{}, err
	}
	if paidAt.Valid {
		t := paidAt.Time
		b.PaidAt = &t
	}
	if pdfURL.Valid {
		u := pdfURL.String
		b.PDFURL = &u
	}
	return b, nil
}

// CreateTx inserts the bill inside the caller's transaction.  Monetary
// figures are persisted rounded to currency precision by the Money
// valuer.  A second bill for the same order maps to ErrBillExists.
func (r *BillRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Bill) error {
	result, err := tx.ExecContext(ctx,
		`INSERT INTO bills (order_id, sub_total, discount_value, discount_type, service_charge,
		                    tax_pct, tax_amount, grand_total, payment_mode, is_paid)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.OrderID, b.SubTotal, b.DiscountValue, b.DiscountType, b.ServiceCharge,
		b.TaxPct, b.TaxAmount, b.GrandTotal, b.PaymentMode, b.IsPaid)
	if err != nil {
		if isDuplicate(err) {
			return ErrBillExists
		}
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	row := tx.QueryRowContext(ctx, `SELECT `+billColumns+` FROM bills WHERE id = ?`, b.ID)
	got, err := scanBill(row)
	if err != nil {
		return err
	}
	*b = got
	return nil
}

// GetByID returns a bill by id.
func (r *BillRepo) GetByID(ctx context.Context, id uint64) (model.Bill, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+billColumns+` FROM bills WHERE id = ?`, id)
	b, err := scanBill(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Bill{}, ErrBillNotFound
	}
	return b, err
}

// GetForUpdateTx loads a bill inside the caller's transaction with a
// row lock, so settlement decisions read the current paid state.
func (r *BillRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Bill, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+billColumns+` FROM bills WHERE id = ? FOR UPDATE`, id)
	b, err := scanBill(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Bill{}, ErrBillNotFound
	}
	return b, err
}

// GetByOrderID returns the bill attached to an order.
func (r *BillRepo) GetByOrderID(ctx context.Context, orderID uint64) (model.Bill, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+billColumns+` FROM bills WHERE order_id = ?`, orderID)
	b, err := scanBill(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Bill{}, ErrBillNotFound
	}
	return b, err
}

// MarkPaidTx settles a bill inside the caller's transaction.  A bill
// can be settled only once; a repeat attempt maps to ErrBillAlreadyPaid
// so callers can tell it apart from a missing bill.
func (r *BillRepo) MarkPaidTx(ctx context.Context, tx *sql.Tx, id uint64, mode string, paidAt time.Time) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE bills SET is_paid = TRUE, payment_mode = ?, paid_at = ?, updated_at = NOW()
		 WHERE id = ? AND is_paid = FALSE`,
		mode, paidAt.UTC(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var paid bool
		err := tx.QueryRowContext(ctx, `SELECT is_paid FROM bills WHERE id = ?`, id).Scan(&paid)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrBillNotFound
		}
		if err != nil {
			return err
		}
		if paid {
			return ErrBillAlreadyPaid
		}
		return ErrBillNotFound
	}
	return nil
}

// AttachArtifact records the generated receipt URL.  This runs as a
// separate, post-commit update: a bill is valid and payable even when
// the artifact step fails or lags behind.
func (r *BillRepo) AttachArtifact(ctx context.Context, id uint64, url string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bills SET pdf_url = ?, updated_at = NOW() WHERE id = ?`, url, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrBillNotFound
	}
	return nil
}
