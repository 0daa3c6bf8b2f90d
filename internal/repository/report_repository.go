package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/restaurant-table-reservation/internal/money"
)

// ReportRepo runs read-only revenue aggregations.  All sums happen in
// the database over DECIMAL columns, so accumulation is exact; values
// cross into Go as Money and are converted to display strings only at
// the boundary.
type ReportRepo struct {
	db *sql.DB
}

// NewReportRepo returns a ReportRepo bound to the given database.
func NewReportRepo(db *sql.DB) *ReportRepo { return &ReportRepo{db: db} }

// PaymentModeTotal is one row of the per-mode breakdown.
type PaymentModeTotal struct {
	Mode       string      `json:"mode"`
	BillCount  int         `json:"bill_count"`
	GrandTotal money.Money `json:"grand_total"`
}

// DailyRevenueReport aggregates every paid bill settled within one
// calendar day.  DiscountTotal is the monetary amount taken off across
// all bills; percentage discounts are expanded against each bill's
// subtotal.
type DailyRevenueReport struct {
	Date               string             `json:"date"`
	BillCount          int                `json:"bill_count"`
	GrandTotal         money.Money        `json:"grand_total"`
	TaxTotal           money.Money        `json:"tax_total"`
	ServiceChargeTotal money.Money        `json:"service_charge_total"`
	DiscountTotal      money.Money        `json:"discount_total"`
	ByPaymentMode      []PaymentModeTotal `json:"by_payment_mode"`
}

// DailyRevenue aggregates bills with is_paid=TRUE whose paid_at falls
// inside the calendar day `date` interpreted in loc.  The window is
// the half-open range [midnight, midnight+24h), converted to UTC for
// the query since paid_at is stored as a UTC instant.  The operation
// has no side effects: running it twice over an unchanged window
// returns identical totals.
func (r *ReportRepo) DailyRevenue(ctx context.Context, date time.Time, loc *time.Location) (DailyRevenueReport, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
	dayEnd := dayStart.Add(24 * time.Hour)
	startUTC, endUTC := dayStart.UTC(), dayEnd.UTC()

	report := DailyRevenueReport{
		Date:          dayStart.Format("2006-01-02"),
		ByPaymentMode: make([]PaymentModeTotal, 0),
	}

	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(grand_total), 0),
		        COALESCE(SUM(tax_amount), 0),
		        COALESCE(SUM(service_charge), 0),
		        COALESCE(SUM(CASE WHEN discount_type = 'PERCENTAGE'
		                          THEN sub_total * discount_value / 100
		                          ELSE discount_value END), 0)
		 FROM bills
		 WHERE is_paid = TRUE AND paid_at >= ? AND paid_at < ?`,
		startUTC, endUTC).Scan(
		&report.BillCount, &report.GrandTotal, &report.TaxTotal,
		&report.ServiceChargeTotal, &report.DiscountTotal)
	if err != nil {
		return DailyRevenueReport{}, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT payment_mode, COUNT(*), COALESCE(SUM(grand_total), 0)
		 FROM bills
		 WHERE is_paid = TRUE AND paid_at >= ? AND paid_at < ?
		 GROUP BY payment_mode
		 ORDER BY payment_mode`,
		startUTC, endUTC)
	if err != nil {
		return DailyRevenueReport{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var mt PaymentModeTotal
		if err := rows.Scan(&mt.Mode, &mt.BillCount, &mt.GrandTotal); err != nil {
			return DailyRevenueReport{}, err
		}
		report.ByPaymentMode = append(report.ByPaymentMode, mt)
	}
	if err := rows.Err(); err != nil {
		return DailyRevenueReport{}, err
	}
	return report, nil
}
