package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestMarkPaidTxDistinguishesPaidFromAbsent(t *testing.T) {
	run := func(t *testing.T, arrange func(sqlmock.Sqlmock), want error) {
		t.Helper()
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("sqlmock: %v", err)
		}
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE bills SET is_paid").
			WillReturnResult(sqlmock.NewResult(0, 0))
		arrange(mock)
		mock.ExpectRollback()

		tx, err := db.Begin()
		if err != nil {
			t.Fatalf("begin: %v", err)
		}
		err = NewBillRepo(db).MarkPaidTx(context.Background(), tx, 5, "CASH", time.Now())
		if !errors.Is(err, want) {
			t.Fatalf("MarkPaidTx = %v, want %v", err, want)
		}
		_ = tx.Rollback()
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet expectations: %v", err)
		}
	}

	t.Run("already paid", func(t *testing.T) {
		run(t, func(mock sqlmock.Sqlmock) {
			mock.ExpectQuery("SELECT is_paid FROM bills").
				WillReturnRows(sqlmock.NewRows([]string{"is_paid"}).AddRow(true))
		}, ErrBillAlreadyPaid)
	})

	t.Run("absent", func(t *testing.T) {
		run(t, func(mock sqlmock.Sqlmock) {
			mock.ExpectQuery("SELECT is_paid FROM bills").
				WillReturnError(sql.ErrNoRows)
		}, ErrBillNotFound)
	})
}
