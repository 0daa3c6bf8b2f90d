// Command revenue prints the daily revenue report to the terminal.
// It is the ops-side counterpart of the HTTP report endpoint, meant
// for end-of-day reconciliation from a shell.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"

	"github.com/iliyamo/restaurant-table-reservation/internal/config"
	"github.com/iliyamo/restaurant-table-reservation/internal/database"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
)

func main() {
	dateFlag := flag.String("date", "", "calendar day to report, YYYY-MM-DD (default today)")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	day := time.Now().In(cfg.ReportLoc)
	if *dateFlag != "" {
		parsed, err := time.ParseInLocation("2006-01-02", *dateFlag, cfg.ReportLoc)
		if err != nil {
			log.Fatalf("invalid -date %q, want YYYY-MM-DD", *dateFlag)
		}
		day = parsed
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	report, err := repository.NewReportRepo(db).DailyRevenue(ctx, day, cfg.ReportLoc)
	if err != nil {
		log.Fatalf("aggregate revenue: %v", err)
	}

	fmt.Printf("Daily revenue for %s (%s)\n\n", report.Date, cfg.ReportLoc)

	summary := tablewriter.NewWriter(os.Stdout)
	summary.Header([]string{"Bills", "Gross", "Tax", "Service", "Discounts"})
	_ = summary.Append([]string{
		fmt.Sprintf("%d", report.BillCount),
		report.GrandTotal.StringFixed(),
		report.TaxTotal.StringFixed(),
		report.ServiceChargeTotal.StringFixed(),
		report.DiscountTotal.StringFixed(),
	})
	_ = summary.Render()

	if len(report.ByPaymentMode) == 0 {
		return
	}
	fmt.Println()
	modes := tablewriter.NewWriter(os.Stdout)
	modes.Header([]string{"Payment mode", "Bills", "Gross"})
	for _, mt := range report.ByPaymentMode {
		_ = modes.Append([]string{mt.Mode, fmt.Sprintf("%d", mt.BillCount), mt.GrandTotal.StringFixed()})
	}
	_ = modes.Render()
}
