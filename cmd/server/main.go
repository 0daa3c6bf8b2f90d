package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/artifact"
	"github.com/iliyamo/restaurant-table-reservation/internal/config"
	"github.com/iliyamo/restaurant-table-reservation/internal/database"
	"github.com/iliyamo/restaurant-table-reservation/internal/handler"
	"github.com/iliyamo/restaurant-table-reservation/internal/middleware"
	"github.com/iliyamo/restaurant-table-reservation/internal/queue"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
	"github.com/iliyamo/restaurant-table-reservation/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	// Redis is optional: without it the rate limiter and menu cache
	// become pass-throughs.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, rate limiting and caching disabled")
	}

	// Repositories.
	tables := repository.NewTableRepo(db)
	reservations := repository.NewReservationRepo(db)
	orders := repository.NewOrderRepo(db)
	bills := repository.NewBillRepo(db)
	menu := repository.NewMenuRepo(db)
	staff := repository.NewStaffRepo(db)
	tokens := repository.NewTokenRepo(db)
	events := repository.NewTableEventRepo(db)
	reports := repository.NewReportRepo(db)

	receipts := artifact.NewFileGenerator("")

	// Handlers.
	authH := handler.NewAuthHandler(cfg, staff, tokens)
	tableH := handler.NewTableHandler(tables, events)
	menuH := handler.NewMenuHandler(menu)
	reservationH := handler.NewReservationHandler(tables, reservations, events)
	orderH := handler.NewOrderHandler(tables, orders, menu, staff, events)
	billH := handler.NewBillHandler(cfg, tables, orders, bills, menu, events, receipts)
	reportH := handler.NewReportHandler(cfg, reports)

	// Background consumers keep their own reconnect loops.
	go func() {
		if err := queue.StartAuditConsumer(); err != nil {
			log.Printf("audit consumer stopped: %v", err)
		}
	}()
	go func() {
		if err := queue.StartKitchenConsumer(); err != nil {
			log.Printf("kitchen consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	menuCache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, menuH, orderH, menuCache)
	router.RegisterStaff(e, router.StaffHandlers{
		Tables:       tableH,
		Menu:         menuH,
		Reservations: reservationH,
		Orders:       orderH,
		Bills:        billH,
		Reports:      reportH,
	}, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
