// Command night_audit runs one reconciliation sweep and exits. Ops use it to
// replay a missed night: night_audit -date 2025-06-10
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"resort/internal/config"
	"resort/internal/database"
	"resort/internal/domain"
	"resort/internal/modules/booking"
	"resort/internal/modules/nightaudit"
	"resort/internal/pkg/logger"
	"resort/internal/repository"
)

func main() {
	dateFlag := flag.String("date", "", "audit date YYYY-MM-DD (default: today in RESORT_TIMEZONE)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	lg, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	day := domain.DateOf(time.Now().In(cfg.Location))
	if *dateFlag != "" {
		if day, err = domain.ParseDate(*dateFlag); err != nil {
			lg.Fatal("bad -date", zap.Error(err))
		}
	}

	db, err := database.Connect(cfg.DatabaseURL, lg)
	if err != nil {
		lg.Fatal("db connect failed", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		lg.Fatal("db migrate failed", zap.Error(err))
	}

	store := repository.NewStore(db)
	machine := booking.NewMachine(booking.NewPricing(cfg.CurrencyDecimals, cfg.DepositRate), nil, cfg.Location)
	svc := nightaudit.NewService(store, machine, nil, lg, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	sum, err := svc.Run(ctx, day)
	if err != nil {
		lg.Fatal("night audit failed", zap.Error(err))
	}
	log.Printf("night audit %s completed: no_shows=%d overdue=%d low_stock=%d invoices=%d rooms=%d",
		sum.Date, sum.NoShows, sum.OverdueCheckouts, sum.LowStockAlerts, sum.InvoicesReleased, sum.RoomsReleased)
}
