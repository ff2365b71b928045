package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/flightrebooking/config"
	"github.com/Domenick1991/flightrebooking/internal/bootstrap"
	"github.com/Domenick1991/flightrebooking/internal/cache"
	"github.com/Domenick1991/flightrebooking/internal/logger"
	"github.com/Domenick1991/flightrebooking/internal/repository"
	"github.com/Domenick1991/flightrebooking/internal/service/catalog"
	"github.com/Domenick1991/flightrebooking/internal/service/rebooking"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger.InitLoggers(cfg.Logging.Dir)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Rebooking.FlightsCacheTTLSeconds)*time.Second)

	stores := repository.NewStores(pool)
	uow := repository.NewUnitOfWork(pool)

	flightService := catalog.NewFlightService(stores.Flights(), redisCache)
	rebookingService := rebooking.NewRebookingService(stores, uow)

	logger.InfoLogger.Infof("starting http server on %s", cfg.HTTP.Address)
	if err := bootstrap.Run(ctx, cfg, flightService, rebookingService); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
