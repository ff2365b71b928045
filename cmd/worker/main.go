package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/flightrebooking/config"
	"github.com/Domenick1991/flightrebooking/internal/domain"
	"github.com/Domenick1991/flightrebooking/internal/kafka"
	"github.com/Domenick1991/flightrebooking/internal/logger"
	"github.com/Domenick1991/flightrebooking/internal/repository"
	"github.com/Domenick1991/flightrebooking/internal/service/disruption"
	"github.com/jackc/pgx/v5/pgxpool"
	kafkaGo "github.com/segmentio/kafka-go"
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

	uow := repository.NewUnitOfWork(pool)
	disruptionService := disruption.NewService(uow)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.DisruptionsTopic)
	defer consumer.Close()

	logger.InfoLogger.Infof("consuming disruption events from %s", cfg.Kafka.DisruptionsTopic)
	err = consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
		var event kafka.DisruptionEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.ErrorLogger.Errorf("decode disruption event: %v", err)
			return nil
		}
		if err := disruptionService.RecordDisruption(ctx, event); err != nil {
			// A missing booking is a bad event, not a worker failure.
			if errors.Is(err, domain.ErrBookingNotFound) {
				logger.ErrorLogger.Errorf("disruption event for unknown booking %s", event.BookingReference)
				return nil
			}
			return err
		}
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("consumer stopped: %v", err)
	}
}
