package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/roombooking/config"
	"github.com/Domenick1991/roombooking/internal/kafka"
	"github.com/Domenick1991/roombooking/internal/notify"
	"github.com/Domenick1991/roombooking/internal/timezone"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	defaultPath := os.Getenv("CONFIG_PATH")
	if defaultPath == "" {
		defaultPath = "config.yaml"
	}
	cfgPath := pflag.StringP("config", "c", defaultPath, "path to the YAML config file")
	pflag.Parse()

	cfg, err := config.LoadConfig(*cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.NotificationsTopic == "" {
		logger.Fatal("worker needs kafka.brokers and kafka.notifications_topic")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	normalizer, err := timezone.NewNormalizer(cfg.Booking.TimeZone)
	if err != nil {
		logger.Fatal("booking time zone", zap.Error(err))
	}
	loc, _ := normalizer.Location("")
	sender := notify.NewSender(logger.Named("notify"), loc)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, logger.Named("kafka"))
	defer consumer.Close()

	logger.Info("worker started", zap.String("topic", cfg.Kafka.NotificationsTopic))
	if err := consumer.Consume(ctx, kafka.BookingEventHandler(logger, sender.Send)); err != nil {
		logger.Error("consumer stopped", zap.Error(err))
		return
	}
	logger.Info("worker stopped")
}
