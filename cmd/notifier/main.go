package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"rentmate/internal/notifications"
	"rentmate/internal/notifications/publisher"
	"rentmate/internal/notifications/reminders"
	"rentmate/pkg/config"
	"rentmate/pkg/kafka"
	kafka_config "rentmate/pkg/kafka/config"
	kafkamiddleware "rentmate/pkg/kafka/middleware"
)

const ServiceName = "notifier"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetRedis()

	cfg.Log.Info("Starting Notifier worker")

	pub, err := publisher.NewRabbitPublisher(cfg.RabbitMQURL, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to connect to RabbitMQ", "error", err)
	}

	notifier := notifications.NewNotifier(pub, reminders.NewRedisStore(cfg.Client.Redis), cfg.ReminderLead, cfg.Log)
	dispatcher := notifications.NewDispatcher(notifier, cfg.Log)

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	consumer, err := kafka.NewConsumer(kafkaCfg, cfg.Log, cfg.BookingEventsTopic, cfg.NotifierGroupID, cfg.BookingEventsDLQTopic, dispatcher.Handle)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	metrics := kafkamiddleware.NewMetrics()
	consumer.Use(kafkamiddleware.LoggingConsumerMiddleware(cfg.Log))
	consumer.Use(metrics.ConsumerMiddleware())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		notifier.RunReminders(ctx, cfg.ReminderPollInterval)
	}()
	go func() {
		defer wg.Done()
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			cfg.Log.Error("Kafka consumer stopped", "error", err)
		}
		stop()
	}()

	<-ctx.Done()
	cfg.Log.Info("Shutdown signal received, draining notifier")
	wg.Wait()

	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close Kafka consumer", "error", err)
	}
	if err := pub.Close(); err != nil {
		cfg.Log.Error("Failed to close RabbitMQ publisher", "error", err)
	}
	cfg.Log.Info("Kafka consumer metrics", "metrics", metrics.Snapshot())
	cfg.GracefulShutdown()
	cfg.Log.Info("Notifier stopped")
}
