package main

import (
	"context"
	"time"

	"rentmate/internal/bookings/events"
	"rentmate/internal/bookings/handler"
	"rentmate/internal/bookings/locker"
	"rentmate/internal/bookings/payment"
	"rentmate/internal/bookings/repository"
	"rentmate/internal/bookings/service"
	"rentmate/internal/bookings/validator"
	"rentmate/internal/bookings/workflow"
	"rentmate/pkg/app"
	"rentmate/pkg/client"
	"rentmate/pkg/config"
	"rentmate/pkg/kafka"
	kafka_config "rentmate/pkg/kafka/config"
	kafkamiddleware "rentmate/pkg/kafka/middleware"
	"rentmate/pkg/sealer"
)

const (
	ServiceName         = "bookings"
	listingsStartupWait = 30 * time.Second
)

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Bookings service")

	producer, metrics := initProducer(cfg)
	listings := client.NewListingClient(cfg.ListingsServiceURL)
	waitForListings(cfg, listings)
	bookingService := initServices(cfg, producer, listings)

	serverApp := app.NewApplication(cfg)
	serverApp.OnShutdown(func(context.Context) {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
		cfg.Log.Info("Kafka producer metrics", "metrics", metrics.Snapshot())
	})
	serverApp.SetApp(
		handler.NewBookingHandler(bookingService, cfg.Log),
		app.MongoCheck(cfg.Client.Mongo),
		app.RedisCheck(cfg.Client.Redis),
		app.HealthCheck{Name: "listings", Check: listings.Ping},
	)
	serverApp.Run()
}

func initProducer(cfg *config.Config) (*kafka.Producer, *kafkamiddleware.Metrics) {
	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.Log, cfg.BookingEventsTopic, cfg.BookingEventsDLQTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}

	metrics := kafkamiddleware.NewMetrics()
	producer.Use(kafkamiddleware.LoggingProducerMiddleware(cfg.Log))
	producer.Use(metrics.ProducerMiddleware())
	return producer, metrics
}

func initServices(cfg *config.Config, producer *kafka.Producer, listings *client.ListingClient) service.BookingService {
	gateway := payment.NewMockGateway(initSealer(cfg), cfg.Log)

	bookingRepo := repository.NewMongoBookingRepository(cfg)
	directory := service.NewListingDirectory(listings)

	opts := []workflow.Option{
		workflow.WithEventEmitter(events.NewKafkaEmitter(producer)),
		workflow.WithPayments(gateway),
		workflow.WithLocation(cfg.Location),
		workflow.WithMaxNights(cfg.BookingMaxNights),
	}
	if l := locker.New(cfg); l != nil {
		opts = append(opts, workflow.WithLocker(l))
	}

	wf := workflow.New(bookingRepo, directory, cfg.Log, opts...)
	wf.Subscribe(func(t workflow.Transition) {
		cfg.Log.Debug("Booking workflow transition",
			"operation", t.Operation,
			"operation_id", t.OperationID,
			"from", t.From.String(),
			"to", t.To.String(),
		)
	})

	bookingService := service.NewBookingService(
		bookingRepo,
		wf,
		directory,
		validator.NewBookingValidator(cfg.Log),
		gateway,
		cfg,
	)

	cfg.Log.Info("Booking service initialized", "database", cfg.MongoDatabaseName)
	return bookingService
}

// initSealer loads the receipt key. Without one, receipts only verify for the
// lifetime of this process.
func initSealer(cfg *config.Config) *sealer.Sealer {
	if cfg.PaymentReceiptKey == "" {
		cfg.Log.Warn("PAYMENT_RECEIPT_KEY not set, using an ephemeral receipt key")
		s, err := sealer.NewRandom()
		if err != nil {
			cfg.Log.Fatal("Failed to create receipt sealer", "error", err)
		}
		return s
	}

	s, err := sealer.New(cfg.PaymentReceiptKey)
	if err != nil {
		cfg.Log.Fatal("Invalid PAYMENT_RECEIPT_KEY", "error", err)
	}
	return s
}

// waitForListings gives a listings service that starts alongside this one a
// chance to come up. Bookings still starts if it does not; listing lookups
// then fail with SERVICE_UNAVAILABLE until it does.
func waitForListings(cfg *config.Config, listings *client.ListingClient) {
	ctx, cancel := context.WithTimeout(context.Background(), listingsStartupWait)
	defer cancel()

	if err := listings.WaitForHealthy(ctx, listingsStartupWait); err != nil {
		cfg.Log.Warn("Listings service is not healthy yet", "url", cfg.ListingsServiceURL, "error", err)
		return
	}
	cfg.Log.Info("Listings service is healthy", "url", cfg.ListingsServiceURL)
}
