package main

import (
	"context"

	"rentmate/internal/bookings/locker"
	bookingrepository "rentmate/internal/bookings/repository"
	"rentmate/internal/listings/handler"
	"rentmate/internal/listings/repository"
	"rentmate/internal/listings/service"
	"rentmate/internal/listings/validator"
	"rentmate/internal/notifications"
	"rentmate/internal/notifications/publisher"
	"rentmate/internal/notifications/reminders"
	"rentmate/pkg/app"
	"rentmate/pkg/config"
)

const ServiceName = "listings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Listings service")

	serverApp := app.NewApplication(cfg)

	var notifier service.Notifier
	pub, err := publisher.NewRabbitPublisher(cfg.RabbitMQURL, cfg.Log)
	if err != nil {
		cfg.Log.Warn("RabbitMQ unavailable, review notifications disabled", "error", err)
	} else {
		notifier = notifications.NewNotifier(pub, reminders.NewRedisStore(cfg.Client.Redis), cfg.ReminderLead, cfg.Log)
		serverApp.OnShutdown(func(context.Context) {
			if err := pub.Close(); err != nil {
				cfg.Log.Error("Failed to close RabbitMQ publisher", "error", err)
			}
		})
	}

	listingRepo := repository.NewMongoListingRepository(cfg)
	reviewRepo := repository.NewMongoReviewRepository(cfg)
	stays := bookingrepository.NewMongoBookingRepository(cfg)
	listingValidator := validator.NewListingValidator(cfg.Log)

	var locks service.ListingLocker
	if l := locker.New(cfg); l != nil {
		locks = l
	}

	listingService := service.NewListingService(listingRepo, reviewRepo, stays, locks, listingValidator, cfg)
	reviewService := service.NewReviewService(listingRepo, reviewRepo, stays, notifier, listingValidator, cfg)

	cfg.Log.Info("Listing service initialized", "database", cfg.MongoDatabaseName)

	serverApp.SetApp(
		handler.NewListingHandler(listingService, reviewService, cfg.Log),
		app.MongoCheck(cfg.Client.Mongo),
		app.RedisCheck(cfg.Client.Redis),
	)
	serverApp.Run()
}
