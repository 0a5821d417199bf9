package notifications

import (
	"context"
	"errors"

	"rentmate/internal/bookings/events"
	"rentmate/pkg/kafka"
	"rentmate/pkg/logger"
	"rentmate/pkg/model"
)

type bookingNotifier interface {
	Notify(ctx context.Context, recipient, title, body string) error
	ScheduleReminder(ctx context.Context, recipient, bookingID, listingName string, start model.Date) error
	CancelReminder(ctx context.Context, bookingID string) error
}

// Dispatcher consumes booking events and drives the notifier.
type Dispatcher struct {
	notifier bookingNotifier
	log      *logger.Logger
}

func NewDispatcher(notifier bookingNotifier, log *logger.Logger) *Dispatcher {
	return &Dispatcher{notifier: notifier, log: log}
}

// Handle is a kafka.MessageHandler. Delivery failures are transient so the
// consumer retries them; undecodable events go to the DLQ.
func (d *Dispatcher) Handle(ctx context.Context, msg kafka.Message) error {
	event, err := events.Decode(msg)
	if err != nil {
		return err
	}
	if err := d.Dispatch(ctx, event); err != nil {
		return kafka.NewTransientError("dispatch booking event", err)
	}
	return nil
}

func (d *Dispatcher) Dispatch(ctx context.Context, event model.BookingEvent) error {
	var errs []error
	for _, m := range MessagesFor(event) {
		if err := d.notifier.Notify(ctx, m.Recipient, m.Title, m.Body); err != nil {
			errs = append(errs, err)
		}
	}

	switch event.Type {
	case model.EventBookingCreated, model.EventBookingUpdated, model.EventBookingDelayed:
		if err := d.notifier.ScheduleReminder(ctx, event.RenterID, event.BookingID, event.ListingName, event.StartDate); err != nil {
			errs = append(errs, err)
		}
	case model.EventBookingCancelled:
		if err := d.notifier.CancelReminder(ctx, event.BookingID); err != nil {
			errs = append(errs, err)
		}
	default:
		d.log.Warn("Ignoring unknown booking event", "type", event.Type, "booking_id", event.BookingID)
		return nil
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	d.log.Info("Booking event dispatched",
		"type", event.Type,
		"booking_id", event.BookingID,
		"listing_id", event.ListingID,
	)
	return nil
}
