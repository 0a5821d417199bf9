// Package notifications turns booking events into user notifications and
// fires stay reminders.
package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rentmate/internal/notifications/reminders"
	"rentmate/pkg/logger"
	"rentmate/pkg/model"

	"github.com/google/uuid"
)

const reminderBatchSize = 100

type Publisher interface {
	Publish(ctx context.Context, n model.Notification) error
}

type ReminderStore interface {
	Schedule(ctx context.Context, r reminders.Reminder) error
	Cancel(ctx context.Context, bookingID string) error
	Claim(ctx context.Context, now time.Time, limit int64) ([]reminders.Reminder, error)
}

type Notifier struct {
	publisher Publisher
	reminders ReminderStore
	lead      time.Duration
	log       *logger.Logger
	now       func() time.Time
}

// NewNotifier builds a Notifier whose reminders fire lead before the start
// of a stay.
func NewNotifier(publisher Publisher, store ReminderStore, lead time.Duration, log *logger.Logger) *Notifier {
	return &Notifier{
		publisher: publisher,
		reminders: store,
		lead:      lead,
		log:       log,
		now:       time.Now,
	}
}

func (n *Notifier) Notify(ctx context.Context, recipient, title, body string) error {
	return n.publish(ctx, recipient, title, body, "")
}

func (n *Notifier) publish(ctx context.Context, recipient, title, body, bookingID string) error {
	if recipient == "" {
		return errors.New("notification without recipient")
	}
	return n.publisher.Publish(ctx, model.Notification{
		ID:        uuid.NewString(),
		Recipient: recipient,
		Title:     title,
		Body:      body,
		BookingID: bookingID,
		CreatedAt: n.now().UTC(),
	})
}

// ScheduleReminder arranges a reminder lead before midnight UTC of start,
// replacing any reminder pending for the booking. A fire time that has
// already passed only clears the old reminder.
func (n *Notifier) ScheduleReminder(ctx context.Context, recipient, bookingID, listingName string, start model.Date) error {
	fireAt := start.Time().Add(-n.lead)
	if !fireAt.After(n.now()) {
		n.log.Debug("Reminder time already passed",
			"booking_id", bookingID,
			"start_date", start,
			"fire_at", fireAt,
		)
		return n.reminders.Cancel(ctx, bookingID)
	}

	err := n.reminders.Schedule(ctx, reminders.Reminder{
		BookingID:   bookingID,
		Recipient:   recipient,
		ListingName: listingName,
		StartDate:   start,
		FireAt:      fireAt,
	})
	if err != nil {
		return err
	}

	n.log.Debug("Reminder scheduled", "booking_id", bookingID, "fire_at", fireAt)
	return nil
}

func (n *Notifier) CancelReminder(ctx context.Context, bookingID string) error {
	return n.reminders.Cancel(ctx, bookingID)
}

// FireDue publishes every reminder that is due and returns how many were
// sent. A reminder that fails to publish is scheduled again.
func (n *Notifier) FireDue(ctx context.Context) (int, error) {
	due, err := n.reminders.Claim(ctx, n.now(), reminderBatchSize)
	sent := 0
	for _, r := range due {
		if pubErr := n.publish(ctx, r.Recipient, TitleReservationReminder, reminderBody(r.ListingName), r.BookingID); pubErr != nil {
			n.log.Error("Failed to send reminder", "booking_id", r.BookingID, "error", pubErr)
			if reErr := n.reminders.Schedule(ctx, r); reErr != nil {
				n.log.Error("Failed to requeue reminder", "booking_id", r.BookingID, "error", reErr)
			}
			continue
		}
		sent++
	}
	if err != nil {
		return sent, fmt.Errorf("claim due reminders: %w", err)
	}
	return sent, nil
}

// RunReminders polls for due reminders every interval until ctx is done.
func (n *Notifier) RunReminders(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	n.log.Info("Reminder poller started", "interval", interval, "lead", n.lead)
	for {
		select {
		case <-ctx.Done():
			n.log.Info("Reminder poller stopped")
			return
		case <-ticker.C:
			sent, err := n.FireDue(ctx)
			if err != nil && ctx.Err() == nil {
				n.log.Error("Reminder poll failed", "error", err)
			}
			if sent > 0 {
				n.log.Info("Reminders sent", "count", sent)
			}
		}
	}
}
