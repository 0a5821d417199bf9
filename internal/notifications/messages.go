package notifications

import (
	"fmt"

	"rentmate/pkg/model"
)

const (
	TitleNewReservation       = "New Reservation"
	TitleReservationConfirmed = "Reservation Confirmed"
	TitleReservationUpdated   = "Reservation Updated"
	TitleReservationDelayed   = "Reservation Delayed"
	TitleReservationReminder  = "Reservation Reminder"

	fallbackListingName = "an apartment"
)

// Message is one notification a booking event produces.
type Message struct {
	Recipient string
	Title     string
	Body      string
}

func listingName(name string) string {
	if name == "" {
		return fallbackListingName
	}
	return name
}

// MessagesFor renders the notifications of a booking event. Cancellations
// produce none.
func MessagesFor(event model.BookingEvent) []Message {
	name := listingName(event.ListingName)

	switch event.Type {
	case model.EventBookingCreated:
		ownerBody := fmt.Sprintf("Your apartment (%s) has been reserved!", name)
		renterBody := fmt.Sprintf("You have successfully reserved %s from %s to %s!",
			name, event.StartDate, event.EndDate)
		if event.IsPaid {
			ownerBody = fmt.Sprintf("Your apartment (%s) has been reserved and paid!", name)
			renterBody = fmt.Sprintf("You have successfully reserved and paid for %s from %s to %s!",
				name, event.StartDate, event.EndDate)
		}

		var out []Message
		if event.OwnerID != "" && event.OwnerID != event.RenterID {
			out = append(out, Message{
				Recipient: event.OwnerID,
				Title:     TitleNewReservation,
				Body:      ownerBody,
			})
		}
		return append(out, Message{
			Recipient: event.RenterID,
			Title:     TitleReservationConfirmed,
			Body:      renterBody,
		})

	case model.EventBookingDelayed:
		return []Message{{
			Recipient: event.RenterID,
			Title:     TitleReservationDelayed,
			Body:      fmt.Sprintf("Your reservation for %s has been delayed to %s.", name, event.StartDate),
		}}

	case model.EventBookingUpdated:
		return []Message{{
			Recipient: event.RenterID,
			Title:     TitleReservationUpdated,
			Body: fmt.Sprintf("Your reservation for %s has been updated to %s - %s.",
				name, event.StartDate, event.EndDate),
		}}
	}

	return nil
}

func reminderBody(listing string) string {
	return fmt.Sprintf("You have a reservation at %s tomorrow! Check the details.", listingName(listing))
}
