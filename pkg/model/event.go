package model

import "time"

const (
	EventBookingCreated   = "booking.created"
	EventBookingUpdated   = "booking.updated"
	EventBookingDelayed   = "booking.delayed"
	EventBookingCancelled = "booking.cancelled"
)

// BookingEvent is emitted after a booking operation succeeds.
type BookingEvent struct {
	Type              string    `json:"type"`
	BookingID         string    `json:"booking_id"`
	ListingID         string    `json:"listing_id"`
	ListingName       string    `json:"listing_name,omitempty"`
	OwnerID           string    `json:"owner_id,omitempty"`
	RenterID          string    `json:"renter_id"`
	StartDate         Date      `json:"start_date"`
	EndDate           Date      `json:"end_date"`
	PreviousStartDate Date      `json:"previous_start_date,omitempty"`
	IsPaid            bool      `json:"is_paid"`
	OccurredAt        time.Time `json:"occurred_at"`
}

// Notification is a message addressed to one user.
type Notification struct {
	ID        string    `json:"id"`
	Recipient string    `json:"recipient"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	BookingID string    `json:"booking_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
