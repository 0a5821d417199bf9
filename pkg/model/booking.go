package model

import (
	"time"
)

const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

type Booking struct {
	ID         string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ListingID  string    `json:"listing_id" bson:"listing_id" validate:"required,mongodb"`
	RenterID   string    `json:"renter_id" bson:"renter_id" validate:"required,min=1,max=128"`
	StartDate  Date      `json:"start_date" bson:"start_date" validate:"required"`
	EndDate    Date      `json:"end_date" bson:"end_date" validate:"required"`
	Status     string    `json:"status" bson:"status" validate:"required,oneof=confirmed cancelled"`
	IsPaid     bool      `json:"is_paid" bson:"is_paid"`
	TotalPrice float64   `json:"total_price" bson:"total_price" validate:"gte=0"`
	PaymentRef string    `json:"payment_ref,omitempty" bson:"payment_ref,omitempty"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
}

func (b *Booking) Range() DateRange {
	return DateRange{Start: b.StartDate, End: b.EndDate}
}

func (b *Booking) IsConfirmed() bool {
	return b.Status == StatusConfirmed
}

type BookingRequest struct {
	ListingID string          `json:"listing_id" validate:"required,mongodb"`
	StartDate Date            `json:"start_date" validate:"required"`
	EndDate   Date            `json:"end_date" validate:"required"`
	Payment   *PaymentDetails `json:"payment,omitempty" validate:"omitempty"`
}

func (r *BookingRequest) Range() DateRange {
	return DateRange{Start: r.StartDate, End: r.EndDate}
}

type BookingUpdate struct {
	StartDate Date `json:"start_date" validate:"required"`
	EndDate   Date `json:"end_date" validate:"required"`
}

func (u *BookingUpdate) Range() DateRange {
	return DateRange{Start: u.StartDate, End: u.EndDate}
}

// PaymentDetails is only checked, never stored.
type PaymentDetails struct {
	CardNumber string `json:"card_number" validate:"required,len=16,numeric"`
	Expiry     string `json:"expiry" validate:"required,card_expiry"`
	CVV        string `json:"cvv" validate:"required,len=3,numeric"`
	CardHolder string `json:"card_holder" validate:"required,notblank,max=100"`
}

// Quote is the price of a stay.
type Quote struct {
	ListingID  string  `json:"listing_id"`
	StartDate  Date    `json:"start_date"`
	EndDate    Date    `json:"end_date"`
	Nights     int     `json:"nights"`
	NightPrice float64 `json:"night_price"`
	TotalPrice float64 `json:"total_price"`
}

// PaymentReceipt is the content of a sealed payment reference.
type PaymentReceipt struct {
	BookingID  string    `json:"booking_id"`
	CardLast4  string    `json:"card_last4"`
	Amount     float64   `json:"amount"`
	CapturedAt time.Time `json:"captured_at"`
}
