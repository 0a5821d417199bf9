package workflow

import (
	"context"

	"rentmate/pkg/model"
)

// Store persists bookings. Get returns an error wrapping
// bookingerrors.ErrNotFound when the booking does not exist.
type Store interface {
	List(ctx context.Context, listingID string) ([]*model.Booking, error)
	Get(ctx context.Context, id string) (*model.Booking, error)
	Put(ctx context.Context, booking *model.Booking) (string, error)
	Delete(ctx context.Context, id string) error
}

// ListingDirectory resolves the owner, name and nightly price of a listing.
// A missing listing is reported with bookingerrors.ErrListingNotFound.
type ListingDirectory interface {
	GetListing(ctx context.Context, id string) (*model.Listing, error)
}

// EventEmitter receives booking events after an operation has succeeded.
type EventEmitter interface {
	Emit(ctx context.Context, event model.BookingEvent) error
}

// Locker serializes writes per key. A held lock is reported with
// bookingerrors.ErrLockHeld.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// PaymentProcessor captures a payment and returns a receipt reference.
// Declines wrap bookingerrors.ErrPaymentDeclined.
type PaymentProcessor interface {
	Capture(ctx context.Context, details *model.PaymentDetails, amount float64) (string, error)
}
