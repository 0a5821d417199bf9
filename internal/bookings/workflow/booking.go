package workflow

import (
	"context"
	"errors"
	"fmt"
	"math"

	bookingerrors "rentmate/internal/bookings/errors"
	"rentmate/internal/bookings/overlap"
	"rentmate/pkg/model"
)

// CreateBooking books dates on a listing for renterID. The new booking is
// confirmed immediately; when payment is supplied it is captured before the
// booking is written.
func (w *Workflow) CreateBooking(
	ctx context.Context,
	listingID, renterID string,
	dates model.DateRange,
	payment *model.PaymentDetails,
) (out Outcome) {
	op := w.begin(OpCreate)
	defer op.guard(&out)

	if f := w.checkRange(dates); f != nil {
		return op.fail(f)
	}

	listing, f := w.getListing(ctx, listingID)
	if f != nil {
		return op.fail(f)
	}

	release, err := w.lockListing(ctx, listingID)
	if err != nil {
		return op.fail(lockFailure(err))
	}
	defer release()

	if f := w.checkAvailability(ctx, listingID, dates, ""); f != nil {
		return op.fail(f)
	}

	booking := &model.Booking{
		ListingID:  listingID,
		RenterID:   renterID,
		StartDate:  dates.Start,
		EndDate:    dates.End,
		Status:     model.StatusConfirmed,
		TotalPrice: TotalPrice(listing.Price, dates),
		CreatedAt:  w.clock().UTC(),
	}

	if payment != nil && w.payments != nil {
		ref, err := w.payments.Capture(ctx, payment, booking.TotalPrice)
		if err != nil {
			return op.fail(paymentFailure(err))
		}
		booking.IsPaid = true
		booking.PaymentRef = ref
	}

	id, err := w.store.Put(ctx, booking)
	if err != nil {
		return op.fail(&Failure{Kind: KindStore, Message: "Failed to save booking", Err: err})
	}
	booking.ID = id

	out = op.succeed(booking)
	w.emit(ctx, bookingEvent(model.EventBookingCreated, booking, listing))
	return out
}

// UpdateBooking moves an existing booking to new dates. Only the renter may
// do this, and the new range is checked against every other booking of the
// listing.
func (w *Workflow) UpdateBooking(ctx context.Context, bookingID, callerID string, dates model.DateRange) (out Outcome) {
	op := w.begin(OpUpdate)
	defer op.guard(&out)

	if f := w.checkRange(dates); f != nil {
		return op.fail(f)
	}

	existing, f := w.getOwnedBooking(ctx, bookingID, callerID, "modify")
	if f != nil {
		return op.fail(f)
	}
	if !existing.IsConfirmed() {
		return op.fail(&Failure{
			Kind:    KindValidation,
			Reason:  ReasonNotConfirmed,
			Message: "Only confirmed bookings can be changed",
		})
	}

	listing, f := w.getListing(ctx, existing.ListingID)
	if f != nil {
		return op.fail(f)
	}

	release, err := w.lockListing(ctx, existing.ListingID)
	if err != nil {
		return op.fail(lockFailure(err))
	}
	defer release()

	if f := w.checkAvailability(ctx, existing.ListingID, dates, bookingID); f != nil {
		return op.fail(f)
	}

	previousStart := existing.StartDate
	updated := *existing
	updated.StartDate = dates.Start
	updated.EndDate = dates.End
	updated.TotalPrice = TotalPrice(listing.Price, dates)
	updated.UpdatedAt = w.clock().UTC()

	if _, err := w.store.Put(ctx, &updated); err != nil {
		return op.fail(&Failure{Kind: KindStore, Message: "Failed to update booking", Err: err})
	}

	out = op.succeed(&updated)

	eventType := model.EventBookingUpdated
	if dates.Start.After(previousStart) {
		eventType = model.EventBookingDelayed
	}
	event := bookingEvent(eventType, &updated, listing)
	event.PreviousStartDate = previousStart
	w.emit(ctx, event)
	return out
}

// CancelBooking deletes a booking. Only the renter may cancel; on an
// authorization failure nothing is deleted.
func (w *Workflow) CancelBooking(ctx context.Context, bookingID, callerID string) (out Outcome) {
	op := w.begin(OpCancel)
	defer op.guard(&out)

	existing, f := w.getOwnedBooking(ctx, bookingID, callerID, "cancel")
	if f != nil {
		return op.fail(f)
	}

	if err := w.store.Delete(ctx, bookingID); err != nil {
		if errors.Is(err, bookingerrors.ErrNotFound) {
			return op.fail(&Failure{Kind: KindNotFound, Message: "Booking not found", Err: err})
		}
		return op.fail(&Failure{Kind: KindStore, Message: "Failed to cancel booking", Err: err})
	}

	out = op.succeed(existing)
	w.emit(ctx, bookingEvent(model.EventBookingCancelled, existing, nil))
	return out
}

// TotalPrice is the nightly price times the number of nights, in cents
// precision.
func TotalPrice(nightly float64, dates model.DateRange) float64 {
	return math.Round(nightly*float64(dates.Nights())*100) / 100
}

func (w *Workflow) checkRange(dates model.DateRange) *Failure {
	if res := overlap.Validate(dates, nil, "", w.Today()); !res.Accepted {
		return &Failure{Kind: KindValidation, Reason: res.Reason, Message: res.Message}
	}
	if dates.Nights() < 1 {
		return &Failure{
			Kind:    KindValidation,
			Reason:  ReasonZeroNights,
			Message: "A booking must span at least one night",
		}
	}
	if w.maxNights > 0 && dates.Nights() > w.maxNights {
		return &Failure{
			Kind:    KindValidation,
			Reason:  ReasonStayTooLong,
			Message: fmt.Sprintf("A booking can span at most %d nights", w.maxNights),
		}
	}
	return nil
}

func (w *Workflow) checkAvailability(ctx context.Context, listingID string, dates model.DateRange, excludeID string) *Failure {
	existing, err := w.store.List(ctx, listingID)
	if err != nil {
		return &Failure{Kind: KindStore, Message: "Failed to load bookings of the listing", Err: err}
	}

	res := overlap.Validate(dates, existing, excludeID, w.Today())
	if res.Accepted {
		return nil
	}
	f := &Failure{Kind: KindValidation, Reason: res.Reason, Message: res.Message}
	if res.Conflict != nil {
		f.ConflictID = res.Conflict.ID
	}
	return f
}

func (w *Workflow) getListing(ctx context.Context, listingID string) (*model.Listing, *Failure) {
	listing, err := w.listings.GetListing(ctx, listingID)
	if err != nil {
		if errors.Is(err, bookingerrors.ErrListingNotFound) {
			return nil, &Failure{Kind: KindNotFound, Message: "Listing not found", Err: err}
		}
		return nil, &Failure{Kind: KindStore, Message: "Failed to fetch listing", Err: err}
	}
	return listing, nil
}

func (w *Workflow) getOwnedBooking(ctx context.Context, bookingID, callerID, action string) (*model.Booking, *Failure) {
	booking, err := w.store.Get(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingerrors.ErrNotFound) || errors.Is(err, bookingerrors.ErrInvalidID) {
			return nil, &Failure{Kind: KindNotFound, Message: "Booking not found", Err: err}
		}
		return nil, &Failure{Kind: KindStore, Message: "Failed to fetch booking", Err: err}
	}

	if callerID == "" || booking.RenterID != callerID {
		return nil, &Failure{
			Kind:    KindAuthorization,
			Message: "You can only " + action + " your own bookings",
		}
	}
	return booking, nil
}

func lockFailure(err error) *Failure {
	if errors.Is(err, bookingerrors.ErrLockHeld) {
		return &Failure{
			Kind:    KindConflict,
			Message: "Another booking for this listing is being processed, try again",
			Err:     err,
		}
	}
	return &Failure{Kind: KindStore, Message: "Failed to lock listing", Err: err}
}

func paymentFailure(err error) *Failure {
	if errors.Is(err, bookingerrors.ErrPaymentDeclined) {
		return &Failure{
			Kind:    KindValidation,
			Reason:  ReasonPaymentDeclined,
			Message: "Payment was declined",
			Err:     err,
		}
	}
	return &Failure{Kind: KindStore, Message: "Failed to process payment", Err: err}
}

func bookingEvent(eventType string, b *model.Booking, listing *model.Listing) model.BookingEvent {
	event := model.BookingEvent{
		Type:      eventType,
		BookingID: b.ID,
		ListingID: b.ListingID,
		RenterID:  b.RenterID,
		StartDate: b.StartDate,
		EndDate:   b.EndDate,
		IsPaid:    b.IsPaid,
	}
	if listing != nil {
		event.ListingName = listing.Name
		event.OwnerID = listing.OwnerID
	}
	return event
}
