// Package overlap decides whether a date range can be booked on a listing.
package overlap

import (
	"fmt"

	"rentmate/pkg/model"
)

type Reason string

const (
	ReasonNone      Reason = ""
	ReasonMalformed Reason = "malformed"
	ReasonPastDate  Reason = "past_date"
	ReasonOverlap   Reason = "overlap"
)

// Result is either an acceptance or a rejection carrying its reason.
// Conflict is set only for ReasonOverlap.
type Result struct {
	Accepted bool
	Reason   Reason
	Conflict *model.Booking
	Message  string
}

func accept() Result {
	return Result{Accepted: true, Reason: ReasonNone}
}

func reject(reason Reason, conflict *model.Booking, format string, args ...any) Result {
	return Result{
		Accepted: false,
		Reason:   reason,
		Conflict: conflict,
		Message:  fmt.Sprintf(format, args...),
	}
}

// Validate checks candidate against the existing bookings of one listing.
// Boundaries are inclusive: a range ending on the day another starts
// conflicts with it. The booking whose ID equals excludeID is ignored so a
// booking can be revalidated against everything but itself.
func Validate(candidate model.DateRange, bookings []*model.Booking, excludeID string, today model.Date) Result {
	if candidate.Start.IsZero() || candidate.End.IsZero() || !candidate.Valid() {
		return reject(ReasonMalformed, nil, "start date %s must not be after end date %s", candidate.Start, candidate.End)
	}

	if candidate.Start.Before(today) {
		return reject(ReasonPastDate, nil, "start date %s is before today (%s)", candidate.Start, today)
	}

	for _, b := range bookings {
		if b == nil || !b.IsConfirmed() {
			continue
		}
		if excludeID != "" && b.ID == excludeID {
			continue
		}
		if candidate.Overlaps(b.Range()) {
			return reject(ReasonOverlap, b, "dates %s overlap an existing booking (%s)", candidate, b.Range())
		}
	}

	return accept()
}
