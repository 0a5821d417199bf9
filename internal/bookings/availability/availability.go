// Package availability computes which calendar days of a listing can no
// longer be booked.
package availability

import (
	"sort"

	"rentmate/pkg/model"
)

// Set is the blocked-day set of one listing. Every day strictly before the
// horizon is blocked; on and after it only explicitly booked days are.
type Set struct {
	horizon model.Date
	booked  map[string]model.Date
}

// BlockedDays unions the days of every confirmed booking (both ends
// included) with the interval [epoch, today). Cancelled bookings
// contribute nothing.
func BlockedDays(bookings []*model.Booking, today model.Date) Set {
	return collect(bookings, today, model.DateRange{})
}

// BlockedDaysIn is BlockedDays restricted to window: booked days outside it
// are left out of the set, so its size is bounded by the window length.
func BlockedDaysIn(bookings []*model.Booking, today model.Date, window model.DateRange) Set {
	if !window.Valid() {
		return Set{horizon: today, booked: map[string]model.Date{}}
	}
	return collect(bookings, today, window)
}

// collect walks each confirmed booking from max(start, today, window.Start)
// to min(end, window.End). A zero window means no bounds.
func collect(bookings []*model.Booking, today model.Date, window model.DateRange) Set {
	set := Set{
		horizon: today,
		booked:  make(map[string]model.Date),
	}

	for _, b := range bookings {
		if b == nil || !b.IsConfirmed() {
			continue
		}
		from, to := b.StartDate, b.EndDate
		if from.Before(today) {
			from = today
		}
		if !window.Start.IsZero() && from.Before(window.Start) {
			from = window.Start
		}
		if !window.End.IsZero() && to.After(window.End) {
			to = window.End
		}
		for d := from; !d.After(to); d = d.AddDays(1) {
			set.booked[d.String()] = d
		}
	}

	return set
}

func (s Set) Contains(d model.Date) bool {
	if d.Before(s.horizon) {
		return true
	}
	_, ok := s.booked[d.String()]
	return ok
}

// Horizon is the first day that is not blocked merely for being in the past.
func (s Set) Horizon() model.Date {
	return s.horizon
}

// Booked returns the explicitly booked days on or after the horizon, sorted.
func (s Set) Booked() []model.Date {
	days := make([]model.Date, 0, len(s.booked))
	for _, d := range s.booked {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

// Len counts the explicitly booked days.
func (s Set) Len() int {
	return len(s.booked)
}

// RangeFree reports whether no day of r is blocked.
func (s Set) RangeFree(r model.DateRange) bool {
	if !r.Valid() || r.Start.Before(s.horizon) {
		return false
	}
	for _, d := range r.Days() {
		if _, ok := s.booked[d.String()]; ok {
			return false
		}
	}
	return true
}
