package availability

import (
	"fmt"

	"rentmate/pkg/model"
)

const (
	DayAvailable = "available"
	DayBooked    = "booked"
	DayPast      = "past"
)

type Day struct {
	Date   model.Date `json:"date"`
	Status string     `json:"status"`
}

// Calendar is a per-day view of a window of the blocked-day set.
type Calendar struct {
	ListingID string     `json:"listing_id"`
	From      model.Date `json:"from"`
	To        model.Date `json:"to"`
	Days      []Day      `json:"days"`
}

// CheckWindow rejects an inverted window or one longer than maxDays.
func CheckWindow(window model.DateRange, maxDays int) error {
	if !window.Valid() {
		return fmt.Errorf("calendar window %s is inverted", window)
	}
	if maxDays > 0 && window.Nights()+1 > maxDays {
		return fmt.Errorf("calendar window %s exceeds %d days", window, maxDays)
	}
	return nil
}

// NewCalendar renders [from, to] inclusive. maxDays bounds the window.
func NewCalendar(listingID string, set Set, from, to model.Date, maxDays int) (*Calendar, error) {
	window := model.NewDateRange(from, to)
	if err := CheckWindow(window, maxDays); err != nil {
		return nil, err
	}

	cal := &Calendar{
		ListingID: listingID,
		From:      from,
		To:        to,
		Days:      make([]Day, 0, window.Nights()+1),
	}
	for _, d := range window.Days() {
		status := DayAvailable
		switch {
		case d.Before(set.Horizon()):
			status = DayPast
		case set.Contains(d):
			status = DayBooked
		}
		cal.Days = append(cal.Days, Day{Date: d, Status: status})
	}
	return cal, nil
}
