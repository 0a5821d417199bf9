package availability

import (
	"testing"

	"rentmate/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func booking(id, start, end, status string) *model.Booking {
	return &model.Booking{
		ID:        id,
		ListingID: "665f1f77bcf86cd799439011",
		RenterID:  "renter-1",
		StartDate: model.MustParseDate(start),
		EndDate:   model.MustParseDate(end),
		Status:    status,
	}
}

func dates(values ...string) []model.Date {
	out := make([]model.Date, 0, len(values))
	for _, v := range values {
		out = append(out, model.MustParseDate(v))
	}
	return out
}

func TestBlockedDays(t *testing.T) {
	today := model.MustParseDate("2024-05-20")

	tests := []struct {
		name     string
		bookings []*model.Booking
		want     []model.Date
	}{
		{
			name:     "no bookings",
			bookings: nil,
			want:     []model.Date{},
		},
		{
			name:     "confirmed booking is blocked inclusively",
			bookings: []*model.Booking{booking("a", "2024-06-01", "2024-06-03", model.StatusConfirmed)},
			want:     dates("2024-06-01", "2024-06-02", "2024-06-03"),
		},
		{
			name:     "cancelled booking contributes nothing",
			bookings: []*model.Booking{booking("a", "2024-06-01", "2024-06-03", model.StatusCancelled)},
			want:     []model.Date{},
		},
		{
			name: "overlapping bookings are unioned",
			bookings: []*model.Booking{
				booking("a", "2024-06-01", "2024-06-03", model.StatusConfirmed),
				booking("b", "2024-06-03", "2024-06-04", model.StatusConfirmed),
			},
			want: dates("2024-06-01", "2024-06-02", "2024-06-03", "2024-06-04"),
		},
		{
			name:     "month boundary",
			bookings: []*model.Booking{booking("a", "2024-05-30", "2024-06-02", model.StatusConfirmed)},
			want:     dates("2024-05-30", "2024-05-31", "2024-06-01", "2024-06-02"),
		},
		{
			name:     "days before today fold into the horizon",
			bookings: []*model.Booking{booking("a", "2024-05-18", "2024-05-21", model.StatusConfirmed)},
			want:     dates("2024-05-20", "2024-05-21"),
		},
		{
			name:     "nil entries are skipped",
			bookings: []*model.Booking{nil, booking("a", "2024-06-10", "2024-06-10", model.StatusConfirmed)},
			want:     dates("2024-06-10"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := BlockedDays(tt.bookings, today)
			assert.Equal(t, len(tt.want), set.Len())

			got := set.Booked()
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.True(t, got[i].Equal(tt.want[i]), "day %d: got %s, want %s", i, got[i], tt.want[i])
				assert.True(t, set.Contains(tt.want[i]))
			}
		})
	}
}

func TestBlockedDays_PastIsAlwaysBlocked(t *testing.T) {
	today := model.MustParseDate("2024-05-20")
	set := BlockedDays(nil, today)

	assert.True(t, set.Contains(model.MustParseDate("1970-01-01")))
	assert.True(t, set.Contains(model.MustParseDate("2024-05-19")))
	assert.False(t, set.Contains(today))
	assert.False(t, set.Contains(model.MustParseDate("2024-05-21")))
	assert.True(t, set.Horizon().Equal(today))
}

func TestBlockedDays_Deterministic(t *testing.T) {
	today := model.MustParseDate("2024-05-20")
	bookings := []*model.Booking{
		booking("b", "2024-07-01", "2024-07-02", model.StatusConfirmed),
		booking("a", "2024-06-01", "2024-06-02", model.StatusConfirmed),
	}

	first := BlockedDays(bookings, today).Booked()
	second := BlockedDays(bookings, today).Booked()

	assert.Equal(t, first, second)
	assert.Equal(t, "2024-06-01", first[0].String())
}

func TestSet_RangeFree(t *testing.T) {
	today := model.MustParseDate("2024-05-20")
	set := BlockedDays([]*model.Booking{booking("a", "2024-06-01", "2024-06-05", model.StatusConfirmed)}, today)

	assert.True(t, set.RangeFree(model.NewDateRange(model.MustParseDate("2024-06-06"), model.MustParseDate("2024-06-10"))))
	assert.False(t, set.RangeFree(model.NewDateRange(model.MustParseDate("2024-06-05"), model.MustParseDate("2024-06-08"))))
	assert.False(t, set.RangeFree(model.NewDateRange(model.MustParseDate("2024-05-10"), model.MustParseDate("2024-05-12"))))
	assert.False(t, set.RangeFree(model.NewDateRange(model.MustParseDate("2024-06-10"), model.MustParseDate("2024-06-08"))))
}

func TestNewCalendar(t *testing.T) {
	today := model.MustParseDate("2024-05-31")
	set := BlockedDays([]*model.Booking{booking("a", "2024-06-01", "2024-06-02", model.StatusConfirmed)}, today)

	cal, err := NewCalendar("listing-1", set, model.MustParseDate("2024-05-30"), model.MustParseDate("2024-06-03"), 31)
	require.NoError(t, err)
	require.Len(t, cal.Days, 5)

	want := []string{DayPast, DayAvailable, DayBooked, DayBooked, DayAvailable}
	for i, day := range cal.Days {
		assert.Equal(t, want[i], day.Status, "day %s", day.Date)
	}

	_, err = NewCalendar("listing-1", set, model.MustParseDate("2024-06-03"), model.MustParseDate("2024-06-01"), 31)
	assert.Error(t, err)

	_, err = NewCalendar("listing-1", set, model.MustParseDate("2024-06-01"), model.MustParseDate("2024-08-01"), 31)
	assert.Error(t, err)
}

func TestBlockedDaysIn_ClipsToWindow(t *testing.T) {
	today := model.MustParseDate("2024-06-10")
	bookings := []*model.Booking{
		booking("long", "2024-06-10", "9999-12-31", model.StatusConfirmed),
		booking("outside", "2024-08-01", "2024-08-03", model.StatusConfirmed),
	}
	window := model.NewDateRange(model.MustParseDate("2024-06-20"), model.MustParseDate("2024-06-24"))

	set := BlockedDaysIn(bookings, today, window)

	assert.Equal(t, dates("2024-06-20", "2024-06-21", "2024-06-22", "2024-06-23", "2024-06-24"), set.Booked())
	assert.Equal(t, today, set.Horizon())
	assert.False(t, set.Contains(model.MustParseDate("2024-08-02")))
}

func TestBlockedDaysIn_InvertedWindowIsEmpty(t *testing.T) {
	today := model.MustParseDate("2024-06-10")
	bookings := []*model.Booking{booking("a", "2024-06-12", "2024-06-14", model.StatusConfirmed)}
	window := model.NewDateRange(model.MustParseDate("2024-06-20"), model.MustParseDate("2024-06-18"))

	set := BlockedDaysIn(bookings, today, window)

	assert.Zero(t, set.Len())
}

func TestNewCalendar_LongBookingStaysBounded(t *testing.T) {
	today := model.MustParseDate("2024-06-10")
	from := today
	to := today.AddDays(29)
	bookings := []*model.Booking{booking("long", "2024-06-10", "9999-12-31", model.StatusConfirmed)}

	set := BlockedDaysIn(bookings, today, model.NewDateRange(from, to))
	cal, err := NewCalendar("665f1f77bcf86cd799439011", set, from, to, 30)

	require.NoError(t, err)
	assert.Equal(t, 30, set.Len())
	require.Len(t, cal.Days, 30)
	for _, day := range cal.Days {
		assert.Equal(t, DayBooked, day.Status)
	}
}
