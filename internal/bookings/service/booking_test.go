package service

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"rentmate/internal/bookings/availability"
	bookingerrors "rentmate/internal/bookings/errors"
	"rentmate/internal/bookings/validator"
	"rentmate/internal/bookings/workflow"
	"rentmate/pkg/client"
	"rentmate/pkg/config"
	mongotx "rentmate/pkg/db/mongo"
	apperrors "rentmate/pkg/errors"
	"rentmate/pkg/logger"
	"rentmate/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

const listingID = "665f1f77bcf86cd799439011"

var fixedNow = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

type mockBookingRepository struct {
	listFunc         func(ctx context.Context, listingID string) ([]*model.Booking, error)
	getFunc          func(ctx context.Context, id string) (*model.Booking, error)
	putFunc          func(ctx context.Context, b *model.Booking) (string, error)
	deleteFunc       func(ctx context.Context, id string) error
	findByListing    func(ctx context.Context, listingID string, limit int, offset int64) ([]*model.Booking, error)
	countByListing   func(ctx context.Context, listingID string) (int64, error)
	findUpcoming     func(ctx context.Context, renterID string, today model.Date) ([]*model.Booking, error)
	findPast         func(ctx context.Context, renterID string, today model.Date) ([]*model.Booking, error)
}

func (m *mockBookingRepository) List(ctx context.Context, listingID string) ([]*model.Booking, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, listingID)
	}
	return nil, nil
}

func (m *mockBookingRepository) Get(ctx context.Context, id string) (*model.Booking, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return nil, bookingerrors.ErrNotFound
}

func (m *mockBookingRepository) Put(ctx context.Context, b *model.Booking) (string, error) {
	if m.putFunc != nil {
		return m.putFunc(ctx, b)
	}
	return "665f1f77bcf86cd7994390aa", nil
}

func (m *mockBookingRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockBookingRepository) FindByListing(ctx context.Context, listingID string, limit int, offset int64) ([]*model.Booking, error) {
	if m.findByListing != nil {
		return m.findByListing(ctx, listingID, limit, offset)
	}
	return nil, nil
}

func (m *mockBookingRepository) CountByListing(ctx context.Context, listingID string) (int64, error) {
	if m.countByListing != nil {
		return m.countByListing(ctx, listingID)
	}
	return 0, nil
}

func (m *mockBookingRepository) FindUpcomingByRenter(ctx context.Context, renterID string, today model.Date) ([]*model.Booking, error) {
	if m.findUpcoming != nil {
		return m.findUpcoming(ctx, renterID, today)
	}
	return nil, nil
}

func (m *mockBookingRepository) FindPastByRenter(ctx context.Context, renterID string, today model.Date) ([]*model.Booking, error) {
	if m.findPast != nil {
		return m.findPast(ctx, renterID, today)
	}
	return nil, nil
}

func (m *mockBookingRepository) HasPastStay(context.Context, string, string, model.Date) (bool, error) {
	return false, nil
}

func (m *mockBookingRepository) DeleteByListing(context.Context, string) (int64, error) {
	return 0, nil
}

func (m *mockBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

type mockListings struct {
	getFunc func(ctx context.Context, id string) (*model.Listing, error)
}

func (m *mockListings) GetByID(ctx context.Context, id string) (*model.Listing, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return &model.Listing{ID: id, OwnerID: "owner-1", Name: "Sea View Loft", Price: 80}, nil
}

type stubReceipts struct {
	receipt *model.PaymentReceipt
	err     error
}

func (s *stubReceipts) Receipt(ref string) (*model.PaymentReceipt, error) {
	if s.err != nil {
		return nil, s.err
	}
	r := *s.receipt
	return &r, nil
}

func newTestService(repo *mockBookingRepository, listings *mockListings) BookingService {
	return newTestServiceWithReceipts(repo, listings, nil)
}

func newTestServiceWithReceipts(repo *mockBookingRepository, listings *mockListings, receipts ReceiptReader) BookingService {
	log := logger.NewNop()
	cfg := &config.Config{Log: log, AvailabilityWindowDays: 30, BookingMaxNights: 90}
	directory := NewListingDirectory(listings)
	wf := workflow.New(repo, directory, log,
		workflow.WithClock(func() time.Time { return fixedNow }),
		workflow.WithMaxNights(cfg.BookingMaxNights),
	)
	return NewBookingService(repo, wf, directory, validator.NewBookingValidator(log), receipts, cfg)
}

func booking(id, renter, start, end string) *model.Booking {
	return &model.Booking{
		ID:        id,
		ListingID: listingID,
		RenterID:  renter,
		StartDate: model.MustParseDate(start),
		EndDate:   model.MustParseDate(end),
		Status:    model.StatusConfirmed,
	}
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	appErr := apperrors.AsAppError(err)
	require.NotNil(t, appErr, "expected AppError, got %v", err)
	return appErr.StatusCode()
}

func TestCreate(t *testing.T) {
	req := &model.BookingRequest{
		ListingID: listingID,
		StartDate: model.MustParseDate("2024-06-10"),
		EndDate:   model.MustParseDate("2024-06-12"),
	}

	t.Run("requires caller", func(t *testing.T) {
		_, err := newTestService(&mockBookingRepository{}, &mockListings{}).Create(context.Background(), "", req)
		assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
	})

	t.Run("field validation", func(t *testing.T) {
		bad := *req
		bad.ListingID = "x"
		_, err := newTestService(&mockBookingRepository{}, &mockListings{}).Create(context.Background(), "renter-1", &bad)
		assert.Equal(t, http.StatusUnprocessableEntity, statusOf(t, err))
		assert.Contains(t, apperrors.AsAppError(err).Details["fields"], "listing_id")
	})

	t.Run("success", func(t *testing.T) {
		var stored *model.Booking
		repo := &mockBookingRepository{
			putFunc: func(_ context.Context, b *model.Booking) (string, error) {
				stored = b
				return "665f1f77bcf86cd7994390aa", nil
			},
		}

		got, err := newTestService(repo, &mockListings{}).Create(context.Background(), "renter-1", req)
		require.NoError(t, err)
		assert.Equal(t, "665f1f77bcf86cd7994390aa", got.ID)
		assert.Equal(t, "renter-1", stored.RenterID)
		assert.Equal(t, 160.0, got.TotalPrice)
	})

	t.Run("overlap maps to 422 with conflict id", func(t *testing.T) {
		repo := &mockBookingRepository{
			listFunc: func(context.Context, string) ([]*model.Booking, error) {
				return []*model.Booking{booking("b1", "someone", "2024-06-12", "2024-06-15")}, nil
			},
		}

		_, err := newTestService(repo, &mockListings{}).Create(context.Background(), "renter-1", req)
		assert.Equal(t, http.StatusUnprocessableEntity, statusOf(t, err))
		assert.Equal(t, "b1", apperrors.AsAppError(err).Details["conflicting_booking_id"])
	})

	t.Run("unknown listing", func(t *testing.T) {
		listings := &mockListings{getFunc: func(_ context.Context, id string) (*model.Listing, error) {
			return nil, client.ErrListingNotFound
		}}
		_, err := newTestService(&mockBookingRepository{}, listings).Create(context.Background(), "renter-1", req)
		assert.Equal(t, http.StatusNotFound, statusOf(t, err))
	})
}

func TestGetByID(t *testing.T) {
	repo := &mockBookingRepository{
		getFunc: func(_ context.Context, id string) (*model.Booking, error) {
			if id == "b1" {
				return booking("b1", "renter-1", "2024-06-10", "2024-06-12"), nil
			}
			return nil, bookingerrors.ErrNotFound
		},
	}
	svc := newTestService(repo, &mockListings{})

	tests := []struct {
		name   string
		caller string
		id     string
		want   int
	}{
		{"renter", "renter-1", "b1", http.StatusOK},
		{"listing owner", "owner-1", "b1", http.StatusOK},
		{"stranger", "someone", "b1", http.StatusForbidden},
		{"missing", "renter-1", "b9", http.StatusNotFound},
		{"anonymous", "", "b1", http.StatusUnauthorized},
		{"empty id", "renter-1", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.GetByID(context.Background(), tt.caller, tt.id)
			if tt.want == http.StatusOK {
				require.NoError(t, err)
				assert.Equal(t, "b1", got.ID)
				return
			}
			assert.Equal(t, tt.want, statusOf(t, err))
		})
	}
}

func TestUpdateAndCancel(t *testing.T) {
	existing := booking("b1", "renter-1", "2024-06-10", "2024-06-12")
	repo := &mockBookingRepository{
		getFunc: func(context.Context, string) (*model.Booking, error) {
			cp := *existing
			return &cp, nil
		},
		listFunc: func(context.Context, string) ([]*model.Booking, error) {
			return []*model.Booking{existing}, nil
		},
		putFunc: func(_ context.Context, b *model.Booking) (string, error) {
			return b.ID, nil
		},
	}
	svc := newTestService(repo, &mockListings{})

	update := &model.BookingUpdate{
		StartDate: model.MustParseDate("2024-06-11"),
		EndDate:   model.MustParseDate("2024-06-14"),
	}

	got, err := svc.Update(context.Background(), "renter-1", "b1", update)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-11", got.StartDate.String())
	assert.Equal(t, 240.0, got.TotalPrice)

	_, err = svc.Update(context.Background(), "someone", "b1", update)
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))

	_, err = svc.Update(context.Background(), "renter-1", "b1", &model.BookingUpdate{})
	assert.Equal(t, http.StatusUnprocessableEntity, statusOf(t, err))

	assert.Equal(t, http.StatusForbidden, statusOf(t, svc.Cancel(context.Background(), "someone", "b1")))
	assert.NoError(t, svc.Cancel(context.Background(), "renter-1", "b1"))
}

func TestListByListing(t *testing.T) {
	var finds atomic.Int32
	repo := &mockBookingRepository{
		findByListing: func(_ context.Context, _ string, limit int, offset int64) ([]*model.Booking, error) {
			finds.Add(1)
			assert.Equal(t, 10, limit)
			assert.Equal(t, int64(20), offset)
			return []*model.Booking{booking("b1", "r", "2024-06-10", "2024-06-12")}, nil
		},
		countByListing: func(context.Context, string) (int64, error) {
			return 21, nil
		},
	}
	svc := newTestService(repo, &mockListings{})

	bookings, total, err := svc.ListByListing(context.Background(), "owner-1", listingID, 10, 20)
	require.NoError(t, err)
	assert.Len(t, bookings, 1)
	assert.Equal(t, int64(21), total)

	_, _, err = svc.ListByListing(context.Background(), "renter-1", listingID, 10, 20)
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))
	assert.Equal(t, int32(1), finds.Load())

	repo.countByListing = func(context.Context, string) (int64, error) {
		return 0, errors.New("connection reset")
	}
	_, _, err = svc.ListByListing(context.Background(), "owner-1", listingID, 10, 20)
	assert.Equal(t, http.StatusInternalServerError, statusOf(t, err))
}

func TestListMine(t *testing.T) {
	var upcomingToday, pastToday model.Date
	repo := &mockBookingRepository{
		findUpcoming: func(_ context.Context, renterID string, today model.Date) ([]*model.Booking, error) {
			upcomingToday = today
			return []*model.Booking{booking("b1", renterID, "2024-06-10", "2024-06-12")}, nil
		},
		findPast: func(_ context.Context, renterID string, today model.Date) ([]*model.Booking, error) {
			pastToday = today
			return nil, errors.New("boom")
		},
	}
	svc := newTestService(repo, &mockListings{})

	upcoming, err := svc.ListUpcoming(context.Background(), "renter-1")
	require.NoError(t, err)
	assert.Len(t, upcoming, 1)
	assert.Equal(t, "2024-06-01", upcomingToday.String())

	_, err = svc.ListPast(context.Background(), "renter-1")
	assert.Equal(t, http.StatusInternalServerError, statusOf(t, err))
	assert.Equal(t, "2024-06-01", pastToday.String())

	_, err = svc.ListPast(context.Background(), "")
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
}

func TestAvailability(t *testing.T) {
	repo := &mockBookingRepository{
		listFunc: func(context.Context, string) ([]*model.Booking, error) {
			return []*model.Booking{booking("b1", "r", "2024-06-03", "2024-06-04")}, nil
		},
	}
	svc := newTestService(repo, &mockListings{})

	cal, err := svc.Availability(context.Background(), listingID, nil, nil)
	require.NoError(t, err)
	assert.Len(t, cal.Days, 30)
	assert.Equal(t, "2024-06-01", cal.From.String())
	assert.Equal(t, "2024-06-30", cal.To.String())
	assert.Equal(t, availability.DayAvailable, cal.Days[0].Status)
	assert.Equal(t, availability.DayBooked, cal.Days[2].Status)
	assert.Equal(t, availability.DayBooked, cal.Days[3].Status)
	assert.Equal(t, availability.DayAvailable, cal.Days[4].Status)

	from := model.MustParseDate("2024-05-30")
	to := model.MustParseDate("2024-06-02")
	cal, err = svc.Availability(context.Background(), listingID, &from, &to)
	require.NoError(t, err)
	assert.Equal(t, availability.DayPast, cal.Days[0].Status)
	assert.Equal(t, availability.DayPast, cal.Days[1].Status)
	assert.Equal(t, availability.DayAvailable, cal.Days[2].Status)

	tooFar := from.AddDays(45)
	_, err = svc.Availability(context.Background(), listingID, &from, &tooFar)
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
}

func TestAvailability_LongBookingIsClippedToWindow(t *testing.T) {
	lists := 0
	repo := &mockBookingRepository{
		listFunc: func(context.Context, string) ([]*model.Booking, error) {
			lists++
			return []*model.Booking{booking("b1", "r", "2024-06-01", "9999-12-31")}, nil
		},
	}
	svc := newTestService(repo, &mockListings{})

	cal, err := svc.Availability(context.Background(), listingID, nil, nil)
	require.NoError(t, err)
	require.Len(t, cal.Days, 30)
	for _, day := range cal.Days {
		assert.Equal(t, availability.DayBooked, day.Status)
	}

	from := model.MustParseDate("2024-06-10")
	to := model.MustParseDate("9999-12-31")
	_, err = svc.Availability(context.Background(), listingID, &from, &to)
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
	assert.Equal(t, 1, lists)
}

func TestQuote(t *testing.T) {
	svc := newTestService(&mockBookingRepository{}, &mockListings{})

	quote, err := svc.Quote(context.Background(), listingID, model.NewDateRange(
		model.MustParseDate("2024-06-10"), model.MustParseDate("2024-06-13")))
	require.NoError(t, err)
	assert.Equal(t, 3, quote.Nights)
	assert.Equal(t, 80.0, quote.NightPrice)
	assert.Equal(t, 240.0, quote.TotalPrice)

	_, err = svc.Quote(context.Background(), listingID, model.NewDateRange(
		model.MustParseDate("2024-06-10"), model.MustParseDate("2024-06-10")))
	assert.Equal(t, http.StatusUnprocessableEntity, statusOf(t, err))

	_, err = svc.Quote(context.Background(), listingID, model.DateRange{})
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))

	_, err = svc.Quote(context.Background(), listingID, model.NewDateRange(
		model.MustParseDate("2024-06-10"), model.MustParseDate("2024-12-31")))
	assert.Equal(t, http.StatusUnprocessableEntity, statusOf(t, err))
}

func TestListingDirectory_TranslatesNotFound(t *testing.T) {
	dir := NewListingDirectory(&mockListings{getFunc: func(context.Context, string) (*model.Listing, error) {
		return nil, client.ErrListingNotFound
	}})
	_, err := dir.GetListing(context.Background(), "x")
	assert.ErrorIs(t, err, bookingerrors.ErrListingNotFound)

	upstream := errors.New("dial tcp: refused")
	dir = NewListingDirectory(&mockListings{getFunc: func(context.Context, string) (*model.Listing, error) {
		return nil, upstream
	}})
	_, err = dir.GetListing(context.Background(), "x")
	assert.ErrorIs(t, err, upstream)
	assert.NotErrorIs(t, err, bookingerrors.ErrListingNotFound)
}

func TestReceipt(t *testing.T) {
	paid := booking("b1", "renter-1", "2024-06-10", "2024-06-12")
	paid.IsPaid = true
	paid.PaymentRef = "sealed-ref"
	unpaid := booking("b2", "renter-1", "2024-06-10", "2024-06-12")

	repo := &mockBookingRepository{
		getFunc: func(_ context.Context, id string) (*model.Booking, error) {
			switch id {
			case "b1":
				return paid, nil
			case "b2":
				return unpaid, nil
			}
			return nil, bookingerrors.ErrNotFound
		},
	}
	receipts := &stubReceipts{receipt: &model.PaymentReceipt{CardLast4: "1111", Amount: 160, CapturedAt: fixedNow}}
	svc := newTestServiceWithReceipts(repo, &mockListings{}, receipts)
	ctx := context.Background()

	receipt, err := svc.Receipt(ctx, "renter-1", "b1")
	require.NoError(t, err)
	assert.Equal(t, "b1", receipt.BookingID)
	assert.Equal(t, "1111", receipt.CardLast4)
	assert.Equal(t, 160.0, receipt.Amount)

	tests := []struct {
		name   string
		svc    BookingService
		caller string
		id     string
		status int
	}{
		{"anonymous", svc, "", "b1", http.StatusUnauthorized},
		{"someone else", svc, "owner-1", "b1", http.StatusForbidden},
		{"unpaid booking", svc, "renter-1", "b2", http.StatusNotFound},
		{"missing booking", svc, "renter-1", "b9", http.StatusNotFound},
		{"no receipt reader", newTestService(repo, &mockListings{}), "renter-1", "b1", http.StatusServiceUnavailable},
		{"tampered reference", newTestServiceWithReceipts(repo, &mockListings{}, &stubReceipts{err: errors.New("invalid token")}), "renter-1", "b1", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.svc.Receipt(ctx, tt.caller, tt.id)
			require.Error(t, err)
			assert.Equal(t, tt.status, apperrors.AsAppError(err).StatusCode())
		})
	}
}
