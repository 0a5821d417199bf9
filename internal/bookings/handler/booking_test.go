package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"rentmate/internal/bookings/availability"
	apperrors "rentmate/pkg/errors"
	"rentmate/pkg/logger"
	"rentmate/pkg/middleware"
	"rentmate/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockBookingService struct {
	createFunc        func(ctx context.Context, callerID string, req *model.BookingRequest) (*model.Booking, error)
	cancelFunc        func(ctx context.Context, callerID, id string) error
	listByListingFunc func(ctx context.Context, callerID, listingID string, limit int, offset int64) ([]*model.Booking, int64, error)
	availabilityFunc  func(ctx context.Context, listingID string, from, to *model.Date) (*availability.Calendar, error)
	quoteFunc         func(ctx context.Context, listingID string, dates model.DateRange) (*model.Quote, error)
	receiptFunc       func(ctx context.Context, callerID, id string) (*model.PaymentReceipt, error)
}

func (m *mockBookingService) Create(ctx context.Context, callerID string, req *model.BookingRequest) (*model.Booking, error) {
	return m.createFunc(ctx, callerID, req)
}

func (m *mockBookingService) GetByID(context.Context, string, string) (*model.Booking, error) {
	return nil, apperrors.NotFound("Booking")
}

func (m *mockBookingService) Update(context.Context, string, string, *model.BookingUpdate) (*model.Booking, error) {
	return nil, nil
}

func (m *mockBookingService) Cancel(ctx context.Context, callerID, id string) error {
	return m.cancelFunc(ctx, callerID, id)
}

func (m *mockBookingService) ListUpcoming(context.Context, string) ([]*model.Booking, error) {
	return []*model.Booking{}, nil
}

func (m *mockBookingService) ListPast(context.Context, string) ([]*model.Booking, error) {
	return []*model.Booking{}, nil
}

func (m *mockBookingService) ListByListing(ctx context.Context, callerID, listingID string, limit int, offset int64) ([]*model.Booking, int64, error) {
	return m.listByListingFunc(ctx, callerID, listingID, limit, offset)
}

func (m *mockBookingService) Availability(ctx context.Context, listingID string, from, to *model.Date) (*availability.Calendar, error) {
	return m.availabilityFunc(ctx, listingID, from, to)
}

func (m *mockBookingService) Quote(ctx context.Context, listingID string, dates model.DateRange) (*model.Quote, error) {
	return m.quoteFunc(ctx, listingID, dates)
}

func (m *mockBookingService) Receipt(ctx context.Context, callerID, id string) (*model.PaymentReceipt, error) {
	return m.receiptFunc(ctx, callerID, id)
}

func newRouter(svc *mockBookingService) *httprouter.Router {
	router := httprouter.New()
	NewBookingHandler(svc, logger.NewNop()).RegisterRoutes(router)
	return router
}

func serve(router http.Handler, req *http.Request, caller string) *httptest.ResponseRecorder {
	if caller != "" {
		req = req.WithContext(middleware.WithCaller(req.Context(), caller))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreate(t *testing.T) {
	var gotCaller string
	var gotReq *model.BookingRequest
	svc := &mockBookingService{
		createFunc: func(_ context.Context, callerID string, req *model.BookingRequest) (*model.Booking, error) {
			gotCaller, gotReq = callerID, req
			return &model.Booking{ID: "b1", ListingID: req.ListingID, RenterID: callerID}, nil
		},
	}
	router := newRouter(svc)

	body := `{"listing_id":"665f1f77bcf86cd799439011","start_date":"2024-06-10","end_date":"2024-06-12"}`
	rec := serve(router, httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body)), "renter-1")

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "renter-1", gotCaller)
	assert.Equal(t, "2024-06-10", gotReq.StartDate.String())

	var resp struct {
		Data model.Booking `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "b1", resp.Data.ID)
}

func TestCreate_BadBody(t *testing.T) {
	router := newRouter(&mockBookingService{})

	tests := []struct {
		name string
		body string
	}{
		{"not json", "{"},
		{"bad date", `{"listing_id":"x","start_date":"10/06/2024","end_date":"2024-06-12"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(router, httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(tt.body)), "renter-1")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), apperrors.CodeInvalidInput)
		})
	}
}

func TestCreate_ServiceError(t *testing.T) {
	svc := &mockBookingService{
		createFunc: func(context.Context, string, *model.BookingRequest) (*model.Booking, error) {
			return nil, apperrors.Validation("The apartment is already booked for the selected dates",
				map[string]any{"reason": "overlap", "conflicting_booking_id": "b0"})
		},
	}

	body := `{"listing_id":"665f1f77bcf86cd799439011","start_date":"2024-06-10","end_date":"2024-06-12"}`
	rec := serve(newRouter(svc), httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body)), "renter-1")

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var resp struct {
		Error   string         `json:"error"`
		Code    string         `json:"code"`
		Details map[string]any `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, apperrors.CodeValidation, resp.Code)
	assert.Equal(t, "b0", resp.Details["conflicting_booking_id"])
}

func TestCancel(t *testing.T) {
	var gotID string
	svc := &mockBookingService{
		cancelFunc: func(_ context.Context, _, id string) error {
			gotID = id
			return nil
		},
	}

	rec := serve(newRouter(svc), httptest.NewRequest(http.MethodDelete, "/api/v1/bookings/id/b7", nil), "renter-1")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "b7", gotID)
}

func TestListByListing_Pagination(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
	}{
		{"defaults", "", http.StatusOK},
		{"explicit", "?limit=5&offset=10", http.StatusOK},
		{"invalid limit", "?limit=abc", http.StatusBadRequest},
		{"invalid offset", "?offset=xyz", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			svc := &mockBookingService{
				listByListingFunc: func(_ context.Context, _, listingID string, limit int, offset int64) ([]*model.Booking, int64, error) {
					called = true
					assert.Equal(t, "l1", listingID)
					return []*model.Booking{}, 0, nil
				},
			}

			rec := serve(newRouter(svc), httptest.NewRequest(http.MethodGet, "/api/v1/listings/l1/bookings"+tt.query, nil), "owner-1")
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantStatus == http.StatusOK, called)
		})
	}
}

func TestAvailability_ParsesWindow(t *testing.T) {
	var gotFrom, gotTo *model.Date
	svc := &mockBookingService{
		availabilityFunc: func(_ context.Context, _ string, from, to *model.Date) (*availability.Calendar, error) {
			gotFrom, gotTo = from, to
			return &availability.Calendar{ListingID: "l1"}, nil
		},
	}
	router := newRouter(svc)

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/listings/l1/availability?from=2024-06-01", nil), "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, gotFrom)
	assert.Equal(t, "2024-06-01", gotFrom.String())
	assert.Nil(t, gotTo)

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/listings/l1/availability?to=June", nil), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQuote(t *testing.T) {
	svc := &mockBookingService{
		quoteFunc: func(_ context.Context, listingID string, dates model.DateRange) (*model.Quote, error) {
			return &model.Quote{ListingID: listingID, Nights: dates.Nights(), TotalPrice: 240}, nil
		},
	}

	rec := serve(newRouter(svc), httptest.NewRequest(http.MethodGet, "/api/v1/listings/l1/quote?start=2024-06-10&end=2024-06-13", nil), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data model.Quote `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Data.Nights)
	assert.Equal(t, 240.0, resp.Data.TotalPrice)
}

func TestReceipt(t *testing.T) {
	svc := &mockBookingService{
		receiptFunc: func(_ context.Context, callerID, id string) (*model.PaymentReceipt, error) {
			if callerID != "renter-1" {
				return nil, apperrors.Forbidden("Only the renter can view the payment receipt")
			}
			return &model.PaymentReceipt{BookingID: id, CardLast4: "1111", Amount: 160}, nil
		},
	}
	router := newRouter(svc)

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/bookings/id/b1/receipt", nil), "renter-1")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data model.PaymentReceipt `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "b1", body.Data.BookingID)
	assert.Equal(t, "1111", body.Data.CardLast4)

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/bookings/id/b1/receipt", nil), "owner-1")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
