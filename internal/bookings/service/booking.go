package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"rentmate/internal/bookings/availability"
	bookingerrors "rentmate/internal/bookings/errors"
	"rentmate/internal/bookings/repository"
	"rentmate/internal/bookings/validator"
	"rentmate/internal/bookings/workflow"
	"rentmate/pkg/config"
	apperrors "rentmate/pkg/errors"
	"rentmate/pkg/model"
	"rentmate/pkg/validation"
)

type BookingService interface {
	Create(ctx context.Context, callerID string, req *model.BookingRequest) (*model.Booking, error)
	GetByID(ctx context.Context, callerID, id string) (*model.Booking, error)
	Update(ctx context.Context, callerID, id string, update *model.BookingUpdate) (*model.Booking, error)
	Cancel(ctx context.Context, callerID, id string) error
	ListUpcoming(ctx context.Context, callerID string) ([]*model.Booking, error)
	ListPast(ctx context.Context, callerID string) ([]*model.Booking, error)
	ListByListing(ctx context.Context, callerID, listingID string, limit int, offset int64) ([]*model.Booking, int64, error)
	Availability(ctx context.Context, listingID string, from, to *model.Date) (*availability.Calendar, error)
	Quote(ctx context.Context, listingID string, dates model.DateRange) (*model.Quote, error)
	Receipt(ctx context.Context, callerID, id string) (*model.PaymentReceipt, error)
}

// ReceiptReader opens the payment reference stored on a paid booking.
type ReceiptReader interface {
	Receipt(ref string) (*model.PaymentReceipt, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	workflow  *workflow.Workflow
	listings  workflow.ListingDirectory
	validator *validator.BookingValidator
	receipts  ReceiptReader
	cfg       *config.Config
}

// NewBookingService builds the service. receipts may be nil, in which case
// receipt lookups report the payment service as unavailable.
func NewBookingService(
	repo repository.BookingRepository,
	wf *workflow.Workflow,
	listings workflow.ListingDirectory,
	validator *validator.BookingValidator,
	receipts ReceiptReader,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		workflow:  wf,
		listings:  listings,
		validator: validator,
		receipts:  receipts,
		cfg:       cfg,
	}
}

func (s *bookingService) Create(ctx context.Context, callerID string, req *model.BookingRequest) (*model.Booking, error) {
	if callerID == "" {
		return nil, apperrors.Unauthorized("Authentication required")
	}
	if err := s.validate(s.validator.ValidateRequest(req)); err != nil {
		return nil, err
	}

	out := s.workflow.CreateBooking(ctx, req.ListingID, callerID, req.Range(), req.Payment)
	if !out.OK() {
		return nil, out.Failure.AppError()
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", out.Booking.ID,
		"listing_id", out.Booking.ListingID,
		"start_date", out.Booking.StartDate,
		"end_date", out.Booking.EndDate,
	)
	return out.Booking, nil
}

// GetByID returns a booking to its renter or to the owner of its listing.
func (s *bookingService) GetByID(ctx context.Context, callerID, id string) (*model.Booking, error) {
	if callerID == "" {
		return nil, apperrors.Unauthorized("Authentication required")
	}
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to retrieve booking")
	}

	if booking.RenterID == callerID {
		return booking, nil
	}
	listing, err := s.listings.GetListing(ctx, booking.ListingID)
	if err == nil && listing.OwnerID == callerID {
		return booking, nil
	}
	if err != nil && !errors.Is(err, bookingerrors.ErrListingNotFound) {
		return nil, apperrors.Internal("Failed to verify booking access", err)
	}
	return nil, apperrors.Forbidden("You can only view your own bookings")
}

func (s *bookingService) Update(ctx context.Context, callerID, id string, update *model.BookingUpdate) (*model.Booking, error) {
	if callerID == "" {
		return nil, apperrors.Unauthorized("Authentication required")
	}
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	if err := s.validate(s.validator.ValidateUpdate(update)); err != nil {
		return nil, err
	}

	out := s.workflow.UpdateBooking(ctx, id, callerID, update.Range())
	if !out.OK() {
		return nil, out.Failure.AppError()
	}

	s.cfg.Log.Info("Booking updated successfully", "id", id)
	return out.Booking, nil
}

func (s *bookingService) Cancel(ctx context.Context, callerID, id string) error {
	if callerID == "" {
		return apperrors.Unauthorized("Authentication required")
	}
	if id == "" {
		return apperrors.InvalidInput("Booking ID cannot be empty")
	}

	out := s.workflow.CancelBooking(ctx, id, callerID)
	if !out.OK() {
		return out.Failure.AppError()
	}

	s.cfg.Log.Info("Booking cancelled successfully", "id", id)
	return nil
}

func (s *bookingService) ListUpcoming(ctx context.Context, callerID string) ([]*model.Booking, error) {
	if callerID == "" {
		return nil, apperrors.Unauthorized("Authentication required")
	}
	bookings, err := s.repo.FindUpcomingByRenter(ctx, callerID, s.workflow.Today())
	if err != nil {
		s.cfg.Log.Error("Failed to list upcoming bookings", "renter_id", callerID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}
	return bookings, nil
}

func (s *bookingService) ListPast(ctx context.Context, callerID string) ([]*model.Booking, error) {
	if callerID == "" {
		return nil, apperrors.Unauthorized("Authentication required")
	}
	bookings, err := s.repo.FindPastByRenter(ctx, callerID, s.workflow.Today())
	if err != nil {
		s.cfg.Log.Error("Failed to list past bookings", "renter_id", callerID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}
	return bookings, nil
}

// ListByListing is restricted to the listing owner.
func (s *bookingService) ListByListing(ctx context.Context, callerID, listingID string, limit int, offset int64) ([]*model.Booking, int64, error) {
	if callerID == "" {
		return nil, 0, apperrors.Unauthorized("Authentication required")
	}
	listing, err := s.getListing(ctx, listingID)
	if err != nil {
		return nil, 0, err
	}
	if listing.OwnerID != callerID {
		return nil, 0, apperrors.Forbidden("Only the listing owner can view its bookings")
	}

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByListing(ctx, listingID)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "listing_id", listingID, "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindByListing(ctx, listingID, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings",
				"listing_id", listingID,
				"limit", limit,
				"offset", offset,
				"error", errFind,
			)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

// Availability renders the blocked-day calendar of a listing. The window
// defaults to today through the configured number of days.
func (s *bookingService) Availability(ctx context.Context, listingID string, from, to *model.Date) (*availability.Calendar, error) {
	if _, err := s.getListing(ctx, listingID); err != nil {
		return nil, err
	}

	today := s.workflow.Today()
	start := today
	if from != nil {
		start = *from
	}
	end := start.AddDays(s.cfg.AvailabilityWindowDays - 1)
	if to != nil {
		end = *to
	}

	window := model.NewDateRange(start, end)
	if err := availability.CheckWindow(window, s.cfg.AvailabilityWindowDays); err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	bookings, err := s.repo.List(ctx, listingID)
	if err != nil {
		s.cfg.Log.Error("Failed to load bookings for availability", "listing_id", listingID, "error", err)
		return nil, apperrors.Internal("Failed to compute availability", err)
	}

	set := availability.BlockedDaysIn(bookings, today, window)
	cal, err := availability.NewCalendar(listingID, set, start, end, s.cfg.AvailabilityWindowDays)
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	s.cfg.Log.Debug("Availability computed",
		"listing_id", listingID,
		"from", start,
		"to", end,
		"booked_days", set.Len(),
	)
	return cal, nil
}

func (s *bookingService) Quote(ctx context.Context, listingID string, dates model.DateRange) (*model.Quote, error) {
	if dates.Start.IsZero() || dates.End.IsZero() {
		return nil, apperrors.InvalidInput("start and end are required")
	}
	if !dates.Valid() || dates.Nights() < 1 {
		return nil, apperrors.Validation("A stay must end after it starts", map[string]any{"reason": string(workflow.ReasonZeroNights)})
	}
	if limit := s.cfg.BookingMaxNights; limit > 0 && dates.Nights() > limit {
		return nil, apperrors.Validation(fmt.Sprintf("A stay can span at most %d nights", limit),
			map[string]any{"reason": string(workflow.ReasonStayTooLong)})
	}

	listing, err := s.getListing(ctx, listingID)
	if err != nil {
		return nil, err
	}

	return &model.Quote{
		ListingID:  listingID,
		StartDate:  dates.Start,
		EndDate:    dates.End,
		Nights:     dates.Nights(),
		NightPrice: listing.Price,
		TotalPrice: workflow.TotalPrice(listing.Price, dates),
	}, nil
}

// Receipt shows the renter what was charged for a paid booking.
func (s *bookingService) Receipt(ctx context.Context, callerID, id string) (*model.PaymentReceipt, error) {
	if callerID == "" {
		return nil, apperrors.Unauthorized("Authentication required")
	}
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to retrieve booking")
	}
	if booking.RenterID != callerID {
		return nil, apperrors.Forbidden("Only the renter can view the payment receipt")
	}
	if !booking.IsPaid || booking.PaymentRef == "" {
		return nil, apperrors.NotFoundWithID("Payment receipt", id)
	}
	if s.receipts == nil {
		return nil, apperrors.Unavailable("Payment service")
	}

	receipt, err := s.receipts.Receipt(booking.PaymentRef)
	if err != nil {
		s.cfg.Log.Error("Failed to open payment receipt", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to read payment receipt", err)
	}
	receipt.BookingID = booking.ID
	return receipt, nil
}

// --- Helpers ---

func (s *bookingService) getListing(ctx context.Context, listingID string) (*model.Listing, error) {
	if listingID == "" {
		return nil, apperrors.InvalidInput("Listing ID cannot be empty")
	}
	listing, err := s.listings.GetListing(ctx, listingID)
	if err != nil {
		if errors.Is(err, bookingerrors.ErrListingNotFound) {
			return nil, apperrors.NotFoundWithID("Listing", listingID)
		}
		s.cfg.Log.Error("Failed to fetch listing", "listing_id", listingID, "error", err)
		return nil, apperrors.Unavailable("Listings service")
	}
	return listing, nil
}

func (s *bookingService) validate(err error) error {
	if err == nil {
		return nil
	}
	s.cfg.Log.Warn("Booking validation failed", "error", err)

	var verrs validation.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation("Booking validation failed", verrs.Details())
	}
	return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
}

func (s *bookingService) mapRepoError(err error, id, message string) error {
	switch {
	case errors.Is(err, bookingerrors.ErrNotFound):
		return apperrors.NotFoundWithID("Booking", id)
	case errors.Is(err, bookingerrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid booking ID format")
	default:
		s.cfg.Log.Error(message, "id", id, "error", err)
		return apperrors.Internal(message, fmt.Errorf("booking %s: %w", id, err))
	}
}
