package service

import (
	"context"
	"errors"
	"time"

	listingerrors "rentmate/internal/listings/errors"
	"rentmate/internal/listings/repository"
	"rentmate/internal/listings/validator"
	"rentmate/pkg/config"
	apperrors "rentmate/pkg/errors"
	"rentmate/pkg/model"
	"rentmate/pkg/sanitizer"
	"rentmate/pkg/validation"
)

const (
	ReviewSubmittedTitle = "Review Submitted"
	ReviewSubmittedBody  = "Thank you for your review of the apartment!"
)

// Notifier delivers a notification to its recipient.
type Notifier interface {
	Notify(ctx context.Context, recipient, title, body string) error
}

type ReviewService interface {
	Create(ctx context.Context, callerID, listingID string, req *model.ReviewRequest) (*model.Review, error)
	ListByListing(ctx context.Context, listingID string, limit int, offset int64) ([]*model.Review, int64, error)
}

type reviewService struct {
	listings  repository.ListingRepository
	reviews   repository.ReviewRepository
	stays     StayLedger
	notifier  Notifier
	validator *validator.ListingValidator
	cfg       *config.Config
	now       func() time.Time
}

func NewReviewService(
	listings repository.ListingRepository,
	reviews repository.ReviewRepository,
	stays StayLedger,
	notifier Notifier,
	validator *validator.ListingValidator,
	cfg *config.Config,
) ReviewService {
	return &reviewService{
		listings:  listings,
		reviews:   reviews,
		stays:     stays,
		notifier:  notifier,
		validator: validator,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Create records a review by a renter who has finished a stay at the
// listing. Each renter reviews a listing at most once.
func (s *reviewService) Create(ctx context.Context, callerID, listingID string, req *model.ReviewRequest) (*model.Review, error) {
	if callerID == "" {
		return nil, apperrors.Unauthorized("Authentication required")
	}
	if listingID == "" {
		return nil, apperrors.InvalidInput("Listing ID cannot be empty")
	}

	req.Comment = sanitizer.NormalizeDescription(req.Comment)
	if err := s.validator.ValidateReview(req); err != nil {
		s.cfg.Log.Warn("Review validation failed", "listing_id", listingID, "error", err)
		var verrs validation.ValidationErrors
		if errors.As(err, &verrs) {
			return nil, apperrors.Validation("Review validation failed", verrs.Details())
		}
		return nil, apperrors.Validation("Review validation failed", map[string]any{"error": err.Error()})
	}

	if _, err := s.listings.FindByID(ctx, listingID); err != nil {
		return nil, s.mapListingError(err, listingID)
	}

	today := model.Today(s.now(), s.cfg.Location)
	stayed, err := s.stays.HasPastStay(ctx, listingID, callerID, today)
	if err != nil {
		s.cfg.Log.Error("Failed to check past stays", "listing_id", listingID, "author_id", callerID, "error", err)
		return nil, apperrors.Internal("Failed to verify stay", err)
	}
	if !stayed {
		return nil, apperrors.Forbidden("Only guests with a completed stay can review this listing")
	}

	exists, err := s.reviews.ExistsForAuthor(ctx, listingID, callerID)
	if err != nil {
		s.cfg.Log.Error("Failed to check existing review", "listing_id", listingID, "author_id", callerID, "error", err)
		return nil, apperrors.Internal("Failed to create review", err)
	}
	if exists {
		return nil, apperrors.Conflict("You have already reviewed this listing")
	}

	review := &model.Review{
		ListingID: listingID,
		AuthorID:  callerID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		if errors.Is(err, listingerrors.ErrDuplicateReview) {
			return nil, apperrors.Conflict("You have already reviewed this listing")
		}
		s.cfg.Log.Error("Failed to create review", "listing_id", listingID, "author_id", callerID, "error", err)
		return nil, apperrors.Internal("Failed to create review", err)
	}

	s.cfg.Log.Info("Review created successfully",
		"id", review.ID,
		"listing_id", listingID,
		"rating", review.Rating,
	)

	s.notify(ctx, review)
	return review, nil
}

func (s *reviewService) ListByListing(ctx context.Context, listingID string, limit int, offset int64) ([]*model.Review, int64, error) {
	if listingID == "" {
		return nil, 0, apperrors.InvalidInput("Listing ID cannot be empty")
	}
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	count, err := s.reviews.CountByListing(ctx, listingID)
	if err != nil {
		s.cfg.Log.Error("Failed to count reviews", "listing_id", listingID, "error", err)
		return nil, 0, apperrors.Internal("Failed to count reviews", err)
	}
	if count == 0 {
		return []*model.Review{}, 0, nil
	}

	reviews, err := s.reviews.FindByListing(ctx, listingID, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list reviews", "listing_id", listingID, "error", err)
		return nil, 0, apperrors.Internal("Failed to retrieve reviews", err)
	}

	return reviews, count, nil
}

// notify is best effort; the review is already stored.
func (s *reviewService) notify(ctx context.Context, review *model.Review) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, review.AuthorID, ReviewSubmittedTitle, ReviewSubmittedBody); err != nil {
		s.cfg.Log.Warn("Failed to send review notification",
			"review_id", review.ID,
			"recipient", review.AuthorID,
			"error", err,
		)
	}
}

func (s *reviewService) mapListingError(err error, listingID string) error {
	switch {
	case errors.Is(err, listingerrors.ErrNotFound):
		return apperrors.NotFoundWithID("Listing", listingID)
	case errors.Is(err, listingerrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid listing ID format")
	default:
		s.cfg.Log.Error("Failed to fetch listing", "listing_id", listingID, "error", err)
		return apperrors.Internal("Failed to retrieve listing", err)
	}
}
