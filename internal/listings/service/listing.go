package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	bookingerrors "rentmate/internal/bookings/errors"
	"rentmate/internal/bookings/workflow"
	listingerrors "rentmate/internal/listings/errors"
	"rentmate/internal/listings/repository"
	"rentmate/internal/listings/validator"
	"rentmate/pkg/config"
	apperrors "rentmate/pkg/errors"
	"rentmate/pkg/model"
	"rentmate/pkg/sanitizer"
	"rentmate/pkg/validation"

	"go.mongodb.org/mongo-driver/mongo"
)

// StayLedger is the slice of the booking store the listings service needs:
// past stays gate reviews and a deleted listing takes its bookings along.
type StayLedger interface {
	HasPastStay(ctx context.Context, listingID, renterID string, today model.Date) (bool, error)
	DeleteByListing(ctx context.Context, listingID string) (int64, error)
}

// ListingLocker is the per-listing write lock booking writes hold. Deleting a
// listing takes it too so no booking lands after the cascade.
type ListingLocker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

type ListingService interface {
	Create(ctx context.Context, callerID string, listing *model.Listing) error
	GetByID(ctx context.Context, id string) (*model.Listing, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Listing, int64, error)
	Update(ctx context.Context, callerID, id string, updates *model.ListingUpdate) (*model.Listing, error)
	Delete(ctx context.Context, callerID, id string) error

	ListMine(ctx context.Context, callerID string) ([]*model.Listing, error)
	Search(ctx context.Context, query string, limit int, offset int64) ([]*model.Listing, int64, error)
}

type listingService struct {
	repo      repository.ListingRepository
	reviews   repository.ReviewRepository
	stays     StayLedger
	locks     ListingLocker
	validator *validator.ListingValidator
	cfg       *config.Config
}

// NewListingService builds the service. locks may be nil when booking
// writes are not serialized.
func NewListingService(
	repo repository.ListingRepository,
	reviews repository.ReviewRepository,
	stays StayLedger,
	locks ListingLocker,
	validator *validator.ListingValidator,
	cfg *config.Config,
) ListingService {
	return &listingService{
		repo:      repo,
		reviews:   reviews,
		stays:     stays,
		locks:     locks,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *listingService) Create(ctx context.Context, callerID string, listing *model.Listing) error {
	if callerID == "" {
		return apperrors.Unauthorized("Authentication required")
	}

	listing.OwnerID = callerID
	s.sanitize(listing)

	if err := s.validate(s.validator.Validate(listing), listing.Name); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, listing); err != nil {
		s.cfg.Log.Error("Failed to create listing",
			"name", listing.Name,
			"owner_id", listing.OwnerID,
			"error", err,
		)
		return apperrors.Internal("Failed to create listing", err)
	}

	s.cfg.Log.Info("Listing created successfully",
		"id", listing.ID,
		"name", listing.Name,
		"owner_id", listing.OwnerID,
		"price", listing.Price,
	)

	return nil
}

func (s *listingService) GetByID(ctx context.Context, id string) (*model.Listing, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Listing ID cannot be empty")
	}

	listing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to retrieve listing")
	}

	return listing, nil
}

func (s *listingService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Listing, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var listings []*model.Listing
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(ctx)
		if err != nil {
			s.cfg.Log.Error("Failed to count listings", "error", err)
			errCount = apperrors.Internal("Failed to count listings", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		listings, err = s.repo.FindAll(ctx, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to get all listings",
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve listings", err)
		}
	}()
	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return listings, count, nil
}

func (s *listingService) Update(ctx context.Context, callerID, id string, updates *model.ListingUpdate) (*model.Listing, error) {
	existing, err := s.ownedListing(ctx, callerID, id, "update")
	if err != nil {
		return nil, err
	}

	s.sanitizeUpdate(updates)
	merged := s.mergeListingUpdates(existing, updates)
	if err := s.validate(s.validator.Validate(merged), merged.Name); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, id, merged); err != nil {
		return nil, s.mapRepoError(err, id, "Failed to update listing")
	}

	s.cfg.Log.Info("Listing updated successfully",
		"id", id,
		"name", merged.Name,
	)

	return merged, nil
}

// Delete removes the listing together with its bookings and reviews in one
// transaction, holding the listing's booking lock throughout.
func (s *listingService) Delete(ctx context.Context, callerID, id string) error {
	if _, err := s.ownedListing(ctx, callerID, id, "delete"); err != nil {
		return err
	}

	release, err := s.lockListing(ctx, id)
	if err != nil {
		return err
	}
	defer release()

	var bookingsDeleted, reviewsDeleted int64
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		var err error
		if bookingsDeleted, err = s.stays.DeleteByListing(sessCtx, id); err != nil {
			return err
		}
		if reviewsDeleted, err = s.reviews.DeleteByListing(sessCtx, id); err != nil {
			return err
		}
		return s.repo.Delete(sessCtx, id)
	})
	if err != nil {
		return s.mapRepoError(err, id, "Failed to delete listing")
	}

	s.cfg.Log.Info("Listing deleted successfully",
		"id", id,
		"bookings_deleted", bookingsDeleted,
		"reviews_deleted", reviewsDeleted,
	)

	return nil
}

func (s *listingService) lockListing(ctx context.Context, id string) (func(), error) {
	if s.locks == nil {
		return func() {}, nil
	}
	release, err := s.locks.Acquire(ctx, workflow.ListingLockKey(id))
	if err != nil {
		if errors.Is(err, bookingerrors.ErrLockHeld) {
			return nil, apperrors.Conflict("Bookings for this listing are being processed, try again")
		}
		s.cfg.Log.Error("Failed to lock listing for delete", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to delete listing", err)
	}
	return release, nil
}

func (s *listingService) ListMine(ctx context.Context, callerID string) ([]*model.Listing, error) {
	if callerID == "" {
		return nil, apperrors.Unauthorized("Authentication required")
	}

	listings, err := s.repo.FindByOwner(ctx, callerID)
	if err != nil {
		s.cfg.Log.Error("Failed to get listings by owner",
			"owner_id", callerID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve listings", err)
	}

	return listings, nil
}

func (s *listingService) Search(ctx context.Context, query string, limit int, offset int64) ([]*model.Listing, int64, error) {
	if strings.TrimSpace(query) == "" {
		return nil, 0, apperrors.InvalidInput("Search query cannot be empty")
	}

	pattern := sanitizer.SearchPattern(query)
	if pattern == "" {
		s.cfg.Log.Warn("Search query normalized to empty", "query", query)
		return nil, 0, apperrors.InvalidInput("Search query resulted in no valid text after normalization")
	}
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var listings []*model.Listing
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountSearch(ctx, pattern)
	}()
	go func() {
		defer wg.Done()
		listings, errFind = s.repo.Search(ctx, pattern, limit, offset)
	}()
	wg.Wait()

	if err := errors.Join(errCount, errFind); err != nil {
		s.cfg.Log.Error("Failed to search listings",
			"query", query,
			"error", err,
		)
		return nil, 0, apperrors.Internal("Failed to search listings", err)
	}

	s.cfg.Log.Debug("Listings search completed",
		"query", query,
		"results_count", len(listings),
		"total", count,
	)

	return listings, count, nil
}

func (s *listingService) ownedListing(ctx context.Context, callerID, id, action string) (*model.Listing, error) {
	if callerID == "" {
		return nil, apperrors.Unauthorized("Authentication required")
	}
	if id == "" {
		return nil, apperrors.InvalidInput("Listing ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to check listing existence")
	}
	if existing.OwnerID != callerID {
		return nil, apperrors.Forbidden(fmt.Sprintf("Only the owner can %s this listing", action))
	}

	return existing, nil
}

func (s *listingService) sanitize(listing *model.Listing) {
	listing.Name = sanitizer.NormalizeName(listing.Name)
	listing.Address = sanitizer.NormalizeAddress(listing.Address)
	listing.Description = sanitizer.NormalizeDescription(listing.Description)
	listing.Price = sanitizer.RoundPrice(listing.Price)
	listing.PhotoURLs = sanitizer.NormalizeURLs(listing.PhotoURLs)
}

func (s *listingService) sanitizeUpdate(updates *model.ListingUpdate) {
	if updates.Name != "" {
		updates.Name = sanitizer.NormalizeName(updates.Name)
	}
	if updates.Address != "" {
		updates.Address = sanitizer.NormalizeAddress(updates.Address)
	}
	if updates.Description != nil {
		normalized := sanitizer.NormalizeDescription(*updates.Description)
		updates.Description = &normalized
	}
	if updates.Price != nil {
		normalized := sanitizer.RoundPrice(*updates.Price)
		updates.Price = &normalized
	}
	if updates.PhotoURLs != nil {
		normalized := sanitizer.NormalizeURLs(*updates.PhotoURLs)
		updates.PhotoURLs = &normalized
	}
}

func (s *listingService) mergeListingUpdates(existing *model.Listing, updates *model.ListingUpdate) *model.Listing {
	merged := *existing

	if updates.Name != "" {
		merged.Name = updates.Name
	}

	if updates.Address != "" {
		merged.Address = updates.Address
	}

	if updates.Description != nil {
		merged.Description = *updates.Description
	}

	if updates.Price != nil {
		merged.Price = *updates.Price
	}

	if updates.PhotoURLs != nil {
		merged.PhotoURLs = *updates.PhotoURLs
	}

	if updates.Features != nil {
		merged.Features = *updates.Features
	}

	return &merged
}

func (s *listingService) validate(err error, name string) error {
	if err == nil {
		return nil
	}
	s.cfg.Log.Warn("Listing validation failed", "name", name, "error", err)

	var verrs validation.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation("Listing validation failed", verrs.Details())
	}
	return apperrors.Validation("Listing validation failed", map[string]any{"error": err.Error()})
}

func (s *listingService) mapRepoError(err error, id, message string) error {
	switch {
	case apperrors.IsAppError(err):
		return err
	case errors.Is(err, listingerrors.ErrNotFound):
		return apperrors.NotFoundWithID("Listing", id)
	case errors.Is(err, listingerrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid listing ID format")
	default:
		s.cfg.Log.Error(message, "id", id, "error", err)
		return apperrors.Internal(message, err)
	}
}
