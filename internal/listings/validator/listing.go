package validator

import (
	"rentmate/pkg/logger"
	"rentmate/pkg/model"
	"rentmate/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type ListingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewListingValidator(log *logger.Logger) *ListingValidator {
	v, err := validation.New()
	if err != nil {
		log.Fatal("Failed to build listing validator", "error", err)
	}

	log.Info("Listing validator initialized successfully")

	return &ListingValidator{
		validate: v,
		logger:   log,
	}
}

func (v *ListingValidator) Validate(listing *model.Listing) error {
	if err := validation.Struct(v.validate, listing); err != nil {
		return err
	}
	return v.validateBusinessRules(listing)
}

func (v *ListingValidator) ValidateReview(req *model.ReviewRequest) error {
	return validation.Struct(v.validate, req)
}

// validateBusinessRules rejects combinations the struct tags cannot express.
func (v *ListingValidator) validateBusinessRules(listing *model.Listing) error {
	var errs validation.ValidationErrors

	if listing.Features.NumberOfRooms > 0 && listing.Features.NumberOfBathrooms > listing.Features.NumberOfRooms*2 {
		errs = append(errs, validation.ValidationError{
			Field:   "features.number_of_bathrooms",
			Message: "features.number_of_bathrooms must not exceed twice the number of rooms",
		})
	}

	seen := make(map[string]struct{}, len(listing.PhotoURLs))
	for _, u := range listing.PhotoURLs {
		if _, dup := seen[u]; dup {
			errs = append(errs, validation.ValidationError{
				Field:   "photo_urls",
				Message: "photo_urls must not contain duplicates",
			})
			break
		}
		seen[u] = struct{}{}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
