package validator

import (
	"time"

	"rentmate/internal/bookings/payment"
	"rentmate/pkg/logger"
	"rentmate/pkg/model"
	"rentmate/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
	now      func() time.Time
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	v, err := validation.New()
	if err != nil {
		log.Fatal("Failed to build booking validator", "error", err)
	}

	bv := &BookingValidator{
		validate: v,
		logger:   log,
		now:      time.Now,
	}

	if err := v.RegisterValidation("card_expiry", bv.validateCardExpiry); err != nil {
		log.Fatal("Failed to register 'card_expiry' validator",
			"error", err,
		)
	}

	log.Info("Booking validator initialized successfully")

	return bv
}

// validateCardExpiry accepts a well formed MM/YY that has not passed.
func (v *BookingValidator) validateCardExpiry(fl validator.FieldLevel) bool {
	month, year, ok := payment.ParseExpiry(fl.Field().String())
	if !ok {
		return false
	}
	return !payment.Expired(month, year, v.now())
}

// ValidateRequest checks field shapes only. Date ordering and availability
// belong to the booking workflow.
func (v *BookingValidator) ValidateRequest(req *model.BookingRequest) error {
	return validation.Struct(v.validate, req)
}

func (v *BookingValidator) ValidateUpdate(update *model.BookingUpdate) error {
	return validation.Struct(v.validate, update)
}
