package workflow

import (
	"fmt"
	"time"

	"rentmate/internal/bookings/overlap"
	apperrors "rentmate/pkg/errors"
	"rentmate/pkg/model"
)

// State is the lifecycle position of one workflow invocation.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateSuccess
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

func (s State) Terminal() bool {
	return s == StateSuccess || s == StateError
}

type Kind string

const (
	KindValidation    Kind = "validation"
	KindAuthorization Kind = "authorization"
	KindNotFound      Kind = "not_found"
	KindConflict      Kind = "conflict"
	KindStore         Kind = "store"
)

const (
	ReasonZeroNights      overlap.Reason = "zero_nights"
	ReasonPaymentDeclined overlap.Reason = "payment_declined"
	ReasonNotConfirmed    overlap.Reason = "not_confirmed"
	ReasonStayTooLong     overlap.Reason = "stay_too_long"
)

// Failure is the payload of the Error state.
type Failure struct {
	Kind       Kind
	Reason     overlap.Reason
	Message    string
	ConflictID string
	Err        error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Message, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// AppError maps the failure onto the HTTP error taxonomy.
func (f *Failure) AppError() *apperrors.AppError {
	switch f.Kind {
	case KindValidation:
		appErr := apperrors.Validation(f.Message, map[string]any{"reason": string(f.Reason)})
		if f.ConflictID != "" {
			appErr.WithDetails(map[string]any{"conflicting_booking_id": f.ConflictID})
		}
		return appErr
	case KindAuthorization:
		return apperrors.Forbidden(f.Message)
	case KindNotFound:
		return apperrors.New(apperrors.CodeNotFound, f.Message)
	case KindConflict:
		return apperrors.Conflict(f.Message)
	default:
		return apperrors.Wrap(f.Err, apperrors.CodeInternal, f.Message)
	}
}

// Outcome is the terminal result of one invocation: Success carries the
// booking, Error carries the failure. Exactly one of the two is set.
type Outcome struct {
	Operation   string
	OperationID string
	State       State
	Booking     *model.Booking
	Failure     *Failure
}

func (o Outcome) OK() bool {
	return o.State == StateSuccess
}

// Err returns the failure as an error, or nil on success.
func (o Outcome) Err() error {
	if o.Failure == nil {
		return nil
	}
	return o.Failure
}

// Transition is published to subscribers on every state change.
type Transition struct {
	Operation   string
	OperationID string
	From        State
	To          State
	At          time.Time
	Outcome     *Outcome
}

type Listener func(Transition)
