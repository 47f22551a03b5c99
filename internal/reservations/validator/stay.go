package validator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	reserrors "roomly/internal/reservations/errors"
	"roomly/pkg/logger"
	"roomly/pkg/model"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// StayValidator enforces the standalone business rules on a requested
// stay. The rules are ordered and the first failure wins: range validity,
// then past-date, then maximum duration.
type StayValidator struct {
	validate    *validator.Validate
	logger      *logger.Logger
	maxStayDays int
}

func NewStayValidator(log *logger.Logger, maxStayDays int) *StayValidator {
	return &StayValidator{
		validate:    validator.New(),
		logger:      log,
		maxStayDays: maxStayDays,
	}
}

// ValidateStruct checks payload shape: required fields, id formats, name
// length. Business rules on the interval live in ValidateStay.
func (v *StayValidator) ValidateStruct(r *model.Reservation) error {
	if err := v.validate.Struct(r); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

// ValidateUpdate checks a reschedule payload's shape.
func (v *StayValidator) ValidateUpdate(update *model.ReservationUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

// ValidateStay applies the admission business rules against the injected
// reference time. A nil return means the stay is admissible as far as the
// standalone rules go; overlap is the resolver's concern.
func (v *StayValidator) ValidateStay(iv model.StayInterval, now time.Time) *reserrors.Rejection {
	if iv.CheckIn.IsZero() || iv.CheckOut.IsZero() {
		return reserrors.InvalidRange("check-in and check-out dates are required")
	}

	if !iv.CheckOut.After(iv.CheckIn) {
		return reserrors.InvalidRange(fmt.Sprintf("check-out %s must be after check-in %s",
			iv.CheckOut.Format("2006-01-02"), iv.CheckIn.Format("2006-01-02")))
	}

	today := model.DateOnly(now)
	if iv.CheckIn.Before(today) {
		return reserrors.PastDate(iv.CheckIn, today)
	}

	if nights := iv.Nights(); nights > v.maxStayDays {
		return reserrors.DurationExceeded(nights, v.maxStayDays)
	}

	return nil
}

func (v *StayValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "gtfield":
			message = fmt.Sprintf("%s must be after %s", err.Field(), err.Param())
		case "gte":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
