package validator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"evcharge/pkg/logger"
	"evcharge/pkg/model"

	"github.com/go-playground/validator/v10"
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

// Details renders the errors as a field -> message map for error responses.
func (v ValidationErrors) Details() map[string]any {
	details := make(map[string]any, len(v))
	for _, err := range v {
		details[err.Field] = err.Message
	}
	return details
}

type BookingValidator struct {
	validate        *validator.Validate
	logger          *logger.Logger
	maxSlotDuration time.Duration
	now             func() time.Time
}

func NewBookingValidator(log *logger.Logger, maxSlotDuration time.Duration) *BookingValidator {
	v := validator.New()

	if err := v.RegisterValidation("charger_type", validateChargerType); err != nil {
		log.Fatal("Failed to register 'charger_type' validator",
			"error", err,
		)
	}

	log.Info("Booking validator initialized successfully")

	return &BookingValidator{
		validate:        v,
		logger:          log,
		maxSlotDuration: maxSlotDuration,
		now:             time.Now,
	}
}

// validateChargerType only checks the shape of the value. An unknown but
// well-formed type is a lookup miss, not a malformed request.
func validateChargerType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" || len(value) > 32 {
		return false
	}
	for _, r := range value {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_') {
			return false
		}
	}
	return true
}

func (v *BookingValidator) Validate(req *model.BookingRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if !req.Location.Valid() {
		return ValidationErrors{
			ValidationError{
				Field:   "Location",
				Message: "location must be a GeoJSON Point with [longitude, latitude] inside WGS84 bounds",
			},
		}
	}

	if req.NearestLocation != nil && !req.NearestLocation.Valid() {
		return ValidationErrors{
			ValidationError{
				Field:   "NearestLocation",
				Message: "nearestLocation must be a GeoJSON Point with [longitude, latitude] inside WGS84 bounds",
			},
		}
	}

	slot := req.ChargingSlot
	if !slot.EndTime.After(slot.StartTime) {
		return ValidationErrors{
			ValidationError{
				Field:   "EndTime",
				Message: "end_time must be after start_time",
			},
		}
	}

	if v.maxSlotDuration > 0 && slot.Duration() > v.maxSlotDuration {
		return ValidationErrors{
			ValidationError{
				Field:   "ChargingSlot",
				Message: fmt.Sprintf("charging slot cannot exceed %s", v.maxSlotDuration),
			},
		}
	}

	if !slot.EndTime.After(v.now()) {
		return ValidationErrors{
			ValidationError{
				Field:   "EndTime",
				Message: "charging slot has already ended",
			},
		}
	}

	return nil
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
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
		case "len":
			message = fmt.Sprintf("%s must have exactly %s elements", err.Field(), err.Param())
		case "eq":
			message = fmt.Sprintf("%s must be %s", err.Field(), err.Param())
		case "gt":
			message = fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
		case "gtfield":
			message = fmt.Sprintf("%s must be after %s", err.Field(), err.Param())
		case "charger_type":
			message = fmt.Sprintf("%s must be a lowercase charger type identifier", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
