package validator

import (
	"errors"
	"fmt"
	"strings"

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

type StationValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewStationValidator(log *logger.Logger) *StationValidator {
	v := validator.New()

	if err := v.RegisterValidation("charger_type", validateChargerType); err != nil {
		log.Fatal("Failed to register 'charger_type' validator",
			"error", err,
		)
	}

	log.Info("Station validator initialized successfully")

	return &StationValidator{
		validate: v,
		logger:   log,
	}
}

func validateChargerType(fl validator.FieldLevel) bool {
	return model.ChargerType(fl.Field().String()).Valid()
}

func (v *StationValidator) Validate(station *model.Station) error {
	if err := v.validate.Struct(station); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if !station.Location.Valid() {
		return ValidationErrors{
			ValidationError{
				Field:   "Location",
				Message: "location must match latitude and longitude",
			},
		}
	}

	return nil
}

func (v *StationValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s characters", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "latitude":
			message = fmt.Sprintf("%s must be between -90 and 90", err.Field())
		case "longitude":
			message = fmt.Sprintf("%s must be between -180 and 180", err.Field())
		case "charger_type":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), chargerTypeList())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}

func chargerTypeList() string {
	types := model.ChargerTypes()
	names := make([]string, 0, len(types))
	for _, t := range types {
		names = append(names, string(t))
	}
	return strings.Join(names, ", ")
}
