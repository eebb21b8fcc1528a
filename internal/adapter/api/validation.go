package api

import (
	"encoding/json"
	"errors"
	"github.com/burenotti/healthtrack/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"reflect"
	"regexp"
	"strings"
	"time"
)

var (
	errBadRequest = errors.New("invalid request body")
	clockRe       = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)
)

// fieldMessages are keyed by the JSON path of the field.
var fieldMessages = map[string]string{
	"date":                    "Please provide a valid date",
	"workout":                 "Please select a valid workout",
	"workoutMinutes":          "Workout minutes must be a positive number",
	"caloriesBurnt":           "Calories burnt must be a positive number",
	"waterConsumption":        "Water consumption must be a positive number",
	"sleepTime":               "Sleep time must be in HH:MM format",
	"wakeupTime":              "Wakeup time must be in HH:MM format",
	"bloodPressure":           "Please provide a valid blood pressure",
	"bloodPressure.systolic":  "Systolic pressure must be between 50-300",
	"bloodPressure.diastolic": "Diastolic pressure must be between 30-200",
	"heartRate":               "Heart rate must be between 30-220",
	"username":                "Username must be between 3 and 50 characters",
	"email":                   "Please provide a valid email",
	"password":                "Password must be between 8 and 72 characters",
	"refreshToken":            "Refresh token is required",
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterCustomTypeFunc(numberValue, Int{}, Float{})

	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseDay(fl.Field().String(), time.UTC)
		return err == nil
	})
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		return clockRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("workout", func(fl validator.FieldLevel) bool {
		return domain.Workout(fl.Field().String()).Valid()
	})

	return v
}

// bind decodes the request and validates it, reporting every broken rule at once.
// A JSON value of the wrong type is reported on its field next to the validator's findings.
func (s *Server) bind(ctx echo.Context, i interface{}) error {
	verr := &ValidationError{}

	if err := ctx.Bind(i); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) || typeErr.Field == "" {
			return errBadRequest
		}
		verr.add(typeErr.Field, typeErr.Error())
	}

	if err := s.validator.Struct(i); err != nil {
		var errs validator.ValidationErrors
		if !errors.As(err, &errs) {
			return errBadRequest
		}
		for _, fe := range errs {
			field := fe.Namespace()
			if _, rest, ok := strings.Cut(field, "."); ok {
				field = rest
			}
			verr.add(field, fe.Error())
		}
	}

	if len(verr.Fields) == 0 {
		return nil
	}
	return verr
}

func (e *ValidationError) add(field, fallback string) {
	for _, fe := range e.Fields {
		if fe.Field == field {
			return
		}
	}

	msg, ok := fieldMessages[field]
	if !ok {
		msg = fallback
	}
	e.Fields = append(e.Fields, FieldError{Field: field, Message: msg})
}
