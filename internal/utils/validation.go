package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/aarogyam/aarogyam/internal/models"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := registerCustom(v); err != nil {
		panic(err)
	}
	return v
}

func registerCustom(v *validator.Validate) error {
	v.RegisterTagNameFunc(fieldName)
	custom := map[string]validator.Func{
		"timeslot": func(fl validator.FieldLevel) bool {
			_, _, err := models.ParseTimeSlot(fl.Field().String())
			return err == nil
		},
		"ymd": func(fl validator.FieldLevel) bool {
			_, err := time.Parse(models.DateLayout, fl.Field().String())
			return err == nil
		},
		"objectid": func(fl validator.FieldLevel) bool {
			return primitive.IsValidObjectID(fl.Field().String())
		},
	}
	for tag, fn := range custom {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s validator: %w", tag, err)
		}
	}
	return nil
}

func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name != "" && name != "-" {
			return name
		}
	}
	return f.Name
}

// Validate performs validation on a struct using `validate` tags.
func Validate(s interface{}) error {
	return validate.Struct(s)
}

// RegisterBindingValidators adds the custom tags to gin's binding engine so
// `binding:"..."` tags on query and form structs can use them.
func RegisterBindingValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin binding engine is not go-playground/validator")
	}
	return registerCustom(v)
}

// FormatValidationError turns validator errors into a readable sentence.
func FormatValidationError(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, describe(e))
	}
	return strings.Join(msgs, "; ")
}

func describe(e validator.FieldError) string {
	field := e.Field()
	switch e.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, e.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, e.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "gte":
		return fmt.Sprintf("%s must be %s or more", field, e.Param())
	case "lte":
		return fmt.Sprintf("%s must be %s or less", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(e.Param(), " ", ", "))
	case "timeslot":
		return field + " must look like HH:MM-HH:MM"
	case "ymd":
		return field + " must be a date (YYYY-MM-DD)"
	case "objectid":
		return field + " is not a valid id"
	}
	return field + " is invalid"
}
