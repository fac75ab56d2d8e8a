package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"freightledger/internal/model"

	"github.com/go-playground/validator/v10"
)

// newValidator registers the catalog tags used by the order DTOs.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return model.IsCategory(fl.Field().String())
	})
	_ = v.RegisterValidation("city", func(fl validator.FieldLevel) bool {
		return model.IsCity(fl.Field().String())
	})
	_ = v.RegisterValidation("payment_status", func(fl validator.FieldLevel) bool {
		return model.IsPaymentStatus(fl.Field().String())
	})
	_ = v.RegisterValidation("payment_method", func(fl validator.FieldLevel) bool {
		return model.PaymentMethod(fl.Field().String()).Valid()
	})
	return v
}

// validationError flattens validator output into one ErrValidation.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", model.ErrValidation, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return fmt.Errorf("%w: %s", model.ErrValidation, strings.Join(msgs, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "category", "city", "payment_status", "payment_method":
		return fmt.Sprintf("%s: unknown %s %q", fe.Field(), strings.ReplaceAll(fe.Tag(), "_", " "), fe.Value())
	default:
		return fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag())
	}
}
