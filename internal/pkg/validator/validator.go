package validator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()

	// Use JSON tag names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Struct validates a struct against its validate tags
func Struct(v interface{}) error {
	return validate.Struct(v)
}

// Details converts validation errors into a field -> message map
func Details(err error) map[string]string {
	details := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		details["_"] = err.Error()
		return details
	}

	for _, fieldErr := range validationErrors {
		details[fieldErr.Field()] = "failed validation: " + fieldErr.Tag()
	}
	return details
}
