package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/idelchi/gogen/pkg/validator"
)

// registerExclusive adds the "exclusive" validation with a readable message,
// and reports fields by their flag name.
func registerExclusive(v *validator.Validator) error {
	if err := v.RegisterValidationAndTranslation(
		"exclusive",
		validateExclusive,
		"{0} is mutually exclusive",
	); err != nil {
		return fmt.Errorf("registering exclusive validation: %w", err)
	}

	v.Validator().RegisterTagNameFunc(func(fld reflect.StructField) string {
		const splitSize = 2

		name := strings.SplitN(fld.Tag.Get("label"), ",", splitSize)[0]
		if name == "" || name == "-" {
			return fld.Name
		}

		return name
	})

	return nil
}

// validateExclusive returns false if both the field and the field named by the parameter are non-empty.
func validateExclusive(fl validator.FieldLevel) bool {
	field := fl.Field()
	other := fl.Parent().FieldByName(fl.Param())

	if !field.IsValid() || !other.IsValid() {
		return true
	}

	if field.Kind() != reflect.String || other.Kind() != reflect.String {
		return true
	}

	return field.String() == "" || other.String() == ""
}
