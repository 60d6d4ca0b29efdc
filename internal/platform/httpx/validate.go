package httpx

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks a request DTO against its validate tags. The error wraps
// ErrValidation and names the offending field by its JSON name, so a missing
// required field surfaces as e.g. "Missing required field: tax_amount".
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	fe := verrs[0]
	if fe.Tag() == "required" {
		return fmt.Errorf("%w: Missing required field: %s", ErrValidation, fe.Field())
	}
	return fmt.Errorf("%w: invalid value for field: %s", ErrValidation, fe.Field())
}
