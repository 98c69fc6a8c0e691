package validator

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// BindingErrors turns a gin binding error into a field -> reason map
// suitable for the error envelope's details. Non-validation errors
// (malformed JSON, wrong types) return nil.
func BindingErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[snakeCase(fe.Field())] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "min":
		return fmt.Sprintf("length must be %s or more symbols", fe.Param())
	case "max":
		return fmt.Sprintf("length must be %s or fewer symbols", fe.Param())
	case "email":
		return "invalid email address"
	case "e164":
		return "invalid phone number"
	default:
		return "invalid value"
	}
}

func snakeCase(field string) string {
	var b strings.Builder
	for i, r := range field {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
