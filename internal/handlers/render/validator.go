package render

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

func configureValidator(validate *validator.Validate) {
	_ = validate.RegisterValidation("nonblank", validateNonBlank)
	validate.RegisterTagNameFunc(useJSONTagNames)
}

func useJSONTagNames(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	// skip if tag key says it should be ignored
	if name == "-" {
		return ""
	}
	return name
}

// String has something besides whitespace
// Nil pointers pass, pair with 'required' when the field is mandatory
func validateNonBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return false
	}
	return strings.TrimSpace(field.String()) != ""
}

// Human friendly message for failed validation tag
func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "nonblank":
		return "This field is required"
	case "min":
		return "Value is too short (minimum " + fe.Param() + ")"
	case "max":
		return "Value is too long (maximum " + fe.Param() + ")"
	case "email":
		return "Invalid email address"
	case "uuid":
		return "Invalid identifier"
	default:
		return "Invalid value"
	}
}
