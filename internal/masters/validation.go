package masters

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// GeneralError is the error key not bound to a field.
const GeneralError = "general"

var indexPattern = regexp.MustCompile(`\[(\d+)\]`)

// NewValidator returns a validator that names fields by their form tag and
// knows the menulink rule.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("menulink", func(fl validator.FieldLevel) bool {
		return IsMenuLink(fl.Field().String())
	})
	return v
}

// IsMenuLink accepts an absolute http(s) URL or a root-relative path.
func IsMenuLink(link string) bool {
	if link == "" || strings.ContainsAny(link, " \t\r\n") {
		return false
	}
	if strings.HasPrefix(link, "/") {
		return !strings.HasPrefix(link, "//")
	}
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// FieldErrors converts validator output into messages keyed by form name.
// Nested fields use dotted paths: subItems.0.label.
func FieldErrors(err error, messages map[string]string) map[string]string {
	out := map[string]string{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out[GeneralError] = "The form could not be validated"
		return out
	}
	for _, fe := range verrs {
		key := fieldKey(fe.Namespace())
		if _, seen := out[key]; seen {
			continue
		}
		out[key] = message(fe, messages)
	}
	return out
}

func fieldKey(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		namespace = rest
	}
	return indexPattern.ReplaceAllString(namespace, ".$1")
}

func message(fe validator.FieldError, messages map[string]string) string {
	if msg, ok := messages[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}
	if msg, ok := messages[fe.Tag()]; ok {
		return msg
	}
	switch fe.Tag() {
	case "required", "required_if", "required_unless":
		return "This field is required"
	case "min", "gte":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("Add at least %s item(s)", fe.Param())
		}
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("Must be at least %s", fe.Param())
	case "max", "lte":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("Must be at most %s", fe.Param())
	case "email":
		return "Enter a valid email address"
	case "numeric", "number":
		return "Must be a number"
	case "oneof":
		return "Must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "menulink":
		return "Enter an http(s) URL or a path starting with /"
	case "excluded_with", "excluded_if":
		return "This field must be empty"
	}
	return "Invalid value"
}
