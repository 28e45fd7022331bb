package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var courseCode = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 _.-]{0,49}$`)

// Register installs the custom rules and json/form field naming on gin's
// binding validator. Call once at startup.
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("validator: unexpected binding engine")
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	rules := map[string]validator.Func{
		"coursecode": validateCourseCode,
		"clocktime":  validateClockTime,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("validator: register %s: %w", tag, err)
		}
	}
	return nil
}

// validateCourseCode accepts short codes such as "CS101" or "MATH 201".
func validateCourseCode(fl validator.FieldLevel) bool {
	value := strings.TrimSpace(fl.Field().String())
	return courseCode.MatchString(value)
}

// validateClockTime accepts 24h "HH:MM".
func validateClockTime(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if len(value) != 5 {
		return false
	}
	_, err := time.Parse("15:04", value)
	return err == nil
}

// Describe turns binding errors into a short "field: rule" summary suitable
// for the response details. Other errors (malformed JSON) are returned as is.
func Describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, describeField(fe))
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}

func describeField(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "uuid":
		return field + " must be a valid id"
	case "oneof":
		return field + " must be one of: " + fe.Param()
	case "min":
		return field + " must be at least " + fe.Param()
	case "max":
		return field + " must be at most " + fe.Param()
	case "coursecode":
		return field + " must be a valid course code"
	case "clocktime":
		return field + " must be a time in HH:MM format"
	default:
		return field + " is invalid"
	}
}
