package validator

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Academic address patterns: plain .edu domains plus two-part suffixes such as
// .edu.tr or .ac.uk. Case-insensitive, single @, no whitespace.
var (
	academicSuffixPattern = regexp.MustCompile(`(?i)^[^\s@]+@[^\s@]+\.(edu|ac)\.[a-z]{2,}$`)
	eduPattern            = regexp.MustCompile(`(?i)^[^\s@]+@[^\s@]+\.edu$`)
)

var (
	once     sync.Once
	validate *validator.Validate
)

// ValidationError represents a single field validation failure.
type ValidationError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Param string `json:"param"`
}

// ValidationErrors collects multiple validation failures.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}

	parts := make([]string, len(v))
	for i, err := range v {
		if err.Param != "" {
			parts[i] = err.Field + " failed on " + err.Tag + "=" + err.Param
		} else {
			parts[i] = err.Field + " failed on " + err.Tag
		}
	}
	return strings.Join(parts, "; ")
}

// IsUniversityEmail reports whether the address belongs to an academic domain.
func IsUniversityEmail(email string) bool {
	email = strings.TrimSpace(email)
	if strings.Count(email, "@") != 1 {
		return false
	}
	return eduPattern.MatchString(email) || academicSuffixPattern.MatchString(email)
}

// ValidateStruct validates a struct using registered rules.
func ValidateStruct(s interface{}) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}

	if ve, ok := err.(validator.ValidationErrors); ok {
		failures := make(ValidationErrors, 0, len(ve))
		for _, fe := range ve {
			failures = append(failures, ValidationError{
				Field: fe.Field(),
				Tag:   fe.Tag(),
				Param: fe.Param(),
			})
		}
		return failures
	}

	return err
}

// RegisterValidation exposes underlying validator custom rules.
func RegisterValidation(tag string, fn validator.Func) error {
	return getValidator().RegisterValidation(tag, fn)
}

func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := fld.Tag.Get("json")
			if name == "" {
				return fld.Name
			}

			comma := strings.Index(name, ",")
			if comma != -1 {
				name = name[:comma]
			}

			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})

		_ = validate.RegisterValidation("university_email", func(fl validator.FieldLevel) bool {
			return IsUniversityEmail(fl.Field().String())
		})
	})
	return validate
}
