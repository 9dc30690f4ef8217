// Package validate turns go-playground/validator results into domain field errors.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/fastygo/taskboard/domain"
)

var (
	once     sync.Once
	instance *validator.Validate
)

func engine() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
		instance.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
		// maxbytes bounds the encoded length, unlike max which counts runes.
		_ = instance.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
			limit, err := strconv.Atoi(fl.Param())
			if err != nil {
				return false
			}
			return len(fl.Field().String()) <= limit
		})
	})
	return instance
}

// Struct validates s using its `validate` tags and returns a domain INVALID
// error listing every failing field, or nil.
func Struct(s any) error {
	err := engine().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.WrapError(domain.ErrCodeInternal, "validation misconfigured", err)
	}
	fields := make([]domain.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, domain.FieldError{
			Field:   fe.Field(),
			Message: message(fe.Field(), fe.Tag(), fe.Param()),
		})
	}
	return domain.InvalidFields(fields...)
}

// Var validates a single value against tag. It returns nil or one FieldError
// named field.
func Var(field string, value any, tag string) *domain.FieldError {
	err := engine().Var(value, tag)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return &domain.FieldError{Field: field, Message: message(field, verrs[0].Tag(), verrs[0].Param())}
	}
	return &domain.FieldError{Field: field, Message: field + " is invalid"}
}

// Collect gathers non-nil field errors into one INVALID error, or nil.
func Collect(errs ...*domain.FieldError) error {
	var fields []domain.FieldError
	for _, fe := range errs {
		if fe != nil {
			fields = append(fields, *fe)
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return domain.InvalidFields(fields...)
}

func message(field, tag, param string) string {
	label := humanize(field)
	switch tag {
	case "required", "required_if":
		return label + " is required"
	case "email":
		return "please provide a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, param)
	case "max":
		return fmt.Sprintf("%s cannot exceed %s characters", label, param)
	case "maxbytes":
		return fmt.Sprintf("%s cannot exceed %s bytes", label, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.ReplaceAll(param, " ", ", "))
	default:
		return label + " is invalid"
	}
}

// humanize turns "dueDate" into "Due date".
func humanize(field string) string {
	if field == "" {
		return "Value"
	}
	var b strings.Builder
	for i, r := range field {
		switch {
		case i == 0:
			b.WriteString(strings.ToUpper(string(r)))
		case r >= 'A' && r <= 'Z':
			b.WriteByte(' ')
			b.WriteString(strings.ToLower(string(r)))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
