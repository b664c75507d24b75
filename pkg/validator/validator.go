package validator

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Layouts accepted by the custom "isodate" and "clock" tags.
const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// Validator provides validation functionality
type Validator interface {
	Validate(interface{}) error
}

// FieldError describes one failed rule.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// FieldErrors is returned by Validate when one or more rules fail.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	msgs := make([]string, 0, len(fe))
	for _, e := range fe {
		msgs = append(msgs, e.Field+": "+e.Message)
	}
	return strings.Join(msgs, "; ")
}

// Fields lists the names of the failing fields in order.
func (fe FieldErrors) Fields() []string {
	names := make([]string, 0, len(fe))
	for _, e := range fe {
		names = append(names, e.Field)
	}
	return names
}

// Has reports whether the given field failed the given tag.
func (fe FieldErrors) Has(field, tag string) bool {
	for _, e := range fe {
		if e.Field == field && e.Tag == tag {
			return true
		}
	}
	return false
}

var defaultMessages = map[string]string{
	"required": "Field is required",
	"email":    "Invalid email format",
	"min":      "Value is too short",
	"max":      "Value is too long",
	"oneof":    "Value is not allowed",
	"eqfield":  "Values do not match",
	"isodate":  "Date must be YYYY-MM-DD",
	"clock":    "Time must be HH:MM",
}

type validate struct {
	v *validator.Validate
}

// New returns a Validator backed by go-playground/validator with the
// portal's custom tags registered. Field names are reported by json tag.
func New() Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("isodate", layoutRule(DateLayout))
	_ = v.RegisterValidation("clock", layoutRule(ClockLayout))

	return &validate{v: v}
}

func layoutRule(layout string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}
		_, err := time.Parse(layout, s)
		return err == nil
	}
}

func (v *validate) Validate(obj interface{}) error {
	err := v.v.Struct(obj)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := make(FieldErrors, 0, len(verrs))
	for _, e := range verrs {
		msg, ok := defaultMessages[e.Tag()]
		if !ok {
			msg = e.Error()
		}
		out = append(out, FieldError{
			Field:   e.Field(),
			Tag:     e.Tag(),
			Message: msg,
		})
	}
	return out
}
