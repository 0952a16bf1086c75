// Package validation runs the static rule sets of commands and queries.
//
// Rules are declared with `validate` struct tags and evaluated by
// go-playground/validator. Every rule of every field runs; all violations
// are collected into a field → messages map. Rules that span several
// fields are declared by implementing Checker. Rule evaluation is pure and
// synchronous; the only outside input is the clock used by date rules.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/juju/clock"

	"github.com/asidocente/school-records/internal/domain/shared"
)

// Checker is implemented by requests with rules spanning several fields.
// It runs after the tag rules and its findings are merged into the result.
type Checker interface {
	Check(now time.Time) []FieldError
}

// Messenger is implemented by requests that override default messages.
// Keys are "<json field>.<tag>", e.g. "gradeLevel.lte".
type Messenger interface {
	ValidationMessages() map[string]string
}

// FieldError is a single violation.
type FieldError struct {
	Field   string
	Message string
}

// Error is the ValidationFailed outcome: every violation keyed by field.
type Error struct {
	Fields map[string][]string `json:"errors"`
	order  []string
}

// NewError builds an empty Error.
func NewError() *Error {
	return &Error{Fields: make(map[string][]string)}
}

// Add appends a message for field, skipping exact duplicates.
func (e *Error) Add(field, message string) {
	existing, seen := e.Fields[field]
	for _, m := range existing {
		if m == message {
			return
		}
	}
	if !seen {
		e.order = append(e.order, field)
	}
	e.Fields[field] = append(existing, message)
}

// Empty reports whether no violation was recorded.
func (e *Error) Empty() bool {
	return len(e.Fields) == 0
}

// Messages returns every message in the order fields failed.
func (e *Error) Messages() []string {
	var out []string
	for _, f := range e.order {
		out = append(out, e.Fields[f]...)
	}
	return out
}

// Error implements the error interface.
func (e *Error) Error() string {
	parts := make([]string, 0, len(e.order))
	for _, f := range e.order {
		parts = append(parts, fmt.Sprintf("%s: %s", f, strings.Join(e.Fields[f], ", ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is makes the error match shared.ErrValidation.
func (e *Error) Is(target error) bool {
	return target == shared.ErrValidation
}

// AsError extracts a validation failure from err.
func AsError(err error) (*Error, bool) {
	var ve *Error
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// ══════════════════════════════════════════════════════════════════════════════
// VALIDATOR
// ══════════════════════════════════════════════════════════════════════════════

// Validator evaluates request rule sets.
type Validator struct {
	validate *validator.Validate
	clock    clock.Clock
}

// New creates a Validator with the custom tags registered.
// A nil clock means the wall clock.
func New(clk clock.Clock) *Validator {
	if clk == nil {
		clk = clock.WallClock
	}

	v := &Validator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		clock:    clk,
	}

	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	mustRegister(v.validate, "notblank", validators.NotBlank)
	mustRegister(v.validate, "local_phone", func(fl validator.FieldLevel) bool {
		return shared.IsValidLocalPhone(fl.Field().String())
	})
	mustRegister(v.validate, "past_date", func(fl validator.FieldLevel) bool {
		t, ok := asTime(fl)
		return ok && t.Before(v.clock.Now())
	})
	mustRegister(v.validate, "not_future", func(fl validator.FieldLevel) bool {
		t, ok := asTime(fl)
		if !ok {
			return false
		}
		// Dates compare by the caller's calendar day, the day that gets stored.
		return !calendarDay(t).After(calendarDay(v.clock.Now().UTC()))
	})
	mustRegister(v.validate, "max_age", func(fl validator.FieldLevel) bool {
		t, ok := asTime(fl)
		if !ok {
			return false
		}
		var years int
		if _, err := fmt.Sscanf(fl.Param(), "%d", &years); err != nil {
			return false
		}
		return t.After(v.clock.Now().AddDate(-years, 0, 0))
	})
	mustRegister(v.validate, "clock_time", func(fl validator.FieldLevel) bool {
		_, err := ParseClockTime(fl.Field().String())
		return err == nil
	})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %q: %v", tag, err))
	}
}

// Validate runs every rule of req. It returns nil or an *Error.
func (v *Validator) Validate(req any) error {
	if req == nil {
		return nil
	}

	out := NewError()
	var overrides map[string]string
	if m, ok := req.(Messenger); ok {
		overrides = m.ValidationMessages()
	}

	if isStruct(req) {
		err := v.validate.Struct(req)
		var fieldErrs validator.ValidationErrors
		switch {
		case err == nil:
		case errors.As(err, &fieldErrs):
			for _, fe := range fieldErrs {
				out.Add(fe.Field(), messageFor(fe, overrides))
			}
		default:
			return fmt.Errorf("validation: %w", err)
		}
	}

	if c, ok := req.(Checker); ok {
		for _, fe := range c.Check(v.clock.Now()) {
			out.Add(fe.Field, fe.Message)
		}
	}

	if out.Empty() {
		return nil
	}
	return out
}

func isStruct(req any) bool {
	t := reflect.TypeOf(req)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}

// ══════════════════════════════════════════════════════════════════════════════
// MESSAGES
// ══════════════════════════════════════════════════════════════════════════════

func messageFor(fe validator.FieldError, overrides map[string]string) string {
	tag := fe.Tag()
	if tag == "notblank" {
		// Whitespace-only text reads as missing.
		tag = "required"
	}
	if msg, ok := overrides[fe.Field()+"."+tag]; ok {
		return msg
	}

	label := Label(fe.StructField())
	switch tag {
	case "required":
		return label + " is required"
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must not exceed %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must not exceed %s", label, fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", label, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", label, fe.Param())
	case "lt":
		return fmt.Sprintf("%s must be less than %s", label, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", label, fe.Param())
	case "email":
		return "Invalid email address"
	case "local_phone":
		return label + " must be 8 digits"
	case "past_date":
		return label + " must be in the past"
	case "not_future":
		return label + " cannot be in the future"
	case "max_age":
		return fmt.Sprintf("%s must be within the last %s years", label, fe.Param())
	case "clock_time":
		return label + " must use the HH:MM format"
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}

// Label turns a Go field name into sentence case: "FirstName" → "First name",
// "SchoolID" → "School ID".
func Label(field string) string {
	runes := []rune(field)
	var words []string
	start := 0
	for i := 1; i < len(runes); i++ {
		prevLower := unicode.IsLower(runes[i-1])
		nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
		if unicode.IsUpper(runes[i]) && (prevLower || (nextLower && unicode.IsUpper(runes[i-1]))) {
			words = append(words, string(runes[start:i]))
			start = i
		}
	}
	words = append(words, string(runes[start:]))

	for i, w := range words {
		if i > 0 && !isAcronym(w) {
			words[i] = strings.ToLower(w)
		}
	}
	return strings.Join(words, " ")
}

func isAcronym(word string) bool {
	return len(word) > 1 && strings.ToUpper(word) == word
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

func asTime(fl validator.FieldLevel) (time.Time, bool) {
	t, ok := fl.Field().Interface().(time.Time)
	return t, ok
}

// calendarDay is midnight UTC of t's date in t's own location.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseClockTime parses "HH:MM" into an offset from midnight.
func ParseClockTime(value string) (time.Duration, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("parse clock time %q: %w", value, err)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}
