package validator

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/lomoval/ai-calendar/internal/storage"
)

const (
	DefaultTime     = "00:00"
	DefaultDuration = 0
)

var (
	ErrRequired          = errors.New("is required")
	ErrNotString         = errors.New("must be a string")
	ErrDateFormat        = errors.New("must use YYYY-MM-DD format")
	ErrIncorrectDate     = errors.New("is not a valid calendar date")
	ErrTimeFormat        = errors.New("must use H:MM or HH:MM format")
	ErrIncorrectDuration = errors.New("must be a non-negative whole number of minutes")
)

var (
	dateRegexp = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timeRegexp = regexp.MustCompile(`^\d{1,2}:\d{2}$`)
)

type ValidationError struct {
	Field string
	Err   error
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	b := strings.Builder{}
	for i, validationError := range v {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(fmt.Sprintf("%s %s", validationError.Field, validationError.Err.Error()))
	}
	return b.String()
}

func (v ValidationErrors) has(field string) bool {
	for _, e := range v {
		if e.Field == field {
			return true
		}
	}
	return false
}

type rule struct {
	field string
	check func(e storage.Event) error
}

var rules = []rule{
	{field: "name", check: checkName},
	{field: "date", check: checkDate},
	{field: "time", check: checkTime},
	{field: "duration", check: checkDuration},
}

// ValidateEvent applies every rule to e and returns ValidationErrors or nil.
func ValidateEvent(e storage.Event) error {
	var validationErrors ValidationErrors
	for _, r := range rules {
		if err := r.check(e); err != nil {
			validationErrors = append(validationErrors, ValidationError{Field: r.field, Err: err})
		}
	}
	if len(validationErrors) == 0 {
		return nil
	}
	return validationErrors
}

// ParseEvent converts a decoded JSON object into an event.
// Missing time and duration get DefaultTime and DefaultDuration.
func ParseEvent(payload map[string]interface{}) (storage.Event, error) {
	var validationErrors ValidationErrors
	e := storage.Event{Time: DefaultTime, Duration: DefaultDuration}

	var err error
	if e.Name, err = requiredString(payload, "name"); err != nil {
		validationErrors = append(validationErrors, ValidationError{Field: "name", Err: err})
	}
	if e.Date, err = requiredString(payload, "date"); err != nil {
		validationErrors = append(validationErrors, ValidationError{Field: "date", Err: err})
	}
	if v, ok := payload["time"]; ok && v != nil {
		s, ok := v.(string)
		if !ok {
			validationErrors = append(validationErrors, ValidationError{Field: "time", Err: ErrNotString})
		}
		e.Time = s
	}
	if v, ok := payload["duration"]; ok && v != nil {
		d, ok := v.(float64)
		if !ok || d != math.Trunc(d) || d < 0 || d > math.MaxInt32 {
			validationErrors = append(validationErrors, ValidationError{Field: "duration", Err: ErrIncorrectDuration})
		}
		e.Duration = int(d)
	}

	var ruleErrors ValidationErrors
	if err := ValidateEvent(e); err != nil {
		errors.As(err, &ruleErrors)
	}
	for _, ruleError := range ruleErrors {
		if !validationErrors.has(ruleError.Field) {
			validationErrors = append(validationErrors, ruleError)
		}
	}

	if len(validationErrors) > 0 {
		return storage.Event{}, validationErrors
	}
	return e, nil
}

func requiredString(payload map[string]interface{}, field string) (string, error) {
	v, ok := payload[field]
	if !ok || v == nil {
		return "", ErrRequired
	}
	s, ok := v.(string)
	if !ok {
		return "", ErrNotString
	}
	return s, nil
}

func checkName(e storage.Event) error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrRequired
	}
	return nil
}

func checkDate(e storage.Event) error {
	if e.Date == "" {
		return ErrRequired
	}
	if !dateRegexp.MatchString(e.Date) {
		return ErrDateFormat
	}
	if _, err := time.Parse(storage.DateLayout, e.Date); err != nil {
		return ErrIncorrectDate
	}
	return nil
}

func checkTime(e storage.Event) error {
	if !timeRegexp.MatchString(e.Time) {
		return ErrTimeFormat
	}
	if _, err := time.Parse(storage.TimeLayout, e.Time); err != nil {
		return ErrTimeFormat
	}
	return nil
}

func checkDuration(e storage.Event) error {
	if e.Duration < 0 {
		return ErrIncorrectDuration
	}
	return nil
}
