package forms

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CoerceString passes the submitted value through unchanged.
func CoerceString(raw string) (any, error) {
	return raw, nil
}

// CoerceInt parses a base-10 integer.
func CoerceInt(raw string) (any, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("not a valid integer")
	}
	return value, nil
}

// CoerceFloat parses a floating point number.
func CoerceFloat(raw string) (any, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return nil, fmt.Errorf("not a valid number")
	}
	return value, nil
}

// CoerceBool treats the usual checkbox payloads as true and everything empty
// as false.
func CoerceBool(raw string) (any, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "0", "false", "off":
		return false, nil
	default:
		return true, nil
	}
}

var (
	dateFormats = []string{"2006-01-02"}
	timeFormats = []string{"15:04:05", "15:04"}
	dateTimeFormats = []string{
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04",
		"2006-01-02T15:04",
		"2006-01-02",
	}
)

// CoerceDate parses an ISO date.
func CoerceDate(raw string) (any, error) {
	return parseTime(raw, dateFormats, "not a valid date value")
}

// CoerceTime parses a wall-clock time, with or without seconds.
func CoerceTime(raw string) (any, error) {
	return parseTime(raw, timeFormats, "not a valid time value")
}

// CoerceDateTime parses a datetime in the accepted formats, falling back to a
// bare date at midnight.
func CoerceDateTime(raw string) (any, error) {
	return parseTime(raw, dateTimeFormats, "not a valid datetime value")
}

func parseTime(raw string, formats []string, message string) (any, error) {
	trimmed := strings.TrimSpace(raw)
	for _, format := range formats {
		if value, err := time.Parse(format, trimmed); err == nil {
			return value, nil
		}
	}
	return nil, fmt.Errorf("%s", message)
}

// NullIfEmpty maps the empty string to nil so nullable columns receive SQL
// NULL instead of "".
func NullIfEmpty(value any) any {
	if s, ok := value.(string); ok && s == "" {
		return nil
	}
	return value
}

// MaxLength returns a validator rejecting strings longer than limit.
func MaxLength(limit int) Validator {
	return func(value any) error {
		s, ok := value.(string)
		if !ok {
			return nil
		}
		if len(s) > limit {
			return fmt.Errorf("value is longer than %d characters", limit)
		}
		return nil
	}
}

// choiceMatches compares a coerced submission against a declared choice
// value. Values may arrive with different concrete numeric types (YAML ints
// vs coerced int64), so comparison happens on the printed form.
func choiceMatches(choice, value any) bool {
	if choice == value {
		return true
	}
	return fmt.Sprint(choice) == fmt.Sprint(value)
}
