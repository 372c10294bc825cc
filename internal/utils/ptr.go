package utils

import "strings"

func Ptr[T any](v T) *T {
	return &v
}

func OrZero[T comparable](v *T) T {
	if v == nil {
		var zero T
		return zero
	}
	return *v
}

// StringOrNil returns nil on an empty or all whitespace string.
func StringOrNil(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// ParseOrNil parses a form value that may be left blank, such as a score not yet known or an
// honor roll pick not made. Blank input is nil with no error.
func ParseOrNil[T any](raw string, parse func(string) (T, error)) (*T, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := parse(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
