// Package numeric converts raw form input into numbers.
//
// The dashboard recomputes everything on every keystroke, so a half-typed
// field must never break a render. ParseOrZero reproduces that lenient
// behaviour; Coerce additionally reports when the input was not a clean
// number so callers can surface a warning instead of hiding the problem.
package numeric

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidNumber is returned by the strict parsers.
var ErrInvalidNumber = errors.New("invalid number")

// numericPrefix matches the longest leading decimal literal, the way a
// browser's parseFloat does.
var numericPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParseOrZero returns the leading number in raw, or 0 when there is none.
// Non-finite results are also reported as 0.
func ParseOrZero(raw string) float64 {
	v, _ := Coerce(raw)
	return v
}

// ParseIntOrZero is ParseOrZero truncated toward zero.
func ParseIntOrZero(raw string) int {
	return int(math.Trunc(ParseOrZero(raw)))
}

// Coerce returns the lenient value of raw and whether any coercion took
// place (blank input, trailing garbage, or no number at all).
func Coerce(raw string) (value float64, coerced bool) {
	s := strings.TrimSpace(raw)
	if v, err := strconv.ParseFloat(s, 64); err == nil && isFinite(v) {
		return v, false
	}
	m := numericPrefix.FindString(s)
	if m == "" {
		return 0, true
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || !isFinite(v) {
		return 0, true
	}
	return v, true
}

// Parse is the strict counterpart of ParseOrZero.
func Parse(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !isFinite(v) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, raw)
	}
	return v, nil
}

// ParseInt is the strict integer parser.
func ParseInt(raw string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, raw)
	}
	return v, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
