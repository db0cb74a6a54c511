package mediaoverlay

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrClockSyntax reports a colon form with other than 1-3 components.
	ErrClockSyntax = errors.New("mediaoverlay: unrecognised clock syntax")
	// ErrClockField reports a clock field with no leading number. The value
	// returned alongside it counts that field as zero.
	ErrClockField = errors.New("mediaoverlay: clock field is not a number")
)

// ClockParser converts SMIL clock values to seconds. Diagnostics go to
// Logger, or slog.Default() when nil.
type ClockParser struct {
	Logger *slog.Logger
}

// ParseClock parses s with the default logger. See ClockParser.Parse.
func ParseClock(s string) float64 {
	return ClockParser{}.Parse(s)
}

// Parse returns the number of seconds encoded by s. It never fails: an
// empty value is 0, an unrecognised colon form is logged and yields 0, and a
// field without a leading number counts as 0.
func (p ClockParser) Parse(s string) float64 {
	secs, err := ParseClockStrict(s)
	if errors.Is(err, ErrClockSyntax) {
		p.logger().Warn("smil clock parsing failed",
			slog.String("value", s),
			slog.String("error", err.Error()))
		return 0
	}
	return secs
}

func (p ClockParser) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

// ParseClockStrict is ParseClock with the anomalies reported. Supported
// forms, tried in order:
//
//	npt=<clock>      the "npt=" marker is dropped first
//	<n>min           minutes
//	<n>ms            milliseconds
//	<n>s             seconds
//	<n>h             hours
//	[[hh:]mm:]ss     colon clock
//
// A unit only matches when it is not the first character, so "s" alone
// falls through to the colon form.
func ParseClockStrict(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	s = strings.Replace(s, "npt=", "", 1)

	var hours, minutes, seconds float64
	var bad []string

	field := func(v string) float64 {
		f, ok := leadingFloat(v)
		if !ok {
			bad = append(bad, v)
			return 0
		}
		return f
	}

	switch {
	case strings.Index(s, "min") > 0:
		minutes = field(s[:strings.Index(s, "min")])
	case strings.Index(s, "ms") > 0:
		seconds = field(s[:strings.Index(s, "ms")]) / 1000
	case strings.Index(s, "s") > 0:
		seconds = field(s[:strings.Index(s, "s")])
	case strings.Index(s, "h") > 0:
		hours = field(s[:strings.Index(s, "h")])
	default:
		parts := strings.Split(s, ":")
		switch len(parts) {
		case 1:
			seconds = field(parts[0])
		case 2:
			minutes = field(parts[0])
			seconds = field(parts[1])
		case 3:
			hours = field(parts[0])
			minutes = field(parts[1])
			seconds = field(parts[2])
		default:
			return 0, fmt.Errorf("%w: %d components in %q", ErrClockSyntax, len(parts), s)
		}
	}

	total := hours*3600 + minutes*60 + seconds
	if len(bad) > 0 {
		return total, fmt.Errorf("%w: %q", ErrClockField, bad)
	}
	return total, nil
}

// leadingFloat parses the longest numeric prefix of s after leading
// whitespace, ignoring whatever follows it.
func leadingFloat(s string) (float64, bool) {
	s = strings.TrimLeft(s, " \t\n\r\f\v")
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	if strings.HasPrefix(s[i:], "Infinity") {
		if s[0] == '-' {
			return math.Inf(-1), true
		}
		return math.Inf(1), true
	}

	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		frac := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			frac++
		}
		if digits > 0 || frac > 0 {
			i = j
			digits += frac
		}
	}
	if digits == 0 {
		return 0, false
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		exp := j
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		if j > exp {
			i = j
		}
	}

	f, err := strconv.ParseFloat(s[:i], 64)
	if err != nil {
		// Out-of-range exponents still carry a usable ±Inf or 0.
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return f, true
		}
		return 0, false
	}
	return f, true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
