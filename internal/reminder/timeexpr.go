package reminder

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var (
	// ErrInvalidFormat is returned when an expression matches neither the
	// relative nor the absolute grammar.
	ErrInvalidFormat = errors.New("invalid time format")

	// ErrAlreadyPassed is returned for an absolute HH:MM earlier than now.
	ErrAlreadyPassed = errors.New("time has already passed today")
)

var (
	relativeRe = regexp.MustCompile(`^(\d+)([smh])$`)
	absoluteRe = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
)

var unitDurations = map[string]time.Duration{
	"s": time.Second,
	"m": time.Minute,
	"h": time.Hour,
}

// ParseExpression converts expr into the delay until the reminder fires,
// relative to now.
//
// Accepted forms are "<n>s", "<n>m", "<n>h" and a wall-clock "HH:MM" for
// today in now's location. An absolute time before now is reported as
// ErrAlreadyPassed; tomorrow is never assumed.
func ParseExpression(expr string, now time.Time) (time.Duration, error) {
	if m := relativeRe.FindStringSubmatch(expr); m != nil {
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, expr)
		}
		unit := unitDurations[m[2]]
		if n > int64(maxDelay/unit) {
			return 0, fmt.Errorf("%w: %q is too far in the future", ErrInvalidFormat, expr)
		}
		return time.Duration(n) * unit, nil
	}

	if m := absoluteRe.FindStringSubmatch(expr); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour > 23 || minute > 59 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, expr)
		}

		target := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
		if target.Before(now) {
			return 0, fmt.Errorf("%w: %s", ErrAlreadyPassed, expr)
		}
		return target.Sub(now).Truncate(time.Second), nil
	}

	return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, expr)
}

// maxDelay keeps n*unit from overflowing time.Duration.
const maxDelay = time.Duration(1<<63 - 1)
