package hours

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/hashicorp/go-multierror"
)

var clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// ErrInvalidSchedule is wrapped by every error returned from Validate
var ErrInvalidSchedule = errors.New("invalid business hours")

// IsClockTime reports whether value is a strict 24-hour "HH:MM" string
func IsClockTime(value string) bool {
	return clockPattern.MatchString(value)
}

// Validate checks a schedule before it is saved from the dashboard.
// The resolver itself never validates; it degrades malformed input instead.
func Validate(schedule WeeklySchedule) error {
	var result *multierror.Error
	seen := make(map[string]bool, DaysInWeek)

	for i, d := range schedule {
		if _, ok := ParseWeekday(d.Day); !ok {
			result = multierror.Append(result, fmt.Errorf("%w: entry %d: unknown day %q", ErrInvalidSchedule, i, d.Day))
			continue
		}
		if seen[d.Day] {
			result = multierror.Append(result, fmt.Errorf("%w: %s listed more than once", ErrInvalidSchedule, d.Day))
			continue
		}
		seen[d.Day] = true

		if !d.IsOpen {
			continue
		}
		openOK := IsClockTime(d.OpenTime)
		closeOK := IsClockTime(d.CloseTime)
		if !openOK {
			result = multierror.Append(result, fmt.Errorf("%w: %s: opening time %q must be HH:MM", ErrInvalidSchedule, d.Day, d.OpenTime))
		}
		if !closeOK {
			result = multierror.Append(result, fmt.Errorf("%w: %s: closing time %q must be HH:MM", ErrInvalidSchedule, d.Day, d.CloseTime))
		}
		if openOK && closeOK && ParseTime(d.OpenTime) >= ParseTime(d.CloseTime) {
			result = multierror.Append(result, fmt.Errorf("%w: %s: opening time %s must be before closing time %s", ErrInvalidSchedule, d.Day, d.OpenTime, d.CloseTime))
		}
	}

	return result.ErrorOrNil()
}
