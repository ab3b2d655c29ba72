package hours

import "time"

// Resolver computes availability from a schedule. It holds only options and is
// safe for concurrent use; the zero value follows the default policy.
type Resolver struct {
	searchAfterClose bool
}

// Option configures a Resolver
type Option func(*Resolver)

// WithSearchAfterClose makes the resolver search forward for the next open day
// once today's closing time has passed, instead of reporting ClosedUnknown.
func WithSearchAfterClose(enabled bool) Option {
	return func(r *Resolver) {
		r.searchAfterClose = enabled
	}
}

// NewResolver creates a Resolver with the given options
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SearchAfterClose reports whether the past-closing branch searches forward
func (r *Resolver) SearchAfterClose() bool {
	return r.searchAfterClose
}

// Resolve determines availability with the default policy
func Resolve(schedule WeeklySchedule, now time.Time) Status {
	var r Resolver
	return r.Resolve(schedule, now)
}

// Resolve determines whether the shop is open at now and, if closed, when it next opens.
// now is read in its own location; schedule times share that implicit frame.
func (r *Resolver) Resolve(schedule WeeklySchedule, now time.Time) Status {
	today := WeekdayOf(now)
	currentMinutes := MinuteOfDay(now.Hour(), now.Minute())

	todayHours, found := schedule.Lookup(today)
	if !found || !todayHours.IsOpen {
		return nextOpenDay(schedule, today)
	}

	openMinutes := ParseTime(todayHours.OpenTime)
	closeMinutes := ParseTime(todayHours.CloseTime)

	if currentMinutes >= openMinutes && currentMinutes < closeMinutes {
		return Open(todayHours.CloseTime)
	}
	if currentMinutes < openMinutes {
		return ClosedBeforeOpening(todayHours.OpenTime)
	}

	// past closing
	if r.searchAfterClose {
		return nextOpenDay(schedule, today)
	}
	return ClosedUnknown()
}

// nextOpenDay searches at most one full week ahead of today, inclusive of today
// itself on the seventh step.
func nextOpenDay(schedule WeeklySchedule, today Weekday) Status {
	for i := 1; i <= DaysInWeek; i++ {
		day := today.Next(i)
		if entry, ok := schedule.Lookup(day); ok && entry.IsOpen {
			return ClosedUntilFutureDay(day.String(), entry.OpenTime)
		}
	}
	return ClosedUnknown()
}
