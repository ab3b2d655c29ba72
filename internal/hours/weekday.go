// Package hours resolves storefront availability from a weekly business-hours schedule.
package hours

import "time"

// Weekday is one of the seven calendar days, ordered Sunday first like time.Weekday.
type Weekday int

const (
	Sunday Weekday = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

// DaysInWeek is the forward search radius used when looking for the next open day.
const DaysInWeek = 7

var weekdayNames = [DaysInWeek]string{
	"Sunday",
	"Monday",
	"Tuesday",
	"Wednesday",
	"Thursday",
	"Friday",
	"Saturday",
}

// String returns the English day name used in stored schedules
func (d Weekday) String() string {
	return weekdayNames[d.normalize()]
}

// Next returns the day i steps after d, wrapping through the week
func (d Weekday) Next(i int) Weekday {
	return Weekday(int(d) + i).normalize()
}

func (d Weekday) normalize() Weekday {
	n := int(d) % DaysInWeek
	if n < 0 {
		n += DaysInWeek
	}
	return Weekday(n)
}

// WeekdayOf returns the day of week of t in t's own location
func WeekdayOf(t time.Time) Weekday {
	return Weekday(t.Weekday())
}

// ParseWeekday matches an exact, case-sensitive English day name
func ParseWeekday(name string) (Weekday, bool) {
	for i, n := range weekdayNames {
		if n == name {
			return Weekday(i), true
		}
	}
	return Sunday, false
}

// AllWeekdays returns the canonical Sunday-first ordering
func AllWeekdays() []Weekday {
	return []Weekday{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}
}
