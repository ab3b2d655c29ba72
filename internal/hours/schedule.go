package hours

import (
	"strconv"
	"strings"
)

// DaySchedule holds the opening hours for a single day.
// OpenTime and CloseTime are wall-clock "HH:MM" strings without a timezone.
type DaySchedule struct {
	Day       string `json:"day"`
	IsOpen    bool   `json:"isOpen"`
	OpenTime  string `json:"openTime"`
	CloseTime string `json:"closeTime"`
}

// WeeklySchedule is the full set of per-day hours for one storefront.
// Entries are not required to be unique or ordered.
type WeeklySchedule []DaySchedule

// Lookup returns the first entry for the given day, in the schedule's own order
func (s WeeklySchedule) Lookup(day Weekday) (DaySchedule, bool) {
	name := day.String()
	for _, d := range s {
		if d.Day == name {
			return d, true
		}
	}
	return DaySchedule{}, false
}

// ParseTime converts an "HH:MM" string into minutes since midnight.
//
// Parsing is lenient: an empty, blank or malformed value yields 0 (midnight)
// instead of an error. Ranges are not checked, so "24:00" is 1440 and closes
// a shop at the end of the day.
func ParseTime(value string) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}

	hourPart, minutePart, found := strings.Cut(value, ":")
	if !found {
		return 0
	}
	h, err := strconv.Atoi(hourPart)
	if err != nil || h < 0 {
		return 0
	}
	m, err := strconv.Atoi(minutePart)
	if err != nil || m < 0 {
		return 0
	}
	return MinuteOfDay(h, m)
}

// MinuteOfDay returns hours*60+minutes for a clock reading
func MinuteOfDay(hour, minute int) int {
	return hour*60 + minute
}

// DefaultSchedule returns the hours a new storefront starts with
func DefaultSchedule() WeeklySchedule {
	return WeeklySchedule{
		{Day: "Monday", IsOpen: true, OpenTime: "09:00", CloseTime: "18:00"},
		{Day: "Tuesday", IsOpen: true, OpenTime: "09:00", CloseTime: "18:00"},
		{Day: "Wednesday", IsOpen: true, OpenTime: "09:00", CloseTime: "18:00"},
		{Day: "Thursday", IsOpen: true, OpenTime: "09:00", CloseTime: "18:00"},
		{Day: "Friday", IsOpen: true, OpenTime: "09:00", CloseTime: "18:00"},
		{Day: "Saturday", IsOpen: true, OpenTime: "10:00", CloseTime: "16:00"},
		{Day: "Sunday", IsOpen: false, OpenTime: "", CloseTime: ""},
	}
}
