package viewhelpers

import (
	"fmt"
	"net/url"
	"time"

	"github.com/belphemur/storefront/internal/constants"
	"github.com/belphemur/storefront/internal/hours"
)

// HoursRow represents a single day line in the storefront hours card.
type HoursRow struct {
	Date    time.Time
	Day     string
	Hours   string
	IsOpen  bool
	IsToday bool
}

// WeekStart returns midnight of the Monday of the week containing refDate.
func WeekStart(refDate time.Time) time.Time {
	// Go's Weekday starts with Sunday = 0; the card starts weeks on Monday.
	daysToSubtract := int(refDate.Weekday()) - 1
	if refDate.Weekday() == time.Sunday {
		daysToSubtract = 6
	}
	start := refDate.AddDate(0, 0, -daysToSubtract)
	return time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, refDate.Location())
}

// StructureHoursForTemplate lays the schedule out Monday to Sunday for the week of now.
// Each day shows the entry the resolver would use; days without one read "Closed".
func StructureHoursForTemplate(schedule hours.WeeklySchedule, now time.Time) []HoursRow {
	start := WeekStart(now)
	today := hours.WeekdayOf(now)

	rows := make([]HoursRow, 0, hours.DaysInWeek)
	for i := 0; i < hours.DaysInWeek; i++ {
		date := start.AddDate(0, 0, i)
		day := hours.WeekdayOf(date)
		row := HoursRow{
			Date:    date,
			Day:     day.String(),
			Hours:   "Closed",
			IsToday: day == today,
		}
		if entry, ok := schedule.Lookup(day); ok && entry.IsOpen {
			row.IsOpen = true
			row.Hours = fmt.Sprintf("%s - %s", entry.OpenTime, entry.CloseTime)
		}
		rows = append(rows, row)
	}
	return rows
}

// BadgeClass picks the CSS class of the status badge
func BadgeClass(status hours.Status) string {
	if status.IsOpen() {
		return "badge badge-open"
	}
	return "badge badge-closed"
}

// WhatsAppLink builds a wa.me click-to-chat link, or "" when the number is unusable
func WhatsAppLink(number, message string) string {
	if !constants.IsValidWhatsApp(number) {
		return ""
	}
	link := "https://wa.me/" + constants.DigitsOnly(number)
	if message != "" {
		link += "?text=" + url.QueryEscape(message)
	}
	return link
}
