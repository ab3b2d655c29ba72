package hours

import (
	"fmt"
	"time"
)

// SummaryRow is one line of the weekly hours listing shown on a storefront
type SummaryRow struct {
	Day     string `json:"day"`
	Hours   string `json:"hours"`
	IsOpen  bool   `json:"isOpen"`
	IsToday bool   `json:"isToday"`
}

// Summarize lists each schedule entry in stored order, marking the entries for now's day
func Summarize(schedule WeeklySchedule, now time.Time) []SummaryRow {
	today := WeekdayOf(now).String()
	rows := make([]SummaryRow, 0, len(schedule))
	for _, d := range schedule {
		row := SummaryRow{
			Day:     d.Day,
			Hours:   "Closed",
			IsOpen:  d.IsOpen,
			IsToday: d.Day == today,
		}
		if d.IsOpen {
			row.Hours = fmt.Sprintf("%s - %s", d.OpenTime, d.CloseTime)
		}
		rows = append(rows, row)
	}
	return rows
}
