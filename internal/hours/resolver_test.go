package hours

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2025-01-06 is a Monday
func monday(hour, minute int) time.Time {
	return time.Date(2025, 1, 6, hour, minute, 0, 0, time.UTC)
}

func mondayOnly() WeeklySchedule {
	return WeeklySchedule{
		{Day: "Monday", IsOpen: true, OpenTime: "09:00", CloseTime: "17:00"},
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		schedule WeeklySchedule
		now      time.Time
		expected Status
	}{
		{
			name:     "open during the day",
			schedule: mondayOnly(),
			now:      monday(10, 0),
			expected: Open("17:00"),
		},
		{
			name:     "before opening",
			schedule: mondayOnly(),
			now:      monday(7, 0),
			expected: ClosedBeforeOpening("09:00"),
		},
		{
			name:     "after closing does not search forward",
			schedule: mondayOnly(),
			now:      monday(18, 0),
			expected: ClosedUnknown(),
		},
		{
			name:     "opening minute is open",
			schedule: mondayOnly(),
			now:      monday(9, 0),
			expected: Open("17:00"),
		},
		{
			name:     "closing minute is closed",
			schedule: mondayOnly(),
			now:      monday(17, 0),
			expected: ClosedUnknown(),
		},
		{
			name:     "last open minute",
			schedule: mondayOnly(),
			now:      monday(16, 59),
			expected: Open("17:00"),
		},
		{
			name: "closed today finds next open day",
			schedule: WeeklySchedule{
				{Day: "Monday", IsOpen: false},
				{Day: "Wednesday", IsOpen: true, OpenTime: "10:00", CloseTime: "14:00"},
			},
			now:      monday(12, 0),
			expected: ClosedUntilFutureDay("Wednesday", "10:00"),
		},
		{
			name: "missing today finds next open day",
			schedule: WeeklySchedule{
				{Day: "Friday", IsOpen: true, OpenTime: "08:30", CloseTime: "12:00"},
			},
			now:      monday(12, 0),
			expected: ClosedUntilFutureDay("Friday", "08:30"),
		},
		{
			name: "search wraps past Saturday",
			schedule: WeeklySchedule{
				{Day: "Sunday", IsOpen: true, OpenTime: "11:00", CloseTime: "15:00"},
			},
			now:      time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC), // Friday
			expected: ClosedUntilFutureDay("Sunday", "11:00"),
		},
		{
			name: "closed duplicate entry shadows the open one",
			schedule: WeeklySchedule{
				{Day: "Monday", IsOpen: false},
				{Day: "Monday", IsOpen: true, OpenTime: "09:00", CloseTime: "17:00"},
			},
			now:      monday(10, 0),
			expected: ClosedUnknown(),
		},
		{
			name:     "empty schedule",
			schedule: WeeklySchedule{},
			now:      monday(10, 0),
			expected: ClosedUnknown(),
		},
		{
			name:     "nil schedule",
			schedule: nil,
			now:      monday(10, 0),
			expected: ClosedUnknown(),
		},
		{
			name: "next open day keeps opening time verbatim",
			schedule: WeeklySchedule{
				{Day: "Tuesday", IsOpen: true, OpenTime: "garbage", CloseTime: ""},
			},
			now:      monday(10, 0),
			expected: ClosedUntilFutureDay("Tuesday", "garbage"),
		},
		{
			name: "empty times parse to midnight so the shop never opens",
			schedule: WeeklySchedule{
				{Day: "Monday", IsOpen: true, OpenTime: "", CloseTime: ""},
			},
			now:      monday(10, 0),
			expected: ClosedUnknown(),
		},
		{
			name: "empty opening time opens from midnight",
			schedule: WeeklySchedule{
				{Day: "Monday", IsOpen: true, OpenTime: "", CloseTime: "12:00"},
			},
			now:      monday(0, 0),
			expected: Open("12:00"),
		},
		{
			name: "lowercase day names do not match",
			schedule: WeeklySchedule{
				{Day: "monday", IsOpen: true, OpenTime: "09:00", CloseTime: "17:00"},
			},
			now:      monday(10, 0),
			expected: ClosedUnknown(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Resolve(tt.schedule, tt.now))
		})
	}
}

func TestResolve_FirstMatchWins(t *testing.T) {
	schedule := WeeklySchedule{
		{Day: "Monday", IsOpen: true, OpenTime: "09:00", CloseTime: "12:00"},
		{Day: "Monday", IsOpen: true, OpenTime: "13:00", CloseTime: "20:00"},
	}

	assert.Equal(t, Open("12:00"), Resolve(schedule, monday(10, 0)))
	assert.Equal(t, ClosedUnknown(), Resolve(schedule, monday(14, 0)))
}

func TestResolve_AllDaysClosed(t *testing.T) {
	var schedule WeeklySchedule
	for _, d := range AllWeekdays() {
		schedule = append(schedule, DaySchedule{Day: d.String(), IsOpen: false, OpenTime: "09:00", CloseTime: "17:00"})
	}

	start := monday(0, 0)
	for i := 0; i < DaysInWeek*24; i++ {
		now := start.Add(time.Duration(i) * time.Hour)
		assert.Equal(t, ClosedUnknown(), Resolve(schedule, now), "at %s", now)
	}
}

func TestResolve_UsesLocationOfNow(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	// Sunday 23:00 UTC is Monday 02:00 in UTC+3
	sundayNight := time.Date(2025, 1, 5, 23, 0, 0, 0, time.UTC)
	schedule := WeeklySchedule{
		{Day: "Monday", IsOpen: true, OpenTime: "01:00", CloseTime: "05:00"},
	}

	assert.Equal(t, ClosedUntilFutureDay("Monday", "01:00"), Resolve(schedule, sundayNight))
	assert.Equal(t, Open("05:00"), Resolve(schedule, sundayNight.In(loc)))
}

func TestResolve_Idempotent(t *testing.T) {
	schedule := DefaultSchedule()
	now := monday(12, 30)
	first := Resolve(schedule, now)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Resolve(schedule, now))
	}
	assert.Equal(t, DefaultSchedule(), schedule, "schedule must not be mutated")
}

func TestResolver_SearchAfterClose(t *testing.T) {
	schedule := WeeklySchedule{
		{Day: "Monday", IsOpen: true, OpenTime: "09:00", CloseTime: "17:00"},
		{Day: "Thursday", IsOpen: true, OpenTime: "10:00", CloseTime: "16:00"},
	}

	t.Run("default keeps the past-closing gap", func(t *testing.T) {
		r := NewResolver()
		assert.False(t, r.SearchAfterClose())
		assert.Equal(t, ClosedUnknown(), r.Resolve(schedule, monday(18, 0)))
	})

	t.Run("enabled searches forward", func(t *testing.T) {
		r := NewResolver(WithSearchAfterClose(true))
		assert.True(t, r.SearchAfterClose())
		assert.Equal(t, ClosedUntilFutureDay("Thursday", "10:00"), r.Resolve(schedule, monday(18, 0)))
	})

	t.Run("enabled wraps back to today after a full week", func(t *testing.T) {
		r := NewResolver(WithSearchAfterClose(true))
		assert.Equal(t, ClosedUntilFutureDay("Monday", "09:00"), r.Resolve(mondayOnly(), monday(18, 0)))
	})

	t.Run("enabled does not change the other branches", func(t *testing.T) {
		r := NewResolver(WithSearchAfterClose(true))
		assert.Equal(t, Open("17:00"), r.Resolve(schedule, monday(10, 0)))
		assert.Equal(t, ClosedBeforeOpening("09:00"), r.Resolve(schedule, monday(8, 0)))
	})
}

func TestResolve_NeverPanics(t *testing.T) {
	values := []string{"", " ", ":", "::", "ab:cd", "9", "-1:00", "99:99", "12:", ":30", "１２:００", "24:00"}
	days := []string{"", "Monday", "MONDAY", "Funday"}

	require.NotPanics(t, func() {
		for _, day := range days {
			for _, open := range values {
				for _, closeTime := range values {
					schedule := WeeklySchedule{{Day: day, IsOpen: true, OpenTime: open, CloseTime: closeTime}}
					for h := 0; h < 24; h += 6 {
						status := Resolve(schedule, monday(h, 0))
						_ = status.Text()
						_ = NewResolver(WithSearchAfterClose(true)).Resolve(schedule, monday(h, 0))
					}
				}
			}
		}
	})
}

func ExampleResolve() {
	schedule := WeeklySchedule{
		{Day: "Monday", IsOpen: true, OpenTime: "09:00", CloseTime: "17:00"},
	}
	fmt.Println(Resolve(schedule, time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC)).Text())
	// Output: Open now • Closes at 17:00
}
