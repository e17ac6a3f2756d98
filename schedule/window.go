package schedule

import (
	"fmt"
	"time"
)

// Granularity selects the calendar view mode.
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

// ParseGranularity converts a wire value into a Granularity.
func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(s) {
	case GranularityDay, GranularityWeek, GranularityMonth:
		return Granularity(s), nil
	default:
		return "", fmt.Errorf("unknown view %q", s)
	}
}

// Day is one cell of a calendar view. InMonth is false for the spill dates a
// month grid includes from the previous and next months, so a renderer can
// dim them.
type Day struct {
	Date    time.Time `json:"date"`
	InMonth bool      `json:"inMonth"`
}

// monthGridDays is six full weeks. A five-week grid would clip trailing days
// of longer months, so the six-week grid is used for both computation and
// rendering.
const monthGridDays = 42

// Window produces the ordered list of calendar dates a view displays:
//
//   - day: the reference date alone
//   - week: seven dates starting the Sunday on/before the reference date
//   - month: a 6x7 grid starting the Sunday on/before the 1st of the month
func Window(ref time.Time, g Granularity) []Day {
	ref = truncateToDay(ref)
	switch g {
	case GranularityDay:
		return []Day{{Date: ref, InMonth: true}}
	case GranularityWeek:
		start := ref.AddDate(0, 0, -int(ref.Weekday()))
		days := make([]Day, 0, 7)
		for i := 0; i < 7; i++ {
			days = append(days, Day{Date: start.AddDate(0, 0, i), InMonth: true})
		}
		return days
	default:
		first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
		start := first.AddDate(0, 0, -int(first.Weekday()))
		days := make([]Day, 0, monthGridDays)
		for i := 0; i < monthGridDays; i++ {
			d := start.AddDate(0, 0, i)
			days = append(days, Day{
				Date:    d,
				InMonth: d.Month() == ref.Month() && d.Year() == ref.Year(),
			})
		}
		return days
	}
}

// Previous moves the reference date one step back for the given view.
func Previous(ref time.Time, g Granularity) time.Time {
	return step(ref, g, -1)
}

// Next moves the reference date one step forward for the given view.
func Next(ref time.Time, g Granularity) time.Time {
	return step(ref, g, 1)
}

func step(ref time.Time, g Granularity, dir int) time.Time {
	ref = truncateToDay(ref)
	switch g {
	case GranularityDay:
		return ref.AddDate(0, 0, dir)
	case GranularityWeek:
		return ref.AddDate(0, 0, 7*dir)
	default:
		return addMonth(ref, dir)
	}
}

// addMonth shifts by whole months, clamping the day-of-month so Jan 31 lands
// on Feb 28 instead of overflowing into March.
func addMonth(ref time.Time, months int) time.Time {
	y, m, d := ref.Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, ref.Location()).AddDate(0, months, 0)
	if last := daysIn(first); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, ref.Location())
}

func daysIn(first time.Time) int {
	return first.AddDate(0, 1, -1).Day()
}

// HeaderLabel formats the label shown above the calendar for the view.
func HeaderLabel(ref time.Time, g Granularity) string {
	ref = truncateToDay(ref)
	switch g {
	case GranularityDay:
		return ref.Format("Monday, January 2, 2006")
	case GranularityWeek:
		days := Window(ref, GranularityWeek)
		first, last := days[0].Date, days[6].Date
		return first.Format("Jan 2") + " - " + last.Format("Jan 2, 2006")
	default:
		return ref.Format("January 2006")
	}
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
