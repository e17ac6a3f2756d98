package schedule

import (
	"time"

	"resident-portal/domain"
)

// EventsOn filters events to those whose timestamp falls on the given
// calendar day, compared in the day's location. Order is preserved; zero
// matches yield an empty list.
func EventsOn(events []domain.Event, day time.Time) []domain.Event {
	y, m, d := day.Date()
	out := []domain.Event{}
	for _, ev := range events {
		ey, em, ed := ev.Datetime.In(day.Location()).Date()
		if ey == y && em == m && ed == d {
			out = append(out, ev)
		}
	}
	return out
}

// EventsAt further restricts EventsOn to events starting within the given
// hour (0-23). Day views bucket per hour row.
func EventsAt(events []domain.Event, day time.Time, hour int) []domain.Event {
	out := []domain.Event{}
	for _, ev := range EventsOn(events, day) {
		if ev.Datetime.In(day.Location()).Hour() == hour {
			out = append(out, ev)
		}
	}
	return out
}
