package schedule

import (
	"sort"
	"sync"

	"resident-portal/domain"
)

// Aggregate merges a resident's appointments with the shared activities into
// one chronological list. Each entry carries the display color derived from
// its category. The function is pure: same inputs, same output.
//
// Order is total and deterministic: ascending datetime, then appointments
// before activities, then id.
func Aggregate(appointments, activities []domain.Event) []domain.Event {
	merged := make([]domain.Event, 0, len(appointments)+len(activities))
	for _, ev := range appointments {
		ev.Category = domain.CategoryAppointment
		ev.Color = ev.Category.Color()
		merged = append(merged, ev)
	}
	for _, ev := range activities {
		ev.Category = domain.CategoryActivity
		ev.Color = ev.Category.Color()
		merged = append(merged, ev)
	}
	sort.Slice(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		if !a.Datetime.Equal(b.Datetime) {
			return a.Datetime.Before(b.Datetime)
		}
		if a.Category != b.Category {
			return a.Category == domain.CategoryAppointment
		}
		return a.ID < b.ID
	})
	return merged
}

// Calendar is the aggregated view of one resident's schedule. The merged
// list is cached and recomputed only when the backing store has changed or
// Invalidate was called, not on every read.
type Calendar struct {
	store      *Store
	residentID string

	mu     sync.Mutex
	cached []domain.Event
	rev    uint64
	valid  bool
}

func NewCalendar(store *Store, residentID string) *Calendar {
	return &Calendar{store: store, residentID: residentID}
}

// Events returns the aggregated event list, recomputing it first if the
// store has been mutated since the last call.
func (c *Calendar) Events() []domain.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	rev := c.store.Revision()
	if !c.valid || rev != c.rev {
		c.cached = Aggregate(c.store.Appointments(c.residentID), c.store.Activities())
		c.rev = rev
		c.valid = true
	}
	out := make([]domain.Event, len(c.cached))
	copy(out, c.cached)
	return out
}

// Invalidate forces the next Events call to recompute.
func (c *Calendar) Invalidate() {
	c.mu.Lock()
	c.valid = false
	c.mu.Unlock()
}

// CalendarSet hands out one Calendar per resident, creating them on demand.
type CalendarSet struct {
	store *Store

	mu        sync.Mutex
	calendars map[string]*Calendar
}

func NewCalendarSet(store *Store) *CalendarSet {
	return &CalendarSet{store: store, calendars: map[string]*Calendar{}}
}

// Get returns the calendar for the given resident.
func (cs *CalendarSet) Get(residentID string) *Calendar {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cal, ok := cs.calendars[residentID]
	if !ok {
		cal = NewCalendar(cs.store, residentID)
		cs.calendars[residentID] = cal
	}
	return cal
}
