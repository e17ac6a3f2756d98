package schedule

import (
	"sync"

	"resident-portal/domain"
)

// Store holds the portal's two event collections: medical appointments keyed
// per resident and community activities shared by everyone. Events are only
// ever appended; there is no update or remove.
//
// A Store is handed to its consumers explicitly so tests can run against
// isolated instances. It is safe for concurrent use.
type Store struct {
	mu           sync.RWMutex
	appointments map[string][]domain.Event
	activities   []domain.Event
	rev          uint64
}

func NewStore() *Store {
	return &Store{appointments: map[string][]domain.Event{}}
}

// AddAppointment appends a medical appointment to the given resident's
// collection.
func (s *Store) AddAppointment(residentID string, ev domain.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appointments[residentID] = append(s.appointments[residentID], ev)
	s.rev++
}

// AddActivity appends a community activity to the shared collection.
func (s *Store) AddActivity(ev domain.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activities = append(s.activities, ev)
	s.rev++
}

// Appointments returns a copy of the resident's appointment list. Unknown
// residents get an empty list, never an error.
func (s *Store) Appointments(residentID string) []domain.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Event, len(s.appointments[residentID]))
	copy(out, s.appointments[residentID])
	return out
}

// Activities returns a copy of the shared activity list.
func (s *Store) Activities() []domain.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Event, len(s.activities))
	copy(out, s.activities)
	return out
}

// HasActivity reports whether an activity with the given id already exists.
// Used by the recurrence expander to avoid seeding duplicates.
func (s *Store) HasActivity(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ev := range s.activities {
		if ev.ID == id {
			return true
		}
	}
	return false
}

// Revision increments on every mutation. Aggregated views compare revisions
// to decide when a recompute is due, instead of recomputing on every read.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rev
}
