package schedule

import (
	"time"

	"resident-portal/domain"
)

// NoHour marks a drop target without an hour component. Only the day view
// targets individual hour rows.
const NoHour = -1

type flowState int

const (
	stateIdle flowState = iota
	stateDragging
	stateCollecting
)

// CreationFlow is the short-lived interaction that turns a drag-and-drop
// gesture into a stored event: Idle -> Dragging (drag started) ->
// CollectingInput (dropped on a cell) -> Idle (submitted or cancelled).
//
// Every rejection leaves the flow and both event collections exactly as they
// were; an event is either appended whole or not at all.
type CreationFlow struct {
	store      *Store
	residentID string
	role       domain.Role

	state      flowState
	category   domain.Category
	anchorDate time.Time
	// anchorHour records which hour row received the drop. It is validated
	// but informational: the stored datetime comes from the submitted start
	// time, not the drop position.
	anchorHour int
}

func NewCreationFlow(store *Store, residentID string, role domain.Role) *CreationFlow {
	return &CreationFlow{store: store, residentID: residentID, role: role, anchorHour: NoHour}
}

// Idle reports whether the flow is back at its resting state.
func (f *CreationFlow) Idle() bool { return f.state == stateIdle }

// StartDrag begins the interaction with the dragged category. Residents may
// not drag appointments; the attempt is rejected and the flow stays idle.
func (f *CreationFlow) StartDrag(cat domain.Category) error {
	if !f.role.CanSchedule(cat) {
		return domain.ErrAppointmentNotAllowed
	}
	f.state = stateDragging
	f.category = cat
	return nil
}

// Drop records the calendar cell the category was dropped on. The date (and
// hour, when the day view targets an hour row) anchors the event to be
// created. Pass NoHour outside the day view.
func (f *CreationFlow) Drop(date time.Time, hour int) error {
	if f.state != stateDragging {
		return domain.ValidationError{Reason: "nothing is being dragged"}
	}
	if hour != NoHour && (hour < 0 || hour > 23) {
		return domain.ValidationError{Reason: "hour must be between 0 and 23"}
	}
	y, m, d := date.Date()
	f.anchorDate = time.Date(y, m, d, 0, 0, 0, 0, date.Location())
	f.anchorHour = hour
	f.state = stateCollecting
	return nil
}

// Submit validates the collected form input and appends the new event to the
// appropriate collection: appointments for this resident, or the shared
// activities. On success the flow resets to idle.
func (f *CreationFlow) Submit(title, start, end string) (domain.Event, error) {
	if f.state != stateCollecting {
		return domain.Event{}, domain.ValidationError{Reason: "no drop target recorded"}
	}
	if title == "" || start == "" || end == "" {
		return domain.Event{}, domain.ValidationError{Reason: "please fill in all fields"}
	}
	startAt, err := f.atAnchor(start)
	if err != nil {
		return domain.Event{}, domain.ValidationError{Reason: "invalid start time"}
	}
	endAt, err := f.atAnchor(end)
	if err != nil {
		return domain.Event{}, domain.ValidationError{Reason: "invalid end time"}
	}
	if !endAt.After(startAt) {
		return domain.Event{}, domain.ValidationError{Reason: "end time must be after start time"}
	}

	ev := domain.NewEvent(newEventID(), f.category, startAt, title)
	if f.category == domain.CategoryAppointment {
		f.store.AddAppointment(f.residentID, ev)
	} else {
		f.store.AddActivity(ev)
	}
	f.reset()
	return ev, nil
}

// Cancel abandons the interaction without touching any store.
func (f *CreationFlow) Cancel() { f.reset() }

func (f *CreationFlow) reset() {
	f.state = stateIdle
	f.category = ""
	f.anchorDate = time.Time{}
	f.anchorHour = NoHour
}

// atAnchor combines an HH:MM clock value with the anchor date. Only the
// start instant is persisted; the end time exists for validation.
func (f *CreationFlow) atAnchor(clock string) (time.Time, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := f.anchorDate.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, f.anchorDate.Location()), nil
}
