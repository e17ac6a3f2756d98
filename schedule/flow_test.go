package schedule

import (
	"errors"
	"strings"
	"testing"
	"time"

	"resident-portal/domain"
)

func TestFlowCreatesAppointment(t *testing.T) {
	store := NewStore()
	flow := NewCreationFlow(store, "r1", domain.RoleEmployee)

	if err := flow.StartDrag(domain.CategoryAppointment); err != nil {
		t.Fatalf("start drag: %v", err)
	}
	if err := flow.Drop(date(2025, time.April, 22), NoHour); err != nil {
		t.Fatalf("drop: %v", err)
	}
	ev, err := flow.Submit("Check-up", "10:00", "11:00")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if !flow.Idle() {
		t.Fatal("flow must return to idle after submit")
	}
	want := time.Date(2025, time.April, 22, 10, 0, 0, 0, time.UTC)
	if !ev.Datetime.Equal(want) {
		t.Fatalf("expected datetime %v, got %v", want, ev.Datetime)
	}
	if ev.Category != domain.CategoryAppointment {
		t.Fatalf("unexpected category %s", ev.Category)
	}
	if ev.Description != "Check-up" {
		t.Fatalf("unexpected description %q", ev.Description)
	}
	if !strings.HasPrefix(ev.ID, "e") {
		t.Fatalf("expected time-based id, got %q", ev.ID)
	}

	got := store.Appointments("r1")
	if len(got) != 1 || got[0].ID != ev.ID {
		t.Fatalf("expected exactly the new appointment in the store, got %#v", got)
	}
	if len(store.Activities()) != 0 {
		t.Fatal("activity collection must stay untouched")
	}
}

func TestFlowCreatesSharedActivity(t *testing.T) {
	store := NewStore()
	flow := NewCreationFlow(store, "r1", domain.RoleResident)

	if err := flow.StartDrag(domain.CategoryActivity); err != nil {
		t.Fatalf("start drag: %v", err)
	}
	if err := flow.Drop(date(2025, time.April, 26), 19); err != nil {
		t.Fatalf("drop: %v", err)
	}
	ev, err := flow.Submit("Movie Night", "19:00", "21:00")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	acts := store.Activities()
	if len(acts) != 1 || acts[0].ID != ev.ID {
		t.Fatalf("expected the activity in the shared store, got %#v", acts)
	}
	if len(store.Appointments("r1")) != 0 {
		t.Fatal("appointment collection must stay untouched")
	}
}

func TestFlowResidentCannotDragAppointment(t *testing.T) {
	store := NewStore()
	flow := NewCreationFlow(store, "r1", domain.RoleResident)

	err := flow.StartDrag(domain.CategoryAppointment)
	if !errors.Is(err, domain.ErrAppointmentNotAllowed) {
		t.Fatalf("expected ErrAppointmentNotAllowed, got %v", err)
	}
	if !flow.Idle() {
		t.Fatal("rejected drag must not change state")
	}

	// Without a valid drag the rest of the gesture goes nowhere.
	if err := flow.Drop(date(2025, time.April, 22), NoHour); err == nil {
		t.Fatal("expected drop to be rejected while idle")
	}
	if _, err := flow.Submit("Check-up", "10:00", "11:00"); err == nil {
		t.Fatal("expected submit to be rejected while idle")
	}
	if len(store.Appointments("r1")) != 0 || len(store.Activities()) != 0 {
		t.Fatal("stores must stay empty")
	}
}

func TestFlowSubmitValidation(t *testing.T) {
	cases := []struct {
		name              string
		title, start, end string
	}{
		{"missing title", "", "10:00", "11:00"},
		{"missing start", "Walk", "", "11:00"},
		{"missing end", "Walk", "10:00", ""},
		{"end before start", "Walk", "14:00", "13:00"},
		{"end equals start", "Walk", "14:00", "14:00"},
		{"garbage start", "Walk", "soon", "15:00"},
		{"garbage end", "Walk", "14:00", "later"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := NewStore()
			flow := NewCreationFlow(store, "r1", domain.RoleUser)
			if err := flow.StartDrag(domain.CategoryActivity); err != nil {
				t.Fatalf("start drag: %v", err)
			}
			if err := flow.Drop(date(2025, time.April, 22), NoHour); err != nil {
				t.Fatalf("drop: %v", err)
			}

			_, err := flow.Submit(tc.title, tc.start, tc.end)
			if !domain.IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if flow.Idle() {
				t.Fatal("rejected submit must keep collecting input")
			}
			if len(store.Activities()) != 0 {
				t.Fatal("no event may be appended on rejection")
			}
		})
	}
}

func TestFlowCancel(t *testing.T) {
	store := NewStore()
	flow := NewCreationFlow(store, "r1", domain.RoleUser)
	if err := flow.StartDrag(domain.CategoryAppointment); err != nil {
		t.Fatalf("start drag: %v", err)
	}
	if err := flow.Drop(date(2025, time.April, 22), NoHour); err != nil {
		t.Fatalf("drop: %v", err)
	}

	flow.Cancel()
	if !flow.Idle() {
		t.Fatal("cancel must return to idle")
	}
	if len(store.Appointments("r1")) != 0 {
		t.Fatal("cancel must not write anything")
	}

	// Transient input is cleared: a fresh gesture is required.
	if _, err := flow.Submit("Check-up", "10:00", "11:00"); err == nil {
		t.Fatal("expected submit after cancel to be rejected")
	}
}

func TestFlowDropRejectsBadHour(t *testing.T) {
	flow := NewCreationFlow(NewStore(), "r1", domain.RoleUser)
	if err := flow.StartDrag(domain.CategoryActivity); err != nil {
		t.Fatalf("start drag: %v", err)
	}
	if err := flow.Drop(date(2025, time.April, 22), 24); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
