package domain

import (
	"fmt"
	"time"
)

// Category partitions calendar entries into resident-scoped medical
// appointments and community activities shared by every resident.
type Category string

const (
	CategoryAppointment Category = "appointment"
	CategoryActivity    Category = "activity"
)

// Portal theme colors. One fixed color per category; never settable on its own.
const (
	appointmentColor = "#8B2323"
	activityColor    = "#4682B4"
)

// ParseCategory converts a wire value into a Category.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryAppointment:
		return CategoryAppointment, nil
	case CategoryActivity:
		return CategoryActivity, nil
	default:
		return "", fmt.Errorf("unknown event category %q", s)
	}
}

// Color returns the display color derived from the category.
func (c Category) Color() string {
	switch c {
	case CategoryAppointment:
		return appointmentColor
	default:
		return activityColor
	}
}

// Event is a single calendar entry. Events are immutable once created; the
// portal has no edit or delete operation for them.
type Event struct {
	ID          string    `json:"id"`
	Category    Category  `json:"category"`
	Datetime    time.Time `json:"datetime"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
}

// NewEvent builds an event with its color derived from the category.
func NewEvent(id string, cat Category, at time.Time, description string) Event {
	return Event{
		ID:          id,
		Category:    cat,
		Datetime:    at,
		Description: description,
		Color:       cat.Color(),
	}
}
