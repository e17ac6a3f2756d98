package storage

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"resident-portal/domain"
	"resident-portal/schedule"
)

const seedTimeLayout = "2006-01-02T15:04"

// EventSeed is a calendar entry as written in a seed file. Datetime is local
// wall time in the portal's display timezone.
type EventSeed struct {
	ID          string `yaml:"id"`
	Datetime    string `yaml:"datetime"`
	Description string `yaml:"description"`
}

// RecurringSeed describes a repeating community activity.
type RecurringSeed struct {
	ID          string `yaml:"id"`
	Description string `yaml:"description"`
	Start       string `yaml:"start"`
	RRule       string `yaml:"rrule"`
}

// Seed is the portal's entire mock dataset. The built-in defaults can be
// replaced wholesale by a YAML file.
type Seed struct {
	Residents      []domain.Resident           `yaml:"residents"`
	Profiles       map[string]domain.Profile   `yaml:"profiles"`
	Appointments   map[string][]EventSeed      `yaml:"appointments"`
	Activities     []EventSeed                 `yaml:"activities"`
	Recurring      []RecurringSeed             `yaml:"recurring"`
	CommunityPosts []domain.Post               `yaml:"community_posts"`
	PersonalPosts  map[string][]domain.Post    `yaml:"personal_posts"`
	Requests       map[string][]domain.Request `yaml:"requests"`
}

// LoadSeed reads a YAML seed file, or returns the built-in defaults when
// path is empty.
func LoadSeed(path string) (*Seed, error) {
	if path == "" {
		return DefaultSeed(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var s Seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &s, nil
}

// Populate appends the seeded appointments and activities to the store.
// Seed datetimes are interpreted in loc.
func (s *Seed) Populate(store *schedule.Store, loc *time.Location) error {
	for residentID, seeds := range s.Appointments {
		for _, es := range seeds {
			at, err := time.ParseInLocation(seedTimeLayout, es.Datetime, loc)
			if err != nil {
				return fmt.Errorf("appointment %s: %w", es.ID, err)
			}
			store.AddAppointment(residentID, domain.NewEvent(es.ID, domain.CategoryAppointment, at, es.Description))
		}
	}
	for _, es := range s.Activities {
		at, err := time.ParseInLocation(seedTimeLayout, es.Datetime, loc)
		if err != nil {
			return fmt.Errorf("activity %s: %w", es.ID, err)
		}
		store.AddActivity(domain.NewEvent(es.ID, domain.CategoryActivity, at, es.Description))
	}
	return nil
}

// RecurringActivities converts the recurring seeds for the expander.
func (s *Seed) RecurringActivities(loc *time.Location) ([]schedule.RecurringActivity, error) {
	out := make([]schedule.RecurringActivity, 0, len(s.Recurring))
	for _, rs := range s.Recurring {
		start, err := time.ParseInLocation(seedTimeLayout, rs.Start, loc)
		if err != nil {
			return nil, fmt.Errorf("recurring activity %s: %w", rs.ID, err)
		}
		out = append(out, schedule.RecurringActivity{
			ID:          rs.ID,
			Description: rs.Description,
			Start:       start,
			RRule:       rs.RRule,
		})
	}
	return out, nil
}

// DefaultSeed returns the built-in mock dataset: three residents with their
// appointments, the shared community activities, feed posts and open
// requests.
func DefaultSeed() *Seed {
	now := time.Now().UnixMilli()
	return &Seed{
		Residents: []domain.Resident{
			{ID: "r1", Name: "Alice Johnson", Room: "201A", Age: 82},
			{ID: "r2", Name: "Bob Smith", Room: "103B", Age: 90},
			{ID: "r3", Name: "Carol Lee", Room: "305C", Age: 78},
		},
		Profiles: map[string]domain.Profile{
			"r1": {
				Interests:   []string{"Knitting", "Reading mystery novels", "Bird watching", "Classical music", "Gardening"},
				Medications: []string{"Lisinopril (10 mg, daily)", "Atorvastatin (20 mg, nightly)", "Aspirin (81 mg, daily)"},
			},
			"r2": {
				Interests:   []string{"Chess", "History documentaries", "Woodworking", "Jazz music"},
				Medications: []string{"Metformin (500 mg, twice daily)", "Warfarin (5 mg, daily)"},
			},
			"r3": {
				Interests:   []string{"Painting", "Cooking", "Traveling", "Playing piano", "Book club"},
				Medications: []string{"Levothyroxine (75 mcg, daily)"},
			},
		},
		Appointments: map[string][]EventSeed{
			"r1": {
				{ID: "a1", Datetime: "2025-04-22T10:00", Description: "Check-up with Dr. Patel"},
				{ID: "a2", Datetime: "2025-04-25T14:30", Description: "PT session, Room 2"},
			},
			"r2": {
				{ID: "b1", Datetime: "2025-04-23T09:00", Description: "Dental cleaning"},
			},
			"r3": {
				{ID: "c1", Datetime: "2025-04-24T11:15", Description: "Vision check"},
			},
		},
		Activities: []EventSeed{
			{ID: "e1", Datetime: "2025-04-21T18:00", Description: "Bingo Night (Common Room)"},
			{ID: "e2", Datetime: "2025-04-23T15:00", Description: "Garden Club Walk"},
			{ID: "e3", Datetime: "2025-04-26T19:00", Description: "Movie Night: classic films"},
		},
		Recurring: []RecurringSeed{
			{ID: "bingo", Description: "Bingo Night (Common Room)", Start: "2025-05-02T19:00", RRule: "FREQ=WEEKLY;BYDAY=FR"},
		},
		CommunityPosts: []domain.Post{
			{
				ID:        "c1",
				Author:    "Nursing Home Admin",
				Timestamp: now - 2*60*60*1000,
				Content:   "Reminder: Monthly Bingo night this Friday at 7 PM in the common room!",
				Likes:     5,
				Comments: []domain.Comment{
					{ID: "c1c1", Author: "Alice Johnson", Text: "Looking forward to it!", Timestamp: now - 30*60*1000},
					{ID: "c1c2", Author: "Bob Smith", Text: "I hope they have prizes!", Timestamp: now - 15*60*1000},
				},
			},
			{
				ID:        "c2",
				Author:    "Activity Coordinator",
				Timestamp: now - 24*60*60*1000,
				Content:   "Photos from our Spring Garden planting are now available in the gallery.",
				Likes:     8,
				Comments:  []domain.Comment{},
			},
		},
		PersonalPosts: map[string][]domain.Post{
			"r1": {
				{ID: "r1p1", Author: "Alice Johnson", Timestamp: now - 30*60*1000, Content: "Had a lovely walk in the garden today", Likes: 3, Comments: []domain.Comment{}},
				{
					ID: "r1p2", Author: "Alice Johnson", Timestamp: now - 5*60*60*1000,
					Content: "Lunch was delicious! Thank you to the kitchen staff.", Likes: 7,
					Comments: []domain.Comment{
						{ID: "r1p2c1", Author: "Kitchen Staff", Text: "You're welcome! Glad you enjoyed it.", Timestamp: now - 4*60*60*1000},
					},
				},
			},
			"r2": {
				{ID: "r2p1", Author: "Bob Smith", Timestamp: now - 10*60*1000, Content: "Enjoyed the live piano concert this afternoon", Likes: 4, Comments: []domain.Comment{}},
			},
		},
		Requests: map[string][]domain.Request{
			"r1": {
				{ID: "r1-rq-1", Type: domain.RequestItem, Text: "Extra blanket for the cold nights", Timestamp: now - 3*60*60*1000},
				{ID: "r1-rq-2", Type: domain.RequestService, Text: "Help rearranging the bookshelf", Timestamp: now - 26*60*60*1000, Completed: true},
			},
			"r2": {
				{ID: "r2-rq-1", Type: domain.RequestService, Text: "Wheelchair wheel squeaks, needs oiling", Timestamp: now - 60*60*1000},
			},
		},
	}
}
