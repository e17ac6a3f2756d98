package schedule

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/teambition/rrule-go"

	"resident-portal/domain"
)

// RecurringActivity seeds a community activity that repeats, e.g. a weekly
// bingo night. Start carries both the first occurrence and the time of day.
type RecurringActivity struct {
	ID          string
	Description string
	Start       time.Time
	RRule       string // RFC 5545 recurrence rule, e.g. "FREQ=WEEKLY;BYDAY=FR"
}

// Expander materializes recurring activities into concrete store entries
// within a sliding horizon. Refresh is idempotent: occurrences already in
// the store are skipped, so it can run on a schedule.
type Expander struct {
	store   *Store
	seeds   []RecurringActivity
	horizon time.Duration
}

func NewExpander(store *Store, seeds []RecurringActivity, horizon time.Duration) *Expander {
	if horizon <= 0 {
		horizon = 30 * 24 * time.Hour
	}
	return &Expander{store: store, seeds: seeds, horizon: horizon}
}

// Refresh expands every seed between now and now+horizon and returns how
// many occurrences were added. A malformed rule fails the whole refresh so
// seed files get fixed instead of silently dropping activities.
func (e *Expander) Refresh(now time.Time) (int, error) {
	added := 0
	until := now.Add(e.horizon)
	for _, seed := range e.seeds {
		rule, err := rrule.StrToRRule(seed.RRule)
		if err != nil {
			return added, fmt.Errorf("recurring activity %s: %w", seed.ID, err)
		}
		rule.DTStart(seed.Start)
		for _, occ := range rule.Between(now, until, true) {
			id := occurrenceID(seed.ID, occ)
			if e.store.HasActivity(id) {
				continue
			}
			e.store.AddActivity(domain.NewEvent(id, domain.CategoryActivity, occ, seed.Description))
			added++
		}
	}
	if added > 0 {
		log.WithFields(log.Fields{"added": added, "horizon": e.horizon.String()}).Info("expanded recurring activities")
	}
	return added, nil
}

func occurrenceID(seedID string, occ time.Time) string {
	return seedID + ":" + occ.Format("20060102T1504")
}
