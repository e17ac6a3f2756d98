package storage

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"resident-portal/domain"
)

// Profiles persists resident profile edits (photo, interests, medications)
// in a Redis-protocol key-value store. Residents that were never edited
// resolve to their seeded defaults, so a wiped store simply falls back to
// the mock data.
type Profiles struct {
	redis    *redis.Client
	defaults map[string]domain.Profile
}

func NewProfiles(client *redis.Client, defaults map[string]domain.Profile) *Profiles {
	if defaults == nil {
		defaults = map[string]domain.Profile{}
	}
	return &Profiles{redis: client, defaults: defaults}
}

// Fetch returns the stored profile for the resident, or the seeded default
// when nothing has been written yet. A corrupt stored value is dropped and
// the default returned instead of failing the read.
func (p *Profiles) Fetch(ctx context.Context, residentID string) (domain.Profile, error) {
	data, err := p.redis.Get(ctx, profileKey(residentID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			return domain.Profile{}, err
		}
		return p.defaultFor(residentID), nil
	}
	var prof domain.Profile
	if err := json.Unmarshal(data, &prof); err != nil {
		_ = p.redis.Del(ctx, profileKey(residentID)).Err()
		return p.defaultFor(residentID), nil
	}
	return prof, nil
}

// Save stores the full profile for the resident. Writes are whole-value: a
// profile is either replaced entirely or left as it was.
func (p *Profiles) Save(ctx context.Context, residentID string, prof domain.Profile) error {
	data, err := json.Marshal(prof)
	if err != nil {
		return err
	}
	return p.redis.Set(ctx, profileKey(residentID), data, 0).Err()
}

func (p *Profiles) defaultFor(residentID string) domain.Profile {
	prof, ok := p.defaults[residentID]
	if !ok {
		return domain.Profile{Interests: []string{}, Medications: []string{}}
	}
	// Copy the slices so callers cannot mutate the seed data.
	out := domain.Profile{Photo: prof.Photo}
	out.Interests = append([]string{}, prof.Interests...)
	out.Medications = append([]string{}, prof.Medications...)
	return out
}

func profileKey(residentID string) string {
	return "profile:" + residentID
}
