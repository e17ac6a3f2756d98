package storage

import (
	"context"
	"reflect"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"resident-portal/domain"
)

func newTestProfiles(t *testing.T, defaults map[string]domain.Profile) (*Profiles, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewProfiles(client, defaults), mr
}

func TestProfilesFetchFallsBackToDefault(t *testing.T) {
	want := domain.Profile{Interests: []string{"Chess"}, Medications: []string{"Warfarin (5 mg, daily)"}}
	profiles, _ := newTestProfiles(t, map[string]domain.Profile{"r2": want})

	got, err := profiles.Fetch(context.Background(), "r2")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected default profile, got %#v", got)
	}

	// Unknown residents resolve to an empty profile, not an error.
	got, err = profiles.Fetch(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("fetch unknown: %v", err)
	}
	if len(got.Interests) != 0 || len(got.Medications) != 0 {
		t.Fatalf("expected empty profile, got %#v", got)
	}
}

func TestProfilesSaveThenFetch(t *testing.T) {
	profiles, _ := newTestProfiles(t, nil)

	want := domain.Profile{
		Photo:       "data:image/png;base64,xyz",
		Interests:   []string{"Painting"},
		Medications: []string{"Levothyroxine (75 mcg, daily)"},
	}
	if err := profiles.Save(context.Background(), "r3", want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := profiles.Fetch(context.Background(), "r3")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected saved profile back, got %#v", got)
	}
}

func TestProfilesCorruptValueFallsBack(t *testing.T) {
	def := domain.Profile{Interests: []string{"Knitting"}, Medications: []string{}}
	profiles, mr := newTestProfiles(t, map[string]domain.Profile{"r1": def})
	mr.Set("profile:r1", "{not json")

	got, err := profiles.Fetch(context.Background(), "r1")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !reflect.DeepEqual(got, def) {
		t.Fatalf("expected default after corrupt value, got %#v", got)
	}
	if mr.Exists("profile:r1") {
		t.Fatal("corrupt value should have been dropped")
	}
}

func TestProfilesDefaultsAreCopied(t *testing.T) {
	def := domain.Profile{Interests: []string{"Knitting"}, Medications: []string{"Aspirin (81 mg, daily)"}}
	profiles, _ := newTestProfiles(t, map[string]domain.Profile{"r1": def})

	got, err := profiles.Fetch(context.Background(), "r1")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	got.Interests[0] = "mutated"

	again, err := profiles.Fetch(context.Background(), "r1")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if again.Interests[0] != "Knitting" {
		t.Fatal("seed data must not be mutable through fetched copies")
	}
}
