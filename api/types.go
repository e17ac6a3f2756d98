package api

import (
	"context"

	"resident-portal/domain"
)

// Identity is the authenticated caller: who they are and which role they
// act under.
type Identity struct {
	UserID string
	Name   string
	Role   domain.Role
}

// Authenticator extracts the caller identity from an Authorization header.
type Authenticator interface {
	IdentityFromAuthHeader(string) (Identity, error)
}

// ProfileStore abstracts profile persistence for handlers.
type ProfileStore interface {
	Fetch(ctx context.Context, residentID string) (domain.Profile, error)
	Save(ctx context.Context, residentID string, prof domain.Profile) error
}

// Deduper prevents double-processing of event creation submissions when the
// client retries with the same idempotency key.
type Deduper interface {
	// Add records the key and returns true if it was newly added.
	Add(ctx context.Context, scope, key string) (bool, error)
	// Remove deletes a previously added key so a failed submission can be retried.
	Remove(ctx context.Context, scope, key string) error
}

// requestBodyMaxSize caps decoded request bodies. Profile photos arrive as
// data URLs, so the cap is generous.
const requestBodyMaxSize = 1 << 20 // 1 MiB
