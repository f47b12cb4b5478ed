// Package registration owns the transient pending-registration state that sits between
// a registration submission and a successful email verification. Entries are keyed by
// email, carry their own verification code and expiry, and are never written to the
// durable database.
package registration

import (
	"context"
	"time"
)

// Pending is a registration attempt awaiting email-code confirmation. At most one
// entry exists per email; a new submission for the same email overwrites the prior one.
type Pending struct {
	Email         string    `json:"email"`
	FullName      string    `json:"full_name"`
	Password      string    `json:"password"`
	Department    string    `json:"department,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	InstitutionID string    `json:"institution_id"`
	Code          string    `json:"code"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// Expired reports whether the entry's code is past its expiry at the given instant.
func (p Pending) Expired(now time.Time) bool {
	return p.ExpiresAt.Before(now)
}

// Store is the pending-registration state keyed by email.
//
// Take is the one operation that must be atomic: when two verifications race on the
// same entry, exactly one caller receives it and the other observes a miss. Verification
// relies on this to guarantee a single account per pending entry.
type Store interface {
	// Put stores or overwrites the entry for p.Email.
	Put(ctx context.Context, p Pending) error

	// Get returns the entry without removing it.
	Get(ctx context.Context, email string) (Pending, bool, error)

	// Take atomically removes and returns the entry. The second of two concurrent
	// calls for the same email observes a miss.
	Take(ctx context.Context, email string) (Pending, bool, error)

	// Delete removes the entry, ignoring missing keys.
	Delete(ctx context.Context, email string) error

	// DeleteExpired purges entries whose expiry is before now and returns how many
	// were removed. Backends with native TTL expiry may report zero.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}
