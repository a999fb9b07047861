package ports

import (
	"context"
	"time"
)

// ReplayOutcome is the result of a check-and-reserve on a replay key.
type ReplayOutcome int

const (
	// ReplayFresh means the key was unseen and is now reserved.
	ReplayFresh ReplayOutcome = iota
	// ReplayAlreadyUsed means the key was reserved earlier and the
	// challenge must be rejected.
	ReplayAlreadyUsed
)

// ReplayStore records consumed challenge nonces so each challenge
// authenticates at most once.
type ReplayStore interface {
	// CheckAndReserve atomically tests whether key was seen before and
	// reserves it for at least ttl if it was not. Concurrent calls with
	// the same key yield ReplayFresh exactly once. An error means the
	// store could not answer and the caller must fail closed.
	CheckAndReserve(ctx context.Context, key string, ttl time.Duration) (ReplayOutcome, error)
}
