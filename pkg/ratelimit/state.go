// Package ratelimit tracks the back-off requests of the Metal Archives site.
// A 429 or 503 answer starts a cooldown that is shared by every client
// instance through Redis; requests are refused locally until it elapses.
package ratelimit

import (
	"time"
)

// Redis keys for cooldown state storage.
const (
	RedisKeyBlockedUntil = "ma:rate_limit:blocked_until"
	RedisKeyStrikes      = "ma:rate_limit:strikes"
	RedisKeyLastUpdate   = "ma:rate_limit:last_update"
)

// Cooldown bounds.
const (
	// BaseCooldown is the cooldown after the first throttled response
	// that carries no Retry-After header.
	BaseCooldown = 30 * time.Second

	// MaxCooldown caps the exponential cooldown.
	MaxCooldown = 15 * time.Minute
)

// CooldownState is the current back-off state.
type CooldownState struct {
	// BlockedUntil is when requests may be sent again. Zero when never blocked.
	BlockedUntil time.Time `json:"blocked_until"`

	// Strikes counts consecutive throttled responses. A success resets it.
	Strikes int `json:"strikes"`

	// LastUpdate is when this state was last written.
	LastUpdate time.Time `json:"last_update"`
}

// IsBlocked returns true while the cooldown is active.
func (s *CooldownState) IsBlocked() bool {
	return time.Now().Before(s.BlockedUntil)
}

// IsStale returns true if the state is older than maxAge.
func (s *CooldownState) IsStale(maxAge time.Duration) bool {
	return time.Since(s.LastUpdate) > maxAge
}

// TimeUntilUnblock returns the remaining cooldown, or 0 when not blocked.
func (s *CooldownState) TimeUntilUnblock() time.Duration {
	d := time.Until(s.BlockedUntil)
	if d < 0 {
		return 0
	}
	return d
}

// NextCooldown returns the cooldown for the given strike count (1-based).
// An explicit Retry-After wins when it is longer than the computed value.
func NextCooldown(strikes int, retryAfter time.Duration) time.Duration {
	if strikes < 1 {
		strikes = 1
	}

	cooldown := BaseCooldown
	for i := 1; i < strikes; i++ {
		cooldown *= 2
		if cooldown >= MaxCooldown {
			cooldown = MaxCooldown
			break
		}
	}

	if retryAfter > cooldown {
		cooldown = retryAfter
	}
	if cooldown > MaxCooldown {
		cooldown = MaxCooldown
	}
	return cooldown
}
