package ratelimit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Prometheus metrics for cooldown tracking.
var (
	maCooldownActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ma_cooldown_active",
		Help: "1 while requests to Metal Archives are paused by a cooldown",
	})

	maCooldownStartsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ma_cooldown_starts_total",
		Help: "Total number of cooldowns started by throttled responses",
	})

	maRateLimitBlocksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ma_rate_limit_blocks_total",
		Help: "Total number of requests refused locally during a cooldown",
	})
)

// Tracker records throttled responses and gates requests.
type Tracker struct {
	redis  *redis.Client
	logger zerolog.Logger
}

// NewTracker creates a new cooldown tracker.
func NewTracker(redisClient *redis.Client, logger zerolog.Logger) *Tracker {
	return &Tracker{
		redis:  redisClient,
		logger: logger,
	}
}

// GetState retrieves the current cooldown state from Redis.
// Returns a zero (unblocked) state if nothing was recorded yet.
func (t *Tracker) GetState(ctx context.Context) (*CooldownState, error) {
	blockedUntil, err := t.redis.Get(ctx, RedisKeyBlockedUntil).Int64()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("get blocked until: %w", err)
	}

	strikes, err := t.redis.Get(ctx, RedisKeyStrikes).Int()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("get strikes: %w", err)
	}

	lastUpdateStr, err := t.redis.Get(ctx, RedisKeyLastUpdate).Result()
	if err == redis.Nil {
		return &CooldownState{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get last update: %w", err)
	}

	var lastUpdate time.Time
	if err := json.Unmarshal([]byte(lastUpdateStr), &lastUpdate); err != nil {
		return nil, fmt.Errorf("parse last update: %w", err)
	}

	state := &CooldownState{
		Strikes:    strikes,
		LastUpdate: lastUpdate,
	}
	if blockedUntil > 0 {
		state.BlockedUntil = time.Unix(blockedUntil, 0)
	}
	return state, nil
}

// UpdateFromResponse records the outcome of a request. 429 and 503 start
// or extend a cooldown; any 2xx clears the strike counter.
func (t *Tracker) UpdateFromResponse(ctx context.Context, statusCode int, headers http.Header) error {
	switch {
	case statusCode == http.StatusTooManyRequests || statusCode == http.StatusServiceUnavailable:
		return t.recordStrike(ctx, statusCode, headers)
	case statusCode >= 200 && statusCode < 300:
		return t.clearStrikes(ctx)
	default:
		return nil
	}
}

func (t *Tracker) recordStrike(ctx context.Context, statusCode int, headers http.Header) error {
	state, err := t.GetState(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	state.Strikes++
	cooldown := NextCooldown(state.Strikes, ParseRetryAfter(headers.Get("Retry-After"), now))
	state.BlockedUntil = now.Add(cooldown)
	state.LastUpdate = now

	if err := t.store(ctx, state); err != nil {
		return err
	}

	maCooldownStartsTotal.Inc()
	maCooldownActive.Set(1)

	t.logger.Warn().
		Int("status", statusCode).
		Int("strikes", state.Strikes).
		Dur("cooldown", cooldown).
		Time("blocked_until", state.BlockedUntil).
		Msg("Site asked us to back off - cooldown started")

	return nil
}

func (t *Tracker) clearStrikes(ctx context.Context) error {
	strikes, err := t.redis.Get(ctx, RedisKeyStrikes).Int()
	if err == redis.Nil || (err == nil && strikes == 0) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("get strikes: %w", err)
	}

	if err := t.redis.Set(ctx, RedisKeyStrikes, 0, 0).Err(); err != nil {
		return fmt.Errorf("reset strikes: %w", err)
	}

	maCooldownActive.Set(0)
	t.logger.Info().Int("previous_strikes", strikes).Msg("Site responding normally again")
	return nil
}

func (t *Tracker) store(ctx context.Context, state *CooldownState) error {
	lastUpdateJSON, err := json.Marshal(state.LastUpdate)
	if err != nil {
		return fmt.Errorf("marshal last update: %w", err)
	}

	pipe := t.redis.Pipeline()
	pipe.Set(ctx, RedisKeyBlockedUntil, state.BlockedUntil.Unix(), 0)
	pipe.Set(ctx, RedisKeyStrikes, state.Strikes, 0)
	pipe.Set(ctx, RedisKeyLastUpdate, lastUpdateJSON, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store cooldown state in redis: %w", err)
	}
	return nil
}

// ShouldAllowRequest reports whether a request may be sent now.
func (t *Tracker) ShouldAllowRequest(ctx context.Context) (bool, error) {
	state, err := t.GetState(ctx)
	if err != nil {
		return false, fmt.Errorf("get cooldown state: %w", err)
	}

	if state.IsBlocked() {
		t.logger.Debug().
			Int("strikes", state.Strikes).
			Dur("remaining", state.TimeUntilUnblock()).
			Msg("Cooldown active - blocking request")

		maRateLimitBlocksTotal.Inc()
		return false, nil
	}

	return true, nil
}

// ParseRetryAfter parses a Retry-After header value given either as
// delta-seconds or as an HTTP date. Returns 0 when absent or invalid.
func ParseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0
		}
		return time.Duration(seconds) * time.Second
	}

	if at, err := http.ParseTime(value); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}
