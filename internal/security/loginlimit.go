package security

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Login lockout defaults.
const (
	// loginLockoutThreshold is the failed-attempt count that triggers a lockout.
	loginLockoutThreshold = 5
	// loginLockoutWindow bounds how long failed attempts are remembered.
	loginLockoutWindow = 15 * time.Minute
)

// LoginLimiter throttles repeated failed logins per account. A nil limiter
// or a limiter without a Redis client disables throttling entirely.
type LoginLimiter struct {
	client *redis.Client
}

// NewLoginLimiter constructs a LoginLimiter. addr may be empty to disable.
func NewLoginLimiter(addr, password string, dbIndex int) *LoginLimiter {
	if addr == "" {
		return &LoginLimiter{}
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       dbIndex,
	})
	return &LoginLimiter{client: client}
}

// lockoutKey builds the Redis key for one account's failure counter.
func lockoutKey(email string) string {
	return fmt.Sprintf("login:failures:%s", email)
}

// Blocked reports whether the account has exceeded the failure threshold
// within the lockout window. Redis errors fail open.
func (l *LoginLimiter) Blocked(ctx context.Context, email string) bool {
	if l == nil || l.client == nil {
		return false
	}
	count, errGet := l.client.Get(ctx, lockoutKey(email)).Int64()
	if errGet != nil {
		return false
	}
	return count >= loginLockoutThreshold
}

// RecordFailure increments the failure counter and refreshes its expiry.
func (l *LoginLimiter) RecordFailure(ctx context.Context, email string) {
	if l == nil || l.client == nil {
		return
	}
	key := lockoutKey(email)
	if errIncr := l.client.Incr(ctx, key).Err(); errIncr != nil {
		return
	}
	_ = l.client.Expire(ctx, key, loginLockoutWindow).Err()
}

// Reset clears the failure counter after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, email string) {
	if l == nil || l.client == nil {
		return
	}
	_ = l.client.Del(ctx, lockoutKey(email)).Err()
}
