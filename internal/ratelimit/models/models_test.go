package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewRateLimitKey(t *testing.T) {
	assert.Equal(t, "ibancheck:rl:ip:203.0.113.7", NewRateLimitKey(KeyKindIP, "203.0.113.7"))
	assert.Equal(t, "ibancheck:rl:ip:2001_db8__1", NewRateLimitKey(KeyKindIP, "2001:db8::1"))
	assert.Equal(t, "ibancheck:rl:client:client_admin", NewRateLimitKey(KeyKindClient, "client:admin"))
}

func TestRetryAfterSeconds(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 1, RetryAfterSeconds(now, now))
	assert.Equal(t, 1, RetryAfterSeconds(now, now.Add(-time.Minute)))
	assert.Equal(t, 1, RetryAfterSeconds(now, now.Add(200*time.Millisecond)))
	assert.Equal(t, 2, RetryAfterSeconds(now, now.Add(1500*time.Millisecond)))
	assert.Equal(t, 60, RetryAfterSeconds(now, now.Add(time.Minute)))
}
