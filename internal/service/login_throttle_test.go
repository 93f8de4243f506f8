package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoginThrottleBudgetPerKey(t *testing.T) {
	lt := newLoginThrottle(2, time.Hour)
	defer lt.close()

	assert.True(t, lt.allow("alice@example.com"))
	assert.True(t, lt.allow("alice@example.com"))
	assert.False(t, lt.allow("alice@example.com"))

	// Each key has its own bucket.
	assert.True(t, lt.allow("bob@example.com"))
}

func TestLoginThrottleRefills(t *testing.T) {
	lt := newLoginThrottle(1, 100*time.Millisecond)
	defer lt.close()

	assert.True(t, lt.allow("alice@example.com"))
	assert.False(t, lt.allow("alice@example.com"))

	time.Sleep(150 * time.Millisecond)
	assert.True(t, lt.allow("alice@example.com"))
}

func TestLoginThrottleCloseIdempotent(t *testing.T) {
	lt := newLoginThrottle(5, time.Minute)
	lt.close()
	lt.close()
}
