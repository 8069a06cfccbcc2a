package campaign

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mailbatch/mailbatch/internal/config"
)

func newTestLimiter(t *testing.T, cfg config.RateLimitConfig, now time.Time, sleeps *[]time.Duration) *Limiter {
	t.Helper()
	l := NewLimiter(cfg, testLogger(t))
	l.sleep = func(d time.Duration) { *sleeps = append(*sleeps, d) }
	l.now = func() time.Time { return now }
	l.out = io.Discard
	return l
}

func TestLimiter_NoPauseWhenSpaced(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	var sleeps []time.Duration
	l := newTestLimiter(t, config.RateLimitConfig{EmailsPerBatch: 5, BatchDelay: 30, DelayBetweenEmails: 2}, now, &sleeps)

	reset := l.Wait(1, now.Add(-10*time.Second))
	assert.False(t, reset)
	assert.Empty(t, sleeps)
}

func TestLimiter_NoPauseBeforeFirstSend(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	var sleeps []time.Duration
	l := newTestLimiter(t, config.RateLimitConfig{EmailsPerBatch: 5, BatchDelay: 30, DelayBetweenEmails: 2}, now, &sleeps)

	reset := l.Wait(0, time.Time{})
	assert.False(t, reset)
	assert.Empty(t, sleeps)
}

func TestLimiter_ShortPauseCoversRemainder(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	var sleeps []time.Duration
	l := newTestLimiter(t, config.RateLimitConfig{EmailsPerBatch: 5, BatchDelay: 30, DelayBetweenEmails: 2}, now, &sleeps)

	reset := l.Wait(1, now.Add(-500*time.Millisecond))
	assert.False(t, reset)

	var total time.Duration
	for _, d := range sleeps {
		total += d
	}
	assert.Equal(t, 1500*time.Millisecond, total, "wait equals configured delay minus elapsed time")
}

func TestLimiter_BatchPauseAtLimit(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	var sleeps []time.Duration
	l := newTestLimiter(t, config.RateLimitConfig{EmailsPerBatch: 3, BatchDelay: 5, DelayBetweenEmails: 1}, now, &sleeps)

	reset := l.Wait(3, now)
	assert.True(t, reset, "caller must reset its counter after a batch pause")

	var total time.Duration
	for _, d := range sleeps {
		total += d
	}
	assert.Equal(t, 5*time.Second, total)
	assert.Len(t, sleeps, 5, "countdown ticks once per second")
}

func TestLimiter_FractionalDelay(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	var sleeps []time.Duration
	l := newTestLimiter(t, config.RateLimitConfig{EmailsPerBatch: 5, BatchDelay: 30, DelayBetweenEmails: 0.5}, now, &sleeps)

	reset := l.Wait(1, now)
	assert.False(t, reset)
	assert.Equal(t, []time.Duration{500 * time.Millisecond}, sleeps)
}
