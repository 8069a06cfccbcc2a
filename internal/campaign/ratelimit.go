package campaign

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mailbatch/mailbatch/internal/config"
	"github.com/mailbatch/mailbatch/internal/logger"
)

// Limiter decides how long to pause before the next send. It is consulted
// immediately before every send attempt, retries included. Pauses block the
// caller; there is no cancellation mid-pause.
type Limiter struct {
	emailsPerBatch int
	batchDelay     time.Duration
	delayBetween   time.Duration

	log *logger.Logger

	// injectable for tests
	sleep func(time.Duration)
	now   func() time.Time
	out   io.Writer
}

// NewLimiter creates a Limiter from the configured rate-limit parameters.
func NewLimiter(cfg config.RateLimitConfig, log *logger.Logger) *Limiter {
	return &Limiter{
		emailsPerBatch: cfg.EmailsPerBatch,
		batchDelay:     time.Duration(cfg.BatchDelay) * time.Second,
		delayBetween:   time.Duration(cfg.DelayBetweenEmails * float64(time.Second)),
		log:            log.WithComponent("ratelimit"),
		sleep:          time.Sleep,
		now:            time.Now,
		out:            os.Stdout,
	}
}

// Wait blocks until the next send is allowed. It returns true when a full
// batch pause was taken, in which case the caller must reset its sent
// counter to zero. A zero lastSend means no message has been sent yet.
func (l *Limiter) Wait(sentCount int, lastSend time.Time) bool {
	if sentCount >= l.emailsPerBatch {
		l.log.Info().
			Int("sent", sentCount).
			Dur("delay", l.batchDelay).
			Msg("batch limit reached, pausing")
		l.countdown(l.batchDelay)
		return true
	}

	if lastSend.IsZero() {
		return false
	}
	if elapsed := l.now().Sub(lastSend); elapsed < l.delayBetween {
		wait := l.delayBetween - elapsed
		fmt.Fprintf(l.out, "\rWaiting %.1f seconds...", wait.Seconds())
		l.sleep(wait)
		fmt.Fprintf(l.out, "\r%s\r", "                           ")
	}
	return false
}

// countdown sleeps for the batch delay one second at a time, showing the
// remaining time on the console.
func (l *Limiter) countdown(d time.Duration) {
	remaining := int(d.Round(time.Second) / time.Second)
	for ; remaining > 0; remaining-- {
		fmt.Fprintf(l.out, "\rResuming in %d seconds...  ", remaining)
		l.sleep(time.Second)
	}
	fmt.Fprintf(l.out, "\rResuming now!                           \n")
}
