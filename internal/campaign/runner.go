package campaign

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/mailbatch/mailbatch/internal/config"
	"github.com/mailbatch/mailbatch/internal/email"
	"github.com/mailbatch/mailbatch/internal/logger"
)

const (
	// maxAttempts is the total attempt budget per recipient, reconnects
	// included.
	maxAttempts = 3
	// reconnectWait is the fixed pause before re-dialing a dropped session.
	reconnectWait = 5 * time.Second
)

// Runner drives the send loop: it iterates recipients in order, applies the
// rate limiter before every attempt, delivers through the transport with
// bounded reconnect retries, and records one outcome row per recipient.
//
// The session counters (sentCount, lastSend) belong to the Runner alone and
// are handed to the limiter explicitly on each call.
type Runner struct {
	cfg       *config.Config
	transport email.Transport
	body      *Template
	subject   *Template
	limiter   *Limiter
	log       *logger.Logger
	dryRun    bool

	sentCount int
	lastSend  time.Time

	// injectable for tests
	sleep func(time.Duration)
	now   func() time.Time
	out   io.Writer
}

// NewRunner creates a Runner. The subject line is compiled once here so a
// malformed subject fails before any network activity.
func NewRunner(cfg *config.Config, transport email.Transport, body *Template, dryRun bool, log *logger.Logger) (*Runner, error) {
	subject, err := ParseTemplate(cfg.Email.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid subject: %w", err)
	}

	return &Runner{
		cfg:       cfg,
		transport: transport,
		body:      body,
		subject:   subject,
		limiter:   NewLimiter(cfg.RateLimit, log),
		log:       log.WithComponent("campaign"),
		dryRun:    dryRun,
		sleep:     time.Sleep,
		now:       time.Now,
		out:       os.Stdout,
	}, nil
}

// Run processes every recipient in order. It returns nil when the last
// recipient has been processed, per-recipient failures included; it returns
// an error only on fatal conditions (pre-flight failure, session setup
// failure, reconnect retries exhausted), which abort the rest of the run.
func (r *Runner) Run(ctx context.Context, recipients []Recipient) error {
	runID := uuid.NewString()
	log := r.log
	log.Info().
		Str("run_id", runID).
		Int("recipients", len(recipients)).
		Bool("dry_run", r.dryRun).
		Msg("starting newsletter run")

	// Pre-flight: authenticate once before the results file exists, so an
	// auth failure leaves nothing behind.
	if !r.dryRun {
		if err := r.transport.Ping(ctx); err != nil {
			return fmt.Errorf("pre-flight check failed: %w", err)
		}
	}

	results, err := NewResultsWriter(r.cfg.Paths.ResultsDir, r.now())
	if err != nil {
		return err
	}
	defer results.Close()
	log.Info().Str("path", results.Path()).Msg("results file created")

	if !r.dryRun {
		if err := r.transport.Connect(); err != nil {
			return fmt.Errorf("failed to open send session: %w", err)
		}
		defer r.transport.Close()
	}

	for i, rec := range recipients {
		fmt.Fprintf(r.out, "Processing %d/%d: %s\n", i+1, len(recipients), rec.Email)

		outcome, err := r.deliver(ctx, rec)
		if err != nil {
			return err
		}
		if err := results.Record(outcome); err != nil {
			return err
		}
	}

	log.Info().Str("run_id", runID).Msg("newsletter run complete")
	return nil
}

// deliver attempts delivery to a single recipient, with up to maxAttempts
// attempts separated by reconnect cycles on transient disconnection. It
// returns the recipient's outcome, or a non-nil error when the whole run
// must abort.
func (r *Runner) deliver(ctx context.Context, rec Recipient) (Outcome, error) {
	log := r.log.WithRecipient(rec.Email)

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			log.Info().Int("attempt", attempt).Int("max", maxAttempts).Msg("retrying send")
		}

		if !r.dryRun {
			if r.limiter.Wait(r.sentCount, r.lastSend) {
				r.sentCount = 0
			}
		}

		subject, err := r.subject.Render(rec)
		if err != nil {
			log.Error().Err(err).Msg("failed to render subject")
			return Outcome{Email: rec.Email, Status: StatusFailed, ErrorMessage: err.Error()}, nil
		}
		body, err := r.body.Render(rec)
		if err != nil {
			log.Error().Err(err).Msg("failed to render template")
			return Outcome{Email: rec.Email, Status: StatusFailed, ErrorMessage: err.Error()}, nil
		}

		var sendErr error
		if !r.dryRun {
			sendErr = r.transport.Send(ctx, email.Message{
				To:       rec.Email,
				Subject:  subject,
				HTMLBody: body,
				TextBody: r.cfg.Email.TextBody,
			})
		}

		if sendErr == nil {
			log.Info().Msg("email sent")
			r.sentCount++
			r.lastSend = r.now()
			return Outcome{Email: rec.Email, Status: StatusSuccess}, nil
		}

		if email.IsDisconnect(sendErr) {
			if attempt < maxAttempts {
				log.Warn().Err(sendErr).Dur("wait", reconnectWait).Msg("connection lost, reconnecting")
				r.sleep(reconnectWait)
				if rerr := r.transport.Reconnect(); rerr != nil {
					return Outcome{}, fmt.Errorf("failed to reconnect: %w", rerr)
				}
				continue
			}
			log.Error().Err(sendErr).Msg("connection lost, retries exhausted")
			return Outcome{}, fmt.Errorf("send to %s failed after %d attempts: %w", rec.Email, maxAttempts, sendErr)
		}

		log.Error().Err(sendErr).Msg("failed to send email")
		return Outcome{Email: rec.Email, Status: StatusFailed, ErrorMessage: sendErr.Error()}, nil
	}

	return Outcome{}, fmt.Errorf("send to %s: attempt budget exhausted", rec.Email)
}
