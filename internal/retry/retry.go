package retry

import (
	"context"
	"errors"
	"math/rand"
	"net"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Severity bands a failure for retry purposes.
type Severity string

const (
	// SeverityTransient covers infrastructure blips: timeouts, dropped
	// connections, gateway errors.
	SeverityTransient Severity = "transient"
	// SeverityRecoverable covers upstream throttling and quota exhaustion.
	SeverityRecoverable Severity = "recoverable"
	// SeverityPermanent covers bad input and missing resources; retrying
	// cannot help.
	SeverityPermanent Severity = "permanent"
	// SeverityCritical covers storage and internal failures that need an
	// operator alert.
	SeverityCritical Severity = "critical"
)

// Retryable reports whether a severity band allows another attempt.
func (s Severity) Retryable() bool {
	return s == SeverityTransient || s == SeverityRecoverable
}

// Classify inspects the failure's textual signature first and falls back to
// its structural kind. Bands are checked in order; the first match wins, so
// e.g. "connection failed" lands in the transient band, not critical.
func Classify(err error) Severity {
	if err == nil {
		return ""
	}
	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "timeout", "timed out", "connection", "network", "socket", "502", "503", "504"):
		return SeverityTransient
	case containsAny(msg, "rate limit", "too many requests", "429", "quota", "limit exceeded"):
		return SeverityRecoverable
	case containsAny(msg, "validation", "invalid", "not found", "404", "422", "bad request"):
		return SeverityPermanent
	case containsAny(msg, "database", "internal server error", "500"):
		return SeverityCritical
	}

	var netErr net.Error
	switch {
	case errors.As(err, &netErr), errors.Is(err, context.DeadlineExceeded):
		return SeverityTransient
	default:
		return SeverityRecoverable
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// AlertFunc is invoked once per critical failure before it is surfaced.
type AlertFunc func(op string, err error)

// Executor wraps fallible external calls with classification-driven retry.
// Transient and recoverable failures back off exponentially with jitter;
// permanent and critical failures abort immediately.
type Executor struct {
	MaxRetries   int
	BaseDelay    time.Duration
	MaxDelay     time.Duration
	JitterFactor float64
	Alert        AlertFunc

	log   *zap.SugaredLogger
	sleep func(ctx context.Context, d time.Duration) error
}

func NewExecutor(log *zap.SugaredLogger) *Executor {
	return &Executor{
		MaxRetries:   3,
		BaseDelay:    time.Second,
		MaxDelay:     60 * time.Second,
		JitterFactor: 0.1,
		log:          log,
		sleep:        sleepCtx,
	}
}

// Do invokes fn, retrying per the classification policy. The last failure is
// returned unchanged once the retry budget is exhausted.
func (e *Executor) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt <= e.MaxRetries; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		switch sev := Classify(err); sev {
		case SeverityPermanent:
			e.log.Errorw("permanent failure, not retrying", "op", op, "error", err)
			return err
		case SeverityCritical:
			e.log.Errorw("critical failure, alerting", "op", op, "error", err)
			if e.Alert != nil {
				e.Alert(op, err)
			}
			return err
		default:
			if attempt == e.MaxRetries {
				e.log.Errorw("retry budget exhausted", "op", op, "attempts", attempt+1, "error", err)
				return lastErr
			}
			delay := e.backoff(attempt)
			e.log.Warnw("retrying after failure", "op", op, "severity", sev, "attempt", attempt+1, "delay", delay, "error", err)
			if serr := e.sleep(ctx, delay); serr != nil {
				return serr
			}
		}
	}
	return lastErr
}

// backoff computes min(base * 2^attempt, max) with ±JitterFactor uniform
// jitter, floored at zero.
func (e *Executor) backoff(attempt int) time.Duration {
	delay := e.BaseDelay << uint(attempt)
	if delay > e.MaxDelay || delay <= 0 {
		delay = e.MaxDelay
	}
	jitter := time.Duration((rand.Float64()*2 - 1) * e.JitterFactor * float64(delay))
	delay += jitter
	if delay < 0 {
		delay = 0
	}
	return delay
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
