package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// RetryPolicy bounds how a script command is re-sent after a transient
// failure. Attempts counts the first try.
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

// DefaultRetryPolicy is used for script mutations. Apps Script answers slowly
// under quota pressure, so the budget stays small and the breaker does the rest.
var DefaultRetryPolicy = RetryPolicy{
	Attempts:  3,
	BaseDelay: 500 * time.Millisecond,
	MaxDelay:  5 * time.Second,
}

// delay doubles BaseDelay per completed attempt, capped at MaxDelay.
func (p RetryPolicy) delay(attempt int) time.Duration {
	d := p.BaseDelay
	for i := 1; i < attempt && d < p.MaxDelay; i++ {
		d *= 2
	}
	return min(d, p.MaxDelay)
}

// RetryDo calls fn until it succeeds, returns a permanent error, the policy
// runs out of attempts, or ctx ends.
func RetryDo[T any](ctx context.Context, p RetryPolicy, fn func() (T, error)) (T, error) {
	var zero T
	attempts := max(p.Attempts, 1)

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		out, err := fn()
		if err == nil {
			return out, nil
		}
		if attempt >= attempts || !isRetryable(err) {
			return zero, err
		}

		wait := p.delay(attempt)
		metrics.MutationRetries.Add(1)
		slog.Debug("script retry", slog.Int("attempt", attempt), slog.Duration("wait", wait), slog.Any("error", err))

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		}
	}
}

// statusError is a transient non-200 answer from the script endpoint.
type statusError struct {
	Action string
	Code   int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s: %d %s", e.Action, e.Code, http.StatusText(e.Code))
}

// Unwrap lets callers classify an exhausted retry as a transport failure.
func (e *statusError) Unwrap() error { return ErrTransport }

// isRetryable reports whether err is worth another attempt: transient
// statuses, dial and DNS failures, and network timeouts. Breaker refusals
// and answers the script produced are final.
func isRetryable(err error) bool {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return false
	case errors.Is(err, ErrMutationRejected), errors.Is(err, ErrMalformedPayload):
		return false
	}

	var se *statusError
	if errors.As(err, &se) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

// IsRetryableStatus reports HTTP statuses worth retrying.
func IsRetryableStatus(code int) bool {
	switch code {
	case http.StatusRequestTimeout, http.StatusTooManyRequests,
		http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}
