package distance

import (
	"context"
	"delivery-dispatch-service/internal/metrics"
	"delivery-dispatch-service/internal/platform/obs"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	orsMaxAttempts = 4
	orsMaxBackoff  = 5 * time.Second
	// Error bodies are only kept for the log line.
	orsErrorBodyLimit = 4 << 10
)

// statusError is a non-2xx answer from ORS.
type statusError struct {
	Code       int
	Body       string
	RetryAfter time.Duration
}

func (e *statusError) Error() string {
	return fmt.Sprintf("ORS status %d: %s", e.Code, e.Body)
}

func (o *ORSDistanceProvider) newRequest(
	ctx context.Context,
	method string,
	url string,
	body io.Reader,
) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", o.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// send performs one attempt and records its outcome.
func (o *ORSDistanceProvider) send(req *http.Request) (*http.Response, error) {
	resp, err := o.session.Do(req)
	if err != nil {
		metrics.ProviderRequests.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.ProviderRequests.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < http.StatusBadRequest {
		return resp, nil
	}

	defer resp.Body.Close()
	b, _ := io.ReadAll(io.LimitReader(resp.Body, orsErrorBodyLimit))
	return nil, &statusError{
		Code:       resp.StatusCode,
		Body:       strings.TrimSpace(string(b)),
		RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
	}
}

// retryable reports whether another attempt may succeed:
// network errors, 429, and 5xx except 501.
func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		if se.Code == http.StatusTooManyRequests {
			return true
		}
		return se.Code >= http.StatusInternalServerError && se.Code != http.StatusNotImplemented
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// parseRetryAfter understands the delay-seconds form only; dates yield zero.
func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// doWithRetry runs makeReq until it succeeds, fails permanently, or
// orsMaxAttempts is reached. The pause doubles after each failure, grows to
// a server-sent Retry-After, and never exceeds orsMaxBackoff.
func (o *ORSDistanceProvider) doWithRetry(
	ctx context.Context,
	makeReq func() (*http.Request, error),
) (*http.Response, error) {
	pause := o.backoff

	for attempt := 1; ; attempt++ {
		if err := o.wait(ctx); err != nil {
			return nil, err
		}

		req, err := makeReq()
		if err != nil {
			return nil, fmt.Errorf("make request: %w", err)
		}

		resp, err := o.send(req)
		if err == nil {
			return resp, nil
		}
		if !retryable(err) || attempt == orsMaxAttempts {
			return nil, fmt.Errorf("attempt %d/%d: %w", attempt, orsMaxAttempts, err)
		}

		delay := pause
		var se *statusError
		if errors.As(err, &se) && se.RetryAfter > delay {
			delay = se.RetryAfter
		}
		delay = min(delay, orsMaxBackoff)

		log.Printf("req_id=%s op=ors.retry attempt=%d wait=%s err=%v", obs.RequestID(ctx), attempt, delay, err)
		if err := sleepCtx(ctx, delay); err != nil {
			return nil, err
		}
		pause *= 2
	}
}

// wait blocks on the rate limiter when one is configured.
func (o *ORSDistanceProvider) wait(ctx context.Context) error {
	if o.limiter == nil {
		return ctx.Err()
	}
	return o.limiter.Wait(ctx)
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
