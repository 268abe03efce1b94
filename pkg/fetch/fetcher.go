// Package fetch implements the HTTP client used for feeds and the ingestion endpoint.
// Every attempt is bounded by its own timeout, failed attempts are retried with a linear
// backoff, and the final attempt may fall back to a transport without TLS verification.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/repeater/v2"
)

const maxBodySize = 10 * 1024 * 1024

// Request describes the request to make. Empty Method means GET.
type Request struct {
	Method string
	Header http.Header
	Body   []byte
}

// Response is a fully read HTTP response
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports whether the status code is in the 2xx range
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Options configures Fetcher
type Options struct {
	Policy      TransportPolicy
	UserAgent   string        // default DefaultUserAgent
	BackoffBase time.Duration // delay after the first failed attempt, default 500ms
	BackoffStep time.Duration // added per further attempt, default 200ms
}

// Fetcher makes HTTP requests with per-attempt timeouts and retries
type Fetcher struct {
	policy    TransportPolicy
	userAgent string
	backoff   linearBackoff
}

// New makes a Fetcher. Missing secure transport defaults to DefaultPolicy(false).Secure
func New(opts Options) *Fetcher {
	if opts.Policy.Secure == nil {
		opts.Policy.Secure = DefaultPolicy(false).Secure
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.BackoffBase == 0 {
		opts.BackoffBase = 500 * time.Millisecond
	}
	if opts.BackoffStep == 0 {
		opts.BackoffStep = 200 * time.Millisecond
	}
	return &Fetcher{
		policy:    opts.Policy,
		userAgent: opts.UserAgent,
		backoff:   linearBackoff{base: opts.BackoffBase, step: opts.BackoffStep},
	}
}

// Fetch makes up to maxRetries attempts, each limited by timeout. If the last attempt fails
// and the policy has an insecure transport, one more attempt is made with it.
// Non-2xx responses are returned as is, only transport failures are retried.
func (f *Fetcher) Fetch(ctx context.Context, url string, req Request, maxRetries int, timeout time.Duration) (*Response, error) {
	if maxRetries < 1 {
		maxRetries = 1
	}

	var resp *Response
	var lastErr error
	attempt, calls := 0, 0
	err := repeater.NewWithStrategy(maxRetries, f.backoff).Do(ctx, func() error {
		attempt++
		calls++
		r, err := f.attempt(ctx, f.policy.Secure, url, req, timeout)
		if err == nil {
			resp = r
			return nil
		}
		lastErr = err
		lgr.Printf("[DEBUG] attempt %d/%d for %s failed: %v", attempt, maxRetries, url, err)

		if attempt < maxRetries || f.policy.Insecure == nil {
			return err
		}

		lgr.Printf("[WARN] retrying %s without TLS certificate verification", url)
		calls++
		r, err = f.attempt(ctx, f.policy.Insecure, url, req, timeout)
		if err != nil {
			lastErr = err
			return err
		}
		resp = r
		return nil
	})

	if err != nil {
		switch {
		case ctx.Err() != nil:
			lastErr = ctx.Err()
		case lastErr == nil:
			lastErr = err
		}
		return nil, &ExhaustedError{URL: url, Attempts: calls, Err: lastErr}
	}
	return resp, nil
}

// Do makes exactly one attempt with the secure transport, no retries and no fallback
func (f *Fetcher) Do(ctx context.Context, url string, req Request, timeout time.Duration) (*Response, error) {
	return f.attempt(ctx, f.policy.Secure, url, req, timeout)
}

// attempt performs a single request and reads the whole body before the timeout expires
func (f *Fetcher) attempt(ctx context.Context, client Doer, url string, req Request, timeout time.Duration) (*Response, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	var body io.Reader = http.NoBody
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	addBrowserHeaders(httpReq, f.userAgent, req.Header)

	httpResp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &Response{StatusCode: httpResp.StatusCode, Header: httpResp.Header, Body: data}, nil
}

// linearBackoff waits base + step*(n-1) after the n-th failed attempt
type linearBackoff struct {
	base time.Duration
	step time.Duration
}

// NextDelay implements repeater.Strategy
func (b linearBackoff) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return b.base + b.step*time.Duration(attempt-1)
}
