// Package httpx is the HTTP transport used by the client: one logical call,
// retried with exponential backoff on transport errors and non-2xx responses.
package httpx

//go:generate mockgen -destination=mock/doer.go -package=mock . Doer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/nyris/nyris-go/internal/domain"
	"github.com/nyris/nyris-go/internal/metrics"
)

// Defaults.
const (
	DefaultTimeout       = 30 * time.Second
	DefaultRetryCount    = 3
	DefaultRetryInterval = 200 * time.Millisecond
	maxRetryInterval     = 5 * time.Second
	DefaultMaxResponse   = 32 << 20
)

// Request is a fully built outgoing request. Body is kept in memory so it can
// be replayed on retry.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// Response is a completed response with the body read.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Success reports whether the status code is 2xx.
func (r *Response) Success() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Doer executes requests.
type Doer interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// Config holds the transport settings.
type Config struct {
	HTTPClient    *http.Client
	Timeout       time.Duration
	RetryCount    int // total attempts, values below 1 mean one attempt
	RetryInterval time.Duration
	Debug         bool
	Logger        *zap.Logger
	Metrics       *metrics.Transport
	// MaxResponseBytes caps the response body. Larger bodies fail the call.
	MaxResponseBytes int64
}

// Client implements Doer over net/http.
type Client struct {
	http     *http.Client
	attempts int
	interval time.Duration
	maxBody  int64
	debug    bool
	logger   *zap.Logger
	metrics  *metrics.Transport
}

// New creates a transport client. A nil HTTPClient gets a fresh one with
// cfg.Timeout.
func New(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	attempts := max(cfg.RetryCount, 1)
	interval := cfg.RetryInterval
	if interval <= 0 {
		interval = DefaultRetryInterval
	}
	maxBody := cfg.MaxResponseBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxResponse
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		http:     hc,
		attempts: attempts,
		interval: interval,
		maxBody:  maxBody,
		debug:    cfg.Debug,
		logger:   logger,
		metrics:  cfg.Metrics,
	}
}

var (
	errUnsuccessful = errors.New("unsuccessful response")
	errBodyTooLarge = errors.New("response body too large")
)

// Do sends req, retrying until a 2xx response or the attempt budget is spent.
// When every attempt got a response, the last one is returned with a nil
// error; the caller decides what a non-2xx status means. When the last
// attempt failed at transport level, the error wraps domain.ErrTransportFailure.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	var (
		last    *Response
		attempt int
	)

	op := func() error {
		attempt++
		resp, err := c.roundTrip(ctx, req)
		if err != nil {
			last = nil
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		last = resp
		if !resp.Success() {
			return errUnsuccessful
		}
		return nil
	}

	notify := func(err error, wait time.Duration) {
		fields := []zap.Field{
			zap.String("method", req.Method),
			zap.String("url", req.URL),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", wait),
		}
		if last != nil {
			fields = append(fields, zap.Int("status", last.StatusCode))
		} else {
			fields = append(fields, zap.Error(err))
		}
		c.logger.Warn("retrying request", fields...)
	}

	err := backoff.RetryNotify(op, backoff.WithContext(c.policy(), ctx), notify)
	if err == nil || (errors.Is(err, errUnsuccessful) && last != nil) {
		return last, nil
	}
	return nil, fmt.Errorf("%w: %s %s after %d attempt(s): %w",
		domain.ErrTransportFailure, req.Method, req.URL, attempt, err)
}

func (c *Client) policy() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.interval
	b.MaxInterval = maxRetryInterval
	b.MaxElapsedTime = 0
	return backoff.WithMaxRetries(b, uint64(c.attempts-1))
}

func (c *Client) roundTrip(ctx context.Context, req *Request) (*Response, error) {
	var body io.Reader = http.NoBody
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	hreq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("build request: %w", err))
	}
	for k, v := range req.Header {
		hreq.Header[k] = v
	}

	start := time.Now()
	hresp, err := c.http.Do(hreq)
	if err != nil {
		c.metrics.ObserveAttempt(req.Method, 0, time.Since(start))
		c.logger.Debug("request failed", zap.String("method", req.Method), zap.String("url", req.URL), zap.Error(err))
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = hresp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(hresp.Body, c.maxBody+1))
	dur := time.Since(start)
	c.metrics.ObserveAttempt(req.Method, hresp.StatusCode, dur)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if int64(len(data)) > c.maxBody {
		return nil, backoff.Permanent(fmt.Errorf("%w: limit is %d bytes", errBodyTooLarge, c.maxBody))
	}

	if c.debug {
		c.logger.Debug("http exchange",
			zap.String("method", req.Method),
			zap.String("url", req.URL),
			zap.Strings("request_headers", headerNames(req.Header)),
			zap.Int("request_bytes", len(req.Body)),
			zap.Int("status", hresp.StatusCode),
			zap.Int("response_bytes", len(data)),
			zap.Duration("duration", dur),
		)
	}

	return &Response{
		StatusCode: hresp.StatusCode,
		Header:     hresp.Header,
		Body:       data,
	}, nil
}

// CloseIdleConnections releases pooled connections.
func (c *Client) CloseIdleConnections() {
	c.http.CloseIdleConnections()
}

// headerNames lists header names only; values may hold credentials.
func headerNames(h http.Header) []string {
	names := make([]string, 0, len(h))
	for k := range h {
		names = append(names, k)
	}
	return names
}
