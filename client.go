package nyris

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/nyris/nyris-go/internal/domain"
	"github.com/nyris/nyris-go/internal/metrics"
	"github.com/nyris/nyris-go/internal/transport/endpoint"
	"github.com/nyris/nyris-go/internal/transport/header"
	"github.com/nyris/nyris-go/internal/transport/httpx"
	"github.com/nyris/nyris-go/internal/transport/request"
)

// Client is the nyris SDK entry point. It is safe for concurrent use; the
// builders it hands out are not.
type Client struct {
	endpoints    *endpoint.Builder
	identity     *header.Identity
	requests     *request.Builder
	doer         httpx.Doer
	transport    *httpx.Client // nil when the doer was injected
	obs          *observer
	outputFormat string
	language     string

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// New creates a Client authenticated with apiKey.
func New(apiKey string, opts ...Option) (*Client, error) {
	cfg := defaultClientConfig()
	cfg.apiKey = apiKey
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.apiKey == "" {
		return nil, fmt.Errorf("nyris: %w", domain.InvalidConfiguration("api key is required"))
	}
	if cfg.outputFormat == "" {
		return nil, fmt.Errorf("nyris: %w", domain.InvalidConfiguration("output format is required"))
	}

	endpoints, err := endpoint.New(cfg.host)
	if err != nil {
		return nil, fmt.Errorf("nyris: %w", domain.InvalidConfiguration(err.Error()))
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, fmt.Errorf("nyris: register metrics: %w", err)
	}

	c := &Client{
		endpoints:    endpoints,
		identity:     header.NewIdentity(cfg.apiKey, cfg.clientID),
		obs:          obs,
		outputFormat: cfg.outputFormat,
		language:     cfg.language,
	}
	c.requests = request.NewBuilder(c.identity)

	if cfg.doer != nil {
		c.doer = cfg.doer
	} else {
		var tm *metrics.Transport
		if cfg.metricsReg != nil {
			tm, err = metrics.NewTransport(cfg.metricsReg)
			if err != nil {
				return nil, fmt.Errorf("nyris: register metrics: %w", err)
			}
		}
		c.transport = httpx.New(httpx.Config{
			HTTPClient:    cfg.httpClient,
			Timeout:       cfg.timeout,
			RetryCount:    cfg.retryCount,
			RetryInterval: cfg.retryInterval,
			Debug:         cfg.debug,
			Logger:        obs.logger,
			Metrics:       tm,
		})
		c.doer = c.transport
	}

	c.ctx, c.cancel = context.WithCancel(context.Background())
	return c, nil
}

// APIKey returns the current api key.
func (c *Client) APIKey() string { return c.identity.APIKey() }

// SetAPIKey replaces the api key. Requests built afterwards carry the new key;
// requests already in flight keep the old one.
func (c *Client) SetAPIKey(key string) error {
	if key == "" {
		return fmt.Errorf("nyris: %w", domain.InvalidConfiguration("api key is required"))
	}
	c.identity.SetAPIKey(key)
	return nil
}

// ClientID returns the configured client id.
func (c *Client) ClientID() string { return c.identity.ClientID() }

// Host returns the API base URL.
func (c *Client) Host() string { return c.endpoints.Host() }

// Close cancels every in-flight call and releases pooled connections.
// Calls made after Close fail with ErrClosed.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.cancel()
		if c.transport != nil {
			c.transport.CloseIdleConnections()
		}
		c.obs.logger.Debug("client closed")
	})
	return nil
}

// ImageMatching returns a fresh image matching builder.
func (c *Client) ImageMatching() *ImageMatching { return newImageMatching(c) }

// TextSearch returns a fresh text search builder.
func (c *Client) TextSearch() *TextSearch { return newTextSearch(c) }

// Similarity returns a fresh similar-offers builder.
func (c *Client) Similarity() *Similarity { return newSimilarity(c) }

// Regions returns the object proposal service.
func (c *Client) Regions() *Regions { return &Regions{client: c} }

// Feedback returns the feedback service.
func (c *Client) Feedback() *Feedback { return &Feedback{client: c} }

// NotFound returns the manual-matching service.
func (c *Client) NotFound() *NotFound { return &NotFound{client: c} }

// scope derives a call context that is also canceled by Close.
func (c *Client) scope(ctx context.Context) (context.Context, func(), error) {
	if c.ctx.Err() != nil {
		return nil, nil, ErrClosed
	}
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(c.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}, nil
}

// exec sends the request built by build and returns the 2xx response.
// build runs before any I/O, so its errors never reach the transport.
func (c *Client) exec(ctx context.Context, build func() (request.Spec, error)) (*httpx.Response, error) {
	if c.ctx.Err() != nil {
		return nil, ErrClosed
	}
	spec, err := build()
	if err != nil {
		return nil, err
	}

	ctx, done, err := c.scope(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	resp, err := c.doer.Do(ctx, c.requests.Build(spec))
	if err != nil {
		if c.ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", ErrClosed, err)
		}
		return nil, err
	}
	if !resp.Success() {
		return nil, domain.NewStatusError(resp.StatusCode, resp.Body)
	}
	return resp, nil
}

// call runs one observed operation: build, send, decode.
func call[T any](
	ctx context.Context, c *Client, op string,
	build func() (request.Spec, error),
	decode func(*httpx.Response) (T, error),
) (T, error) {
	start := time.Now()
	out, err := func() (T, error) {
		var zero T
		resp, err := c.exec(ctx, build)
		if err != nil {
			return zero, err
		}
		return decode(resp)
	}()
	c.obs.observe(op, start, err)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// discard decodes nothing; used by calls without a result body.
func discard(*httpx.Response) (struct{}, error) { return struct{}{}, nil }

// accept returns override when set, the client default otherwise.
func (c *Client) accept(override string) string {
	if override != "" {
		return override
	}
	return c.outputFormat
}

func (c *Client) acceptLanguage(override string) string {
	if override != "" {
		return override
	}
	return c.language
}

// post returns a POST spec without content negotiation headers.
func post(url string, body request.Body) request.Spec {
	return request.Spec{Method: http.MethodPost, URL: url, Body: body}
}
