package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	errs "pagescraper/pkg/errors"
	"pagescraper/pkg/logger"
	"pagescraper/pkg/ratelimit"
)

// DefaultTimeout bounds connecting, waiting for response headers and each
// wait for body data on a request
const DefaultTimeout = 10 * time.Second

// Fetcher retrieves one image. Implementations return the open response only
// on HTTP 200; the caller must close its body.
type Fetcher interface {
	Get(ctx context.Context, url string) (*http.Response, error)
}

// Client issues streamed GET requests and classifies their outcome
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	timeout    time.Duration
	limiter    ratelimit.Limiter
	logger     logger.Logger
}

// Option customises a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithUserAgent sets the User-Agent header. Without it Go's default is sent.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.headers["User-Agent"] = ua
		}
	}
}

// WithLimiter paces every request
func WithLimiter(l ratelimit.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// NewClient creates a client whose timeout covers dialing, the wait for
// response headers and every gap between body chunks. A body that keeps
// flowing has no overall deadline.
func NewClient(timeout time.Duration, log logger.Logger, opts ...Option) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{Timeout: timeout, KeepAlive: 30 * time.Second}).DialContext
	transport.TLSHandshakeTimeout = timeout
	transport.ResponseHeaderTimeout = timeout

	c := &Client{
		httpClient: &http.Client{Transport: transport},
		headers:    map[string]string{},
		timeout:    timeout,
		limiter:    ratelimit.Unlimited{},
		logger:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get fetches url. On 200 the open response is returned. Otherwise the
// error is classified: ErrorTypeNotFound for 404, ErrorTypeHTTPStatus with
// the code for any other status, ErrorTypeTransport for network failures,
// ErrorTypeCanceled when ctx ends. Reading the returned body fails with
// ErrBodyIdle once it stalls for longer than the client timeout.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errs.New(errs.ErrorTypeCanceled, 0, "request cancelled while waiting for rate limiter", err)
	}

	reqCtx, cancel := context.WithCancel(ctx)
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		cancel()
		return nil, errs.New(errs.ErrorTypeUnknown, 0, "failed to create request", err)
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		cancel()
		if ctx.Err() != nil {
			return nil, errs.New(errs.ErrorTypeCanceled, 0, "request cancelled", ctx.Err())
		}
		c.logger.DebugWithFields("HTTP request failed", map[string]interface{}{
			"method":      req.Method,
			"url":         url,
			"error":       err.Error(),
			"timeout":     isTimeout(err),
			"duration_ms": duration.Milliseconds(),
		})
		return nil, errs.New(errs.ErrorTypeTransport, 0, describeTransport(err), err)
	}

	logger.LogRequest(c.logger, req.Method, url, resp.StatusCode, duration)

	if err := checkResponseStatus(resp); err != nil {
		resp.Body.Close()
		cancel()
		return nil, err
	}
	resp.Body = newIdleBody(resp.Body, c.timeout, cancel)
	return resp, nil
}

// checkResponseStatus accepts only 200. Redirects have already been followed.
func checkResponseStatus(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
		return errs.New(errs.ErrorTypeNotFound, resp.StatusCode, "resource not found", nil)
	default:
		return errs.New(errs.ErrorTypeHTTPStatus, resp.StatusCode,
			fmt.Sprintf("unexpected status code: %d", resp.StatusCode), nil)
	}
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func describeTransport(err error) string {
	if isTimeout(err) {
		return "request timed out"
	}
	return "network error"
}
