package httpclient

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/samvad-hq/samvad-request-client/internal/domain"
)

const defaultTimeout = 30 * time.Second

// Client issues decorated requests against a base API origin and normalizes
// every response into a Result.
type Client struct {
	baseURL  string
	tokens   TokenStore
	listener EvictionListener
	log      Logger
	timeout  time.Duration
	rc       *resty.Client
}

// Option configures a Client during construction in New.
type Option func(*Client)

// WithTimeout sets the transport timeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(log Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithEvictionListener registers a listener notified after each token eviction.
func WithEvictionListener(l EvictionListener) Option {
	return func(c *Client) {
		if l != nil {
			c.listener = l
		}
	}
}

// WithRestyClient replaces the underlying transport. The caller owns its
// timeout and logger; neither is touched.
func WithRestyClient(rc *resty.Client) Option {
	return func(c *Client) {
		c.rc = rc
	}
}

// New constructs a Client. Relative URLs are resolved against baseURL.
func New(baseURL string, tokens TokenStore, opts ...Option) *Client {
	if tokens == nil {
		tokens = noopTokens{}
	}
	c := &Client{
		baseURL:  baseURL,
		tokens:   tokens,
		listener: noopListener{},
		log:      noopLogger{},
		timeout:  defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.rc == nil {
		c.rc = newRestyBaseClient(c.timeout)
		c.rc.SetLogger(restyLogger{log: c.log})
	}
	return c
}

// BaseURL returns the origin prefixed to relative URLs.
func (c *Client) BaseURL() string { return c.baseURL }

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, url string, payload Payload, opts ...RequestOption) (Result, error) {
	return c.Do(ctx, http.MethodGet, url, payload, opts...)
}

// Post issues a POST request.
func (c *Client) Post(ctx context.Context, url string, payload Payload, opts ...RequestOption) (Result, error) {
	return c.Do(ctx, http.MethodPost, url, payload, opts...)
}

// Put issues a PUT request.
func (c *Client) Put(ctx context.Context, url string, payload Payload, opts ...RequestOption) (Result, error) {
	return c.Do(ctx, http.MethodPut, url, payload, opts...)
}

// Patch issues a PATCH request.
func (c *Client) Patch(ctx context.Context, url string, payload Payload, opts ...RequestOption) (Result, error) {
	return c.Do(ctx, http.MethodPatch, url, payload, opts...)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, url string, payload Payload, opts ...RequestOption) (Result, error) {
	return c.Do(ctx, http.MethodDelete, url, payload, opts...)
}

// Do builds, sends and normalizes a single request. The Result is always
// well-formed; the error is non-nil only when no HTTP response was obtained.
func (c *Client) Do(ctx context.Context, method, url string, payload Payload, opts ...RequestOption) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	d, err := c.Build(method, url, payload, opts...)
	if err != nil {
		c.log.ErrorObj("request build failed", "request_error", map[string]any{
			"method": method,
			"url":    url,
			"error":  err.Error(),
		})
		return failedResult(), &RequestError{Stage: StageBuild, Method: method, URL: url, Err: err}
	}
	return c.send(ctx, d)
}

func (c *Client) send(ctx context.Context, d Descriptor) (Result, error) {
	destination := "internal"
	if d.External {
		destination = "external"
	}
	c.log.DebugObj("request dispatched", "request_meta", map[string]any{
		"method":      d.Method,
		"url":         d.URL,
		"destination": destination,
	})

	start := time.Now()
	req, err := c.newRequest(ctx, d)
	var resp *resty.Response
	if err == nil {
		resp, err = req.Execute(d.Method, d.URL)
	}
	requestDuration.WithLabelValues(d.Method).Observe(time.Since(start).Seconds())
	if err != nil {
		requestsTotal.WithLabelValues(d.Method, classTransportError).Inc()
		c.log.ErrorObj("request failed", "request_error", map[string]any{
			"method":      d.Method,
			"url":         d.URL,
			"destination": destination,
			"error":       err.Error(),
		})
		return failedResult(), &RequestError{Stage: StageSend, Method: d.Method, URL: d.URL, Err: err}
	}

	status := resp.StatusCode()
	class := ClassifyStatus(status)
	requestsTotal.WithLabelValues(d.Method, class.String()).Inc()
	if class.EvictsToken() {
		c.evict(ctx, d, status, class)
	}

	body := resp.Body()
	result, parsed := normalizeBody(status, body)
	if !parsed && status != http.StatusNoContent {
		c.logUnparseable(d, status, resp.Header().Get(HeaderContentType), body)
	}
	return result, nil
}

// newRequest maps the descriptor onto a resty request. resty only writes
// multipart bodies for POST, PUT and PATCH; other verbs get the form encoded here.
func (c *Client) newRequest(ctx context.Context, d Descriptor) (*resty.Request, error) {
	req := c.rc.R().SetContext(ctx)
	if len(d.Headers) > 0 {
		req.SetHeaders(d.Headers)
	}
	if len(d.Query) > 0 {
		req.SetQueryParams(d.Query)
	}
	switch {
	case d.Form != nil && restyMultipartVerb(d.Method):
		req.SetMultipartFormData(d.Form.Fields)
		for _, f := range d.Form.Files {
			req.SetFileReader(f.Field, f.FileName, f.Reader)
		}
	case d.Form != nil:
		body, contentType, err := encodeForm(d.Form)
		if err != nil {
			return nil, err
		}
		req.SetHeader(HeaderContentType, contentType)
		req.SetBody(body)
	case d.Body != nil:
		req.SetBody(d.Body)
	}
	return req, nil
}

func restyMultipartVerb(method string) bool {
	return method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch
}

// evict clears the stored token so the stale credential is not reused.
func (c *Client) evict(ctx context.Context, d Descriptor, status int, class StatusClass) {
	if err := c.tokens.Clear(); err != nil {
		c.log.ErrorObj("token eviction failed", "token_error", map[string]any{
			"status": status,
			"error":  err.Error(),
		})
	}
	tokenEvictionsTotal.WithLabelValues(strconv.Itoa(status)).Inc()

	reason := domain.ReasonUnauthorized
	if class == StatusForbidden {
		reason = domain.ReasonForbidden
	}
	ev := domain.Eviction{
		Reason:    reason,
		Status:    status,
		Method:    d.Method,
		URL:       d.URL,
		EvictedAt: time.Now().UTC(),
	}
	c.log.WarnObj("auth token evicted", "eviction", ev)
	c.listener.TokenEvicted(ctx, ev)
}
