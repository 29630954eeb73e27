// Package backendsvc talks to the remote gradebook REST API.
package backendsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/bobur6/professor-ai-helper/core"
)

const (
	// maxResponseSize limits how much of a response body is read.
	maxResponseSize = 5 * 1024 * 1024

	requestIDHeader = "X-Request-ID"
	contentJSON     = "application/json"
	contentForm     = "application/x-www-form-urlencoded"
)

// Client is an HTTP client of the remote service. It implements gradebook.Gateway and gradebook.Assistant.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenStore
	navigator  Navigator
	loginPath  string
	retry      RetryConfig
	log        core.Logger
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithLogger(logger core.Logger) Option {
	return func(c *Client) {
		c.log = logger
	}
}

func WithRetryConfig(cfg RetryConfig) Option {
	return func(c *Client) {
		c.retry = cfg
	}
}

// WithNavigator sets what sends the user to the login page after the session is rejected.
func WithNavigator(nav Navigator) Option {
	return func(c *Client) {
		c.navigator = nav
	}
}

func WithLoginPath(path string) Option {
	return func(c *Client) {
		c.loginPath = path
	}
}

func NewClient(baseURL string, tokens TokenStore, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tokens:     tokens,
		navigator:  NavigatorFunc(func(string) {}),
		loginPath:  "/login",
		retry:      DefaultRetryConfig(),
		log:        core.NopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.tokens == nil {
		c.tokens = NewMemoryTokenStore("")
	}
	if c.navigator == nil {
		c.navigator = NavigatorFunc(func(string) {})
	}
	return c
}

// NewClientFromConfig builds a Client from the `api` section of the configuration.
func NewClientFromConfig(cfg *core.Config, tokens TokenStore, opts ...Option) *Client {
	retry := DefaultRetryConfig()
	retry.MaxRetries = cfg.API.MaxRetries

	base := []Option{
		WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
		WithRetryConfig(retry),
		WithLoginPath(cfg.API.LoginPath),
	}
	return NewClient(cfg.API.BaseURL, tokens, append(base, opts...)...)
}

type request struct {
	method      string
	path        string
	body        []byte
	contentType string
	login       bool // auth failures are plain errors, the session is left alone
}

func (c *Client) newJSONRequest(method, path string, in interface{}) (request, error) {
	req := request{method: method, path: path, contentType: contentJSON}
	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return req, errors.Wrap(err, "encoding request")
		}
		req.body = body
	}
	return req, nil
}

// doJSON sends `in` as JSON and decodes the response into `out` when it is not nil.
func (c *Client) doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	req, err := c.newJSONRequest(method, path, in)
	if err != nil {
		return err
	}
	return c.do(ctx, req, out)
}

func (c *Client) do(ctx context.Context, req request, out interface{}) error {
	op := func() error {
		return c.send(ctx, req, out)
	}
	if req.method != http.MethodGet {
		return op()
	}
	return retry(ctx, c.retry, op)
}

func (c *Client) send(ctx context.Context, r request, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, bytes.NewReader(r.body))
	if err != nil {
		return errors.Wrap(err, "creating request")
	}
	reqID := uuid.New().String()
	req.Header.Set("Accept", contentJSON)
	req.Header.Set(requestIDHeader, reqID)
	if r.body != nil {
		req.Header.Set("Content-Type", r.contentType)
	}
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	fields := core.Fields{"method": r.method, "path": r.path, "request_id": reqID}
	started := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		fields["error"] = err.Error()
		c.log.Warn("api request failed", fields)
		return core.NewNetworkError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		fields["error"] = err.Error()
		c.log.Warn("reading api response failed", fields)
		return core.NewNetworkError(err)
	}

	fields["status"] = resp.StatusCode
	fields["duration"] = time.Since(started).String()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Info("api request rejected", fields)
		return c.statusError(r, resp.StatusCode, data)
	}
	c.log.Debug("api request", fields)

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err = json.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, "decoding %s %s response", r.method, r.path)
	}
	return nil
}

func (c *Client) statusError(r request, status int, body []byte) error {
	detail := parseDetail(body)
	if (status == http.StatusUnauthorized || status == http.StatusForbidden) && !r.login {
		c.tokens.ClearToken()
		c.navigator.Navigate(c.loginPath)
		return &core.AuthError{Status: status, Detail: detail}
	}
	return &core.ServerError{Status: status, Detail: detail}
}
