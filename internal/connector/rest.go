package connector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultCallTimeout = 60 * time.Second

// RESTClient is the shared JSON round-trip helper provider handlers build
// requests with. Timeouts are per-call; no budget spans a handler's call
// sequence.
type RESTClient struct {
	provider   string
	baseURL    string
	httpClient *http.Client

	// Extra headers sent on every request (e.g. Notion-Version)
	headers map[string]string

	// authHeader renders the Authorization value for a token; defaults to
	// "Bearer <token>"
	authHeader func(token string) string
}

// RESTOption configures a RESTClient.
type RESTOption func(*RESTClient)

// WithCallTimeout overrides the per-call HTTP timeout.
func WithCallTimeout(timeout time.Duration) RESTOption {
	return func(c *RESTClient) {
		c.httpClient.Timeout = timeout
	}
}

// WithBaseURL overrides the provider API base URL, mainly for tests.
func WithBaseURL(baseURL string) RESTOption {
	return func(c *RESTClient) {
		c.baseURL = baseURL
	}
}

// WithHeader adds a static header to every request.
func WithHeader(key, value string) RESTOption {
	return func(c *RESTClient) {
		c.headers[key] = value
	}
}

// WithAuthScheme overrides how the token is rendered into the Authorization
// header (e.g. "token %s" for older GitHub-style APIs).
func WithAuthScheme(render func(token string) string) RESTOption {
	return func(c *RESTClient) {
		c.authHeader = render
	}
}

// NewRESTClient creates a REST helper bound to one provider's API base URL.
func NewRESTClient(provider, baseURL string, opts ...RESTOption) *RESTClient {
	c := &RESTClient{
		provider: provider,
		baseURL:  baseURL,
		httpClient: &http.Client{
			Timeout: defaultCallTimeout,
		},
		headers: make(map[string]string),
		authHeader: func(token string) string {
			return "Bearer " + token
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get performs a GET and decodes the JSON response into a generic value.
func (c *RESTClient) Get(ctx context.Context, token, path string, query url.Values) (any, error) {
	return c.do(ctx, token, http.MethodGet, path, query, nil)
}

// Post performs a POST with a JSON body.
func (c *RESTClient) Post(ctx context.Context, token, path string, body any) (any, error) {
	return c.do(ctx, token, http.MethodPost, path, nil, body)
}

// PostForm performs a POST with a form-encoded body, for APIs that do not
// accept JSON request bodies (e.g. Stripe).
func (c *RESTClient) PostForm(ctx context.Context, token, path string, form url.Values) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.roundTrip(req, token)
}

// Patch performs a PATCH with a JSON body.
func (c *RESTClient) Patch(ctx context.Context, token, path string, body any) (any, error) {
	return c.do(ctx, token, http.MethodPatch, path, nil, body)
}

// Delete performs a DELETE.
func (c *RESTClient) Delete(ctx context.Context, token, path string) (any, error) {
	return c.do(ctx, token, http.MethodDelete, path, nil, nil)
}

// do issues one provider API call. Non-2xx responses become *ProviderError
// with the upstream status and body captured verbatim.
func (c *RESTClient) do(ctx context.Context, token, method, path string, query url.Values, body any) (any, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.roundTrip(req, token)
}

// roundTrip sends a prepared request with auth and shared headers applied,
// then decodes the JSON response.
func (c *RESTClient) roundTrip(req *http.Request, token string) (any, error) {
	if token != "" {
		req.Header.Set("Authorization", c.authHeader(token))
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", c.provider, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", c.provider, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ProviderError{
			Provider:   c.provider,
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}

	if len(respBody) == 0 {
		return map[string]any{"status": resp.StatusCode}, nil
	}

	var result any
	if err := json.Unmarshal(respBody, &result); err != nil {
		// Some endpoints return non-JSON success bodies; pass them through
		return string(respBody), nil
	}
	return result, nil
}
