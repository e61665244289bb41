// internal/infra/lrs/client.go
package lrs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	domain "video_xapi_tracker/internal/domain/lrs"
	"video_xapi_tracker/internal/domain/statement"
)

const (
	xapiVersionHeader = "1.0.3"
	userAgent         = "video-xapi-tracker/1.0"

	defaultMaxRetries = 3
	defaultBaseDelay  = 1 * time.Second
	defaultTimeout    = 30 * time.Second
)

// Config holds the connection settings for one HTTPClient.
type Config struct {
	Endpoint   string
	Username   string
	Password   string
	AuthMethod string
	MaxRetries int
	BaseDelay  time.Duration
	Timeout    time.Duration
}

// HTTPClient implements domain/lrs.Client over HTTPS with bounded retries
// and exponential backoff. All settings are immutable after construction.
// TLS verification is the http.DefaultTransport default and is never
// disabled.
type HTTPClient struct {
	endpoint   string
	username   string
	password   string
	authMethod string
	maxRetries int
	baseDelay  time.Duration
	httpClient *http.Client
	sleep      func(time.Duration)
}

// NewHTTPClient validates the auth method and applies defaults. The oauth
// value is a legal configuration but has no transport implementation, so
// constructing a client with it is an explicit error rather than a silent
// fallback to basic auth.
func NewHTTPClient(cfg Config) (*HTTPClient, error) {
	switch cfg.AuthMethod {
	case "", domain.AuthBasic:
		cfg.AuthMethod = domain.AuthBasic
	case domain.AuthOAuth:
		return nil, fmt.Errorf("lrs: auth method %q is not implemented", cfg.AuthMethod)
	default:
		return nil, fmt.Errorf("lrs: unknown auth method %q", cfg.AuthMethod)
	}

	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = defaultBaseDelay
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	return &HTTPClient{
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		username:   cfg.Username,
		password:   cfg.Password,
		authMethod: cfg.AuthMethod,
		maxRetries: cfg.MaxRetries,
		baseDelay:  cfg.BaseDelay,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		sleep:      time.Sleep,
	}, nil
}

// SendStatement delivers a single statement to {endpoint}/statements.
func (c *HTTPClient) SendStatement(ctx context.Context, st *statement.Statement) domain.Result {
	return c.postStatements(ctx, st)
}

// SendStatements delivers a batch of statements in one request.
func (c *HTTPClient) SendStatements(ctx context.Context, sts []*statement.Statement) domain.Result {
	return c.postStatements(ctx, sts)
}

// TestConnection performs a GET on {endpoint}/about through the same retry
// wrapper. Used for configuration validation and health checks.
func (c *HTTPClient) TestConnection(ctx context.Context) domain.Result {
	return c.sendWithRetry(ctx, http.MethodGet, c.endpoint+"/about", nil)
}

func (c *HTTPClient) postStatements(ctx context.Context, payload any) domain.Result {
	data, err := json.Marshal(payload)
	if err != nil {
		// Terminal: a statement that cannot be encoded will never succeed.
		return domain.Result{
			Success:  false,
			Err:      "failed to encode statement as JSON: " + err.Error(),
			HTTPCode: 0,
		}
	}
	return c.sendWithRetry(ctx, http.MethodPost, c.endpoint+"/statements", data)
}

// sendWithRetry issues the request up to maxRetries times. A 2xx response or
// a non-retryable failure returns immediately; retryable failures sleep
// baseDelay * 2^(attempt-1) between attempts. The last result is returned
// as-is once the budget is exhausted.
func (c *HTTPClient) sendWithRetry(ctx context.Context, method, url string, body []byte) domain.Result {
	attempt := 0
	var result domain.Result

	for attempt < c.maxRetries {
		result = c.do(ctx, method, url, body)

		if result.Success || !isRetryable(result.HTTPCode) {
			return result
		}

		attempt++
		if attempt < c.maxRetries {
			c.sleep(c.baseDelay * time.Duration(1<<(attempt-1)))
		}
	}

	return result
}

func (c *HTTPClient) do(ctx context.Context, method, url string, body []byte) domain.Result {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return domain.Result{Success: false, Err: "request error: " + err.Error(), HTTPCode: 0}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Experience-API-Version", xapiVersionHeader)
	req.Header.Set("User-Agent", userAgent)
	if c.authMethod == domain.AuthBasic {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Transport-level failure: connection refused, timeout, TLS error.
		return domain.Result{Success: false, Err: "request error: " + err.Error(), HTTPCode: 0}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Result{Success: false, Err: "response read error: " + err.Error(), HTTPCode: resp.StatusCode}
	}

	success := resp.StatusCode >= 200 && resp.StatusCode < 300
	result := domain.Result{
		Success:  success,
		HTTPCode: resp.StatusCode,
		Response: string(respBody),
	}
	if !success {
		result.Err = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, respBody)
	}
	return result
}

// isRetryable reports whether a failed attempt is worth repeating: server
// errors, rate limiting, or transport-level failures. Other 4xx codes mean
// the statement itself is the problem and retrying cannot fix it.
func isRetryable(httpCode int) bool {
	return httpCode >= 500 || httpCode == 429 || httpCode == 0
}
