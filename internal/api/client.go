// Package api provides the single HTTP client the console uses to talk
// to the billing platform's REST API.
//
// Every resource service goes through Client. The client attaches the
// operator's bearer token from the request context, decodes JSON
// responses, normalizes error payloads into domain errors, and on a 401
// performs one deduplicated token refresh before retrying the request.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dhakanet/ispconsole/internal/auth"
	"github.com/dhakanet/ispconsole/internal/domain"
	"github.com/dhakanet/ispconsole/internal/metrics"
	"github.com/dhakanet/ispconsole/internal/session"
)

// refreshPath is the platform's unauthenticated token refresh endpoint.
const refreshPath = "/auth/token/refresh/"

// TokenPair is the platform's JWT pair. The refresh field is empty when
// the platform does not rotate refresh tokens.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// SessionWriter persists refreshed tokens. *session.Store satisfies it;
// tests substitute a stub.
type SessionWriter interface {
	UpdateTokens(ctx context.Context, token, access, refresh string) error
}

// Client is the configured platform API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	sessions   SessionWriter

	// refreshGroup collapses concurrent refresh attempts for the same
	// session into a single upstream call.
	refreshGroup singleflight.Group
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// New creates a platform API client. sessions may be nil, in which case
// refreshed tokens are not persisted (used by tests).
func New(baseURL string, sessions SessionWriter, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
		sessions:   sessions,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Get issues a GET request. query may be nil.
func (c *Client) Get(ctx context.Context, op, path string, query url.Values, out any) error {
	return c.do(ctx, op, http.MethodGet, path, query, nil, out)
}

// Post issues a POST request. body may be nil for action endpoints.
func (c *Client) Post(ctx context.Context, op, path string, body, out any) error {
	return c.do(ctx, op, http.MethodPost, path, nil, body, out)
}

// Patch issues a PATCH request.
func (c *Client) Patch(ctx context.Context, op, path string, body, out any) error {
	return c.do(ctx, op, http.MethodPatch, path, nil, body, out)
}

// Put issues a PUT request.
func (c *Client) Put(ctx context.Context, op, path string, body, out any) error {
	return c.do(ctx, op, http.MethodPut, path, nil, body, out)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, op, path string) error {
	return c.do(ctx, op, http.MethodDelete, path, nil, nil, nil)
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	err := c.doOnce(ctx, op, method, path, query, body, out)
	if domain.ErrorCode(err) != domain.EUNAUTHORIZED {
		return err
	}

	// One refresh-and-retry, mirroring what the platform's own web
	// client does. A second 401 means the session is truly dead.
	sess := auth.GetSession(ctx)
	if sess == nil || sess.RefreshToken == "" {
		return err
	}
	if refreshErr := c.refresh(ctx, sess); refreshErr != nil {
		c.logger.Info("token refresh failed", "op", op, "error", refreshErr)
		return domain.Unauthorized(op, "session expired, please sign in again")
	}
	return c.doOnce(ctx, op, method, path, query, body, out)
}

func (c *Client) doOnce(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return domain.Internal(err, op, "failed to encode request body")
		}
		reader = bytes.NewReader(b)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return domain.Internal(err, op, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")
	if sess := auth.GetSession(ctx); sess != nil && sess.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+sess.AccessToken)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.APIRequestsTotal.WithLabelValues(method, op, "transport_error").Inc()
		return domain.Unavailable(err, op)
	}
	defer resp.Body.Close()

	metrics.APIRequestsTotal.WithLabelValues(method, op, strconv.Itoa(resp.StatusCode)).Inc()
	metrics.APIRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())

	if resp.StatusCode >= 400 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return normalizeError(op, resp.StatusCode, payload)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.Internal(err, op, "failed to decode response")
	}
	return nil
}

// refresh exchanges the session's refresh token for a new access token
// and persists the result. Concurrent callers for the same session share
// one upstream request, so the refresh metric is counted inside the
// deduplicated exchange, once per upstream call.
func (c *Client) refresh(ctx context.Context, sess *session.Session) error {
	v, err, _ := c.refreshGroup.Do(sess.Token, func() (any, error) {
		pair, err := c.exchangeRefreshToken(ctx, sess)
		if err != nil {
			metrics.TokenRefreshesTotal.WithLabelValues("failure").Inc()
			return nil, err
		}
		metrics.TokenRefreshesTotal.WithLabelValues("success").Inc()
		return pair, nil
	})
	if err != nil {
		return err
	}

	pair := v.(TokenPair)
	sess.AccessToken = pair.Access
	if pair.Refresh != "" {
		sess.RefreshToken = pair.Refresh
	}
	return nil
}

// exchangeRefreshToken performs the upstream token exchange and stores
// the new pair on the session row.
func (c *Client) exchangeRefreshToken(ctx context.Context, sess *session.Session) (TokenPair, error) {
	var pair TokenPair
	payload := map[string]string{"refresh": sess.RefreshToken}

	b, err := json.Marshal(payload)
	if err != nil {
		return pair, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+refreshPath, bytes.NewReader(b))
	if err != nil {
		return pair, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pair, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return pair, fmt.Errorf("refresh rejected with status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&pair); err != nil {
		return pair, err
	}

	if c.sessions != nil {
		if err := c.sessions.UpdateTokens(ctx, sess.Token, pair.Access, pair.Refresh); err != nil {
			return pair, err
		}
	}
	return pair, nil
}

// normalizeError converts a platform error response into a domain error.
// The platform answers validation failures with {"field": ["message"]},
// and everything else with {"detail": "message"}.
func normalizeError(op string, status int, payload []byte) error {
	var raw map[string]json.RawMessage
	_ = json.Unmarshal(payload, &raw)

	detail := ""
	fields := map[string]string{}
	for key, val := range raw {
		msg := firstMessage(val)
		if msg == "" {
			continue
		}
		if key == "detail" || key == "message" {
			detail = msg
			continue
		}
		fields[key] = msg
	}

	switch status {
	case http.StatusUnauthorized:
		if detail == "" {
			detail = "authentication required"
		}
		return domain.Unauthorized(op, detail)
	case http.StatusForbidden:
		if detail == "" {
			detail = "You don't have permission to do that."
		}
		return domain.Errorf(domain.EFORBIDDEN, op, "%s", detail)
	case http.StatusNotFound:
		return domain.NotFound(op, "resource")
	case http.StatusConflict:
		if detail == "" {
			detail = "The request conflicts with the current state."
		}
		return domain.Errorf(domain.ECONFLICT, op, "%s", detail)
	case http.StatusTooManyRequests:
		return domain.Errorf(domain.ERATELIMIT, op, "Too many requests. Please slow down.")
	}

	if status >= 500 {
		return domain.Internal(fmt.Errorf("platform returned status %d", status), op, "upstream error")
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Op: op, Fields: fields}
	}
	if detail != "" {
		return domain.Invalid(op, detail)
	}
	return domain.Invalid(op, fmt.Sprintf("request rejected with status %d", status))
}

// firstMessage extracts a display string from a DRF error value, which
// is either a plain string or a list of strings.
func firstMessage(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return list[0]
	}
	return ""
}

// ListQueryValues converts a ListQuery into the query parameters the
// platform's list endpoints accept.
func ListQueryValues(q domain.ListQuery) url.Values {
	v := url.Values{}
	if q.Page > 1 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	for key, val := range q.Filters {
		if val != "" {
			v.Set(key, val)
		}
	}
	return v
}
