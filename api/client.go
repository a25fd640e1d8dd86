package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL   = "http://localhost:8080/api/v1"
	defaultUserAgent = "rentadm/1.0"

	refreshPath = "/auth/refreshtoken"
	loginPath   = "/auth/login"
)

type Client struct {
	HTTP      *http.Client
	BaseURL   string
	UserAgent string
	Limiter   *rate.Limiter
	Logger    *slog.Logger

	// OnSessionExpired runs when a refresh after a 401 fails.
	OnSessionExpired func()
}

func NewClient(baseURL string, jar http.CookieJar) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if jar == nil {
		jar, _ = cookiejar.New(nil)
	}
	return &Client{
		HTTP:      &http.Client{Timeout: 15 * time.Second, Jar: jar},
		BaseURL:   baseURL,
		UserAgent: defaultUserAgent,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// request is buffered so a replay after refresh sends identical bytes.
type request struct {
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string
	retried     bool
}

func newRequest(method, path string, query url.Values) *request {
	return &request{method: method, path: path, query: query}
}

func (r *request) withJSON(payload any) (*request, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	r.body = body
	r.contentType = "application/json"
	return r, nil
}

func (r *request) withMultipart(form *multipartBody) *request {
	r.body = form.data
	r.contentType = form.contentType
	return r
}

// skipsRefresh reports whether a 401 on this path should be returned as-is.
func (r *request) skipsRefresh() bool {
	return r.path == refreshPath || r.path == loginPath
}

func (c *Client) buildHTTPRequest(ctx context.Context, r *request) (*http.Request, error) {
	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, err
	}
	path := strings.TrimPrefix(r.path, "/")
	base.Path = strings.TrimSuffix(base.Path, "/") + "/" + path
	if r.query != nil {
		base.RawQuery = r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, base.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	return req, nil
}

func (c *Client) send(ctx context.Context, r *request) (*http.Response, error) {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	req, err := c.buildHTTPRequest(ctx, r)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	c.logger().Debug("api request",
		"method", r.method,
		"path", r.path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"request_id", req.Header.Get("X-Request-ID"),
	)
	return resp, nil
}

// do sends r, refreshing the session once on 401, and decodes the envelope
// data into dest.
func (c *Client) do(ctx context.Context, r *request, dest any) error {
	resp, err := c.send(ctx, r)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized && !r.retried && !r.skipsRefresh() {
		drain(resp)
		r.retried = true
		c.logger().Info("session expired, refreshing", "path", r.path)
		if err := c.Refresh(ctx); err != nil {
			c.logger().Warn("session refresh failed", "error", err)
			if c.OnSessionExpired != nil {
				c.OnSessionExpired()
			}
			return err
		}
		return c.do(ctx, r, dest)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return readError(resp)
	}
	return decodeEnvelope(resp.Body, dest)
}

func (c *Client) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c.Logger
}

func decodeEnvelope(body io.Reader, dest any) error {
	if dest == nil {
		_, _ = io.Copy(io.Discard, body)
		return nil
	}
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(body).Decode(&env); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("decode response: %w", err)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, dest); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

func idPath(prefix string, id int64, suffix ...string) string {
	path := fmt.Sprintf("%s/%d", prefix, id)
	for _, part := range suffix {
		path += "/" + strings.TrimPrefix(part, "/")
	}
	return path
}
