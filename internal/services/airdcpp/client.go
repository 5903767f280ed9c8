package airdcpp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"comicgrabr/internal/config"
	"comicgrabr/internal/logging"
	"comicgrabr/internal/services"
)

const userAgent = "comicgrabr/0.1.0"

// tokenMaxInactivity is the requested bearer token idle lifetime in seconds.
const tokenMaxInactivity = 3600

// duplicateMessage is the fragment AirDC++ returns when a bundle already
// exists on disk or in the queue.
const duplicateMessage = "File exists on the disk already"

// HTTPDoer describes the HTTP client used by the AirDC++ service.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the AirDC++ Web API. The bearer token is obtained lazily on
// first use and reused for the lifetime of the client.
type Client struct {
	baseURL  string
	username string
	password string
	client   HTTPDoer
	logger   *slog.Logger

	resultLimit        int
	pollAttempts       int
	pollInitialDelay   time.Duration
	pollDelayIncrement time.Duration

	sleep func(ctx context.Context, d time.Duration) error

	mu    sync.Mutex
	token string
}

// NewClient builds an AirDC++ client from configuration. Missing credentials
// are a configuration error so the run aborts before any search work starts.
func NewClient(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	username := strings.TrimSpace(cfg.AirDCPP.Username)
	password := cfg.AirDCPP.Password
	if username == "" || password == "" {
		return nil, services.Wrap(services.ErrConfiguration, "airdcpp", "new client",
			"airdcpp.username and airdcpp.password must be set", nil)
	}

	timeout := time.Duration(cfg.AirDCPP.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:            strings.TrimRight(cfg.AirDCPP.APIURL, "/") + "/",
		username:           username,
		password:           password,
		client:             &http.Client{Timeout: timeout},
		logger:             logging.NewComponentLogger(logger, "airdcpp"),
		resultLimit:        cfg.Search.ResultLimit,
		pollAttempts:       cfg.Search.PollAttempts,
		pollInitialDelay:   time.Duration(cfg.Search.PollInitialDelay) * time.Second,
		pollDelayIncrement: time.Duration(cfg.Search.PollDelayIncrement) * time.Second,
		sleep:              sleepContext,
	}, nil
}

// Enqueue requests a download bundle for the given result. A rejection caused
// by the file already existing on disk or in the queue is reported as
// services.ErrDuplicate so callers can classify it as a skip.
func (c *Client) Enqueue(ctx context.Context, result Result) error {
	if result.Name == "" || result.TTH == "" {
		return services.Wrap(services.ErrTransient, "airdcpp", "enqueue",
			"search result is missing name or TTH", nil)
	}

	payload := enqueueRequest{TargetName: result.Name, Size: result.Size, TTH: result.TTH}
	var ignored json.RawMessage
	err := c.postJSON(ctx, "queue/bundles/file", payload, &ignored)
	if err == nil {
		return nil
	}

	var apiErr *apiError
	if errors.As(err, &apiErr) && strings.Contains(apiErr.body, duplicateMessage) {
		return services.Wrap(services.ErrDuplicate, "airdcpp", "enqueue", result.Name, nil)
	}
	return services.Wrap(classify(err), "airdcpp", "enqueue", result.Name, err)
}

func (c *Client) bearerToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" {
		return c.token, nil
	}

	payload := authorizeRequest{
		Username:      c.username,
		Password:      c.password,
		MaxInactivity: tokenMaxInactivity,
	}
	var resp authorizeResponse
	if err := c.doJSON(ctx, http.MethodPost, "sessions/authorize", payload, &resp, false); err != nil {
		return "", services.Wrap(classify(err), "airdcpp", "authorize", "", err)
	}
	if resp.AuthToken == "" {
		return "", services.Wrap(services.ErrTransient, "airdcpp", "authorize",
			"authorization response carried no token", nil)
	}
	c.token = resp.AuthToken
	c.logger.Debug("obtained bearer token")
	return c.token, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, payload, out, true)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, out, true)
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload, out any, authed bool) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", path, err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("User-Agent", userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		token, err := c.bearerToken(ctx)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read %s response: %w", path, err)
	}
	if resp.StatusCode >= 300 {
		return &apiError{status: resp.StatusCode, path: path, body: strings.TrimSpace(string(raw))}
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// apiError carries a non-2xx response so callers can inspect the body.
type apiError struct {
	status int
	path   string
	body   string
}

func (e *apiError) Error() string {
	if e.body == "" {
		return fmt.Sprintf("airdcpp %s returned %d", e.path, e.status)
	}
	return fmt.Sprintf("airdcpp %s returned %d: %s", e.path, e.status, e.body)
}

func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return services.ErrTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return services.ErrTimeout
	}
	return services.ErrTransient
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
