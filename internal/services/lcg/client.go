package lcg

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strings"
	"time"

	"comicgrabr/internal/config"
	"comicgrabr/internal/logging"
	"comicgrabr/internal/pulllist"
	"comicgrabr/internal/services"
)

// csrfField is the hidden form field the login page embeds.
const csrfField = "ci_csrf_token"

var csrfPatterns = []*regexp.Regexp{
	regexp.MustCompile(`<input[^>]*name=["']` + csrfField + `["'][^>]*value=["']([^"']*)["']`),
	regexp.MustCompile(`<input[^>]*value=["']([^"']*)["'][^>]*name=["']` + csrfField + `["']`),
}

// HTTPDoer describes the HTTP client used to drive the login flow.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client logs into League of Comic Geeks and downloads the pull-list export.
// The session cookie jar lives for the client's lifetime, so a login is only
// performed once per run.
type Client struct {
	loginURL  string
	exportURL string
	username  string
	password  string
	client    HTTPDoer
	logger    *slog.Logger

	loggedIn bool
}

// NewClient builds a League of Comic Geeks client from configuration. Missing
// credentials are a configuration error so the import aborts before touching
// the network.
func NewClient(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	username := strings.TrimSpace(cfg.LCG.Username)
	password := cfg.LCG.Password
	if username == "" || password == "" {
		return nil, services.Wrap(services.ErrConfiguration, "lcg", "new client",
			"lcg.username and lcg.password must be set", nil)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	timeout := time.Duration(cfg.LCG.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		loginURL:  cfg.LCG.LoginURL,
		exportURL: cfg.LCG.ExportURL,
		username:  username,
		password:  password,
		client:    &http.Client{Jar: jar, Timeout: timeout},
		logger:    logging.NewComponentLogger(logger, "lcg"),
	}, nil
}

// Import logs in, downloads the pull-list export, and parses it into release
// records. Any failure is an import failure: the caller must leave its
// existing store untouched.
func (c *Client) Import(ctx context.Context) ([]pulllist.Release, error) {
	body, err := c.DownloadExport(ctx)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	releases, err := ParseExport(body, c.logger)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "lcg", "parse export", "", err)
	}
	return releases, nil
}

// DownloadExport returns the raw pull-list export for the configured account.
func (c *Client) DownloadExport(ctx context.Context) (io.ReadCloser, error) {
	if !c.loggedIn {
		if err := c.login(ctx); err != nil {
			return nil, err
		}
		c.loggedIn = true
	}

	resp, err := c.get(ctx, c.exportURL)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "lcg", "download export", "", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, services.Wrap(services.ErrTransient, "lcg", "download export",
			fmt.Sprintf("export returned status %d", resp.StatusCode), nil)
	}
	c.logger.Debug("export downloaded", logging.String("url", c.exportURL))
	return resp.Body, nil
}

func (c *Client) login(ctx context.Context) error {
	token, err := c.fetchCSRFToken(ctx)
	if err != nil {
		return err
	}

	form := url.Values{}
	form.Set(csrfField, token)
	form.Set("username", c.username)
	form.Set("password", c.password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.loginURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransient, "lcg", "login", "", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return services.Wrap(services.ErrTransient, "lcg", "login", "read response", err)
	}

	// The site answers a bad login with the login form again, not an error
	// status. Success lands on a member page or shows the pulls navigation.
	if !strings.Contains(string(body), "My Comics") &&
		!strings.Contains(resp.Request.URL.Path, "member") {
		return services.Wrap(services.ErrConfiguration, "lcg", "login",
			"login rejected, check lcg.username and lcg.password", nil)
	}

	c.logger.Debug("logged in", logging.String("username", c.username))
	return nil
}

func (c *Client) fetchCSRFToken(ctx context.Context) (string, error) {
	resp, err := c.get(ctx, c.loginURL)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "lcg", "fetch login page", "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", services.Wrap(services.ErrTransient, "lcg", "fetch login page",
			fmt.Sprintf("login page returned status %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "lcg", "fetch login page", "read response", err)
	}

	for _, pattern := range csrfPatterns {
		if match := pattern.FindSubmatch(body); match != nil {
			return string(match[1]), nil
		}
	}
	return "", services.Wrap(services.ErrTransient, "lcg", "fetch login page",
		"CSRF token not found, the site layout may have changed", nil)
}

func (c *Client) get(ctx context.Context, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", target, err)
	}
	return c.client.Do(req)
}
