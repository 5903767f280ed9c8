package testsupport

import (
	"path/filepath"
	"testing"

	"comicgrabr/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithAirDCPP sets AirDC++ connection details on the test config.
func WithAirDCPP(apiURL, username, password string) ConfigOption {
	return func(c *config.Config) {
		c.AirDCPP.APIURL = apiURL
		c.AirDCPP.Username = username
		c.AirDCPP.Password = password
	}
}

// WithDiscordWebhook sets the notification webhook on the test config.
func WithDiscordWebhook(url string) ConfigOption {
	return func(c *config.Config) {
		c.Notifications.DiscordWebhookURL = url
	}
}
