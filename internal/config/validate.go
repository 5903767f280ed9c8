package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable. Credentials are deliberately
// not required here; commands that need them fail with a configuration error
// when the relevant client is constructed.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateAirDCPP(); err != nil {
		return err
	}
	if err := c.validateSearch(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateAirDCPP() error {
	parsed, err := url.Parse(c.AirDCPP.APIURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("airdcpp.api_url %q is not a valid URL", c.AirDCPP.APIURL)
	}
	return nil
}

func (c *Config) validateSearch() error {
	if c.Search.ResultLimit < 1 {
		return errors.New("search.result_limit must be at least 1")
	}
	if c.Search.PollAttempts < 1 {
		return errors.New("search.poll_attempts must be at least 1")
	}
	if c.Search.PollInitialDelay < 0 || c.Search.PollDelayIncrement < 0 {
		return errors.New("search poll delays must not be negative")
	}
	if c.Search.ReleaseDelay < 0 {
		return errors.New("search.release_delay must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
