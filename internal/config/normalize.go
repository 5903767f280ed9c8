package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLCG()
	c.normalizeAirDCPP()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLCG() {
	if strings.TrimSpace(c.LCG.Username) == "" {
		c.LCG.Username = strings.TrimSpace(os.Getenv("LCG_USERNAME"))
	}
	if strings.TrimSpace(c.LCG.Password) == "" {
		c.LCG.Password = os.Getenv("LCG_PASSWORD")
	}
	if strings.TrimSpace(c.LCG.LoginURL) == "" {
		c.LCG.LoginURL = defaultLCGLoginURL
	}
	if strings.TrimSpace(c.LCG.ExportURL) == "" {
		c.LCG.ExportURL = defaultLCGExportURL
	}
	if c.LCG.RequestTimeout <= 0 {
		c.LCG.RequestTimeout = defaultLCGTimeout
	}
}

func (c *Config) normalizeAirDCPP() {
	if strings.TrimSpace(c.AirDCPP.APIURL) == "" {
		c.AirDCPP.APIURL = strings.TrimSpace(os.Getenv("AIRDCPP_API_URL"))
	}
	if strings.TrimSpace(c.AirDCPP.APIURL) == "" {
		c.AirDCPP.APIURL = defaultAirDCPPAPIURL
	}
	if !strings.HasSuffix(c.AirDCPP.APIURL, "/") {
		c.AirDCPP.APIURL += "/"
	}
	if strings.TrimSpace(c.AirDCPP.Username) == "" {
		c.AirDCPP.Username = strings.TrimSpace(os.Getenv("AIRDCPP_USERNAME"))
	}
	if strings.TrimSpace(c.AirDCPP.Password) == "" {
		c.AirDCPP.Password = os.Getenv("AIRDCPP_PASSWORD")
	}
	if c.AirDCPP.RequestTimeout <= 0 {
		c.AirDCPP.RequestTimeout = defaultAirDCPPTimeout
	}
}

func (c *Config) normalizeNotifications() {
	if strings.TrimSpace(c.Notifications.DiscordWebhookURL) == "" {
		c.Notifications.DiscordWebhookURL = strings.TrimSpace(os.Getenv("DISCORD_WEBHOOK_URL"))
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
