package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"comicgrabr/internal/config"
	"comicgrabr/internal/pulllist"
)

const userAgent = "comicgrabr/0.1.0"

// Embed sidebar colors.
const (
	colorInfo    = 0x3498DB
	colorSuccess = 0x00FF00
	colorWarning = 0xFF8C00
	colorError   = 0xFF0000
	colorMuted   = 0xADD8E6
	colorDryRun  = 0xAAAAAA
)

// Service defines the notification surface exposed to workflow components.
type Service interface {
	NotifyRunStarted(ctx context.Context, mode string) error
	NotifyImportCompleted(ctx context.Context, imported, stored int) error
	NotifyQueued(ctx context.Context, release pulllist.Release, fileName string) error
	NotifySkippedExisting(ctx context.Context, release pulllist.Release, fileName string) error
	NotifyNoMatch(ctx context.Context, release pulllist.Release) error
	NotifyReleaseFailed(ctx context.Context, release pulllist.Release, err error) error
	NotifyRunCompleted(ctx context.Context, queued, skipped, noMatch, failed int, duration time.Duration) error
	NotifyRunFailed(ctx context.Context, err error, stage string) error
	NotifyUpcoming(ctx context.Context, day time.Time, releases []pulllist.Release) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by a Discord webhook when
// configured. When no webhook URL is configured, a noop implementation is
// returned. With dryRun set, every embed is prefixed and greyed so readers can
// tell no downloads were actually queued.
func NewService(cfg *config.Config, dryRun bool) Service {
	webhook := strings.TrimSpace(cfg.Notifications.DiscordWebhookURL)
	if webhook == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &discordService{
		webhook:    webhook,
		client:     &http.Client{Timeout: timeout},
		dryRun:     dryRun,
		perRelease: cfg.Notifications.PerRelease,
		upcoming:   cfg.Notifications.Upcoming,
	}
}

type embed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       int    `json:"color"`
}

type webhookPayload struct {
	Embeds []embed `json:"embeds"`
}

type discordService struct {
	webhook    string
	client     *http.Client
	dryRun     bool
	perRelease bool
	upcoming   bool
}

func (d *discordService) NotifyRunStarted(ctx context.Context, mode string) error {
	return d.send(ctx, embed{
		Title:       "Comic Grabber Started",
		Description: fmt.Sprintf("Starting a %s run.", strings.TrimSpace(mode)),
		Color:       colorInfo,
	})
}

func (d *discordService) NotifyImportCompleted(ctx context.Context, imported, stored int) error {
	return d.send(ctx, embed{
		Title: "Pull List Updated",
		Description: fmt.Sprintf("Imported %d release(s); %d upcoming release(s) now tracked.",
			imported, stored),
		Color: colorInfo,
	})
}

func (d *discordService) NotifyQueued(ctx context.Context, release pulllist.Release, fileName string) error {
	if !d.perRelease {
		return nil
	}
	return d.send(ctx, embed{
		Title: "Comic Download Queued",
		Description: fmt.Sprintf("**Queued:** %s\nFile: `%s`",
			release.DisplayTitle(), strings.TrimSpace(fileName)),
		Color: colorSuccess,
	})
}

func (d *discordService) NotifySkippedExisting(ctx context.Context, release pulllist.Release, fileName string) error {
	if !d.perRelease {
		return nil
	}
	return d.send(ctx, embed{
		Title: "Comic Download Skipped",
		Description: fmt.Sprintf("**Skipped:** %s\nAlready on disk or in the download queue (`%s`).",
			release.DisplayTitle(), strings.TrimSpace(fileName)),
		Color: colorWarning,
	})
}

func (d *discordService) NotifyNoMatch(ctx context.Context, release pulllist.Release) error {
	if !d.perRelease {
		return nil
	}
	return d.send(ctx, embed{
		Title: "No Download Found",
		Description: fmt.Sprintf("No match found for %s (released %s).",
			release.DisplayTitle(), release.DateString()),
		Color: colorWarning,
	})
}

func (d *discordService) NotifyReleaseFailed(ctx context.Context, release pulllist.Release, err error) error {
	if !d.perRelease {
		return nil
	}
	description := fmt.Sprintf("**Failed:** %s", release.DisplayTitle())
	if err != nil {
		description = fmt.Sprintf("%s\n%s", description, strings.TrimSpace(err.Error()))
	}
	return d.send(ctx, embed{
		Title:       "Comic Download Failed",
		Description: description,
		Color:       colorError,
	})
}

func (d *discordService) NotifyRunCompleted(ctx context.Context, queued, skipped, noMatch, failed int, duration time.Duration) error {
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}

	color := colorSuccess
	if failed > 0 {
		color = colorWarning
	}
	description := fmt.Sprintf(
		"**Daily Run Complete!**\nSuccessfully queued: %d comic(s)\nSkipped (already exists): %d comic(s)\nNo match found: %d comic(s)\nFailed to find/queue: %d comic(s)\nDuration: %s",
		queued, skipped, noMatch, failed, duration)

	return d.send(ctx, embed{
		Title:       "Comic Grabber Finished",
		Description: description,
		Color:       color,
	})
}

func (d *discordService) NotifyRunFailed(ctx context.Context, err error, stage string) error {
	var builder strings.Builder
	builder.WriteString("Run aborted")
	if stage = strings.TrimSpace(stage); stage != "" {
		builder.WriteString(" during ")
		builder.WriteString(stage)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown error")
	}
	return d.send(ctx, embed{
		Title:       "Comic Grabber Error",
		Description: builder.String(),
		Color:       colorError,
	})
}

func (d *discordService) NotifyUpcoming(ctx context.Context, day time.Time, releases []pulllist.Release) error {
	if !d.upcoming {
		return nil
	}

	date := day.Format(pulllist.DateFormat)
	if len(releases) == 0 {
		return d.send(ctx, embed{
			Title:       "Upcoming Comic Releases",
			Description: fmt.Sprintf("No comics scheduled for release next Wednesday (%s).", date),
			Color:       colorMuted,
		})
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "**Comics Releasing Next Wednesday (%s):**\n", date)
	for _, release := range releases {
		fmt.Fprintf(&builder, "- %s\n", release.DisplayTitle())
	}
	return d.send(ctx, embed{
		Title:       "Upcoming Comic Releases",
		Description: builder.String(),
		Color:       colorInfo,
	})
}

func (d *discordService) TestNotification(ctx context.Context) error {
	return d.send(ctx, embed{
		Title:       "Comic Grabber Test",
		Description: "Notification system test.",
		Color:       colorInfo,
	})
}

func (d *discordService) send(ctx context.Context, e embed) error {
	if d == nil || d.client == nil {
		return nil
	}

	if d.dryRun {
		e.Title = "[DRY RUN] " + e.Title
		e.Description = "**This is a dry run. No downloads were queued and no state changed.**\n\n" + e.Description
		e.Color = colorDryRun
	}

	body, err := json.Marshal(webhookPayload{Embeds: []embed{e}})
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhook, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyRunStarted(context.Context, string) error                        { return nil }
func (noopService) NotifyImportCompleted(context.Context, int, int) error                 { return nil }
func (noopService) NotifyQueued(context.Context, pulllist.Release, string) error          { return nil }
func (noopService) NotifySkippedExisting(context.Context, pulllist.Release, string) error { return nil }
func (noopService) NotifyNoMatch(context.Context, pulllist.Release) error                 { return nil }
func (noopService) NotifyReleaseFailed(context.Context, pulllist.Release, error) error    { return nil }
func (noopService) NotifyRunCompleted(context.Context, int, int, int, int, time.Duration) error {
	return nil
}
func (noopService) NotifyRunFailed(context.Context, error, string) error                { return nil }
func (noopService) NotifyUpcoming(context.Context, time.Time, []pulllist.Release) error { return nil }
func (noopService) TestNotification(context.Context) error                              { return nil }
