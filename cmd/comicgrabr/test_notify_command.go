package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"comicgrabr/internal/notifications"
)

func newTestNotifyCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if strings.TrimSpace(cfg.Notifications.DiscordWebhookURL) == "" {
				fmt.Fprintln(out, "No Discord webhook configured; nothing to send")
				return nil
			}

			notifier := notifications.NewService(cfg, false)
			if err := notifier.TestNotification(cmd.Context()); err != nil {
				return fmt.Errorf("send test notification: %w", err)
			}
			fmt.Fprintln(out, "Test notification sent")
			return nil
		},
	}
}
