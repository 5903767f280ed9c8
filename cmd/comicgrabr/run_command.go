package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"comicgrabr/internal/notifications"
	"comicgrabr/internal/pulllist"
	"comicgrabr/internal/services/airdcpp"
	"comicgrabr/internal/services/lcg"
	"comicgrabr/internal/workflow"
)

func newRunCommand(cmdCtx *commandContext) *cobra.Command {
	var catchUp bool
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Sync the pull list and queue today's releases",
		Long: "Downloads the latest pull list from League of Comic Geeks, reconciles it\n" +
			"with the local store, and queues today's releases on AirDC++. With\n" +
			"--catch-up, releases whose date has passed but are still tracked are\n" +
			"queued as well.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}

			logger := cmdCtx.newRunLogger(cfg)

			store, err := pulllist.Open(cfg)
			if err != nil {
				return fmt.Errorf("open pull list store: %w", err)
			}
			defer store.Close()

			importer, err := lcg.NewClient(cfg, logger)
			if err != nil {
				return err
			}
			searchClient, err := airdcpp.NewClient(cfg, logger)
			if err != nil {
				return err
			}
			notifier := notifications.NewService(cfg, dryRun)

			manager := workflow.NewManager(cfg, store, importer,
				workflow.NewSearchService(searchClient), notifier, logger)

			mode := workflow.ModeDaily
			if catchUp {
				mode = workflow.ModeCatchUp
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return manager.Run(ctx, mode, dryRun)
		},
	}

	cmd.Flags().BoolVar(&catchUp, "catch-up", false, "Also queue releases whose date has already passed")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Search and report without queueing downloads")
	return cmd
}

func newImportCommand(cmdCtx *commandContext) *cobra.Command {
	var filePath string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Update the pull list without downloading",
		Long: "Imports the pull list and reconciles the local store, skipping the\n" +
			"download phase. With --file, a previously downloaded export is parsed\n" +
			"instead of logging into League of Comic Geeks.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}

			logger := cmdCtx.newRunLogger(cfg)

			store, err := pulllist.Open(cfg)
			if err != nil {
				return fmt.Errorf("open pull list store: %w", err)
			}
			defer store.Close()

			var importer workflow.Importer
			if filePath != "" {
				importer = workflow.ImporterFunc(func(context.Context) ([]pulllist.Release, error) {
					return lcg.ImportFile(filePath, logger)
				})
			} else {
				importer, err = lcg.NewClient(cfg, logger)
				if err != nil {
					return err
				}
			}

			notifier := notifications.NewService(cfg, false)
			manager := workflow.NewManager(cfg, store, importer, nil, notifier, logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := manager.Run(ctx, workflow.ModeImportOnly, false); err != nil {
				return err
			}

			count, err := store.Count(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pull list updated: %d upcoming release(s) tracked\n", count)
			return nil
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "", "Path to a previously downloaded pull-list export")
	return cmd
}
