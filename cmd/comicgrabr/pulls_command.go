package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"comicgrabr/internal/pulllist"
)

func newPullsCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "pulls",
		Short: "Show the tracked pull list",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}

			store, err := pulllist.Open(cfg)
			if err != nil {
				return fmt.Errorf("open pull list store: %w", err)
			}
			defer store.Close()

			releases, err := store.Load(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(releases) == 0 {
				fmt.Fprintln(out, "No upcoming releases tracked")
				return nil
			}

			rows := make([][]string, 0, len(releases))
			for _, release := range releases {
				rows = append(rows, []string{
					release.DateString(),
					release.SeriesTitle,
					release.IssueNumber,
					release.Publisher,
				})
			}

			fmt.Fprintln(out, renderTable(
				[]string{"Release", "Series", "Issue", "Publisher"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
				fancyOutput(out),
			))
			fmt.Fprintf(out, "%d release(s) tracked\n", len(releases))
			return nil
		},
	}
}
