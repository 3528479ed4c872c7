package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/g-s-k-zoro/gsk-man-page/internal/di"
	"github.com/g-s-k-zoro/gsk-man-page/internal/ui"
)

func searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "search <query>",
		Aliases: []string{"s"},
		Short:   "Search site content and graph nodes",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger, err := offlineLogger(cfg)
			if err != nil {
				return err
			}
			s, err := loadSite(cfg, logger)
			if err != nil {
				return err
			}
			svc, err := di.ProvideSearch(cfg, s, logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			query := strings.Join(args, " ")
			results, err := svc.Search(query)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Fprintf(out, "  %s no results for %q\n", ui.WarnIcon(), query)
				return nil
			}

			rows := make([][]string, 0, len(results))
			for _, r := range results {
				rows = append(rows, []string{strconv.FormatFloat(r.Score, 'g', -1, 64), r.Title, r.URL, r.Section})
			}
			ui.Table(out, []string{"SCORE", "TITLE", "URL", "SECTION"}, rows)
			fmt.Fprintln(out)
			for _, r := range results {
				fmt.Fprintf(out, "  %s\n  %s\n\n", ui.Info.Sprint(r.Title), ui.Subtle.Sprint(r.Snippet))
			}
			return nil
		},
	}
}
