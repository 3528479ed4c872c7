package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/g-s-k-zoro/gsk-man-page/internal/ui"
)

func checkCmd() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration and graph definition",
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

			out := cmd.OutOrStdout()
			g := s.Graph()
			ui.KeyValues(out, [][2]string{
				{"definition", cfg.Graph.DefinitionPath},
				{"nodes", strconv.Itoa(g.Len())},
				{"links", strconv.Itoa(len(g.Edges()))},
			})

			issues := s.Issues()
			if len(issues) == 0 {
				fmt.Fprintf(out, "\n  %s definition is clean\n", ui.StatusIcon(true))
				return nil
			}
			fmt.Fprintln(out)
			for _, issue := range issues {
				fmt.Fprintf(out, "  %s %s\n", ui.WarnIcon(), issue)
			}
			if strict {
				return fmt.Errorf("%d definition issues", len(issues))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when the definition has issues")
	return cmd
}
