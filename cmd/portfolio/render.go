package main

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/g-s-k-zoro/gsk-man-page/internal/ui"
)

func renderCmd() *cobra.Command {
	var (
		flags  sizeFlags
		output string
		visual string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the settled graph as an SVG document",
		Example: `  portfolio render -o graph.svg
  portfolio render --visual plain --width 800 --height 600 > graph.svg`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if visual != "" && visual != "plain" && visual != "sketch" {
				return fmt.Errorf("unknown visual %q, want plain or sketch", visual)
			}
			logger, err := offlineLogger(cfg)
			if err != nil {
				return err
			}
			s, err := loadSite(cfg, logger)
			if err != nil {
				return err
			}
			saved, err := flags.saved(cfg)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := s.RenderSVG(context.Background(), &buf, flags.size(), saved, visual); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if output != "" && output != "-" {
				if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "%s wrote %s (%d bytes)\n", ui.StatusIcon(true), output, buf.Len())
				return nil
			}
			_, err = buf.WriteTo(w)
			return err
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	cmd.Flags().StringVar(&visual, "visual", "", "Node visual: plain or sketch (default from config)")
	return cmd
}
