package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/g-s-k-zoro/gsk-man-page/internal/config"
	"github.com/g-s-k-zoro/gsk-man-page/internal/positions"
	"github.com/g-s-k-zoro/gsk-man-page/internal/ui"
	"github.com/g-s-k-zoro/gsk-man-page/internal/viewport"
)

// sizeFlags are shared by the headless commands.
type sizeFlags struct {
	width, height float64
	profile       string
}

func (f *sizeFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.width, "width", 1200, "Viewport width")
	cmd.Flags().Float64Var(&f.height, "height", 800, "Viewport height")
	cmd.Flags().StringVar(&f.profile, "profile", "", "Seed from this profile's saved positions")
}

func (f *sizeFlags) size() viewport.Size {
	return viewport.Size{Width: f.width, Height: f.height}
}

func (f *sizeFlags) saved(cfg *config.Config) (map[string]positions.Point, error) {
	if f.profile == "" {
		return nil, nil
	}
	dir, err := positions.NewDirectory(cfg.Positions.Directory, nil)
	if err != nil {
		return nil, err
	}
	store, err := dir.ForProfile(f.profile)
	if err != nil {
		return nil, err
	}
	return store.Load(), nil
}

func layoutCmd() *cobra.Command {
	var flags sizeFlags

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Settle the graph headlessly and print node placements",
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
			saved, err := flags.saved(cfg)
			if err != nil {
				return err
			}

			l, err := s.Settle(context.Background(), flags.size(), saved)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			ui.Banner(out, fmt.Sprintf("layout %gx%g", l.Width, l.Height))
			rows := make([][]string, 0, len(l.Nodes))
			for _, p := range l.Nodes {
				rows = append(rows, []string{p.ID, num(p.X), num(p.Y), num(p.Radius), ui.StatusIcon(p.Saved)})
			}
			ui.Table(out, []string{"NODE", "X", "Y", "RADIUS", "SAVED"}, rows)
			fmt.Fprintln(out)
			ui.KeyValues(out, [][2]string{
				{"settled", ui.StatusIcon(l.Settled)},
				{"steps", strconv.Itoa(l.Stats.Steps)},
				{"alpha", strconv.FormatFloat(l.Stats.Alpha, 'g', 4, 64)},
				{"link error", num(l.Stats.LinkErrorMean)},
				{"min clearance", num(l.Stats.MinClearance)},
			})
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
