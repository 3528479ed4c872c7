package view

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/g-s-k-zoro/gsk-man-page/internal/graph"
	"github.com/g-s-k-zoro/gsk-man-page/internal/interaction"
	"github.com/g-s-k-zoro/gsk-man-page/internal/scene"
	"github.com/g-s-k-zoro/gsk-man-page/internal/viewport"
)

// OutputType names what a view emits to its client.
type OutputType string

const (
	OutputFrame    OutputType = "frame"
	OutputHover    OutputType = "hover"
	OutputNavigate OutputType = "navigate"
	OutputReloaded OutputType = "reloaded"
)

// Output is one message from the view to its client.
type Output struct {
	Type  OutputType   `json:"type"`
	Scene *scene.Scene `json:"scene,omitempty"`
	Node  *graph.Node  `json:"node"`
	Path  string       `json:"path,omitempty"`
}

// Input is one message from the client (or server) to the view. Exactly one
// field is set.
type Input struct {
	Pointer *interaction.PointerEvent
	Resize  *viewport.Size
	Reload  *graph.Graph
}

// Run drives the view until ctx is cancelled, inbox is closed or emit fails.
// Inputs are applied between frames; frames are produced on a fixed ticker
// and only emitted when something changed. The view is closed on return.
func (v *GraphView) Run(ctx context.Context, inbox <-chan Input, emit func(Output) error) error {
	defer v.Close()

	ticker := time.NewTicker(v.opts.FrameInterval)
	defer ticker.Stop()

	flush := func() error {
		for _, out := range v.Drain() {
			if err := emit(out); err != nil {
				return err
			}
		}
		return nil
	}

	if err := emit(Output{Type: OutputFrame, Scene: ptr(v.Scene())}); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case in, ok := <-inbox:
			if !ok {
				return nil
			}
			v.apply(in)
			if err := flush(); err != nil {
				return err
			}

		case <-ticker.C:
			s, changed := v.Tick()
			if err := flush(); err != nil {
				return err
			}
			if !changed {
				continue
			}
			if err := emit(Output{Type: OutputFrame, Scene: &s}); err != nil {
				v.logger.Debug("Frame emit failed, stopping view", zap.Error(err))
				return err
			}
		}
	}
}

func (v *GraphView) apply(in Input) {
	switch {
	case in.Pointer != nil:
		v.HandlePointer(*in.Pointer)
	case in.Resize != nil:
		v.Resize(*in.Resize)
	case in.Reload != nil:
		v.Reload(in.Reload)
	}
}

func ptr[T any](v T) *T { return &v }
