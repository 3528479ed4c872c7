package view_test

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/g-s-k-zoro/gsk-man-page/internal/graph"
	"github.com/g-s-k-zoro/gsk-man-page/internal/interaction"
	"github.com/g-s-k-zoro/gsk-man-page/internal/positions"
	"github.com/g-s-k-zoro/gsk-man-page/internal/view"
	"github.com/g-s-k-zoro/gsk-man-page/internal/viewport"
)

type halfEm struct{}

func (halfEm) Width(text string, px float64) float64 { return float64(len([]rune(text))) * px * 0.5 }

type countingRecorder struct {
	mu          sync.Mutex
	steps       int
	frames      int
	saves       int
	navigations []string
}

func (r *countingRecorder) RecordLayoutStep()   { r.mu.Lock(); r.steps++; r.mu.Unlock() }
func (r *countingRecorder) RecordFrame()        { r.mu.Lock(); r.frames++; r.mu.Unlock() }
func (r *countingRecorder) RecordPositionSave() { r.mu.Lock(); r.saves++; r.mu.Unlock() }
func (r *countingRecorder) RecordNavigation(id string) {
	r.mu.Lock()
	r.navigations = append(r.navigations, id)
	r.mu.Unlock()
}

func testGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g, issues := graph.Normalize(graph.Definition{
		Nodes: []graph.Node{{ID: "career", Size: graph.SizeLarge}, {ID: "projects"}, {ID: "personal"}},
		Links: []graph.Link{
			{Source: "career", Target: "projects"},
			{Source: "projects", Target: "personal"},
		},
	}, nil)
	require.Empty(t, issues)
	return g
}

func testOptions(rec view.Recorder) view.Options {
	opts := view.DefaultOptions()
	opts.Measurer = halfEm{}
	opts.Rand = rand.New(rand.NewSource(7))
	opts.Viewport.Debounce = 10 * time.Millisecond
	opts.Recorder = rec
	return opts
}

var size = viewport.Size{Width: 800, Height: 600}

func press(v *view.GraphView, kind interaction.PointerKind, p r2.Vec) {
	v.HandlePointer(interaction.PointerEvent{Kind: kind, X: p.X, Y: p.Y})
}

func TestNew_SeedsFromStore(t *testing.T) {
	store := positions.NewMemoryStore(map[string]positions.Point{"career": {X: 10, Y: 20}})
	v := view.New(testGraph(t), store, size, testOptions(nil))
	defer v.Close()

	assert.Equal(t, r2.Vec{X: 10, Y: 20}, v.Simulation().Position(0))
	assert.Equal(t, 800.0, v.Geometry().Width)
}

func TestDrag_PersistsAndReseedsFreshMount(t *testing.T) {
	g := testGraph(t)
	store := positions.NewMemoryStore(nil)
	rec := &countingRecorder{}
	v := view.New(g, store, size, testOptions(rec))

	for range 30 {
		v.Tick()
	}
	start := v.Simulation().Position(0)
	target := r2.Add(start, r2.Vec{X: 60, Y: -25})

	press(v, interaction.PointerDown, start)
	press(v, interaction.PointerMove, r2.Add(start, r2.Vec{X: 10}))
	press(v, interaction.PointerMove, target)
	assert.Equal(t, 0, v.Controller().Dragging())
	press(v, interaction.PointerUp, target)
	v.Close()

	saved := store.Load()
	require.Contains(t, saved, "career")
	assert.InDelta(t, target.X, saved["career"].X, 1e-9)
	assert.InDelta(t, target.Y, saved["career"].Y, 1e-9)
	assert.Equal(t, 1, rec.saves)
	assert.Empty(t, rec.navigations)

	fresh := view.New(g, store, size, testOptions(nil))
	defer fresh.Close()
	assert.Equal(t, saved["career"].Vec(), fresh.Simulation().Position(0))
}

func TestClick_EmitsNavigate(t *testing.T) {
	rec := &countingRecorder{}
	v := view.New(testGraph(t), positions.NewMemoryStore(nil), size, testOptions(rec))
	defer v.Close()

	p := v.Simulation().Position(1)
	press(v, interaction.PointerDown, p)
	press(v, interaction.PointerUp, p)

	out := v.Drain()
	require.NotEmpty(t, out)
	assert.Equal(t, view.OutputNavigate, out[0].Type)
	assert.Equal(t, "/projects", out[0].Path)
	assert.Equal(t, "projects", out[0].Node.ID)
	assert.Equal(t, []string{"projects"}, rec.navigations)
	assert.Empty(t, v.Drain())
}

func TestHover_EmitsEnterAndLeave(t *testing.T) {
	v := view.New(testGraph(t), positions.NewMemoryStore(nil), size, testOptions(nil))
	defer v.Close()

	press(v, interaction.PointerMove, v.Simulation().Position(2))
	press(v, interaction.PointerLeave, r2.Vec{})

	out := v.Drain()
	require.Len(t, out, 2)
	assert.Equal(t, view.OutputHover, out[0].Type)
	assert.Equal(t, "personal", out[0].Node.ID)
	assert.Equal(t, view.OutputHover, out[1].Type)
	assert.Nil(t, out[1].Node)
}

func TestTick_RendersUntilStable(t *testing.T) {
	rec := &countingRecorder{}
	v := view.New(testGraph(t), positions.NewMemoryStore(nil), size, testOptions(rec))
	defer v.Close()

	s, changed := v.Tick()
	require.True(t, changed)
	assert.Len(t, s.Nodes, 3)
	assert.Len(t, s.Edges, 2)

	frames := 1
	for range 2000 {
		if _, changed := v.Tick(); changed {
			frames++
		}
	}
	assert.False(t, v.Simulation().Active())
	_, changed = v.Tick()
	assert.False(t, changed)
	assert.Equal(t, frames, rec.frames)
}

func TestResize_ReseedsWithoutNaN(t *testing.T) {
	store := positions.NewMemoryStore(map[string]positions.Point{"projects": {X: 5, Y: 5}})
	v := view.New(testGraph(t), store, size, testOptions(nil))
	defer v.Close()

	for range 20 {
		v.Tick()
	}
	v.Resize(viewport.Size{Width: 100, Height: 50})

	require.Eventually(t, func() bool {
		v.Tick()
		return v.Geometry().Width == 320
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, 240.0, v.Geometry().Height)
	for _, p := range v.Simulation().Positions() {
		assert.False(t, math.IsNaN(p.X) || math.IsNaN(p.Y))
	}

	v.ApplyGeometry(viewport.Compute(viewport.DefaultConfig(), viewport.Size{Width: 1024, Height: 768}))
	assert.Equal(t, r2.Vec{X: 5, Y: 5}, v.Simulation().Position(1))
	assert.Equal(t, r2.Vec{}, v.Simulation().Velocity(0))
}

func TestClose_MakesFramesNoOps(t *testing.T) {
	v := view.New(testGraph(t), positions.NewMemoryStore(nil), size, testOptions(nil))
	require.Equal(t, 1, v.Viewport().Listeners())

	v.Close()
	v.Close()

	assert.True(t, v.Closed())
	assert.Zero(t, v.Viewport().Listeners())
	_, changed := v.Tick()
	assert.False(t, changed)

	steps := v.Simulation().Steps()
	v.Resize(viewport.Size{Width: 1000, Height: 1000})
	press(v, interaction.PointerDown, v.Simulation().Position(0))
	v.Tick()
	assert.Equal(t, steps, v.Simulation().Steps())
	assert.Equal(t, -1, v.Controller().Dragging())
}

func TestReload_KeepsSavedPositions(t *testing.T) {
	store := positions.NewMemoryStore(map[string]positions.Point{"personal": {X: 42, Y: 24}})
	v := view.New(testGraph(t), store, size, testOptions(nil))
	defer v.Close()

	next, issues := graph.Normalize(graph.Definition{
		Nodes: []graph.Node{{ID: "personal"}, {ID: "ongoing"}},
		Links: []graph.Link{{Source: "personal", Target: "ongoing"}},
	}, nil)
	require.Empty(t, issues)

	v.Reload(next)
	assert.Equal(t, 2, v.Graph().Len())
	assert.Equal(t, r2.Vec{X: 42, Y: 24}, v.Simulation().Position(0))

	out := v.Drain()
	require.Len(t, out, 1)
	assert.Equal(t, view.OutputReloaded, out[0].Type)
}

func TestRun_ProcessesInputsAndStops(t *testing.T) {
	store := positions.NewMemoryStore(map[string]positions.Point{
		"career":   {X: 100, Y: 100},
		"projects": {X: 400, Y: 100},
		"personal": {X: 700, Y: 100},
	})
	opts := testOptions(nil)
	opts.FrameInterval = time.Hour
	v := view.New(testGraph(t), store, size, opts)

	var (
		mu  sync.Mutex
		got []view.Output
	)
	emit := func(o view.Output) error {
		mu.Lock()
		got = append(got, o)
		mu.Unlock()
		return nil
	}
	types := func() []view.OutputType {
		mu.Lock()
		defer mu.Unlock()
		out := make([]view.OutputType, len(got))
		for i, o := range got {
			out[i] = o.Type
		}
		return out
	}

	inbox := make(chan view.Input)
	done := make(chan error, 1)
	go func() { done <- v.Run(context.Background(), inbox, emit) }()

	inbox <- view.Input{Pointer: &interaction.PointerEvent{Kind: interaction.PointerDown, X: 400, Y: 100}}
	inbox <- view.Input{Pointer: &interaction.PointerEvent{Kind: interaction.PointerUp, X: 400, Y: 100}}
	close(inbox)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after inbox closed")
	}

	assert.Equal(t, []view.OutputType{view.OutputFrame, view.OutputNavigate, view.OutputHover}, types())
	assert.True(t, v.Closed())
}

func TestRun_StopsOnCancel(t *testing.T) {
	opts := testOptions(nil)
	opts.FrameInterval = time.Millisecond
	v := view.New(testGraph(t), positions.NewMemoryStore(nil), size, opts)

	ctx, cancel := context.WithCancel(context.Background())
	frames := make(chan struct{}, 1)
	emit := func(o view.Output) error {
		if o.Type == view.OutputFrame {
			select {
			case frames <- struct{}{}:
			default:
			}
		}
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- v.Run(ctx, make(chan view.Input), emit) }()

	<-frames
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.True(t, v.Closed())
}
