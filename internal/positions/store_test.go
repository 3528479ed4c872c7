package positions_test

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/g-s-k-zoro/gsk-man-page/internal/positions"
	apperrors "github.com/g-s-k-zoro/gsk-man-page/pkg/errors"
)

func TestFileStore_Load(t *testing.T) {
	tests := []struct {
		name    string
		content *string
		want    map[string]positions.Point
	}{
		{name: "missing file", content: nil, want: map[string]positions.Point{}},
		{name: "empty file", content: ptr(""), want: map[string]positions.Point{}},
		{name: "garbage", content: ptr("{{{not json"), want: map[string]positions.Point{}},
		{name: "wrong shape", content: ptr(`[1,2,3]`), want: map[string]positions.Point{}},
		{
			name:    "valid",
			content: ptr(`{"career":{"x":10.5,"y":-3},"projects":{"x":0,"y":0}}`),
			want: map[string]positions.Point{
				"career":   {X: 10.5, Y: -3},
				"projects": {X: 0, Y: 0},
			},
		},
		{
			name:    "bad entries are skipped",
			content: ptr(`{"career":{"x":1,"y":2},"broken":"oops","alsoBroken":{"x":"a"}}`),
			want:    map[string]positions.Point{"career": {X: 1, Y: 2}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nodePositions.json")
			if tt.content != nil {
				require.NoError(t, os.WriteFile(path, []byte(*tt.content), 0o644))
			}

			store := positions.NewFileStore(path, zaptest.NewLogger(t))
			assert.Equal(t, tt.want, store.Load())
		})
	}
}

func TestFileStore_SaveUpsertsAndPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "nodePositions.json")
	store := positions.NewFileStore(path, nil)

	require.NoError(t, store.Save("career", positions.Point{X: 1, Y: 2}))
	require.NoError(t, store.Save("projects", positions.Point{X: 3, Y: 4}))
	require.NoError(t, store.Save("career", positions.Point{X: 5, Y: 6}))

	fresh := positions.NewFileStore(path, nil)
	assert.Equal(t, map[string]positions.Point{
		"career":   {X: 5, Y: 6},
		"projects": {X: 3, Y: 4},
	}, fresh.Load())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), "temp file left behind: %s", e.Name())
	}
}

func TestFileStore_SaveRecoversFromCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nodePositions.json")
	require.NoError(t, os.WriteFile(path, []byte("corrupted"), 0o644))

	store := positions.NewFileStore(path, nil)
	require.NoError(t, store.Save("career", positions.Point{X: 7, Y: 8}))
	assert.Equal(t, map[string]positions.Point{"career": {X: 7, Y: 8}}, store.Load())
}

func TestStore_SaveRejectsInvalidInput(t *testing.T) {
	stores := map[string]positions.Store{
		"file":   positions.NewFileStore(filepath.Join(t.TempDir(), "p.json"), nil),
		"memory": positions.NewMemoryStore(nil),
	}
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			err := store.Save("", positions.Point{})
			assert.True(t, apperrors.IsValidation(err))

			err = store.Save("career", positions.Point{X: math.NaN()})
			assert.True(t, apperrors.IsValidation(err))

			err = store.Save("career", positions.Point{Y: math.Inf(-1)})
			assert.True(t, apperrors.IsValidation(err))

			assert.Empty(t, store.Load())
		})
	}
}

func TestMemoryStore(t *testing.T) {
	store := positions.NewMemoryStore(map[string]positions.Point{
		"seeded": {X: 1, Y: 1},
		"bad":    {X: math.NaN()},
	})

	assert.Equal(t, map[string]positions.Point{"seeded": {X: 1, Y: 1}}, store.Load())
	require.NoError(t, store.Save("career", positions.Point{X: 2, Y: 3}))
	assert.Equal(t, 1, store.Saves())

	loaded := store.Load()
	loaded["career"] = positions.Point{X: 99}
	assert.Equal(t, positions.Point{X: 2, Y: 3}, store.Load()["career"], "Load returns a copy")
}

func TestDirectory_ForProfile(t *testing.T) {
	dir, err := positions.NewDirectory(t.TempDir(), nil)
	require.NoError(t, err)

	profile := positions.NewProfile()
	a, err := dir.ForProfile(profile)
	require.NoError(t, err)
	b, err := dir.ForProfile(profile)
	require.NoError(t, err)
	assert.Same(t, a, b)

	require.NoError(t, a.Save("career", positions.Point{X: 1, Y: 2}))

	other, err := dir.ForProfile(positions.NewProfile())
	require.NoError(t, err)
	assert.Empty(t, other.Load(), "profiles are isolated")

	fs := a.(*positions.FileStore)
	assert.Equal(t, filepath.Join(dir.Root(), profile, positions.StorageKey+".json"), fs.Path())

	for _, bad := range []string{"", "../../etc", "not-a-uuid"} {
		_, err := dir.ForProfile(bad)
		assert.True(t, apperrors.IsValidation(err), bad)
	}
}

func TestVecs(t *testing.T) {
	in := map[string]positions.Point{"a": {X: 1, Y: 2}}
	out := positions.Vecs(in)
	assert.Equal(t, 1.0, out["a"].X)
	assert.Equal(t, positions.Point{X: 1, Y: 2}, positions.FromVec(out["a"]))
}

func ptr(s string) *string { return &s }
