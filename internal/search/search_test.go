package search_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/g-s-k-zoro/gsk-man-page/internal/graph"
	"github.com/g-s-k-zoro/gsk-man-page/internal/search"
	appErrors "github.com/g-s-k-zoro/gsk-man-page/pkg/errors"
)

func testIndex() *search.Index {
	return search.NewIndex(
		search.Document{ID: "a", Title: "Go Services", Text: "Backend services written in Go and gRPC", URL: "/career", Section: "Career"},
		search.Document{ID: "b", Title: "Puzzles", Text: "Blog posts puzzles waste time fun", URL: "/waste_time", Section: "Content"},
		search.Document{ID: "c", Title: "Gopher notes", Text: "Notes on the go toolchain", URL: "/projects", Section: "Projects"},
		search.Document{ID: "d", Title: "Why haven't I started yet?", Text: "Procrastination obstacles", URL: "/why_not_started", Section: "Personal"},
	)
}

func ids(results []search.Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.ID
	}
	return out
}

func TestIndex_Search(t *testing.T) {
	ix := testIndex()

	tests := []struct {
		name   string
		query  string
		want   []string
		scores []float64
	}{
		{"exact match with title bonus", "go", []string{"a", "c"}, []float64{3, 3}},
		{"all tokens must match", "go notes", []string{"c"}, []float64{6}},
		{"forward prefix", "puz", []string{"b"}, []float64{2}},
		{"case insensitive", "PROCRAST", []string{"d"}, []float64{1}},
		{"apostrophes are ignored", "haven't", []string{"d"}, []float64{3}},
		{"no hit", "kubernetes", []string{}, nil},
		{"punctuation only", "?!", []string{}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ix.Search(tt.query, 5)
			assert.Equal(t, tt.want, ids(got))
			for i, s := range tt.scores {
				assert.Equal(t, s, got[i].Score)
			}
		})
	}
}

func TestIndex_SearchLimitKeepsInsertionOrderOnTies(t *testing.T) {
	ix := search.NewIndex()
	for _, id := range []string{"1", "2", "3", "4", "5", "6", "7"} {
		ix.Add(search.Document{ID: id, Title: "Entry " + id, Text: "shared words"})
	}

	got := ix.Search("shared", 5)
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, ids(got))
	assert.Empty(t, ix.Search("shared", 0))
}

func TestIndex_ResultCarriesDocument(t *testing.T) {
	got := testIndex().Search("puzzles", 5)
	require.Len(t, got, 1)
	assert.Equal(t, "Puzzles", got[0].Title)
	assert.Equal(t, "/waste_time", got[0].URL)
	assert.Equal(t, "Content", got[0].Section)
	assert.Equal(t, "Blog posts puzzles waste time fun", got[0].Snippet)
}

func TestSnippet(t *testing.T) {
	long := strings.Repeat("x", 50) + "needle" + strings.Repeat("y", 100)

	tests := []struct {
		name  string
		text  string
		query string
		want  string
	}{
		{"whole short text", "Go is fun", "go", "Go is fun"},
		{"window with both cuts", long, "NEEDLE", "..." + strings.Repeat("x", 40) + "needle" + strings.Repeat("y", 60) + "..."},
		{"no occurrence truncates", strings.Repeat("a", 150), "zzz", strings.Repeat("a", 100) + "..."},
		{"no occurrence short", "hello", "zzz", "hello..."},
		{"multi-word query", "Blog posts puzzles", "posts puz", "Blog posts puzzles"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, search.Snippet(tt.text, tt.query))
		})
	}
}

func TestLoadContent(t *testing.T) {
	docs, err := search.LoadContent(filepath.Join("..", "..", "data", "content.yaml"))
	require.NoError(t, err)
	require.Len(t, docs, 6)
	assert.Equal(t, "skills", docs[0].ID)
	assert.Equal(t, "/waste_time", docs[4].URL)

	docs, err = search.LoadContent("")
	assert.NoError(t, err)
	assert.Empty(t, docs)

	_, err = search.LoadContent(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, appErrors.IsInternal(err))

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"id": "not a list"}`), 0o600))
	_, err = search.LoadContent(bad)
	assert.True(t, appErrors.IsConfiguration(err))
}

func TestService(t *testing.T) {
	g, issues := graph.Normalize(graph.Definition{
		Nodes: []graph.Node{{ID: "projects", Title: "Projects", Summary: "Things I built", Size: graph.SizeLarge, Tags: []string{"Open Source"}}},
	}, nil)
	require.Empty(t, issues)

	content := []search.Document{{ID: "ongoing", Title: "Ongoing Projects", Text: "active projects kanban board", URL: "/ongoing", Section: "Projects"}}
	svc := search.NewService(content, g, 0, nil)

	t.Run("blank query", func(t *testing.T) {
		got, err := svc.Search("   ")
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("too long", func(t *testing.T) {
		_, err := svc.Search(strings.Repeat("a", search.MaxQueryLength+1))
		assert.True(t, appErrors.IsValidation(err))
	})

	t.Run("content and nodes", func(t *testing.T) {
		got, err := svc.Search("projects")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"ongoing", "node-projects"}, ids(got))
	})

	t.Run("node tags", func(t *testing.T) {
		got, err := svc.Search("open source")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "/projects", got[0].URL)
		assert.Equal(t, "Major Section", got[0].Section)
	})

	t.Run("rebuild", func(t *testing.T) {
		next, _ := graph.Normalize(graph.Definition{Nodes: []graph.Node{{ID: "chess", Size: graph.SizeSmall}}}, nil)
		svc.Rebuild(next)

		got, err := svc.Search("chess")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "/chess", got[0].URL)
		assert.Equal(t, "Topic", got[0].Section)

		got, err = svc.Search("open source")
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
