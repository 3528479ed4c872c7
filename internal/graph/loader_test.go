package graph_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/g-s-k-zoro/gsk-man-page/internal/graph"
	apperrors "github.com/g-s-k-zoro/gsk-man-page/pkg/errors"
)

const (
	jsonDef = `{
  "nodes": [
    {"id": "career", "title": "Career", "color": "#f6ad55", "size": "large"},
    {"id": "projects", "title": "Projects", "color": "#68d391", "size": "medium"}
  ],
  "links": [{"source": "career", "target": "projects", "strength": 0.8}]
}`

	yamlDef = `
nodes:
  - id: career
    title: Career
    color: "#f6ad55"
    size: large
  - id: projects
    title: Projects
    size: medium
links:
  - source: career
    target: projects
    strength: 0.8
`

	tomlDef = `
[[nodes]]
id = "career"
title = "Career"
size = "large"

[[nodes]]
id = "projects"
title = "Projects"
size = "medium"

[[links]]
source = "career"
target = "projects"
strength = 0.8
`

	hclDef = `
node "career" {
  title = "Career"
  size  = "large"
  tags  = ["Professional", "Work"]
}

node "projects" {
  title = "Projects"
  size  = "medium"
}

link {
  source   = "career"
  target   = "projects"
  strength = 0.8
}
`
)

func TestLoader_Decode(t *testing.T) {
	tests := []struct {
		name string
		file string
		src  string
	}{
		{"json", "site.json", jsonDef},
		{"yaml", "site.yaml", yamlDef},
		{"yml", "site.YML", yamlDef},
		{"toml", "site.toml", tomlDef},
		{"hcl", "site.hcl", hclDef},
	}

	loader := graph.NewLoader(zap.NewNop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, err := loader.Decode(strings.NewReader(tt.src), tt.file)
			require.NoError(t, err)

			require.Len(t, def.Nodes, 2)
			assert.Equal(t, "career", def.Nodes[0].ID)
			assert.Equal(t, graph.SizeLarge, def.Nodes[0].Size)
			require.Len(t, def.Links, 1)
			require.NotNil(t, def.Links[0].Strength)
			assert.Equal(t, 0.8, *def.Links[0].Strength)
		})
	}
}

func TestLoader_Decode_Errors(t *testing.T) {
	loader := graph.NewLoader(nil)

	_, err := loader.Decode(strings.NewReader("{}"), "site.xml")
	assert.True(t, apperrors.IsValidation(err))

	_, err = loader.Decode(strings.NewReader("{not json"), "site.json")
	assert.True(t, apperrors.IsValidation(err))

	_, err = loader.Decode(strings.NewReader(`node { title = "x" }`), "site.hcl")
	assert.Error(t, err)
}

func TestLoader_LoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "site.json")
	src := strings.Replace(jsonDef, `"target": "projects"`, `"target": "nowhere"`, 1)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	g, issues, err := graph.NewLoader(nil).LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, g.Len())
	assert.Empty(t, g.Edges())
	assert.Len(t, issues, 1)

	_, _, err = graph.NewLoader(nil).LoadFile(filepath.Join(dir, "absent.json"))
	assert.Error(t, err)
}

func TestLoader_SiteStructure(t *testing.T) {
	g, issues, err := graph.NewLoader(nil).LoadFile(filepath.Join("..", "..", "data", "site-structure.json"))
	require.NoError(t, err)
	assert.Empty(t, issues)
	assert.Equal(t, 8, g.Len())
	for _, n := range g.Nodes() {
		deg := g.Degree(n.ID)
		assert.GreaterOrEqual(t, deg, 3, n.ID)
		assert.LessOrEqual(t, deg, 4, n.ID)
	}
}
