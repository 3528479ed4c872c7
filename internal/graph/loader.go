package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	apperrors "github.com/g-s-k-zoro/gsk-man-page/pkg/errors"
)

// ============================================================================
// DEFINITION LOADER
// ============================================================================

// Decoder parses one definition file format.
type Decoder interface {
	Decode(r io.Reader, name string) (Definition, error)
	Extensions() []string
}

// Loader reads graph definitions, picking a decoder by file extension.
type Loader struct {
	decoders map[string]Decoder
	logger   *zap.Logger
}

// NewLoader creates a loader with JSON, YAML, TOML and HCL decoders registered.
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Loader{decoders: make(map[string]Decoder), logger: logger}
	l.Register(JSONDecoder{})
	l.Register(YAMLDecoder{})
	l.Register(TOMLDecoder{})
	l.Register(HCLDecoder{})
	return l
}

// Register adds or replaces the decoder for each of its extensions.
func (l *Loader) Register(d Decoder) {
	for _, ext := range d.Extensions() {
		l.decoders[ext] = d
	}
}

// Decode parses r using the decoder registered for name's extension.
func (l *Loader) Decode(r io.Reader, name string) (Definition, error) {
	ext := strings.ToLower(filepath.Ext(name))
	d, ok := l.decoders[ext]
	if !ok {
		return Definition{}, apperrors.NewValidation(fmt.Sprintf("unsupported graph definition format %q", ext))
	}
	def, err := d.Decode(r, name)
	if err != nil {
		return Definition{}, apperrors.NewValidation(fmt.Sprintf("parse %s: %v", name, err))
	}
	return def, nil
}

// LoadFile reads, parses and normalizes a definition file. The returned
// issues are non-fatal configuration errors; err is set only when no graph
// could be produced at all.
func (l *Loader) LoadFile(path string) (*Graph, []error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, apperrors.NewInternal("open graph definition", err)
	}
	defer f.Close()

	def, err := l.Decode(f, path)
	if err != nil {
		return nil, nil, err
	}

	g, issues := Normalize(def, l.logger.With(zap.String("file", path)))
	l.logger.Info("Graph definition loaded",
		zap.String("file", path),
		zap.Int("nodes", g.Len()),
		zap.Int("links", len(g.edges)),
		zap.Int("issues", len(issues)))
	return g, issues, nil
}

// JSONDecoder handles .json definitions.
type JSONDecoder struct{}

func (JSONDecoder) Extensions() []string { return []string{".json"} }

func (JSONDecoder) Decode(r io.Reader, _ string) (Definition, error) {
	var def Definition
	err := json.NewDecoder(r).Decode(&def)
	return def, err
}

// YAMLDecoder handles .yaml and .yml definitions.
type YAMLDecoder struct{}

func (YAMLDecoder) Extensions() []string { return []string{".yaml", ".yml"} }

func (YAMLDecoder) Decode(r io.Reader, _ string) (Definition, error) {
	var def Definition
	err := yaml.NewDecoder(r).Decode(&def)
	if err == io.EOF {
		err = nil
	}
	return def, err
}

// TOMLDecoder handles .toml definitions written as [[nodes]] / [[links]] tables.
type TOMLDecoder struct{}

func (TOMLDecoder) Extensions() []string { return []string{".toml"} }

func (TOMLDecoder) Decode(r io.Reader, _ string) (Definition, error) {
	var def Definition
	_, err := toml.NewDecoder(r).Decode(&def)
	return def, err
}

// HCLDecoder handles .hcl definitions:
//
//	node "career" {
//	  title = "Career"
//	  size  = "large"
//	}
//	link {
//	  source   = "career"
//	  target   = "projects"
//	  strength = 0.8
//	}
type HCLDecoder struct{}

type hclFile struct {
	Nodes []*hclNode `hcl:"node,block"`
	Links []*hclLink `hcl:"link,block"`
}

type hclNode struct {
	ID          string   `hcl:"id,label"`
	Title       string   `hcl:"title,optional"`
	Summary     string   `hcl:"summary,optional"`
	Description string   `hcl:"description,optional"`
	Color       string   `hcl:"color,optional"`
	Size        string   `hcl:"size,optional"`
	Tags        []string `hcl:"tags,optional"`
}

type hclLink struct {
	Source   string   `hcl:"source"`
	Target   string   `hcl:"target"`
	Strength *float64 `hcl:"strength,optional"`
}

func (HCLDecoder) Extensions() []string { return []string{".hcl"} }

func (HCLDecoder) Decode(r io.Reader, name string) (Definition, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return Definition{}, err
	}

	file, diags := hclparse.NewParser().ParseHCL(buf.Bytes(), name)
	if diags.HasErrors() {
		return Definition{}, diags
	}

	var parsed hclFile
	if diags := gohcl.DecodeBody(file.Body, nil, &parsed); diags.HasErrors() {
		return Definition{}, diags
	}

	def := Definition{
		Nodes: make([]Node, 0, len(parsed.Nodes)),
		Links: make([]Link, 0, len(parsed.Links)),
	}
	for _, n := range parsed.Nodes {
		def.Nodes = append(def.Nodes, Node{
			ID:          n.ID,
			Title:       n.Title,
			Summary:     n.Summary,
			Description: n.Description,
			Color:       n.Color,
			Size:        Size(n.Size),
			Tags:        n.Tags,
		})
	}
	for _, l := range parsed.Links {
		def.Links = append(def.Links, Link{Source: l.Source, Target: l.Target, Strength: l.Strength})
	}
	return def, nil
}
