// Package graph holds the static navigation graph: the nodes a visitor can
// travel to and the weighted relationships between them.
package graph

// Size is the coarse visual weight of a node.
type Size string

const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
)

// Radius returns the rendered circle radius for the size category.
func (s Size) Radius() float64 {
	switch s {
	case SizeSmall:
		return 30
	case SizeMedium:
		return 40
	case SizeLarge:
		return 50
	default:
		return 40
	}
}

// SectionLabel is the caption the detail panel shows above a node title.
func (s Size) SectionLabel() string {
	switch s {
	case SizeLarge:
		return "Major Section"
	case SizeMedium:
		return "Section"
	default:
		return "Topic"
	}
}

func (s Size) valid() bool {
	return s == SizeSmall || s == SizeMedium || s == SizeLarge
}

// Node is one navigable section of the site. The engine only interprets
// ID, Title, Color and Size; the rest is carried for the host's detail panel.
type Node struct {
	ID          string   `json:"id" yaml:"id" toml:"id"`
	Title       string   `json:"title" yaml:"title" toml:"title"`
	Summary     string   `json:"summary,omitempty" yaml:"summary,omitempty" toml:"summary"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty" toml:"description"`
	Color       string   `json:"color" yaml:"color" toml:"color"`
	Size        Size     `json:"size" yaml:"size" toml:"size"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty" toml:"tags"`
}

// Path is the navigation target the host routes to when the node is clicked.
func (n Node) Path() string {
	return "/" + n.ID
}

// Link relates two nodes by id. Strength is optional in definition files.
type Link struct {
	Source   string   `json:"source" yaml:"source" toml:"source"`
	Target   string   `json:"target" yaml:"target" toml:"target"`
	Strength *float64 `json:"strength,omitempty" yaml:"strength,omitempty" toml:"strength"`
}

// Definition is a graph as authored, before validation.
type Definition struct {
	Nodes []Node `json:"nodes" yaml:"nodes" toml:"nodes"`
	Links []Link `json:"links" yaml:"links" toml:"links"`
}

// Edge is a validated link addressed by node index.
type Edge struct {
	Source   int
	Target   int
	Strength float64
}

// Touches reports whether the edge is incident to node i.
func (e Edge) Touches(i int) bool {
	return e.Source == i || e.Target == i
}
