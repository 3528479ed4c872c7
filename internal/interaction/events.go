package interaction

import (
	"fmt"

	"github.com/g-s-k-zoro/gsk-man-page/internal/graph"
)

// PointerKind is the type of a pointer event.
type PointerKind int

const (
	PointerDown PointerKind = iota
	PointerMove
	PointerUp
	PointerLeave
	PointerWheel
)

var pointerKindNames = map[PointerKind]string{
	PointerDown:  "down",
	PointerMove:  "move",
	PointerUp:    "up",
	PointerLeave: "leave",
	PointerWheel: "wheel",
}

func (k PointerKind) String() string {
	if s, ok := pointerKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("PointerKind(%d)", int(k))
}

func (k PointerKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *PointerKind) UnmarshalText(b []byte) error {
	for kind, name := range pointerKindNames {
		if name == string(b) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown pointer event kind %q", b)
}

// PointerEvent is one pointer sample in screen coordinates. DeltaY is only
// meaningful for wheel events.
type PointerEvent struct {
	Kind   PointerKind `json:"kind"`
	X      float64     `json:"x"`
	Y      float64     `json:"y"`
	DeltaY float64     `json:"deltaY,omitempty"`
}

// Host receives the events the graph raises for the surrounding page.
type Host interface {
	// OnNodeHover is called with the hovered node, or nil when the pointer
	// leaves it.
	OnNodeHover(node *graph.Node)
	// OnNodeClick is called when a node is clicked without dragging.
	OnNodeClick(node graph.Node)
}

// NodeState is the interaction state of a single node.
type NodeState int

const (
	StateIdle NodeState = iota
	StateHovered
	StateDragging
)

func (s NodeState) String() string {
	switch s {
	case StateHovered:
		return "hovered"
	case StateDragging:
		return "dragging"
	default:
		return "idle"
	}
}
