// Package websocket runs one live graph view per browser connection.
package websocket

import (
	"encoding/json"
	"fmt"

	"github.com/g-s-k-zoro/gsk-man-page/internal/interaction"
	"github.com/g-s-k-zoro/gsk-man-page/internal/view"
	"github.com/g-s-k-zoro/gsk-man-page/internal/viewport"
)

// MessageType names an inbound client message.
type MessageType string

const (
	MessagePointer MessageType = "pointer"
	MessageResize  MessageType = "resize"
	MessagePing    MessageType = "ping"
)

// ClientMessage is what the browser sends. Pointer is set for pointer
// messages, Width and Height for resize.
type ClientMessage struct {
	Type    MessageType               `json:"type"`
	Pointer *interaction.PointerEvent `json:"pointer,omitempty"`
	Width   float64                   `json:"width,omitempty"`
	Height  float64                   `json:"height,omitempty"`
}

// parseMessage decodes a client message into a view input. Pings decode to
// ok=false with no error.
func parseMessage(data []byte) (in view.Input, ok bool, err error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return view.Input{}, false, fmt.Errorf("decode client message: %w", err)
	}

	switch msg.Type {
	case MessagePointer:
		if msg.Pointer == nil {
			return view.Input{}, false, fmt.Errorf("pointer message without pointer")
		}
		return view.Input{Pointer: msg.Pointer}, true, nil
	case MessageResize:
		if msg.Width <= 0 || msg.Height <= 0 {
			return view.Input{}, false, fmt.Errorf("resize to %gx%g", msg.Width, msg.Height)
		}
		return view.Input{Resize: &viewport.Size{Width: msg.Width, Height: msg.Height}}, true, nil
	case MessagePing:
		return view.Input{}, false, nil
	default:
		return view.Input{}, false, fmt.Errorf("unknown message type %q", msg.Type)
	}
}
