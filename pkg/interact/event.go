package interact

import (
	"fmt"
	"strings"
)

// EventKind identifies a raw input event forwarded by the host.
type EventKind uint8

const (
	PointerDown EventKind = iota + 1
	PointerMove
	PointerUp
	Wheel
)

var kindNames = map[EventKind]string{
	PointerDown: "pointerdown",
	PointerMove: "pointermove",
	PointerUp:   "pointerup",
	Wheel:       "wheel",
}

func (k EventKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("EventKind(%d)", uint8(k))
}

// ParseEventKind accepts the DOM event names ("pointerdown", "wheel", ...).
// Matching is case-insensitive and "mouse" is accepted in place of "pointer".
func ParseEventKind(s string) (EventKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Replace(s, "mouse", "pointer", 1)
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown event kind %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k EventKind) MarshalText() ([]byte, error) {
	if _, ok := kindNames[k]; !ok {
		return nil, fmt.Errorf("unknown event kind %d", uint8(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *EventKind) UnmarshalText(b []byte) error {
	v, err := ParseEventKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Event is one raw pointer or wheel event in screen (CSS) pixels.
type Event struct {
	Kind   EventKind `json:"kind"`
	X      float64   `json:"x"`
	Y      float64   `json:"y"`
	DeltaY float64   `json:"deltaY,omitempty"`
}
