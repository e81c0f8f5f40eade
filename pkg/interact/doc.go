// Package interact translates raw pointer and wheel events into viewport
// changes and redraw requests.
//
// A Controller is a two-state machine:
//
//	      PointerDown
//	Idle ─────────────▶ Dragging ──┐ PointerMove: PanBy(delta), redraw
//	 ▲                     │  ◀────┘
//	 └─────── PointerUp ───┘
//
// Wheel events are independent of the drag state. They zoom by WheelStep
// anchored at the pointer so the world point under it stays put.
//
// The toolbar commands Fit, ZoomIn and ZoomOut call the viewport directly
// (zoom buttons anchor at the viewport center) and request one redraw each.
//
// The Controller is the only component that mutates its viewport after a
// tree is set. Like the viewport it is not safe for concurrent use.
package interact
