// Package viewer ties the core packages into one visualization instance.
//
// A Viewer owns a tree, the layout computed for it, a viewport, an
// interaction controller and a drawing surface:
//
//	SetTree ──▶ layout.Compute ──▶ Fit ──▶ Redraw
//	Handle / ZoomIn / ZoomOut / Pan ──▶ viewport ──▶ Redraw
//	Resize ──▶ acquire surface ──▶ Redraw
//
// The layout is computed only by SetTree. Pan, zoom and resize reuse the
// cached result and only repaint.
//
// Hosts create one Viewer per visualization:
//
//	v, err := viewer.New(func(w, h int) (render.Surface, error) {
//	    return svg.New(w, h), nil
//	})
//	if err != nil {
//	    return err // matches viewer.ErrNoSurface
//	}
//	v.SetTree(root)
//	v.Handle(interact.Event{Kind: interact.Wheel, X: 100, Y: 100, DeltaY: -1})
//
// After every redraw the viewer reports the frame to
// observability.Frames().
package viewer
