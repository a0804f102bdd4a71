package timeline

// DragKind names the three pointer gestures a clip supports.
type DragKind string

const (
	DragMove        DragKind = "move"
	DragResizeLeft  DragKind = "resize-left"
	DragResizeRight DragKind = "resize-right"
)

// ResizeHandlePx is the width of the resize hit zone inside each clip edge.
const ResizeHandlePx = 8.0

// dragState captures a gesture at pointer-down. Geometry during the drag is
// always computed against these originals, never against the last applied
// tick, so pointer-moves are idempotent per position.
type dragState struct {
	kind         DragKind
	clipID       string
	trackID      string
	startPixelX  float64
	origStart    float64
	origDuration float64
}

// Dragging reports whether a drag gesture is in progress.
func (e *Engine) Dragging() bool {
	return e.drag != nil
}

// HitTest classifies a pointer-down at pixelX over a clip: inside
// ResizeHandlePx of the left or right edge it is a resize, anywhere else in
// the body a move. Positions outside the clip still count as a move so a
// slightly stale pointer cannot lose the gesture.
func (e *Engine) HitTest(clipID, trackID string, pixelX float64) (DragKind, error) {
	tr, i := e.findClip(clipID, trackID)
	if tr == nil {
		return "", ErrClipNotFound
	}
	c := tr.Clips[i]
	left := e.TimeToPixels(c.StartTime)
	right := e.TimeToPixels(c.EndTime())
	switch {
	case pixelX >= left && pixelX < left+ResizeHandlePx:
		return DragResizeLeft, nil
	case pixelX > right-ResizeHandlePx && pixelX <= right:
		return DragResizeRight, nil
	default:
		return DragMove, nil
	}
}

// BeginDrag enters the dragging state for a clip, capturing its geometry
// and the pointer's pixel position. A pointer-down while another drag is
// active ends the previous gesture first; whatever it last applied stays.
func (e *Engine) BeginDrag(kind DragKind, clipID, trackID string, pixelX float64) error {
	if e.drag != nil {
		e.EndDrag()
	}
	tr, i := e.findClip(clipID, trackID)
	if tr == nil {
		return ErrClipNotFound
	}
	c := tr.Clips[i]
	e.drag = &dragState{
		kind:         kind,
		clipID:       clipID,
		trackID:      trackID,
		startPixelX:  pixelX,
		origStart:    c.StartTime,
		origDuration: c.Duration,
	}
	e.touch()
	return nil
}

// DragTo applies the active gesture for a pointer now at pixelX. Each call
// recomputes from the pointer-down originals:
//
//   - move: start snaps then clamps to >= 0, duration never changes.
//   - resize-left: start snaps and clamps like a move; the new duration is
//     taken from the raw pointer delta, and the whole tick is rejected when
//     it would fall under MinClipDuration.
//   - resize-right: duration is floored at MinClipDuration, with no
//     snapping on the moving edge.
//
// Pointer-moves with no drag active are ignored.
func (e *Engine) DragTo(pixelX float64) {
	d := e.drag
	if d == nil {
		return
	}
	delta := e.PixelsToTime(pixelX - d.startPixelX)
	switch d.kind {
	case DragMove:
		start := e.FindSnapPoint(d.origStart + delta)
		if start < 0 {
			start = 0
		}
		e.SetClipTime(d.clipID, d.trackID, start, d.origDuration)
	case DragResizeLeft:
		dur := d.origDuration - delta
		if dur < MinClipDuration {
			return
		}
		start := e.FindSnapPoint(d.origStart + delta)
		if start < 0 {
			start = 0
		}
		e.SetClipTime(d.clipID, d.trackID, start, dur)
	case DragResizeRight:
		dur := d.origDuration + delta
		if dur < MinClipDuration {
			dur = MinClipDuration
		}
		e.SetClipTime(d.clipID, d.trackID, d.origStart, dur)
	}
}

// EndDrag leaves the dragging state. The geometry applied by the last
// pointer-move stays; there is no separate commit and no revert path, and
// a pointer-up with no drag active is a no-op.
func (e *Engine) EndDrag() {
	if e.drag == nil {
		return
	}
	e.drag = nil
	e.touch()
}
