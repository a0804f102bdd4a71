package timeline

import (
	"errors"
	"testing"

	"ClipForge/model"
)

// dragFixture returns an engine with snapping off and one clip at [2, 7)
// on a video track, at the default zoom.
func dragFixture(t *testing.T) (*Engine, string, string) {
	t.Helper()
	e, clipID, trackID := engineWithClip(t)
	e.SetSnapEnabled(false)
	if _, _, err := e.SetClipTime(clipID, trackID, 2, 5); err != nil {
		t.Fatalf("SetClipTime: %v", err)
	}
	return e, clipID, trackID
}

func clipGeom(t *testing.T, e *Engine, trackID string) (float64, float64) {
	t.Helper()
	for _, tr := range e.Tracks() {
		if tr.ID == trackID {
			if len(tr.Clips) != 1 {
				t.Fatalf("track has %d clips, want 1", len(tr.Clips))
			}
			return tr.Clips[0].StartTime, tr.Clips[0].Duration
		}
	}
	t.Fatalf("track %s not found", trackID)
	return 0, 0
}

func TestDragMove(t *testing.T) {
	e, clipID, trackID := dragFixture(t)
	if err := e.BeginDrag(DragMove, clipID, trackID, 150); err != nil {
		t.Fatalf("BeginDrag: %v", err)
	}
	if !e.Dragging() {
		t.Fatal("Dragging() = false during a drag")
	}

	e.DragTo(300) // +150px = +3s
	start, dur := clipGeom(t, e, trackID)
	if !approx(start, 5) || !approx(dur, 5) {
		t.Fatalf("after +3s move: {%v, %v}, want {5, 5}", start, dur)
	}

	// Each move recomputes from the pointer-down origin, not the last tick.
	e.DragTo(140) // -10px = -0.2s from the origin
	start, _ = clipGeom(t, e, trackID)
	if !approx(start, 1.8) {
		t.Fatalf("after -0.2s move: start = %v, want 1.8", start)
	}

	// Moves past the left edge clamp to zero.
	e.DragTo(-200)
	start, dur = clipGeom(t, e, trackID)
	if !approx(start, 0) || !approx(dur, 5) {
		t.Fatalf("after far-left move: {%v, %v}, want {0, 5}", start, dur)
	}

	e.EndDrag()
	if e.Dragging() {
		t.Fatal("Dragging() = true after pointer up")
	}
	// Pointer up keeps whatever the last move applied.
	start, _ = clipGeom(t, e, trackID)
	if !approx(start, 0) {
		t.Fatalf("geometry reverted on pointer up: start = %v", start)
	}
}

func TestDragMoveSnapping(t *testing.T) {
	e := NewEngine()
	tr, _ := e.AddTrack(model.TrackTypeVideo)
	a, _ := e.AddClipFromMedia(tr.ID, model.MediaDescriptor{Name: "a.mp4", Duration: 5})
	b, _ := e.AddClipFromMedia(tr.ID, model.MediaDescriptor{Name: "b.mp4", Duration: 4})
	if _, _, err := e.SetClipTime(b.ID, tr.ID, 8, 4); err != nil {
		t.Fatalf("SetClipTime: %v", err)
	}
	_ = a

	if err := e.BeginDrag(DragMove, b.ID, tr.ID, 400); err != nil {
		t.Fatalf("BeginDrag: %v", err)
	}
	// Raw target 5.16s is 8px from clip a's end at 5s, inside the radius.
	e.DragTo(258)
	start, _ := clipGeom2(t, e, tr.ID, b.ID)
	if !approx(start, 5) {
		t.Fatalf("snapped start = %v, want 5", start)
	}
	e.EndDrag()
}

func TestDragMoveSnapsToOwnEdges(t *testing.T) {
	// The candidate set is every clip boundary, including the dragged
	// clip's current ones, so small moves stick to the starting position.
	e := NewEngine()
	tr, _ := e.AddTrack(model.TrackTypeVideo)
	c, _ := e.AddClipFromMedia(tr.ID, model.MediaDescriptor{Name: "c.mp4", Duration: 4})
	e.SetClipTime(c.ID, tr.ID, 8, 4)

	e.BeginDrag(DragMove, c.ID, tr.ID, 400)
	e.DragTo(405) // +0.1s, 5px from its own start
	start, _ := clipGeom(t, e, tr.ID)
	if !approx(start, 8) {
		t.Fatalf("small move escaped the clip's own edge: start = %v, want 8", start)
	}
	e.DragTo(420) // +0.4s, 20px, outside the radius
	start, _ = clipGeom(t, e, tr.ID)
	if !approx(start, 8.4) {
		t.Fatalf("large move should apply raw: start = %v, want 8.4", start)
	}
	e.EndDrag()
}

func TestDragResizeLeft(t *testing.T) {
	e, clipID, trackID := dragFixture(t)
	if err := e.BeginDrag(DragResizeLeft, clipID, trackID, 100); err != nil {
		t.Fatalf("BeginDrag: %v", err)
	}

	e.DragTo(125) // +0.5s
	start, dur := clipGeom(t, e, trackID)
	if !approx(start, 2.5) || !approx(dur, 4.5) {
		t.Fatalf("after left resize: {%v, %v}, want {2.5, 4.5}", start, dur)
	}

	e.DragTo(340) // +4.8s leaves 0.2s, still legal
	start, dur = clipGeom(t, e, trackID)
	if !approx(start, 6.8) || !approx(dur, 0.2) {
		t.Fatalf("after deep left resize: {%v, %v}, want {6.8, 0.2}", start, dur)
	}

	// A tick that would shrink below the floor is rejected whole: neither
	// the start nor the duration moves.
	e.DragTo(350) // +5s would leave 0s
	start, dur = clipGeom(t, e, trackID)
	if !approx(start, 6.8) || !approx(dur, 0.2) {
		t.Fatalf("under-floor tick leaked through: {%v, %v}, want {6.8, 0.2}", start, dur)
	}
	e.EndDrag()
}

func TestDragResizeLeftSnapMovesOnlyStart(t *testing.T) {
	e, clipID, trackID := dragFixture(t)
	e.SetSnapEnabled(true)
	e.AddMarker(3.0, "snap target")

	e.BeginDrag(DragResizeLeft, clipID, trackID, 100)
	// Raw start 2.9 snaps to the marker at 3.0, but the duration uses the
	// raw 0.9s delta, so the right edge drifts to 7.1.
	e.DragTo(145)
	start, dur := clipGeom(t, e, trackID)
	if !approx(start, 3.0) {
		t.Fatalf("snapped start = %v, want 3.0", start)
	}
	if !approx(dur, 4.1) {
		t.Fatalf("duration = %v, want raw-delta 4.1", dur)
	}
	e.EndDrag()
}

func TestDragResizeRight(t *testing.T) {
	e, clipID, trackID := dragFixture(t)
	if err := e.BeginDrag(DragResizeRight, clipID, trackID, 350); err != nil {
		t.Fatalf("BeginDrag: %v", err)
	}

	e.DragTo(450) // +2s
	start, dur := clipGeom(t, e, trackID)
	if !approx(start, 2) || !approx(dur, 7) {
		t.Fatalf("after right resize: {%v, %v}, want {2, 7}", start, dur)
	}

	e.DragTo(200) // -3s
	_, dur = clipGeom(t, e, trackID)
	if !approx(dur, 2) {
		t.Fatalf("after shrink: duration = %v, want 2", dur)
	}

	// Shrinking past the floor clamps instead of rejecting the tick.
	e.DragTo(95) // -5.1s would leave -0.1s
	start, dur = clipGeom(t, e, trackID)
	if !approx(start, 2) || !approx(dur, MinClipDuration) {
		t.Fatalf("after over-shrink: {%v, %v}, want {2, %v}", start, dur, MinClipDuration)
	}
	e.EndDrag()
}

func TestDragResizeRightNeverSnaps(t *testing.T) {
	e, clipID, trackID := dragFixture(t)
	e.SetSnapEnabled(true)
	e.AddMarker(9.0, "near the new edge")

	e.BeginDrag(DragResizeRight, clipID, trackID, 350)
	e.DragTo(452) // end lands at 9.04, 2px from the marker
	_, dur := clipGeom(t, e, trackID)
	if !approx(dur, 7.04) {
		t.Fatalf("right edge snapped: duration = %v, want raw 7.04", dur)
	}
	e.EndDrag()
}

func TestDragSecondPointerDownEndsActiveDrag(t *testing.T) {
	e := NewEngine()
	tr, _ := e.AddTrack(model.TrackTypeVideo)
	a, _ := e.AddClipFromMedia(tr.ID, model.MediaDescriptor{Name: "a.mp4", Duration: 5})
	b, _ := e.AddClipFromMedia(tr.ID, model.MediaDescriptor{Name: "b.mp4", Duration: 4})
	e.SetClipTime(b.ID, tr.ID, 10, 4)
	e.SetSnapEnabled(false)

	e.BeginDrag(DragMove, a.ID, tr.ID, 0)
	e.DragTo(100) // a -> start 2

	if err := e.BeginDrag(DragMove, b.ID, tr.ID, 500); err != nil {
		t.Fatalf("BeginDrag during drag: %v", err)
	}
	e.DragTo(550) // b -> start 11; must not touch a
	aStart, _ := clipGeom2(t, e, tr.ID, a.ID)
	bStart, _ := clipGeom2(t, e, tr.ID, b.ID)
	if !approx(aStart, 2) {
		t.Errorf("first clip moved after handoff: start = %v, want 2", aStart)
	}
	if !approx(bStart, 11) {
		t.Errorf("second drag inactive: start = %v, want 11", bStart)
	}
}

func TestDragIgnoredWhenIdle(t *testing.T) {
	e, _, trackID := dragFixture(t)
	e.DragTo(500)
	start, dur := clipGeom(t, e, trackID)
	if !approx(start, 2) || !approx(dur, 5) {
		t.Fatalf("pointer move without a drag changed geometry: {%v, %v}", start, dur)
	}
	e.EndDrag() // no-op
	if e.Dragging() {
		t.Fatal("Dragging() = true after idle EndDrag")
	}
}

func TestBeginDragMissingClip(t *testing.T) {
	e, _, trackID := dragFixture(t)
	if err := e.BeginDrag(DragMove, "missing", trackID, 0); !errors.Is(err, ErrClipNotFound) {
		t.Fatalf("BeginDrag(missing) err = %v, want ErrClipNotFound", err)
	}
	if e.Dragging() {
		t.Fatal("failed BeginDrag left the engine dragging")
	}
}

func TestHitTest(t *testing.T) {
	e, clipID, trackID := dragFixture(t) // clip spans pixels [100, 350]
	tests := []struct {
		name   string
		pixelX float64
		want   DragKind
	}{
		{"left handle start", 100, DragResizeLeft},
		{"left handle interior", 107.9, DragResizeLeft},
		{"just past left handle", 108, DragMove},
		{"body", 225, DragMove},
		{"just before right handle", 342, DragMove},
		{"right handle interior", 344, DragResizeRight},
		{"right handle end", 350, DragResizeRight},
		{"outside the clip", 400, DragMove},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.HitTest(clipID, trackID, tt.pixelX)
			if err != nil {
				t.Fatalf("HitTest: %v", err)
			}
			if got != tt.want {
				t.Fatalf("HitTest(%v) = %v, want %v", tt.pixelX, got, tt.want)
			}
		})
	}
	if _, err := e.HitTest("missing", trackID, 0); !errors.Is(err, ErrClipNotFound) {
		t.Errorf("HitTest(missing) err = %v, want ErrClipNotFound", err)
	}
}

func clipGeom2(t *testing.T, e *Engine, trackID, clipID string) (float64, float64) {
	t.Helper()
	for _, tr := range e.Tracks() {
		if tr.ID != trackID {
			continue
		}
		for _, c := range tr.Clips {
			if c.ID == clipID {
				return c.StartTime, c.Duration
			}
		}
	}
	t.Fatalf("clip %s not found on track %s", clipID, trackID)
	return 0, 0
}
