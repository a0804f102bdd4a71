package timeline

import (
	"testing"

	"ClipForge/model"
)

func TestSetZoomClamps(t *testing.T) {
	e := NewEngine()
	tests := []struct {
		in   float64
		want float64
	}{
		{0.01, MinZoom},
		{0.1, 0.1},
		{2, 2},
		{5, 5},
		{10, MaxZoom},
	}
	for _, tt := range tests {
		if got := e.SetZoom(tt.in); !approx(got, tt.want) {
			t.Errorf("SetZoom(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSetTrackHeightClamps(t *testing.T) {
	e := NewEngine()
	if got := e.SetTrackHeight(10); got != MinTrackHeight {
		t.Errorf("SetTrackHeight(10) = %d, want %d", got, MinTrackHeight)
	}
	if got := e.SetTrackHeight(500); got != MaxTrackHeight {
		t.Errorf("SetTrackHeight(500) = %d, want %d", got, MaxTrackHeight)
	}
	if got := e.SetTrackHeight(80); got != 80 {
		t.Errorf("SetTrackHeight(80) = %d, want 80", got)
	}
}

func TestSetCurrentTimeClampsToDuration(t *testing.T) {
	e := NewEngine()
	if got := e.SetCurrentTime(7); got != 0 {
		t.Errorf("playhead on empty timeline = %v, want 0", got)
	}
	tr, _ := e.AddTrack(model.TrackTypeVideo)
	e.AddClipFromMedia(tr.ID, model.MediaDescriptor{Name: "c.mp4", Duration: 10})
	if got := e.SetCurrentTime(-5); got != 0 {
		t.Errorf("SetCurrentTime(-5) = %v, want 0", got)
	}
	if got := e.SetCurrentTime(4); got != 4 {
		t.Errorf("SetCurrentTime(4) = %v, want 4", got)
	}
	if got := e.SetCurrentTime(99); got != 10 {
		t.Errorf("SetCurrentTime(99) = %v, want clamp to duration 10", got)
	}
}

func TestEventsFire(t *testing.T) {
	e, clipID, trackID := engineWithClip(t)

	var gotTime float64 = -1
	var selected, edited string
	e.Events().OnTimeChange = func(tm float64) { gotTime = tm }
	e.Events().OnClipSelect = func(c model.Clip) { selected = c.ID }
	e.Events().OnClipEdit = func(c model.Clip) { edited = c.ID }

	e.SetCurrentTime(99)
	if !approx(gotTime, 5) {
		t.Errorf("OnTimeChange got %v, want the clamped 5", gotTime)
	}
	if err := e.SelectClip(clipID, trackID, false); err != nil {
		t.Fatalf("SelectClip: %v", err)
	}
	if selected != clipID {
		t.Errorf("OnClipSelect got %q, want %q", selected, clipID)
	}
	if err := e.RequestClipEdit(clipID, trackID); err != nil {
		t.Fatalf("RequestClipEdit: %v", err)
	}
	if edited != clipID {
		t.Errorf("OnClipEdit got %q, want %q", edited, clipID)
	}
}

func TestEventsReceiveCopies(t *testing.T) {
	e, clipID, trackID := engineWithClip(t)
	e.Events().OnClipSelect = func(c model.Clip) {
		c.StartTime = 999 // must not leak back into the engine
	}
	e.SelectClip(clipID, trackID, false)
	if got := e.Tracks()[0].Clips[0].StartTime; !approx(got, 0) {
		t.Fatalf("callback mutation leaked into the engine: start = %v", got)
	}
}

func TestEventsAreInstanceScoped(t *testing.T) {
	a := NewEngine()
	b := NewEngine()
	fired := false
	a.Events().OnTimeChange = func(float64) { fired = true }
	b.SetCurrentTime(0)
	if fired {
		t.Fatal("callback installed on one engine fired for another")
	}
}

func TestSelection(t *testing.T) {
	e := NewEngine()
	tr, _ := e.AddTrack(model.TrackTypeVideo)
	a, _ := e.AddClipFromMedia(tr.ID, model.MediaDescriptor{Name: "a.mp4", Duration: 5})
	b, _ := e.AddClipFromMedia(tr.ID, model.MediaDescriptor{Name: "b.mp4", Duration: 5})

	e.SelectClip(b.ID, tr.ID, false)
	e.SelectClip(a.ID, tr.ID, true)
	snap := e.Snapshot()
	if len(snap.SelectedClips) != 2 || snap.SelectedClips[0] != b.ID || snap.SelectedClips[1] != a.ID {
		t.Fatalf("additive selection order = %v, want [%s %s]", snap.SelectedClips, b.ID, a.ID)
	}

	// Non-additive select replaces the set.
	e.SelectClip(a.ID, tr.ID, false)
	snap = e.Snapshot()
	if len(snap.SelectedClips) != 1 || snap.SelectedClips[0] != a.ID {
		t.Fatalf("replace selection = %v, want [%s]", snap.SelectedClips, a.ID)
	}

	e.ClearSelection()
	if got := len(e.Snapshot().SelectedClips); got != 0 {
		t.Fatalf("selection after clear = %d entries, want 0", got)
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	e, _, _ := engineWithClip(t)
	e.AddMarker(2, "m")
	snap := e.Snapshot()

	snap.Tracks[0].Clips[0].StartTime = 999
	snap.Tracks[0].Name = "tampered"
	snap.Markers[0].Time = 999

	if got := e.Tracks()[0].Clips[0].StartTime; !approx(got, 0) {
		t.Errorf("snapshot clip mutation leaked: start = %v", got)
	}
	if got := e.Tracks()[0].Name; got == "tampered" {
		t.Error("snapshot track mutation leaked")
	}
	if got := e.Markers()[0].Time; !approx(got, 2) {
		t.Errorf("snapshot marker mutation leaked: time = %v", got)
	}
}

func TestVersionAdvancesOnMutation(t *testing.T) {
	e := NewEngine()
	v0 := e.Version()
	tr, _ := e.AddTrack(model.TrackTypeVideo)
	if e.Version() == v0 {
		t.Fatal("AddTrack did not advance the version")
	}
	v1 := e.Version()
	if _, err := e.AddClipFromMedia("missing", model.MediaDescriptor{Name: "x"}); err == nil {
		t.Fatal("expected error for missing track")
	}
	if e.Version() != v1 {
		t.Fatal("failed mutation advanced the version")
	}
	e.AddClipFromMedia(tr.ID, model.MediaDescriptor{Name: "x", Duration: 1})
	if e.Version() == v1 {
		t.Fatal("AddClipFromMedia did not advance the version")
	}
}

// TestEditRoundTrip drives the engine the way a pointer session would:
// build a small timeline, drag a clip, then trim it.
func TestEditRoundTrip(t *testing.T) {
	e := NewEngine()
	tr, err := e.AddTrack(model.TrackTypeVideo)
	if err != nil {
		t.Fatalf("AddTrack: %v", err)
	}
	c, err := e.AddClipFromMedia(tr.ID, model.MediaDescriptor{Name: "intro.mp4", Duration: 10, MediaType: "video"})
	if err != nil {
		t.Fatalf("AddClipFromMedia: %v", err)
	}
	if !approx(c.StartTime, 0) || !approx(c.Duration, 10) {
		t.Fatalf("fresh clip = {%v, %v}, want {0, 10}", c.StartTime, c.Duration)
	}

	e.SetSnapEnabled(false)
	if err := e.BeginDrag(DragMove, c.ID, tr.ID, 0); err != nil {
		t.Fatalf("BeginDrag: %v", err)
	}
	e.DragTo(150) // +3s
	e.EndDrag()
	start, dur := clipGeom(t, e, tr.ID)
	if !approx(start, 3) || !approx(dur, 10) {
		t.Fatalf("after move: {%v, %v}, want {3, 10}", start, dur)
	}

	if err := e.BeginDrag(DragResizeRight, c.ID, tr.ID, e.TimeToPixels(13)); err != nil {
		t.Fatalf("BeginDrag resize: %v", err)
	}
	e.DragTo(e.TimeToPixels(9)) // pull the right edge in by 4s
	e.EndDrag()
	start, dur = clipGeom(t, e, tr.ID)
	if !approx(start, 3) || !approx(dur, 6) {
		t.Fatalf("after trim: {%v, %v}, want {3, 6}", start, dur)
	}
	if got := e.Duration(); !approx(got, 9) {
		t.Fatalf("timeline duration = %v, want 9", got)
	}
}
