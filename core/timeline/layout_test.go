package timeline

import (
	"testing"

	"ClipForge/model"
)

func TestFormatTime(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "00:00:00"},
		{1, "00:01:00"},
		{3.967, "00:03:29"},
		{65.5, "01:05:15"},
		{600, "10:00:00"},
		{59.999, "00:59:29"},
		{-5, "00:00:00"},
	}
	for _, tt := range tests {
		if got := FormatTime(tt.in); got != tt.want {
			t.Errorf("FormatTime(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTimelineHeight(t *testing.T) {
	vp := Viewport{Height: 900, Header: 64, Footer: 48} // 788 usable

	e := NewEngine()
	if got := e.TimelineHeight(vp); got != MinTimelineHeight {
		t.Errorf("empty timeline height = %d, want the %d floor", got, MinTimelineHeight)
	}

	for i := 0; i < 5; i++ {
		e.AddTrack(model.TrackTypeVideo)
	}
	e.SetTrackHeight(120)
	// 40 ruler + 5*120 = 640, fits the viewport.
	if got := e.TimelineHeight(vp); got != 640 {
		t.Errorf("5 expanded tracks height = %d, want 640", got)
	}

	// Collapsed tracks use the fixed height regardless of the setting.
	e.ToggleTrackCollapsed(e.Tracks()[0].ID)
	e.ToggleTrackCollapsed(e.Tracks()[1].ID)
	if got := e.TimelineHeight(vp); got != 40+3*120+2*CollapsedTrackHeight {
		t.Errorf("mixed height = %d, want %d", got, 40+3*120+2*CollapsedTrackHeight)
	}

	// A short viewport caps the sum.
	short := Viewport{Height: 500, Header: 64, Footer: 48}
	e.ToggleTrackCollapsed(e.Tracks()[0].ID)
	e.ToggleTrackCollapsed(e.Tracks()[1].ID)
	if got := e.TimelineHeight(short); got != 500-64-48 {
		t.Errorf("capped height = %d, want %d", got, 500-64-48)
	}

	// Hiding a track does not remove its row.
	before := e.TimelineHeight(vp)
	e.ToggleTrackFlag(e.Tracks()[2].ID, FlagVisible)
	if got := e.TimelineHeight(vp); got != before {
		t.Errorf("hidden track changed height: %d -> %d", before, got)
	}
}

func TestRulerTicks(t *testing.T) {
	e := NewEngine()
	if got := e.RulerTicks(); len(got) != 1 || got[0].Time != 0 {
		t.Fatalf("empty timeline ticks = %+v, want just the zero tick", got)
	}

	tr, _ := e.AddTrack(model.TrackTypeVideo)
	e.AddClipFromMedia(tr.ID, model.MediaDescriptor{Name: "c.mp4", Duration: 2.5})
	e.SetZoom(2)

	ticks := e.RulerTicks()
	if len(ticks) != 4 { // 0, 1, 2, 3 for a 2.5s timeline
		t.Fatalf("tick count = %d, want 4", len(ticks))
	}
	if !approx(ticks[1].X, 100) {
		t.Errorf("tick at 1s X = %v, want 100 at zoom 2", ticks[1].X)
	}
	if ticks[1].Label != "00:01:00" {
		t.Errorf("tick label = %q, want 00:01:00", ticks[1].Label)
	}
}

func TestLayoutGeometry(t *testing.T) {
	e := NewEngine()
	tr, _ := e.AddTrack(model.TrackTypeVideo)
	c, _ := e.AddClipFromMedia(tr.ID, model.MediaDescriptor{Name: "c.mp4", Duration: 5})
	e.SetClipTime(c.ID, tr.ID, 2, 5)
	e.AddClipKeyframe(c.ID, tr.ID, model.Keyframe{Time: 1, Property: "opacity", Value: 1})
	e.AddClipKeyframe(c.ID, tr.ID, model.Keyframe{Time: 4.5, Property: "opacity", Value: 0})
	m := e.AddMarker(3, "mark")
	e.SetCurrentTime(4)

	l := e.Layout(Viewport{Height: 900, Header: 64, Footer: 48})
	if len(l.Clips) != 1 {
		t.Fatalf("layout clip count = %d, want 1", len(l.Clips))
	}
	g := l.Clips[0]
	if g.ClipID != c.ID || g.TrackID != tr.ID {
		t.Errorf("geometry ids = %s/%s, want %s/%s", g.ClipID, g.TrackID, c.ID, tr.ID)
	}
	if !approx(g.X, 100) || !approx(g.Width, 250) {
		t.Errorf("clip geometry = {%v, %v}, want {100, 250}", g.X, g.Width)
	}
	if len(g.KeyframeXs) != 2 || !approx(g.KeyframeXs[0], 150) || !approx(g.KeyframeXs[1], 325) {
		t.Errorf("keyframe Xs = %v, want [150 325]", g.KeyframeXs)
	}
	if len(l.Markers) != 1 || l.Markers[0].MarkerID != m.ID || !approx(l.Markers[0].X, 150) {
		t.Errorf("marker geometry = %+v, want X 150", l.Markers)
	}
	if !approx(l.PlayheadX, 200) {
		t.Errorf("playhead X = %v, want 200", l.PlayheadX)
	}
}

func TestLayoutDropsKeyframesOutsideClip(t *testing.T) {
	e := NewEngine()
	tr, _ := e.AddTrack(model.TrackTypeVideo)
	c, _ := e.AddClipFromMedia(tr.ID, model.MediaDescriptor{Name: "c.mp4", Duration: 5})
	e.AddClipKeyframe(c.ID, tr.ID, model.Keyframe{Time: 4.5, Property: "scale", Value: 2})

	// Shrinking the clip strands the keyframe past its end; the layout
	// must not render it.
	e.SetClipTime(c.ID, tr.ID, 0, 3)
	l := e.Layout(Viewport{Height: 900, Header: 64, Footer: 48})
	if len(l.Clips[0].KeyframeXs) != 0 {
		t.Fatalf("stranded keyframe still rendered: %v", l.Clips[0].KeyframeXs)
	}
}
