package timeline

import (
	"testing"

	"ClipForge/model"
)

// engineWithClip returns an engine holding one track with one clip at
// [0, 5) and the clip/track ids.
func engineWithClip(t *testing.T) (*Engine, string, string) {
	t.Helper()
	e := NewEngine()
	tr, err := e.AddTrack(model.TrackTypeVideo)
	if err != nil {
		t.Fatalf("AddTrack: %v", err)
	}
	c, err := e.AddClipFromMedia(tr.ID, model.MediaDescriptor{Name: "a.mp4", Duration: 5, MediaType: "video"})
	if err != nil {
		t.Fatalf("AddClipFromMedia: %v", err)
	}
	return e, c.ID, tr.ID
}

func TestFindSnapPointThreshold(t *testing.T) {
	e, _, _ := engineWithClip(t)
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"inside threshold snaps", 5.19, 5},           // 9.5px from the clip end
		{"exactly at threshold stays", 5.2, 5.2},      // 10px, strict comparison
		{"outside threshold stays", 5.3, 5.3},         // 15px
		{"inside threshold below snaps", 4.85, 5},     // 7.5px
		{"snaps to clip start", 0.1, 0},               // 5px from start
		{"far from any candidate stays", 2.5, 2.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.FindSnapPoint(tt.in); !approx(got, tt.want) {
				t.Fatalf("FindSnapPoint(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFindSnapPointDisabled(t *testing.T) {
	e, _, _ := engineWithClip(t)
	e.SetSnapEnabled(false)
	if got := e.FindSnapPoint(5.19); !approx(got, 5.19) {
		t.Fatalf("FindSnapPoint with snapping off = %v, want 5.19", got)
	}
}

func TestFindSnapPointFirstAscendingWins(t *testing.T) {
	e := NewEngine()
	e.AddMarker(4.9, "a")
	e.AddMarker(5.0, "b")
	// 4.99 is within threshold of both; the scan returns the first
	// candidate in ascending order, not the nearest.
	if got := e.FindSnapPoint(4.99); !approx(got, 4.9) {
		t.Fatalf("FindSnapPoint(4.99) = %v, want 4.9", got)
	}
}

func TestFindSnapPointIdempotent(t *testing.T) {
	e, _, _ := engineWithClip(t)
	once := e.FindSnapPoint(5.19)
	if got := e.FindSnapPoint(once); !approx(got, once) {
		t.Fatalf("snapping a snapped value moved it: %v -> %v", once, got)
	}
}

func TestFindSnapPointThresholdScalesWithZoom(t *testing.T) {
	e, _, _ := engineWithClip(t)
	e.SetZoom(5)
	// At 250px/s the 10px radius covers only 0.04s.
	if got := e.FindSnapPoint(5.03); !approx(got, 5) {
		t.Fatalf("FindSnapPoint(5.03) at zoom 5 = %v, want 5", got)
	}
	if got := e.FindSnapPoint(5.05); !approx(got, 5.05) {
		t.Fatalf("FindSnapPoint(5.05) at zoom 5 = %v, want 5.05", got)
	}
	e.SetZoom(0.1)
	// At 5px/s the same radius covers 2s.
	if got := e.FindSnapPoint(6.9); !approx(got, 5) {
		t.Fatalf("FindSnapPoint(6.9) at zoom 0.1 = %v, want 5", got)
	}
}

func TestSnapPointsIncludeMarkersAndPlayhead(t *testing.T) {
	e, _, _ := engineWithClip(t)
	e.AddMarker(2.0, "cut here")
	e.SetCurrentTime(3.5)
	if got := e.FindSnapPoint(2.1); !approx(got, 2.0) {
		t.Fatalf("marker candidate: FindSnapPoint(2.1) = %v, want 2", got)
	}
	if got := e.FindSnapPoint(3.45); !approx(got, 3.5) {
		t.Fatalf("playhead candidate: FindSnapPoint(3.45) = %v, want 3.5", got)
	}
}

func TestSnapIndexRebuildsAfterMutation(t *testing.T) {
	e, clipID, trackID := engineWithClip(t)
	if got := e.FindSnapPoint(5.1); !approx(got, 5) {
		t.Fatalf("before move: FindSnapPoint(5.1) = %v, want 5", got)
	}
	if _, _, err := e.SetClipTime(clipID, trackID, 1, 5); err != nil {
		t.Fatalf("SetClipTime: %v", err)
	}
	// The old end at 5 is gone; the new edges are 1 and 6.
	if got := e.FindSnapPoint(5.1); !approx(got, 5.1) {
		t.Fatalf("after move: FindSnapPoint(5.1) = %v, want 5.1", got)
	}
	if got := e.FindSnapPoint(6.1); !approx(got, 6) {
		t.Fatalf("after move: FindSnapPoint(6.1) = %v, want 6", got)
	}
}

func TestSnapPointsSortedAndDeduplicated(t *testing.T) {
	e := NewEngine()
	tr, _ := e.AddTrack(model.TrackTypeVideo)
	e.AddClipFromMedia(tr.ID, model.MediaDescriptor{Duration: 5})
	e.AddMarker(5, "same as clip end")
	e.AddMarker(2, "early")
	pts := e.SnapPoints()
	for i := 1; i < len(pts); i++ {
		if pts[i] <= pts[i-1] {
			t.Fatalf("snap points not strictly ascending: %v", pts)
		}
	}
	// 0 appears as clip start and playhead, 5 as clip end and marker.
	want := []float64{0, 2, 5}
	if len(pts) != len(want) {
		t.Fatalf("snap points = %v, want %v", pts, want)
	}
	for i := range want {
		if !approx(pts[i], want[i]) {
			t.Fatalf("snap points = %v, want %v", pts, want)
		}
	}
}
