package export

import (
	"strings"
	"testing"

	"ClipForge/model"
)

func snapshotWith(tracks ...*model.Track) *model.TimelineSnapshot {
	return &model.TimelineSnapshot{Tracks: tracks}
}

func TestGenerateEDL_SingleClip(t *testing.T) {
	snap := snapshotWith(&model.Track{
		Type: model.TrackTypeVideo,
		Clips: []*model.Clip{{
			Name:      "Intro",
			File:      "media/4821/intro.mp4",
			StartTime: 0,
			Duration:  2,
		}},
	})

	edl := GenerateEDL(snap, "Project One", 30.0)

	if !strings.Contains(edl, "TITLE: Project One") {
		t.Fatalf("missing title in EDL: %q", edl)
	}
	if !strings.Contains(edl, "FCM: NON-DROP FRAME") {
		t.Fatalf("missing non-drop-frame FCM: %q", edl)
	}
	if !strings.Contains(edl, "001  AX       V     C        00:00:00:00 00:00:02:00 00:00:00:00 00:00:02:00") {
		t.Fatalf("missing event line: %q", edl)
	}
	if !strings.Contains(edl, "* FROM CLIP NAME:  Intro") {
		t.Fatalf("missing clip name comment: %q", edl)
	}
	if !strings.Contains(edl, "* MEDIA PATH:  media/4821/intro.mp4") {
		t.Fatalf("missing media path comment: %q", edl)
	}
}

func TestGenerateEDL_RecordTimesComeFromTimeline(t *testing.T) {
	snap := snapshotWith(&model.Track{
		Type: model.TrackTypeVideo,
		Clips: []*model.Clip{{
			Name:      "Late",
			File:      "media/late.mp4",
			StartTime: 3.5,
			Duration:  1.5,
		}},
	})

	edl := GenerateEDL(snap, "Placed", 30.0)

	// Source runs 0..duration; record keeps the timeline position.
	if !strings.Contains(edl, "001  AX       V     C        00:00:00:00 00:00:01:15 00:00:03:15 00:00:05:00") {
		t.Fatalf("record times not taken from the timeline: %q", edl)
	}
}

func TestGenerateEDL_EventsOrderedByRecordIn(t *testing.T) {
	snap := snapshotWith(
		&model.Track{
			Type:  model.TrackTypeVideo,
			Clips: []*model.Clip{{Name: "Second", File: "/b.mp4", StartTime: 2, Duration: 1}},
		},
		&model.Track{
			Type:  model.TrackTypeAudio,
			Clips: []*model.Clip{{Name: "First", File: "/a.wav", StartTime: 1, Duration: 1}},
		},
	)

	edl := GenerateEDL(snap, "Order", 30.0)

	first := strings.Index(edl, "* FROM CLIP NAME:  First")
	second := strings.Index(edl, "* FROM CLIP NAME:  Second")
	if first < 0 || second < 0 || first > second {
		t.Fatalf("events not ordered by record-in: %q", edl)
	}
	if !strings.Contains(edl, "001  AX       A    ") {
		t.Fatalf("audio clip should be event 001 on channel A: %q", edl)
	}
	if !strings.Contains(edl, "002  AX       V    ") {
		t.Fatalf("video clip should be event 002 on channel V: %q", edl)
	}
}

func TestGenerateEDL_SkipsTextAndEffectTracks(t *testing.T) {
	snap := snapshotWith(
		&model.Track{
			Type:  model.TrackTypeText,
			Clips: []*model.Clip{{Name: "Title Card", StartTime: 0, Duration: 2}},
		},
		&model.Track{
			Type:  model.TrackTypeEffect,
			Clips: []*model.Clip{{Name: "Vignette", StartTime: 0, Duration: 2}},
		},
	)

	edl := GenerateEDL(snap, "No Media", 30.0)

	if strings.Contains(edl, "Title Card") || strings.Contains(edl, "Vignette") {
		t.Fatalf("text/effect clips leaked into the cutlist: %q", edl)
	}
}

func TestGenerateEDL_DropFrame(t *testing.T) {
	snap := snapshotWith(&model.Track{
		Type:  model.TrackTypeVideo,
		Clips: []*model.Clip{{Name: "Clip", File: "/x.mp4", StartTime: 0, Duration: 1}},
	})
	edl := GenerateEDL(snap, "Drop", 29.97)

	if !strings.Contains(edl, "FCM: DROP FRAME") {
		t.Fatalf("expected drop frame FCM, got: %q", edl)
	}
}

func TestGenerateEDL_SanitizesClipNames(t *testing.T) {
	snap := snapshotWith(&model.Track{
		Type: model.TrackTypeVideo,
		Clips: []*model.Clip{{
			Name:      "take\n01 <final?>",
			File:      "/t.mp4",
			StartTime: 0,
			Duration:  1,
		}},
	})

	edl := GenerateEDL(snap, "Clean", 30.0)

	if !strings.Contains(edl, "* FROM CLIP NAME:  take01 _final__") {
		t.Fatalf("clip name not sanitized: %q", edl)
	}
}

func TestSecondsToTimecode(t *testing.T) {
	tests := []struct {
		name string
		sec  float64
		fps  int
		want string
	}{
		{name: "zero", sec: 0, fps: 30, want: "00:00:00:00"},
		{name: "one second", sec: 1, fps: 30, want: "00:00:01:00"},
		{name: "half second", sec: 0.5, fps: 30, want: "00:00:00:15"},
		{name: "one minute", sec: 60, fps: 30, want: "00:01:00:00"},
		{name: "one hour", sec: 3600, fps: 30, want: "01:00:00:00"},
		{name: "quarter second at 24fps", sec: 0.25, fps: 24, want: "00:00:00:06"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := secondsToTimecode(tc.sec, tc.fps)
			if got != tc.want {
				t.Fatalf("secondsToTimecode(%v, %d) = %q, want %q", tc.sec, tc.fps, got, tc.want)
			}
		})
	}
}
