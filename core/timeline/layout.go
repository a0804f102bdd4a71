package timeline

import (
	"fmt"
	"math"

	"ClipForge/model"
)

// Vertical layout constants, in pixels.
const (
	RulerHeight          = 40
	CollapsedTrackHeight = 40
	MinTimelineHeight    = 300
)

// DisplayFPS is the fixed frame rate used for the FF field of formatted
// times. Display only; media may run at any real rate.
const DisplayFPS = 30

// Viewport describes the shell area the timeline has to fit into.
type Viewport struct {
	Height int `json:"height"`
	Header int `json:"header"`
	Footer int `json:"footer"`
}

// FormatTime renders a time in seconds as MM:SS:FF with a fixed 30fps
// frame field. Negative times render as zero; minutes do not wrap.
func FormatTime(t float64) string {
	if t < 0 {
		t = 0
	}
	whole := int(t)
	frames := int((t - math.Floor(t)) * DisplayFPS)
	return fmt.Sprintf("%02d:%02d:%02d", whole/60, whole%60, frames)
}

// TimelineHeight computes the total panel height: the ruler plus one row
// per track, where collapsed tracks use the fixed collapsed height and all
// others the session track height. Hidden tracks still take a full row.
// The sum is raised to MinTimelineHeight, then capped to the viewport space
// left after the header and footer.
func (e *Engine) TimelineHeight(vp Viewport) int {
	h := RulerHeight
	for _, tr := range e.tracks {
		if e.collapsed[tr.ID] {
			h += CollapsedTrackHeight
		} else {
			h += e.trackHeight
		}
	}
	if h < MinTimelineHeight {
		h = MinTimelineHeight
	}
	if max := vp.Height - vp.Header - vp.Footer; h > max {
		h = max
	}
	return h
}

// RulerTicks returns one labeled tick per whole second from 0 through the
// timeline duration rounded up. An empty timeline still gets the zero tick.
func (e *Engine) RulerTicks() []model.RulerTick {
	last := int(math.Ceil(e.Duration()))
	ticks := make([]model.RulerTick, 0, last+1)
	for s := 0; s <= last; s++ {
		t := float64(s)
		ticks = append(ticks, model.RulerTick{
			Time:  t,
			X:     e.TimeToPixels(t),
			Label: FormatTime(t),
		})
	}
	return ticks
}

// Layout computes the full pixel-space view for a viewport: panel height,
// ruler ticks, clip rectangles with their visible keyframe positions,
// marker positions and the playhead.
func (e *Engine) Layout(vp Viewport) *model.TimelineLayout {
	l := &model.TimelineLayout{
		Height:    e.TimelineHeight(vp),
		PlayheadX: e.TimeToPixels(e.currentTime),
		Ticks:     e.RulerTicks(),
		Clips:     make([]model.ClipGeometry, 0, e.clipCount()),
		Markers:   make([]model.MarkerGeometry, 0, len(e.markers)),
	}
	for _, tr := range e.tracks {
		for _, c := range tr.Clips {
			g := model.ClipGeometry{
				ClipID:  c.ID,
				TrackID: tr.ID,
				X:       e.TimeToPixels(c.StartTime),
				Width:   e.TimeToPixels(c.Duration),
			}
			for _, kf := range c.Keyframes {
				if kf.Time < 0 || kf.Time > c.Duration {
					continue
				}
				g.KeyframeXs = append(g.KeyframeXs, e.TimeToPixels(c.StartTime+kf.Time))
			}
			l.Clips = append(l.Clips, g)
		}
	}
	for _, m := range e.markers {
		l.Markers = append(l.Markers, model.MarkerGeometry{MarkerID: m.ID, X: e.TimeToPixels(m.Time)})
	}
	return l
}
