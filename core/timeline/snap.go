package timeline

import (
	"math"
	"sort"
)

// SnapThresholdPx is the screen-space capture radius for snapping. The
// comparison is strict, so a candidate exactly at the threshold does not
// capture.
const SnapThresholdPx = 10.0

// snapIndex caches the sorted snap candidates together with the revisions
// they were built from. Any clip, marker or playhead change invalidates it.
type snapIndex struct {
	clipsRev   uint64
	markersRev uint64
	playhead   float64
	points     []float64
}

// SnapPoints returns the sorted, deduplicated snap candidate times: every
// clip boundary on every track, every marker, and the playhead. The slice
// is cached until the underlying state changes; callers must not mutate it.
func (e *Engine) SnapPoints() []float64 {
	if s := e.snapCache; s != nil && s.clipsRev == e.clipsRev && s.markersRev == e.markersRev && s.playhead == e.currentTime {
		return s.points
	}
	pts := make([]float64, 0, 2*e.clipCount()+len(e.markers)+1)
	for _, tr := range e.tracks {
		for _, c := range tr.Clips {
			pts = append(pts, c.StartTime, c.EndTime())
		}
	}
	for _, m := range e.markers {
		pts = append(pts, m.Time)
	}
	pts = append(pts, e.currentTime)
	sort.Float64s(pts)
	out := pts[:0]
	for i, p := range pts {
		if i == 0 || p != out[len(out)-1] {
			out = append(out, p)
		}
	}
	e.snapCache = &snapIndex{
		clipsRev:   e.clipsRev,
		markersRev: e.markersRev,
		playhead:   e.currentTime,
		points:     out,
	}
	return out
}

// FindSnapPoint returns the first candidate, in ascending time order, whose
// pixel distance from t at the current zoom is strictly under
// SnapThresholdPx. With no candidate in range, or with snapping disabled,
// t comes back unchanged.
func (e *Engine) FindSnapPoint(t float64) float64 {
	if !e.snapEnabled {
		return t
	}
	pps := PixelsPerSecond(e.zoom)
	for _, p := range e.SnapPoints() {
		if math.Abs(p-t)*pps < SnapThresholdPx {
			return p
		}
	}
	return t
}

func (e *Engine) clipCount() int {
	n := 0
	for _, tr := range e.tracks {
		n += len(tr.Clips)
	}
	return n
}
