package timeline

import (
	"sort"

	"github.com/google/uuid"

	"ClipForge/model"
)

// Events carries the callbacks a shell can hook to observe the timeline.
// All fields are optional and scoped to one Engine instance; two engines
// never share observer state. Callbacks run synchronously on the goroutine
// that applied the change, with snapshot copies of any clip data.
type Events struct {
	// OnTimeChange fires after every playhead move, with the clamped time.
	OnTimeChange func(t float64)
	// OnClipSelect fires when a clip is selected, with a copy of the clip.
	OnClipSelect func(clip model.Clip)
	// OnClipEdit fires when a clip is opened for editing.
	OnClipEdit func(clip model.Clip)
}

// Engine owns the full editing state of one timeline: tracks, clips,
// markers, view settings and the in-progress drag gesture. It is not safe
// for concurrent use; callers serialize access (the studio session runs
// one command loop per engine).
type Engine struct {
	tracks  []*model.Track
	markers []*model.Marker

	currentTime   float64
	zoom          float64
	trackHeight   int
	snapEnabled   bool
	rippleEnabled bool
	collapsed     map[string]bool
	selected      map[string]bool
	selectOrder   []string

	drag *dragState

	// version counts applied mutations; clipsRev and markersRev count the
	// subset that changes snap candidates, keying the snap index cache.
	version    uint64
	clipsRev   uint64
	markersRev uint64
	snapCache  *snapIndex

	events Events
}

// NewEngine returns an empty timeline with default view settings.
func NewEngine() *Engine {
	return &Engine{
		zoom:        1.0,
		trackHeight: DefaultTrackHeight,
		snapEnabled: true,
		collapsed:   make(map[string]bool),
		selected:    make(map[string]bool),
	}
}

// Events returns a pointer to the engine's callback set so callers can
// install observers.
func (e *Engine) Events() *Events {
	return &e.events
}

// Version returns the mutation counter. It increases on every applied
// change, so equal versions imply identical state.
func (e *Engine) Version() uint64 {
	return e.version
}

// Duration returns the end of the last clip on any track, in seconds.
// An empty timeline has duration 0.
func (e *Engine) Duration() float64 {
	var d float64
	for _, tr := range e.tracks {
		for _, c := range tr.Clips {
			if end := c.EndTime(); end > d {
				d = end
			}
		}
	}
	return d
}

// Tracks returns the live track slice. Callers must not retain it across
// mutations; use Snapshot for a stable copy.
func (e *Engine) Tracks() []*model.Track {
	return e.tracks
}

// Markers returns the live marker slice, sorted by time.
func (e *Engine) Markers() []*model.Marker {
	return e.markers
}

// Snapshot returns a deep copy of the timeline state. The copy is safe to
// marshal or hand to another goroutine.
func (e *Engine) Snapshot() *model.TimelineSnapshot {
	snap := &model.TimelineSnapshot{
		Version:         e.version,
		CurrentTime:     e.currentTime,
		Duration:        e.Duration(),
		Zoom:            e.zoom,
		TrackHeight:     e.trackHeight,
		PixelsPerSecond: PixelsPerSecond(e.zoom),
		SnapEnabled:     e.snapEnabled,
		RippleEnabled:   e.rippleEnabled,
		Dragging:        e.drag != nil,
		Tracks:          make([]*model.Track, len(e.tracks)),
		Markers:         make([]*model.Marker, len(e.markers)),
		CollapsedTracks: make([]string, 0, len(e.collapsed)),
		SelectedClips:   append([]string(nil), e.selectOrder...),
	}
	for i, tr := range e.tracks {
		snap.Tracks[i] = tr.Clone()
	}
	for i, m := range e.markers {
		cp := *m
		snap.Markers[i] = &cp
	}
	for id := range e.collapsed {
		snap.CollapsedTracks = append(snap.CollapsedTracks, id)
	}
	sort.Strings(snap.CollapsedTracks)
	return snap
}

// touch records a mutation that does not move snap candidates.
func (e *Engine) touch() {
	e.version++
}

// touchClips records a mutation that moved clip boundaries.
func (e *Engine) touchClips() {
	e.version++
	e.clipsRev++
}

// touchMarkers records a mutation that changed the marker set.
func (e *Engine) touchMarkers() {
	e.version++
	e.markersRev++
}

func newID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}
