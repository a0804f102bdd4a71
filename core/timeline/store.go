package timeline

import (
	"errors"
	"fmt"
	"sort"

	"ClipForge/model"
)

const (
	// MinClipDuration is the floor below which duration changes are ignored.
	MinClipDuration = 0.1
	// DefaultClipDuration is used when the source media duration is unknown.
	DefaultClipDuration = 5.0
)

// Sentinel errors for mutations referencing state that does not exist.
// The timeline itself is left untouched in every error case.
var (
	ErrTrackNotFound  = errors.New("timeline: track not found")
	ErrClipNotFound   = errors.New("timeline: clip not found")
	ErrMarkerNotFound = errors.New("timeline: marker not found")
	ErrEffectNotFound = errors.New("timeline: effect not found")
	ErrUnknownFlag    = errors.New("timeline: unknown track flag")
	ErrInvalidType    = errors.New("timeline: unknown track type")
)

// TrackFlag names one of the per-track boolean toggles.
type TrackFlag string

const (
	FlagMuted   TrackFlag = "muted"
	FlagSolo    TrackFlag = "solo"
	FlagLocked  TrackFlag = "locked"
	FlagVisible TrackFlag = "visible"
)

var markerColors = []string{"#f59e0b", "#10b981", "#3b82f6", "#8b5cf6", "#ef4444", "#14b8a6"}

// AddTrack appends a new empty track of the given type. Name, color and
// icon defaults derive from the type.
func (e *Engine) AddTrack(kind model.TrackType) (*model.Track, error) {
	if !kind.Valid() {
		return nil, ErrInvalidType
	}
	n := 1
	for _, tr := range e.tracks {
		if tr.Type == kind {
			n++
		}
	}
	tr := &model.Track{
		ID:      newID("track"),
		Name:    fmt.Sprintf("%s %d", titleCase(string(kind)), n),
		Type:    kind,
		Clips:   []*model.Clip{},
		Visible: true,
		Volume:  1.0,
		Color:   kind.Color(),
	}
	e.tracks = append(e.tracks, tr)
	e.touchClips()
	return tr, nil
}

// DeleteTrack removes a track and everything that references it: its clips,
// its collapse entry and any selection entries for its clips.
func (e *Engine) DeleteTrack(trackID string) error {
	idx := -1
	for i, tr := range e.tracks {
		if tr.ID == trackID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrTrackNotFound
	}
	for _, c := range e.tracks[idx].Clips {
		e.deselect(c.ID)
	}
	delete(e.collapsed, trackID)
	e.tracks = append(e.tracks[:idx], e.tracks[idx+1:]...)
	e.touchClips()
	return nil
}

// RenameTrack sets the track's display name. Empty names are ignored.
func (e *Engine) RenameTrack(trackID, name string) error {
	tr := e.findTrack(trackID)
	if tr == nil {
		return ErrTrackNotFound
	}
	if name == "" {
		return nil
	}
	tr.Name = name
	e.touch()
	return nil
}

// ToggleTrackFlag flips one of the four per-track booleans. Flags carry no
// cross-validation: a track may be muted and solo at once.
func (e *Engine) ToggleTrackFlag(trackID string, flag TrackFlag) error {
	tr := e.findTrack(trackID)
	if tr == nil {
		return ErrTrackNotFound
	}
	switch flag {
	case FlagMuted:
		tr.Muted = !tr.Muted
	case FlagSolo:
		tr.Solo = !tr.Solo
	case FlagLocked:
		tr.Locked = !tr.Locked
	case FlagVisible:
		tr.Visible = !tr.Visible
	default:
		return ErrUnknownFlag
	}
	e.touch()
	return nil
}

// SetTrackVolume sets the track gain, clamped to [0, 2].
func (e *Engine) SetTrackVolume(trackID string, volume float64) error {
	tr := e.findTrack(trackID)
	if tr == nil {
		return ErrTrackNotFound
	}
	tr.Volume = clampVolume(volume)
	e.touch()
	return nil
}

// AddClipFromMedia appends a clip for the given media to a track. The clip
// starts at time 0, inherits the media name and kind, and falls back to
// DefaultClipDuration when the probed duration is unknown.
func (e *Engine) AddClipFromMedia(trackID string, media model.MediaDescriptor) (*model.Clip, error) {
	tr := e.findTrack(trackID)
	if tr == nil {
		return nil, ErrTrackNotFound
	}
	dur := media.Duration
	if dur <= 0 {
		dur = DefaultClipDuration
	}
	name := media.Name
	if name == "" {
		name = "Clip"
	}
	c := &model.Clip{
		ID:        newID("clip"),
		Name:      name,
		StartTime: 0,
		Duration:  dur,
		Type:      media.MediaType,
		URL:       media.URL,
		File:      media.File,
		Volume:    1.0,
		Effects:   []model.Effect{},
	}
	tr.Clips = append(tr.Clips, c)
	e.touchClips()
	return c, nil
}

// DeleteClip removes a clip from its track and drops it from the selection.
func (e *Engine) DeleteClip(clipID, trackID string) error {
	tr, i := e.findClip(clipID, trackID)
	if tr == nil {
		return ErrClipNotFound
	}
	tr.Clips = append(tr.Clips[:i], tr.Clips[i+1:]...)
	e.deselect(clipID)
	e.touchClips()
	return nil
}

// SplitClip cuts a clip in two at atTime. The cut only applies strictly
// inside the clip: at or outside either boundary nothing changes and both
// returned clips are nil. The halves replace the parent in place, keep its
// media reference, volume, effects and keyframes, and take ids derived from
// the parent's.
func (e *Engine) SplitClip(clipID, trackID string, atTime float64) (first, second *model.Clip, err error) {
	tr, i := e.findClip(clipID, trackID)
	if tr == nil {
		return nil, nil, ErrClipNotFound
	}
	parent := tr.Clips[i]
	offset := atTime - parent.StartTime
	if offset <= 0 || offset >= parent.Duration {
		return nil, nil, nil
	}
	first = parent.Clone()
	first.ID = parent.ID + "-1"
	first.Duration = offset
	second = parent.Clone()
	second.ID = parent.ID + "-2"
	second.StartTime = atTime
	second.Duration = parent.Duration - offset
	e.deselect(parent.ID)
	tr.Clips = append(tr.Clips[:i], append([]*model.Clip{first, second}, tr.Clips[i+1:]...)...)
	e.touchClips()
	return first, second, nil
}

// SetClipTime moves and resizes a clip. The two fields are validated
// independently: a negative start is clamped to 0, and a duration below
// MinClipDuration is ignored while the start still applies. Returns the
// geometry actually stored.
func (e *Engine) SetClipTime(clipID, trackID string, start, duration float64) (appliedStart, appliedDuration float64, err error) {
	tr, i := e.findClip(clipID, trackID)
	if tr == nil {
		return 0, 0, ErrClipNotFound
	}
	c := tr.Clips[i]
	if start < 0 {
		start = 0
	}
	c.StartTime = start
	if duration >= MinClipDuration {
		c.Duration = duration
	}
	e.touchClips()
	return c.StartTime, c.Duration, nil
}

// SetClipVolume sets the clip gain, clamped to [0, 2].
func (e *Engine) SetClipVolume(clipID, trackID string, volume float64) error {
	tr, i := e.findClip(clipID, trackID)
	if tr == nil {
		return ErrClipNotFound
	}
	tr.Clips[i].Volume = clampVolume(volume)
	e.touch()
	return nil
}

// ApplyClipEffect appends an effect to the clip's ordered effect list and
// returns it with a fresh id.
func (e *Engine) ApplyClipEffect(clipID, trackID, effectType string, params map[string]interface{}) (*model.Effect, error) {
	tr, i := e.findClip(clipID, trackID)
	if tr == nil {
		return nil, ErrClipNotFound
	}
	fx := model.Effect{ID: newID("fx"), Type: effectType, Params: params}
	tr.Clips[i].Effects = append(tr.Clips[i].Effects, fx)
	e.touch()
	return &fx, nil
}

// RemoveClipEffect removes one effect from a clip by effect id.
func (e *Engine) RemoveClipEffect(clipID, trackID, effectID string) error {
	tr, i := e.findClip(clipID, trackID)
	if tr == nil {
		return ErrClipNotFound
	}
	c := tr.Clips[i]
	for j, fx := range c.Effects {
		if fx.ID == effectID {
			c.Effects = append(c.Effects[:j], c.Effects[j+1:]...)
			e.touch()
			return nil
		}
	}
	return ErrEffectNotFound
}

// AddClipKeyframe records a keyframe at a clip-relative time. The time is
// clamped into the clip's duration window.
func (e *Engine) AddClipKeyframe(clipID, trackID string, kf model.Keyframe) error {
	tr, i := e.findClip(clipID, trackID)
	if tr == nil {
		return ErrClipNotFound
	}
	c := tr.Clips[i]
	if kf.Time < 0 {
		kf.Time = 0
	}
	if kf.Time > c.Duration {
		kf.Time = c.Duration
	}
	c.Keyframes = append(c.Keyframes, kf)
	sort.SliceStable(c.Keyframes, func(a, b int) bool { return c.Keyframes[a].Time < c.Keyframes[b].Time })
	e.touch()
	return nil
}

// AddMarker drops a labeled marker on the ruler. A negative time is clamped
// to 0; an empty label gets a numbered default. Markers stay sorted by time.
func (e *Engine) AddMarker(t float64, label string) *model.Marker {
	if t < 0 {
		t = 0
	}
	if label == "" {
		label = fmt.Sprintf("Marker %d", len(e.markers)+1)
	}
	m := &model.Marker{
		ID:    newID("marker"),
		Time:  t,
		Label: label,
		Color: markerColors[len(e.markers)%len(markerColors)],
	}
	e.markers = append(e.markers, m)
	sort.SliceStable(e.markers, func(a, b int) bool { return e.markers[a].Time < e.markers[b].Time })
	e.touchMarkers()
	return m
}

// RemoveMarker deletes a marker by id.
func (e *Engine) RemoveMarker(markerID string) error {
	for i, m := range e.markers {
		if m.ID == markerID {
			e.markers = append(e.markers[:i], e.markers[i+1:]...)
			e.touchMarkers()
			return nil
		}
	}
	return ErrMarkerNotFound
}

func (e *Engine) findTrack(id string) *model.Track {
	for _, tr := range e.tracks {
		if tr.ID == id {
			return tr
		}
	}
	return nil
}

func (e *Engine) findClip(clipID, trackID string) (*model.Track, int) {
	tr := e.findTrack(trackID)
	if tr == nil {
		return nil, -1
	}
	for i, c := range tr.Clips {
		if c.ID == clipID {
			return tr, i
		}
	}
	return nil, -1
}

func (e *Engine) deselect(clipID string) {
	if !e.selected[clipID] {
		return
	}
	delete(e.selected, clipID)
	for i, id := range e.selectOrder {
		if id == clipID {
			e.selectOrder = append(e.selectOrder[:i], e.selectOrder[i+1:]...)
			break
		}
	}
}

func clampVolume(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 2 {
		return 2
	}
	return v
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}
