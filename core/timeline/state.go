package timeline

// View setting bounds. Setters clamp rather than reject, mirroring the
// central-validation rule for clip geometry.
const (
	MinZoom = 0.1
	MaxZoom = 5.0

	MinTrackHeight     = 40
	MaxTrackHeight     = 120
	DefaultTrackHeight = 60
)

// SetZoom sets the zoom factor, clamped to [MinZoom, MaxZoom], and returns
// the applied value.
func (e *Engine) SetZoom(z float64) float64 {
	if z < MinZoom {
		z = MinZoom
	}
	if z > MaxZoom {
		z = MaxZoom
	}
	e.zoom = z
	e.touch()
	return z
}

// Zoom returns the current zoom factor.
func (e *Engine) Zoom() float64 {
	return e.zoom
}

// SetTrackHeight sets the expanded track height in pixels, clamped to
// [MinTrackHeight, MaxTrackHeight], and returns the applied value.
func (e *Engine) SetTrackHeight(h int) int {
	if h < MinTrackHeight {
		h = MinTrackHeight
	}
	if h > MaxTrackHeight {
		h = MaxTrackHeight
	}
	e.trackHeight = h
	e.touch()
	return h
}

// TrackHeight returns the expanded track height in pixels.
func (e *Engine) TrackHeight() int {
	return e.trackHeight
}

// SetCurrentTime moves the playhead, clamped to [0, Duration], fires
// OnTimeChange and returns the applied time.
func (e *Engine) SetCurrentTime(t float64) float64 {
	if t < 0 {
		t = 0
	}
	if d := e.Duration(); t > d {
		t = d
	}
	e.currentTime = t
	e.touch()
	if e.events.OnTimeChange != nil {
		e.events.OnTimeChange(t)
	}
	return t
}

// CurrentTime returns the playhead position in seconds.
func (e *Engine) CurrentTime() float64 {
	return e.currentTime
}

// SetSnapEnabled toggles snapping during drags.
func (e *Engine) SetSnapEnabled(on bool) {
	e.snapEnabled = on
	e.touch()
}

// SnapEnabled reports whether snapping is active.
func (e *Engine) SnapEnabled() bool {
	return e.snapEnabled
}

// SetRippleEnabled toggles ripple mode. The flag is session state only;
// no operation currently shifts downstream clips.
// TODO: make SetClipTime ripple trailing clips on the same track when set.
func (e *Engine) SetRippleEnabled(on bool) {
	e.rippleEnabled = on
	e.touch()
}

// RippleEnabled reports whether ripple mode is set.
func (e *Engine) RippleEnabled() bool {
	return e.rippleEnabled
}

// ToggleTrackCollapsed flips a track between its expanded height and the
// fixed collapsed height.
func (e *Engine) ToggleTrackCollapsed(trackID string) error {
	if e.findTrack(trackID) == nil {
		return ErrTrackNotFound
	}
	if e.collapsed[trackID] {
		delete(e.collapsed, trackID)
	} else {
		e.collapsed[trackID] = true
	}
	e.touch()
	return nil
}

// TrackCollapsed reports whether the track renders at the collapsed height.
func (e *Engine) TrackCollapsed(trackID string) bool {
	return e.collapsed[trackID]
}

// SelectClip adds a clip to the selection and fires OnClipSelect. Without
// additive, the previous selection is replaced. Selecting an already
// selected clip keeps its position in the selection order.
func (e *Engine) SelectClip(clipID, trackID string, additive bool) error {
	tr, i := e.findClip(clipID, trackID)
	if tr == nil {
		return ErrClipNotFound
	}
	if !additive {
		e.selected = make(map[string]bool)
		e.selectOrder = e.selectOrder[:0]
	}
	if !e.selected[clipID] {
		e.selected[clipID] = true
		e.selectOrder = append(e.selectOrder, clipID)
	}
	e.touch()
	if e.events.OnClipSelect != nil {
		e.events.OnClipSelect(*tr.Clips[i].Clone())
	}
	return nil
}

// ClearSelection empties the clip selection.
func (e *Engine) ClearSelection() {
	if len(e.selectOrder) == 0 {
		return
	}
	e.selected = make(map[string]bool)
	e.selectOrder = e.selectOrder[:0]
	e.touch()
}

// ClipSelected reports whether the clip is in the current selection.
func (e *Engine) ClipSelected(clipID string) bool {
	return e.selected[clipID]
}

// RequestClipEdit fires OnClipEdit for a clip, typically on double-click.
// The timeline state itself does not change.
func (e *Engine) RequestClipEdit(clipID, trackID string) error {
	tr, i := e.findClip(clipID, trackID)
	if tr == nil {
		return ErrClipNotFound
	}
	if e.events.OnClipEdit != nil {
		e.events.OnClipEdit(*tr.Clips[i].Clone())
	}
	return nil
}
