package model

// TrackType identifies the nominal media kind of a track. The set is closed:
// rendering defaults (color, icon) are derived from it with exhaustive
// switches, so adding a type is a compile-visible change. The type does not
// constrain which clips may be placed on the track.
type TrackType string

const (
	TrackTypeVideo  TrackType = "video"
	TrackTypeAudio  TrackType = "audio"
	TrackTypeText   TrackType = "text"
	TrackTypeImage  TrackType = "image"
	TrackTypeEffect TrackType = "effect"
)

// Valid reports whether t is one of the known track types.
func (t TrackType) Valid() bool {
	switch t {
	case TrackTypeVideo, TrackTypeAudio, TrackTypeText, TrackTypeImage, TrackTypeEffect:
		return true
	}
	return false
}

// Color returns the default lane color for the track type.
func (t TrackType) Color() string {
	switch t {
	case TrackTypeVideo:
		return "#3b82f6"
	case TrackTypeAudio:
		return "#22c55e"
	case TrackTypeText:
		return "#a855f7"
	case TrackTypeImage:
		return "#f59e0b"
	case TrackTypeEffect:
		return "#ec4899"
	default:
		return "#6b7280"
	}
}

// Icon returns the icon identifier the shell renders in the track header.
func (t TrackType) Icon() string {
	switch t {
	case TrackTypeVideo:
		return "video"
	case TrackTypeAudio:
		return "music"
	case TrackTypeText:
		return "type"
	case TrackTypeImage:
		return "image"
	case TrackTypeEffect:
		return "sparkles"
	default:
		return "square"
	}
}

// Track is an ordered lane of clips. Clips keep insertion order, not time
// order; overlapping clips are allowed and later entries draw on top.
type Track struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Type    TrackType `json:"type"`
	Clips   []*Clip   `json:"clips"`
	Muted   bool      `json:"muted"`
	Solo    bool      `json:"solo"`
	Locked  bool      `json:"locked"`
	Visible bool      `json:"visible"`
	Volume  float64   `json:"volume"`
	Color   string    `json:"color"` // derived from Type at creation, immutable after
}

// Clone returns a deep copy of the track and its clips.
func (t *Track) Clone() *Track {
	cp := *t
	cp.Clips = make([]*Clip, len(t.Clips))
	for i, c := range t.Clips {
		cp.Clips[i] = c.Clone()
	}
	return &cp
}

// Clip is a time-bounded reference to a media asset placed on a track.
// Times are in seconds.
type Clip struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	StartTime float64    `json:"startTime"`
	Duration  float64    `json:"duration"`
	Type      string     `json:"type"` // media kind: video, audio, image, text
	URL       string     `json:"url,omitempty"`
	File      string     `json:"file,omitempty"` // opaque storage reference
	Volume    float64    `json:"volume"`
	Effects   []Effect   `json:"effects"`
	Keyframes []Keyframe `json:"keyframes,omitempty"`
}

// EndTime returns StartTime + Duration.
func (c *Clip) EndTime() float64 {
	return c.StartTime + c.Duration
}

// Clone returns a deep copy of the clip.
func (c *Clip) Clone() *Clip {
	cp := *c
	if c.Effects != nil {
		cp.Effects = make([]Effect, len(c.Effects))
		copy(cp.Effects, c.Effects)
	}
	if c.Keyframes != nil {
		cp.Keyframes = make([]Keyframe, len(c.Keyframes))
		copy(cp.Keyframes, c.Keyframes)
	}
	return &cp
}

// Effect is an opaque processing step attached to a clip. The timeline stores
// and orders effects; interpreting them is the media backend's job.
type Effect struct {
	ID     string                 `json:"id"`
	Type   string                 `json:"type"`
	Params map[string]interface{} `json:"params,omitempty"`
}

// Keyframe marks a property value at a clip-relative time. Only keyframes
// inside the clip's duration window are rendered.
type Keyframe struct {
	Time     float64 `json:"time"` // seconds from clip start
	Property string  `json:"property,omitempty"`
	Value    float64 `json:"value,omitempty"`
}

// Marker is a labeled point on the timeline ruler, independent of any track.
type Marker struct {
	ID    string  `json:"id"`
	Time  float64 `json:"time"`
	Label string  `json:"label"`
	Color string  `json:"color"`
}
