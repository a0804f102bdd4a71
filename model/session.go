package model

import "time"

// SessionInfo is the list/detail view of an editing session.
type SessionInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	Clients   int       `json:"clients"`
	Tracks    int       `json:"tracks"`
	Version   uint64    `json:"version"`
}

// MemberOnline is the presence record cached for one connected client.
type MemberOnline struct {
	ClientID int64  `json:"clientId"`
	Name     string `json:"name"`
	JoinedAt int64  `json:"joinedAt"`
	LastSeen int64  `json:"lastSeen"`
}

// TimelineSnapshot is a read-only copy of the timeline state handed to
// shells. Mutating a snapshot never affects the live timeline.
type TimelineSnapshot struct {
	Version         uint64    `json:"version"`
	CurrentTime     float64   `json:"currentTime"`
	Duration        float64   `json:"duration"`
	Zoom            float64   `json:"zoom"`
	TrackHeight     int       `json:"trackHeight"`
	PixelsPerSecond float64   `json:"pixelsPerSecond"`
	SnapEnabled     bool      `json:"snapEnabled"`
	RippleEnabled   bool      `json:"rippleEnabled"`
	Dragging        bool      `json:"dragging"`
	Tracks          []*Track  `json:"tracks"`
	Markers         []*Marker `json:"markers"`
	CollapsedTracks []string  `json:"collapsedTracks"`
	SelectedClips   []string  `json:"selectedClips"`
}

// RulerTick is one labeled graduation on the timeline ruler.
type RulerTick struct {
	Time  float64 `json:"time"`
	X     float64 `json:"x"`
	Label string  `json:"label"`
}

// ClipGeometry is the pixel-space placement of one clip at the current zoom.
type ClipGeometry struct {
	ClipID     string    `json:"clipId"`
	TrackID    string    `json:"trackId"`
	X          float64   `json:"x"`
	Width      float64   `json:"width"`
	KeyframeXs []float64 `json:"keyframeXs,omitempty"`
}

// MarkerGeometry is the pixel position of one ruler marker.
type MarkerGeometry struct {
	MarkerID string  `json:"markerId"`
	X        float64 `json:"x"`
}

// TimelineLayout is the computed pixel-space view of the timeline for a
// given viewport: overall height, ruler ticks and per-clip geometry.
type TimelineLayout struct {
	Height    int              `json:"height"`
	PlayheadX float64          `json:"playheadX"`
	Ticks     []RulerTick      `json:"ticks"`
	Clips     []ClipGeometry   `json:"clips"`
	Markers   []MarkerGeometry `json:"markers"`
}
