package timeline

// BasePixelsPerSecond is the ruler density at zoom 1.0. All horizontal
// geometry is derived from it, so time->pixel->time round-trips exactly
// up to float precision.
const BasePixelsPerSecond = 50.0

// PixelsPerSecond returns the horizontal pixel density for a zoom factor.
func PixelsPerSecond(zoom float64) float64 {
	return BasePixelsPerSecond * zoom
}

// TimeToPixels converts a time in seconds to a pixel offset at the given zoom.
func TimeToPixels(t, zoom float64) float64 {
	return t * PixelsPerSecond(zoom)
}

// PixelsToTime converts a pixel offset back to seconds at the given zoom.
func PixelsToTime(px, zoom float64) float64 {
	return px / PixelsPerSecond(zoom)
}

// TimeToPixels converts a time to a pixel offset at the engine's current zoom.
func (e *Engine) TimeToPixels(t float64) float64 {
	return TimeToPixels(t, e.zoom)
}

// PixelsToTime converts a pixel offset to seconds at the engine's current zoom.
func (e *Engine) PixelsToTime(px float64) float64 {
	return PixelsToTime(px, e.zoom)
}
