package timeline

import (
	"math"
	"testing"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestPixelsPerSecond(t *testing.T) {
	tests := []struct {
		zoom float64
		want float64
	}{
		{1.0, 50},
		{0.1, 5},
		{0.5, 25},
		{2.0, 100},
		{5.0, 250},
	}
	for _, tt := range tests {
		if got := PixelsPerSecond(tt.zoom); !approx(got, tt.want) {
			t.Errorf("PixelsPerSecond(%v) = %v, want %v", tt.zoom, got, tt.want)
		}
	}
}

func TestTimeToPixels(t *testing.T) {
	tests := []struct {
		name string
		time float64
		zoom float64
		want float64
	}{
		{"one second default zoom", 1, 1, 50},
		{"zoomed in", 3, 2, 300},
		{"zoomed out", 10, 0.1, 5},
		{"zero time", 0, 3, 0},
		{"fractional", 2.5, 1, 125},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TimeToPixels(tt.time, tt.zoom); !approx(got, tt.want) {
				t.Fatalf("TimeToPixels(%v, %v) = %v, want %v", tt.time, tt.zoom, got, tt.want)
			}
		})
	}
}

func TestPixelsToTimeRoundTrip(t *testing.T) {
	zooms := []float64{0.1, 0.25, 0.5, 1, 1.7, 2, 5}
	times := []float64{0, 0.1, 1, 2.5, 17.3, 59.94, 3600}
	for _, z := range zooms {
		for _, tm := range times {
			got := PixelsToTime(TimeToPixels(tm, z), z)
			if math.Abs(got-tm) > 1e-9*math.Max(1, tm) {
				t.Errorf("round trip at zoom %v: got %v, want %v", z, got, tm)
			}
		}
	}
}

func TestEngineMapperUsesCurrentZoom(t *testing.T) {
	e := NewEngine()
	e.SetZoom(2)
	if got := e.TimeToPixels(3); !approx(got, 300) {
		t.Fatalf("TimeToPixels(3) at zoom 2 = %v, want 300", got)
	}
	if got := e.PixelsToTime(300); !approx(got, 3) {
		t.Fatalf("PixelsToTime(300) at zoom 2 = %v, want 3", got)
	}
}
