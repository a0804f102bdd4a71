package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Prober reports the duration of a media file in seconds. A failed probe
// returns an error; callers fall back to the timeline's default clip length.
type Prober interface {
	Duration(ctx context.Context, inputFile string) (float64, error)
}

// FFProbeProber implements Prober by shelling out to ffprobe, resolved from
// the configured ffmpeg path.
type FFProbeProber struct {
	ffmpegPath string
}

// NewFFProbeProber creates a prober using the given ffmpeg binary path.
func NewFFProbeProber(ffmpegPath string) *FFProbeProber {
	return &FFProbeProber{ffmpegPath: ffmpegPath}
}

// ffprobeOutput defines the structure for ffprobe JSON output.
type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Duration uses ffprobe to get the duration of a media file in seconds.
func (p *FFProbeProber) Duration(ctx context.Context, inputFile string) (float64, error) {
	ffprobePath := strings.Replace(p.ffmpegPath, "ffmpeg", "ffprobe", 1)

	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "json",
		inputFile,
	}

	cmd := exec.CommandContext(ctx, ffprobePath, args...)
	var out bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe execution failed for %s: %w\nFFprobe Error: %s", inputFile, err, stderr.String())
	}

	return parseProbeDuration(out.Bytes())
}

// parseProbeDuration extracts format.duration from ffprobe JSON output.
func parseProbeDuration(out []byte) (float64, error) {
	var probeData ffprobeOutput
	if err := json.Unmarshal(out, &probeData); err != nil {
		return 0, fmt.Errorf("failed to unmarshal ffprobe output: %w", err)
	}
	if probeData.Format.Duration == "" {
		return 0, fmt.Errorf("ffprobe output did not contain format duration")
	}
	duration, err := strconv.ParseFloat(probeData.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration string '%s': %w", probeData.Format.Duration, err)
	}
	return duration, nil
}
