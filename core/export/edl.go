package export

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"ClipForge/model"
)

// maxClipNameLen bounds the name comment; CMX 3600 readers truncate around
// this length anyway.
const maxClipNameLen = 32

// Event is one edit in the cutlist. Source times are clip-local, record
// times are timeline positions.
type Event struct {
	Channel   string
	ClipName  string
	MediaPath string
	SourceIn  float64
	SourceOut float64
	RecordIn  float64
	RecordOut float64
}

// TimelineEvents flattens a snapshot into cutlist events. Video and image
// tracks map to the V channel, audio tracks to A; text and effect tracks
// carry no media and are skipped. Events come back ordered by record-in,
// ties keeping track order.
func TimelineEvents(snap *model.TimelineSnapshot) []Event {
	var events []Event
	for _, tr := range snap.Tracks {
		var channel string
		switch tr.Type {
		case model.TrackTypeVideo, model.TrackTypeImage:
			channel = "V"
		case model.TrackTypeAudio:
			channel = "A"
		default:
			continue
		}
		for _, c := range tr.Clips {
			path := c.File
			if path == "" {
				path = c.URL
			}
			if path == "" {
				path = c.Name
			}
			events = append(events, Event{
				Channel:   channel,
				ClipName:  sanitizeName(c.Name),
				MediaPath: path,
				SourceIn:  0,
				SourceOut: c.Duration,
				RecordIn:  c.StartTime,
				RecordOut: c.EndTime(),
			})
		}
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].RecordIn < events[j].RecordIn })
	return events
}

// GenerateEDL renders a CMX 3600 cutlist for the snapshot. frameRate decides
// the timecode base; 29.97 and 59.94 are marked drop-frame.
func GenerateEDL(snap *model.TimelineSnapshot, title string, frameRate float64) string {
	fps := int(math.Round(frameRate))
	if fps <= 0 {
		fps = 30
	}
	if title == "" {
		title = "Untitled Sequence"
	}

	isDropFrame := math.Abs(frameRate-29.97) < 0.01 || math.Abs(frameRate-59.94) < 0.01

	lines := []string{fmt.Sprintf("TITLE: %s", title)}
	if isDropFrame {
		lines = append(lines, "FCM: DROP FRAME")
	} else {
		lines = append(lines, "FCM: NON-DROP FRAME")
	}
	lines = append(lines, "")

	for i, ev := range TimelineEvents(snap) {
		lines = append(lines,
			fmt.Sprintf("%03d  %-8s %-5s C        %s %s %s %s", i+1, "AX", ev.Channel,
				secondsToTimecode(ev.SourceIn, fps), secondsToTimecode(ev.SourceOut, fps),
				secondsToTimecode(ev.RecordIn, fps), secondsToTimecode(ev.RecordOut, fps)),
			fmt.Sprintf("* FROM CLIP NAME:  %s", ev.ClipName),
			fmt.Sprintf("* MEDIA PATH:  %s", ev.MediaPath),
		)
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func secondsToTimecode(sec float64, fps int) string {
	totalFrames := int(math.Round(sec * float64(fps)))
	frames := totalFrames % fps
	totalSeconds := totalFrames / fps
	seconds := totalSeconds % 60
	totalMinutes := totalSeconds / 60
	minutes := totalMinutes % 60
	hours := totalMinutes / 60
	return fmt.Sprintf("%02d:%02d:%02d:%02d", hours, minutes, seconds, frames)
}

// sanitizeName strips control runes and anything a strict EDL reader could
// choke on, then trims to maxClipNameLen.
func sanitizeName(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsControl(r) {
			continue
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		switch r {
		case ' ', '-', '_', '.', ',', '(', ')':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	cleaned := strings.TrimSpace(b.String())
	if runes := []rune(cleaned); len(runes) > maxClipNameLen {
		cleaned = string(runes[:maxClipNameLen])
	}
	return cleaned
}
