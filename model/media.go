package model

import (
	"path/filepath"
	"strings"
)

// MediaDescriptor describes an ingested media asset handed to the timeline.
// Duration <= 0 means the probe failed or never ran; the timeline substitutes
// a default clip length in that case.
type MediaDescriptor struct {
	Name      string  `json:"name"`
	Duration  float64 `json:"duration"`
	MediaType string  `json:"mediaType"`
	URL       string  `json:"url,omitempty"`
	File      string  `json:"file,omitempty"` // object path in the media store
	Size      int64   `json:"size,omitempty"`
}

// MediaKindForFile maps a filename to the clip media kind used on the
// timeline. Unknown extensions fall back to video, the dominant asset kind.
func MediaKindForFile(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mp4", ".mov", ".webm", ".mkv", ".avi", ".m4v":
		return "video"
	case ".mp3", ".wav", ".aac", ".flac", ".ogg", ".m4a", ".opus":
		return "audio"
	case ".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp", ".svg":
		return "image"
	case ".srt", ".txt", ".vtt":
		return "text"
	default:
		return "video"
	}
}

// ContentTypeForFile returns the MIME type to store alongside an object when
// the uploader did not supply one.
func ContentTypeForFile(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mp4", ".m4v":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".webm":
		return "video/webm"
	case ".mkv":
		return "video/x-matroska"
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".aac":
		return "audio/aac"
	case ".flac":
		return "audio/flac"
	case ".ogg":
		return "audio/ogg"
	case ".m4a":
		return "audio/mp4"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".svg":
		return "image/svg+xml"
	default:
		return "application/octet-stream"
	}
}
