package plan

import (
	"path/filepath"
	"strings"
)

// Format identifies a source or intermediate audio container.
type Format string

const (
	Vorbis  Format = "vorbis"
	FLAC    Format = "flac"
	MP3     Format = "mp3"
	AAC     Format = "aac"
	WAV     Format = "wav"
	Unknown Format = "unknown"
)

// DetectFormat classifies a file by extension, case-insensitively.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ogg":
		return Vorbis
	case ".flac":
		return FLAC
	case ".mp3":
		return MP3
	case ".m4a", ".aac":
		return AAC
	case ".wav":
		return WAV
	default:
		return Unknown
	}
}

// IsSupportedSource reports whether the format can enter the pipeline.
func IsSupportedSource(f Format) bool {
	switch f {
	case Vorbis, FLAC, MP3, AAC:
		return true
	default:
		return false
	}
}

// Extension returns the filename extension for a format, dot included.
func (f Format) Extension() string {
	switch f {
	case Vorbis:
		return ".ogg"
	case FLAC:
		return ".flac"
	case MP3:
		return ".mp3"
	case AAC:
		return ".m4a"
	case WAV:
		return ".wav"
	default:
		return ""
	}
}
