// Package plan decides which encode steps a track needs. Planning is pure:
// the same track and profile always produce the same plan.
package plan

import (
	"time"

	"github.com/jaa/music-convert/internal/config"
	"github.com/jaa/music-convert/internal/tags"
)

// Track is one discovered source file, immutable once read.
type Track struct {
	Path        string
	Format      Format
	Tags        tags.Record
	Size        int64
	ModTime     time.Time
	BitrateKbps int // 0 means unknown
}

// Adapter kinds a step can name. The encode engine resolves these against
// its adapter registry.
const (
	AdapterOggDec  = "oggdec"
	AdapterFlacDec = "flacdec"
	AdapterFFmpeg  = "ffmpeg"
	AdapterLame    = "lame"
)

// Step is one external-tool invocation within a plan.
type Step struct {
	Adapter     string
	Input       Format
	Output      Format
	VBRQuality  int
	BitrateKbps int
	Normalize   bool
}

// ConversionPlan is the ordered step list for one track. An empty plan
// means pass-through: the mover only relocates the file.
type ConversionPlan struct {
	Steps []Step
}

func (p ConversionPlan) Empty() bool {
	return len(p.Steps) == 0
}

// Target maps the configured target format onto the format enum.
func Target(profile config.Profile) Format {
	if profile.TargetFormat == config.TargetAAC {
		return AAC
	}
	return MP3
}

// Build produces the conversion plan for one track.
//
// Rules, in order: a source already in the target format at or above the
// minimum bitrate passes through; lossy-compressed sources in another
// format are decoded to WAV and re-encoded; a target-format source below
// the minimum bitrate is re-encoded directly. An unknown bitrate counts as
// meeting the minimum, since re-encoding audio of unknown quality risks
// degrading it.
func Build(track Track, profile config.Profile) ConversionPlan {
	target := Target(profile)

	if track.Format == target && meetsMinimum(track.BitrateKbps, profile.MinBitrateKbps) {
		return ConversionPlan{}
	}

	encode := encodeStep(track, profile, target)

	switch track.Format {
	case Vorbis:
		return ConversionPlan{Steps: []Step{
			{Adapter: AdapterOggDec, Input: Vorbis, Output: WAV, Normalize: profile.Normalize},
			encode,
		}}
	case FLAC:
		return ConversionPlan{Steps: []Step{
			{Adapter: AdapterFlacDec, Input: FLAC, Output: WAV, Normalize: profile.Normalize},
			encode,
		}}
	case AAC:
		if target == AAC {
			// Below-minimum AAC re-encodes in one ffmpeg pass.
			return ConversionPlan{Steps: []Step{encodeFrom(encode, AAC)}}
		}
		return ConversionPlan{Steps: []Step{
			{Adapter: AdapterFFmpeg, Input: AAC, Output: WAV, Normalize: profile.Normalize},
			encode,
		}}
	case MP3:
		// lame re-encodes MP3 input directly; ffmpeg transcodes to AAC
		// without an explicit intermediate.
		return ConversionPlan{Steps: []Step{encodeFrom(encode, MP3)}}
	default:
		return ConversionPlan{}
	}
}

func meetsMinimum(bitrateKbps, minKbps int) bool {
	if bitrateKbps == 0 || minKbps <= 0 {
		return true
	}
	return bitrateKbps >= minKbps
}

func encodeStep(track Track, profile config.Profile, target Format) Step {
	if target == AAC {
		return Step{
			Adapter:     AdapterFFmpeg,
			Input:       WAV,
			Output:      AAC,
			BitrateKbps: clampBitrate(profile.BitrateKbps, track.BitrateKbps),
		}
	}
	return Step{
		Adapter:    AdapterLame,
		Input:      WAV,
		Output:     MP3,
		VBRQuality: profile.VBRQuality,
	}
}

func encodeFrom(step Step, input Format) Step {
	step.Input = input
	return step
}

// clampBitrate caps the encode bitrate at the source bitrate when it is
// known. Encoding above the source rate only inflates file size.
func clampBitrate(targetKbps, sourceKbps int) int {
	if sourceKbps > 0 && targetKbps > sourceKbps {
		return sourceKbps
	}
	return targetKbps
}
