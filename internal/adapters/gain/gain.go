// Package gain wraps the per-format ReplayGain analyzers. Each runs over
// a whole album so tracks share one album gain reference.
package gain

import (
	"strings"
	"time"

	"github.com/jaa/music-convert/internal/encode"
	"github.com/jaa/music-convert/internal/plan"
)

// ForFormat returns the analyzer for a source format, or nil when the
// format has no album-level analyzer.
func ForFormat(f plan.Format) encode.Analyzer {
	switch f {
	case plan.Vorbis:
		return &VorbisGain{}
	case plan.FLAC:
		return &MetaflacGain{}
	case plan.MP3, plan.AAC:
		return &AACGain{}
	default:
		return nil
	}
}

// VorbisGain writes ReplayGain comments into Ogg Vorbis files.
type VorbisGain struct{}

func (g *VorbisGain) Kind() string   { return "vorbisgain" }
func (g *VorbisGain) Binary() string { return "vorbisgain" }

func (g *VorbisGain) BuildAnalyzeSpec(paths []string, timeout time.Duration) (encode.ExecSpec, error) {
	args := append([]string{"-q", "-a"}, paths...)
	return spec(g.Binary(), args, timeout), nil
}

// MetaflacGain writes ReplayGain tags into FLAC files.
type MetaflacGain struct{}

func (g *MetaflacGain) Kind() string   { return "metaflac" }
func (g *MetaflacGain) Binary() string { return "metaflac" }

func (g *MetaflacGain) BuildAnalyzeSpec(paths []string, timeout time.Duration) (encode.ExecSpec, error) {
	args := append([]string{"--add-replay-gain"}, paths...)
	return spec(g.Binary(), args, timeout), nil
}

// AACGain adjusts MP3 and AAC frame gain directly. The adjustment
// rewrites audio data, so it only ever runs on staged copies.
type AACGain struct{}

func (g *AACGain) Kind() string   { return "aacgain" }
func (g *AACGain) Binary() string { return "aacgain" }

func (g *AACGain) BuildAnalyzeSpec(paths []string, timeout time.Duration) (encode.ExecSpec, error) {
	args := append([]string{"-q", "-r", "-a"}, paths...)
	return spec(g.Binary(), args, timeout), nil
}

func spec(bin string, args []string, timeout time.Duration) encode.ExecSpec {
	return encode.ExecSpec{
		Bin:            bin,
		Args:           args,
		Timeout:        timeout,
		DisplayCommand: strings.Join(append([]string{bin}, args...), " "),
	}
}
