// Package library builds destination paths from tag metadata and moves
// finished files into place.
package library

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jaa/music-convert/internal/plan"
)

// maxComponentBytes keeps every path component under common filesystem
// name limits with headroom for collision suffixes.
const maxComponentBytes = 200

// PathEscapesLibraryRootError reports a computed destination that would
// land outside the library root.
type PathEscapesLibraryRootError struct {
	Root string
	Path string
}

func (e *PathEscapesLibraryRootError) Error() string {
	return fmt.Sprintf("destination %s escapes library root %s", e.Path, e.Root)
}

// PathBuilder composes library destinations of the form
// root/Artist/Album/NN Title.ext, with a disc prefix on multi-disc albums.
type PathBuilder struct {
	Root string
}

func NewPathBuilder(root string) *PathBuilder {
	return &PathBuilder{Root: root}
}

// Destination is the computed target location for one track.
type Destination struct {
	Dir      string
	Filename string
}

func (d Destination) Path() string {
	return filepath.Join(d.Dir, d.Filename)
}

// Build computes the destination for a track. output is the format the
// file will have after conversion (the source format for pass-through).
// multiDisc controls the disc prefix; the caller decides it per album so
// every track of one album agrees.
func (b *PathBuilder) Build(track plan.Track, output plan.Format, multiDisc bool) (Destination, error) {
	artist := sanitizeComponent(track.Tags.PreferredArtist())
	album := sanitizeComponent(track.Tags.AlbumOrUnknown())
	filename := sanitizeComponent(trackFilename(track, multiDisc)) + output.Extension()

	dir := filepath.Join(b.Root, artist, album)
	full := filepath.Join(dir, filename)

	rel, err := filepath.Rel(b.Root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return Destination{}, &PathEscapesLibraryRootError{Root: b.Root, Path: full}
	}

	return Destination{Dir: dir, Filename: filename}, nil
}

func trackFilename(track plan.Track, multiDisc bool) string {
	title := track.Tags.TitleOrStem(track.Path)
	if track.Tags.TrackNumber <= 0 {
		return title
	}
	if multiDisc && track.Tags.DiscNumber > 0 {
		return fmt.Sprintf("%d-%02d %s", track.Tags.DiscNumber, track.Tags.TrackNumber, title)
	}
	return fmt.Sprintf("%02d %s", track.Tags.TrackNumber, title)
}

// sanitizeComponent makes a tag value safe as a single path component.
// Separators and characters rejected by common filesystems become
// hyphens, control characters vanish, whitespace collapses, and the
// result is truncated on a rune boundary.
func sanitizeComponent(raw string) string {
	var sb strings.Builder
	sb.Grow(len(raw))
	for _, r := range raw {
		switch {
		case r == '/' || r == '\\' || r == ':' || r == '|':
			sb.WriteByte('-')
		case r == '<' || r == '>' || r == '"' || r == '?' || r == '*':
			sb.WriteByte('_')
		case unicode.IsControl(r):
			// dropped
		default:
			sb.WriteRune(r)
		}
	}

	cleaned := strings.Join(strings.Fields(sb.String()), " ")
	cleaned = strings.Trim(cleaned, ". ")

	for len(cleaned) > maxComponentBytes {
		_, size := utf8.DecodeLastRuneInString(cleaned)
		cleaned = cleaned[:len(cleaned)-size]
	}
	cleaned = strings.TrimRight(cleaned, ". ")

	if cleaned == "" {
		return "_"
	}
	return cleaned
}
