// Package tags reads embedded metadata from music files and copies it
// onto converted outputs.
package tags

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dhowden/tag"
)

const (
	UnknownArtist = "Unknown Artist"
	UnknownAlbum  = "Unknown Album"
)

// Record holds the parsed metadata of one track. Absent string fields are
// empty; absent numbers are zero. Consumers apply sentinels where needed.
type Record struct {
	Artist      string
	AlbumArtist string
	Album       string
	Title       string
	Genre       string
	Year        int
	TrackNumber int
	TrackTotal  int
	DiscNumber  int
	DiscTotal   int
}

// PreferredArtist returns the album artist when present, else the track
// artist, else the UnknownArtist sentinel.
func (r Record) PreferredArtist() string {
	if artist := strings.TrimSpace(r.AlbumArtist); artist != "" {
		return artist
	}
	if artist := strings.TrimSpace(r.Artist); artist != "" {
		return artist
	}
	return UnknownArtist
}

// AlbumOrUnknown returns the album name or the UnknownAlbum sentinel.
func (r Record) AlbumOrUnknown() string {
	if album := strings.TrimSpace(r.Album); album != "" {
		return album
	}
	return UnknownAlbum
}

// TitleOrStem returns the track title, or the stem of path when the title
// tag is absent.
func (r Record) TitleOrStem(path string) string {
	if title := strings.TrimSpace(r.Title); title != "" {
		return title
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// UnreadableMetadataError reports a container that could not be parsed.
// A file with no tags at all is not an error; every field simply stays
// at its zero value.
type UnreadableMetadataError struct {
	Path string
	Err  error
}

func (e *UnreadableMetadataError) Error() string {
	return fmt.Sprintf("unreadable metadata in %s: %v", e.Path, e.Err)
}

func (e *UnreadableMetadataError) Unwrap() error {
	return e.Err
}

// Read parses the metadata of one music file. Readable content without
// any recognized tag yields an empty Record; files too short to hold
// even an ID3v1 frame are reported as unreadable.
func Read(path string) (Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return Record{}, &UnreadableMetadataError{Path: path, Err: err}
	}
	defer file.Close()

	meta, err := tag.ReadFrom(file)
	if err != nil {
		if errors.Is(err, tag.ErrNoTagsFound) {
			return Record{}, nil
		}
		return Record{}, &UnreadableMetadataError{Path: path, Err: err}
	}

	record := Record{
		Artist:      strings.TrimSpace(meta.Artist()),
		AlbumArtist: strings.TrimSpace(meta.AlbumArtist()),
		Album:       strings.TrimSpace(meta.Album()),
		Title:       strings.TrimSpace(meta.Title()),
		Genre:       strings.TrimSpace(meta.Genre()),
		Year:        meta.Year(),
	}
	record.TrackNumber, record.TrackTotal = meta.Track()
	record.DiscNumber, record.DiscTotal = meta.Disc()

	// Some Vorbis writers store "3/12" pairs in a single comment field,
	// which the container parser surfaces only through Raw().
	if record.TrackNumber == 0 {
		record.TrackNumber, record.TrackTotal = rawNumberPair(meta, "tracknumber")
	}
	if record.DiscNumber == 0 {
		record.DiscNumber, record.DiscTotal = rawNumberPair(meta, "discnumber")
	}

	if record.TrackNumber < 0 {
		record.TrackNumber = 0
	}
	if record.DiscNumber < 0 {
		record.DiscNumber = 0
	}

	return record, nil
}

func rawNumberPair(meta tag.Metadata, key string) (int, int) {
	value, ok := meta.Raw()[key]
	if !ok {
		return 0, 0
	}
	text, ok := value.(string)
	if !ok {
		return 0, 0
	}
	return parseNumberPair(text)
}

// parseNumberPair splits "3/12"-style tag values into number and total.
// Vorbis comments sometimes store the pair in one field.
func parseNumberPair(raw string) (int, int) {
	number, total := 0, 0
	left, right, found := strings.Cut(strings.TrimSpace(raw), "/")
	if v, err := strconv.Atoi(strings.TrimSpace(left)); err == nil && v > 0 {
		number = v
	}
	if found {
		if v, err := strconv.Atoi(strings.TrimSpace(right)); err == nil && v > 0 {
			total = v
		}
	}
	return number, total
}
