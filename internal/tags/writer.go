package tags

import (
	"fmt"

	"github.com/bogem/id3v2/v2"
)

// WriteID3 writes the record onto an MP3 file as ID3v2 frames. Used after a
// re-encode so the converted file carries the source's metadata; encoders
// like lame do not propagate tags from decoded WAV input.
func WriteID3(path string, record Record) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("open id3 tag of %s: %w", path, err)
	}
	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	if record.Title != "" {
		tag.SetTitle(record.Title)
	}
	if record.Album != "" {
		tag.SetAlbum(record.Album)
	}
	if record.Artist != "" {
		tag.SetArtist(record.Artist)
	}
	if record.AlbumArtist != "" {
		tag.AddTextFrame("TPE2", id3v2.EncodingUTF8, record.AlbumArtist)
	}
	if record.Genre != "" {
		tag.SetGenre(record.Genre)
	}
	if record.Year != 0 {
		tag.AddTextFrame("TDRC", id3v2.EncodingUTF8, fmt.Sprintf("%d", record.Year))
	}
	if record.TrackNumber > 0 {
		tag.AddTextFrame("TRCK", id3v2.EncodingUTF8, formatNumberPair(record.TrackNumber, record.TrackTotal))
	}
	if record.DiscNumber > 0 {
		tag.AddTextFrame("TPOS", id3v2.EncodingUTF8, formatNumberPair(record.DiscNumber, record.DiscTotal))
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("save id3 tag of %s: %w", path, err)
	}
	return nil
}

func formatNumberPair(number, total int) string {
	if total > 0 {
		return fmt.Sprintf("%d/%d", number, total)
	}
	return fmt.Sprintf("%d", number)
}
