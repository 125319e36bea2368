package batch

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/jaa/music-convert/internal/plan"
)

// Album is one directory of supported audio files. Directories group
// tracks so disc detection and loudness analysis see the whole album.
type Album struct {
	Dir    string
	Tracks []plan.Track
}

// DiscoverAlbums walks the source tree and groups supported audio files
// by directory. Non-audio files and unsupported formats are ignored;
// directories without any supported audio yield no album.
func DiscoverAlbums(root string) ([]Album, error) {
	grouped := make(map[string][]plan.Track)

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}

		format := plan.DetectFormat(path)
		if !plan.IsSupportedSource(format) {
			return nil
		}

		info, err := entry.Info()
		if err != nil {
			return err
		}

		dir := filepath.Dir(path)
		grouped[dir] = append(grouped[dir], plan.Track{
			Path:    path,
			Format:  format,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}

	dirs := make([]string, 0, len(grouped))
	for dir := range grouped {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	albums := make([]Album, 0, len(dirs))
	for _, dir := range dirs {
		tracks := grouped[dir]
		sort.Slice(tracks, func(i, j int) bool { return tracks[i].Path < tracks[j].Path })
		albums = append(albums, Album{Dir: dir, Tracks: tracks})
	}
	return albums, nil
}
