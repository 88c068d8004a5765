package audio

import (
	"fmt"
	"os"
	"strconv"

	"github.com/dhowden/tag"
)

// Tags is the subset of media metadata carried over to the mp3 encoder.
type Tags struct {
	Artist string
	Title  string
	Album  string
	Genre  string
	Track  string
	Year   string
}

// ReadTags reads the metadata of an audio file (vorbis comments for flac).
func ReadTags(path string) (Tags, error) {
	f, err := os.Open(path)
	if err != nil {
		return Tags{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return Tags{}, fmt.Errorf("read tags %s: %w", path, err)
	}

	t := Tags{
		Artist: m.Artist(),
		Title:  m.Title(),
		Album:  m.Album(),
		Genre:  m.Genre(),
	}
	if n, _ := m.Track(); n > 0 {
		t.Track = strconv.Itoa(n)
	}
	if y := m.Year(); y > 0 {
		t.Year = strconv.Itoa(y)
	}
	return t, nil
}
