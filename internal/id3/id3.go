// Package id3 upgrades legacy ID3v1 tags on mp3 files to ID3v2.
package id3

import (
	"fmt"
	"os"
	"strconv"

	id3v2 "github.com/bogem/id3v2/v2"
	"github.com/dhowden/tag"
)

// Versions reports which ID3 tag versions are present on the file. v1 lives
// in a fixed 128 byte trailer starting with "TAG"; v2 is a header starting
// with "ID3".
type Versions struct {
	V1 bool
	V2 bool
}

// Detect inspects the file's leading and trailing magic bytes.
func Detect(path string) (Versions, error) {
	f, err := os.Open(path)
	if err != nil {
		return Versions{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var v Versions
	head := make([]byte, 3)
	if n, _ := f.Read(head); n == 3 && string(head) == "ID3" {
		v.V2 = true
	}

	fi, err := f.Stat()
	if err != nil {
		return Versions{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if fi.Size() >= 128 {
		trailer := make([]byte, 3)
		if _, err := f.ReadAt(trailer, fi.Size()-128); err == nil && string(trailer) == "TAG" {
			v.V1 = true
		}
	}
	return v, nil
}

// Convert reads the file's ID3v1 fields and writes an equivalent ID3v2 tag.
// The v1 trailer is left in place, mirroring the non-destructive behavior of
// `id3v2 -C`.
func Convert(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	m, err := tag.ReadID3v1Tags(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("read id3v1 %s: %w", path, err)
	}

	out, err := id3v2.Open(path, id3v2.Options{Parse: false})
	if err != nil {
		return fmt.Errorf("open for tagging %s: %w", path, err)
	}
	defer out.Close()
	out.SetDefaultEncoding(id3v2.EncodingUTF8)

	if v := m.Title(); v != "" {
		out.SetTitle(v)
	}
	if v := m.Artist(); v != "" {
		out.SetArtist(v)
	}
	if v := m.Album(); v != "" {
		out.SetAlbum(v)
	}
	if y := m.Year(); y > 0 {
		out.SetYear(strconv.Itoa(y))
	}
	if g := m.Genre(); g != "" {
		out.SetGenre(g)
	}
	if n, _ := m.Track(); n > 0 {
		out.AddTextFrame(out.CommonID("Track number/Position in set"), out.DefaultEncoding(), strconv.Itoa(n))
	}
	if c := comment(m); c != "" {
		out.AddCommentFrame(id3v2.CommentFrame{
			Encoding: out.DefaultEncoding(),
			Language: "eng",
			Text:     c,
		})
	}
	if err := out.Save(); err != nil {
		return fmt.Errorf("write id3v2 %s: %w", path, err)
	}
	return nil
}

// comment extracts the v1 comment field from the raw metadata, which the
// generic accessor interface does not expose.
func comment(m tag.Metadata) string {
	if raw, ok := m.Raw()["comment"]; ok {
		if s, ok := raw.(string); ok {
			return s
		}
	}
	return ""
}
