package id3

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dhowden/tag"
)

// writeV1File writes a fake mp3 with some audio-ish bytes and an ID3v1.1
// trailer carrying the given fields.
func writeV1File(t *testing.T, title, artist, album, year string, track byte) string {
	t.Helper()
	trailer := make([]byte, 128)
	copy(trailer[0:], "TAG")
	copy(trailer[3:33], title)
	copy(trailer[33:63], artist)
	copy(trailer[63:93], album)
	copy(trailer[93:97], year)
	// v1.1: comment[28] == 0 marks byte 29 as the track number.
	trailer[125] = 0
	trailer[126] = track
	trailer[127] = 12 // genre index: Other

	path := filepath.Join(t.TempDir(), "song.mp3")
	body := append(make([]byte, 512), trailer...)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDetect_V1Only(t *testing.T) {
	path := writeV1File(t, "When Doves Cry", "Prince", "The Hits", "1984", 52)
	v, err := Detect(path)
	if err != nil {
		t.Fatal(err)
	}
	if !v.V1 || v.V2 {
		t.Fatalf("Detect = %+v, want V1 only", v)
	}
}

func TestDetect_Untagged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.mp3")
	if err := os.WriteFile(path, make([]byte, 256), 0o644); err != nil {
		t.Fatal(err)
	}
	v, err := Detect(path)
	if err != nil {
		t.Fatal(err)
	}
	if v.V1 || v.V2 {
		t.Fatalf("Detect = %+v, want neither", v)
	}
}

func TestDetect_ShortFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiny.mp3")
	if err := os.WriteFile(path, []byte("xx"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Detect(path); err != nil {
		t.Fatalf("short file must not error: %v", err)
	}
}

func TestConvert_WritesV2AndKeepsV1(t *testing.T) {
	path := writeV1File(t, "When Doves Cry", "Prince", "The Hits", "1984", 52)
	if err := Convert(path); err != nil {
		t.Fatal(err)
	}

	v, err := Detect(path)
	if err != nil {
		t.Fatal(err)
	}
	if !v.V2 {
		t.Fatal("no ID3v2 tag written")
	}
	if !v.V1 {
		t.Fatal("conversion must not strip the v1 trailer")
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	m, err := tag.ReadFrom(f)
	if err != nil {
		t.Fatal(err)
	}
	if m.Title() != "When Doves Cry" {
		t.Errorf("title = %q", m.Title())
	}
	if m.Artist() != "Prince" {
		t.Errorf("artist = %q", m.Artist())
	}
	if m.Album() != "The Hits" {
		t.Errorf("album = %q", m.Album())
	}
	if m.Year() != 1984 {
		t.Errorf("year = %d", m.Year())
	}
	if n, _ := m.Track(); n != 52 {
		t.Errorf("track = %d", n)
	}
}

func TestConvert_MissingV1IsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.mp3")
	if err := os.WriteFile(path, make([]byte, 256), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Convert(path); err == nil {
		t.Fatal("expected error when no v1 tag exists")
	}
}
