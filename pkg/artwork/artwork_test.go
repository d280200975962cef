package artwork

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/image/bmp"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newCatalog(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	release := time.Date(1971, 11, 8, 0, 0, 0, 0, time.UTC)
	for _, name := range []string{"Kind of Blue.png", "Blue Train.png", "Giant Steps.png"} {
		path := filepath.Join(dir, name)
		writePNG(t, path, 4, 4)
		if err := os.Chtimes(path, release, release); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("liner notes"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "Blue.png"), 0o755); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestDirSource_Search(t *testing.T) {
	src := NewDirSource(newCatalog(t))
	ctx := context.Background()

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"Blue Train", "Giant Steps", "Kind of Blue"}},
		{"blue", []string{"Blue Train", "Kind of Blue"}},
		{"  STEPS ", []string{"Giant Steps"}},
		{"coltrane", nil},
	}
	for _, tt := range tests {
		albums, err := src.Search(ctx, tt.query)
		if err != nil {
			t.Fatalf("Search(%q) = %v", tt.query, err)
		}
		var names []string
		for _, a := range albums {
			names = append(names, a.Name)
		}
		if diff := cmp.Diff(tt.want, names); diff != "" {
			t.Errorf("Search(%q) mismatch (-want +got):\n%s", tt.query, diff)
		}
	}
}

func TestDirSource_AlbumFields(t *testing.T) {
	src := NewDirSource(newCatalog(t))
	albums, err := src.Search(context.Background(), "giant")
	if err != nil || len(albums) != 1 {
		t.Fatalf("Search() = %v, %v", albums, err)
	}
	want := Album{
		ID:          "Giant Steps.png",
		Name:        "Giant Steps",
		ReleaseDate: time.Date(1971, 11, 8, 0, 0, 0, 0, time.UTC),
	}
	got := albums[0]
	if got.ID != want.ID || got.Name != want.Name || !got.ReleaseDate.Equal(want.ReleaseDate) {
		t.Errorf("album = %+v, want %+v", got, want)
	}
}

func TestDirSource_SearchCancelled(t *testing.T) {
	src := NewDirSource(newCatalog(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := src.Search(ctx, ""); !errors.Is(err, context.Canceled) {
		t.Errorf("Search() = %v, want context.Canceled", err)
	}
}

func TestDirSource_MissingDir(t *testing.T) {
	src := NewDirSource(filepath.Join(t.TempDir(), "missing"))
	if _, err := src.Search(context.Background(), ""); err == nil {
		t.Error("Search() on a missing directory should fail")
	}
}

func TestDirSource_Art(t *testing.T) {
	src := NewDirSource(newCatalog(t))
	ctx := context.Background()

	rc, err := src.Art(ctx, "Blue Train.png")
	if err != nil {
		t.Fatalf("Art() = %v", err)
	}
	img, format, err := Decode(rc)
	rc.Close()
	if err != nil {
		t.Fatalf("Decode() = %v", err)
	}
	if format != "png" || img.Bounds().Dx() != 4 {
		t.Errorf("decoded %s image of %v", format, img.Bounds())
	}

	for _, id := range []string{"", "Nope.png", "../Blue Train.png", "notes.txt"} {
		if _, err := src.Art(ctx, id); !errors.Is(err, ErrNotFound) {
			t.Errorf("Art(%q) = %v, want ErrNotFound", id, err)
		}
	}
}

func TestDirSource_Tracks(t *testing.T) {
	dir := newCatalog(t)
	listing := "- title: So What\n  length: 9m22s\n- title: Blue in Green\n"
	if err := os.WriteFile(filepath.Join(dir, "Kind of Blue"+TracksSuffix), []byte(listing), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "Giant Steps"+TracksSuffix), []byte("- title: Naima\n  length: soon\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	src := NewDirSource(dir)
	ctx := context.Background()

	got, err := src.Tracks(ctx, "Kind of Blue.png")
	if err != nil {
		t.Fatalf("Tracks() = %v", err)
	}
	want := []Track{
		{Title: "So What", Length: 9*time.Minute + 22*time.Second},
		{Title: "Blue in Green"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Tracks() (-want +got):\n%s", diff)
	}

	if got, err := src.Tracks(ctx, "Blue Train.png"); err != nil || got != nil {
		t.Errorf("Tracks() without a listing = %v, %v", got, err)
	}
	if _, err := src.Tracks(ctx, "Giant Steps.png"); err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("Tracks() with a bad length = %v", err)
	}
	for _, id := range []string{"", "Nope.png", "../Kind of Blue.png", "notes.txt"} {
		if _, err := src.Tracks(ctx, id); !errors.Is(err, ErrNotFound) {
			t.Errorf("Tracks(%q) = %v, want ErrNotFound", id, err)
		}
	}
}

func TestDecode_BMP(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	got, format, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode() = %v", err)
	}
	if format != "bmp" || got.Bounds() != img.Bounds() {
		t.Errorf("decoded %s image of %v", format, got.Bounds())
	}
}

func TestDecode_Garbage(t *testing.T) {
	if _, _, err := Decode(bytes.NewReader([]byte("not an image"))); err == nil {
		t.Error("Decode() of garbage should fail")
	}
}

func TestScaleToFit(t *testing.T) {
	tests := []struct {
		name   string
		w, h   int
		maxDim int
		want   image.Point
	}{
		{"landscape", 200, 100, 50, image.Pt(50, 25)},
		{"portrait", 100, 400, 100, image.Pt(25, 100)},
		{"already fits", 40, 30, 50, image.Pt(40, 30)},
		{"no limit", 40, 30, 0, image.Pt(40, 30)},
		{"thin strip", 1000, 1, 10, image.Pt(10, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := image.NewNRGBA(image.Rect(0, 0, tt.w, tt.h))
			got := ScaleToFit(src, tt.maxDim).Bounds().Size()
			if got != tt.want {
				t.Errorf("size = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWriteSamples(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "art")
	paths, err := WriteSamples(dir, 3)
	if err != nil {
		t.Fatalf("WriteSamples() = %v", err)
	}
	if len(paths) != 3 {
		t.Fatalf("wrote %d files, want 3", len(paths))
	}
	albums, err := NewDirSource(dir).Search(context.Background(), "sample")
	if err != nil || len(albums) != 3 {
		t.Fatalf("Search() = %v, %v", albums, err)
	}
	for _, album := range albums {
		tracks, err := NewDirSource(dir).Tracks(context.Background(), album.ID)
		if err != nil || len(tracks) < 4 {
			t.Errorf("Tracks(%q) = %d tracks, %v", album.ID, len(tracks), err)
		}
	}
	rc, err := NewDirSource(dir).Art(context.Background(), albums[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	img, _, err := Decode(bytes.NewReader(data))
	if err != nil || img.Bounds().Dx() != 256 {
		t.Errorf("sample decode: %v, %v", img, err)
	}
}
