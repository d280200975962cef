package artwork

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Decode reads a PNG, JPEG, GIF, BMP or WebP image.
func Decode(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("artwork: decode: %w", err)
	}
	return img, format, nil
}

// ScaleToFit scales img down so that neither side exceeds maxDim, keeping
// its aspect ratio. Images that already fit are returned unchanged.
func ScaleToFit(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return img
	}

	var dw, dh int
	if w >= h {
		dw, dh = maxDim, max(1, h*maxDim/w)
	} else {
		dw, dh = max(1, w*maxDim/h), maxDim
	}
	dst := image.NewNRGBA(image.Rect(0, 0, dw, dh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// WriteSamples writes n generated cover images into dir as PNG files, each
// with a track listing, and returns the image paths. It gives demos something
// to browse without a music library.
func WriteSamples(dir string, n int) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("artwork: %w", err)
	}
	paths := make([]string, 0, n)
	for i := range n {
		path := filepath.Join(dir, fmt.Sprintf("Sample Album %02d.png", i+1))
		if err := writeSample(path, i); err != nil {
			return nil, err
		}
		if err := WriteTracks(dir, filepath.Base(path), sampleTracks(i)); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// sampleTracks returns between 4 and 16 tracks so that some listings fit
// the details view and some scroll.
func sampleTracks(seed int) []Track {
	n := 4 + seed*5%13
	tracks := make([]Track, n)
	for i := range tracks {
		tracks[i] = Track{
			Title:  fmt.Sprintf("Track %d", i+1),
			Length: time.Duration(150+(seed*37+i*53)%240) * time.Second,
		}
	}
	return tracks
}

func writeSample(path string, seed int) error {
	const size = 256
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	base := color.NRGBA{R: uint8(40 + seed*53), G: uint8(90 + seed*31), B: uint8(160 + seed*17), A: 255}
	for y := range size {
		for x := range size {
			shade := uint8((x + y) * 64 / (2 * size))
			img.SetNRGBA(x, y, color.NRGBA{R: base.R + shade, G: base.G + shade, B: base.B - shade, A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("artwork: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("artwork: encode %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}
