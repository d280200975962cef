package artwork

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var imageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp"}

// DirSource serves albums from the image files of one directory. The file
// stem is the album name and the modification time its release date. The
// track listing of an album lives next to its image in <stem>.tracks.yaml:
//
//	- title: So What
//	  length: 9m22s
//	- title: Freddie Freeloader
//	  length: 9m46s
type DirSource struct {
	Dir string
}

// NewDirSource returns a source reading dir.
func NewDirSource(dir string) *DirSource {
	return &DirSource{Dir: dir}
}

// Search lists the image files whose stem contains query, ignoring case.
// Albums are sorted by name.
func (s *DirSource) Search(ctx context.Context, query string) ([]Album, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("artwork: read %s: %w", s.Dir, err)
	}

	query = strings.ToLower(strings.TrimSpace(query))
	var albums []Album
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || !isImage(entry.Name()) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		if query != "" && !strings.Contains(strings.ToLower(name), query) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("artwork: stat %s: %w", entry.Name(), err)
		}
		albums = append(albums, Album{
			ID:          entry.Name(),
			Name:        name,
			ReleaseDate: info.ModTime(),
		})
	}

	slices.SortFunc(albums, func(a, b Album) int {
		return strings.Compare(a.Name, b.Name)
	})
	return albums, nil
}

// Art opens the image file of the album.
func (s *DirSource) Art(ctx context.Context, id string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if id == "" || id != filepath.Base(id) || !isImage(id) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	f, err := os.Open(filepath.Join(s.Dir, id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
		}
		return nil, fmt.Errorf("artwork: open %s: %w", id, err)
	}
	return f, nil
}

// TracksSuffix is appended to an album's file stem to name its track listing.
const TracksSuffix = ".tracks.yaml"

type trackEntry struct {
	Title  string `yaml:"title"`
	Length string `yaml:"length"`
}

// Tracks reads the album's track listing file.
func (s *DirSource) Tracks(ctx context.Context, id string) ([]Track, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if id == "" || id != filepath.Base(id) || !isImage(id) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	if _, err := os.Stat(filepath.Join(s.Dir, id)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
		}
		return nil, fmt.Errorf("artwork: stat %s: %w", id, err)
	}

	name := strings.TrimSuffix(id, filepath.Ext(id)) + TracksSuffix
	data, err := os.ReadFile(filepath.Join(s.Dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("artwork: read %s: %w", name, err)
	}
	var entries []trackEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("artwork: parse %s: %w", name, err)
	}
	tracks := make([]Track, 0, len(entries))
	for i, e := range entries {
		t := Track{Title: e.Title}
		if e.Length != "" {
			t.Length, err = time.ParseDuration(e.Length)
			if err != nil {
				return nil, fmt.Errorf("artwork: %s track %d: %w", name, i+1, err)
			}
		}
		tracks = append(tracks, t)
	}
	return tracks, nil
}

// WriteTracks writes the track listing of the album with the given image
// file name into dir.
func WriteTracks(dir, id string, tracks []Track) error {
	entries := make([]trackEntry, len(tracks))
	for i, t := range tracks {
		entries[i] = trackEntry{Title: t.Title}
		if t.Length > 0 {
			entries[i].Length = t.Length.String()
		}
	}
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("artwork: %w", err)
	}
	name := strings.TrimSuffix(id, filepath.Ext(id)) + TracksSuffix
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return fmt.Errorf("artwork: %w", err)
	}
	return nil
}

func isImage(name string) bool {
	return slices.Contains(imageExtensions, strings.ToLower(filepath.Ext(name)))
}
