// Package artwork finds albums and decodes their cover art.
package artwork

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotFound is returned when an album id is unknown to a Source.
var ErrNotFound = errors.New("artwork: album not found")

// Album describes one album of a catalog.
type Album struct {
	ID          string
	Name        string
	ReleaseDate time.Time
}

// Track is one entry of an album's track listing.
type Track struct {
	Title  string
	Length time.Duration
}

// Source is a catalog of albums with cover art. Implementations are called
// from background jobs and must be safe for concurrent use.
type Source interface {
	// Search returns albums whose name matches query. An empty query
	// matches everything.
	Search(ctx context.Context, query string) ([]Album, error)
	// Art opens the encoded cover image of the album. The caller closes it.
	Art(ctx context.Context, id string) (io.ReadCloser, error)
	// Tracks returns the track listing of the album. An album without a
	// listing has no tracks and no error.
	Tracks(ctx context.Context, id string) ([]Track, error)
}
