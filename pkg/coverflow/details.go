package coverflow

import (
	"context"
	"image"
	"time"

	"github.com/go-drift/granite/pkg/artwork"
	"github.com/go-drift/granite/pkg/timeline"
)

// Details view timings and layout.
const (
	DetailsWindowFade = 500 * time.Millisecond
	// DetailsCollapse is the collapse duration from a fully separated view.
	DetailsCollapse  = 500 * time.Millisecond
	DetailsCrossfade = 400 * time.Millisecond
	DetailsSeparate  = 500 * time.Millisecond

	DefaultDetailsArtSize = 256
	TrackRowHeight        = 20
	// TrackScrollPerPixel is how long the listing takes to scroll one pixel.
	TrackScrollPerPixel = 20 * time.Millisecond
	TrackScrollPause    = time.Second
)

// Details shows the cover and track listing of one album. Switching albums
// runs a transition in phases: the listing collapses behind the cover while
// the new cover and listing load, then both are swapped in, the covers
// crossfade and finally the listing slides out again. A transition still
// running when another album is shown is cancelled.
type Details struct {
	Source  artwork.Source
	ArtSize int

	container *Container
	alpha     int
	visible   bool
	album     artwork.Album

	image         image.Image
	oldImage      image.Image
	imageAlpha    int
	oldImageAlpha int
	overlay       float64
	err           error

	tracks      []artwork.Track
	viewportTop int

	window   *timeline.Timeline
	hide     *timeline.Timeline
	scroller *timeline.Timeline
	current  *timeline.Scenario
}

// Attach keeps the container. The view stays hidden until Show.
func (d *Details) Attach(c *Container) error {
	if d.ArtSize <= 0 {
		d.ArtSize = DefaultDetailsArtSize
	}
	d.container = c
	return nil
}

// Show switches the view to album, fading the view in first if it is
// hidden. It returns the transition scenario.
func (d *Details) Show(album artwork.Album) (*timeline.Scenario, error) {
	if d.container == nil || d.Source == nil {
		return nil, ErrNotAttached
	}
	if d.container.IsDisposed() {
		return nil, ErrDisposed
	}
	if !d.visible || d.hide != nil {
		if err := d.fadeWindowIn(); err != nil {
			return nil, err
		}
	}
	if d.current != nil {
		d.current.Cancel()
	}
	d.album = album
	d.err = nil

	sc, err := d.transition(album)
	if err != nil {
		return nil, err
	}
	d.current = sc
	return sc, sc.Play()
}

func (d *Details) fadeWindowIn() error {
	if tl := d.hide; tl != nil {
		d.hide = nil
		tl.Cancel()
	}
	d.window = d.container.sched.NewTimeline(d)
	d.window.SetName("details-show")
	d.window.SetDuration(DetailsWindowFade)
	if err := d.window.AddInt("alpha", d.alpha, 255, d.SetAlpha); err != nil {
		return err
	}
	d.visible = true
	return d.window.Play()
}

func (d *Details) transition(album artwork.Album) (*timeline.Scenario, error) {
	sched := d.container.sched
	logger := d.container.logger
	id := album.ID

	var collapse timeline.Actor
	if d.overlay > 0 {
		tl := sched.NewTimeline(d)
		tl.SetName("details-collapse")
		tl.SetDuration(time.Duration(float64(DetailsCollapse) * d.overlay))
		if err := tl.AddFloat("overlay", d.overlay, 0, d.setOverlay); err != nil {
			return nil, err
		}
		collapse = tl
	} else {
		collapse = sched.NewRunnable("details-collapse", func() { d.setOverlay(0) })
	}

	var scaled image.Image
	art := sched.NewJob("details-art "+id, func(ctx context.Context) error {
		rc, err := d.Source.Art(ctx, id)
		if err != nil {
			return err
		}
		defer rc.Close()
		img, _, err := artwork.Decode(rc)
		if err != nil {
			return err
		}
		scaled = artwork.ScaleToFit(img, d.ArtSize)
		return nil
	})
	var tracks []artwork.Track
	listing := sched.NewJob("details-tracks "+id, func(ctx context.Context) (err error) {
		tracks, err = d.Source.Tracks(ctx, id)
		return err
	})

	replaceArt := sched.NewRunnable("details-replace-art", func() {
		next := scaled
		if err := art.Err(); err != nil {
			d.err = err
			next = nil
			logger.Warn("details art unavailable", "album", album.Name, "error", err)
		}
		d.oldImage, d.image = d.image, next
		d.oldImageAlpha, d.imageAlpha = 255, 0
	})
	replaceTracks := sched.NewRunnable("details-replace-tracks", func() {
		next := tracks
		if err := listing.Err(); err != nil {
			d.err = err
			next = nil
			logger.Warn("track listing unavailable", "album", album.Name, "error", err)
		}
		if err := d.setTracks(next); err != nil {
			d.err = err
		}
	})

	crossfade := sched.NewTimeline(d)
	crossfade.SetName("details-crossfade")
	crossfade.SetDuration(DetailsCrossfade)
	if err := crossfade.AddInt("oldImageAlpha", 255, 0, func(v int) { d.oldImageAlpha = v }); err != nil {
		return nil, err
	}
	if err := crossfade.AddInt("imageAlpha", 0, 255, func(v int) { d.imageAlpha = v }); err != nil {
		return nil, err
	}
	crossfade.AddCallback(timeline.RepaintCallback(d.container))

	separate := sched.NewTimeline(d)
	separate.SetName("details-separate")
	separate.SetDuration(DetailsSeparate)
	if err := separate.AddFloat("overlay", 0, 1, d.setOverlay); err != nil {
		return nil, err
	}

	sc := sched.NewRendezvousSequence()
	sc.SetName("details " + id)
	phases := [][]timeline.Actor{
		{collapse, art, listing},
		{replaceArt, replaceTracks},
		{crossfade},
		{separate},
	}
	for i, phase := range phases {
		if i > 0 {
			if err := sc.Rendezvous(); err != nil {
				return nil, err
			}
		}
		for _, a := range phase {
			if err := sc.AddActor(a); err != nil {
				return nil, err
			}
		}
	}
	return sc, nil
}

// setTracks replaces the listing and rebuilds the scroller. A listing
// taller than the cover scrolls back and forth while hovered.
func (d *Details) setTracks(tracks []artwork.Track) error {
	if d.scroller != nil {
		d.scroller.Cancel()
		d.scroller = nil
	}
	d.tracks = tracks
	d.viewportTop = 0
	d.container.Repaint()

	overflow := TrackRowHeight*(len(tracks)+1) - d.ArtSize
	if overflow <= 0 {
		return nil
	}
	tl := d.container.sched.NewTimeline(d)
	tl.SetName("details-track-scroll")
	tl.SetDuration(time.Duration(overflow) * TrackScrollPerPixel)
	tl.SetCycleDelay(TrackScrollPause)
	if err := tl.AddInt("viewportTop", 0, overflow, func(v int) { d.viewportTop = v }); err != nil {
		return err
	}
	tl.AddCallback(timeline.RepaintCallback(d.container))
	d.scroller = tl
	return nil
}

// ScrollTracks starts or resumes scrolling a long listing when on, and
// pauses it otherwise. Listings that fit are never scrolled.
func (d *Details) ScrollTracks(on bool) error {
	if d.scroller == nil {
		return nil
	}
	if !on {
		d.scroller.Suspend()
		return nil
	}
	switch d.scroller.State() {
	case timeline.StateSuspended:
		d.scroller.Resume()
		return nil
	case timeline.StateIdle, timeline.StateDone, timeline.StateCancelled:
		return d.scroller.PlayLoop(timeline.RepeatReverse)
	}
	return nil
}

// Hide cancels the transition and fades the view out.
func (d *Details) Hide() error {
	if !d.visible || d.hide != nil {
		return nil
	}
	d.stopContent()
	if d.window != nil {
		d.window.Cancel()
	}
	var tl *timeline.Timeline
	tl, err := FadeOutAndDispose(d.container.sched, d, DetailsWindowFade, func() {
		if d.hide == tl {
			d.hide = nil
			d.visible = false
		}
	})
	if err != nil {
		return err
	}
	d.hide = tl
	return nil
}

func (d *Details) stopContent() {
	if d.current != nil {
		d.current.Cancel()
	}
	if d.scroller != nil {
		d.scroller.Cancel()
	}
}

func (d *Details) stop() {
	d.stopContent()
	for _, tl := range []*timeline.Timeline{d.window, d.hide} {
		if tl != nil {
			tl.Cancel()
		}
	}
}

func (d *Details) setOverlay(v float64) {
	d.overlay = v
	d.container.Repaint()
}

// IsDisposed reports whether the container is gone.
func (d *Details) IsDisposed() bool {
	return d.container != nil && d.container.IsDisposed()
}

// Alpha returns the view opacity in [0, 255].
func (d *Details) Alpha() int { return d.alpha }

// SetAlpha sets the view opacity and requests a repaint.
func (d *Details) SetAlpha(alpha int) {
	d.alpha = clampAlpha(alpha)
	d.container.Repaint()
}

// Visible reports whether the view is shown or fading out.
func (d *Details) Visible() bool { return d.visible }

// Album returns the album last passed to Show.
func (d *Details) Album() artwork.Album { return d.album }

// Image returns the current cover, nil if it could not be loaded.
func (d *Details) Image() image.Image { return d.image }

// OldImage returns the cover being crossfaded out.
func (d *Details) OldImage() image.Image { return d.oldImage }

// ImageAlpha returns the opacity of the current cover.
func (d *Details) ImageAlpha() int { return d.imageAlpha }

// OldImageAlpha returns the opacity of the previous cover.
func (d *Details) OldImageAlpha() int { return d.oldImageAlpha }

// Overlay returns how far the listing is slid out from behind the cover,
// from 0 (collapsed) to 1.
func (d *Details) Overlay() float64 { return d.overlay }

// Tracks returns the shown track listing.
func (d *Details) Tracks() []artwork.Track { return d.tracks }

// ViewportTop returns the scroll offset of the listing in pixels.
func (d *Details) ViewportTop() int { return d.viewportTop }

// TrackScroller returns the listing scroll timeline, nil if the listing fits.
func (d *Details) TrackScroller() *timeline.Timeline { return d.scroller }

// Scenario returns the last transition.
func (d *Details) Scenario() *timeline.Scenario { return d.current }

// Err returns the cover or listing failure of the last transition.
func (d *Details) Err() error { return d.err }
