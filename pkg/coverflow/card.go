package coverflow

import (
	"context"
	"image"
	"image/color"
	"time"

	"github.com/go-drift/granite/pkg/animation"
	"github.com/go-drift/granite/pkg/artwork"
	"github.com/go-drift/granite/pkg/timeline"
)

// Card timings.
const (
	CardFadeDuration     = time.Second
	CardRolloverDuration = 800 * time.Millisecond
	CardImageFade        = 500 * time.Millisecond

	// MaxBorder is the border strength of a fully highlighted card.
	MaxBorder = 0.6
)

// Border colors of an idle and a highlighted card.
var (
	BorderIdle      = color.NRGBA{R: 96, G: 96, B: 96, A: 255}
	BorderHighlight = color.NRGBA{R: 255, G: 196, B: 64, A: 255}
)

// Card is one album cover in the browser.
type Card struct {
	Album artwork.Album

	container *Container
	alpha     int
	border    float64
	borderRGB color.NRGBA

	image      image.Image
	imageAlpha float64
	loaded     bool
	disposed   bool
	err        error

	fade     *timeline.Timeline
	rollover *timeline.Timeline
	reveal   *timeline.Timeline
	art      *timeline.Scenario
}

func newCard(c *Container, album artwork.Album) (*Card, error) {
	cd := &Card{Album: album, container: c, borderRGB: BorderIdle}
	sched := c.sched

	cd.fade = sched.NewTimeline(cd)
	cd.fade.SetName("card-fade " + album.Name)
	cd.fade.SetDuration(CardFadeDuration)
	if err := cd.fade.AddInt("alpha", 0, 255, cd.SetAlpha); err != nil {
		return nil, err
	}

	cd.rollover = sched.NewTimeline(cd)
	cd.rollover.SetName("card-rollover " + album.Name)
	cd.rollover.SetDuration(CardRolloverDuration)
	cd.rollover.SetEase(animation.Spline(0.7))
	if err := cd.rollover.AddFloat("border", 0, MaxBorder, func(v float64) { cd.border = v }); err != nil {
		return nil, err
	}
	if err := cd.rollover.AddColorLab("borderColor", BorderIdle, BorderHighlight, func(v color.NRGBA) { cd.borderRGB = v }); err != nil {
		return nil, err
	}
	cd.rollover.AddCallback(timeline.RepaintCallback(c))

	cd.reveal = sched.NewTimeline(cd)
	cd.reveal.SetName("card-reveal " + album.Name)
	cd.reveal.SetDuration(CardImageFade)
	if err := cd.reveal.AddFloat("imageAlpha", 0, 1, func(v float64) { cd.imageAlpha = v }); err != nil {
		return nil, err
	}
	cd.reveal.AddCallback(timeline.RepaintCallback(c))
	return cd, nil
}

// Show fades the card in.
func (cd *Card) Show() error {
	return cd.fade.Play()
}

// Hover starts or stops the pulsing highlight border.
func (cd *Card) Hover(on bool) error {
	if on {
		return cd.rollover.PlayLoop(timeline.RepeatReverse)
	}
	if cd.rollover.DurationFraction() == 0 && !cd.rollover.State().IsActive() {
		return nil
	}
	return cd.rollover.PlayReverse()
}

// LoadArt fetches and decodes the cover on a background job, scales it to
// maxDim on the scheduler goroutine and then fades it in.
func (cd *Card) LoadArt(src artwork.Source, maxDim int) error {
	sched := cd.container.sched
	id := cd.Album.ID

	var decoded image.Image
	fetch := sched.NewJob("fetch "+id, func(ctx context.Context) error {
		rc, err := src.Art(ctx, id)
		if err != nil {
			return err
		}
		defer rc.Close()
		img, _, err := artwork.Decode(rc)
		if err != nil {
			return err
		}
		decoded = img
		return nil
	})

	seq := sched.NewSequence()
	seq.SetName("card-art " + id)
	scale := sched.NewRunnable("scale "+id, func() {
		if err := fetch.Err(); err != nil {
			cd.err = err
			cd.container.logger.Warn("cover art unavailable", "album", cd.Album.Name, "error", err)
			seq.Cancel()
			return
		}
		cd.image = artwork.ScaleToFit(decoded, maxDim)
		cd.loaded = true
	})
	for _, a := range []timeline.Actor{fetch, scale, cd.reveal} {
		if err := seq.AddActor(a); err != nil {
			return err
		}
	}
	cd.art = seq
	return seq.Play()
}

// Dispose stops every animation of the card. Timelines still targeting it
// cancel on their next pulse.
func (cd *Card) Dispose() {
	cd.disposed = true
	if cd.art != nil {
		cd.art.Cancel()
	}
	cd.fade.Cancel()
	cd.rollover.Cancel()
}

// IsDisposed reports whether Dispose was called.
func (cd *Card) IsDisposed() bool { return cd.disposed }

// Alpha returns the card opacity in [0, 255].
func (cd *Card) Alpha() int { return cd.alpha }

// SetAlpha sets the card opacity and requests a repaint.
func (cd *Card) SetAlpha(alpha int) {
	cd.alpha = clampAlpha(alpha)
	cd.container.Repaint()
}

// Border returns the highlight border strength in [0, MaxBorder].
func (cd *Card) Border() float64 { return cd.border }

// BorderColor returns the current border color.
func (cd *Card) BorderColor() color.NRGBA { return cd.borderRGB }

// Image returns the scaled cover, nil until loaded.
func (cd *Card) Image() image.Image { return cd.image }

// ImageAlpha returns the cover opacity in [0, 1].
func (cd *Card) ImageAlpha() float64 { return cd.imageAlpha }

// Loaded reports whether the cover was decoded and scaled.
func (cd *Card) Loaded() bool { return cd.loaded }

// Err returns the cover load failure, if any.
func (cd *Card) Err() error { return cd.err }

// ArtScenario returns the cover load scenario, nil before LoadArt.
func (cd *Card) ArtScenario() *timeline.Scenario { return cd.art }

// Rollover returns the highlight timeline.
func (cd *Card) Rollover() *timeline.Timeline { return cd.rollover }
