package coverflow

import (
	"context"
	"time"

	"github.com/go-drift/granite/pkg/artwork"
	"github.com/go-drift/granite/pkg/timeline"
)

// Options configures a Browser. Zero values select the defaults.
type Options struct {
	FadeIn         time.Duration
	LoadingFade    time.Duration
	LoadingLoop    time.Duration
	ScrollDuration time.Duration
	CardSpacing    float64
	CoverSize      int
	DetailsArtSize int
}

// Browser searches an artwork source and shows the results as cards.
type Browser struct {
	container *Container
	source    artwork.Source

	fade     *FadeIn
	loading  *LoadingIndicator
	scroller *Scroller
	details  *Details

	load   *timeline.Scenario
	albums []artwork.Album
	err    error
}

// NewBrowser attaches the fade-in, loading indicator, scroller and details
// view to c.
func NewBrowser(c *Container, source artwork.Source, opts Options) (*Browser, error) {
	b := &Browser{
		container: c,
		source:    source,
		fade:      &FadeIn{Duration: opts.FadeIn},
		loading:   &LoadingIndicator{FadeDuration: opts.LoadingFade, LoopDuration: opts.LoadingLoop},
		scroller: &Scroller{
			Duration:  opts.ScrollDuration,
			Spacing:   opts.CardSpacing,
			CoverSize: opts.CoverSize,
			Source:    source,
		},
		details: &Details{Source: source, ArtSize: opts.DetailsArtSize},
	}
	for _, behavior := range []Behavior{b.fade, b.loading, b.scroller, b.details} {
		if err := c.Attach(behavior); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Load searches for query and replaces the cards with the results. The
// loading indicator shows while the search runs. A load still in flight is
// cancelled.
func (b *Browser) Load(query string) (*timeline.Scenario, error) {
	if b.container.IsDisposed() {
		return nil, ErrDisposed
	}
	if b.load != nil {
		b.load.Cancel()
	}
	sched := b.container.sched
	logger := b.container.logger

	var found []artwork.Album
	search := sched.NewJob("search", func(ctx context.Context) error {
		albums, err := b.source.Search(ctx, query)
		if err != nil {
			return err
		}
		found = albums
		return nil
	})

	seq := sched.NewSequence()
	seq.SetName("load " + query)
	show := sched.NewRunnable("show-loading", func() {
		b.err = b.loading.SetLoading(true)
	})
	apply := sched.NewRunnable("apply-results", func() {
		defer b.loading.SetLoading(false)
		if err := search.Err(); err != nil {
			b.err = err
			logger.Error("album search failed", "query", query, "error", err)
			return
		}
		b.albums = found
		if err := b.scroller.SetAlbums(found); err != nil {
			b.err = err
			logger.Error("showing albums failed", "error", err)
			return
		}
		logger.Info("albums loaded", "query", query, "count", len(found))
	})
	for _, a := range []timeline.Actor{show, search, apply} {
		if err := seq.AddActor(a); err != nil {
			return nil, err
		}
	}
	seq.OnStateChange(func(change timeline.ScenarioStateChange) {
		if change.New == timeline.ScenarioCancelled {
			search.Cancel()
			b.loading.SetLoading(false)
		}
	})

	b.load = seq
	b.err = nil
	return seq, seq.Play()
}

// Dispose cancels the running load and every animation, then disposes the
// cards and the container.
func (b *Browser) Dispose() {
	if b.load != nil {
		b.load.Cancel()
	}
	b.fade.tl.Cancel()
	b.loading.stop()
	b.scroller.stop()
	b.details.stop()
	for _, cd := range b.scroller.Cards() {
		cd.Dispose()
	}
	b.container.Dispose()
}

// ShowDetails shows the details of the card at index.
func (b *Browser) ShowDetails(index int) (*timeline.Scenario, error) {
	cards := b.scroller.Cards()
	if index < 0 || index >= len(cards) {
		return nil, ErrOutOfRange
	}
	return b.details.Show(cards[index].Album)
}

// Container returns the browser container.
func (b *Browser) Container() *Container { return b.container }

// Albums returns the albums of the last successful load.
func (b *Browser) Albums() []artwork.Album { return b.albums }

// Err returns the error of the last load, if any.
func (b *Browser) Err() error { return b.err }

// FadeIn returns the container fade-in.
func (b *Browser) FadeIn() *FadeIn { return b.fade }

// Loading returns the loading indicator.
func (b *Browser) Loading() *LoadingIndicator { return b.loading }

// Scroller returns the card scroller.
func (b *Browser) Scroller() *Scroller { return b.scroller }

// Details returns the details view.
func (b *Browser) Details() *Details { return b.details }
