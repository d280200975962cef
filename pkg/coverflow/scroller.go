package coverflow

import (
	"time"

	"github.com/go-drift/granite/pkg/animation"
	"github.com/go-drift/granite/pkg/artwork"
	"github.com/go-drift/granite/pkg/timeline"
)

// Scroller defaults.
const (
	DefaultScrollDuration = 400 * time.Millisecond
	DefaultCardSpacing    = 180.0
	DefaultCoverSize      = 160
	DefaultDisposeFade    = 300 * time.Millisecond
)

// Scroller lays album cards out in a row and animates the leading card.
type Scroller struct {
	Duration  time.Duration
	Spacing   float64
	CoverSize int
	Source    artwork.Source

	container *Container
	cards     []*Card
	selected  int
	leading   float64
	scroll    *timeline.Timeline
}

// Attach binds the scroller to c.
func (s *Scroller) Attach(c *Container) error {
	if s.Duration <= 0 {
		s.Duration = DefaultScrollDuration
	}
	if s.Spacing <= 0 {
		s.Spacing = DefaultCardSpacing
	}
	if s.CoverSize <= 0 {
		s.CoverSize = DefaultCoverSize
	}
	s.container = c
	return nil
}

// SetAlbums replaces the cards. Old cards fade out and are disposed; new
// cards fade in and start loading their covers when a Source is set.
func (s *Scroller) SetAlbums(albums []artwork.Album) error {
	if s.container == nil {
		return ErrNotAttached
	}
	c := s.container
	for _, old := range s.cards {
		old.fade.Cancel()
		if _, err := FadeOutAndDispose(c.sched, old, DefaultDisposeFade, old.Dispose); err != nil {
			return err
		}
	}
	if s.scroll != nil {
		s.scroll.Abort()
	}

	s.cards = make([]*Card, 0, len(albums))
	s.selected, s.leading = 0, 0
	for _, album := range albums {
		cd, err := newCard(c, album)
		if err != nil {
			return err
		}
		s.cards = append(s.cards, cd)
		if err := cd.Show(); err != nil {
			return err
		}
		if s.Source != nil {
			if err := cd.LoadArt(s.Source, s.CoverSize); err != nil {
				return err
			}
		}
	}
	c.Repaint()
	return nil
}

// ScrollToNext animates to the next album.
func (s *Scroller) ScrollToNext() error {
	return s.ScrollTo(s.selected + 1)
}

// ScrollToPrevious animates to the previous album.
func (s *Scroller) ScrollToPrevious() error {
	return s.ScrollTo(s.selected - 1)
}

// ScrollTo animates the leading position to index. A running scroll is
// replaced and continues from where it was.
func (s *Scroller) ScrollTo(index int) error {
	if s.container == nil {
		return ErrNotAttached
	}
	if index < 0 || index >= len(s.cards) {
		return ErrOutOfRange
	}
	if s.scroll != nil {
		s.scroll.Abort()
	}
	c := s.container
	tl := c.sched.NewTimeline(c)
	tl.SetName("scroll")
	tl.SetDuration(s.Duration)
	tl.SetEase(animation.EaseOut)
	if err := tl.AddFloat("leading", s.leading, float64(index), func(v float64) { s.leading = v }); err != nil {
		return err
	}
	tl.AddCallback(timeline.RepaintCallback(c))
	if err := tl.Play(); err != nil {
		return err
	}
	previous := s.Selected()
	s.scroll = tl
	s.selected = index
	if previous != nil && previous != s.cards[index] {
		previous.Hover(false)
	}
	return s.cards[index].Hover(true)
}

func (s *Scroller) stop() {
	if s.scroll != nil {
		s.scroll.Cancel()
	}
}

// Cards returns the current cards.
func (s *Scroller) Cards() []*Card { return s.cards }

// Selected returns the card scrolled to, nil without cards.
func (s *Scroller) Selected() *Card {
	if s.selected < 0 || s.selected >= len(s.cards) {
		return nil
	}
	return s.cards[s.selected]
}

// SelectedIndex returns the index scrolled to.
func (s *Scroller) SelectedIndex() int { return s.selected }

// Leading returns the animated leading position in card units.
func (s *Scroller) Leading() float64 { return s.leading }

// CardOffset returns the horizontal offset of card i relative to the
// leading card.
func (s *Scroller) CardOffset(i int) float64 {
	return (float64(i) - s.leading) * s.Spacing
}
