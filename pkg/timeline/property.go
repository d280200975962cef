package timeline

import (
	"image/color"

	"github.com/go-drift/granite/pkg/animation"
)

// Property binds one named field of a target to an interpolated value.
// Set receives the value at every apply step; returning an error cancels
// the timeline.
type Property[T any] struct {
	Name string
	From T
	To   T
	Lerp func(a, b T, t float64) T
	Set  func(T) error
}

type binding interface {
	propertyName() string
	apply(eased float64) error
	value() any
}

type boundProperty[T any] struct {
	name    string
	tween   animation.Tween[T]
	set     func(T) error
	current T
}

func (b *boundProperty[T]) propertyName() string { return b.name }

func (b *boundProperty[T]) apply(eased float64) error {
	v := b.tween.Evaluate(eased)
	if err := b.set(v); err != nil {
		return err
	}
	b.current = v
	return nil
}

func (b *boundProperty[T]) value() any { return b.current }

// AddProperty appends a property binding. Properties are applied in the
// order they were added.
func AddProperty[T any](tl *Timeline, p Property[T]) error {
	if tl.state.IsActive() {
		return ErrTimelineActive
	}
	if p.Set == nil || p.Lerp == nil {
		return tl.configError("timeline.AddProperty", ErrInvalidProperty)
	}
	tl.props = append(tl.props, &boundProperty[T]{
		name:    p.Name,
		tween:   animation.Tween[T]{Begin: p.From, End: p.To, Lerp: p.Lerp},
		set:     p.Set,
		current: p.From,
	})
	return nil
}

// AddFloat binds a float64 property.
func (tl *Timeline) AddFloat(name string, from, to float64, set func(float64)) error {
	return AddProperty(tl, Property[float64]{Name: name, From: from, To: to, Lerp: animation.LerpFloat64, Set: infallible(set)})
}

// AddInt binds an int property. Values are rounded.
func (tl *Timeline) AddInt(name string, from, to int, set func(int)) error {
	return AddProperty(tl, Property[int]{Name: name, From: from, To: to, Lerp: animation.LerpInt, Set: infallible(set)})
}

// AddColor binds a color property interpolated channel by channel.
func (tl *Timeline) AddColor(name string, from, to color.NRGBA, set func(color.NRGBA)) error {
	return AddProperty(tl, Property[color.NRGBA]{Name: name, From: from, To: to, Lerp: animation.LerpColor, Set: infallible(set)})
}

// AddColorLab binds a color property interpolated in CIE-Lab space.
func (tl *Timeline) AddColorLab(name string, from, to color.NRGBA, set func(color.NRGBA)) error {
	return AddProperty(tl, Property[color.NRGBA]{Name: name, From: from, To: to, Lerp: animation.LerpRGBALab, Set: infallible(set)})
}

// Value returns the last value applied to the named property.
func (tl *Timeline) Value(name string) (any, bool) {
	for _, p := range tl.props {
		if p.propertyName() == name {
			return p.value(), true
		}
	}
	return nil, false
}

func infallible[T any](set func(T)) func(T) error {
	if set == nil {
		return nil
	}
	return func(v T) error {
		set(v)
		return nil
	}
}
