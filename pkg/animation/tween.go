package animation

import (
	"image"
	"image/color"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Tween interpolates between Begin and End values based on animation progress.
//
// Tween maps the 0-1 eased fraction of a timeline to any value range or type.
// Use the helper constructors ([TweenFloat64], [TweenInt], [TweenColor]) for
// common types, or create custom tweens with a Lerp function.
//
// See ExampleTween and ExampleTween_customType for usage patterns.
type Tween[T any] struct {
	// Begin is the starting value (when t = 0).
	Begin T
	// End is the ending value (when t = 1).
	End T
	// Lerp interpolates between Begin and End. Receives the begin value,
	// end value, and progress t in [0, 1]. Returns the interpolated value.
	Lerp func(a, b T, t float64) T
}

// Evaluate returns the interpolated value at t (0.0 to 1.0).
func (tw *Tween[T]) Evaluate(t float64) T {
	if tw.Lerp == nil {
		return tw.End
	}
	return tw.Lerp(tw.Begin, tw.End, t)
}

// LerpFloat64 linearly interpolates between two float64 values.
func LerpFloat64(a, b float64, t float64) float64 {
	return a + (b-a)*t
}

// LerpFloat32 linearly interpolates between two float32 values.
func LerpFloat32(a, b float32, t float64) float32 {
	return float32(LerpFloat64(float64(a), float64(b), t))
}

// LerpInt linearly interpolates between two ints, rounding half away from zero.
func LerpInt(a, b int, t float64) int {
	return int(math.Round(LerpFloat64(float64(a), float64(b), t)))
}

// LerpPoint linearly interpolates between two points, component-wise.
func LerpPoint(a, b image.Point, t float64) image.Point {
	return image.Point{
		X: LerpInt(a.X, b.X, t),
		Y: LerpInt(a.Y, b.Y, t),
	}
}

// LerpColor linearly interpolates between two non-premultiplied colors,
// channel by channel.
func LerpColor(a, b color.NRGBA, t float64) color.NRGBA {
	return color.NRGBA{
		R: lerpChannel(a.R, b.R, t),
		G: lerpChannel(a.G, b.G, t),
		B: lerpChannel(a.B, b.B, t),
		A: lerpChannel(a.A, b.A, t),
	}
}

// LerpRGBALab interpolates the color channels in CIE-Lab space, which keeps
// perceived lightness even along the path. Alpha is interpolated linearly.
func LerpRGBALab(a, b color.NRGBA, t float64) color.NRGBA {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	blended := toColorful(a).BlendLab(toColorful(b), t).Clamped()
	r, g, bl := blended.RGB255()
	return color.NRGBA{R: r, G: g, B: bl, A: lerpChannel(a.A, b.A, t)}
}

func toColorful(c color.NRGBA) colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}
}

func lerpChannel(a, b uint8, t float64) uint8 {
	v := math.Round(LerpFloat64(float64(a), float64(b), t))
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// TweenFloat64 creates a tween for float64 values.
func TweenFloat64(begin, end float64) *Tween[float64] {
	return &Tween[float64]{
		Begin: begin,
		End:   end,
		Lerp:  LerpFloat64,
	}
}

// TweenInt creates a tween for int values.
func TweenInt(begin, end int) *Tween[int] {
	return &Tween[int]{
		Begin: begin,
		End:   end,
		Lerp:  LerpInt,
	}
}

// TweenColor creates a tween for colors using per-channel linear blending.
func TweenColor(begin, end color.NRGBA) *Tween[color.NRGBA] {
	return &Tween[color.NRGBA]{
		Begin: begin,
		End:   end,
		Lerp:  LerpColor,
	}
}

// TweenPoint creates a tween for image.Point values.
func TweenPoint(begin, end image.Point) *Tween[image.Point] {
	return &Tween[image.Point]{
		Begin: begin,
		End:   end,
		Lerp:  LerpPoint,
	}
}
