// Package animation provides the value-level primitives used by the timeline
// engine: easing curves, typed interpolation and the clock abstraction.
//
// # Easing
//
// An easing curve maps the elapsed duration fraction t in [0, 1] to an eased
// fraction. Every curve in this package is monotonic with f(0) = 0 and
// f(1) = 1:
//
//	ease := animation.Spline(0.7)
//	eased := ease(0.25)
//
// # Interpolation
//
// [Tween] pairs a begin and end value with a Lerp function. Lerp functions are
// provided for float64, float32, int, image.Point and color.NRGBA (linear per
// component, or perceptual through [LerpRGBALab]):
//
//	alpha := animation.TweenInt(0, 255)
//	alpha.Evaluate(0.5) // 128
package animation
