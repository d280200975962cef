package animation

import "math"

// A curve maps the linear fraction t in [0, 1] of a timeline to its eased
// fraction. Curves start at 0 and end at 1; values in between may overshoot.
//
// Standard curves: [LinearCurve], [Ease], [EaseIn], [EaseOut], [EaseInOut],
// [Sine]. [Spline] builds a symmetric ease-in-out from one parameter and
// [CubicBezier] builds any CSS cubic-bezier() curve.

// LinearCurve returns t unchanged.
func LinearCurve(t float64) float64 {
	return t
}

// CSS timing functions.
var (
	Ease      = CubicBezier(0.25, 0.1, 0.25, 1.0)
	EaseIn    = CubicBezier(0.42, 0.0, 1.0, 1.0)
	EaseOut   = CubicBezier(0.0, 0.0, 0.58, 1.0)
	EaseInOut = CubicBezier(0.42, 0.0, 0.58, 1.0)
)

// Sine eases out along a quarter sine wave.
func Sine(t float64) float64 {
	return math.Sin(clampUnit(t) * math.Pi / 2)
}

// Spline returns a symmetric ease-in-out curve controlled by amount in
// [0, 1]. Zero is linear; larger values linger longer near both ends.
func Spline(amount float64) func(float64) float64 {
	amount = clampUnit(amount)
	return CubicBezier(amount, 0, 1-amount, 1)
}

// Reverse returns the point mirror of curve: 1 - curve(1 - t).
func Reverse(curve func(float64) float64) func(float64) float64 {
	return func(t float64) float64 {
		return 1 - curve(1-t)
	}
}

// CubicBezier returns the curve through (0,0) and (1,1) with control points
// (x1,y1) and (x2,y2), like CSS cubic-bezier(). x1 and x2 are clamped to
// [0, 1] so that the curve stays a function of t.
func CubicBezier(x1, y1, x2, y2 float64) func(float64) float64 {
	b := newBezier(clampUnit(x1), y1, clampUnit(x2), y2)
	return func(t float64) float64 {
		switch {
		case t <= 0:
			return 0
		case t >= 1:
			return 1
		}
		return b.y(b.solve(t))
	}
}

// bezier holds the polynomial coefficients of both axes, so that
// x(u) = ((ax*u + bx)*u + cx)*u.
type bezier struct {
	ax, bx, cx float64
	ay, by, cy float64
}

func newBezier(x1, y1, x2, y2 float64) bezier {
	var b bezier
	b.cx = 3 * x1
	b.bx = 3*(x2-x1) - b.cx
	b.ax = 1 - b.cx - b.bx
	b.cy = 3 * y1
	b.by = 3*(y2-y1) - b.cy
	b.ay = 1 - b.cy - b.by
	return b
}

func (b bezier) x(u float64) float64 { return ((b.ax*u+b.bx)*u + b.cx) * u }

func (b bezier) y(u float64) float64 { return ((b.ay*u+b.by)*u + b.cy) * u }

func (b bezier) dx(u float64) float64 { return (3*b.ax*u+2*b.bx)*u + b.cx }

// solve finds u with x(u) == t.
func (b bezier) solve(t float64) float64 {
	const epsilon = 1e-7

	u := t
	for range 8 {
		err := b.x(u) - t
		if math.Abs(err) < epsilon {
			return u
		}
		d := b.dx(u)
		if math.Abs(d) < epsilon {
			break
		}
		u -= err / d
	}

	// Newton stalled on a flat tangent; x is monotonic so bisection converges.
	lo, hi := 0.0, 1.0
	u = t
	for range 40 {
		x := b.x(u)
		if math.Abs(x-t) < epsilon {
			break
		}
		if x < t {
			lo = u
		} else {
			hi = u
		}
		u = (lo + hi) / 2
	}
	return u
}

func clampUnit(v float64) float64 {
	return min(max(v, 0), 1)
}
