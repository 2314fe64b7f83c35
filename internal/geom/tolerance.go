package geom

import "math"

// Tolerances used by every comparison in the kernel. They are tuned against
// the floating-point artifacts of offsetting and trimming G-code geometry and
// must not be replaced by local epsilons.
const (
	// Precision is the linear tolerance in drawing units.
	Precision = 1e-5
	// AngularPrecision is the angular tolerance in degrees.
	AngularPrecision = 1e-3
)

// Near reports whether a and b are within Precision of each other.
func Near(a, b float64) bool {
	return math.Abs(a-b) < Precision
}

// PointsCoincide reports whether a and b are within Precision on both axes.
func PointsCoincide(a, b Point2D) bool {
	return Near(a.X, b.X) && Near(a.Y, b.Y)
}

// NormalizeAngle maps deg into [0, 360).
func NormalizeAngle(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	if deg >= 360 {
		deg -= 360
	}
	return deg
}

// Deg2Rad converts degrees to radians.
func Deg2Rad(deg float64) float64 {
	return deg * math.Pi / 180
}

// Rad2Deg converts radians to degrees.
func Rad2Deg(rad float64) float64 {
	return rad * 180 / math.Pi
}

// AngleWithinArc reports whether test lies inside the angular span of an arc
// starting at start and sweeping sweep degrees. Both span ends are inclusive
// with AngularPrecision slack, and a retry at test+360 absorbs the 0/360
// wraparound.
//
// Every arc-bounds check in the package goes through this function.
func AngleWithinArc(start, sweep, test float64) bool {
	begin, end := start, start+sweep
	if sweep < 0 {
		begin, end = start+sweep, start
	}
	for begin < 0 {
		begin += 360
		end += 360
	}
	for begin >= 360 {
		begin -= 360
		end -= 360
	}
	within := func(a float64) bool {
		return a >= begin-AngularPrecision && a <= end+AngularPrecision
	}
	test = NormalizeAngle(test)
	// test just below 360 is also just below a span starting at 0
	return within(test) || within(test+360) || within(test-360)
}
