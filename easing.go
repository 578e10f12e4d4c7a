package connectors

import (
	"github.com/chewxy/math32"
)

// DampEpsilon is the distance under which Damp snaps to the target.
const DampEpsilon = 0.001

// ClampDelta bounds a frame delta to [0, maxDelta]. Long stalls such as a
// hidden window then produce one bounded step instead of a jump.
func ClampDelta(delta, maxDelta float32) float32 {
	if delta < 0 || math32.IsNaN(delta) {
		return 0
	}
	if maxDelta > 0 && delta > maxDelta {
		return maxDelta
	}
	return delta
}

// Damp moves current toward target with a critically damped spring that
// settles in roughly smoothTime seconds. velocity carries the spring state
// between calls and must be kept per value being damped.
func Damp(current, target float32, velocity *float32, smoothTime, delta float32) float32 {
	if math32.Abs(current-target) <= DampEpsilon {
		*velocity = 0
		return target
	}

	smoothTime = math32.Max(0.0001, smoothTime)
	omega := 2 / smoothTime
	x := omega * delta
	t := 1 / (1 + x + 0.48*x*x + 0.235*x*x*x)

	change := current - target
	temp := (*velocity + omega*change) * delta
	*velocity = (*velocity - omega*temp) * t
	output := target + (change+temp)*t

	// Never step past the target.
	if (target-current > 0) == (output > target) {
		output = target
		*velocity = 0
	}
	return output
}

// DampColor eases every channel of current toward target. velocity holds
// the per-channel spring state.
func DampColor(current *Color, velocity *[3]float32, target Color, smoothTime, delta float32) {
	current.R = Damp(current.R, target.R, &velocity[0], smoothTime, delta)
	current.G = Damp(current.G, target.G, &velocity[1], smoothTime, delta)
	current.B = Damp(current.B, target.B, &velocity[2], smoothTime, delta)
}
