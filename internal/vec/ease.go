package vec

import "math"

// Easing curves mapping a normalized progress value in [0,1] to an
// eased output in [0,1]. Boundary values are exact.

// EaseInExpo starts slow and accelerates exponentially.
func EaseInExpo(x float64) float64 {
	if x == 0 {
		return 0
	}
	return math.Pow(2, 10*x-10)
}

// EaseOutExpo starts fast and decelerates exponentially.
func EaseOutExpo(x float64) float64 {
	if x == 1 {
		return 1
	}
	return 1 - math.Pow(2, -10*x)
}

// EaseInOutCubic accelerates through the first half and decelerates
// through the second.
func EaseInOutCubic(x float64) float64 {
	if x < 0.5 {
		return 4 * x * x * x
	}
	return 1 - math.Pow(-2*x+2, 3)/2
}
