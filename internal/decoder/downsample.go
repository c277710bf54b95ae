package decoder

import "tricoach/internal/activity"

// stride returns the sampling step that keeps n points within
// activity.MaxStreamPoints. Inputs already within the cap are kept whole.
func stride(n int) int {
	if n <= activity.MaxStreamPoints {
		return 1
	}
	return (n + activity.MaxStreamPoints - 1) / activity.MaxStreamPoints
}
