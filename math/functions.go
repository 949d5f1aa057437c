// SPDX-License-Identifier: GPL-2.0-or-later

package math

import (
	gmath "math"
)

// Rint rounds half away from the floor, the way map coordinates are snapped.
func Rint(x float64) float64 {
	return gmath.Floor(x + 0.5)
}
