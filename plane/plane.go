// SPDX-License-Identifier: GPL-2.0-or-later

// Package plane keeps the shared table of geometric planes. Every plane p
// is stored together with its reverse at p^1.
package plane

import (
	"math"

	qmath "q3map/math"
	"q3map/math/vec"
)

type Type uint8

const (
	TypeX Type = iota
	TypeY
	TypeZ
	TypeNonAxial
)

func (t Type) Axial() bool {
	return t < TypeNonAxial
}

type Plane struct {
	Normal   vec.Vec3
	Dist     float64
	Type     Type
	SignBits uint8
}

// Distance is the signed distance of p in front of the plane.
func (pl *Plane) Distance(p vec.Vec3) float64 {
	if pl.Type.Axial() {
		return p[pl.Type]*pl.Normal[pl.Type] - pl.Dist
	}
	return vec.Dot(p, pl.Normal) - pl.Dist
}

const (
	BoxFront = 1
	BoxBack  = 2
	BoxCross = BoxFront | BoxBack
)

// BoxOnPlaneSide returns BoxFront, BoxBack or BoxCross. Corners closer than
// epsilon do not count.
func (pl *Plane) BoxOnPlaneSide(b vec.Box, epsilon float64) int {
	if pl.Type.Axial() {
		t := int(pl.Type)
		n := pl.Normal[t]
		lo, hi := n*b.Mins[t], n*b.Maxs[t]
		if lo > hi {
			lo, hi = hi, lo
		}
		sides := 0
		if hi > pl.Dist+epsilon {
			sides |= BoxFront
		}
		if lo < pl.Dist-epsilon {
			sides |= BoxBack
		}
		return sides
	}
	// pick the corners nearest and farthest along the normal
	var near, far vec.Vec3
	for i := 0; i < 3; i++ {
		if pl.SignBits&(1<<i) != 0 {
			far[i], near[i] = b.Mins[i], b.Maxs[i]
		} else {
			far[i], near[i] = b.Maxs[i], b.Mins[i]
		}
	}
	sides := 0
	if vec.Dot(far, pl.Normal) > pl.Dist+epsilon {
		sides |= BoxFront
	}
	if vec.Dot(near, pl.Normal) < pl.Dist-epsilon {
		sides |= BoxBack
	}
	return sides
}

func TypeForNormal(n vec.Vec3) Type {
	switch {
	case n[0] == 1 || n[0] == -1:
		return TypeX
	case n[1] == 1 || n[1] == -1:
		return TypeY
	case n[2] == 1 || n[2] == -1:
		return TypeZ
	}
	return TypeNonAxial
}

func signBitsForNormal(n vec.Vec3) uint8 {
	var bits uint8
	for i := 0; i < 3; i++ {
		if n[i] < 0 {
			bits |= 1 << i
		}
	}
	return bits
}

func newPlane(normal vec.Vec3, dist float64) Plane {
	return Plane{
		Normal:   normal,
		Dist:     dist,
		Type:     TypeForNormal(normal),
		SignBits: signBitsForNormal(normal),
	}
}

// SnapNormal turns a normal that is within epsilon of an axis into that
// exact axis.
func SnapNormal(n vec.Vec3, epsilon float64) vec.Vec3 {
	for i := 0; i < 3; i++ {
		if math.Abs(n[i]-1) < epsilon {
			var a vec.Vec3
			a[i] = 1
			return a
		}
		if math.Abs(n[i]+1) < epsilon {
			var a vec.Vec3
			a[i] = -1
			return a
		}
	}
	return n
}

// SnapPlane snaps the normal to an axis and the distance to an integer
// where they are close enough.
func SnapPlane(n vec.Vec3, dist, normalEpsilon, distEpsilon float64) (vec.Vec3, float64) {
	n = SnapNormal(n, normalEpsilon)
	if r := qmath.Rint(dist); math.Abs(dist-r) < distEpsilon {
		dist = r
	}
	return n, dist
}

// FromPoints returns the plane through three points. Points given
// clockwise when seen from the front produce a normal facing the viewer.
// ok is false for collinear points.
func FromPoints(a, b, c vec.Vec3) (normal vec.Vec3, dist float64, ok bool) {
	d1 := vec.Sub(b, a)
	d2 := vec.Sub(c, a)
	normal, l := vec.Normalize(vec.Cross(d2, d1))
	if l == 0 {
		return vec.Vec3{}, 0, false
	}
	return normal, vec.Dot(a, normal), true
}
