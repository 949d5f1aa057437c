// SPDX-License-Identifier: GPL-2.0-or-later

package vec

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec3 is the double precision vector all compiler geometry is done in.
type Vec3 = mgl64.Vec3

// Add returns a + b
func Add(a, b Vec3) Vec3 {
	return a.Add(b)
}

// Sub returns a - b
func Sub(a, b Vec3) Vec3 {
	return a.Sub(b)
}

// Scale returns the vector multiplied by the skalar s
func Scale(v Vec3, s float64) Vec3 {
	return v.Mul(s)
}

// MA returns a + s*b
func MA(a Vec3, s float64, b Vec3) Vec3 {
	return a.Add(b.Mul(s))
}

// Dot returns a dot b
func Dot(a, b Vec3) float64 {
	return a.Dot(b)
}

// Cross returns a cross b
func Cross(a, b Vec3) Vec3 {
	return a.Cross(b)
}

// Negate returns -v
func Negate(v Vec3) Vec3 {
	return v.Mul(-1)
}

// Length returns the length of the vector
func Length(v Vec3) float64 {
	return v.Len()
}

// Normalize returns the normalized vector and the length it had.
// A zero vector stays zero.
func Normalize(v Vec3) (Vec3, float64) {
	l := Length(v)
	if l == 0 {
		return Vec3{}, 0
	}
	return v.Mul(1 / l), l
}

// Near reports whether every component of a and b differs by less than eps.
func Near(a, b Vec3, eps float64) bool {
	for i := 0; i < 3; i++ {
		if math.Abs(a[i]-b[i]) >= eps {
			return false
		}
	}
	return true
}

func minmax(a, b float64) (float64, float64) {
	if a < b {
		return a, b
	}
	return b, a
}

func MinMax(a, b Vec3) (Vec3, Vec3) {
	var r, s Vec3
	r[0], s[0] = minmax(a[0], b[0])
	r[1], s[1] = minmax(a[1], b[1])
	r[2], s[2] = minmax(a[2], b[2])
	return r, s
}

// Box is an axis aligned bounding box. The zero value is not empty, use
// EmptyBox to start accumulating points.
type Box struct {
	Mins Vec3
	Maxs Vec3
}

func EmptyBox() Box {
	return Box{
		Mins: Vec3{math.MaxFloat64, math.MaxFloat64, math.MaxFloat64},
		Maxs: Vec3{-math.MaxFloat64, -math.MaxFloat64, -math.MaxFloat64},
	}
}

func (b *Box) AddPoint(p Vec3) {
	for i := 0; i < 3; i++ {
		if p[i] < b.Mins[i] {
			b.Mins[i] = p[i]
		}
		if p[i] > b.Maxs[i] {
			b.Maxs[i] = p[i]
		}
	}
}

func (b *Box) AddBox(o Box) {
	if o.IsEmpty() {
		return
	}
	b.AddPoint(o.Mins)
	b.AddPoint(o.Maxs)
}

// IsEmpty reports whether no point was added, or mins exceed maxs on any axis.
func (b Box) IsEmpty() bool {
	return b.Mins[0] > b.Maxs[0] || b.Mins[1] > b.Maxs[1] || b.Mins[2] > b.Maxs[2]
}

// HasVolume reports mins < maxs on every axis.
func (b Box) HasVolume() bool {
	return b.Mins[0] < b.Maxs[0] && b.Mins[1] < b.Maxs[1] && b.Mins[2] < b.Maxs[2]
}

// Within reports whether the box lies inside [lo,hi] on every axis.
func (b Box) Within(lo, hi float64) bool {
	for i := 0; i < 3; i++ {
		if b.Mins[i] < lo || b.Maxs[i] > hi {
			return false
		}
	}
	return true
}

func (b Box) Expand(d float64) Box {
	return Box{
		Mins: Sub(b.Mins, Vec3{d, d, d}),
		Maxs: Add(b.Maxs, Vec3{d, d, d}),
	}
}
