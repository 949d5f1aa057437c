// SPDX-License-Identifier: GPL-2.0-or-later

// Package winding implements convex polygons lying on a plane and the
// clipping operations the tree builder performs on them.
//
// Points are ordered clockwise when looked at from the front of the plane.
package winding

import (
	"math"

	"github.com/pkg/errors"

	qmath "q3map/math"
	"q3map/math/vec"
)

type Side int

const (
	SideFront Side = iota
	SideBack
	SideOn
	SideCross
)

func (s Side) String() string {
	switch s {
	case SideFront:
		return "front"
	case SideBack:
		return "back"
	case SideOn:
		return "on"
	case SideCross:
		return "cross"
	}
	return "unknown"
}

// Winding is a convex polygon. A nil or empty winding means the polygon was
// clipped away.
type Winding []vec.Vec3

// BaseForPlane returns a quad of half extent size centered on the plane,
// spanned by two vectors orthogonal to the normal.
func BaseForPlane(normal vec.Vec3, dist, size float64) Winding {
	// find the major axis
	x := -1
	max := -math.MaxFloat64
	for i := 0; i < 3; i++ {
		v := math.Abs(normal[i])
		if v > max {
			x = i
			max = v
		}
	}
	if x == -1 || max == 0 {
		return nil
	}

	var up vec.Vec3
	switch x {
	case 0, 1:
		up[2] = 1
	case 2:
		up[0] = 1
	}
	up = vec.MA(up, -vec.Dot(up, normal), normal)
	up, _ = vec.Normalize(up)

	org := vec.Scale(normal, dist)
	right := vec.Cross(up, normal)

	up = vec.Scale(up, size)
	right = vec.Scale(right, size)

	return Winding{
		vec.Add(vec.Sub(org, right), up),
		vec.Add(vec.Add(org, right), up),
		vec.Sub(vec.Add(org, right), up),
		vec.Sub(vec.Sub(org, right), up),
	}
}

func (w Winding) Clone() Winding {
	if w == nil {
		return nil
	}
	c := make(Winding, len(w))
	copy(c, w)
	return c
}

// Reverse returns the winding facing the other way.
func (w Winding) Reverse() Winding {
	r := make(Winding, len(w))
	for i, p := range w {
		r[len(w)-1-i] = p
	}
	return r
}

func classify(w Winding, normal vec.Vec3, dist, epsilon float64) ([]float64, []Side, [3]int) {
	dists := make([]float64, len(w)+1)
	sides := make([]Side, len(w)+1)
	var counts [3]int
	for i, p := range w {
		d := vec.Dot(p, normal) - dist
		dists[i] = d
		switch {
		case d > epsilon:
			sides[i] = SideFront
		case d < -epsilon:
			sides[i] = SideBack
		default:
			sides[i] = SideOn
		}
		counts[sides[i]]++
	}
	dists[len(w)] = dists[0]
	sides[len(w)] = sides[0]
	return dists, sides, counts
}

// splitPoint returns the point where the edge p1,p2 crosses the plane.
// Axial components are taken from the plane directly to avoid round off.
func splitPoint(p1, p2, normal vec.Vec3, dist, d1, d2 float64) vec.Vec3 {
	dot := d1 / (d1 - d2)
	var mid vec.Vec3
	for j := 0; j < 3; j++ {
		switch normal[j] {
		case 1:
			mid[j] = dist
		case -1:
			mid[j] = -dist
		default:
			mid[j] = p1[j] + dot*(p2[j]-p1[j])
		}
	}
	return mid
}

// Chop keeps the part of w in front of the plane. The result is nil if
// nothing is in front; w is returned unchanged if nothing is behind.
func Chop(w Winding, normal vec.Vec3, dist, epsilon float64) Winding {
	if len(w) == 0 {
		return nil
	}
	dists, sides, counts := classify(w, normal, dist, epsilon)
	if counts[SideFront] == 0 {
		return nil
	}
	if counts[SideBack] == 0 {
		return w
	}
	f := make(Winding, 0, len(w)+4)
	for i, p1 := range w {
		if sides[i] == SideOn {
			f = append(f, p1)
			continue
		}
		if sides[i] == SideFront {
			f = append(f, p1)
		}
		if sides[i+1] == SideOn || sides[i+1] == sides[i] {
			continue
		}
		p2 := w[(i+1)%len(w)]
		f = append(f, splitPoint(p1, p2, normal, dist, dists[i], dists[i+1]))
	}
	return f
}

func clip(w Winding, normal vec.Vec3, dist, epsilon float64, strict bool) (Winding, Winding) {
	if len(w) == 0 {
		return nil, nil
	}
	dists, sides, counts := classify(w, normal, dist, epsilon)
	if strict && counts[SideFront] == 0 && counts[SideBack] == 0 {
		return nil, nil
	}
	if counts[SideFront] == 0 {
		return nil, w.Clone()
	}
	if counts[SideBack] == 0 {
		return w.Clone(), nil
	}
	f := make(Winding, 0, len(w)+4)
	b := make(Winding, 0, len(w)+4)
	for i, p1 := range w {
		switch sides[i] {
		case SideOn:
			f = append(f, p1)
			b = append(b, p1)
			continue
		case SideFront:
			f = append(f, p1)
		case SideBack:
			b = append(b, p1)
		}
		if sides[i+1] == SideOn || sides[i+1] == sides[i] {
			continue
		}
		p2 := w[(i+1)%len(w)]
		mid := splitPoint(p1, p2, normal, dist, dists[i], dists[i+1])
		f = append(f, mid)
		b = append(b, mid)
	}
	return f, b
}

// ClipEpsilon splits w by the plane. A winding lying on the plane is
// returned as the back part.
func ClipEpsilon(w Winding, normal vec.Vec3, dist, epsilon float64) (front, back Winding) {
	return clip(w, normal, dist, epsilon, false)
}

// ClipEpsilonStrict splits w by the plane. A winding lying on the plane
// yields neither part.
func ClipEpsilonStrict(w Winding, normal vec.Vec3, dist, epsilon float64) (front, back Winding) {
	return clip(w, normal, dist, epsilon, true)
}

// OnPlaneSide classifies the whole winding against a plane.
func OnPlaneSide(w Winding, normal vec.Vec3, dist, epsilon float64) Side {
	front, back := false, false
	for _, p := range w {
		d := vec.Dot(p, normal) - dist
		if d < -epsilon {
			if front {
				return SideCross
			}
			back = true
			continue
		}
		if d > epsilon {
			if back {
				return SideCross
			}
			front = true
		}
	}
	if back {
		return SideBack
	}
	if front {
		return SideFront
	}
	return SideOn
}

// SnapWeld merges two nearly identical points. Per axis it prefers a
// coordinate that already is an exact integer; otherwise, or if both are,
// it takes the one closer to its own rounded value. The result snaps to
// the integer when within snap.
func SnapWeld(a, b vec.Vec3, snap float64) vec.Vec3 {
	var out vec.Vec3
	for i := 0; i < 3; i++ {
		ai := qmath.Rint(a[i])
		bi := qmath.Rint(b[i])
		aExact := ai == a[i]
		bExact := bi == b[i]
		switch {
		case aExact && !bExact:
			out[i] = a[i]
		case bExact && !aExact:
			out[i] = b[i]
		case math.Abs(ai-a[i]) <= math.Abs(bi-b[i]):
			out[i] = a[i]
		default:
			out[i] = b[i]
		}
		if oi := qmath.Rint(out[i]); math.Abs(oi-out[i]) <= snap {
			out[i] = oi
		}
	}
	return out
}

// Fix welds edges shorter than degenerate until none are left. Triangles
// are never reduced further. It reports whether the winding changed.
func Fix(w Winding, degenerate, snap float64) (Winding, bool) {
	altered := false
	for len(w) > 3 {
		done := true
		for i := range w {
			j := (i + 1) % len(w)
			if vec.Length(vec.Sub(w[i], w[j])) >= degenerate {
				continue
			}
			n := make(Winding, 0, len(w)-1)
			for k, p := range w {
				switch k {
				case i:
					n = append(n, SnapWeld(w[i], w[j], snap))
				case j:
				default:
					n = append(n, p)
				}
			}
			w = n
			altered = true
			done = false
			// welding may have made the previous edge short, start over
			break
		}
		if done {
			break
		}
	}
	return w, altered
}

// Area is the surface area of the polygon.
func (w Winding) Area() float64 {
	total := 0.0
	for i := 2; i < len(w); i++ {
		d1 := vec.Sub(w[i-1], w[0])
		d2 := vec.Sub(w[i], w[0])
		total += 0.5 * vec.Length(vec.Cross(d1, d2))
	}
	return total
}

// Center is the average of all points.
func (w Winding) Center() vec.Vec3 {
	var c vec.Vec3
	if len(w) == 0 {
		return c
	}
	for _, p := range w {
		c = vec.Add(c, p)
	}
	return vec.Scale(c, 1/float64(len(w)))
}

func (w Winding) Bounds() vec.Box {
	b := vec.EmptyBox()
	for _, p := range w {
		b.AddPoint(p)
	}
	return b
}

// Plane returns the plane the points lie on.
func (w Winding) Plane() (vec.Vec3, float64) {
	if len(w) < 3 {
		return vec.Vec3{}, 0
	}
	v1 := vec.Sub(w[1], w[0])
	v2 := vec.Sub(w[2], w[0])
	n, _ := vec.Normalize(vec.Cross(v2, v1))
	return n, vec.Dot(w[0], n)
}

// IsTiny reports a winding with fewer than three edges longer than edge.
func (w Winding) IsTiny(edge float64) bool {
	edges := 0
	for i := range w {
		j := (i + 1) % len(w)
		if vec.Length(vec.Sub(w[j], w[i])) > edge {
			edges++
			if edges == 3 {
				return false
			}
		}
	}
	return true
}

// IsHuge reports any coordinate beyond ±maxCoord.
func (w Winding) IsHuge(maxCoord float64) bool {
	for _, p := range w {
		for j := 0; j < 3; j++ {
			if p[j] <= -maxCoord || p[j] >= maxCoord {
				return true
			}
		}
	}
	return false
}

var (
	ErrTooFewPoints = errors.New("winding has fewer than 3 points")
	ErrNonConvex    = errors.New("winding is not convex")
)

// Check validates that the winding is a proper convex polygon inside the
// world: at least three points, all on one plane, no degenerate edges.
func (w Winding) Check(onEpsilon, minCoord, maxCoord float64) error {
	if len(w) < 3 {
		return errors.Wrapf(ErrTooFewPoints, "%d points", len(w))
	}
	normal, dist := w.Plane()
	for i, p1 := range w {
		for j := 0; j < 3; j++ {
			if p1[j] > maxCoord || p1[j] < minCoord {
				return errors.Errorf("winding point %v outside world", p1)
			}
		}
		if d := vec.Dot(p1, normal) - dist; d < -onEpsilon || d > onEpsilon {
			return errors.Errorf("winding point %d is %v off plane", i, d)
		}
		p2 := w[(i+1)%len(w)]
		dir := vec.Sub(p2, p1)
		if vec.Length(dir) < onEpsilon {
			return errors.Errorf("winding edge %d is degenerate", i)
		}
		edgeNormal, _ := vec.Normalize(vec.Cross(normal, dir))
		edgeDist := vec.Dot(p1, edgeNormal) + onEpsilon
		for j, p := range w {
			if j == i {
				continue
			}
			if vec.Dot(p, edgeNormal) > edgeDist {
				return errors.Wrapf(ErrNonConvex, "point %d beyond edge %d", j, i)
			}
		}
	}
	return nil
}

// AddToConvexHull grows hull so that it also covers w. Both must lie on the
// plane with the given normal.
func AddToConvexHull(hull, w Winding, normal vec.Vec3, onEpsilon float64) Winding {
	if len(hull) == 0 {
		return w.Clone()
	}
	points := hull.Clone()
	for _, p := range w {
		n := len(points)
		dirs := make([]vec.Vec3, n)
		for j := 0; j < n; j++ {
			k := (j + 1) % n
			d, _ := vec.Normalize(vec.Sub(points[k], points[j]))
			dirs[j] = vec.Cross(normal, d)
		}
		outside := false
		front := make([]bool, n)
		for j := 0; j < n; j++ {
			d := vec.Dot(vec.Sub(p, points[j]), dirs[j])
			if d >= onEpsilon {
				outside = true
			}
			front[j] = d >= -onEpsilon
		}
		if !outside {
			continue
		}
		// find the back side to front side transition
		j := 0
		for ; j < n; j++ {
			if !front[j%n] && front[(j+1)%n] {
				break
			}
		}
		if j == n {
			continue
		}
		next := Winding{p}
		j = (j + 1) % n
		for k := 0; k < n; k++ {
			if front[(j+k)%n] && front[(j+k+1)%n] {
				continue
			}
			next = append(next, points[(j+k+1)%n])
		}
		points = next
	}
	return points
}
