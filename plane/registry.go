// SPDX-License-Identifier: GPL-2.0-or-later

package plane

import (
	"math"

	"github.com/pkg/errors"

	"q3map/math/vec"
)

var (
	ErrBadNormal     = errors.New("bad plane normal")
	ErrTooManyPlanes = errors.New("too many planes")
)

// Registry deduplicates planes. Indices are stable for the lifetime of the
// registry; p and p^1 always face opposite ways and for axial planes the
// even index faces the positive axis.
type Registry struct {
	normalEpsilon float64
	distEpsilon   float64
	// 0 means unlimited
	max int

	planes []Plane
	// keyed by the integer part of |dist|
	hash map[int][]int
}

func NewRegistry(normalEpsilon, distEpsilon float64, max int) *Registry {
	return &Registry{
		normalEpsilon: normalEpsilon,
		distEpsilon:   distEpsilon,
		max:           max,
		hash:          make(map[int][]int),
	}
}

func (r *Registry) Len() int {
	return len(r.planes)
}

// Get returns the plane at index i. The pointer must not be kept across
// calls that add planes.
func (r *Registry) Get(i int) *Plane {
	return &r.planes[i]
}

// Planes returns the table in index order.
func (r *Registry) Planes() []Plane {
	return r.planes
}

func (r *Registry) equal(p *Plane, normal vec.Vec3, dist float64) bool {
	return math.Abs(p.Normal[0]-normal[0]) < r.normalEpsilon &&
		math.Abs(p.Normal[1]-normal[1]) < r.normalEpsilon &&
		math.Abs(p.Normal[2]-normal[2]) < r.normalEpsilon &&
		math.Abs(p.Dist-dist) < r.distEpsilon
}

func hashKey(dist float64) int {
	return int(math.Abs(dist))
}

// Find returns the index of the plane, adding it (and its reverse) if no
// plane within tolerance exists yet.
func (r *Registry) Find(normal vec.Vec3, dist float64) (int, error) {
	normal, dist = SnapPlane(normal, dist, r.normalEpsilon, r.distEpsilon)
	key := hashKey(dist)
	for k := key - 1; k <= key+1; k++ {
		for _, i := range r.hash[k] {
			if r.equal(&r.planes[i], normal, dist) {
				return i, nil
			}
		}
	}
	return r.create(normal, dist)
}

// FindPoints interns the plane through three points, see FromPoints.
func (r *Registry) FindPoints(a, b, c vec.Vec3) (int, error) {
	n, d, ok := FromPoints(a, b, c)
	if !ok {
		return -1, errors.Wrapf(ErrBadNormal, "points %v %v %v are collinear", a, b, c)
	}
	return r.Find(n, d)
}

func (r *Registry) create(normal vec.Vec3, dist float64) (int, error) {
	if vec.Length(normal) < 0.5 {
		return -1, errors.Wrapf(ErrBadNormal, "normal %v", normal)
	}
	if r.max > 0 && len(r.planes)+2 > r.max {
		return -1, errors.Wrapf(ErrTooManyPlanes, "limit %d", r.max)
	}
	p := newPlane(normal, dist)
	q := newPlane(vec.Negate(normal), -dist)
	idx := len(r.planes)
	if p.Type.Axial() && p.Normal[p.Type] < 0 {
		p, q = q, p
		r.planes = append(r.planes, p, q)
		r.add(idx)
		r.add(idx + 1)
		return idx + 1, nil
	}
	r.planes = append(r.planes, p, q)
	r.add(idx)
	r.add(idx + 1)
	return idx, nil
}

func (r *Registry) add(i int) {
	k := hashKey(r.planes[i].Dist)
	r.hash[k] = append(r.hash[k], i)
}
