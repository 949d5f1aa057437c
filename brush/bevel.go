// SPDX-License-Identifier: GPL-2.0-or-later

package brush

import (
	"q3map/math/vec"
	"q3map/plane"
)

func (bd *Builder) bevel(b *Brush, normal vec.Vec3, dist float64) error {
	num, err := bd.Planes.Find(normal, dist)
	if err != nil {
		return err
	}
	s := Side{
		PlaneNum:     num,
		Bevel:        true,
		Shader:       b.Sides[0].Shader,
		ContentFlags: b.Sides[0].ContentFlags,
	}
	b.Sides = append(b.Sides, s)
	return nil
}

// AddBevels adds the axial planes at the bounds the brush is missing, so
// the first six sides are -x +x -y +y -z +z, and bevels every slanted edge
// of the non axial sides.
func (bd *Builder) AddBevels(b *Brush) error {
	order := 0
	for axis := 0; axis < 3; axis++ {
		for _, dir := range []float64{-1, 1} {
			i := 0
			for ; i < len(b.Sides); i++ {
				if bd.Planes.Get(b.Sides[i].PlaneNum).Normal[axis] == dir {
					break
				}
			}
			if i == len(b.Sides) {
				var normal vec.Vec3
				normal[axis] = dir
				dist := -b.Bounds.Mins[axis]
				if dir == 1 {
					dist = b.Bounds.Maxs[axis]
				}
				if err := bd.bevel(b, normal, dist); err != nil {
					return err
				}
			}
			if i != order {
				b.Sides[order], b.Sides[i] = b.Sides[i], b.Sides[order]
			}
			order++
		}
	}

	if len(b.Sides) == 6 {
		return nil
	}
	numSides := len(b.Sides)
	for i := 6; i < numSides; i++ {
		w := b.Sides[i].Winding
		for j := range w {
			k := (j + 1) % len(w)
			edge, l := vec.Normalize(vec.Sub(w[j], w[k]))
			if l < 0.5 {
				continue
			}
			edge = plane.SnapNormal(edge, bd.Epsilon.Normal)
			if axialEdge(edge) {
				continue
			}
			for axis := 0; axis < 3; axis++ {
				for _, dir := range []float64{-1, 1} {
					var a vec.Vec3
					a[axis] = dir
					normal, l := vec.Normalize(vec.Cross(edge, a))
					if l < 0.5 {
						continue
					}
					dist := vec.Dot(w[j], normal)
					if !bd.outerHull(b, normal, dist) {
						continue
					}
					if err := bd.bevel(b, normal, dist); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

func axialEdge(e vec.Vec3) bool {
	for k := 0; k < 3; k++ {
		if e[k] == -1 || e[k] == 1 || (e[k] == 0 && e[(k+1)%3] == 0) {
			return true
		}
	}
	return false
}

// outerHull reports whether every winding of b is behind the plane and
// the plane is not used yet.
func (bd *Builder) outerHull(b *Brush, normal vec.Vec3, dist float64) bool {
	for _, s := range b.Sides {
		p := bd.Planes.Get(s.PlaneNum)
		if vec.Near(p.Normal, normal, bd.Epsilon.Normal) && p.Dist-dist < bd.Epsilon.Dist && dist-p.Dist < bd.Epsilon.Dist {
			return false
		}
		if s.Winding == nil {
			continue
		}
		minBack := 0.0
		for _, pt := range s.Winding {
			d := vec.Dot(pt, normal) - dist
			if d > bd.Epsilon.On {
				return false
			}
			if d < minBack {
				minBack = d
			}
		}
		// the winding lies on the plane
		if minBack > -bd.Epsilon.On {
			return false
		}
	}
	return true
}
