// SPDX-License-Identifier: GPL-2.0-or-later

package brush

import (
	"log/slog"
	"math"

	"github.com/pkg/errors"

	"q3map/math/vec"
	"q3map/winding"
)

// RemoveDuplicatePlanes drops sides repeating an earlier plane. A brush
// holding a plane and its reverse has no volume and is rejected.
func (bd *Builder) RemoveDuplicatePlanes(b *Brush) error {
	sides := b.Sides[:0:0]
	for _, s := range b.Sides {
		if s.PlaneNum < 0 {
			continue
		}
		dup := false
		for _, o := range sides {
			if o.PlaneNum == s.PlaneNum {
				dup = true
				break
			}
			if o.PlaneNum == s.PlaneNum^1 {
				return errors.Wrapf(ErrInvalidBrush, "entity %d brush %d: mirrored plane", b.Entity, b.Num)
			}
		}
		if !dup {
			sides = append(sides, s)
		}
	}
	b.Sides = sides
	return nil
}

// CreateWindings builds the winding of every side by chopping a huge
// polygon on its plane by all other planes, then computes the bounds.
func (bd *Builder) CreateWindings(b *Brush) error {
	size := bd.World.Size()
	windings := 0
	for i := range b.Sides {
		s := &b.Sides[i]
		s.Winding = nil
		if s.Bevel {
			continue
		}
		p := bd.Planes.Get(s.PlaneNum)
		w := winding.BaseForPlane(p.Normal, p.Dist, size)
		for j := 0; j < len(b.Sides) && w != nil; j++ {
			o := &b.Sides[j]
			if i == j || o.Bevel || o.PlaneNum == s.PlaneNum^1 {
				continue
			}
			// keep what is behind the other plane
			q := bd.Planes.Get(o.PlaneNum ^ 1)
			w = winding.Chop(w, q.Normal, q.Dist, bd.Epsilon.BrushChop)
			w, _ = winding.Fix(w, bd.Epsilon.Degenerate, bd.Epsilon.Snap)
		}
		if len(w) < 3 {
			w = nil
		}
		if w != nil {
			if err := w.Check(bd.Epsilon.On, bd.World.MinCoord, bd.World.MaxCoord); err != nil {
				slog.Debug("side winding dropped", "entity", b.Entity, "brush", b.Num, "side", i, "err", err.Error())
				w = nil
			}
		}
		s.Winding = w
		if w != nil {
			windings++
		}
	}
	if windings < 4 {
		return errors.Wrapf(ErrInvalidBrush, "entity %d brush %d: only %d sides have windings", b.Entity, b.Num, windings)
	}
	return bd.Bound(b)
}

func (bd *Builder) checkBounds(b *Brush) error {
	if !b.Bounds.HasVolume() {
		return errors.Wrapf(ErrInvalidBrush, "entity %d brush %d: empty bounds", b.Entity, b.Num)
	}
	if !b.Bounds.Within(bd.World.MinCoord, bd.World.MaxCoord) {
		return errors.Wrapf(ErrInvalidBrush, "entity %d brush %d: bounds %v %v outside the world",
			b.Entity, b.Num, b.Bounds.Mins, b.Bounds.Maxs)
	}
	return nil
}

// intersect solves the three plane equations with Cramer's rule.
func intersect(n1 vec.Vec3, d1 float64, n2 vec.Vec3, d2 float64, n3 vec.Vec3, d3 float64) (vec.Vec3, bool) {
	c23 := vec.Cross(n2, n3)
	det := vec.Dot(n1, c23)
	if math.Abs(det) < 1e-9 {
		return vec.Vec3{}, false
	}
	p := vec.Scale(c23, d1)
	p = vec.MA(p, d2, vec.Cross(n3, n1))
	p = vec.MA(p, d3, vec.Cross(n1, n2))
	return vec.Scale(p, 1/det), true
}

// Bound computes the bounds from the corners where three planes meet
// inside all other planes.
func (bd *Builder) Bound(b *Brush) error {
	box := vec.EmptyBox()
	n := len(b.Sides)
	for i := 0; i < n; i++ {
		pi := bd.Planes.Get(b.Sides[i].PlaneNum)
		for j := i + 1; j < n; j++ {
			pj := bd.Planes.Get(b.Sides[j].PlaneNum)
			for k := j + 1; k < n; k++ {
				pk := bd.Planes.Get(b.Sides[k].PlaneNum)
				p, ok := intersect(pi.Normal, pi.Dist, pj.Normal, pj.Dist, pk.Normal, pk.Dist)
				if !ok {
					continue
				}
				inside := true
				for l := 0; l < n && inside; l++ {
					if pl := bd.Planes.Get(b.Sides[l].PlaneNum); pl.Distance(p) > bd.Epsilon.On {
						inside = false
					}
				}
				if inside {
					box.AddPoint(p)
				}
			}
		}
	}
	b.Bounds = box
	return bd.checkBounds(b)
}

// boundFromWindings is the cheap bound used on split fragments before
// their windings are rebuilt.
func (bd *Builder) boundFromWindings(b *Brush) error {
	box := vec.EmptyBox()
	for _, s := range b.Sides {
		for _, p := range s.Winding {
			box.AddPoint(p)
		}
	}
	b.Bounds = box
	return bd.checkBounds(b)
}

// Volume sums the pyramids from one corner to every side.
func (bd *Builder) Volume(b *Brush) float64 {
	i := 0
	for ; i < len(b.Sides); i++ {
		if b.Sides[i].Winding != nil {
			break
		}
	}
	if i == len(b.Sides) {
		return 0
	}
	corner := b.Sides[i].Winding[0]
	volume := 0.0
	for ; i < len(b.Sides); i++ {
		s := &b.Sides[i]
		if s.Winding == nil {
			continue
		}
		d := -bd.Planes.Get(s.PlaneNum).Distance(corner)
		volume += d * s.Winding.Area()
	}
	return volume / 3
}

// MostlyOnSide reports the side of the plane the brush reaches farthest
// into.
func (bd *Builder) MostlyOnSide(b *Brush, planeNum int) winding.Side {
	p := bd.Planes.Get(planeNum)
	max := 0.0
	side := winding.SideFront
	for _, s := range b.Sides {
		for _, pt := range s.Winding {
			d := p.Distance(pt)
			if d > max {
				max = d
				side = winding.SideFront
			}
			if -d > max {
				max = -d
				side = winding.SideBack
			}
		}
	}
	return side
}
