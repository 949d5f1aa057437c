// SPDX-License-Identifier: GPL-2.0-or-later

package brush

import (
	"log/slog"

	"q3map/winding"
)

// Split cuts b by the plane. Either result may be nil, never both. Both
// fragments keep the original of b and get a new side on the cut.
func (bd *Builder) Split(b *Brush, planeNum int) (front, back *Brush) {
	p := bd.Planes.Get(planeNum)

	dFront, dBack := 0.0, 0.0
	for _, s := range b.Sides {
		for _, pt := range s.Winding {
			d := p.Distance(pt)
			if d > 0 && d > dFront {
				dFront = d
			}
			if d < 0 && d < dBack {
				dBack = d
			}
		}
	}
	if dFront < bd.Epsilon.PlaneSide {
		return nil, b.Copy()
	}
	if dBack > -bd.Epsilon.PlaneSide {
		return b.Copy(), nil
	}

	// the face the cut creates
	mid := winding.BaseForPlane(p.Normal, p.Dist, bd.World.Size())
	for i := 0; i < len(b.Sides) && mid != nil; i++ {
		q := bd.Planes.Get(b.Sides[i].PlaneNum ^ 1)
		mid = winding.Chop(mid, q.Normal, q.Dist, 0)
	}
	if len(mid) < 3 || mid.IsTiny(bd.Epsilon.TinyEdge) {
		return bd.whole(b, planeNum)
	}
	if mid.IsHuge(bd.World.MaxCoord) {
		slog.Debug("huge winding", "entity", b.Entity, "brush", b.Num)
	}

	var frags [2]*Brush
	for i := range frags {
		f := *b
		f.Sides = make([]Side, 0, len(b.Sides)+1)
		frags[i] = &f
	}
	for _, s := range b.Sides {
		if s.Winding == nil {
			continue
		}
		// a side on the split plane comes back as the cut face
		cw := [2]winding.Winding{}
		cw[0], cw[1] = winding.ClipEpsilonStrict(s.Winding, p.Normal, p.Dist, 0)
		for j, w := range cw {
			if w == nil {
				continue
			}
			ns := s
			ns.Winding = w
			ns.VisibleHull = nil
			frags[j].Sides = append(frags[j].Sides, ns)
		}
	}
	for i, f := range frags {
		if len(f.Sides) < 3 || bd.boundFromWindings(f) != nil {
			frags[i] = nil
		}
	}
	if frags[0] == nil || frags[1] == nil {
		return bd.whole(b, planeNum)
	}

	var volume [2]float64
	for i, f := range frags {
		// front faces back into the cut and the other way round
		f.Sides = append(f.Sides, Side{PlaneNum: planeNum ^ i ^ 1})
		if err := bd.CreateWindings(f); err != nil {
			slog.Debug("split fragment invalid", "entity", b.Entity, "brush", b.Num, "err", err.Error())
			return bd.whole(b, planeNum)
		}
		volume[i] = bd.Volume(f)
	}
	// a sliver stays part of the larger fragment
	for i, v := range volume {
		if v < bd.Epsilon.MicroVolume && 2*v < volume[i^1] {
			return bd.whole(b, planeNum)
		}
	}
	return frags[0], frags[1]
}

// whole hands the unsplit brush to the side it reaches farthest into.
func (bd *Builder) whole(b *Brush, planeNum int) (front, back *Brush) {
	if bd.MostlyOnSide(b, planeNum) == winding.SideFront {
		return b.Copy(), nil
	}
	return nil, b.Copy()
}
