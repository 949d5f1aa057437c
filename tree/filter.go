// SPDX-License-Identifier: GPL-2.0-or-later

package tree

import (
	"q3map/brush"
	"q3map/conlog"
	"q3map/plane"
	"q3map/winding"
)

// filterBrush pushes b down the tree, splitting it where it crosses a node
// plane, and returns the number of leaves it ended up in.
func (b *Builder) filterBrush(br *brush.Brush, n *Node) int {
	if br == nil {
		return 0
	}
	if n.IsLeaf() {
		n.Brushes = append(n.Brushes, br)
		if !br.Detail {
			switch {
			case br.Opaque:
				n.Opaque = true
				n.AreaPortal = false
				n.AreaPortalBrush = -1
			case br.AreaPortal() && !n.Opaque:
				n.AreaPortal = true
				n.AreaPortalBrush = br.Original
			}
		}
		return 1
	}
	p := b.Planes.Get(n.PlaneNum)
	switch p.BoxOnPlaneSide(br.Bounds, b.Epsilon.PlaneSide) {
	case plane.BoxFront:
		return b.filterBrush(br, n.Children[0])
	case plane.BoxBack:
		return b.filterBrush(br, n.Children[1])
	}
	front, back := b.Split(br, n.PlaneNum)
	return b.filterBrush(front, n.Children[0]) + b.filterBrush(back, n.Children[1])
}

func (b *Builder) filterBrushes(t *Tree, brushes []*brush.Brush, detail bool) {
	var unique, fragments int
	for _, br := range brushes {
		if br.Detail != detail {
			continue
		}
		unique++
		r := b.filterBrush(br.Copy(), t.HeadNode)
		fragments += r
		if r == 0 {
			continue
		}
		for i := range br.Sides {
			if br.Sides[i].Winding != nil {
				br.Sides[i].Visible = true
			}
		}
	}
	conlog.Verbose(1, "%9d brushes\n", unique)
	conlog.Verbose(1, "%9d fragments\n", fragments)
}

// FilterStructuralBrushes puts copies of the structural brushes into the
// leaves. Opaque brushes make their leaves opaque.
func (b *Builder) FilterStructuralBrushes(t *Tree, brushes []*brush.Brush) {
	conlog.Stage("FilterStructuralBrushesIntoTree")
	b.filterBrushes(t, brushes, false)
}

// FilterDetailBrushes puts copies of the detail brushes into the leaves.
// Detail never changes whether a leaf is opaque.
func (b *Builder) FilterDetailBrushes(t *Tree, brushes []*brush.Brush) {
	conlog.Stage("FilterDetailBrushesIntoTree")
	b.filterBrushes(t, brushes, true)
}

// filterWinding walks w down the tree and calls fn for every non opaque
// leaf that some part of w reaches. A winding on a node plane follows the
// side its own plane faces.
func (b *Builder) filterWinding(w winding.Winding, planeNum int, n *Node, fn func(*Node, winding.Winding)) {
	if w == nil {
		return
	}
	if n.IsLeaf() {
		if !n.Opaque {
			fn(n, w)
		}
		return
	}
	switch planeNum {
	case n.PlaneNum:
		b.filterWinding(w, planeNum, n.Children[0], fn)
		return
	case n.PlaneNum ^ 1:
		b.filterWinding(w, planeNum, n.Children[1], fn)
		return
	}
	p := b.Planes.Get(n.PlaneNum)
	// strict, a winding on the node plane is handled above
	front, back := winding.ClipEpsilonStrict(w, p.Normal, p.Dist, b.Epsilon.On)
	b.filterWinding(front, planeNum, n.Children[0], fn)
	b.filterWinding(back, planeNum, n.Children[1], fn)
}

// ClipSidesIntoTree sets the visible hull of every side to the convex hull
// of the parts of its winding that lie in non opaque leaves.
func (b *Builder) ClipSidesIntoTree(t *Tree, brushes []*brush.Brush) {
	conlog.Stage("ClipSidesIntoTree")
	var visible int
	for _, br := range brushes {
		for i := range br.Sides {
			s := &br.Sides[i]
			s.VisibleHull = nil
			if s.Winding == nil {
				continue
			}
			normal := b.Planes.Get(s.PlaneNum).Normal
			b.filterWinding(s.Winding.Clone(), s.PlaneNum, t.HeadNode, func(_ *Node, w winding.Winding) {
				s.VisibleHull = winding.AddToConvexHull(s.VisibleHull, w, normal, b.Epsilon.On)
			})
			s.Visible = s.VisibleHull != nil
			if s.Visible {
				visible++
			}
		}
	}
	conlog.Verbose(1, "%9d visible sides\n", visible)
}

// FilterSurface adds surface to every non opaque leaf the winding touches
// and returns the number of leaves.
func (b *Builder) FilterSurface(t *Tree, w winding.Winding, planeNum int, surface int) int {
	refs := 0
	b.filterWinding(w.Clone(), planeNum, t.HeadNode, func(n *Node, _ winding.Winding) {
		for _, s := range n.Surfaces {
			if s == surface {
				return
			}
		}
		n.Surfaces = append(n.Surfaces, surface)
		refs++
	})
	return refs
}
