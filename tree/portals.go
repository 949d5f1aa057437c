// SPDX-License-Identifier: GPL-2.0-or-later

package tree

import (
	"log/slog"

	"github.com/pkg/errors"

	"q3map/conlog"
	"q3map/math/vec"
	"q3map/plane"
	"q3map/shader"
	"q3map/winding"
)

// Portal is the convex boundary between two nodes. Nodes[0] lies in front
// of the plane.
type Portal struct {
	Plane plane.Plane
	// the node whose split created the portal, nil for head node portals
	OnNode       *Node
	Nodes        [2]*Node
	Next         [2]*Portal
	Winding      winding.Winding
	CompileFlags shader.CompileFlags
}

// side returns the index n has in p.Nodes.
func (p *Portal) side(n *Node) int {
	switch n {
	case p.Nodes[0]:
		return 0
	case p.Nodes[1]:
		return 1
	}
	invariantf("portal not bounding node")
	return 0
}

// Other returns the node on the far side of p as seen from n.
func (p *Portal) Other(n *Node) *Node {
	return p.Nodes[p.side(n)^1]
}

// NodePortals calls fn for each portal of n.
func NodePortals(n *Node, fn func(*Portal)) {
	for p := n.Portals; p != nil; {
		next := p.Next[p.side(n)]
		fn(p)
		p = next
	}
}

// Passable reports whether vis and areas may see through p.
func (p *Portal) Passable() bool {
	if p.OnNode == nil {
		// to the outside
		return false
	}
	if !p.Nodes[0].IsLeaf() || !p.Nodes[1].IsLeaf() {
		invariantf("passable check on a portal between non leaf nodes")
	}
	if p.CompileFlags.Has(shader.CAntiPortal) {
		return false
	}
	return !p.Nodes[0].Opaque && !p.Nodes[1].Opaque
}

// AddPortalToNodes links p in front and back.
func AddPortalToNodes(p *Portal, front, back *Node) {
	if p.Nodes[0] != nil || p.Nodes[1] != nil {
		invariantf("portal already linked")
	}
	p.Nodes[0] = front
	p.Next[0] = front.Portals
	front.Portals = p

	p.Nodes[1] = back
	p.Next[1] = back.Portals
	back.Portals = p
}

// RemovePortalFromNode unlinks p from the portal list of n.
func RemovePortalFromNode(p *Portal, n *Node) {
	pp := &n.Portals
	for {
		t := *pp
		if t == nil {
			invariantf("portal not in leaf")
		}
		if t == p {
			break
		}
		switch n {
		case t.Nodes[0]:
			pp = &t.Next[0]
		case t.Nodes[1]:
			pp = &t.Next[1]
		default:
			invariantf("portal not bounding leaf")
		}
	}
	if p.Nodes[0] == n {
		*pp = p.Next[0]
		p.Nodes[0] = nil
	} else if p.Nodes[1] == n {
		*pp = p.Next[1]
		p.Nodes[1] = nil
	}
}

// makeHeadnodePortals encloses the tree bounds in six inward facing
// portals to the outside node.
func (b *Builder) makeHeadnodePortals(t *Tree) error {
	bounds := t.Bounds.Expand(b.World.SideSpace)
	if !bounds.HasVolume() {
		return errors.New("backwards tree volume")
	}
	t.Outside.Opaque = false

	var portals [6]*Portal
	var planes [6]plane.Plane
	for i := 0; i < 3; i++ {
		for j := 0; j < 2; j++ {
			n := j*3 + i
			var normal vec.Vec3
			var dist float64
			if j == 0 {
				normal[i] = 1
				dist = bounds.Mins[i]
			} else {
				normal[i] = -1
				dist = -bounds.Maxs[i]
			}
			planes[n] = plane.Plane{Normal: normal, Dist: dist, Type: plane.Type(i)}
			p := &Portal{
				Plane:   planes[n],
				Winding: winding.BaseForPlane(normal, dist, b.World.Size()),
			}
			portals[n] = p
			AddPortalToNodes(p, t.HeadNode, t.Outside)
		}
	}
	for i := range portals {
		for j := range planes {
			if i == j {
				continue
			}
			portals[i].Winding = winding.Chop(portals[i].Winding, planes[j].Normal, planes[j].Dist, b.Epsilon.On)
		}
	}
	return nil
}

// baseWindingForNode returns the node plane clipped by all its ancestors.
func (b *Builder) baseWindingForNode(n *Node) winding.Winding {
	p := b.Planes.Get(n.PlaneNum)
	w := winding.BaseForPlane(p.Normal, p.Dist, b.World.Size())
	for parent := n.Parent; parent != nil && w != nil; parent = parent.Parent {
		pp := b.Planes.Get(parent.PlaneNum)
		if parent.Children[0] == n {
			w = winding.Chop(w, pp.Normal, pp.Dist, b.Epsilon.BaseWinding)
		} else {
			w = winding.Chop(w, vec.Negate(pp.Normal), -pp.Dist, b.Epsilon.BaseWinding)
		}
		n = parent
	}
	return w
}

// makeNodePortal creates the portal between the two children of n.
func (b *Builder) makeNodePortal(n *Node) {
	w := b.baseWindingForNode(n)
	for p := n.Portals; p != nil && w != nil; {
		s := p.side(n)
		normal, dist := p.Plane.Normal, p.Plane.Dist
		if s == 1 {
			normal, dist = vec.Negate(normal), -dist
		}
		w = winding.Chop(w, normal, dist, b.Epsilon.Clip)
		p = p.Next[s]
	}
	if w == nil || w.IsTiny(b.Epsilon.TinyEdge) {
		return
	}
	np := &Portal{
		Plane:        *b.Planes.Get(n.PlaneNum),
		OnNode:       n,
		Winding:      w,
		CompileFlags: n.CompileFlags,
	}
	AddPortalToNodes(np, n.Children[0], n.Children[1])
}

// splitNodePortals moves the portals of n onto its children, cutting those
// that cross the node plane.
func (b *Builder) splitNodePortals(n *Node) {
	pl := b.Planes.Get(n.PlaneNum)
	f, bk := n.Children[0], n.Children[1]

	for p := n.Portals; p != nil; {
		s := p.side(n)
		next := p.Next[s]
		other := p.Nodes[s^1]
		RemovePortalFromNode(p, p.Nodes[0])
		RemovePortalFromNode(p, p.Nodes[1])

		// never strict, one side always keeps the portal
		fw, bw := winding.ClipEpsilon(p.Winding, pl.Normal, pl.Dist, b.Epsilon.SplitWinding)
		if fw != nil && fw.IsTiny(b.Epsilon.TinyEdge) {
			fw = nil
		}
		if bw != nil && bw.IsTiny(b.Epsilon.TinyEdge) {
			bw = nil
		}
		link := func(p *Portal, child *Node) {
			if s == 0 {
				AddPortalToNodes(p, child, other)
			} else {
				AddPortalToNodes(p, other, child)
			}
		}
		switch {
		case fw == nil && bw == nil:
		case fw == nil:
			link(p, bk)
		case bw == nil:
			link(p, f)
		default:
			np := *p
			np.Nodes = [2]*Node{}
			np.Next = [2]*Portal{}
			np.Winding = bw
			p.Winding = fw
			link(p, f)
			link(&np, bk)
		}
		p = next
	}
	n.Portals = nil
}

func (b *Builder) calcNodeBounds(n *Node) {
	n.Bounds = vec.EmptyBox()
	NodePortals(n, func(p *Portal) {
		for _, pt := range p.Winding {
			n.Bounds.AddPoint(pt)
		}
	})
}

func (b *Builder) makeTreePortals(n *Node) {
	b.calcNodeBounds(n)
	if !n.Bounds.HasVolume() {
		slog.Warn("Node without a volume", "bounds", n.Bounds)
	} else if !n.Bounds.Within(b.World.MinCoord, b.World.MaxCoord) {
		slog.Warn("Node with unbounded volume", "bounds", n.Bounds)
	}
	if n.IsLeaf() {
		return
	}
	b.makeNodePortal(n)
	b.splitNodePortals(n)
	b.makeTreePortals(n.Children[0])
	b.makeTreePortals(n.Children[1])
}

// MakeTreePortals builds the portals between all leaves of t.
func (b *Builder) MakeTreePortals(t *Tree) error {
	conlog.Stage("MakeTreePortals")
	if err := b.makeHeadnodePortals(t); err != nil {
		return err
	}
	b.makeTreePortals(t.HeadNode)
	return nil
}
