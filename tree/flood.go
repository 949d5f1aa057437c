// SPDX-License-Identifier: GPL-2.0-or-later

package tree

import (
	"log/slog"

	"q3map/conlog"
	"q3map/math/vec"
)

type LeakStatus int

const (
	// entities are sealed in
	Good LeakStatus = iota
	// an entity reaches the outside
	Leaked
	// no entity sits in open space
	Empty
)

func (s LeakStatus) String() string {
	switch s {
	case Good:
		return "good"
	case Leaked:
		return "leaked"
	case Empty:
		return "empty"
	}
	return "unknown"
}

// floodPortals marks every node reachable from start with its portal
// distance. Any portal is crossed as long as the far node is not opaque.
func floodPortals(start *Node) {
	start.Occupied = 1
	queue := []*Node{start}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		NodePortals(n, func(p *Portal) {
			o := p.Other(n)
			if o.Occupied != 0 || o.Opaque {
				return
			}
			o.Occupied = n.Occupied + 1
			queue = append(queue, o)
		})
	}
}

// placeOccupant starts a flood in the leaf containing o. It reports false
// if that leaf is opaque.
func (b *Builder) placeOccupant(t *Tree, o *Occupant) bool {
	n := b.PointLeaf(t, o.Origin)
	if n.Opaque {
		return false
	}
	if n.Occupied != 0 {
		// already flooded by an earlier entity
		return true
	}
	n.Occupant = o
	floodPortals(n)
	return true
}

// FloodEntities floods the tree from every occupant. Origins are lifted by
// one unit to keep entities on a floor out of it.
func (b *Builder) FloodEntities(t *Tree, occupants []Occupant) LeakStatus {
	conlog.Stage("FloodEntities")
	inside := false
	for _, o := range occupants {
		o.Origin[2]++
		if b.placeOccupant(t, &o) {
			inside = true
		}
	}
	if !inside {
		conlog.Verbose(1, "no entities in open -- no filling\n")
		return Empty
	}
	if t.Outside.Occupied != 0 {
		conlog.Verbose(1, "entity reached from outside -- leak detected\n")
		return Leaked
	}
	return Good
}

// LeakTrace returns the path of a leak. It starts at the entity origin and
// passes through the portal centers on the shortest way to the outside.
// The result is empty if nothing leaked.
func LeakTrace(t *Tree) []vec.Vec3 {
	n := t.Outside
	if n.Occupied == 0 {
		return nil
	}
	var path []vec.Vec3
	for n.Occupied > 1 {
		var best *Portal
		var bestNode *Node
		next := n.Occupied
		NodePortals(n, func(p *Portal) {
			o := p.Other(n)
			if o.Occupied != 0 && o.Occupied < next {
				best, bestNode, next = p, o, o.Occupied
			}
		})
		if best == nil {
			invariantf("leak trace without a way back")
		}
		path = append(path, best.Winding.Center())
		n = bestNode
	}
	if n.Occupant != nil {
		path = append(path, n.Occupant.Origin)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// FillOutside makes every leaf the flood did not reach opaque.
func FillOutside(t *Tree) {
	conlog.Stage("FillOutside")
	var outside, inside, solid int
	t.Leaves(func(n *Node) {
		switch {
		case n.Occupied != 0:
			inside++
		case n.Opaque:
			solid++
		default:
			outside++
			n.Opaque = true
		}
	})
	conlog.Verbose(1, "%9d solid leafs\n", solid)
	conlog.Verbose(1, "%9d leafs filled\n", outside)
	conlog.Verbose(1, "%9d inside leafs\n", inside)
}

// floodArea assigns area to all leaves reachable from n without crossing
// an areaportal leaf.
func (b *Builder) floodArea(n *Node, area int) {
	queue := []*Node{n}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if n.AreaPortal {
			if n.Area == -1 {
				n.Area = area
			}
			o := b.Arena.Get(n.AreaPortalBrush)
			if o.PortalAreas[0] == area || o.PortalAreas[1] == area {
				continue
			}
			switch {
			case o.PortalAreas[1] != -1:
				slog.Warn("Areaportal brush touches more than two areas", "brush", o.Brush.Num, "entity", o.Brush.Entity)
			case o.PortalAreas[0] != -1:
				o.PortalAreas[1] = area
			default:
				o.PortalAreas[0] = area
			}
			continue
		}
		if n.Area != -1 {
			continue
		}
		n.Area = area
		NodePortals(n, func(p *Portal) {
			// areaportal leaves take the area but the flood stops there
			if p.Passable() {
				queue = append(queue, p.Other(n))
			}
		})
	}
}

// FloodAreas groups the open leaves into areas separated by areaportals and
// returns the number of areas.
func (b *Builder) FloodAreas(t *Tree) int {
	conlog.Stage("FloodAreas")
	areas := 0
	t.Leaves(func(n *Node) {
		if n.Opaque || n.AreaPortal || n.Area != -1 {
			return
		}
		b.floodArea(n, areas)
		areas++
	})
	t.Leaves(func(n *Node) {
		if n.Opaque {
			return
		}
		if n.Area == -1 {
			slog.Warn("Leaf without an area", "cluster", n.Cluster)
		}
		if n.AreaPortal {
			o := b.Arena.Get(n.AreaPortalBrush)
			if o.PortalAreas[0] == -1 || o.PortalAreas[1] == -1 {
				slog.Warn("Areaportal brush doesn't touch two areas", "brush", o.Brush.Num, "entity", o.Brush.Entity)
			}
		}
	})
	conlog.Verbose(1, "%9d areas\n", areas)
	return areas
}
