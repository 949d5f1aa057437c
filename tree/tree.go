// SPDX-License-Identifier: GPL-2.0-or-later

// Package tree builds the binary space partition of a model from its brush
// faces and derives portals, leaks, areas and clusters from it.
package tree

import (
	"fmt"

	"q3map/brush"
	"q3map/config"
	"q3map/math/vec"
	"q3map/shader"
)

const PlaneNumLeaf = -1

// InvariantError reports a broken internal invariant. It is raised with
// panic and only recovered at the top of a compile.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string {
	return "invariant violated: " + e.Msg
}

func invariantf(format string, args ...interface{}) {
	panic(&InvariantError{Msg: fmt.Sprintf(format, args...)})
}

type Node struct {
	// PlaneNumLeaf for leaves, an even plane index otherwise
	PlaneNum int
	Children [2]*Node
	Parent   *Node
	Bounds   vec.Box
	// flags of the face that chose the split plane
	CompileFlags shader.CompileFlags

	Portals *Portal

	// leaf data
	Opaque     bool
	AreaPortal bool
	// original id of the areaportal brush that set AreaPortal
	AreaPortalBrush int
	Brushes         []*brush.Brush
	Cluster         int
	Area            int
	// flood distance from an occupant, 0 if never reached
	Occupied int
	Occupant *Occupant
	// draw surface indices referenced by this leaf
	Surfaces []int
}

func newLeaf() *Node {
	return &Node{
		PlaneNum:        PlaneNumLeaf,
		Cluster:         -1,
		Area:            -1,
		AreaPortalBrush: -1,
	}
}

func (n *Node) IsLeaf() bool {
	return n.PlaneNum == PlaneNumLeaf
}

// Occupant is an entity seeding the leak flood.
type Occupant struct {
	Entity int
	Origin vec.Vec3
}

type Tree struct {
	HeadNode *Node
	// the void beyond the head node portals
	Outside *Node
	Bounds  vec.Box
}

func newTree() *Tree {
	return &Tree{
		Outside: newLeaf(),
		Bounds:  vec.EmptyBox(),
	}
}

// Leaves calls fn for every leaf, front children first.
func (t *Tree) Leaves(fn func(*Node)) {
	leaves(t.HeadNode, fn)
}

func leaves(n *Node, fn func(*Node)) {
	if n.IsLeaf() {
		fn(n)
		return
	}
	leaves(n.Children[0], fn)
	leaves(n.Children[1], fn)
}

// PointLeaf returns the leaf containing p. Points on a plane go to the
// front.
func (b *Builder) PointLeaf(t *Tree, p vec.Vec3) *Node {
	n := t.HeadNode
	for !n.IsLeaf() {
		if b.Planes.Get(n.PlaneNum).Distance(p) >= 0 {
			n = n.Children[0]
		} else {
			n = n.Children[1]
		}
	}
	return n
}

// Free unlinks all portals and drops the nodes.
func (t *Tree) Free() {
	if t.HeadNode != nil {
		freeNode(t.HeadNode)
	}
	for t.Outside.Portals != nil {
		p := t.Outside.Portals
		for _, n := range p.Nodes {
			if n != nil {
				RemovePortalFromNode(p, n)
			}
		}
	}
	t.HeadNode = nil
}

func freeNode(n *Node) {
	if !n.IsLeaf() {
		freeNode(n.Children[0])
		freeNode(n.Children[1])
	}
	for n.Portals != nil {
		p := n.Portals
		for _, o := range p.Nodes {
			if o != nil {
				RemovePortalFromNode(p, o)
			}
		}
	}
	n.Brushes = nil
	n.Children = [2]*Node{}
}

// Builder carries what the tree stages share.
type Builder struct {
	*brush.Builder
	Tree  config.Tree
	Arena *brush.Arena

	// how often each plane was chosen, used by the alternate weights
	planeUsage map[int]int
}

func NewBuilder(bb *brush.Builder, tc config.Tree, arena *brush.Arena) *Builder {
	return &Builder{
		Builder:    bb,
		Tree:       tc,
		Arena:      arena,
		planeUsage: make(map[int]int),
	}
}

// leafCount returns the number of leaves and how many of them are opaque.
func (t *Tree) leafCount() (total, opaque int) {
	t.Leaves(func(n *Node) {
		total++
		if n.Opaque {
			opaque++
		}
	})
	return total, opaque
}

// LeafTree returns a tree of a single leaf holding copies of brushes.
// Brush entities other than the world compile into one.
func LeafTree(brushes []*brush.Brush) *Tree {
	t := newTree()
	t.HeadNode = newLeaf()
	for _, br := range brushes {
		t.HeadNode.Brushes = append(t.HeadNode.Brushes, br.Copy())
		t.Bounds.AddBox(br.Bounds)
	}
	t.HeadNode.Bounds = t.Bounds
	return t
}
