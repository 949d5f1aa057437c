// SPDX-License-Identifier: GPL-2.0-or-later

package tree

import (
	"context"
	"math"

	"github.com/pkg/errors"

	"q3map/brush"
	"q3map/conlog"
	"q3map/math/vec"
	"q3map/shader"
	"q3map/winding"
)

// ErrTooDeep is returned when the face tree exceeds the configured depth.
var ErrTooDeep = errors.New("face tree too deep")

// Face is a convex polygon offered as a candidate split plane.
type Face struct {
	// always even, the face itself may point either way
	PlaneNum     int
	Winding      winding.Winding
	Priority     int
	CompileFlags shader.CompileFlags
}

func (b *Builder) priority(f shader.CompileFlags) int {
	switch {
	case f.Has(shader.CAreaPortal):
		return b.Tree.AreaportalPriority
	case f.Has(shader.CAntiPortal):
		return b.Tree.AntiportalPriority
	case f.Has(shader.CHint):
		return b.Tree.HintPriority
	}
	return 0
}

func (b *Builder) faceList(brushes []*brush.Brush, hull bool) []*Face {
	var faces []*Face
	for _, br := range brushes {
		if br.Detail {
			continue
		}
		for i := range br.Sides {
			s := &br.Sides[i]
			w := s.Winding
			if hull {
				w = s.VisibleHull
			}
			if w == nil || s.Bevel || s.CompileFlags.Has(shader.CSkip) {
				continue
			}
			faces = append(faces, &Face{
				PlaneNum:     s.PlaneNum &^ 1,
				Winding:      w.Clone(),
				Priority:     b.priority(s.CompileFlags),
				CompileFlags: s.CompileFlags,
			})
		}
	}
	return faces
}

// StructuralFaces returns the side windings of all structural brushes.
func (b *Builder) StructuralFaces(brushes []*brush.Brush) []*Face {
	return b.faceList(brushes, false)
}

// VisibleFaces returns the visible hulls of all structural brushes.
func (b *Builder) VisibleFaces(brushes []*brush.Brush) []*Face {
	return b.faceList(brushes, true)
}

// blockSplit returns an axial plane if the node crosses a block boundary.
func (b *Builder) blockSplit(n *Node) (int, bool, error) {
	for i, size := range b.Tree.BlockSize {
		if size <= 0 || n.Bounds.IsEmpty() {
			continue
		}
		dist := size * (math.Floor(n.Bounds.Mins[i]/size) + 1)
		if n.Bounds.Maxs[i] > dist {
			var normal vec.Vec3
			normal[i] = 1
			pn, err := b.Planes.Find(normal, dist)
			return pn, true, err
		}
	}
	return 0, false, nil
}

type splitScore struct {
	value int
	axial bool
}

func (s splitScore) better(o splitScore) bool {
	if s.value != o.value {
		return s.value > o.value
	}
	return s.axial && !o.axial
}

// SelectSplitPlane picks the plane to split n by. It returns false if the
// node is a leaf.
func (b *Builder) SelectSplitPlane(n *Node, faces []*Face) (int, shader.CompileFlags, bool, error) {
	if pn, ok, err := b.blockSplit(n); ok || err != nil {
		return pn, 0, ok, err
	}
	if len(faces) == 0 {
		return 0, 0, false, nil
	}

	checked := make(map[int]bool)
	var best *Face
	var bestScore splitScore
	for _, split := range faces {
		if checked[split.PlaneNum] {
			continue
		}
		checked[split.PlaneNum] = true
		p := b.Planes.Get(split.PlaneNum)
		var facing, splits, front, back int
		for _, check := range faces {
			if check.PlaneNum == split.PlaneNum {
				facing++
				continue
			}
			switch winding.OnPlaneSide(check.Winding, p.Normal, p.Dist, b.Epsilon.On) {
			case winding.SideCross:
				splits++
			case winding.SideFront:
				front++
			case winding.SideBack:
				back++
			}
		}
		var value int
		if b.Tree.AlternateSplitWeights {
			value = 20000 - abs(front-back) - b.planeUsage[split.PlaneNum] - facing - 5*splits
			value += int(10 * split.Winding.Area())
		} else {
			value = 5*facing - 5*splits - abs(front-back)
		}
		value += split.Priority
		s := splitScore{value: value, axial: p.Type.Axial()}
		if best == nil || s.better(bestScore) {
			best, bestScore = split, s
		}
	}
	b.planeUsage[best.PlaneNum]++
	return best.PlaneNum, best.CompileFlags, true, nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func (b *Builder) buildFaceTree(ctx context.Context, n *Node, faces []*Face, depth int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth > b.Tree.MaxDepth {
		return errors.Wrapf(ErrTooDeep, "depth %d", depth)
	}
	pn, flags, ok, err := b.SelectSplitPlane(n, faces)
	if err != nil {
		return err
	}
	if !ok {
		n.PlaneNum = PlaneNumLeaf
		return nil
	}
	n.PlaneNum = pn
	n.CompileFlags = flags
	p := b.Planes.Get(pn)

	var lists [2][]*Face
	for _, f := range faces {
		if f.PlaneNum == pn {
			continue
		}
		switch winding.OnPlaneSide(f.Winding, p.Normal, p.Dist, b.Epsilon.On) {
		case winding.SideCross:
			// strict, a face left with nothing was virtually on the plane
			fw, bw := winding.ClipEpsilonStrict(f.Winding, p.Normal, p.Dist, b.Epsilon.Clip*2)
			for i, w := range [2]winding.Winding{fw, bw} {
				if w == nil {
					continue
				}
				nf := *f
				nf.Winding = w
				lists[i] = append(lists[i], &nf)
			}
		case winding.SideFront:
			lists[0] = append(lists[0], f)
		case winding.SideBack:
			lists[1] = append(lists[1], f)
		}
	}

	for i := range n.Children {
		c := newLeaf()
		c.Parent = n
		c.Bounds = n.Bounds
		n.Children[i] = c
	}
	if p.Type.Axial() {
		i := int(p.Type)
		n.Children[0].Bounds.Mins[i] = p.Dist
		n.Children[1].Bounds.Maxs[i] = p.Dist
	}
	for i, c := range n.Children {
		if err := b.buildFaceTree(ctx, c, lists[i], depth+1); err != nil {
			return err
		}
	}
	return nil
}

// FaceBSP partitions space by the face planes.
func (b *Builder) FaceBSP(ctx context.Context, faces []*Face) (*Tree, error) {
	t := newTree()
	for _, f := range faces {
		t.Bounds.AddBox(f.Winding.Bounds())
	}
	conlog.Verbose(1, "%9d faces\n", len(faces))
	t.HeadNode = newLeaf()
	t.HeadNode.Bounds = t.Bounds
	if err := b.buildFaceTree(ctx, t.HeadNode, faces, 0); err != nil {
		return nil, err
	}
	total, _ := t.leafCount()
	conlog.Verbose(1, "%9d leafs\n", total)
	return t, nil
}
