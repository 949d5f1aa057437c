// SPDX-License-Identifier: GPL-2.0-or-later
package bsp

import (
	"github.com/pkg/errors"

	"q3map/math/vec"
)

// PointInLeaf returns the index of the leaf of model m containing p.
func (f *File) PointInLeaf(m int, p vec.Vec3) (int, error) {
	if m < 0 || m >= len(f.Models) || len(f.Leafs) == 0 {
		return 0, errors.Errorf("PointInLeaf: bad model %d", m)
	}
	// only the world has nodes
	if m != 0 {
		return 0, errors.Errorf("PointInLeaf: model %d has no nodes", m)
	}
	if len(f.Nodes) == 0 {
		return 0, nil
	}

	n := int32(0)
	for n >= 0 {
		if int(n) >= len(f.Nodes) {
			return 0, errors.Errorf("PointInLeaf: bad node %d", n)
		}
		node := &f.Nodes[n]
		if int(node.PlaneNum) >= len(f.Planes) {
			return 0, errors.Errorf("PointInLeaf: bad plane %d", node.PlaneNum)
		}
		plane := &f.Planes[node.PlaneNum]
		normal := vec.Vec3{float64(plane.Normal[0]), float64(plane.Normal[1]), float64(plane.Normal[2])}
		d := vec.Dot(p, normal) - float64(plane.Dist)
		if d >= 0 {
			n = node.Children[0]
		} else {
			n = node.Children[1]
		}
	}
	return int(-n - 1), nil
}

// LeafSurfaceRefs returns the surface indices referenced by leaf l.
func (f *File) LeafSurfaceRefs(l int) []int32 {
	leaf := &f.Leafs[l]
	return f.LeafSurfaces[leaf.FirstLeafSurface : leaf.FirstLeafSurface+leaf.NumLeafSurfaces]
}

// LeafBrushRefs returns the brush indices referenced by leaf l.
func (f *File) LeafBrushRefs(l int) []int32 {
	leaf := &f.Leafs[l]
	return f.LeafBrushes[leaf.FirstLeafBrush : leaf.FirstLeafBrush+leaf.NumLeafBrushes]
}
