// SPDX-License-Identifier: GPL-2.0-or-later

package compile

import (
	"context"

	"q3map/brush"
	"q3map/conlog"
	"q3map/math/vec"
	"q3map/surface"
	"q3map/tree"
)

type world struct {
	tree     *tree.Tree
	surfaces []*surface.Surface
	status   tree.LeakStatus
	trace    []vec.Vec3
	// outside filled, the portal file is meaningful
	sealed   bool
	clusters int
	areas    int
}

// structuralTree builds a tree from faces and fills it with the
// structural brushes.
func (c *Context) structuralTree(ctx context.Context, faces []*tree.Face, brushes []*brush.Brush) (*tree.Tree, error) {
	t, err := c.Tree.FaceBSP(ctx, faces)
	if err != nil {
		return nil, err
	}
	if err := c.Tree.MakeTreePortals(t); err != nil {
		return nil, err
	}
	c.Tree.FilterStructuralBrushes(t, brushes)
	return t, nil
}

// processWorld runs the world through the tree stages. A leaked world
// stops here unless leaks are ignored.
func (c *Context) processWorld(ctx context.Context, brushes []*brush.Brush, occ []tree.Occupant) (*world, error) {
	conlog.Stage("ProcessWorldModel")
	tb := c.Tree
	t, err := c.structuralTree(ctx, tb.StructuralFaces(brushes), brushes)
	if err != nil {
		return nil, err
	}

	w := &world{tree: t}
	w.status = tb.FloodEntities(t, occ)
	switch w.status {
	case tree.Leaked:
		w.trace = tree.LeakTrace(t)
		conlog.Printf("**********************\n******* leaked *******\n**********************\n")
		if c.Config.LeakTest {
			return w, ErrLeaked
		}
		if c.Config.IgnoreLeaks {
			c.Log.Warn("Map leaked, continuing as if sealed")
			w.sealed = true
		}
	case tree.Good:
		w.sealed = true
	case tree.Empty:
		c.Log.Warn("No entities in the map, the outside is not filled")
	}
	if w.sealed {
		tree.FillOutside(t)
	}

	hulls := !c.Config.NoVisibleHull
	if hulls {
		tb.ClipSidesIntoTree(t, brushes)
		t.Free()
		if t, err = c.structuralTree(ctx, tb.VisibleFaces(brushes), brushes); err != nil {
			return nil, err
		}
		w.tree = t
	}

	w.areas = tb.FloodAreas(t)
	if w.status != tree.Leaked || c.Config.IgnoreLeaks {
		tb.FilterDetailBrushes(t, brushes)
	}

	w.surfaces = surface.FromBrushes(c.Planes, brushes, hulls)
	unreferenced := 0
	for i, s := range w.surfaces {
		if tb.FilterSurface(t, s.Winding(), s.PlaneNum, i) == 0 {
			unreferenced++
		}
	}
	conlog.Verbose(1, "%9d surfaces in no leaf\n", unreferenced)

	w.clusters = tree.NumberClusters(t)
	return w, nil
}

// processSubModel puts the brushes of a brush entity into a tree of a
// single leaf. All sides are visible.
func (c *Context) processSubModel(brushes []*brush.Brush) (*tree.Tree, []*surface.Surface) {
	t := tree.LeafTree(brushes)
	c.Tree.ClipSidesIntoTree(t, brushes)
	surfs := surface.FromBrushes(c.Planes, brushes, true)
	for i, s := range surfs {
		c.Tree.FilterSurface(t, s.Winding(), s.PlaneNum, i)
	}
	return t, surfs
}
