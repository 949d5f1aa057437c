// SPDX-License-Identifier: GPL-2.0-or-later

package compile

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"q3map/bsp"
	"q3map/conlog"
	"q3map/emit"
	"q3map/leakfile"
	"q3map/mapfile"
	"q3map/math/vec"
	"q3map/tree"
)

type Result struct {
	Build  uuid.UUID
	Status tree.LeakStatus
	// entity origin to the outside, set if the map leaked
	Trace []vec.Vec3
	// the world tree, kept for the portal file
	Tree     *tree.Tree
	Sealed   bool
	Clusters int
	Areas    int
	File     *bsp.File
}

// Report returns the build report of r for the map at path.
func (r *Result) Report(path string) *leakfile.Report {
	rep := &leakfile.Report{
		Build:  r.Build,
		Map:    path,
		Status: r.Status.String(),
		Counts: map[string]int{
			"clusters": r.Clusters,
			"areas":    r.Areas,
		},
		Trace: r.Trace,
	}
	if f := r.File; f != nil {
		rep.Counts["planes"] = len(f.Planes)
		rep.Counts["nodes"] = len(f.Nodes)
		rep.Counts["leafs"] = len(f.Leafs)
		rep.Counts["brushes"] = len(f.Brushes)
		rep.Counts["surfaces"] = len(f.Surfaces)
		rep.Counts["models"] = len(f.Models)
		rep.Counts["shaders"] = len(f.Shaders)
	}
	return rep
}

// Run compiles the map entities. A broken internal invariant aborts the
// compile with an error instead of a crash. With LeakTest set a leaked map
// returns ErrLeaked together with the partial result.
func (c *Context) Run(ctx context.Context, ms []*mapfile.Entity) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			ie, ok := r.(*tree.InvariantError)
			if !ok {
				panic(r)
			}
			res, err = nil, errors.Wrap(ie, "compile aborted")
		}
	}()

	ents, err := c.loadEntities(ms)
	if err != nil {
		return nil, err
	}
	res = &Result{Build: c.Build}

	w, err := c.processWorld(ctx, ents[0].brushes, occupants(ents))
	if w != nil {
		res.Status, res.Trace = w.status, w.trace
	}
	if err != nil {
		return res, err
	}
	res.Tree, res.Sealed = w.tree, w.sealed
	res.Clusters, res.Areas = w.clusters, w.areas
	if err := bsp.CheckLimit("AREAS", bsp.MaxAreas, w.areas); err != nil {
		return res, err
	}

	conlog.Stage("EmitModels")
	em := emit.New(c.Planes, c.Arena)
	if _, err := em.EmitModel(emit.Model{Brushes: ents[0].brushes, Surfaces: w.surfaces, Tree: w.tree}); err != nil {
		return res, err
	}
	for _, e := range ents[1:] {
		if len(e.brushes) == 0 {
			continue
		}
		t, surfs := c.processSubModel(e.brushes)
		n, err := em.EmitModel(emit.Model{Brushes: e.brushes, Surfaces: surfs, Tree: t})
		if err != nil {
			return res, errors.Wrapf(err, "entity %d", e.num)
		}
		e.Set("model", fmt.Sprintf("*%d", n))
	}

	out := make([]*bsp.Entity, len(ents))
	for i, e := range ents {
		out[i] = e.Entity
	}
	res.File = em.Finish(out)
	if err := res.File.CheckLimits(); err != nil {
		return res, err
	}
	conlog.Verbose(1, "%9d models\n%9d planes\n", len(res.File.Models), len(res.File.Planes))
	return res, nil
}
