// SPDX-License-Identifier: GPL-2.0-or-later

// Package brush holds convex brushes, the windings on their sides and the
// operations that cut them apart while they are filtered into a tree.
package brush

import (
	"log/slog"

	"github.com/pkg/errors"

	"q3map/config"
	"q3map/math/vec"
	"q3map/plane"
	"q3map/shader"
	"q3map/winding"
)

var ErrInvalidBrush = errors.New("invalid brush")

// TexDef is the classic shift/rotate/scale texture projection.
type TexDef struct {
	Shift  [2]float64
	Rotate float64
	Scale  [2]float64
}

type Side struct {
	PlaneNum int
	// nil on sides created by splitting
	Shader  *shader.Info
	TexDef  TexDef
	Winding winding.Winding

	ContentFlags uint32
	SurfaceFlags uint32
	CompileFlags shader.CompileFlags

	// added for collision only, never clips or draws
	Bevel bool
	// some part of the side touches a non opaque leaf
	Visible bool
	// convex hull of the visible parts of the winding
	VisibleHull winding.Winding
}

func NewSide(planeNum int, info *shader.Info, td TexDef) Side {
	return Side{
		PlaneNum:     planeNum,
		Shader:       info,
		TexDef:       td,
		ContentFlags: info.ContentFlags,
		SurfaceFlags: info.SurfaceFlags,
		CompileFlags: info.CompileFlags,
	}
}

type Brush struct {
	// index into the Arena; every fragment keeps the id of its source
	Original int
	Entity   int
	Num      int

	Sides  []Side
	Bounds vec.Box

	ContentFlags uint32
	CompileFlags shader.CompileFlags
	Detail       bool
	Opaque       bool
}

func (b *Brush) AreaPortal() bool {
	return b.CompileFlags.Has(shader.CAreaPortal)
}

// Copy returns a deep copy sharing nothing with b.
func (b *Brush) Copy() *Brush {
	n := *b
	n.Sides = make([]Side, len(b.Sides))
	for i, s := range b.Sides {
		s.Winding = s.Winding.Clone()
		s.VisibleHull = s.VisibleHull.Clone()
		n.Sides[i] = s
	}
	return &n
}

// Classify derives the brush flags from its sides.
func (b *Brush) Classify(fullDetail bool) {
	var contents uint32
	var compile shader.CompileFlags
	for _, s := range b.Sides {
		if s.Bevel {
			continue
		}
		contents |= s.ContentFlags
		compile |= s.CompileFlags
	}
	if compile.Has(shader.CDetail) && compile.Has(shader.CStructural) {
		slog.Warn("Mixed detail and structural, defaulting to structural", "entity", b.Entity, "brush", b.Num)
		compile &^= shader.CDetail
	}
	if fullDetail {
		compile &^= shader.CDetail
	}
	// translucent brushes are detail unless marked structural
	if compile.Has(shader.CTranslucent) && !compile.Has(shader.CStructural) {
		compile |= shader.CDetail
	}
	b.ContentFlags = contents
	b.CompileFlags = compile
	b.Detail = compile.Has(shader.CDetail)
	b.Opaque = !compile.Has(shader.CTranslucent)
}

// Original is the brush as it was read, before any splitting.
type Original struct {
	Brush *Brush
	// index in the brush lump, -1 until emitted
	OutputNum int
	// areas on both sides of an areaportal brush, -1 if unknown
	PortalAreas [2]int
}

// Arena owns the original brushes. Ids are stable.
type Arena struct {
	list []*Original
}

// Add stores b and sets b.Original to its id.
func (a *Arena) Add(b *Brush) int {
	id := len(a.list)
	b.Original = id
	a.list = append(a.list, &Original{
		Brush:       b,
		OutputNum:   -1,
		PortalAreas: [2]int{-1, -1},
	})
	return id
}

func (a *Arena) Get(id int) *Original {
	return a.list[id]
}

func (a *Arena) Len() int {
	return len(a.list)
}

// Builder performs the brush geometry operations. It needs the plane
// table every side refers to.
type Builder struct {
	Planes  *plane.Registry
	Epsilon config.Epsilons
	World   config.World
}

// Finish turns a brush with planes and shaders into a valid brush with
// windings, bounds, bevels and flags.
func (bd *Builder) Finish(b *Brush, fullDetail bool) error {
	if err := bd.RemoveDuplicatePlanes(b); err != nil {
		return err
	}
	if err := bd.CreateWindings(b); err != nil {
		return err
	}
	if err := bd.AddBevels(b); err != nil {
		return err
	}
	b.Classify(fullDetail)
	return nil
}
