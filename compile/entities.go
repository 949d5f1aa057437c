// SPDX-License-Identifier: GPL-2.0-or-later

package compile

import (
	"github.com/pkg/errors"

	"q3map/brush"
	"q3map/bsp"
	"q3map/conlog"
	"q3map/mapfile"
	"q3map/plane"
	"q3map/shader"
	"q3map/tree"
)

type entity struct {
	*bsp.Entity
	num     int
	brushes []*brush.Brush
}

func classname(e *bsp.Entity) string {
	n, _ := e.Name()
	return n
}

// side converts a map side. Map content flags may only add detail.
func (c *Context) side(ms mapfile.Side) (brush.Side, error) {
	pn, err := c.Planes.FindPoints(ms.Points[0], ms.Points[1], ms.Points[2])
	if err != nil {
		if errors.Cause(err) == plane.ErrBadNormal {
			return brush.Side{}, errors.Wrap(brush.ErrInvalidBrush, err.Error())
		}
		return brush.Side{}, err
	}
	s := brush.NewSide(pn, c.Shaders.Lookup(ms.Texture), ms.TexDef)
	if ms.ContentFlags&shader.ContentsDetail != 0 {
		s.ContentFlags |= shader.ContentsDetail
		s.CompileFlags |= shader.CDetail
	}
	s.SurfaceFlags |= ms.SurfaceFlags
	return s, nil
}

// brush builds and registers the brush mb of e.
func (c *Context) brush(e *mapfile.Entity, mb mapfile.Brush) (*brush.Brush, error) {
	b := &brush.Brush{Entity: e.Num, Num: mb.Num}
	for _, ms := range mb.Sides {
		s, err := c.side(ms)
		if err != nil {
			return nil, errors.Wrapf(err, "entity %d brush %d", e.Num, mb.Num)
		}
		b.Sides = append(b.Sides, s)
	}
	if err := c.Brushes.Finish(b, c.Config.FullDetail); err != nil {
		return nil, err
	}
	c.Arena.Add(b)
	return b, nil
}

func (c *Context) addBrushes(dst *entity, e *mapfile.Entity) error {
	for _, mb := range e.Brushes {
		b, err := c.brush(e, mb)
		if errors.Cause(err) == brush.ErrInvalidBrush {
			c.Log.Warn("Dropping invalid brush", "entity", e.Num, "brush", mb.Num, "line", mb.Line, "err", err.Error())
			continue
		}
		if err != nil {
			return err
		}
		if b.CompileFlags.Has(shader.COrigin) {
			conlog.Verbose(2, "entity %d: skipping origin brush %d\n", e.Num, mb.Num)
			continue
		}
		dst.brushes = append(dst.brushes, b)
	}
	return nil
}

// loadEntities converts the map entities. func_group brushes join the
// world and the groups themselves are dropped.
func (c *Context) loadEntities(ms []*mapfile.Entity) ([]*entity, error) {
	conlog.Stage("LoadMapFile")
	if len(ms) == 0 || classname(ms[0].Entity) != "worldspawn" {
		return nil, errors.New("first entity is not worldspawn")
	}
	world := &entity{Entity: ms[0].Entity}
	ents := []*entity{world}
	for i, m := range ms {
		dst := world
		if i > 0 && classname(m.Entity) != "func_group" {
			dst = &entity{Entity: m.Entity, num: len(ents)}
			ents = append(ents, dst)
		}
		if err := c.addBrushes(dst, m); err != nil {
			return nil, err
		}
	}
	if err := bsp.CheckLimit("ENTITIES", bsp.MaxEntities, len(ents)); err != nil {
		return nil, err
	}
	conlog.Verbose(1, "%9d entities\n%9d world brushes\n", len(ents), len(world.brushes))
	return ents, nil
}

// occupants lists the entities seeding the leak flood.
func occupants(ents []*entity) []tree.Occupant {
	var occ []tree.Occupant
	for _, e := range ents[1:] {
		if o, ok := e.Vector("origin"); ok {
			occ = append(occ, tree.Occupant{Entity: e.num, Origin: o})
		}
	}
	return occ
}
