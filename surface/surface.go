// SPDX-License-Identifier: GPL-2.0-or-later

// Package surface turns the visible parts of brush sides into planar draw
// surfaces.
package surface

import (
	"q3map/brush"
	"q3map/conlog"
	"q3map/math/vec"
	"q3map/plane"
	"q3map/shader"
	"q3map/winding"
)

// LightmapByVertex marks a surface without a lightmap page.
const LightmapByVertex = -3

type Vertex struct {
	XYZ      vec.Vec3
	ST       [2]float32
	Lightmap [2]float32
	Normal   vec.Vec3
	Color    [4]uint8
}

type Surface struct {
	Entity int
	// original brush id and side index the surface was made from
	Brush    int
	Side     int
	Shader   *shader.Info
	PlaneNum int
	Fog      int
	Verts    []Vertex
	// triangle list into Verts
	Indexes []int
	Bounds  vec.Box
}

// Winding returns the polygon of the surface.
func (s *Surface) Winding() winding.Winding {
	w := make(winding.Winding, len(s.Verts))
	for i, v := range s.Verts {
		w[i] = v.XYZ
	}
	return w
}

// FromWinding builds a surface for side si of b covering w.
func FromWinding(planes *plane.Registry, b *brush.Brush, si int, w winding.Winding) *Surface {
	side := &b.Sides[si]
	info := side.Shader
	p := planes.Get(side.PlaneNum)
	vecs := TextureVecs(p.Normal, side.TexDef)
	width, height := shader.DefaultImageSize, shader.DefaultImageSize
	if info.Width > 0 && info.Height > 0 {
		width, height = info.Width, info.Height
	}

	s := &Surface{
		Entity:   b.Entity,
		Brush:    b.Original,
		Side:     si,
		Shader:   info,
		PlaneNum: side.PlaneNum,
		Fog:      -1,
		Bounds:   vec.EmptyBox(),
	}
	for _, pt := range w {
		s.Verts = append(s.Verts, Vertex{
			XYZ:    pt,
			ST:     ST(vecs, pt, width, height),
			Normal: p.Normal,
			Color:  [4]uint8{255, 255, 255, 255},
		})
		s.Bounds.AddPoint(pt)
	}
	for i := 1; i+1 < len(w); i++ {
		s.Indexes = append(s.Indexes, 0, i, i+1)
	}
	return s
}

// Drawable reports whether a side produces a draw surface.
func Drawable(s *brush.Side) bool {
	return s.Shader != nil && !s.Bevel && s.Shader.Drawn()
}

// FromBrushes returns a surface for every visible drawable side. With
// hulls set the visible hull is used, the full winding otherwise.
func FromBrushes(planes *plane.Registry, brushes []*brush.Brush, hulls bool) []*Surface {
	var out []*Surface
	for _, b := range brushes {
		for i := range b.Sides {
			s := &b.Sides[i]
			if !s.Visible || !Drawable(s) {
				continue
			}
			w := s.Winding
			if hulls {
				w = s.VisibleHull
			}
			if len(w) < 3 {
				continue
			}
			out = append(out, FromWinding(planes, b, i, w))
		}
	}
	conlog.Verbose(2, "%9d surfaces from %d brushes\n", len(out), len(brushes))
	return out
}
