// SPDX-License-Identifier: GPL-2.0-or-later

// Package emit flattens compiled models into bsp lumps.
package emit

import (
	"math"

	"github.com/pkg/errors"

	"q3map/brush"
	"q3map/bsp"
	"q3map/conlog"
	"q3map/math/vec"
	"q3map/plane"
	"q3map/shader"
	"q3map/surface"
	"q3map/tree"
)

// Emitter accumulates the lumps of one bsp file.
type Emitter struct {
	Planes *plane.Registry
	Arena  *brush.Arena
	File   *bsp.File

	shaders map[string]int
	// output index of the first surface of the model being emitted
	surfaceBase int
}

func New(planes *plane.Registry, arena *brush.Arena) *Emitter {
	return &Emitter{
		Planes:  planes,
		Arena:   arena,
		File:    &bsp.File{},
		shaders: make(map[string]int),
	}
}

// Shader returns the index of info in the shader lump, adding it if needed.
func (e *Emitter) Shader(info *shader.Info) (int, error) {
	if info == nil {
		return 0, errors.New("emitting a side without a shader")
	}
	if i, ok := e.shaders[info.Name]; ok {
		return i, nil
	}
	var s bsp.Shader
	if len(info.Name) >= len(s.Name) {
		return 0, errors.Errorf("shader name %q too long", info.Name)
	}
	bsp.SetName(s.Name[:], info.Name)
	s.SurfaceFlags = int32(info.SurfaceFlags)
	s.ContentFlags = int32(info.ContentFlags)
	i := len(e.File.Shaders)
	if err := bsp.CheckLimit("SHADERS", bsp.MaxShaders, i+1); err != nil {
		return 0, err
	}
	e.File.Shaders = append(e.File.Shaders, s)
	e.shaders[info.Name] = i
	return i, nil
}

// contentShader is the shader a brush record refers to.
func contentShader(b *brush.Brush) *shader.Info {
	for _, s := range b.Sides {
		if !s.Bevel && s.Shader != nil {
			return s.Shader
		}
	}
	return nil
}

// EmitBrushes writes the original brushes and records their output index.
func (e *Emitter) EmitBrushes(brushes []*brush.Brush) error {
	for _, b := range brushes {
		sn, err := e.Shader(contentShader(b))
		if err != nil {
			return errors.Wrapf(err, "entity %d brush %d", b.Entity, b.Num)
		}
		e.Arena.Get(b.Original).OutputNum = len(e.File.Brushes)
		e.File.Brushes = append(e.File.Brushes, bsp.Brush{
			FirstSide: int32(len(e.File.BrushSides)),
			NumSides:  int32(len(b.Sides)),
			ShaderNum: int32(sn),
		})
		for _, s := range b.Sides {
			ssn, err := e.Shader(s.Shader)
			if err != nil {
				return errors.Wrapf(err, "entity %d brush %d", b.Entity, b.Num)
			}
			e.File.BrushSides = append(e.File.BrushSides, bsp.BrushSide{
				PlaneNum:  int32(s.PlaneNum),
				ShaderNum: int32(ssn),
			})
		}
	}
	return nil
}

func float3(v vec.Vec3) [3]float32 {
	return [3]float32{float32(v[0]), float32(v[1]), float32(v[2])}
}

// EmitSurfaces writes planar surfaces with their vertices and indexes.
func (e *Emitter) EmitSurfaces(surfs []*surface.Surface) error {
	for _, s := range surfs {
		sn, err := e.Shader(s.Shader)
		if err != nil {
			return err
		}
		ds := bsp.Surface{
			ShaderNum:   int32(sn),
			FogNum:      int32(s.Fog),
			SurfaceType: bsp.SurfacePlanar,
			FirstVert:   int32(len(e.File.DrawVerts)),
			NumVerts:    int32(len(s.Verts)),
			FirstIndex:  int32(len(e.File.DrawIndexes)),
			NumIndexes:  int32(len(s.Indexes)),
			LightmapNum: surface.LightmapByVertex,
		}
		ds.LightmapVecs[2] = float3(e.Planes.Get(s.PlaneNum).Normal)
		for _, v := range s.Verts {
			e.File.DrawVerts = append(e.File.DrawVerts, bsp.DrawVert{
				XYZ:      float3(v.XYZ),
				ST:       v.ST,
				Lightmap: v.Lightmap,
				Normal:   float3(v.Normal),
				Color:    v.Color,
			})
		}
		for _, i := range s.Indexes {
			e.File.DrawIndexes = append(e.File.DrawIndexes, int32(i))
		}
		e.File.Surfaces = append(e.File.Surfaces, ds)
	}
	return nil
}

func intBounds(b vec.Box) (mins, maxs [3]int32) {
	if b.IsEmpty() {
		return
	}
	for i := 0; i < 3; i++ {
		mins[i] = int32(math.Floor(b.Mins[i]))
		maxs[i] = int32(math.Ceil(b.Maxs[i]))
	}
	return
}

func (e *Emitter) emitLeaf(n *tree.Node) int32 {
	idx := len(e.File.Leafs)
	l := bsp.Leaf{
		Cluster:        int32(n.Cluster),
		Area:           int32(n.Area),
		FirstLeafBrush: int32(len(e.File.LeafBrushes)),
	}
	l.Mins, l.Maxs = intBounds(n.Bounds)
	for _, b := range n.Brushes {
		out := e.Arena.Get(b.Original).OutputNum
		if out < 0 {
			panic(&tree.InvariantError{Msg: "leaf references a brush that was never emitted"})
		}
		e.File.LeafBrushes = append(e.File.LeafBrushes, int32(out))
	}
	l.NumLeafBrushes = int32(len(e.File.LeafBrushes)) - l.FirstLeafBrush
	l.FirstLeafSurface = int32(len(e.File.LeafSurfaces))
	if !n.Opaque {
		for _, s := range n.Surfaces {
			e.File.LeafSurfaces = append(e.File.LeafSurfaces, int32(e.surfaceBase+s))
		}
	}
	l.NumLeafSurfaces = int32(len(e.File.LeafSurfaces)) - l.FirstLeafSurface
	e.File.Leafs = append(e.File.Leafs, l)
	return int32(-(idx + 1))
}

// emitNode writes n before its children and returns its encoded index.
func (e *Emitter) emitNode(n *tree.Node) int32 {
	if n.IsLeaf() {
		return e.emitLeaf(n)
	}
	if n.PlaneNum&1 != 0 {
		panic(&tree.InvariantError{Msg: "odd plane number on a node"})
	}
	if n.Children[0] == nil || n.Children[1] == nil {
		panic(&tree.InvariantError{Msg: "node without children"})
	}
	idx := len(e.File.Nodes)
	dn := bsp.Node{PlaneNum: int32(n.PlaneNum)}
	dn.Mins, dn.Maxs = intBounds(n.Bounds)
	e.File.Nodes = append(e.File.Nodes, dn)
	for i, c := range n.Children {
		ref := e.emitNode(c)
		e.File.Nodes[idx].Children[i] = ref
	}
	return int32(idx)
}

// Model is one compiled model. Submodels use a tree of a single leaf.
type Model struct {
	Brushes  []*brush.Brush
	Surfaces []*surface.Surface
	Tree     *tree.Tree
}

// EmitModel writes the brushes, surfaces and tree of m and the model record
// tying them together. It returns the model number.
func (e *Emitter) EmitModel(m Model) (int, error) {
	num := len(e.File.Models)
	if err := bsp.CheckLimit("MODELS", bsp.MaxModels, num+1); err != nil {
		return 0, err
	}
	dm := bsp.Model{
		FirstBrush:   int32(len(e.File.Brushes)),
		FirstSurface: int32(len(e.File.Surfaces)),
	}
	if err := e.EmitBrushes(m.Brushes); err != nil {
		return 0, err
	}
	e.surfaceBase = len(e.File.Surfaces)
	if err := e.EmitSurfaces(m.Surfaces); err != nil {
		return 0, err
	}
	if m.Tree != nil {
		e.emitNode(m.Tree.HeadNode)
	}
	dm.NumBrushes = int32(len(e.File.Brushes)) - dm.FirstBrush
	dm.NumSurfaces = int32(len(e.File.Surfaces)) - dm.FirstSurface

	bounds := vec.EmptyBox()
	for _, b := range m.Brushes {
		bounds.AddBox(b.Bounds)
	}
	for _, s := range m.Surfaces {
		bounds.AddBox(s.Bounds)
	}
	if !bounds.IsEmpty() {
		dm.Mins, dm.Maxs = float3(bounds.Mins), float3(bounds.Maxs)
	}
	e.File.Models = append(e.File.Models, dm)
	conlog.Verbose(2, "model %d: %d brushes, %d surfaces\n", num, dm.NumBrushes, dm.NumSurfaces)
	return num, nil
}

// Finish writes the plane table and entities. No planes may be added
// afterwards.
func (e *Emitter) Finish(entities []*bsp.Entity) *bsp.File {
	planes := e.Planes.Planes()
	e.File.Planes = make([]bsp.Plane, len(planes))
	for i, p := range planes {
		e.File.Planes[i] = bsp.Plane{Normal: float3(p.Normal), Dist: float32(p.Dist)}
	}
	e.File.Entities = entities
	return e.File
}
