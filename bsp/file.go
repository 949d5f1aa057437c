// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"fmt"
)

// File is a complete bsp with every lump decoded.
type File struct {
	Entities     []*Entity
	Shaders      []Shader
	Planes       []Plane
	Nodes        []Node
	Leafs        []Leaf
	LeafSurfaces []int32
	LeafBrushes  []int32
	Models       []Model
	Brushes      []Brush
	BrushSides   []BrushSide
	DrawVerts    []DrawVert
	DrawIndexes  []int32
	Fogs         []Fog
	Surfaces     []Surface
	Lightmaps    []byte
	LightGrid    []byte
	Visibility   []byte
}

const (
	MaxModels       = 0x400
	MaxBrushes      = 0x8000
	MaxEntities     = 0x1000
	MaxEntString    = 0x40000
	MaxShaders      = 0x400
	MaxAreas        = 0x100
	MaxFogs         = 0x100
	MaxPlanes       = 0x20000
	MaxNodes        = 0x20000
	MaxBrushSides   = 0x20000
	MaxLeafs        = 0x20000
	MaxLeafSurfaces = 0x20000
	MaxLeafBrushes  = 0x40000
	MaxPortals      = 0x20000
	MaxLightmaps    = 0x800000
	MaxLightGrid    = 0x800000
	MaxVisibility   = 0x200000
	MaxSurfaces     = 0x20000
	MaxDrawVerts    = 0x80000
	MaxDrawIndexes  = 0x80000
)

// LimitError reports a lump that grew past what the engine can load.
type LimitError struct {
	Limit string
	Max   int
	Count int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("MAX_MAP_%s (%d) exceeded: %d", e.Limit, e.Max, e.Count)
}

// CheckLimit returns a *LimitError if count exceeds max.
func CheckLimit(limit string, max, count int) error {
	if count > max {
		return &LimitError{Limit: limit, Max: max, Count: count}
	}
	return nil
}

// CheckLimits checks every lump of f.
func (f *File) CheckLimits() error {
	for _, l := range []struct {
		name       string
		max, count int
	}{
		{"ENTITIES", MaxEntities, len(f.Entities)},
		{"SHADERS", MaxShaders, len(f.Shaders)},
		{"PLANES", MaxPlanes, len(f.Planes)},
		{"NODES", MaxNodes, len(f.Nodes)},
		{"LEAFS", MaxLeafs, len(f.Leafs)},
		{"LEAFFACES", MaxLeafSurfaces, len(f.LeafSurfaces)},
		{"LEAFBRUSHES", MaxLeafBrushes, len(f.LeafBrushes)},
		{"MODELS", MaxModels, len(f.Models)},
		{"BRUSHES", MaxBrushes, len(f.Brushes)},
		{"BRUSHSIDES", MaxBrushSides, len(f.BrushSides)},
		{"DRAW_VERTS", MaxDrawVerts, len(f.DrawVerts)},
		{"DRAW_INDEXES", MaxDrawIndexes, len(f.DrawIndexes)},
		{"FOGS", MaxFogs, len(f.Fogs)},
		{"DRAW_SURFS", MaxSurfaces, len(f.Surfaces)},
		{"LIGHTING", MaxLightmaps, len(f.Lightmaps)},
		{"LIGHTGRID", MaxLightGrid, len(f.LightGrid)},
		{"VISIBILITY", MaxVisibility, len(f.Visibility)},
	} {
		if err := CheckLimit(l.name, l.max, l.count); err != nil {
			return err
		}
	}
	return nil
}

// AreaCount returns one more than the highest leaf area.
func (f *File) AreaCount() int {
	n := 0
	for _, l := range f.Leafs {
		if int(l.Area)+1 > n {
			n = int(l.Area) + 1
		}
	}
	return n
}
