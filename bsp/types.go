// SPDX-License-Identifier: GPL-2.0-or-later

// Package bsp holds the IBSP version 46 file format: the on-disk records,
// the entity lump and the capacity limits.
package bsp

const (
	Ident   = "IBSP"
	Version = 46
)

const (
	LumpEntities = iota
	LumpShaders
	LumpPlanes
	LumpNodes
	LumpLeafs
	LumpLeafSurfaces
	LumpLeafBrushes
	LumpModels
	LumpBrushes
	LumpBrushSides
	LumpDrawVerts
	LumpDrawIndexes
	LumpFogs
	LumpSurfaces
	LumpLightmaps
	LumpLightGrid
	LumpVisibility
	NumLumps
)

var lumpNames = [NumLumps]string{
	"entities", "shaders", "planes", "nodes", "leafs", "leafsurfaces",
	"leafbrushes", "models", "brushes", "brushsides", "drawverts",
	"drawindexes", "fogs", "surfaces", "lightmaps", "lightgrid", "visibility",
}

func LumpName(l int) string {
	return lumpNames[l]
}

// called lump_t in c
type directory struct {
	Offset int32
	Size   int32
}

type header struct {
	Ident   [4]byte
	Version int32
	Lumps   [NumLumps]directory
}

type Shader struct {
	Name         [64]byte
	SurfaceFlags int32
	ContentFlags int32
}

func (s *Shader) ShaderName() string {
	return cString(s.Name[:])
}

type Plane struct {
	Normal [3]float32
	Dist   float32
}

// Node children >= 0 are nodes, a leaf l is stored as -(l+1).
type Node struct {
	PlaneNum int32
	Children [2]int32
	Mins     [3]int32
	Maxs     [3]int32
}

type Leaf struct {
	Cluster          int32 // -1 for opaque leafs
	Area             int32
	Mins             [3]int32
	Maxs             [3]int32
	FirstLeafSurface int32
	NumLeafSurfaces  int32
	FirstLeafBrush   int32
	NumLeafBrushes   int32
}

type Model struct {
	Mins         [3]float32
	Maxs         [3]float32
	FirstSurface int32
	NumSurfaces  int32
	FirstBrush   int32
	NumBrushes   int32
}

type Brush struct {
	FirstSide int32
	NumSides  int32
	ShaderNum int32
}

type BrushSide struct {
	PlaneNum  int32
	ShaderNum int32
}

type DrawVert struct {
	XYZ      [3]float32
	ST       [2]float32
	Lightmap [2]float32
	Normal   [3]float32
	Color    [4]uint8
}

type Fog struct {
	Shader      [64]byte
	BrushNum    int32
	VisibleSide int32
}

const (
	SurfaceBad = iota
	SurfacePlanar
	SurfacePatch
	SurfaceTriangleSoup
	SurfaceFlare
)

type Surface struct {
	ShaderNum      int32
	FogNum         int32
	SurfaceType    int32
	FirstVert      int32
	NumVerts       int32
	FirstIndex     int32
	NumIndexes     int32
	LightmapNum    int32
	LightmapX      int32
	LightmapY      int32
	LightmapWidth  int32
	LightmapHeight int32
	LightmapOrigin [3]float32
	LightmapVecs   [3][3]float32
	PatchWidth     int32
	PatchHeight    int32
}

func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// SetName copies name into a fixed size, NUL padded field. Names are cut
// to leave room for the terminator.
func SetName(dst []byte, name string) {
	n := copy(dst[:len(dst)-1], name)
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
}
