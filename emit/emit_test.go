// SPDX-License-Identifier: GPL-2.0-or-later

package emit

import (
	"errors"
	"testing"

	"q3map/brush"
	"q3map/bsp"
	"q3map/config"
	"q3map/math/vec"
	"q3map/plane"
	"q3map/shader"
	"q3map/surface"
	"q3map/tree"
)

func newBuilder() *brush.Builder {
	c := config.Default()
	return &brush.Builder{
		Planes:  plane.NewRegistry(c.Epsilon.Normal, c.Epsilon.Dist, 0),
		Epsilon: c.Epsilon,
		World:   c.World,
	}
}

func box(t *testing.T, b *brush.Builder, a *brush.Arena, mins, maxs vec.Vec3, info *shader.Info) *brush.Brush {
	t.Helper()
	br := &brush.Brush{}
	for axis := 0; axis < 3; axis++ {
		var n vec.Vec3
		n[axis] = 1
		hi, err := b.Planes.Find(n, maxs[axis])
		if err != nil {
			t.Fatal(err)
		}
		lo, err := b.Planes.Find(vec.Negate(n), -mins[axis])
		if err != nil {
			t.Fatal(err)
		}
		br.Sides = append(br.Sides,
			brush.NewSide(hi, info, brush.TexDef{}),
			brush.NewSide(lo, info, brush.TexDef{}))
	}
	if err := b.Finish(br, false); err != nil {
		t.Fatalf("Finish(%v, %v) = %v", mins, maxs, err)
	}
	a.Add(br)
	return br
}

func leaf(cluster, area int) *tree.Node {
	return &tree.Node{
		PlaneNum:        tree.PlaneNumLeaf,
		Cluster:         cluster,
		Area:            area,
		AreaPortalBrush: -1,
		Bounds:          vec.EmptyBox(),
	}
}

func expectInvariant(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if _, ok := r.(*tree.InvariantError); !ok {
			t.Errorf("%s: recovered %v, want *tree.InvariantError", name, r)
		}
	}()
	fn()
}

func TestEmitModels(t *testing.T) {
	b := newBuilder()
	arena := &brush.Arena{}
	wall := shader.NewTable().Lookup("base/wall")
	world := box(t, b, arena, vec.Vec3{-64, -64, -64}, vec.Vec3{-16, 64, 64}, wall)
	door := box(t, b, arena, vec.Vec3{16, -8, 0}, vec.Vec3{32, 8, 64}, wall)

	split, err := b.Planes.Find(vec.Vec3{1, 0, 0}, 0)
	if err != nil {
		t.Fatal(err)
	}
	front, back := leaf(0, 0), leaf(-1, -1)
	back.Opaque = true
	back.Brushes = []*brush.Brush{world.Copy()}
	front.Surfaces = []int{0}
	back.Surfaces = []int{0}
	head := &tree.Node{PlaneNum: split, Children: [2]*tree.Node{front, back}, Bounds: vec.EmptyBox()}
	surf := surface.FromWinding(b.Planes, world, 0, world.Sides[0].Winding)

	e := New(b.Planes, arena)
	n, err := e.EmitModel(Model{
		Brushes:  []*brush.Brush{world},
		Surfaces: []*surface.Surface{surf},
		Tree:     &tree.Tree{HeadNode: head},
	})
	if err != nil || n != 0 {
		t.Fatalf("EmitModel(world) = %d, %v, want 0, nil", n, err)
	}
	n, err = e.EmitModel(Model{Brushes: []*brush.Brush{door}, Tree: tree.LeafTree([]*brush.Brush{door})})
	if err != nil || n != 1 {
		t.Fatalf("EmitModel(door) = %d, %v, want 1, nil", n, err)
	}
	f := e.Finish([]*bsp.Entity{bsp.NewEntity()})

	if len(f.Nodes) != 1 || f.Nodes[0].Children != [2]int32{-1, -2} {
		t.Errorf("Nodes = %v, want one node with children [-1 -2]", f.Nodes)
	}
	if len(f.Leafs) != 3 {
		t.Fatalf("len(Leafs) = %d, want 3", len(f.Leafs))
	}
	if got := f.LeafSurfaceRefs(0); len(got) != 1 || got[0] != 0 {
		t.Errorf("LeafSurfaceRefs(0) = %v, want [0]", got)
	}
	if got := f.LeafSurfaceRefs(1); len(got) != 0 {
		t.Errorf("LeafSurfaceRefs(1) = %v, opaque leaves reference no surfaces", got)
	}
	if got := f.LeafBrushRefs(1); len(got) != 1 || got[0] != 0 {
		t.Errorf("LeafBrushRefs(1) = %v, want [0]", got)
	}
	if got := f.LeafBrushRefs(2); len(got) != 1 || got[0] != 1 {
		t.Errorf("LeafBrushRefs(2) = %v, want [1]", got)
	}
	if len(f.Shaders) != 1 || f.Shaders[0].ShaderName() != wall.Name {
		t.Errorf("Shaders = %v, want only %q", f.Shaders, wall.Name)
	}
	if len(f.BrushSides) != len(world.Sides)+len(door.Sides) {
		t.Errorf("len(BrushSides) = %d, want %d", len(f.BrushSides), len(world.Sides)+len(door.Sides))
	}
	if m := f.Models[1]; m.FirstBrush != 1 || m.NumBrushes != 1 || m.NumSurfaces != 0 {
		t.Errorf("Models[1] = %+v", m)
	}
	if m := f.Models[0]; m.Mins != [3]float32{-64, -64, -64} || m.Maxs != [3]float32{-16, 64, 64} {
		t.Errorf("Models[0] bounds = %v %v", m.Mins, m.Maxs)
	}
	if len(f.Planes) != b.Planes.Len() {
		t.Errorf("len(Planes) = %d, want %d", len(f.Planes), b.Planes.Len())
	}
	if s := f.Surfaces[0]; s.SurfaceType != bsp.SurfacePlanar || s.LightmapNum != surface.LightmapByVertex || s.NumIndexes != 6 {
		t.Errorf("Surfaces[0] = %+v", s)
	}

	data, err := f.Marshal()
	if err != nil {
		t.Fatalf("Marshal() = %v", err)
	}
	r, err := bsp.Read(data)
	if err != nil {
		t.Fatalf("Read() = %v", err)
	}
	for _, tc := range []struct {
		p    vec.Vec3
		want int
	}{
		{vec.Vec3{32, 0, 0}, 0},
		{vec.Vec3{-32, 0, 0}, 1},
	} {
		if got, err := r.PointInLeaf(0, tc.p); err != nil || got != tc.want {
			t.Errorf("PointInLeaf(0, %v) = %d, %v, want %d", tc.p, got, err, tc.want)
		}
	}
}

func TestOddPlane(t *testing.T) {
	b := newBuilder()
	pn, err := b.Planes.Find(vec.Vec3{0, 0, 1}, 8)
	if err != nil {
		t.Fatal(err)
	}
	head := &tree.Node{PlaneNum: pn ^ 1, Children: [2]*tree.Node{leaf(0, 0), leaf(1, 0)}}
	e := New(b.Planes, &brush.Arena{})
	expectInvariant(t, "odd plane", func() {
		e.EmitModel(Model{Tree: &tree.Tree{HeadNode: head}})
	})
}

func TestUnemittedBrush(t *testing.T) {
	b := newBuilder()
	arena := &brush.Arena{}
	br := box(t, b, arena, vec.Vec3{0, 0, 0}, vec.Vec3{8, 8, 8}, shader.NewTable().Lookup("base/wall"))
	e := New(b.Planes, arena)
	expectInvariant(t, "unemitted brush", func() {
		e.EmitModel(Model{Tree: tree.LeafTree([]*brush.Brush{br})})
	})
}

func TestShaderName(t *testing.T) {
	long := &shader.Info{Name: "textures/" + string(make([]byte, 64))}
	e := New(plane.NewRegistry(0.00001, 0.01, 0), &brush.Arena{})
	if _, err := e.Shader(long); err == nil {
		t.Errorf("Shader(%d byte name) = nil, want error", len(long.Name))
	}
	if _, err := e.Shader(nil); err == nil {
		t.Errorf("Shader(nil) = nil, want error")
	}
	var le *bsp.LimitError
	for i := 0; i <= bsp.MaxShaders; i++ {
		_, err := e.Shader(&shader.Info{Name: "s" + string(rune('a'+i%26)) + string(rune('a'+i/26%26)) + string(rune('a'+i/676))})
		if err != nil {
			if !errors.As(err, &le) {
				t.Fatalf("Shader() = %v, want *bsp.LimitError", err)
			}
			return
		}
	}
	t.Errorf("no limit error after %d shaders", bsp.MaxShaders+1)
}
