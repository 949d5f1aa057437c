// SPDX-License-Identifier: GPL-2.0-or-later

package brush

import (
	"math"
	"testing"

	"github.com/pkg/errors"

	"q3map/config"
	"q3map/math/vec"
	"q3map/plane"
	"q3map/shader"
	"q3map/winding"
)

func newBuilder() *Builder {
	c := config.Default()
	return &Builder{
		Planes:  plane.NewRegistry(c.Epsilon.Normal, c.Epsilon.Dist, 0),
		Epsilon: c.Epsilon,
		World:   c.World,
	}
}

func findPlane(t *testing.T, bd *Builder, n vec.Vec3, d float64) int {
	t.Helper()
	num, err := bd.Planes.Find(n, d)
	if err != nil {
		t.Fatalf("Find(%v, %v) = %v", n, d, err)
	}
	return num
}

func boxBrush(t *testing.T, bd *Builder, mins, maxs vec.Vec3, info *shader.Info) *Brush {
	t.Helper()
	b := &Brush{}
	for axis := 0; axis < 3; axis++ {
		var n vec.Vec3
		n[axis] = 1
		b.Sides = append(b.Sides,
			NewSide(findPlane(t, bd, n, maxs[axis]), info, TexDef{}),
			NewSide(findPlane(t, bd, vec.Negate(n), -mins[axis]), info, TexDef{}))
	}
	return b
}

func checkWindings(t *testing.T, bd *Builder, b *Brush) {
	t.Helper()
	for i, s := range b.Sides {
		if s.Winding == nil {
			continue
		}
		if len(s.Winding) < 3 {
			t.Errorf("side %d has %d points", i, len(s.Winding))
		}
		p := bd.Planes.Get(s.PlaneNum)
		for _, pt := range s.Winding {
			if d := p.Distance(pt); math.Abs(d) > bd.Epsilon.On {
				t.Errorf("side %d point %v is %v off its plane", i, pt, d)
			}
		}
	}
	if b.Bounds.Mins[0] > b.Bounds.Maxs[0] || b.Bounds.Mins[1] > b.Bounds.Maxs[1] || b.Bounds.Mins[2] > b.Bounds.Maxs[2] {
		t.Errorf("bounds %v", b.Bounds)
	}
}

func TestBoxBrush(t *testing.T) {
	bd := newBuilder()
	tab := shader.NewTable()
	b := boxBrush(t, bd, vec.Vec3{-32, 0, 16}, vec.Vec3{32, 64, 48}, tab.Lookup("base/wall"))
	if err := bd.Finish(b, false); err != nil {
		t.Fatalf("Finish() = %v", err)
	}
	if len(b.Sides) != 6 {
		t.Errorf("box has %d sides, want 6", len(b.Sides))
	}
	for i, s := range b.Sides {
		if len(s.Winding) != 4 {
			t.Errorf("side %d winding = %v", i, s.Winding)
		}
		if s.Bevel {
			t.Errorf("side %d is a bevel", i)
		}
	}
	checkWindings(t, bd, b)
	want := vec.Box{Mins: vec.Vec3{-32, 0, 16}, Maxs: vec.Vec3{32, 64, 48}}
	if !vec.Near(b.Bounds.Mins, want.Mins, 1e-9) || !vec.Near(b.Bounds.Maxs, want.Maxs, 1e-9) {
		t.Errorf("Bounds = %v, want %v", b.Bounds, want)
	}
	if v := bd.Volume(b); math.Abs(v-64*64*32) > 1e-6 {
		t.Errorf("Volume() = %v, want %v", v, 64*64*32)
	}
	if b.Detail || !b.Opaque {
		t.Errorf("wall box: detail %v opaque %v", b.Detail, b.Opaque)
	}
}

func TestDuplicateAndMirroredPlanes(t *testing.T) {
	bd := newBuilder()
	tab := shader.NewTable()
	info := tab.Lookup("base/wall")
	b := boxBrush(t, bd, vec.Vec3{0, 0, 0}, vec.Vec3{64, 64, 64}, info)
	b.Sides = append(b.Sides, b.Sides[0])
	if err := bd.RemoveDuplicatePlanes(b); err != nil || len(b.Sides) != 6 {
		t.Errorf("RemoveDuplicatePlanes = %v, %d sides", err, len(b.Sides))
	}
	b.Sides = append(b.Sides, NewSide(b.Sides[2].PlaneNum^1, info, TexDef{}))
	if err := bd.RemoveDuplicatePlanes(b); errors.Cause(err) != ErrInvalidBrush {
		t.Errorf("RemoveDuplicatePlanes(mirrored) = %v, want %v", err, ErrInvalidBrush)
	}
}

func TestInvalidBrushes(t *testing.T) {
	bd := newBuilder()
	info := shader.NewTable().Lookup("base/wall")

	open := boxBrush(t, bd, vec.Vec3{0, 0, 0}, vec.Vec3{64, 64, 64}, info)
	open.Sides = open.Sides[:4]
	if err := bd.Finish(open, false); errors.Cause(err) != ErrInvalidBrush {
		t.Errorf("Finish(open brush) = %v, want %v", err, ErrInvalidBrush)
	}

	huge := boxBrush(t, bd, vec.Vec3{0, 0, 0}, vec.Vec3{64, 64, 70000}, info)
	if err := bd.Finish(huge, false); errors.Cause(err) != ErrInvalidBrush {
		t.Errorf("Finish(brush outside the world) = %v, want %v", err, ErrInvalidBrush)
	}

	flat := boxBrush(t, bd, vec.Vec3{0, 0, 0}, vec.Vec3{64, 64, 0}, info)
	if err := bd.Finish(flat, false); errors.Cause(err) != ErrInvalidBrush {
		t.Errorf("Finish(flat brush) = %v, want %v", err, ErrInvalidBrush)
	}
}

func TestSplitUnitCube(t *testing.T) {
	bd := newBuilder()
	var arena Arena
	b := boxBrush(t, bd, vec.Vec3{0, 0, 0}, vec.Vec3{1, 1, 1}, shader.NewTable().Lookup("base/wall"))
	if err := bd.Finish(b, false); err != nil {
		t.Fatalf("Finish() = %v", err)
	}
	id := arena.Add(b)

	split := findPlane(t, bd, vec.Vec3{1, 0, 0}, 0.5)
	front, back := bd.Split(b, split)
	if front == nil || back == nil {
		t.Fatalf("Split() = %v, %v", front, back)
	}
	tests := []struct {
		name string
		b    *Brush
		want vec.Box
	}{
		{"front", front, vec.Box{Mins: vec.Vec3{0.5, 0, 0}, Maxs: vec.Vec3{1, 1, 1}}},
		{"back", back, vec.Box{Mins: vec.Vec3{0, 0, 0}, Maxs: vec.Vec3{0.5, 1, 1}}},
	}
	for _, tc := range tests {
		if len(tc.b.Sides) != 6 {
			t.Errorf("%s has %d sides, want 6", tc.name, len(tc.b.Sides))
		}
		if !vec.Near(tc.b.Bounds.Mins, tc.want.Mins, 1e-9) || !vec.Near(tc.b.Bounds.Maxs, tc.want.Maxs, 1e-9) {
			t.Errorf("%s bounds = %v, want %v", tc.name, tc.b.Bounds, tc.want)
		}
		if tc.b.Original != id {
			t.Errorf("%s original = %d, want %d", tc.name, tc.b.Original, id)
		}
		if v := bd.Volume(tc.b); math.Abs(v-0.5) > 1e-9 {
			t.Errorf("%s volume = %v, want 0.5", tc.name, v)
		}
		checkWindings(t, bd, tc.b)
	}
	if got := front.Sides[len(front.Sides)-1].PlaneNum; got != split^1 {
		t.Errorf("front cut side plane = %d, want %d", got, split^1)
	}
	if got := back.Sides[len(back.Sides)-1].PlaneNum; got != split {
		t.Errorf("back cut side plane = %d, want %d", got, split)
	}
	if len(b.Sides[0].Winding) != 4 {
		t.Errorf("Split modified the source brush")
	}
}

func TestSplitSliver(t *testing.T) {
	bd := newBuilder()
	b := boxBrush(t, bd, vec.Vec3{0, 0, 0}, vec.Vec3{2, 2, 2}, shader.NewTable().Lookup("base/wall"))
	if err := bd.Finish(b, false); err != nil {
		t.Fatalf("Finish() = %v", err)
	}
	tests := []struct {
		dist        float64
		front, back bool
	}{
		{0.2, true, false},
		{1.8, false, true},
		{1, true, true},
	}
	for _, tc := range tests {
		f, bk := bd.Split(b, findPlane(t, bd, vec.Vec3{1, 0, 0}, tc.dist))
		if (f != nil) != tc.front || (bk != nil) != tc.back {
			t.Fatalf("Split(x=%v) = %v, %v, want front %v back %v", tc.dist, f != nil, bk != nil, tc.front, tc.back)
		}
		volume := 0.0
		for _, frag := range []*Brush{f, bk} {
			if frag != nil {
				volume += bd.Volume(frag)
			}
		}
		if math.Abs(volume-8) > 1e-9 {
			t.Errorf("Split(x=%v) volume = %v, want 8", tc.dist, volume)
		}
	}
}

func TestSplitOneSided(t *testing.T) {
	bd := newBuilder()
	b := boxBrush(t, bd, vec.Vec3{0, 0, 0}, vec.Vec3{64, 64, 64}, shader.NewTable().Lookup("base/wall"))
	if err := bd.Finish(b, false); err != nil {
		t.Fatalf("Finish() = %v", err)
	}
	tests := []struct {
		normal      vec.Vec3
		dist        float64
		front, back bool
	}{
		{vec.Vec3{1, 0, 0}, 100, false, true},
		{vec.Vec3{1, 0, 0}, -100, true, false},
		{vec.Vec3{0, 0, 1}, 64.05, false, true},
		{vec.Vec3{0, 0, 1}, 16, true, true},
	}
	for _, tc := range tests {
		f, bk := bd.Split(b, findPlane(t, bd, tc.normal, tc.dist))
		if (f != nil) != tc.front || (bk != nil) != tc.back {
			t.Errorf("Split(%v %v) = %v, %v, want front %v back %v", tc.normal, tc.dist, f != nil, bk != nil, tc.front, tc.back)
		}
	}
}

func TestMostlyOnSide(t *testing.T) {
	bd := newBuilder()
	b := boxBrush(t, bd, vec.Vec3{0, 0, 0}, vec.Vec3{64, 64, 64}, shader.NewTable().Lookup("base/wall"))
	if err := bd.Finish(b, false); err != nil {
		t.Fatalf("Finish() = %v", err)
	}
	if got := bd.MostlyOnSide(b, findPlane(t, bd, vec.Vec3{1, 0, 0}, 40)); got != winding.SideBack {
		t.Errorf("MostlyOnSide(x=40) = %v, want %v", got, winding.SideBack)
	}
	if got := bd.MostlyOnSide(b, findPlane(t, bd, vec.Vec3{1, 0, 0}, 20)); got != winding.SideFront {
		t.Errorf("MostlyOnSide(x=20) = %v, want %v", got, winding.SideFront)
	}
}

func TestBevels(t *testing.T) {
	bd := newBuilder()
	info := shader.NewTable().Lookup("base/wall")
	slant, _ := vec.Normalize(vec.Vec3{0, 1, 1})
	// prism under the plane y+z=64
	b := &Brush{Sides: []Side{
		NewSide(findPlane(t, bd, vec.Vec3{-1, 0, 0}, 0), info, TexDef{}),
		NewSide(findPlane(t, bd, vec.Vec3{1, 0, 0}, 64), info, TexDef{}),
		NewSide(findPlane(t, bd, vec.Vec3{0, -1, 0}, 0), info, TexDef{}),
		NewSide(findPlane(t, bd, vec.Vec3{0, 0, -1}, 0), info, TexDef{}),
		NewSide(findPlane(t, bd, slant, 64*slant[1]), info, TexDef{}),
	}}
	if err := bd.Finish(b, false); err != nil {
		t.Fatalf("Finish() = %v", err)
	}
	if len(b.Sides) != 7 {
		t.Fatalf("prism has %d sides, want 7", len(b.Sides))
	}
	axes := []vec.Vec3{{-1, 0, 0}, {1, 0, 0}, {0, -1, 0}, {0, 1, 0}, {0, 0, -1}, {0, 0, 1}}
	for i, want := range axes {
		if n := bd.Planes.Get(b.Sides[i].PlaneNum).Normal; n != want {
			t.Errorf("side %d normal = %v, want %v", i, n, want)
		}
	}
	for i, s := range b.Sides {
		wantBevel := i == 3 || i == 5
		if s.Bevel != wantBevel {
			t.Errorf("side %d bevel = %v, want %v", i, s.Bevel, wantBevel)
		}
		if s.Bevel && s.Winding != nil {
			t.Errorf("bevel side %d has a winding", i)
		}
	}
	if d := bd.Planes.Get(b.Sides[5].PlaneNum).Dist; d != 64 {
		t.Errorf("+z bevel dist = %v, want 64", d)
	}
}

func TestClassify(t *testing.T) {
	tab := shader.NewTable()
	tests := []struct {
		shaders    []string
		fullDetail bool
		detail     bool
		opaque     bool
		areaportal bool
	}{
		{[]string{"base/wall"}, false, false, true, false},
		{[]string{"common/caulk", "base/wall"}, false, false, true, false},
		{[]string{"common/clip"}, false, true, false, false},
		{[]string{"common/clip"}, true, true, false, false},
		{[]string{"common/hint", "common/skip"}, false, false, false, false},
		{[]string{"common/areaportal", "common/nodraw"}, false, false, false, true},
	}
	for _, tc := range tests {
		b := &Brush{}
		for i, n := range tc.shaders {
			b.Sides = append(b.Sides, NewSide(i*2, tab.Lookup(n), TexDef{}))
		}
		b.Classify(tc.fullDetail)
		if b.Detail != tc.detail || b.Opaque != tc.opaque || b.AreaPortal() != tc.areaportal {
			t.Errorf("Classify(%v, %v) = detail %v opaque %v areaportal %v, want %v %v %v",
				tc.shaders, tc.fullDetail, b.Detail, b.Opaque, b.AreaPortal(), tc.detail, tc.opaque, tc.areaportal)
		}
	}
}

func TestClassifyMixed(t *testing.T) {
	info := shader.NewTable().Lookup("base/wall")
	b := &Brush{Sides: []Side{NewSide(0, info, TexDef{}), NewSide(2, info, TexDef{})}}
	b.Sides[0].CompileFlags |= shader.CDetail
	b.Sides[1].CompileFlags |= shader.CStructural
	b.Classify(false)
	if b.Detail {
		t.Errorf("mixed detail and structural brush is detail")
	}
	b.Sides[1].CompileFlags &^= shader.CStructural
	b.Classify(false)
	if !b.Detail {
		t.Errorf("detail brush is structural")
	}
	b.Classify(true)
	if b.Detail {
		t.Errorf("fulldetail kept the brush detail")
	}
}

func TestCopyIsDeep(t *testing.T) {
	bd := newBuilder()
	b := boxBrush(t, bd, vec.Vec3{0, 0, 0}, vec.Vec3{64, 64, 64}, shader.NewTable().Lookup("base/wall"))
	if err := bd.Finish(b, false); err != nil {
		t.Fatalf("Finish() = %v", err)
	}
	c := b.Copy()
	c.Sides[0].Winding[0] = vec.Vec3{1, 2, 3}
	c.Sides[1].PlaneNum = 99
	if b.Sides[0].Winding[0] == (vec.Vec3{1, 2, 3}) || b.Sides[1].PlaneNum == 99 {
		t.Errorf("Copy shares data with the source")
	}
}
