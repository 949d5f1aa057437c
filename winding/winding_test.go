// SPDX-License-Identifier: GPL-2.0-or-later

package winding

import (
	"math"
	"testing"

	"q3map/math/vec"
)

const (
	onEpsilon  = 0.1
	degenerate = 0.1
	snap       = 0.01
)

var (
	up    = vec.Vec3{0, 0, 1}
	xAxis = vec.Vec3{1, 0, 0}
)

func square() Winding {
	return Winding{{64, 64, 0}, {64, 0, 0}, {0, 0, 0}, {0, 64, 0}}
}

func TestBaseForPlane(t *testing.T) {
	w := BaseForPlane(up, 16, 64)
	if len(w) != 4 {
		t.Fatalf("BaseForPlane has %d points", len(w))
	}
	for _, p := range w {
		if p[2] != 16 {
			t.Errorf("point %v is not on z=16", p)
		}
	}
	n, d := w.Plane()
	if !vec.Near(n, up, 1e-9) || math.Abs(d-16) > 1e-9 {
		t.Errorf("Plane() = %v %v, want %v 16", n, d, up)
	}
	if a := w.Area(); a != 128*128 {
		t.Errorf("Area() = %v, want %v", a, 128*128)
	}
	if BaseForPlane(vec.Vec3{}, 0, 64) != nil {
		t.Errorf("BaseForPlane accepted a zero normal")
	}
}

func TestBaseForPlaneDiagonal(t *testing.T) {
	n, _ := vec.Normalize(vec.Vec3{1, 1, 1})
	w := BaseForPlane(n, 10, 1000)
	got, d := w.Plane()
	if !vec.Near(got, n, 1e-9) || math.Abs(d-10) > 1e-6 {
		t.Errorf("Plane() = %v %v, want %v 10", got, d, n)
	}
}

func TestChop(t *testing.T) {
	w := BaseForPlane(up, 0, 64)
	front := Chop(w, xAxis, 0, 0)
	if len(front) != 4 {
		t.Fatalf("Chop gave %d points", len(front))
	}
	for _, p := range front {
		if p[0] < 0 {
			t.Errorf("point %v is behind the chop plane", p)
		}
	}
	if a := front.Area(); a != 8192 {
		t.Errorf("Area() = %v, want 8192", a)
	}
	if got := Chop(w, xAxis, 100, 0); got != nil {
		t.Errorf("Chop past the winding = %v, want nil", got)
	}
	if got := Chop(w, xAxis, -100, 0); len(got) != 4 {
		t.Errorf("Chop before the winding changed it: %v", got)
	}
}

func TestClipEpsilon(t *testing.T) {
	w := square()
	f, b := ClipEpsilon(w, xAxis, 32, onEpsilon)
	if len(f) != 4 || len(b) != 4 {
		t.Fatalf("ClipEpsilon = %d, %d points", len(f), len(b))
	}
	if f.Area()+b.Area() != w.Area() {
		t.Errorf("areas %v + %v != %v", f.Area(), b.Area(), w.Area())
	}
	// on plane: the loose variant keeps it on the back, the strict one drops it
	f, b = ClipEpsilon(w, up, 0, onEpsilon)
	if f != nil || len(b) != 4 {
		t.Errorf("ClipEpsilon on plane = %v, %v", f, b)
	}
	f, b = ClipEpsilonStrict(w, up, 0, onEpsilon)
	if f != nil || b != nil {
		t.Errorf("ClipEpsilonStrict on plane = %v, %v", f, b)
	}
}

func TestOnPlaneSide(t *testing.T) {
	w := square()
	tests := []struct {
		normal vec.Vec3
		dist   float64
		want   Side
	}{
		{xAxis, 32, SideCross},
		{xAxis, -1, SideFront},
		{xAxis, 65, SideBack},
		{up, 0, SideOn},
		{up, 0.05, SideOn},
	}
	for _, tc := range tests {
		if got := OnPlaneSide(w, tc.normal, tc.dist, onEpsilon); got != tc.want {
			t.Errorf("OnPlaneSide(%v, %v) = %v, want %v", tc.normal, tc.dist, got, tc.want)
		}
	}
}

func TestSnapWeld(t *testing.T) {
	tests := []struct {
		a, b, want vec.Vec3
	}{
		{vec.Vec3{1.3, 2, 0.004}, vec.Vec3{1.31, 2.5, 0}, vec.Vec3{1.3, 2, 0}},
		{vec.Vec3{0.995, 5, 5}, vec.Vec3{0.5, 5, 5}, vec.Vec3{1, 5, 5}},
		{vec.Vec3{7.2, 0, 0}, vec.Vec3{7.1, 0, 0}, vec.Vec3{7.1, 0, 0}},
	}
	for _, tc := range tests {
		if got := SnapWeld(tc.a, tc.b, snap); got != tc.want {
			t.Errorf("SnapWeld(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestFix(t *testing.T) {
	w := Winding{{0, 0, 0}, {0, 64, 0}, {64, 64, 0}, {64, 0.04, 0}, {64, 0, 0}}
	got, altered := Fix(w, degenerate, snap)
	if !altered {
		t.Fatalf("Fix did not weld the short edge")
	}
	want := Winding{{0, 0, 0}, {0, 64, 0}, {64, 64, 0}, {64, 0, 0}}
	if len(got) != len(want) {
		t.Fatalf("Fix() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Fix()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	again, altered := Fix(got, degenerate, snap)
	if altered || len(again) != len(got) {
		t.Errorf("Fix is not idempotent: %v", again)
	}
}

func TestFixKeepsTriangles(t *testing.T) {
	w := Winding{{0, 0, 0}, {0.05, 0, 0}, {0, 64, 0}}
	got, altered := Fix(w, degenerate, snap)
	if altered || len(got) != 3 {
		t.Errorf("Fix reduced a triangle: %v", got)
	}
}

func TestFixLeavesNoShortEdge(t *testing.T) {
	w := Winding{
		{0, 0, 0}, {0, 0.03, 0}, {0, 0.06, 0}, {0, 64, 0},
		{64, 64, 0}, {64.02, 32, 0}, {64, 0, 0}, {32, 0.01, 0},
	}
	got, _ := Fix(w, degenerate, snap)
	for i := range got {
		j := (i + 1) % len(got)
		if l := vec.Length(vec.Sub(got[j], got[i])); l < degenerate && len(got) > 3 {
			t.Errorf("edge %d has length %v after Fix: %v", i, l, got)
		}
	}
}

func TestIsTiny(t *testing.T) {
	if square().IsTiny(0.2) {
		t.Errorf("square is tiny")
	}
	sliver := Winding{{0, 0, 0}, {0.1, 0, 0}, {0.1, 0.1, 0}, {0, 0.1, 0}}
	if !sliver.IsTiny(0.2) {
		t.Errorf("sliver is not tiny")
	}
}

func TestIsHuge(t *testing.T) {
	if square().IsHuge(65536) {
		t.Errorf("square is huge")
	}
	if !BaseForPlane(up, 0, 65536).IsHuge(65536) {
		t.Errorf("base winding is not huge")
	}
}

func TestCheck(t *testing.T) {
	if err := square().Check(onEpsilon, -65536, 65536); err != nil {
		t.Errorf("Check(square) = %v", err)
	}
	if err := (Winding{{0, 0, 0}, {1, 0, 0}}).Check(onEpsilon, -65536, 65536); err == nil {
		t.Errorf("Check accepted two points")
	}
	concave := Winding{{64, 64, 0}, {64, 0, 0}, {32, 48, 0}, {0, 0, 0}, {0, 64, 0}}
	if err := concave.Check(onEpsilon, -65536, 65536); err == nil {
		t.Errorf("Check accepted a concave winding")
	}
	if err := square().Reverse().Check(onEpsilon, -65536, 65536); err != nil {
		t.Errorf("Check(reversed square) = %v", err)
	}
	half := Winding{{0, 0, 0}, {0, 1, 0}, {0.5, 1, 0}, {0.5, 0, 0}}
	if err := half.Check(onEpsilon, -65536, 65536); err != nil {
		t.Errorf("Check(half unit square) = %v", err)
	}
	if err := square().Check(onEpsilon, -32, 32); err == nil {
		t.Errorf("Check accepted a winding outside the world")
	}
}

func TestCenterAndBounds(t *testing.T) {
	w := square()
	if c := w.Center(); c != (vec.Vec3{32, 32, 0}) {
		t.Errorf("Center() = %v", c)
	}
	b := w.Bounds()
	if b.Mins != (vec.Vec3{0, 0, 0}) || b.Maxs != (vec.Vec3{64, 64, 0}) {
		t.Errorf("Bounds() = %v", b)
	}
}

func TestAddToConvexHull(t *testing.T) {
	hull := square()
	tri := Winding{{64, 64, 0}, {96, 32, 0}, {64, 0, 0}}
	got := AddToConvexHull(hull, tri, up, onEpsilon)
	if len(got) != 5 {
		t.Fatalf("hull has %d points: %v", len(got), got)
	}
	if a := got.Area(); a != 5120 {
		t.Errorf("hull area = %v, want 5120", a)
	}
	if err := got.Check(onEpsilon, -65536, 65536); err != nil {
		t.Errorf("hull is not a valid winding: %v", err)
	}
	inside := Winding{{10, 10, 0}, {10, 5, 0}, {5, 5, 0}}
	if again := AddToConvexHull(got, inside, up, onEpsilon); len(again) != 5 {
		t.Errorf("adding an inner winding changed the hull: %v", again)
	}
	if first := AddToConvexHull(nil, tri, up, onEpsilon); len(first) != 3 {
		t.Errorf("AddToConvexHull(nil) = %v", first)
	}
}
