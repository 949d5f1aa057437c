// SPDX-License-Identifier: GPL-2.0-or-later

package shader

import (
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"common/caulk", "textures/common/caulk"},
		{"textures/base_wall/Metal.tga", "textures/base_wall/metal"},
		{"e1u1\\floor", "textures/e1u1/floor"},
		{"", DefaultName},
		{"NoShader", DefaultName},
		{"gothic.v2/block", "textures/gothic.v2/block"},
	}
	for _, tc := range tests {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestBuiltins(t *testing.T) {
	tab := NewTable()
	tests := []struct {
		name     string
		opaque   bool
		solid    bool
		drawn    bool
		compile  CompileFlags
		contents uint32
	}{
		{"unknown/wall", true, true, true, CSolid, ContentsSolid},
		{"common/caulk", true, true, false, CSolid | CNoDraw, ContentsSolid},
		{"common/hint", false, false, false, CHint | CStructural | CTranslucent, 0},
		{"common/areaportal", false, false, false, CAreaPortal | CStructural, ContentsAreaPortal},
		{"common/clip", false, false, false, CDetail | CTranslucent, ContentsPlayerClip},
		{"common/origin", false, false, false, COrigin, ContentsOrigin},
	}
	for _, tc := range tests {
		i := tab.Lookup(tc.name)
		if i.Opaque() != tc.opaque {
			t.Errorf("%s: Opaque() = %v, want %v", tc.name, i.Opaque(), tc.opaque)
		}
		if got := i.ContentFlags&ContentsSolid != 0; got != tc.solid {
			t.Errorf("%s: solid = %v, want %v", tc.name, got, tc.solid)
		}
		if got := i.CompileFlags.Has(CSolid); got != tc.solid {
			t.Errorf("%s: CSolid = %v, want %v", tc.name, got, tc.solid)
		}
		if i.Drawn() != tc.drawn {
			t.Errorf("%s: Drawn() = %v, want %v", tc.name, i.Drawn(), tc.drawn)
		}
		if i.CompileFlags&tc.compile != tc.compile {
			t.Errorf("%s: compile flags %#x miss %#x", tc.name, i.CompileFlags, tc.compile)
		}
		if i.ContentFlags&tc.contents != tc.contents {
			t.Errorf("%s: content flags %#x miss %#x", tc.name, i.ContentFlags, tc.contents)
		}
	}
}

func TestLookupCaches(t *testing.T) {
	tab := NewTable()
	a := tab.Lookup("base/floor")
	b := tab.Lookup("textures/base/floor")
	if a != b {
		t.Errorf("Lookup returned different shaders for the same name")
	}
	if a.Width != DefaultImageSize || a.Height != DefaultImageSize {
		t.Errorf("size = %dx%d, want %dx%d", a.Width, a.Height, DefaultImageSize, DefaultImageSize)
	}
}

func TestParse(t *testing.T) {
	tab := NewTable()
	data := []byte(`
shaders:
  textures/base/glass:
    surfaceparms: [trans, nonsolid]
    width: 128
  base/water:
    surfaceparms: [water, trans, nolightmap]
`)
	if err := tab.Parse(data); err != nil {
		t.Fatalf("Parse() = %v", err)
	}
	glass := tab.Lookup("base/glass")
	if glass.Opaque() || glass.ContentFlags&ContentsSolid != 0 {
		t.Errorf("glass = %+v, want translucent non solid", glass)
	}
	if glass.Width != 128 || glass.Height != DefaultImageSize {
		t.Errorf("glass size = %dx%d", glass.Width, glass.Height)
	}
	water := tab.Lookup("textures/base/water")
	if water.ContentFlags&ContentsWater == 0 || !water.CompileFlags.Has(CLiquid) {
		t.Errorf("water = %+v", water)
	}
	if err := tab.Parse([]byte("shaders:\n  x:\n    surfaceparms: [bogus]\n")); err == nil {
		t.Errorf("Parse accepted an unknown surfaceparm")
	}
}
