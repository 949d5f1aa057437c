// SPDX-License-Identifier: GPL-2.0-or-later

package mapfile

import (
	"testing"

	"q3map/math/vec"
)

const testMap = `// test map
{
"classname" "worldspawn"
"message" "two rooms"
// brush 0
{
( 64 64 64 ) ( 64 0 64 ) ( 0 64 64 ) base/wall 16 8 90 0.5 0.25 0 0 0
( 0 0 0 ) ( 64 0 0 ) ( 0 64 0 ) base/floor 0 0 0 0.5 0.5 134217728 0 0
( 64 0 0 ) ( 64 0 64 ) ( 64 64 0 ) base/wall 0 0 0 0.5 0.5
( 0 0 0 ) ( 0 64 0 ) ( 0 0 64 ) base/wall 0 0 0 0.5 0.5 0 0 0
( 0 64 0 ) ( 64 64 0 ) ( 0 64 64 ) base/wall 0 0 0 0.5 0.5 0 0 0
( 0 0 0 ) ( 0 0 64 ) ( 64 0 0 ) base/wall 0 0 0 0.5 0.5 0 0 0
}
{
patchDef2
{
base/curve
( 3 3 0 0 0 )
(
( ( 0 0 0 0 0 ) ( 0 0 0 0 0 ) ( 0 0 0 0 0 ) )
)
}
}
}
{
"classname" "info_player_start"
"origin" "32 32 -8.5"
}
`

func TestParse(t *testing.T) {
	es, err := Parse(testMap)
	if err != nil {
		t.Fatalf("Parse() = %v", err)
	}
	if len(es) != 2 {
		t.Fatalf("Parse() has %d entities, want 2", len(es))
	}
	world := es[0]
	if n, _ := world.Name(); n != "worldspawn" {
		t.Errorf("entity 0 classname = %q", n)
	}
	if keys := world.PropertyNames(); len(keys) != 2 || keys[0] != "classname" || keys[1] != "message" {
		t.Errorf("PropertyNames() = %v", keys)
	}
	if len(world.Brushes) != 1 {
		t.Fatalf("world has %d brushes, want 1", len(world.Brushes))
	}
	b := world.Brushes[0]
	if len(b.Sides) != 6 {
		t.Fatalf("brush has %d sides, want 6", len(b.Sides))
	}
	s := b.Sides[0]
	if s.Points[1] != (vec.Vec3{64, 0, 64}) || s.Texture != "base/wall" {
		t.Errorf("side 0 = %+v", s)
	}
	if s.TexDef.Shift != [2]float64{16, 8} || s.TexDef.Rotate != 90 || s.TexDef.Scale != [2]float64{0.5, 0.25} {
		t.Errorf("side 0 texdef = %+v", s.TexDef)
	}
	if f := b.Sides[1].ContentFlags; f != 134217728 {
		t.Errorf("side 1 content flags = %d", f)
	}
	if b.Sides[2].Texture != "base/wall" || b.Sides[2].ContentFlags != 0 {
		t.Errorf("side 2 without flags = %+v", b.Sides[2])
	}
	if b.Line != 6 {
		t.Errorf("brush line = %d, want 6", b.Line)
	}
	o, ok := es[1].Vector("origin")
	if !ok || o != (vec.Vec3{32, 32, -8.5}) {
		t.Errorf("origin = %v %v", o, ok)
	}
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{
		"{\n\"classname\" \"worldspawn\n}\n",
		"{\n\"classname\" \"worldspawn\"\n{\n( 0 0 0 ( 1 1 1 ) ( 2 2 2 ) x 0 0 0 1 1\n}\n}\n",
		"{\n\"classname\" \"worldspawn\"\n",
		"}\n",
		"{\n\"classname\"\n}\n",
		"{\n{\n( 0 0 0 ) ( 1 1 1 ) ( 2 2 a ) x 0 0 0 1 1\n}\n}\n",
	} {
		if _, err := Parse(in); err == nil {
			t.Errorf("Parse(%q) succeeded", in)
		}
	}
}

func TestParseEmpty(t *testing.T) {
	es, err := Parse("// nothing here\n\n")
	if err != nil || len(es) != 0 {
		t.Errorf("Parse(empty) = %v, %v", es, err)
	}
}
