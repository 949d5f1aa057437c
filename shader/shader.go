// SPDX-License-Identifier: GPL-2.0-or-later

// Package shader maps shader names to the content, surface and compile
// flags of the brush sides using them.
package shader

import (
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultName = "noshader"
	// texture size assumed when nothing else is known
	DefaultImageSize = 64
)

type Info struct {
	Name         string
	SurfaceFlags uint32
	ContentFlags uint32
	CompileFlags CompileFlags
	Width        int
	Height       int
}

func (i *Info) Opaque() bool {
	return !i.CompileFlags.Has(CTranslucent)
}

// Drawn reports whether sides with this shader produce draw surfaces.
func (i *Info) Drawn() bool {
	return !i.CompileFlags.Has(CNoDraw | CSkip | CHint | CAntiPortal | CAreaPortal)
}

type surfaceParm struct {
	contents, contentsClear uint32
	surface, surfaceClear   uint32
	compile, compileClear   CompileFlags
}

var surfaceParms = map[string]surfaceParm{
	"default":       {contents: ContentsSolid, compile: CSolid},
	"antiportal":    {compile: CAntiPortal},
	"areaportal":    {contents: ContentsAreaPortal, compile: CAreaPortal},
	"clusterportal": {contents: ContentsClusterPortal},
	"detail":        {contents: ContentsDetail, compile: CDetail},
	"structural":    {contents: ContentsStructural, compile: CStructural},
	"hint":          {surface: SurfHint, compile: CHint},
	"nodraw":        {surface: SurfNoDraw, compile: CNoDraw},
	"nolightmap":    {surface: SurfNoLightmap, compile: CVertexLit},
	"fog":           {contents: ContentsFog, contentsClear: ContentsSolid, compile: CFog, compileClear: CSolid},
	"sky":           {surface: SurfSky, compile: CSky},
	"slick":         {surface: SurfSlick},
	"noimpact":      {surface: SurfNoImpact},
	"nomarks":       {surface: SurfNoMarks, compile: CNoMarks},
	"ladder":        {surface: SurfLadder},
	"nodamage":      {surface: SurfNoDamage},
	"metalsteps":    {surface: SurfMetalSteps},
	"flesh":         {surface: SurfFlesh},
	"nosteps":       {surface: SurfNoSteps},
	"nodrop":        {contents: ContentsNoDrop},
	"nonsolid":      {surface: SurfNonSolid, contentsClear: ContentsSolid, compileClear: CSolid},
	"trans":         {contents: ContentsTranslucent, compile: CTranslucent},
	"water":         {contents: ContentsWater, contentsClear: ContentsSolid, compile: CLiquid, compileClear: CSolid},
	"slime":         {contents: ContentsSlime, contentsClear: ContentsSolid, compile: CLiquid, compileClear: CSolid},
	"lava":          {contents: ContentsLava, contentsClear: ContentsSolid, compile: CLiquid, compileClear: CSolid},
	"playerclip":    {contents: ContentsPlayerClip, contentsClear: ContentsSolid, compile: CDetail | CTranslucent, compileClear: CSolid},
	"monsterclip":   {contents: ContentsMonsterClip, contentsClear: ContentsSolid, compile: CDetail | CTranslucent, compileClear: CSolid},
	"origin":        {contents: ContentsOrigin, contentsClear: ContentsSolid, compile: COrigin | CTranslucent, compileClear: CSolid},
	"trigger":       {contents: ContentsTrigger, contentsClear: ContentsSolid, compile: CTranslucent, compileClear: CSolid},
	"skip":          {surface: SurfSkip, compile: CSkip},
	"donotenter":    {contents: ContentsDoNotEnter, contentsClear: ContentsSolid, compile: CTranslucent, compileClear: CSolid},
	"teleporter":    {contents: ContentsTeleporter, contentsClear: ContentsSolid, compile: CTranslucent, compileClear: CSolid},
	"jumppad":       {contents: ContentsJumpPad, contentsClear: ContentsSolid, compile: CTranslucent, compileClear: CSolid},
}

var builtins = map[string][]string{
	"common/caulk":      {"nodraw", "nolightmap", "nomarks"},
	"common/nodraw":     {"nodraw", "nonsolid", "trans", "nomarks"},
	"common/hint":       {"nodraw", "nonsolid", "structural", "trans", "noimpact", "hint"},
	"common/skip":       {"nodraw", "nonsolid", "structural", "trans", "skip"},
	"common/areaportal": {"nodraw", "nonsolid", "structural", "trans", "nomarks", "areaportal"},
	"common/antiportal": {"nodraw", "nonsolid", "structural", "trans", "antiportal"},
	"common/clip":       {"nodraw", "nolightmap", "nonsolid", "trans", "nomarks", "noimpact", "playerclip"},
	"common/trigger":    {"nodraw", "nonsolid", "trans", "trigger"},
	"common/origin":     {"nodraw", "nonsolid", "origin"},
	"common/nodrop":     {"nodraw", "nonsolid", "trans", "nodrop"},
	"common/donotenter": {"nodraw", "nonsolid", "trans", "donotenter"},
}

// Normalize turns a map texture name into the shader name it refers to.
func Normalize(name string) string {
	name = strings.ToLower(strings.ReplaceAll(name, "\\", "/"))
	if ext := strings.LastIndexByte(name, '.'); ext > strings.LastIndexByte(name, '/') {
		name = name[:ext]
	}
	if name == "" || name == DefaultName {
		return DefaultName
	}
	if !strings.HasPrefix(name, "textures/") {
		name = "textures/" + name
	}
	return name
}

func newInfo(name string, parms []string) (*Info, error) {
	i := &Info{
		Name:   name,
		Width:  DefaultImageSize,
		Height: DefaultImageSize,
	}
	for _, p := range append([]string{"default"}, parms...) {
		sp, ok := surfaceParms[strings.ToLower(p)]
		if !ok {
			return nil, errors.Errorf("shader %s: unknown surfaceparm %q", name, p)
		}
		i.ContentFlags = i.ContentFlags&^sp.contentsClear | sp.contents
		i.SurfaceFlags = i.SurfaceFlags&^sp.surfaceClear | sp.surface
		i.CompileFlags = i.CompileFlags&^sp.compileClear | sp.compile
	}
	return i, nil
}

// Table holds every shader the compile has seen. Unknown names resolve
// to a solid opaque shader.
type Table struct {
	shaders map[string]*Info
}

func NewTable() *Table {
	t := &Table{shaders: make(map[string]*Info)}
	t.shaders[DefaultName], _ = newInfo(DefaultName, nil)
	for n, parms := range builtins {
		name := Normalize(n)
		i, err := newInfo(name, parms)
		if err != nil {
			panic(err)
		}
		t.shaders[name] = i
	}
	return t
}

func (t *Table) Lookup(name string) *Info {
	name = Normalize(name)
	if i, ok := t.shaders[name]; ok {
		return i
	}
	i, _ := newInfo(name, nil)
	t.shaders[name] = i
	return i
}

// Names lists all known shaders, sorted.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.shaders))
	for n := range t.shaders {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

type fileShader struct {
	SurfaceParms []string `yaml:"surfaceparms"`
	Width        int      `yaml:"width"`
	Height       int      `yaml:"height"`
}

type file struct {
	Shaders map[string]fileShader `yaml:"shaders"`
}

// Parse adds or replaces shaders from a YAML document of the form
//
//	shaders:
//	  textures/base/glass:
//	    surfaceparms: [trans, nonsolid]
//	    width: 128
//	    height: 128
func (t *Table) Parse(data []byte) error {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return errors.Wrap(err, "parsing shader table")
	}
	for n, fs := range f.Shaders {
		name := Normalize(n)
		i, err := newInfo(name, fs.SurfaceParms)
		if err != nil {
			return err
		}
		if fs.Width > 0 {
			i.Width = fs.Width
		}
		if fs.Height > 0 {
			i.Height = fs.Height
		}
		t.shaders[name] = i
	}
	return nil
}

func (t *Table) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading %s", path)
	}
	return errors.Wrapf(t.Parse(data), "loading %s", path)
}
