// SPDX-License-Identifier: GPL-2.0-or-later

package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Epsilons holds every tolerance the geometry code compares against.
type Epsilons struct {
	// plane deduplication
	Normal float64 `yaml:"normal"`
	Dist   float64 `yaml:"dist"`
	// point on/front/back classification against a plane
	On float64 `yaml:"on"`
	// face splitting while building the face tree
	Clip float64 `yaml:"clip"`
	// clipping a node's base winding by its ancestors
	BaseWinding float64 `yaml:"base_winding"`
	// splitting portals by a node plane
	SplitWinding float64 `yaml:"split_winding"`
	// edges shorter than this get welded
	Degenerate float64 `yaml:"degenerate"`
	// distance to an integer under which a welded coordinate snaps to it
	Snap float64 `yaml:"snap"`
	// a winding with fewer than three edges longer than this is tiny
	TinyEdge float64 `yaml:"tiny_edge"`
	// a brush reaching less than this past a plane does not get split
	PlaneSide float64 `yaml:"plane_side"`
	// chop epsilon used when building brush windings
	BrushChop float64 `yaml:"brush_chop"`
	// a split fragment under this and half its sibling is not cut off
	MicroVolume float64 `yaml:"micro_volume"`
}

type World struct {
	MinCoord float64 `yaml:"min_coord"`
	MaxCoord float64 `yaml:"max_coord"`
	// head node portals sit this far outside the tree bounds
	SideSpace float64 `yaml:"side_space"`
}

type Tree struct {
	// axial grid the face tree splits on first; 0 disables an axis
	BlockSize             [3]float64 `yaml:"block_size,flow"`
	AlternateSplitWeights bool       `yaml:"alternate_split_weights"`
	MaxDepth              int        `yaml:"max_depth"`
	HintPriority          int        `yaml:"hint_priority"`
	AntiportalPriority    int        `yaml:"antiportal_priority"`
	AreaportalPriority    int        `yaml:"areaportal_priority"`
}

type Config struct {
	Epsilon Epsilons `yaml:"epsilon"`
	World   World    `yaml:"world"`
	Tree    Tree     `yaml:"tree"`

	IgnoreLeaks bool `yaml:"ignore_leaks"`
	LeakTest    bool `yaml:"leaktest"`
	FullDetail  bool `yaml:"fulldetail"`
	// skip clipping sides into the tree and rebuilding from visible hulls
	NoVisibleHull bool `yaml:"no_visible_hull"`
	// extra shader definitions layered over the built-in table
	ShaderFile string `yaml:"shader_file,omitempty"`
	Verbose    int    `yaml:"verbose"`
}

func Default() *Config {
	return &Config{
		Epsilon: Epsilons{
			Normal:       0.00001,
			Dist:         0.01,
			On:           0.1,
			Clip:         0.1,
			BaseWinding:  0.001,
			SplitWinding: 0.001,
			Degenerate:   0.1,
			Snap:         0.01,
			TinyEdge:     0.2,
			PlaneSide:    0.1,
			BrushChop:    0,
			MicroVolume:  1,
		},
		World: World{
			MinCoord:  -65536,
			MaxCoord:  65536,
			SideSpace: 8,
		},
		Tree: Tree{
			BlockSize:          [3]float64{1024, 1024, 1024},
			MaxDepth:           1024,
			HintPriority:       10000,
			AntiportalPriority: 1000,
			AreaportalPriority: 1000,
		},
		Verbose: 1,
	}
}

// Load reads a YAML config over the defaults. Keys missing from the file
// keep their default value.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	c := Default()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	if err := c.Validate(); err != nil {
		return nil, errors.Wrapf(err, "validating %s", path)
	}
	return c, nil
}

func (c *Config) Validate() error {
	e := c.Epsilon
	for _, v := range []struct {
		name string
		val  float64
	}{
		{"epsilon.normal", e.Normal},
		{"epsilon.dist", e.Dist},
		{"epsilon.on", e.On},
		{"epsilon.clip", e.Clip},
		{"epsilon.base_winding", e.BaseWinding},
		{"epsilon.split_winding", e.SplitWinding},
		{"epsilon.degenerate", e.Degenerate},
		{"epsilon.snap", e.Snap},
		{"epsilon.tiny_edge", e.TinyEdge},
		{"epsilon.plane_side", e.PlaneSide},
		{"epsilon.brush_chop", e.BrushChop},
		{"epsilon.micro_volume", e.MicroVolume},
	} {
		if v.val < 0 {
			return errors.Errorf("%s must not be negative, got %v", v.name, v.val)
		}
	}
	if c.World.MinCoord >= c.World.MaxCoord {
		return errors.Errorf("world.min_coord %v must be below world.max_coord %v",
			c.World.MinCoord, c.World.MaxCoord)
	}
	for i, b := range c.Tree.BlockSize {
		if b < 0 {
			return errors.Errorf("tree.block_size[%d] must not be negative, got %v", i, b)
		}
	}
	if c.Tree.MaxDepth <= 0 {
		return errors.Errorf("tree.max_depth must be positive, got %d", c.Tree.MaxDepth)
	}
	return nil
}

// Size is the edge length of the cube every geometry must fit in.
func (w World) Size() float64 {
	return w.MaxCoord - w.MinCoord
}
