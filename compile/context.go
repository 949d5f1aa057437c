// SPDX-License-Identifier: GPL-2.0-or-later

// Package compile turns the entities of a map into a bsp file.
package compile

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"q3map/brush"
	"q3map/bsp"
	"q3map/config"
	"q3map/plane"
	"q3map/shader"
	"q3map/tree"
)

var ErrLeaked = errors.New("map leaked")

// Context holds the tables one compile shares. Nothing in it is global so
// compiles can run side by side.
type Context struct {
	Config  *config.Config
	Shaders *shader.Table
	Planes  *plane.Registry
	Arena   *brush.Arena
	Brushes *brush.Builder
	Tree    *tree.Builder

	Build uuid.UUID
	Log   *slog.Logger
}

func NewContext(cfg *config.Config, shaders *shader.Table) (*Context, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, errors.Wrap(err, "creating build id")
	}
	planes := plane.NewRegistry(cfg.Epsilon.Normal, cfg.Epsilon.Dist, bsp.MaxPlanes)
	bb := &brush.Builder{
		Planes:  planes,
		Epsilon: cfg.Epsilon,
		World:   cfg.World,
	}
	arena := &brush.Arena{}
	return &Context{
		Config:  cfg,
		Shaders: shaders,
		Planes:  planes,
		Arena:   arena,
		Brushes: bb,
		Tree:    tree.NewBuilder(bb, cfg.Tree, arena),
		Build:   id,
		Log:     slog.Default().With("build", id.String()),
	}, nil
}
