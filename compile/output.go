// SPDX-License-Identifier: GPL-2.0-or-later

package compile

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"q3map/config"
	"q3map/conlog"
	"q3map/leakfile"
	"q3map/mapfile"
	"q3map/prtfile"
	"q3map/shader"
)

// Paths names the files written for one map.
type Paths struct {
	Map    string
	BSP    string
	Portal string
	Leak   string
	Report string
}

func PathsFor(mapPath string) Paths {
	base := strings.TrimSuffix(mapPath, filepath.Ext(mapPath))
	return Paths{
		Map:    mapPath,
		BSP:    base + ".bsp",
		Portal: base + ".prt",
		Leak:   base + ".lin",
		Report: base + ".report.json",
	}
}

// LoadShaders returns the built in shader table with the shader file of
// cfg layered over it.
func LoadShaders(cfg *config.Config) (*shader.Table, error) {
	t := shader.NewTable()
	if cfg.ShaderFile == "" {
		return t, nil
	}
	if err := t.LoadFile(cfg.ShaderFile); err != nil {
		return nil, err
	}
	return t, nil
}

// File compiles the map at mapPath and writes the bsp and its side files
// next to it.
func File(ctx context.Context, cfg *config.Config, mapPath string) (*Result, error) {
	p := PathsFor(mapPath)
	shaders, err := LoadShaders(cfg)
	if err != nil {
		return nil, err
	}
	c, err := NewContext(cfg, shaders)
	if err != nil {
		return nil, err
	}
	conlog.Printf("Compiling %s (build %s)\n", mapPath, c.Build)
	ms, err := mapfile.Load(mapPath)
	if err != nil {
		return nil, err
	}
	res, err := c.Run(ctx, ms)
	if res != nil {
		if werr := c.writeDiagnostics(res, p); werr != nil {
			return res, werr
		}
	}
	if err != nil {
		return res, err
	}

	conlog.Stage("WriteBSPFile")
	if err := res.File.WriteFile(p.BSP); err != nil {
		return res, err
	}
	if res.Sealed {
		if err := prtfile.WriteFile(p.Portal, res.Tree, res.Clusters); err != nil {
			return res, err
		}
	}
	conlog.Printf("Wrote %s\n", p.BSP)
	return res, nil
}

func (c *Context) writeDiagnostics(res *Result, p Paths) error {
	if len(res.Trace) > 0 {
		if err := leakfile.WriteLinFile(p.Leak, res.Trace); err != nil {
			return err
		}
		conlog.Printf("Leak file written to %s\n", p.Leak)
	}
	return errors.Wrap(res.Report(p.Map).WriteFile(p.Report), p.Report)
}
