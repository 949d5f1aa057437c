// SPDX-License-Identifier: GPL-2.0-or-later

// Package prtfile writes the PRT1 portal file the vis stage reads.
package prtfile

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/pkg/errors"

	"q3map/conlog"
	"q3map/math/vec"
	"q3map/shader"
	"q3map/tree"
)

const Magic = "PRT1"

const flagHint = 1

// Counts are the header numbers of a portal file.
type Counts struct {
	Clusters int
	Portals  int
	Faces    int
}

// visPortal reports whether p is written as a vis portal when seen from n.
func visPortal(p *tree.Portal, n *tree.Node) bool {
	return p.Winding != nil && p.Nodes[0] == n && p.Passable() &&
		p.Nodes[0].Cluster != p.Nodes[1].Cluster
}

// solidFace reports whether p bounds the open leaf n as a solid face.
func solidFace(p *tree.Portal) bool {
	return p.Winding != nil && !p.Passable()
}

func openLeaves(t *tree.Tree, fn func(*tree.Node)) {
	t.Leaves(func(n *tree.Node) {
		if !n.Opaque {
			fn(n)
		}
	})
}

// Count returns the header of the portal file for t.
func Count(t *tree.Tree, clusters int) Counts {
	c := Counts{Clusters: clusters}
	openLeaves(t, func(n *tree.Node) {
		tree.NodePortals(n, func(p *tree.Portal) {
			if visPortal(p, n) {
				c.Portals++
			}
			if solidFace(p) {
				c.Faces++
			}
		})
	})
	return c
}

type writer struct {
	w   *bufio.Writer
	err error
}

func (w *writer) printf(format string, args ...interface{}) {
	if w.err != nil {
		return
	}
	_, w.err = fmt.Fprintf(w.w, format, args...)
}

// float writes whole numbers without a fraction.
func (w *writer) float(f float64) {
	if r := math.Round(f); math.Abs(f-r) < 0.001 {
		w.printf("%d ", int(r))
		return
	}
	w.printf("%f ", f)
}

func (w *writer) point(p vec.Vec3) {
	w.printf("(")
	w.float(p[0])
	w.float(p[1])
	w.float(p[2])
	w.printf(") ")
}

// Write writes the portal file of the world tree t. Clusters must be
// numbered.
func Write(out io.Writer, t *tree.Tree, clusters int) (Counts, error) {
	c := Count(t, clusters)
	w := &writer{w: bufio.NewWriter(out)}
	w.printf("%s\n%d\n%d\n%d\n", Magic, c.Clusters, c.Portals, c.Faces)

	openLeaves(t, func(n *tree.Node) {
		tree.NodePortals(n, func(p *tree.Portal) {
			if !visPortal(p, n) {
				return
			}
			pw := p.Winding
			c0, c1 := p.Nodes[0].Cluster, p.Nodes[1].Cluster
			if normal, _ := pw.Plane(); vec.Dot(p.Plane.Normal, normal) < 0.99 {
				c0, c1 = c1, c0
			}
			flags := 0
			if p.CompileFlags.Has(shader.CHint) {
				flags |= flagHint
			}
			w.printf("%d %d %d %d ", len(pw), c0, c1, flags)
			for _, pt := range pw {
				w.point(pt)
			}
			w.printf("\n")
		})
	})

	openLeaves(t, func(n *tree.Node) {
		tree.NodePortals(n, func(p *tree.Portal) {
			if !solidFace(p) {
				return
			}
			pw := p.Winding
			if p.Nodes[0] != n {
				pw = pw.Reverse()
			}
			w.printf("%d %d ", len(pw), n.Cluster)
			for _, pt := range pw {
				w.point(pt)
			}
			w.printf("\n")
		})
	})

	if w.err == nil {
		w.err = w.w.Flush()
	}
	return c, errors.Wrap(w.err, "writing portal file")
}

// WriteFile writes the portal file of t to path.
func WriteFile(path string, t *tree.Tree, clusters int) error {
	conlog.Stage("WritePortalFile")
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating portal file")
	}
	c, err := Write(f, t, clusters)
	if cerr := f.Close(); err == nil {
		err = errors.Wrapf(cerr, "closing %s", path)
	}
	if err != nil {
		return err
	}
	conlog.Verbose(1, "%9d vis clusters\n%9d vis portals\n%9d solid faces\n", c.Clusters, c.Portals, c.Faces)
	return nil
}
