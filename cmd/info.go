// SPDX-License-Identifier: GPL-2.0-or-later

package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"q3map/bsp"
	"q3map/leakfile"
	"q3map/math/vec"
)

var infoCmd = &cobra.Command{
	Use:   "info <bsp>",
	Short: "Print the lump counts of a bsp file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := bsp.ReadFile(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s:\n", args[0])
		for _, l := range []struct {
			lump  int
			count int
		}{
			{bsp.LumpEntities, len(f.Entities)},
			{bsp.LumpShaders, len(f.Shaders)},
			{bsp.LumpPlanes, len(f.Planes)},
			{bsp.LumpNodes, len(f.Nodes)},
			{bsp.LumpLeafs, len(f.Leafs)},
			{bsp.LumpLeafSurfaces, len(f.LeafSurfaces)},
			{bsp.LumpLeafBrushes, len(f.LeafBrushes)},
			{bsp.LumpModels, len(f.Models)},
			{bsp.LumpBrushes, len(f.Brushes)},
			{bsp.LumpBrushSides, len(f.BrushSides)},
			{bsp.LumpDrawVerts, len(f.DrawVerts)},
			{bsp.LumpDrawIndexes, len(f.DrawIndexes)},
			{bsp.LumpFogs, len(f.Fogs)},
			{bsp.LumpSurfaces, len(f.Surfaces)},
		} {
			fmt.Fprintf(out, "  %-14s %8d\n", bsp.LumpName(l.lump), l.count)
		}
		fmt.Fprintf(out, "  %-14s %8d\n", "areas", f.AreaCount())

		rp := strings.TrimSuffix(args[0], ".bsp") + ".report.json"
		if _, err := os.Stat(rp); err != nil {
			return nil
		}
		r, err := leakfile.ReadFile(rp)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: build %v, %s\n", rp, r.Build, r.Status)
		for _, n := range r.CountNames() {
			fmt.Fprintf(out, "  %-14s %8d\n", n, r.Counts[n])
		}
		if len(r.Trace) > 0 {
			fmt.Fprintf(out, "  leak through %d points, from %v\n", len(r.Trace), r.Trace[0])
		}
		return nil
	},
}

var leafCmd = &cobra.Command{
	Use:   "leaf <bsp> <x> <y> <z>",
	Short: "Print the world leaf containing a point",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		var p vec.Vec3
		for i, a := range args[1:] {
			v, err := strconv.ParseFloat(a, 64)
			if err != nil {
				return errors.Wrapf(err, "coordinate %d", i)
			}
			p[i] = v
		}
		f, err := bsp.ReadFile(args[0])
		if err != nil {
			return err
		}
		l, err := f.PointInLeaf(0, p)
		if err != nil {
			return err
		}
		leaf := &f.Leafs[l]
		fmt.Fprintf(cmd.OutOrStdout(), "leaf %d cluster %d area %d surfaces %v brushes %v\n",
			l, leaf.Cluster, leaf.Area, f.LeafSurfaceRefs(l), f.LeafBrushRefs(l))
		return nil
	},
}

var planesCmd = &cobra.Command{
	Use:   "planes <bsp>",
	Short: "Print the plane table of a bsp file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := bsp.ReadFile(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for i, p := range f.Planes {
			fmt.Fprintf(out, "%6d ( %g %g %g ) %g\n", i, p.Normal[0], p.Normal[1], p.Normal[2], p.Dist)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd, planesCmd, leafCmd)
}
