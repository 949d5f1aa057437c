// SPDX-License-Identifier: GPL-2.0-or-later

package cmd

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"q3map/compile"
	"q3map/config"
	"q3map/conlog"
)

var (
	ignoreLeaks   bool
	fullDetail    bool
	noVisibleHull bool
	blockSize     float64
	shaderFile    string
	timeout       time.Duration
)

var bspCmd = &cobra.Command{
	Use:   "bsp <map>...",
	Short: "Compile maps into bsp files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return compileMaps(cmd, args, false)
	},
}

var leaktestCmd = &cobra.Command{
	Use:   "leaktest <map>...",
	Short: "Compile maps and fail on the first leak",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return compileMaps(cmd, args, true)
	},
}

func addCompileFlags(c *cobra.Command) {
	f := c.Flags()
	f.BoolVar(&ignoreLeaks, "ignore-leaks", false, "continue as if sealed when the map leaks")
	f.BoolVar(&fullDetail, "fulldetail", false, "treat detail brushes as structural")
	f.BoolVar(&noVisibleHull, "novisiblehull", false, "build the tree once from all structural faces")
	f.Float64Var(&blockSize, "blocksize", 1024, "grid the tree splits on first, 0 disables it")
	f.StringVar(&shaderFile, "shaders", "", "YAML shader definitions added to the built in table")
	f.DurationVar(&timeout, "timeout", 0, "abort a map that takes longer, 0 waits forever")
}

func init() {
	addCompileFlags(bspCmd)
	addCompileFlags(leaktestCmd)
	rootCmd.AddCommand(bspCmd, leaktestCmd)
}

// compileConfig returns the loaded config with the flags set on cmd
// applied.
func compileConfig(cmd *cobra.Command, leakTest bool) *config.Config {
	c := *cfg
	f := cmd.Flags()
	if f.Changed("ignore-leaks") {
		c.IgnoreLeaks = ignoreLeaks
	}
	if f.Changed("fulldetail") {
		c.FullDetail = fullDetail
	}
	if f.Changed("novisiblehull") {
		c.NoVisibleHull = noVisibleHull
	}
	if f.Changed("blocksize") {
		c.Tree.BlockSize = [3]float64{blockSize, blockSize, blockSize}
	}
	if f.Changed("shaders") {
		c.ShaderFile = shaderFile
	}
	if leakTest {
		c.LeakTest = true
	}
	return &c
}

func compileMaps(cmd *cobra.Command, maps []string, leakTest bool) error {
	c := compileConfig(cmd, leakTest)
	for _, m := range maps {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		cancel := func() {}
		if timeout > 0 {
			ctx, cancel = context.WithTimeout(ctx, timeout)
		}
		start := time.Now()
		res, err := compile.File(ctx, c, m)
		cancel()
		if err != nil {
			return errors.Wrapf(err, "compiling %s", m)
		}
		conlog.Printf("%s: %v, %d clusters, %d areas, %.2f seconds\n",
			m, res.Status, res.Clusters, res.Areas, time.Since(start).Seconds())
	}
	return nil
}
