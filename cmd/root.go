// SPDX-License-Identifier: GPL-2.0-or-later

// Package cmd is the command line of the compiler.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"q3map/config"
	"q3map/conlog"
)

var (
	configPath string
	verbose    int

	// set before any command runs
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "q3map",
	Short: "q3map compiles Quake 3 maps into bsp files",
	Long: `q3map builds the bsp tree of a .map file, checks it for leaks and
writes the .bsp together with the portal file for vis.`,
	SilenceUsage:      true,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c := config.Default()
		if configPath != "" {
			var err error
			if c, err = config.Load(configPath); err != nil {
				return err
			}
		}
		if cmd.Flags().Changed("verbose") {
			c.Verbose = verbose
		}
		conlog.SetVerbosity(c.Verbose)
		conlog.SetPrintf(func(format string, v ...interface{}) {
			fmt.Fprintf(cmd.OutOrStdout(), format, v...)
		})
		cfg = c
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML file overriding the default epsilons and options")
	rootCmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "print stage banners and counters, repeat for more")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
