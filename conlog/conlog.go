// SPDX-License-Identifier: GPL-2.0-or-later

// Package conlog is the console output of the compiler: stage banners and
// counters the user wants to see while a map builds.
package conlog

import (
	"log"
	"os"
	"sync"
)

var (
	mu        sync.Mutex
	p         = log.New(os.Stdout, "", 0).Printf
	verbosity int
)

func SetPrintf(f func(string, ...interface{})) {
	mu.Lock()
	defer mu.Unlock()
	p = f
}

// SetVerbosity sets the highest level Verbose still prints.
func SetVerbosity(level int) {
	mu.Lock()
	defer mu.Unlock()
	verbosity = level
}

func Printf(format string, v ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	p(format, v...)
}

// Verbose prints only if level is not above the configured verbosity.
func Verbose(level int, format string, v ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	if level > verbosity {
		return
	}
	p(format, v...)
}

// Stage prints the "--- name ---" banner each compile step starts with.
func Stage(name string) {
	Verbose(1, "--- %s ---\n", name)
}
