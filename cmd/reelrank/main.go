// Reelrank - Latent Factor Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

/*
Package main is the entry point for the reelrank command line tool.

Usage:

	reelrank [command]

Available Commands:

	recommend   Recommend movies from your ratings
	items       List the catalog in first-appearance order
	users       List the users of the ratings file

Examples:

	reelrank items --data ratings.csv
	reelrank recommend --data ratings.csv --rate Heat=5 --rate "Alien=4 stars" --top 3
*/
package main

import (
	"fmt"
	"os"

	"github.com/tomtom215/reelrank/internal/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := cli.NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
