// Package main is the entry point for the vibeproxy CLI.
package main

import (
	"os"

	"github.com/KooshaPari/vibeproxy/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
