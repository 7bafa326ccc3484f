// Package main provides the forge command-line tool.
package main

import (
	"os"

	"github.com/leapstack-labs/forge/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
