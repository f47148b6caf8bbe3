// Package main is the entry point for the construction-cost CLI.
package main

import (
	"os"

	"construction-cost/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
