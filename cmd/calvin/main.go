// Package main is the entry point for the calvin CLI tool.
package main

import (
	"os"

	"github.com/64andrewwalker/calvin/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
