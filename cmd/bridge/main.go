// Package main provides the bridge CLI.
package main

import (
	"os"

	"github.com/mesh-intelligence/prophecies/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
