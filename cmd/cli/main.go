// Package main is the entry point for the lake CLI binary.
package main

import (
	"os"

	"github.com/sucharith-p/personal-data-lake/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
