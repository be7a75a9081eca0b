// Package main is the entry point for pdksim.
package main

import (
	"os"

	"github.com/extism/go-pdk/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
