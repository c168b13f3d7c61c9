// Package main is the entry point for the semlook application
package main

import (
	"github.com/ethpandaops/semlook/cmd"
)

func main() {
	cmd.Execute()
}
