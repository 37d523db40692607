// Package main is the entry point for the bookkeep CLI.
package main

import (
	"os"

	"github.com/shunichi-ikebuchi/bookkeep/cmd/bookkeep/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
