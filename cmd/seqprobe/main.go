// Package main provides the entry point for the seqprobe CLI.
package main

import (
	"os"

	"github.com/probelabs/seqprobe/cmd/seqprobe/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
