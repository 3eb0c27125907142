// Package main provides the entry point for the flatvec CLI.
package main

import (
	"os"

	"github.com/sunsided/flatvec/cmd/flatvec/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
