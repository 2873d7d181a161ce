package main

import (
	"os"

	"github.com/wegman-software/osmgeom/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
