package main

import (
	"os"

	"github.com/facewire/facewire/cmd/facewire/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
