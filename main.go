package main

import (
	"os"

	"github.com/vidyaai/diagramgen/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
