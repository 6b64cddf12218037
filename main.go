package main

import (
	"os"

	"github.com/ardalan-sia/envyfree-traffic/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
