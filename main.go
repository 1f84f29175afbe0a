package main

import (
	"os"

	"github.com/scholarsense/opportunity-finder/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
