package main

import (
	"os"

	"github.com/oremus-labs/ol-housing-predictor/internal/hpcli"
)

func main() {
	if err := hpcli.Execute(); err != nil {
		os.Exit(1)
	}
}
