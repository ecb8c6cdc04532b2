package main

import (
	"os"

	"github.com/MeKo-Tech/barscan/cmd/barscan/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
