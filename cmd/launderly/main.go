package main

import (
	"os"

	"github.com/launderly/launderly/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
