package main

import (
	"os"

	"github.com/solalloc/solalloc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
