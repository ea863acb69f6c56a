package main

import (
	"os"

	"github.com/grimaldi89/martechito/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
