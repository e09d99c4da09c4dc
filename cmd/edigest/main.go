package main

import (
	"os"

	"github.com/dgallion1/edigest/cmd/edigest/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
