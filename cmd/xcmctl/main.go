package main

import (
	"os"

	"xcmkit/cmd/xcmctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
