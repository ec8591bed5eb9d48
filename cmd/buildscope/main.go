package main

import (
	"os"

	"github.com/moolen/buildscope/cmd/buildscope/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
