package main

import (
	"os"

	"github.com/nivram913/vmmgr/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
