package main

import (
	"os"

	"github.com/yufin/yufin/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
