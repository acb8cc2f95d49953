package main

import (
	"os"

	"github.com/birmacher/ai-commit-generator/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
