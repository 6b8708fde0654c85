package main

import (
	"os"

	"alfredoptarigan/resume-analyzer/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
