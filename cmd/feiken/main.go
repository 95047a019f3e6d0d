package main

import (
	"os"

	"github.com/weperform/feiken-authenticate/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
