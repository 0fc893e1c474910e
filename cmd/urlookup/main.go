package main

import (
	"fmt"
	"os"

	"github.com/jekabs-s/urlookup/internal/cli"
	"github.com/jekabs-s/urlookup/pkg/version"
)

func run() error {
	root := cli.NewRootCmd(version.GetVersion())
	return root.Execute()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
