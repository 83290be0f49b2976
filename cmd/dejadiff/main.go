// Package main is the entry point for the dejadiff CLI.
package main

import (
	"os"

	"github.com/AndreyAkinshin/dejadiff/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
