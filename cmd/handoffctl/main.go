// Package main provides the entry point for handoffctl, the command-line
// tool for inspecting and driving a running handoffd.
package main

import (
	"fmt"
	"os"

	"github.com/yndnr/handoff-go/internal/cli/command"
)

func main() {
	app := command.App()

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
