// Package main provides the entry point for the foliosync CLI.
package main

import (
	"fmt"
	"os"

	"github.com/randalmurphal/foliosync/internal/cli"
	"github.com/randalmurphal/foliosync/internal/errors"
)

func main() {
	if err := cli.Execute(); err != nil {
		if se := errors.AsSyncError(err); se != nil {
			fmt.Fprintln(os.Stderr, se.UserMessage())
			os.Exit(se.ExitCode())
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
